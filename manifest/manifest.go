// Package manifest handles vela.toml runtime configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Manifest represents a vela.toml runtime configuration.
type Manifest struct {
	Project   Project   `toml:"project"`
	GC        GC        `toml:"gc"`
	Telemetry Telemetry `toml:"telemetry"`

	// Dir is the directory containing the vela.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// GC configures the collector's pacing and logging. Collection cadence is
// a host policy; these knobs feed the Pacer, not the heap itself.
type GC struct {
	// Pacer enables the background major-collection loop.
	Pacer bool `toml:"pacer"`
	// PaceInterval is the time between paced collections, in Go duration
	// syntax (e.g. "30s"). Empty means the default.
	PaceInterval string `toml:"pace-interval"`
	// Verbosity is the commonlog verbosity for the vela.heap logger.
	Verbosity int `toml:"verbosity"`
}

// Telemetry configures collection-cycle recording.
type Telemetry struct {
	// Enabled turns cycle recording on.
	Enabled bool `toml:"enabled"`
	// Database is the SQLite file path, relative to the manifest
	// directory unless absolute.
	Database string `toml:"database"`
}

// Interval parses the configured pace interval, falling back to fallback
// when unset.
func (g GC) Interval(fallback time.Duration) (time.Duration, error) {
	if g.PaceInterval == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(g.PaceInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid gc.pace-interval %q: %w", g.PaceInterval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("gc.pace-interval must be positive, got %q", g.PaceInterval)
	}
	return d, nil
}

// DatabasePath resolves the telemetry database path against the manifest
// directory.
func (m *Manifest) DatabasePath() string {
	if m.Telemetry.Database == "" {
		return filepath.Join(m.Dir, ".vela", "telemetry.db")
	}
	if filepath.IsAbs(m.Telemetry.Database) {
		return m.Telemetry.Database
	}
	return filepath.Join(m.Dir, m.Telemetry.Database)
}

// Load parses a vela.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "vela.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a vela.toml file, then loads
// and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "vela.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}
