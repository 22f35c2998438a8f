package heap

import (
	"sync"
	"sync/atomic"
	"time"
)

// ---------------------------------------------------------------------------
// Pacer: periodic major collection for long-running hosts
// ---------------------------------------------------------------------------

// RootsFunc supplies the root set for a paced collection. It is called at
// the start of each cycle, while the mutator is quiescent; the snapshot
// it returns is what that cycle traces.
type RootsFunc func() []Object

// Pacer drives periodic major collections for long-running embeddings
// (servers, REPLs, IDE sessions) that never reach a natural collection
// point. When to collect remains the host's decision: the Pacer is one
// such policy, the heap itself has none.
type Pacer struct {
	heap     *Heap
	roots    RootsFunc
	interval time.Duration
	enabled  atomic.Bool
	stop     chan struct{}
	stopped  chan struct{}
	mu       sync.Mutex // protects start/stop lifecycle

	cycleCount atomic.Uint64
	lastStats  atomic.Value // *CollectionStats
}

// DefaultPaceInterval is the default time between paced collections.
const DefaultPaceInterval = 30 * time.Second

// NewPacer creates a Pacer for the given heap. roots must not be nil.
// Use DefaultPaceInterval for the default (30s).
func NewPacer(h *Heap, roots RootsFunc, interval time.Duration) *Pacer {
	if roots == nil {
		panic("heap.NewPacer: nil roots func")
	}
	if interval <= 0 {
		interval = DefaultPaceInterval
	}
	p := &Pacer{
		heap:     h,
		roots:    roots,
		interval: interval,
	}
	p.enabled.Store(true)
	return p
}

// Start begins the periodic collection goroutine. Safe to call multiple
// times; only one loop will run.
func (p *Pacer) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stop != nil {
		return // already running
	}

	p.stop = make(chan struct{})
	p.stopped = make(chan struct{})

	// Capture channels locally so the goroutine does not read p.stop or
	// p.stopped after Stop() has nilled them out.
	stopCh := p.stop
	stoppedCh := p.stopped
	go p.loop(stopCh, stoppedCh)
}

// Stop halts the collection goroutine and waits for it to finish. Safe to
// call multiple times or on a Pacer that was never started.
func (p *Pacer) Stop() {
	p.mu.Lock()
	stopCh := p.stop
	stoppedCh := p.stopped
	p.stop = nil
	p.stopped = nil
	p.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-stoppedCh
	}
}

// SetEnabled enables or disables paced collections. When disabled the
// goroutine keeps running but skips cycles.
func (p *Pacer) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

// IsEnabled reports whether paced collections are currently enabled.
func (p *Pacer) IsEnabled() bool {
	return p.enabled.Load()
}

// Interval returns the time between paced collections.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// CycleCount returns the number of collections this Pacer has driven.
func (p *Pacer) CycleCount() uint64 {
	return p.cycleCount.Load()
}

// LastStats returns the stats from the most recent paced collection, or
// nil if none has run yet.
func (p *Pacer) LastStats() *CollectionStats {
	v := p.lastStats.Load()
	if v == nil {
		return nil
	}
	return v.(*CollectionStats)
}

// CollectNow runs a major collection immediately, regardless of the
// timer. Useful for testing and for hosts that know a good moment.
func (p *Pacer) CollectNow() *CollectionStats {
	return p.collect()
}

// loop is the pacing goroutine. stopCh and stoppedCh are captured copies
// of p.stop and p.stopped to avoid reading fields Stop() may nil out.
func (p *Pacer) loop(stopCh <-chan struct{}, stoppedCh chan struct{}) {
	defer close(stoppedCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if p.enabled.Load() {
				p.collect()
			}
		}
	}
}

// collect runs one paced major collection and records its stats.
func (p *Pacer) collect() *CollectionStats {
	stats := p.heap.MajorCollect(p.roots())
	p.cycleCount.Add(1)
	p.lastStats.Store(stats)
	return stats
}
