package notify

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
)

// Coordinator drives an Indexer from a FileWatcher's coalesced change
// batches. spec.md §5: only one index pass runs at a time; changes that
// arrive while a pass is running are held and trigger at most one
// follow-up pass once the current one finishes, rather than queuing a
// pass per batch.
type Coordinator struct {
	watcher FileWatcher
	indexer Indexer

	running   atomic.Bool
	pendingMu sync.Mutex
	pending   map[string]bool // path -> removed, accumulated while a pass is running

	onError func(path string, err error)
}

// NewCoordinator builds a coordinator that dispatches watcher batches to
// indexer. onError, if non-nil, is called for every per-file error a pass
// encounters; a nil onError logs to the standard logger.
func NewCoordinator(watcher FileWatcher, indexer Indexer, onError func(path string, err error)) *Coordinator {
	return &Coordinator{
		watcher: watcher,
		indexer: indexer,
		pending: make(map[string]bool),
		onError: onError,
	}
}

// Start begins watching and reconciling changes. Blocks until the
// underlying watcher reports a startup error or ctx is canceled.
func (c *Coordinator) Start(ctx context.Context) error {
	return c.watcher.Start(ctx, func(changes []Change) {
		c.handleBatch(ctx, changes)
	})
}

// Stop releases the underlying watcher's resources.
func (c *Coordinator) Stop() error {
	return c.watcher.Stop()
}

func (c *Coordinator) handleBatch(ctx context.Context, changes []Change) {
	c.pendingMu.Lock()
	for _, ch := range changes {
		c.pending[ch.Path] = ch.Removed
	}
	c.pendingMu.Unlock()

	c.runOrDefer(ctx)
}

// runOrDefer starts a pass if none is in flight. If one is already
// running, this batch's changes stay in c.pending and the running pass
// picks them up in its own follow-up check once it finishes its current
// sweep.
func (c *Coordinator) runOrDefer(ctx context.Context) {
	if !c.running.CompareAndSwap(false, true) {
		return
	}
	go c.runPass(ctx)
}

func (c *Coordinator) runPass(ctx context.Context) {
	for {
		c.pendingMu.Lock()
		batch := c.pending
		c.pending = make(map[string]bool)
		c.pendingMu.Unlock()

		for path, removed := range batch {
			var err error
			if removed {
				err = c.indexer.RemoveFile(ctx, path)
			} else {
				_, _, err = c.indexer.IndexFile(ctx, path)
			}
			if err != nil {
				c.reportError(path, err)
			}
		}

		// Release the in-flight flag before re-checking for a
		// follow-up so a batch arriving in the gap between the check
		// and the release (runOrDefer observing running still true)
		// isn't stranded in c.pending with nothing left to drain it:
		// once running is false, any racing runOrDefer either wins the
		// CAS and starts its own pass, or lost it to this loop's own
		// next iteration below.
		c.running.Store(false)

		c.pendingMu.Lock()
		more := len(c.pending) > 0
		c.pendingMu.Unlock()
		if !more {
			return
		}
		if !c.running.CompareAndSwap(false, true) {
			// Another goroutine already won the restart; it owns
			// draining c.pending now.
			return
		}
	}
}

func (c *Coordinator) reportError(path string, err error) {
	if c.onError != nil {
		c.onError(path, err)
		return
	}
	log.Printf("notify: reconcile %s: %v", path, err)
}
