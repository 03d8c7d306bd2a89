package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWatcher lets tests drive the coordinator's callback directly without
// touching the real filesystem.
type fakeWatcher struct {
	mu       sync.Mutex
	callback func(changes []Change)
	started  chan struct{}
	stopped  bool
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{started: make(chan struct{}, 1)}
}

func (f *fakeWatcher) Start(ctx context.Context, callback func(changes []Change)) error {
	f.mu.Lock()
	f.callback = callback
	f.mu.Unlock()
	f.started <- struct{}{}
	return nil
}

func (f *fakeWatcher) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	return nil
}

func (f *fakeWatcher) Pause()  {}
func (f *fakeWatcher) Resume() {}

func (f *fakeWatcher) emit(changes []Change) {
	f.mu.Lock()
	cb := f.callback
	f.mu.Unlock()
	cb(changes)
}

// fakeIndexer records every call it receives; IndexFile/RemoveFile can be
// configured to block so tests can observe "pass in flight" behavior.
type fakeIndexer struct {
	mu      sync.Mutex
	indexed []string
	removed []string
	block   chan struct{} // if non-nil, IndexFile/RemoveFile wait on it
	errFor  map[string]error
}

func (f *fakeIndexer) IndexFile(ctx context.Context, path string) (int, int, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.indexed = append(f.indexed, path)
	err := f.errFor[path]
	f.mu.Unlock()
	return 1, 0, err
}

func (f *fakeIndexer) RemoveFile(ctx context.Context, path string) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.removed = append(f.removed, path)
	f.mu.Unlock()
	return nil
}

func (f *fakeIndexer) snapshot() (indexed, removed []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.indexed...), append([]string(nil), f.removed...)
}

func TestCoordinator_DispatchesIndexAndRemoveByChangeKind(t *testing.T) {
	t.Parallel()

	watcher := newFakeWatcher()
	indexer := &fakeIndexer{}
	c := NewCoordinator(watcher, indexer, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.Start(ctx))
	<-watcher.started

	watcher.emit([]Change{
		{Path: "a.go", Removed: false},
		{Path: "b.go", Removed: true},
	})

	require.Eventually(t, func() bool {
		indexed, removed := indexer.snapshot()
		return len(indexed) == 1 && len(removed) == 1
	}, time.Second, time.Millisecond)

	indexed, removed := indexer.snapshot()
	assert.Equal(t, []string{"a.go"}, indexed)
	assert.Equal(t, []string{"b.go"}, removed)
}

func TestCoordinator_CoalescesConcurrentBatchesIntoOneFollowUpPass(t *testing.T) {
	t.Parallel()

	watcher := newFakeWatcher()
	indexer := &fakeIndexer{block: make(chan struct{})}
	c := NewCoordinator(watcher, indexer, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.Start(ctx))
	<-watcher.started

	// First batch starts a pass and blocks inside IndexFile.
	watcher.emit([]Change{{Path: "a.go"}})
	require.Eventually(t, func() bool { return c.running.Load() }, time.Second, time.Millisecond)

	// While the pass is in flight, two more batches arrive for distinct
	// paths; they must not spawn concurrent passes.
	watcher.emit([]Change{{Path: "b.go"}})
	watcher.emit([]Change{{Path: "c.go"}})

	close(indexer.block)

	require.Eventually(t, func() bool {
		indexed, _ := indexer.snapshot()
		return len(indexed) == 3
	}, time.Second, time.Millisecond)

	require.Eventually(t, func() bool { return !c.running.Load() }, time.Second, time.Millisecond)
}

func TestCoordinator_ReportsPerFileErrorsWithoutHaltingTheBatch(t *testing.T) {
	t.Parallel()

	watcher := newFakeWatcher()
	indexer := &fakeIndexer{errFor: map[string]error{"bad.go": assert.AnError}}

	var mu sync.Mutex
	var errs []string
	c := NewCoordinator(watcher, indexer, func(path string, err error) {
		mu.Lock()
		errs = append(errs, path)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.Start(ctx))
	<-watcher.started

	watcher.emit([]Change{{Path: "bad.go"}, {Path: "good.go"}})

	require.Eventually(t, func() bool {
		indexed, _ := indexer.snapshot()
		return len(indexed) == 2
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"bad.go"}, errs)
}
