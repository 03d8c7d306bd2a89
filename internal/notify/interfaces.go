package notify

import "context"

// Change is one coalesced filesystem event for a single path: either the
// file was written/created (Removed false) or it was deleted (Removed
// true). A path with multiple raw fsnotify events during one debounce
// window collapses to its last-observed state.
type Change struct {
	Path    string
	Removed bool
}

// FileWatcher monitors source files for changes with debouncing and
// pause/resume support.
type FileWatcher interface {
	// Start begins watching source directories, calling callback with the
	// coalesced changes once the debounce period has elapsed with no new
	// activity.
	Start(ctx context.Context, callback func(changes []Change)) error

	// Stop stops the file watcher and releases its resources.
	Stop() error

	// Pause stops firing callbacks but continues accumulating events.
	Pause()

	// Resume resumes firing callbacks. If events accumulated during pause,
	// fires immediately with what's accumulated so far.
	Resume()
}

// Indexer is the subset of codetrace.Engine the coordinator drives:
// index_file/remove_file per changed path (spec.md §6).
type Indexer interface {
	IndexFile(ctx context.Context, path string) (inserted, deleted int, err error)
	RemoveFile(ctx context.Context, path string) error
}
