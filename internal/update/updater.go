// Package update implements the differential indexing pass: for each
// discovered file it reconciles the chunk set the chunkers produce now
// against the chunk set already stored, inserting what's new and deleting
// what's stale, while buffering embedding calls across files for
// throughput.
package update

import (
	"log"
	"time"

	"github.com/mvp-joe/codetrace/internal/store"
)

func logf(format string, args ...any) {
	log.Printf(format, args...)
}

// Stats summarizes one Index or FullIndex pass.
type Stats struct {
	FilesAdded     int
	FilesModified  int
	FilesUnchanged int
	FilesDeleted   int
	ChunksInserted int
	ChunksDeleted  int
	Duration       time.Duration
}

// Updater runs the differential update algorithm against one store.
//
// Deletions happen immediately, file by file. Insertions are buffered
// across files per chunk kind and flushed once the item or token cap is
// hit (or explicitly, via FlushAll), so a project with many small files
// doesn't pay one embedding round trip per file.
type Updater struct {
	store   *store.Store
	rootDir string
	cfg     Config

	pendingCode []store.CodeRow
	pendingText []store.TextRow
	pendingDoc  []store.DocumentRow
}

// New creates an Updater rooted at rootDir, persisting to s.
func New(s *store.Store, rootDir string, cfg Config) *Updater {
	return &Updater{store: s, rootDir: rootDir, cfg: cfg.withDefaults()}
}
