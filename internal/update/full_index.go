package update

import (
	"context"
	"fmt"
	"time"

	"github.com/mvp-joe/codetrace/internal/discover"
)

// FullIndex walks the project rooted at u.rootDir, reconciles every
// discovered file, removes store entries for files no longer on disk, and
// flushes every pending embedding batch before returning.
//
// force reindexes every file unconditionally (see IndexFile); it does not
// clear tables first, so combine it with Store.ClearAll when a clean slate
// is wanted.
func (u *Updater) FullIndex(ctx context.Context, disco *discover.Discovery, force bool) (Stats, error) {
	start := time.Now()
	stats := Stats{}

	files, err := disco.Walk()
	if err != nil {
		return stats, fmt.Errorf("walk %s: %w", u.rootDir, err)
	}

	seen := make(map[string]bool, len(files))
	for _, f := range files {
		seen[f.Path] = true

		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		_, alreadyIndexed, err := u.store.FileMetadata(f.Path)
		if err != nil {
			return stats, fmt.Errorf("read file metadata for %s: %w", f.Path, err)
		}

		ins, del, err := u.IndexFile(ctx, f, force)
		if err != nil {
			return stats, fmt.Errorf("index %s: %w", f.Path, err)
		}
		switch {
		case ins == 0 && del == 0 && alreadyIndexed:
			stats.FilesUnchanged++
		case alreadyIndexed:
			stats.FilesModified++
		default:
			stats.FilesAdded++
		}
		stats.ChunksInserted += ins
		stats.ChunksDeleted += del
	}

	tracked, err := u.store.AllFileMetadataPaths()
	if err != nil {
		return stats, fmt.Errorf("list tracked files: %w", err)
	}
	for _, path := range tracked {
		if seen[path] {
			continue
		}
		if err := u.RemoveFile(ctx, path); err != nil {
			logf("warning: failed to remove stale file %s: %v", path, err)
			continue
		}
		stats.FilesDeleted++
	}

	if err := u.FlushAll(ctx); err != nil {
		return stats, fmt.Errorf("flush pending batches: %w", err)
	}

	stats.Duration = time.Since(start)
	return stats, nil
}
