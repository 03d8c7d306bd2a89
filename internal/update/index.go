package update

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mvp-joe/codetrace/internal/chunk"
	"github.com/mvp-joe/codetrace/internal/discover"
	"github.com/mvp-joe/codetrace/internal/store"
)

// kindForFile maps a discovered file's classification to its chunk table.
func kindForFile(k discover.Kind) (string, bool) {
	switch k {
	case discover.Code:
		return store.KindCode, true
	case discover.Markdown:
		return store.KindDocument, true
	case discover.Text:
		return store.KindText, true
	default:
		return "", false
	}
}

// IndexFile reconciles one discovered file's stored chunks against the
// chunks its current content produces (§4.G):
//  1. load the existing content hashes for the file's path from its chunk
//     table;
//  2. run the chunker and hash the new chunks;
//  3. existing ∖ new is deleted; new ∖ existing is queued for insertion
//     (after embedding batching); new ∩ existing is left untouched.
//
// force skips the mtime fast path and steps 1 and 3: every chunk the
// current content produces is (re)inserted and nothing is deleted. Callers
// that want a clean slate under force must clear the file's chunks first.
//
// The caller is responsible for calling FlushAll once the indexing pass
// (single file or many) is done, to drain chunks queued below the batch
// cap.
func (u *Updater) IndexFile(ctx context.Context, f discover.File, force bool) (inserted, deleted int, err error) {
	kind, ok := kindForFile(f.Kind)
	if !ok {
		return 0, 0, nil // discover.Skip, or a kind the store has no table for
	}

	info, err := os.Stat(f.AbsPath)
	if err != nil {
		return 0, 0, fmt.Errorf("stat %s: %w", f.Path, err)
	}
	mtime := info.ModTime().UTC().Format(time.RFC3339Nano)

	if !force {
		if stored, ok, err := u.store.FileMetadata(f.Path); err != nil {
			return 0, 0, fmt.Errorf("read file metadata for %s: %w", f.Path, err)
		} else if ok && stored == mtime {
			return 0, 0, nil // unchanged since the last successful index
		}
	}

	content, err := os.ReadFile(f.AbsPath)
	if err != nil {
		return 0, 0, fmt.Errorf("read %s: %w", f.Path, err)
	}

	newHashes, codeChunks, err := u.buildAndQueue(ctx, kind, f, content)
	if err != nil {
		return 0, 0, fmt.Errorf("chunk %s: %w", f.Path, err)
	}
	inserted = len(newHashes)

	if !force {
		existing, err := u.store.HashesForPath(kind, f.Path)
		if err != nil {
			return 0, 0, fmt.Errorf("load existing hashes for %s: %w", f.Path, err)
		}
		var stale []string
		for h, id := range existing {
			if _, keep := newHashes[h]; !keep {
				stale = append(stale, id)
			}
		}
		if len(stale) > 0 {
			if err := u.store.DeleteByIDs(kind, stale); err != nil {
				return 0, 0, fmt.Errorf("delete stale chunks for %s: %w", f.Path, err)
			}
			deleted = len(stale)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := u.store.SetFileMetadata(f.Path, mtime, now); err != nil {
		return 0, 0, fmt.Errorf("set file metadata for %s: %w", f.Path, err)
	}

	if u.cfg.Graph != nil && kind == store.KindCode {
		if err := u.cfg.Graph.BuildForFile(ctx, f.Path, codeChunks); err != nil {
			// Graph augmentation is supplementary; don't fail the index pass.
			logf("warning: graph update failed for %s: %v", f.Path, err)
		}
	}

	return inserted, deleted, nil
}

// buildAndQueue runs the chunker for kind, queues every resulting chunk for
// batched insertion, and returns the set of content hashes the new chunk
// set produced (keyed the same way store.HashesForPath keys its result, so
// the two can be diffed directly) plus, for code files, the chunks
// themselves for graph augmentation.
func (u *Updater) buildAndQueue(ctx context.Context, kind string, f discover.File, content []byte) (map[string]struct{}, []chunk.Code, error) {
	hashes := map[string]struct{}{}

	switch kind {
	case store.KindCode:
		plugin, ok := u.cfg.Registry.ForLanguage(f.Language)
		if !ok {
			return nil, nil, fmt.Errorf("no registered plugin for language %q", f.Language)
		}
		chunks, err := chunk.BuildCodeChunks(plugin, f.Path, content)
		if err != nil {
			return nil, nil, err
		}
		for _, c := range chunks {
			hashes[c.Hash] = struct{}{}
			if err := u.queueCode(ctx, store.CodeRow{
				Path: c.Path, Content: c.Content, Start: c.StartLine, End: c.EndLine,
				Hash: c.Hash, Language: c.Language, Symbols: c.Symbols,
			}); err != nil {
				return nil, nil, err
			}
		}
		return hashes, chunks, nil

	case store.KindDocument:
		chunks := chunk.BuildDocumentChunks(f.Path, string(content), u.cfg.MarkdownTargetSize)
		for _, c := range chunks {
			hashes[c.Hash] = struct{}{}
			if err := u.queueDoc(ctx, store.DocumentRow{
				Path: c.Path, Content: c.Content, Start: c.StartLine, End: c.EndLine,
				Hash: c.Hash, Title: c.Title, Context: c.Context, Level: c.Level,
			}); err != nil {
				return nil, nil, err
			}
		}

	case store.KindText:
		chunks := chunk.BuildTextChunks(f.Path, string(content), u.cfg.TextChunkSize, u.cfg.TextOverlap)
		for _, c := range chunks {
			hashes[c.Hash] = struct{}{}
			if err := u.queueText(ctx, store.TextRow{
				Path: c.Path, Content: c.Content, Start: c.StartLine, End: c.EndLine, Hash: c.Hash,
			}); err != nil {
				return nil, nil, err
			}
		}
	}

	return hashes, nil, nil
}

// RemoveFile deletes every stored chunk for path (all three kinds, since
// the caller may not know what it was classified as last time), its
// file_metadata row, and — if graph augmentation is enabled — its graph
// node.
func (u *Updater) RemoveFile(ctx context.Context, path string) error {
	for _, kind := range []string{store.KindCode, store.KindText, store.KindDocument} {
		if err := u.store.DeleteByPath(kind, path); err != nil {
			return fmt.Errorf("delete %s chunks for %s: %w", kind, path, err)
		}
	}
	if err := u.store.DeleteFileMetadata(path); err != nil {
		return fmt.Errorf("delete file metadata for %s: %w", path, err)
	}
	if u.cfg.Graph != nil {
		if err := u.cfg.Graph.RemoveFile(ctx, path); err != nil {
			logf("warning: graph removal failed for %s: %v", path, err)
		}
	}
	return nil
}
