package update

import (
	"context"
	"fmt"

	"github.com/mvp-joe/codetrace/internal/embed"
	"github.com/mvp-joe/codetrace/internal/store"
)

// approxTokens mirrors the chars/4 heuristic internal/embed uses for its
// own batch token cap; it lets the pending-row buffers decide when to
// flush without exporting that estimator across package boundaries.
func approxTokens(s string) int {
	n := len(s) / 4
	if n < 1 {
		n = 1
	}
	return n
}

func tokensOf(contents []string) int {
	total := 0
	for _, c := range contents {
		total += approxTokens(c)
	}
	return total
}

// queueCode appends a pending code_blocks row, flushing first if adding it
// would push the buffer over its item or token cap.
func (u *Updater) queueCode(ctx context.Context, row store.CodeRow) error {
	if u.overCap(len(u.pendingCode), codeContents(u.pendingCode), row.Content) {
		if err := u.flushCode(ctx); err != nil {
			return err
		}
	}
	u.pendingCode = append(u.pendingCode, row)
	return nil
}

func (u *Updater) queueText(ctx context.Context, row store.TextRow) error {
	if u.overCap(len(u.pendingText), textContents(u.pendingText), row.Content) {
		if err := u.flushText(ctx); err != nil {
			return err
		}
	}
	u.pendingText = append(u.pendingText, row)
	return nil
}

func (u *Updater) queueDoc(ctx context.Context, row store.DocumentRow) error {
	if u.overCap(len(u.pendingDoc), docContents(u.pendingDoc), row.Content) {
		if err := u.flushDoc(ctx); err != nil {
			return err
		}
	}
	u.pendingDoc = append(u.pendingDoc, row)
	return nil
}

func (u *Updater) overCap(pending int, contents []string, next string) bool {
	if pending == 0 {
		return false
	}
	if u.cfg.BatchMaxItems > 0 && pending >= u.cfg.BatchMaxItems {
		return true
	}
	if u.cfg.BatchMaxTokens > 0 && tokensOf(contents)+approxTokens(next) > u.cfg.BatchMaxTokens {
		return true
	}
	return false
}

// FlushAll drains every pending per-kind buffer. Call it after a walk
// completes to flush the tail that never reached a cap.
func (u *Updater) FlushAll(ctx context.Context) error {
	if err := u.flushCode(ctx); err != nil {
		return err
	}
	if err := u.flushText(ctx); err != nil {
		return err
	}
	return u.flushDoc(ctx)
}

func (u *Updater) flushCode(ctx context.Context) error {
	if len(u.pendingCode) == 0 {
		return nil
	}
	rows := u.pendingCode
	u.pendingCode = nil

	vectors, err := embed.EmbedBatched(ctx, u.cfg.CodeProvider, codeContents(rows), embed.EmbedModePassage, u.cfg.BatchMaxItems, u.cfg.BatchMaxTokens)
	if err != nil {
		return fmt.Errorf("embed code_blocks batch: %w", err)
	}
	if err := u.store.InsertCode(rows, vectors); err != nil {
		return fmt.Errorf("insert code_blocks batch: %w", err)
	}
	return nil
}

func (u *Updater) flushText(ctx context.Context) error {
	if len(u.pendingText) == 0 {
		return nil
	}
	rows := u.pendingText
	u.pendingText = nil

	vectors, err := embed.EmbedBatched(ctx, u.cfg.TextProvider, textContents(rows), embed.EmbedModePassage, u.cfg.BatchMaxItems, u.cfg.BatchMaxTokens)
	if err != nil {
		return fmt.Errorf("embed text_blocks batch: %w", err)
	}
	if err := u.store.InsertText(rows, vectors); err != nil {
		return fmt.Errorf("insert text_blocks batch: %w", err)
	}
	return nil
}

func (u *Updater) flushDoc(ctx context.Context) error {
	if len(u.pendingDoc) == 0 {
		return nil
	}
	rows := u.pendingDoc
	u.pendingDoc = nil

	vectors, err := embed.EmbedBatched(ctx, u.cfg.TextProvider, docContents(rows), embed.EmbedModePassage, u.cfg.BatchMaxItems, u.cfg.BatchMaxTokens)
	if err != nil {
		return fmt.Errorf("embed document_blocks batch: %w", err)
	}
	if err := u.store.InsertDocument(rows, vectors); err != nil {
		return fmt.Errorf("insert document_blocks batch: %w", err)
	}
	return nil
}

func codeContents(rows []store.CodeRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Content
	}
	return out
}

func textContents(rows []store.TextRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Content
	}
	return out
}

func docContents(rows []store.DocumentRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Content
	}
	return out
}
