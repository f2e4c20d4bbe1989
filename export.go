package shelf

import "context"

// ChapterStore receives the chapters of an exported book. Saved chapters
// become visible only after Commit; Abort discards them.
type ChapterStore interface {
	Save(ctx context.Context, book *Book, ch *Chapter, content string) error
	Commit() error
	Abort() error
}
