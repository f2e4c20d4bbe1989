package shelf

import "context"

// Channels published by the chapter cache-fill pipeline.
const (
	ChannelChapterContent = "chapter.content"
)

// Content fill states reported on ChannelChapterContent.
const (
	ContentFetching = "fetching"
	ContentCached   = "cached"
	ContentFailed   = "failed"
)

// ContentEvent reports the progress of a chapter cache fill.
type ContentEvent struct {
	BookID       string `json:"bookId"`
	ChapterIndex int    `json:"chapterIndex"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
}

// Notifier publishes progress events. Delivery is best effort.
type Notifier interface {
	Publish(ctx context.Context, channel string, payload any) error
}
