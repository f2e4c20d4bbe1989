package crawl

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/shelf"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string, headers map[string]string) (string, error)

// LogFunc is the signature for a logging function.
type LogFunc func(msg string, args ...any)

// Backoff is the schedule of waits between fetch attempts: len(b)+1
// attempts in total. A nil Backoff makes a single attempt.
type Backoff []time.Duration

// DefaultBackoff waits 1s, 2s and then 4s between attempts.
func DefaultBackoff() Backoff {
	return Backoff{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// Retry calls fetch until it succeeds or the schedule is exhausted.
// Permanent errors and a done ctx end the loop early. logf, when set, is
// called before every retry.
func (b Backoff) Retry(ctx context.Context, url string, headers map[string]string, fetch FetchFunc, logf LogFunc) (string, error) {
	for attempt := 0; ; attempt++ {
		body, err := fetch(ctx, url, headers)
		if err == nil {
			return body, nil
		}
		if attempt >= len(b) || Permanent(err) {
			return "", err
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if logf != nil {
			logf("retrying fetch", "url", url, "attempt", attempt+2, "wait", b[attempt], "error", err)
		}

		t := time.NewTimer(b[attempt])
		select {
		case <-ctx.Done():
			t.Stop()
			return "", ctx.Err()
		case <-t.C:
		}
	}
}

// Permanent reports whether retrying err cannot help: invalid requests and
// caller cancellation.
func Permanent(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return shelf.ErrorCode(err) == shelf.EINVALID
}
