package crawl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/shelf"
	"github.com/fwojciec/shelf/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failing returns a fetch that fails n times with err before succeeding.
func failing(n int, err error, attempts *int) crawl.FetchFunc {
	return func(ctx context.Context, url string, headers map[string]string) (string, error) {
		*attempts++
		if *attempts <= n {
			return "", err
		}
		return "<html>chapter</html>", nil
	}
}

func TestBackoff_Retry(t *testing.T) {
	t.Parallel()

	transient := shelf.Errorf(shelf.EFETCH, "HTTP 503")

	t.Run("passes url and headers through", func(t *testing.T) {
		t.Parallel()

		var gotURL, gotReferer string
		fetch := func(ctx context.Context, url string, headers map[string]string) (string, error) {
			gotURL, gotReferer = url, headers["Referer"]
			return "ok", nil
		}

		body, err := crawl.Backoff{0}.Retry(context.Background(), "https://novels.example/c/1",
			map[string]string{"Referer": "https://novels.example/"}, fetch, nil)

		require.NoError(t, err)
		assert.Equal(t, "ok", body)
		assert.Equal(t, "https://novels.example/c/1", gotURL)
		assert.Equal(t, "https://novels.example/", gotReferer)
	})

	tests := []struct {
		name         string
		backoff      crawl.Backoff
		failures     int
		err          error
		wantAttempts int
		wantErr      bool
	}{
		{name: "succeeds first time", backoff: crawl.Backoff{0, 0}, failures: 0, err: transient, wantAttempts: 1},
		{name: "recovers within schedule", backoff: crawl.Backoff{0, 0, 0}, failures: 3, err: transient, wantAttempts: 4},
		{name: "gives up after schedule", backoff: crawl.Backoff{0, 0}, failures: 5, err: transient, wantAttempts: 3, wantErr: true},
		{name: "nil schedule makes one attempt", backoff: nil, failures: 1, err: transient, wantAttempts: 1, wantErr: true},
		{name: "invalid request is not retried", backoff: crawl.Backoff{0, 0}, failures: 1, err: shelf.Errorf(shelf.EINVALID, "fetcher is closed"), wantAttempts: 1, wantErr: true},
		{name: "deadline is not retried", backoff: crawl.Backoff{0, 0}, failures: 1, err: context.DeadlineExceeded, wantAttempts: 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var attempts int
			_, err := tt.backoff.Retry(context.Background(), "https://novels.example", nil,
				failing(tt.failures, tt.err, &attempts), nil)

			assert.Equal(t, tt.wantAttempts, attempts)
			if tt.wantErr {
				require.ErrorIs(t, err, tt.err)
			} else {
				require.NoError(t, err)
			}
		})
	}

	t.Run("logs before each retry", func(t *testing.T) {
		t.Parallel()

		var attempts int
		var logged []string
		logf := func(msg string, args ...any) { logged = append(logged, msg) }

		_, err := crawl.Backoff{0, 0, 0}.Retry(context.Background(), "https://novels.example", nil,
			failing(2, transient, &attempts), logf)

		require.NoError(t, err)
		assert.Equal(t, []string{"retrying fetch", "retrying fetch"}, logged)
	})

	t.Run("stops when context is canceled between attempts", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		var attempts int
		fetch := func(ctx context.Context, url string, headers map[string]string) (string, error) {
			attempts++
			cancel()
			return "", errors.New("connection reset")
		}

		_, err := crawl.Backoff{time.Hour}.Retry(ctx, "https://novels.example", nil, fetch, nil)

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, attempts)
	})

	t.Run("stops while waiting for the next attempt", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		var attempts int

		start := time.Now()
		_, err := crawl.Backoff{time.Hour}.Retry(ctx, "https://novels.example", nil,
			failing(5, transient, &attempts), nil)

		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second)
	})
}

func TestDefaultBackoff(t *testing.T) {
	t.Parallel()

	assert.Equal(t, crawl.Backoff{time.Second, 2 * time.Second, 4 * time.Second}, crawl.DefaultBackoff())
}

func TestPermanent(t *testing.T) {
	t.Parallel()

	assert.True(t, crawl.Permanent(context.Canceled))
	assert.True(t, crawl.Permanent(shelf.Errorf(shelf.EINVALID, "bad")))
	assert.False(t, crawl.Permanent(shelf.Errorf(shelf.EFETCH, "HTTP 502")))
	assert.False(t, crawl.Permanent(errors.New("connection reset")))
}
