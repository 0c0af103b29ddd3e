package crawl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/viking"
	"github.com/fwojciec/viking/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoff_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns the page once a retry succeeds", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetch := func(_ context.Context, _ string) (string, error) {
			calls++
			if calls == 1 {
				return "", errors.New("connection reset")
			}
			return "<html></html>", nil
		}

		html, err := crawl.Backoff{0, 0}.Fetch(context.Background(), "https://vikingfile.com/f/a", fetch, nil)

		require.NoError(t, err)
		assert.Equal(t, "<html></html>", html)
		assert.Equal(t, 2, calls)
	})

	t.Run("returns last error after all attempts", func(t *testing.T) {
		t.Parallel()

		calls := 0
		var logged []string
		fetch := func(_ context.Context, _ string) (string, error) {
			calls++
			return "", errors.New("timeout")
		}
		log := func(format string, args ...any) {
			logged = append(logged, format)
		}

		_, err := crawl.Backoff{0, 0}.Fetch(context.Background(), "https://vikingfile.com/f/a", fetch, log)

		assert.EqualError(t, err, "timeout")
		assert.Equal(t, 3, calls)
		assert.Len(t, logged, 2)
	})

	t.Run("fetches once without waits", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetch := func(_ context.Context, _ string) (string, error) {
			calls++
			return "", errors.New("timeout")
		}

		_, err := crawl.Backoff{}.Fetch(context.Background(), "https://vikingfile.com/f/a", fetch, nil)

		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("does not retry missing pages", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetch := func(_ context.Context, _ string) (string, error) {
			calls++
			return "", viking.Errorf(viking.ENOTFOUND, "page not found")
		}

		_, err := crawl.Backoff{0, 0}.Fetch(context.Background(), "https://vikingfile.com/f/a", fetch, nil)

		assert.Equal(t, viking.ENOTFOUND, viking.ErrorCode(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("stops waiting when context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		fetch := func(_ context.Context, _ string) (string, error) {
			return "", errors.New("timeout")
		}

		start := time.Now()
		_, err := crawl.Backoff{time.Minute}.Fetch(ctx, "https://vikingfile.com/f/a", fetch, nil)

		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second)
	})
}

func TestDefaultBackoff(t *testing.T) {
	t.Parallel()

	assert.Equal(t, crawl.Backoff{time.Second, 2 * time.Second, 4 * time.Second}, crawl.DefaultBackoff())
}
