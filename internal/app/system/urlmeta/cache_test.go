package urlmeta_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/markhold/markhold/internal/app/system/urlmeta"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// stubFetcher counts calls and returns a fixed result.
type stubFetcher struct {
	calls int
	meta  urlmeta.Metadata
	err   error
}

func (s *stubFetcher) Fetch(ctx context.Context, pageURL string) (urlmeta.Metadata, error) {
	s.calls++
	return s.meta, s.err
}

// unreachableRedis returns a client pointed at nothing, with a short dial
// timeout so cache operations fail fast.
func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestCachedFetcher_DegradesWithoutRedis(t *testing.T) {
	inner := &stubFetcher{meta: urlmeta.Metadata{Title: "Example", Favicon: "https://example.com/favicon.ico"}}
	cf := urlmeta.NewCachedFetcher(inner, unreachableRedis(), 0, zap.NewNop())

	for i := 0; i < 2; i++ {
		meta, err := cf.Fetch(context.Background(), "https://example.com/page")
		if err != nil {
			t.Fatalf("Fetch %d: %v", i, err)
		}
		if meta.Title != "Example" {
			t.Errorf("Fetch %d: title = %q, want Example", i, meta.Title)
		}
	}
	// No cache available, so both calls hit the inner fetcher.
	if inner.calls != 2 {
		t.Errorf("inner fetcher calls = %d, want 2", inner.calls)
	}
}

func TestCachedFetcher_InnerErrorPropagates(t *testing.T) {
	wantErr := errors.New("page unreachable")
	inner := &stubFetcher{err: wantErr}
	cf := urlmeta.NewCachedFetcher(inner, unreachableRedis(), 0, zap.NewNop())

	if _, err := cf.Fetch(context.Background(), "https://example.com"); !errors.Is(err, wantErr) {
		t.Errorf("Fetch error = %v, want %v", err, wantErr)
	}
}

// TestCachedFetcher_RoundTrip needs a live Redis; set REDIS_TEST_ADDR to
// run it (e.g. REDIS_TEST_ADDR=localhost:6379).
func TestCachedFetcher_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set; skipping Redis round-trip test")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	inner := &stubFetcher{meta: urlmeta.Metadata{Title: "Cached Title"}}
	cf := urlmeta.NewCachedFetcher(inner, rdb, time.Minute, zap.NewNop())

	url := "https://example.com/roundtrip-" + time.Now().Format("150405.000000000")

	first, err := cf.Fetch(context.Background(), url)
	if err != nil {
		t.Fatalf("first Fetch: %v", err)
	}
	second, err := cf.Fetch(context.Background(), url)
	if err != nil {
		t.Fatalf("second Fetch: %v", err)
	}

	if first != second {
		t.Errorf("cache changed the result: %+v vs %+v", first, second)
	}
	if inner.calls != 1 {
		t.Errorf("inner fetcher calls = %d, want 1 (second should be a cache hit)", inner.calls)
	}
}
