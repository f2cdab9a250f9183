package verify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmarchante/relvet/internal/cache"
	"github.com/dmarchante/relvet/internal/model"
	"github.com/rs/zerolog"
)

// stubProvider implements Provider
type stubProvider struct {
	available bool
	verdict   model.Verdict
	reason    string
	calls     int
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) IsAvailable(ctx context.Context) bool { return s.available }

func (s *stubProvider) Verify(ctx context.Context, rec model.Record) model.Outcome {
	s.calls++
	return model.Outcome{ID: rec.ID, Verdict: s.verdict, Reason: s.reason, Record: rec}
}

func testClientConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.RateLimit.RequestsPerSecond = 0 // no throttling in tests
	cfg.Cache.TTL = time.Minute
	return cfg
}

func TestClient_HealthCheck(t *testing.T) {
	cfg := testClientConfig()

	up := NewClient(cfg, &stubProvider{available: true}, nil, zerolog.Nop())
	if err := up.HealthCheck(context.Background()); err != nil {
		t.Errorf("expected healthy service, got %v", err)
	}

	down := NewClient(cfg, &stubProvider{available: false}, nil, zerolog.Nop())
	err := down.HealthCheck(context.Background())
	if err == nil {
		t.Fatal("expected error for unavailable service")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestClient_VerifyCachesDuplicateContent(t *testing.T) {
	provider := &stubProvider{verdict: model.VerdictInvalid, reason: "no link"}
	client := NewClient(testClientConfig(), provider, cache.NewMemoryCache(time.Minute, time.Minute), zerolog.Nop())

	rec1 := testRecord()
	rec2 := testRecord()
	rec2.ID = "99999" // same content, different id

	out1 := client.Verify(context.Background(), rec1)
	out2 := client.Verify(context.Background(), rec2)

	if provider.calls != 1 {
		t.Errorf("expected 1 provider call for duplicate content, got %d", provider.calls)
	}
	if out1.ID != "44303" || out2.ID != "99999" {
		t.Errorf("cached outcome must carry the caller's id, got %s and %s", out1.ID, out2.ID)
	}
	if out2.Verdict != model.VerdictInvalid || out2.Reason != "no link" {
		t.Errorf("cached verdict lost: %s %q", out2.Verdict, out2.Reason)
	}
}

func TestClient_VerifyDoesNotCacheErrors(t *testing.T) {
	provider := &stubProvider{verdict: model.VerdictError, reason: "timeout"}
	client := NewClient(testClientConfig(), provider, cache.NewMemoryCache(time.Minute, time.Minute), zerolog.Nop())

	rec := testRecord()
	_ = client.Verify(context.Background(), rec)
	_ = client.Verify(context.Background(), rec)

	if provider.calls != 2 {
		t.Errorf("error outcomes must not be cached, expected 2 calls, got %d", provider.calls)
	}
}

func TestClient_VerifyWithoutCache(t *testing.T) {
	provider := &stubProvider{verdict: model.VerdictValid}
	client := NewClient(testClientConfig(), provider, nil, zerolog.Nop())

	rec := testRecord()
	_ = client.Verify(context.Background(), rec)
	out := client.Verify(context.Background(), rec)

	if provider.calls != 2 {
		t.Errorf("expected 2 calls without cache, got %d", provider.calls)
	}
	if out.Verdict != model.VerdictValid {
		t.Errorf("expected valid, got %s", out.Verdict)
	}
}

func TestClient_VerifyRateLimitCancelled(t *testing.T) {
	cfg := testClientConfig()
	cfg.RateLimit.RequestsPerSecond = 0.001
	cfg.RateLimit.BurstSize = 1

	provider := &stubProvider{verdict: model.VerdictValid}
	client := NewClient(cfg, provider, nil, zerolog.Nop())

	// First call consumes the burst.
	_ = client.Verify(context.Background(), testRecord())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	out := client.Verify(ctx, testRecord())
	if out.Verdict != model.VerdictError {
		t.Errorf("expected error verdict when context expires waiting for clearance, got %s", out.Verdict)
	}
	if provider.calls != 1 {
		t.Errorf("expected provider not to be called, got %d calls", provider.calls)
	}
}
