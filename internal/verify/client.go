package verify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmarchante/relvet/internal/cache"
	"github.com/dmarchante/relvet/internal/model"
	"github.com/dmarchante/relvet/internal/worker"
	"github.com/rs/zerolog"
)

// ErrUnavailable is returned by HealthCheck when the verification
// service or the configured model cannot be reached.
var ErrUnavailable = errors.New("verification service unavailable")

// Client is the single entry point the pipeline uses to verify records.
// It wraps a Provider with service-wide rate limiting and a
// content-keyed outcome cache, so duplicate rows in the input do not
// trigger a second paid call.
type Client struct {
	provider Provider
	limiter  *worker.Limiter
	cache    cache.Cache
	cacheTTL time.Duration
	model    string
	log      zerolog.Logger
}

// cachedVerdict is the cache payload: verdict and reason only. The id
// belongs to the record being verified, not to the cached content.
type cachedVerdict struct {
	Verdict model.Verdict `json:"verdict"`
	Reason  string        `json:"reason,omitempty"`
}

// NewClient creates a verification client. The cache may be nil to
// disable outcome caching.
func NewClient(cfg *model.Config, provider Provider, outcomes cache.Cache, log zerolog.Logger) *Client {
	return &Client{
		provider: provider,
		limiter:  worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize),
		cache:    outcomes,
		cacheTTL: cfg.Cache.TTL,
		model:    cfg.Verifier.Model,
		log:      log,
	}
}

// HealthCheck confirms the service and configured model are reachable.
// A run aborts before any processing when this fails: there is no point
// iterating records if none of them can be verified.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.provider.IsAvailable(ctx) {
		c.log.Debug().
			Str("provider", c.provider.Name()).
			Str("model", c.model).
			Msg("verification service reachable")
		return nil
	}
	return fmt.Errorf("%w: provider %s, model %s", ErrUnavailable, c.provider.Name(), c.model)
}

// Verify checks one record, consulting the outcome cache first and
// waiting for rate limit clearance before calling the service. It
// always returns an outcome; error verdicts leave the record
// unprocessed so a later run retries it.
func (c *Client) Verify(ctx context.Context, rec model.Record) model.Outcome {
	key := cache.Key(c.model, rec.Entity(), rec.Relation(), rec.Related())

	if c.cache != nil {
		if data, found := c.cache.Get(key); found {
			var cached cachedVerdict
			if err := json.Unmarshal(data, &cached); err == nil {
				c.log.Debug().Str("id", rec.ID).Msg("outcome served from cache")
				return model.Outcome{
					ID:      rec.ID,
					Verdict: cached.Verdict,
					Reason:  cached.Reason,
					Record:  rec,
				}
			}
			_ = c.cache.Delete(key)
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return errorOutcome(rec, "rate limit wait: %v", err)
	}

	out := c.provider.Verify(ctx, rec)

	// Only definitive verdicts are cached; error outcomes must be
	// retried against the live service.
	if c.cache != nil && out.Resolved() {
		if data, err := json.Marshal(cachedVerdict{Verdict: out.Verdict, Reason: out.Reason}); err == nil {
			_ = c.cache.Set(key, data, c.cacheTTL)
		}
	}

	return out
}
