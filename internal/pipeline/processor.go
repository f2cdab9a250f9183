// Package pipeline orchestrates checkpointed batch verification: it
// partitions pending records into batches, runs them through the
// verification client, and persists progress after every batch so an
// interrupted run can resume where it left off.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dmarchante/relvet/internal/checkpoint"
	"github.com/dmarchante/relvet/internal/model"
	"github.com/dmarchante/relvet/internal/worker"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Verifier is the boundary to the external verification service. It is
// an interface so tests can substitute a deterministic stub.
type Verifier interface {
	Verify(ctx context.Context, rec model.Record) model.Outcome
}

// Processor runs the verification pipeline. It exclusively owns the
// in-memory checkpoint during a run and is the sole writer to its
// persisted form; the store only mediates load/save.
type Processor struct {
	cfg    *model.Config
	store  *checkpoint.FileStore
	client Verifier
	pool   *worker.Pool
	log    zerolog.Logger
}

// NewProcessor creates a processor with the given collaborators.
func NewProcessor(cfg *model.Config, store *checkpoint.FileStore, client Verifier, log zerolog.Logger) *Processor {
	return &Processor{
		cfg:    cfg,
		store:  store,
		client: client,
		pool:   worker.NewPool(cfg.Batch.Workers),
		log:    log,
	}
}

// Run verifies every not-yet-processed record, up to the per-run cap,
// and returns the report of invalid relationships found.
//
// Outcomes drive the checkpoint: valid and invalid verdicts mark the
// record processed, error verdicts leave it unmarked so the next run
// retries it. The checkpoint is saved once per batch; a failed save
// aborts the run, since continuing without durable progress risks
// re-billing verification calls already made. Cancellation is honored
// at batch boundaries: the in-flight batch finishes, its checkpoint
// save happens, then the run exits cleanly with Interrupted set.
func (p *Processor) Run(ctx context.Context, records []model.Record) (*model.Report, error) {
	report := &model.Report{
		RunID:     uuid.NewString(),
		Model:     p.cfg.Verifier.Model,
		StartedAt: time.Now().UTC(),
		Invalid:   []model.InvalidRelation{},
	}

	cp := p.store.Load()
	if cp.LastProcessedID() != "" {
		p.log.Info().
			Str("last_id", cp.LastProcessedID()).
			Int("total_processed", cp.TotalProcessed()).
			Msg("resuming from checkpoint")
	}

	pending := make([]model.Record, 0, len(records))
	for _, rec := range records {
		if !cp.IsProcessed(rec.ID) {
			pending = append(pending, rec)
		}
	}
	skipped := len(records) - len(pending)
	if skipped > 0 {
		p.log.Info().Int("skipped", skipped).Msg("records already processed in a previous run")
	}

	// The cap bounds one run, not the whole dataset; records beyond it
	// await a future run. Zero deliberately processes nothing.
	if limit := p.cfg.Batch.MaxPerRun; limit >= 0 && len(pending) > limit {
		p.log.Info().Int("limit", limit).Msg("limiting records for this run")
		pending = pending[:limit]
	}

	if len(pending) == 0 {
		p.log.Info().Msg("no new records to process")
		report.FinishedAt = time.Now().UTC()
		return report, nil
	}

	p.log.Info().
		Str("run_id", report.RunID).
		Int("pending", len(pending)).
		Int("batch_size", p.cfg.Batch.Size).
		Int("workers", p.cfg.Batch.Workers).
		Msg("starting verification")

	batchSize := p.cfg.Batch.Size
	if batchSize <= 0 {
		batchSize = 1
	}

	for start := 0; start < len(pending); start += batchSize {
		end := start + batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		outcomes := p.pool.Run(ctx, batch, p.client.Verify)

		for _, out := range outcomes {
			switch out.Verdict {
			case model.VerdictValid:
				cp.MarkProcessed(out.ID)
				report.TotalChecked++
			case model.VerdictInvalid:
				cp.MarkProcessed(out.ID)
				report.TotalChecked++
				report.Invalid = append(report.Invalid, model.InvalidFromOutcome(out))
				p.log.Info().Str("id", out.ID).Str("reason", out.Reason).Msg("invalid relationship")
			default:
				// Unresolved: not marked, retried on a later run.
				report.TotalErrors++
				p.log.Warn().Str("id", out.ID).Str("reason", out.Reason).Msg("verification failed, will retry next run")
			}
		}

		if err := p.store.Save(cp); err != nil {
			p.log.Error().Err(err).Msg("checkpoint save failed, aborting run")
			report.FinishedAt = time.Now().UTC()
			report.TotalInvalid = len(report.Invalid)
			return report, fmt.Errorf("save checkpoint: %w", err)
		}

		p.log.Debug().
			Int("batch_end", end).
			Int("pending", len(pending)).
			Int("total_processed", cp.TotalProcessed()).
			Msg("batch complete")

		if ctx.Err() != nil {
			report.Interrupted = true
			p.log.Warn().Msg("stop requested, checkpoint saved after in-flight batch")
			break
		}
	}

	report.TotalInvalid = len(report.Invalid)
	report.FinishedAt = time.Now().UTC()

	p.log.Info().
		Int("checked", report.TotalChecked).
		Int("invalid", report.TotalInvalid).
		Int("errors", report.TotalErrors).
		Int("total_processed", cp.TotalProcessed()).
		Msg("run finished")

	return report, nil
}
