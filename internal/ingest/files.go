package ingest

import (
	"context"
	"fmt"

	"github.com/dmarchante/relvet/internal/model"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// LoadFiles loads several input files concurrently and concatenates
// their records in argument order, so identifiers stay stable between
// runs regardless of which file finishes loading first.
func LoadFiles(ctx context.Context, opts Options, log zerolog.Logger, paths ...string) ([]model.Record, error) {
	if len(paths) == 0 {
		return []model.Record{}, nil
	}

	perFile := make([][]model.Record, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			records, err := NewLoader(path, opts, log).Load()
			if err != nil {
				return fmt.Errorf("load %s: %w", path, err)
			}
			log.Info().Str("file", path).Int("records", len(records)).Msg("loaded input file")
			perFile[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []model.Record
	for _, records := range perFile {
		all = append(all, records...)
	}
	return all, nil
}
