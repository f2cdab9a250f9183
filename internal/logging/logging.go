// Package logging builds the zerolog logger used across the
// application. The logger is passed by value to every component rather
// than held in a package global, so tests can inject zerolog.Nop().
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dmarchante/relvet/internal/model"
	"github.com/rs/zerolog"
)

// New returns a logger configured per cfg and a close function for the
// log file, if one was opened. Level "none" silences all output.
//
// Console output goes to stderr in human-readable form; when ToFile is
// set a dated file under cfg.Dir receives the same events as JSON, one
// file per day so old runs stay greppable.
func New(cfg model.LoggingConfig) (zerolog.Logger, func(), error) {
	noop := func() {}

	if cfg.Level == "none" {
		return zerolog.Nop(), noop, nil
	}

	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}}

	closeFn := noop
	if cfg.ToFile {
		dir := cfg.Dir
		if dir == "" {
			dir = "logs"
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return zerolog.Nop(), noop, fmt.Errorf("create log dir: %w", err)
		}

		path := filepath.Join(dir, "relvet_"+time.Now().Format("20060102")+".log")
		file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return zerolog.Nop(), noop, fmt.Errorf("open log file: %w", err)
		}
		closeFn = func() { _ = file.Close() }
		writers = append(writers, file)
	}

	log := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	return log, closeFn, nil
}
