package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FileStore persists checkpoints as a single JSON document at a fixed
// path. It only mediates load/save; the batch processor owns the
// in-memory checkpoint during a run and decides the save cadence.
// Running two processes against the same path is a misuse and is not
// guarded against.
type FileStore struct {
	path string
	log  zerolog.Logger
}

// NewFileStore creates a store for the given path.
func NewFileStore(path string, log zerolog.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

// Path returns the checkpoint file location.
func (s *FileStore) Path() string { return s.path }

// Load reads the persisted checkpoint. A missing file yields a fresh
// empty checkpoint; a corrupt file is logged and also treated as empty,
// since re-verification is idempotent and cheaper than failing the run.
func (s *FileStore) Load() *Checkpoint {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("cannot read checkpoint, starting fresh")
		}
		return New()
	}

	cp := New()
	if err := json.Unmarshal(data, cp); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("corrupt checkpoint, starting fresh")
		return New()
	}
	return cp
}

// Save atomically persists the checkpoint: the document is written to a
// temp file in the same directory and renamed over the target, so a
// crash mid-write never leaves a truncated file behind. A failed save
// is returned to the caller; losing progress silently risks re-billing
// expensive verification calls.
func (s *FileStore) Save(cp *Checkpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".checkpoint-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp checkpoint: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close checkpoint: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace checkpoint: %w", err)
	}
	return nil
}

// Reset clears the checkpoint to its initial empty state and persists
// it immediately.
func (s *FileStore) Reset() (*Checkpoint, error) {
	cp := New()
	if err := s.Save(cp); err != nil {
		return nil, fmt.Errorf("reset checkpoint: %w", err)
	}
	return cp, nil
}
