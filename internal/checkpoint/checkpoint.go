package checkpoint

import (
	"encoding/json"
	"sort"
	"time"
)

// Checkpoint tracks which record ids have already been verified so a
// batch run can resume after interruption. The processed set and the
// counter are kept in lockstep: TotalProcessed always equals the size
// of the set. The zero value is not usable; use New.
type Checkpoint struct {
	lastID    string
	processed map[string]struct{}
	updatedAt time.Time
}

// New returns a fresh empty checkpoint.
func New() *Checkpoint {
	return &Checkpoint{
		processed: make(map[string]struct{}),
		updatedAt: time.Now().UTC(),
	}
}

// IsProcessed reports whether id has already been verified.
func (c *Checkpoint) IsProcessed(id string) bool {
	_, ok := c.processed[id]
	return ok
}

// MarkProcessed records id as verified and makes it the last processed
// id. Returns false when the id was already present (the checkpoint is
// unchanged apart from the timestamp in that case).
func (c *Checkpoint) MarkProcessed(id string) bool {
	if _, ok := c.processed[id]; ok {
		return false
	}
	c.processed[id] = struct{}{}
	c.lastID = id
	c.updatedAt = time.Now().UTC()
	return true
}

// LastProcessedID returns the most recently completed record id, or ""
// for a fresh checkpoint.
func (c *Checkpoint) LastProcessedID() string { return c.lastID }

// TotalProcessed returns how many records have been completed.
func (c *Checkpoint) TotalProcessed() int { return len(c.processed) }

// UpdatedAt returns when the checkpoint was last modified.
func (c *Checkpoint) UpdatedAt() time.Time { return c.updatedAt }

// Reset clears the checkpoint back to its initial empty state.
func (c *Checkpoint) Reset() {
	c.lastID = ""
	c.processed = make(map[string]struct{})
	c.updatedAt = time.Now().UTC()
}

// snapshot is the persisted JSON form. The id list is sorted so the
// file stays diffable and human-inspectable.
type snapshot struct {
	LastProcessedID string    `json:"last_processed_id"`
	ProcessedIDs    []string  `json:"processed_ids"`
	TotalProcessed  int       `json:"total_processed"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MarshalJSON implements json.Marshaler.
func (c *Checkpoint) MarshalJSON() ([]byte, error) {
	ids := make([]string, 0, len(c.processed))
	for id := range c.processed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return json.Marshal(snapshot{
		LastProcessedID: c.lastID,
		ProcessedIDs:    ids,
		TotalProcessed:  len(ids),
		UpdatedAt:       c.updatedAt,
	})
}

// UnmarshalJSON implements json.Unmarshaler. The processed set is
// authoritative: the counter is recomputed from it, so a hand-edited
// file with a stale total_processed still loads consistently.
func (c *Checkpoint) UnmarshalJSON(data []byte) error {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	c.lastID = s.LastProcessedID
	c.processed = make(map[string]struct{}, len(s.ProcessedIDs))
	for _, id := range s.ProcessedIDs {
		c.processed[id] = struct{}{}
	}
	c.updatedAt = s.UpdatedAt
	if c.updatedAt.IsZero() {
		c.updatedAt = time.Now().UTC()
	}
	return nil
}
