package model

import "time"

// InvalidRelation is one report entry: a relationship the verification
// service judged medically invalid, with the service's reason.
type InvalidRelation struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Relation string `json:"relation,omitempty"`
	Related  string `json:"related"`
	Reason   string `json:"reason"`
}

// Report is the final artifact of a verification run.
type Report struct {
	RunID      string    `json:"run_id"`
	Model      string    `json:"model"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// TotalChecked counts records that reached a definitive verdict this
	// run (valid + invalid). Records with error outcomes are counted in
	// TotalErrors and remain unprocessed.
	TotalChecked int  `json:"total_checked"`
	TotalInvalid int  `json:"total_invalid"`
	TotalErrors  int  `json:"total_errors"`
	Interrupted  bool `json:"interrupted,omitempty"`

	Invalid []InvalidRelation `json:"invalid_relations"`
}

// InvalidFromOutcome builds a report entry from an invalid outcome.
func InvalidFromOutcome(o Outcome) InvalidRelation {
	return InvalidRelation{
		ID:       o.ID,
		Entity:   o.Record.Entity(),
		Relation: o.Record.Relation(),
		Related:  o.Record.Related(),
		Reason:   o.Reason,
	}
}
