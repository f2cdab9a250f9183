package model

// Verdict classifies the result of checking one record against the
// verification service.
type Verdict string

const (
	// VerdictValid means the service judged the relationship medically sound.
	VerdictValid Verdict = "valid"
	// VerdictInvalid means the service rejected the relationship.
	VerdictInvalid Verdict = "invalid"
	// VerdictError means the service was unreachable or its response could
	// not be interpreted. Error outcomes never advance the checkpoint, so
	// the record is retried on a later run.
	VerdictError Verdict = "error"
)

// Outcome is the result of verifying a single record.
type Outcome struct {
	ID      string  `json:"id"`
	Verdict Verdict `json:"verdict"`
	Reason  string  `json:"reason,omitempty"`
	Record  Record  `json:"-"`
}

// Resolved reports whether the outcome is definitive (valid or invalid).
// Only resolved outcomes are marked processed in the checkpoint.
func (o Outcome) Resolved() bool {
	return o.Verdict == VerdictValid || o.Verdict == VerdictInvalid
}
