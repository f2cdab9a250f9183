package model

// Canonical field keys populated by the ingest layer. Every loader maps
// whatever column names the source file uses onto these keys; any extra
// columns are carried along under their original names.
const (
	FieldEntity   = "entity"
	FieldRelation = "relation"
	FieldRelated  = "related"
)

// Record is one medical relationship row under review. Only the
// identifier is contractually required; the remaining fields are opaque
// to the pipeline beyond being templated into the verification prompt.
// Identifiers must be stable across runs or resumability breaks.
type Record struct {
	ID     string            `json:"id"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Field returns the value for key, or "" when absent.
func (r Record) Field(key string) string {
	return r.Fields[key]
}

// Entity returns the origin concept of the relationship.
func (r Record) Entity() string { return r.Fields[FieldEntity] }

// Relation returns the relation type (e.g. "Symptom1 implies Symptom2").
func (r Record) Relation() string { return r.Fields[FieldRelation] }

// Related returns the target concept of the relationship.
func (r Record) Related() string { return r.Fields[FieldRelated] }
