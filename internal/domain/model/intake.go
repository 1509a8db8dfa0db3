package model

import "time"

// PartialJobFields is the best-effort structured output of the external
// document parser. Every field is optional and untrusted; intake validates
// each one before use.
type PartialJobFields struct {
	CustomerID              *string `json:"customer_id,omitempty"`
	CustomerReferenceNumber *string `json:"customer_reference_number,omitempty"`
	SizeKey                 *string `json:"size_key,omitempty"`
	Quantity                *int64  `json:"quantity,omitempty"`
	RequiredArtwork         *int    `json:"required_artwork,omitempty"`
	RequiredDataFiles       *int    `json:"required_data_files,omitempty"`
}

// JobFile records a deliverable file attached to a job via the blob store.
type JobFile struct {
	ID        string    `json:"id"         db:"id"`
	JobID     string    `json:"job_id"     db:"job_id"`
	Kind      FileKind  `json:"kind"       db:"kind"`
	Handle    string    `json:"handle"     db:"handle"`
	Name      string    `json:"name"       db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
