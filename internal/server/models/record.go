package models

import "time"

// Patient record kinds.
const (
	RecordKindBiodata       = "biodata"
	RecordKindClinicalNotes = "clinical_notes"
)

// PatientRecord is the metadata for one off-chain record payload. The
// payload itself lives in object storage under StorageKey; the registry
// only keeps the pointer and, once the upload is finalized, the keccak-256
// digest of the bytes. The record ID is the value minted into a token's
// DataRef.
type PatientRecord struct {
	ID         string
	Patient    string
	Creator    string
	Kind       string
	Name       string
	StorageKey string
	DigestHex  string
	Finalized  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
