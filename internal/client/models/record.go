package models

import "time"

// Record is the client's view of patient record metadata.
type Record struct {
	ID        string    `json:"id"`
	Patient   string    `json:"patient"`
	Creator   string    `json:"creator"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	DigestHex string    `json:"digest_hex"`
	Finalized bool      `json:"finalized"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
