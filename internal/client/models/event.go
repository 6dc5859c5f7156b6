package models

import "time"

// Event is one committed registry event, identified by its sequence number.
type Event struct {
	Seq        int64     `json:"seq"`
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	TokenID    string    `json:"token_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Owner      string    `json:"owner"`
	Delegate   string    `json:"delegate"`
	Operator   string    `json:"operator"`
	Approved   bool      `json:"approved"`
	OccurredAt time.Time `json:"occurred_at"`
}
