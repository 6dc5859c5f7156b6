// Package models holds the client-side views of registry objects.
package models

import "time"

// Token is the client's view of a registry token.
type Token struct {
	ID        string    `json:"token_id"`
	Owner     string    `json:"owner"`
	DataRef   string    `json:"data_ref"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
