// Package models defines the persistence-level rows shared by the server's
// repositories and services.
package models

import "time"

// Token is one registry entry: a unique token identifier bound to the
// account that currently holds custody of it and to an opaque patient
// record reference fixed at mint time.
//
// A token with no row is non-existent; the tokens table is the only
// authority on existence.
type Token struct {
	ID        string
	Owner     string
	DataRef   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
