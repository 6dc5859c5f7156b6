package httpapi

import (
	"time"

	"github.com/healthdot/registry/internal/server/models"
)

type sessionRequest struct {
	Account         string `json:"account" binding:"required"`
	RegistrarSecret string `json:"registrar_secret" binding:"required"`
}

type sessionResponse struct {
	AccessToken string `json:"access_token"`
}

type mintRequest struct {
	TokenID string `json:"token_id" binding:"required"`
	DataRef string `json:"data_ref"`
}

type transferRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

type approvalRequest struct {
	// Delegate may be empty: that clears the approval.
	Delegate string `json:"delegate"`
}

type operatorRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

type tokenResponse struct {
	TokenID   string    `json:"token_id"`
	Owner     string    `json:"owner"`
	DataRef   string    `json:"data_ref,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toTokenResponse(t *models.Token) tokenResponse {
	return tokenResponse{
		TokenID:   t.ID,
		Owner:     t.Owner,
		DataRef:   t.DataRef,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

type balanceResponse struct {
	Account string `json:"account"`
	Balance uint64 `json:"balance"`
}

type approvedResponse struct {
	TokenID  string `json:"token_id"`
	Delegate string `json:"delegate"`
}

type operatorResponse struct {
	Owner    string `json:"owner"`
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

type eventResponse struct {
	Seq        int64     `json:"seq"`
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	TokenID    string    `json:"token_id,omitempty"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to,omitempty"`
	Owner      string    `json:"owner,omitempty"`
	Delegate   string    `json:"delegate,omitempty"`
	Operator   string    `json:"operator,omitempty"`
	Approved   bool      `json:"approved"`
	OccurredAt time.Time `json:"occurred_at"`
}

func toEventResponse(e *models.Event) eventResponse {
	return eventResponse{
		Seq:        e.Seq,
		ID:         e.ID,
		Kind:       e.Kind,
		TokenID:    e.TokenID,
		From:       e.From,
		To:         e.To,
		Owner:      e.Owner,
		Delegate:   e.Delegate,
		Operator:   e.Operator,
		Approved:   e.Approved,
		OccurredAt: e.OccurredAt,
	}
}

type createRecordRequest struct {
	Patient string `json:"patient" binding:"required"`
	Kind    string `json:"kind" binding:"required"`
	Name    string `json:"name"`
}

type createRecordResponse struct {
	Record recordResponse `json:"record"`
	PutURL string         `json:"put_url"`
}

type finalizeRecordRequest struct {
	DigestHex string `json:"digest_hex" binding:"required"`
}

type recordResponse struct {
	ID        string    `json:"id"`
	Patient   string    `json:"patient"`
	Creator   string    `json:"creator"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name,omitempty"`
	DigestHex string    `json:"digest_hex,omitempty"`
	Finalized bool      `json:"finalized"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toRecordResponse(r *models.PatientRecord) recordResponse {
	return recordResponse{
		ID:        r.ID,
		Patient:   r.Patient,
		Creator:   r.Creator,
		Kind:      r.Kind,
		Name:      r.Name,
		DigestHex: r.DigestHex,
		Finalized: r.Finalized,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type downloadResponse struct {
	GetURL string `json:"get_url"`
}

type errorResponse struct {
	Error string `json:"error"`
}
