package models

import "time"

// Event kinds emitted by the mutation protocol.
const (
	EventTransfer       = "transfer"
	EventApproval       = "approval"
	EventApprovalForAll = "approval_for_all"
)

// Event is one emitted registry notification. Events are appended in the
// same transaction as the mutation that produced them, so the feed never
// shows an event for a call that did not commit.
//
// Field usage by kind:
//
//	transfer          From ("" on mint), To, TokenID
//	approval          Owner, Delegate, TokenID
//	approval_for_all  Owner, Operator, Approved
type Event struct {
	Seq        int64
	ID         string
	Kind       string
	TokenID    string
	From       string
	To         string
	Owner      string
	Delegate   string
	Operator   string
	Approved   bool
	OccurredAt time.Time
}
