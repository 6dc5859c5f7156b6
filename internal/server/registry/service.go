// Package registry implements the mutation protocol over the ownership and
// authorization stores: mint, transfer, approve and operator grants, plus
// the read surface. It is the only writer of those stores.
package registry

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/healthdot/registry/internal/common"
	"github.com/healthdot/registry/internal/dbx"
	"github.com/healthdot/registry/internal/logging"
	"github.com/healthdot/registry/internal/metrics"
	"github.com/healthdot/registry/internal/server/config"
	"github.com/healthdot/registry/internal/server/models"
	"github.com/healthdot/registry/internal/server/repositories/approvals"
	"github.com/healthdot/registry/internal/server/repositories/repomanager"
)

// Service is the mutation protocol. Every mutating call runs under a
// single-writer mutex and, when PostgreSQL backs the stores, inside one
// transaction, so a failing call leaves no partial writes behind. With
// in-memory stores every operation validates fully before its first write,
// which gives the same all-or-nothing behavior without a transaction.
type Service struct {
	db     *sql.DB // nil when the repository manager is memory-backed
	rm     repomanager.RepositoryManager
	config *config.Config
	logger logging.Logger
	sink   Sink

	mu sync.Mutex
}

func NewService(db *sql.DB, rm repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger, sink Sink) *Service {
	return &Service{
		db:     db,
		rm:     rm,
		config: cfg,
		logger: logger.With("module", "registry"),
		sink:   sink,
	}
}

// rejectionReason maps a sentinel error to its metrics label.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, common.ErrTokenNotFound):
		return "token_not_found"
	case errors.Is(err, common.ErrTokenExists):
		return "token_exists"
	case errors.Is(err, common.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, common.ErrInvalidRecipient):
		return "invalid_recipient"
	case errors.Is(err, common.ErrInvalidOperator):
		return "invalid_operator"
	default:
		return "internal"
	}
}

// mutate serializes the operation, runs it in a transaction when a database
// is present, and publishes the collected events only after commit.
func (s *Service) mutate(ctx context.Context, op string, fn func(ctx context.Context, tx dbx.DBTX, emit func(*models.Event)) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var emitted []*models.Event
	run := func(ctx context.Context, tx dbx.DBTX) error {
		emitted = emitted[:0]
		return fn(ctx, tx, func(e *models.Event) { emitted = append(emitted, e) })
	}

	var err error
	if s.db == nil {
		err = run(ctx, nil)
	} else {
		err = dbx.WithTx(ctx, s.db, nil, run)
	}

	if err != nil {
		metrics.Mutations.WithLabelValues(op, "rejected").Inc()
		metrics.Rejections.WithLabelValues(rejectionReason(err)).Inc()
		return err
	}

	metrics.Mutations.WithLabelValues(op, "ok").Inc()
	if s.sink != nil && len(emitted) > 0 {
		s.sink.Publish(ctx, emitted)
	}
	return nil
}

func newEvent(kind string) *models.Event {
	return &models.Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		OccurredAt: time.Now().UTC(),
	}
}

// isAuthorized is the single authorization gate used by every mutating
// operation: caller is the owner, the token's delegate, or an approved
// operator for the owner.
func (s *Service) isAuthorized(ctx context.Context, ar approvals.Repository, caller string, t *models.Token) (bool, error) {
	if caller == t.Owner {
		return true, nil
	}
	delegate, err := ar.GetApproved(ctx, t.ID)
	if err != nil {
		return false, err
	}
	if delegate != common.ZeroAccount && delegate == caller {
		return true, nil
	}
	return ar.IsOperator(ctx, t.Owner, caller)
}

// Mint creates tokenID owned by caller, bound to dataRef. The mint policy
// (config allow-list) decides who may mint; uniqueness of the identifier is
// guaranteed here regardless of policy.
func (s *Service) Mint(ctx context.Context, caller, tokenID, dataRef string) error {
	err := s.mutate(ctx, "mint", func(ctx context.Context, tx dbx.DBTX, emit func(*models.Event)) error {
		if caller == common.ZeroAccount {
			return common.ErrInvalidRecipient
		}
		if !s.config.MayMint(caller) {
			return common.ErrUnauthorized
		}

		tr := s.rm.Tokens(tx)

		_, err := tr.Get(ctx, tokenID)
		if err == nil {
			return common.ErrTokenExists
		}
		if !errors.Is(err, common.ErrTokenNotFound) {
			return err
		}

		if err := tr.Insert(ctx, &models.Token{ID: tokenID, Owner: caller, DataRef: dataRef}); err != nil {
			return err
		}

		e := newEvent(models.EventTransfer)
		e.TokenID = tokenID
		e.From = common.ZeroAccount
		e.To = caller
		if err := s.rm.Events(tx).Append(ctx, e); err != nil {
			return err
		}
		emit(e)
		return nil
	})
	if err != nil {
		return err
	}

	metrics.TokensMinted.Inc()
	s.logger.Info(ctx, "token minted", "token_id", tokenID, "owner", caller)
	return nil
}

// Transfer moves tokenID from its recorded owner to a new one. The caller
// must pass the authorization gate and the recorded owner must match from.
// The token's single-token approval is cleared in the same atomic unit.
func (s *Service) Transfer(ctx context.Context, caller, from, to, tokenID string) error {
	return s.mutate(ctx, "transfer", func(ctx context.Context, tx dbx.DBTX, emit func(*models.Event)) error {
		tr := s.rm.Tokens(tx)
		ar := s.rm.Approvals(tx)

		t, err := tr.Get(ctx, tokenID)
		if err != nil {
			return err
		}

		authorized, err := s.isAuthorized(ctx, ar, caller, t)
		if err != nil {
			return err
		}
		if !authorized || t.Owner != from {
			return common.ErrUnauthorized
		}
		if to == common.ZeroAccount {
			return common.ErrInvalidRecipient
		}

		if err := ar.ClearApproval(ctx, tokenID); err != nil {
			return err
		}
		if err := tr.UpdateOwner(ctx, tokenID, to); err != nil {
			return err
		}

		e := newEvent(models.EventTransfer)
		e.TokenID = tokenID
		e.From = from
		e.To = to
		if err := s.rm.Events(tx).Append(ctx, e); err != nil {
			return err
		}
		emit(e)

		s.logger.Info(ctx, "token transferred", "token_id", tokenID, "from", from, "to", to)
		return nil
	})
}

// Approve sets (or clears, with the zero account) tokenID's delegate.
// Re-approval overwrites the previous delegate.
func (s *Service) Approve(ctx context.Context, caller, tokenID, delegate string) error {
	return s.mutate(ctx, "approve", func(ctx context.Context, tx dbx.DBTX, emit func(*models.Event)) error {
		tr := s.rm.Tokens(tx)
		ar := s.rm.Approvals(tx)

		t, err := tr.Get(ctx, tokenID)
		if err != nil {
			return err
		}

		authorized, err := s.isAuthorized(ctx, ar, caller, t)
		if err != nil {
			return err
		}
		if !authorized {
			return common.ErrUnauthorized
		}

		if err := ar.SetApproved(ctx, tokenID, delegate); err != nil {
			return err
		}

		e := newEvent(models.EventApproval)
		e.TokenID = tokenID
		e.Owner = t.Owner
		e.Delegate = delegate
		if err := s.rm.Events(tx).Append(ctx, e); err != nil {
			return err
		}
		emit(e)
		return nil
	})
}

// SetApprovalForAll sets or clears the blanket grant from caller to
// operator. Granting to oneself or to the zero account is rejected.
func (s *Service) SetApprovalForAll(ctx context.Context, caller, operator string, approved bool) error {
	return s.mutate(ctx, "set_approval_for_all", func(ctx context.Context, tx dbx.DBTX, emit func(*models.Event)) error {
		if operator == common.ZeroAccount || operator == caller {
			return common.ErrInvalidOperator
		}

		if err := s.rm.Approvals(tx).SetOperator(ctx, caller, operator, approved); err != nil {
			return err
		}

		e := newEvent(models.EventApprovalForAll)
		e.Owner = caller
		e.Operator = operator
		e.Approved = approved
		if err := s.rm.Events(tx).Append(ctx, e); err != nil {
			return err
		}
		emit(e)
		return nil
	})
}

// ---- read surface ----

// Token returns the full token row.
func (s *Service) Token(ctx context.Context, tokenID string) (*models.Token, error) {
	return s.rm.Tokens(s.db).Get(ctx, tokenID)
}

// OwnerOf returns the current owner of tokenID.
func (s *Service) OwnerOf(ctx context.Context, tokenID string) (string, error) {
	t, err := s.rm.Tokens(s.db).Get(ctx, tokenID)
	if err != nil {
		return "", err
	}
	return t.Owner, nil
}

// BalanceOf returns the number of tokens account currently owns.
func (s *Service) BalanceOf(ctx context.Context, account string) (uint64, error) {
	return s.rm.Tokens(s.db).BalanceOf(ctx, account)
}

// GetApproved returns tokenID's delegate, the zero account when none.
func (s *Service) GetApproved(ctx context.Context, tokenID string) (string, error) {
	if _, err := s.rm.Tokens(s.db).Get(ctx, tokenID); err != nil {
		return "", err
	}
	return s.rm.Approvals(s.db).GetApproved(ctx, tokenID)
}

// IsApprovedForAll reports whether operator holds a blanket grant from owner.
func (s *Service) IsApprovedForAll(ctx context.Context, owner, operator string) (bool, error) {
	return s.rm.Approvals(s.db).IsOperator(ctx, owner, operator)
}

// ListTokens returns tokens owned by owner, or all tokens when owner is "".
func (s *Service) ListTokens(ctx context.Context, owner string) ([]*models.Token, error) {
	return s.rm.Tokens(s.db).List(ctx, owner)
}

// TokenByDataRef returns the token bound to dataRef, if any.
func (s *Service) TokenByDataRef(ctx context.Context, dataRef string) (*models.Token, error) {
	return s.rm.Tokens(s.db).GetByDataRef(ctx, dataRef)
}

// Events returns up to limit committed events after the given sequence.
func (s *Service) Events(ctx context.Context, afterSeq int64, limit int) ([]*models.Event, error) {
	return s.rm.Events(s.db).SelectSince(ctx, afterSeq, limit)
}

// Authorized reports whether caller passes the authorization gate for
// tokenID. Collaborating services (record access) use this instead of
// reimplementing the predicate.
func (s *Service) Authorized(ctx context.Context, caller, tokenID string) (bool, error) {
	t, err := s.rm.Tokens(s.db).Get(ctx, tokenID)
	if err != nil {
		return false, err
	}
	return s.isAuthorized(ctx, s.rm.Approvals(s.db), caller, t)
}
