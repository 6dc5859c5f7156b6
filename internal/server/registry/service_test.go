package registry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthdot/registry/internal/common"
	"github.com/healthdot/registry/internal/logging"
	"github.com/healthdot/registry/internal/server/config"
	"github.com/healthdot/registry/internal/server/models"
	"github.com/healthdot/registry/internal/server/repositories/repomanager"
)

type captureSink struct {
	mu     sync.Mutex
	events []*models.Event
}

func (s *captureSink) Publish(ctx context.Context, events []*models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
}

func (s *captureSink) published() []*models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.Event(nil), s.events...)
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestService(t *testing.T, mutate func(*config.Config)) (*Service, *captureSink) {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DatabaseDSN = ""
	if mutate != nil {
		mutate(cfg)
	}

	sink := &captureSink{}
	return NewService(nil, repomanager.NewMemoryRepositoryManager(), cfg, testLogger(), sink), sink
}

// snapshot captures the externally observable registry state so tests can
// assert that a rejected mutation changed nothing.
type snapshot struct {
	owners    map[string]string
	delegates map[string]string
	balances  map[string]uint64
	numEvents int
}

func takeSnapshot(t *testing.T, s *Service, accounts []string) snapshot {
	t.Helper()
	ctx := context.Background()

	snap := snapshot{
		owners:    map[string]string{},
		delegates: map[string]string{},
		balances:  map[string]uint64{},
	}

	tokens, err := s.ListTokens(ctx, "")
	require.NoError(t, err)
	for _, tok := range tokens {
		snap.owners[tok.ID] = tok.Owner
		delegate, err := s.GetApproved(ctx, tok.ID)
		require.NoError(t, err)
		snap.delegates[tok.ID] = delegate
	}

	for _, a := range accounts {
		b, err := s.BalanceOf(ctx, a)
		require.NoError(t, err)
		snap.balances[a] = b
	}

	events, err := s.Events(ctx, 0, 10000)
	require.NoError(t, err)
	snap.numEvents = len(events)

	return snap
}

func TestMint(t *testing.T) {
	ctx := context.Background()
	s, sink := newTestService(t, nil)

	require.NoError(t, s.Mint(ctx, "alice", "scan-001", "ref-1"))

	owner, err := s.OwnerOf(ctx, "scan-001")
	require.NoError(t, err)
	assert.Equal(t, "alice", owner)

	balance, err := s.BalanceOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), balance)

	// A fresh token has no delegate.
	delegate, err := s.GetApproved(ctx, "scan-001")
	require.NoError(t, err)
	assert.Equal(t, common.ZeroAccount, delegate)

	events := sink.published()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventTransfer, events[0].Kind)
	assert.Equal(t, common.ZeroAccount, events[0].From)
	assert.Equal(t, "alice", events[0].To)
	assert.Equal(t, "scan-001", events[0].TokenID)
}

func TestMint_DuplicateIdentifier(t *testing.T) {
	ctx := context.Background()
	s, sink := newTestService(t, nil)

	require.NoError(t, s.Mint(ctx, "alice", "scan-001", ""))
	before := takeSnapshot(t, s, []string{"alice", "bob"})

	err := s.Mint(ctx, "bob", "scan-001", "")
	assert.ErrorIs(t, err, common.ErrTokenExists)

	// Same identifier, same owner: still rejected.
	err = s.Mint(ctx, "alice", "scan-001", "")
	assert.ErrorIs(t, err, common.ErrTokenExists)

	after := takeSnapshot(t, s, []string{"alice", "bob"})
	assert.Equal(t, before, after)
	assert.Len(t, sink.published(), 1)
}

func TestMint_ZeroCaller(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, nil)

	err := s.Mint(ctx, common.ZeroAccount, "scan-001", "")
	assert.ErrorIs(t, err, common.ErrInvalidRecipient)
}

func TestMint_Policy(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, func(c *config.Config) {
		c.MinterAccounts = []string{"registrar"}
	})

	err := s.Mint(ctx, "alice", "scan-001", "")
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	require.NoError(t, s.Mint(ctx, "registrar", "scan-001", ""))
}

func TestTransfer_ByOwner(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, nil)

	require.NoError(t, s.Mint(ctx, "alice", "scan-001", ""))
	require.NoError(t, s.Approve(ctx, "alice", "scan-001", "carol"))

	require.NoError(t, s.Transfer(ctx, "alice", "alice", "bob", "scan-001"))

	owner, err := s.OwnerOf(ctx, "scan-001")
	require.NoError(t, err)
	assert.Equal(t, "bob", owner)

	// The transfer cleared the delegate.
	delegate, err := s.GetApproved(ctx, "scan-001")
	require.NoError(t, err)
	assert.Equal(t, common.ZeroAccount, delegate)

	aliceBalance, err := s.BalanceOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), aliceBalance)

	bobBalance, err := s.BalanceOf(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), bobBalance)
}

func TestTransfer_ByDelegate(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, nil)

	require.NoError(t, s.Mint(ctx, "alice", "scan-001", ""))
	require.NoError(t, s.Approve(ctx, "alice", "scan-001", "bob"))

	require.NoError(t, s.Transfer(ctx, "bob", "alice", "bob", "scan-001"))

	owner, err := s.OwnerOf(ctx, "scan-001")
	require.NoError(t, err)
	assert.Equal(t, "bob", owner)
}

func TestTransfer_ByOperator(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, nil)

	require.NoError(t, s.Mint(ctx, "alice", "scan-001", ""))
	require.NoError(t, s.Mint(ctx, "alice", "scan-002", ""))
	require.NoError(t, s.SetApprovalForAll(ctx, "alice", "hospital", true))

	// The blanket grant covers every token alice owns.
	require.NoError(t, s.Transfer(ctx, "hospital", "alice", "clinic", "scan-001"))
	require.NoError(t, s.Transfer(ctx, "hospital", "alice", "clinic", "scan-002"))

	balance, err := s.BalanceOf(ctx, "clinic")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), balance)
}

func TestTransfer_UnauthorizedLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	s, sink := newTestService(t, nil)

	require.NoError(t, s.Mint(ctx, "alice", "scan-001", ""))
	require.NoError(t, s.Approve(ctx, "alice", "scan-001", "carol"))
	before := takeSnapshot(t, s, []string{"alice", "mallory"})
	published := len(sink.published())

	err := s.Transfer(ctx, "mallory", "alice", "mallory", "scan-001")
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	after := takeSnapshot(t, s, []string{"alice", "mallory"})
	assert.Equal(t, before, after)
	assert.Len(t, sink.published(), published)
}

func TestTransfer_WrongFrom(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, nil)

	require.NoError(t, s.Mint(ctx, "alice", "scan-001", ""))

	err := s.Transfer(ctx, "alice", "bob", "carol", "scan-001")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestTransfer_ZeroRecipient(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, nil)

	require.NoError(t, s.Mint(ctx, "alice", "scan-001", ""))
	require.NoError(t, s.Approve(ctx, "alice", "scan-001", "bob"))
	before := takeSnapshot(t, s, []string{"alice"})

	err := s.Transfer(ctx, "alice", "alice", common.ZeroAccount, "scan-001")
	assert.ErrorIs(t, err, common.ErrInvalidRecipient)

	// The rejected transfer must not have cleared the delegate either.
	after := takeSnapshot(t, s, []string{"alice"})
	assert.Equal(t, before, after)
}

func TestTransfer_MissingToken(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, nil)

	err := s.Transfer(ctx, "alice", "alice", "bob", "nope")
	assert.ErrorIs(t, err, common.ErrTokenNotFound)
}

func TestApprove(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, nil)

	require.NoError(t, s.Mint(ctx, "alice", "scan-001", ""))
	require.NoError(t, s.Approve(ctx, "alice", "scan-001", "bob"))

	delegate, err := s.GetApproved(ctx, "scan-001")
	require.NoError(t, err)
	assert.Equal(t, "bob", delegate)

	// Re-approval replaces the previous delegate; there is only one slot.
	require.NoError(t, s.Approve(ctx, "alice", "scan-001", "carol"))
	delegate, err = s.GetApproved(ctx, "scan-001")
	require.NoError(t, err)
	assert.Equal(t, "carol", delegate)
}

func TestApprove_ClearWithZeroAccount(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, nil)

	require.NoError(t, s.Mint(ctx, "alice", "scan-001", ""))
	require.NoError(t, s.Approve(ctx, "alice", "scan-001", "bob"))
	require.NoError(t, s.Approve(ctx, "alice", "scan-001", common.ZeroAccount))

	delegate, err := s.GetApproved(ctx, "scan-001")
	require.NoError(t, err)
	assert.Equal(t, common.ZeroAccount, delegate)

	// The revoked delegate can no longer move the token.
	err = s.Transfer(ctx, "bob", "alice", "bob", "scan-001")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestApprove_ByDelegateAndOperator(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, nil)

	require.NoError(t, s.Mint(ctx, "alice", "scan-001", ""))

	// An operator may manage approvals on the owner's behalf.
	require.NoError(t, s.SetApprovalForAll(ctx, "alice", "hospital", true))
	require.NoError(t, s.Approve(ctx, "hospital", "scan-001", "bob"))

	// So may the current delegate.
	require.NoError(t, s.Approve(ctx, "bob", "scan-001", "carol"))

	delegate, err := s.GetApproved(ctx, "scan-001")
	require.NoError(t, err)
	assert.Equal(t, "carol", delegate)
}

func TestApprove_Unauthorized(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, nil)

	require.NoError(t, s.Mint(ctx, "alice", "scan-001", ""))

	err := s.Approve(ctx, "mallory", "scan-001", "mallory")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestApprove_MissingToken(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, nil)

	err := s.Approve(ctx, "alice", "nope", "bob")
	assert.ErrorIs(t, err, common.ErrTokenNotFound)
}

func TestGetApproved_MissingToken(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, nil)

	_, err := s.GetApproved(ctx, "nope")
	assert.ErrorIs(t, err, common.ErrTokenNotFound)
}

func TestSetApprovalForAll(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, nil)

	require.NoError(t, s.SetApprovalForAll(ctx, "alice", "hospital", true))

	ok, err := s.IsApprovedForAll(ctx, "alice", "hospital")
	require.NoError(t, err)
	assert.True(t, ok)

	// The grant also covers tokens minted after it was given.
	require.NoError(t, s.Mint(ctx, "alice", "scan-001", ""))
	require.NoError(t, s.Transfer(ctx, "hospital", "alice", "bob", "scan-001"))

	require.NoError(t, s.SetApprovalForAll(ctx, "alice", "hospital", false))
	ok, err = s.IsApprovedForAll(ctx, "alice", "hospital")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetApprovalForAll_InvalidOperator(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, nil)

	err := s.SetApprovalForAll(ctx, "alice", common.ZeroAccount, true)
	assert.ErrorIs(t, err, common.ErrInvalidOperator)

	err = s.SetApprovalForAll(ctx, "alice", "alice", true)
	assert.ErrorIs(t, err, common.ErrInvalidOperator)
}

func TestSetApprovalForAll_IndependentPairs(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, nil)

	require.NoError(t, s.SetApprovalForAll(ctx, "alice", "hospital", true))

	ok, err := s.IsApprovedForAll(ctx, "bob", "hospital")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.IsApprovedForAll(ctx, "hospital", "alice")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRevokedDelegateCannotTransfer(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, nil)

	require.NoError(t, s.Mint(ctx, "alice", "scan-001", ""))
	require.NoError(t, s.Approve(ctx, "alice", "scan-001", "bob"))
	require.NoError(t, s.Transfer(ctx, "alice", "alice", "carol", "scan-001"))

	// bob's approval was cleared by the transfer; carol never granted one.
	err := s.Transfer(ctx, "bob", "carol", "bob", "scan-001")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestEventsFeed(t *testing.T) {
	ctx := context.Background()
	s, sink := newTestService(t, nil)

	require.NoError(t, s.Mint(ctx, "alice", "scan-001", ""))
	require.NoError(t, s.Approve(ctx, "alice", "scan-001", "bob"))
	require.NoError(t, s.SetApprovalForAll(ctx, "alice", "hospital", true))
	require.NoError(t, s.Transfer(ctx, "alice", "alice", "bob", "scan-001"))

	events, err := s.Events(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, events, 4)

	kinds := []string{events[0].Kind, events[1].Kind, events[2].Kind, events[3].Kind}
	assert.Equal(t, []string{
		models.EventTransfer,
		models.EventApproval,
		models.EventApprovalForAll,
		models.EventTransfer,
	}, kinds)

	for i, e := range events {
		assert.Equal(t, int64(i+1), e.Seq)
	}

	// Pagination after a known sequence number.
	tail, err := s.Events(ctx, 2, 100)
	require.NoError(t, err)
	require.Len(t, tail, 2)
	assert.Equal(t, int64(3), tail[0].Seq)

	// The sink saw exactly the committed events, in order.
	published := sink.published()
	require.Len(t, published, 4)
	assert.Equal(t, events[3].ID, published[3].ID)
}

func TestBalancesMatchOwnership(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, nil)

	accounts := []string{"alice", "bob", "carol", "hospital"}

	for i := 0; i < 12; i++ {
		owner := accounts[i%3]
		require.NoError(t, s.Mint(ctx, owner, fmt.Sprintf("scan-%03d", i), ""))
	}

	require.NoError(t, s.SetApprovalForAll(ctx, "alice", "hospital", true))
	require.NoError(t, s.Transfer(ctx, "alice", "alice", "bob", "scan-000"))
	require.NoError(t, s.Transfer(ctx, "hospital", "alice", "carol", "scan-003"))
	require.NoError(t, s.Transfer(ctx, "bob", "bob", "alice", "scan-001"))
	require.NoError(t, s.Transfer(ctx, "carol", "carol", "bob", "scan-002"))

	// Recompute every balance from the ownership store and compare with the
	// maintained counters.
	all, err := s.ListTokens(ctx, "")
	require.NoError(t, err)
	recomputed := map[string]uint64{}
	for _, tok := range all {
		recomputed[tok.Owner]++
	}

	for _, a := range accounts {
		b, err := s.BalanceOf(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, recomputed[a], b, "balance drift for %s", a)
	}

	// Every token still has exactly one owner.
	assert.Len(t, all, 12)
}

func TestAuthorized(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, nil)

	require.NoError(t, s.Mint(ctx, "alice", "scan-001", "ref-1"))
	require.NoError(t, s.Approve(ctx, "alice", "scan-001", "bob"))
	require.NoError(t, s.SetApprovalForAll(ctx, "alice", "hospital", true))

	for caller, want := range map[string]bool{
		"alice":    true,
		"bob":      true,
		"hospital": true,
		"mallory":  false,
	} {
		got, err := s.Authorized(ctx, caller, "scan-001")
		require.NoError(t, err)
		assert.Equal(t, want, got, "caller %s", caller)
	}

	_, err := s.Authorized(ctx, "alice", "nope")
	assert.ErrorIs(t, err, common.ErrTokenNotFound)
}

func TestTokenByDataRef(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, nil)

	require.NoError(t, s.Mint(ctx, "alice", "scan-001", "record-9"))

	tok, err := s.TokenByDataRef(ctx, "record-9")
	require.NoError(t, err)
	assert.Equal(t, "scan-001", tok.ID)

	_, err = s.TokenByDataRef(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrTokenNotFound)
}
