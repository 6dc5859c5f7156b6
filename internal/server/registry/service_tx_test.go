package registry

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthdot/registry/internal/common"
	"github.com/healthdot/registry/internal/server/config"
	"github.com/healthdot/registry/internal/server/repositories/repomanager"
)

func newTxTestService(t *testing.T) (*Service, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()

	s := NewService(db, repomanager.NewPostgresRepositoryManager(), cfg, testLogger(), nil)
	return s, mock, db
}

func TestMint_CommitsOneTransaction(t *testing.T) {
	s, mock, db := newTxTestService(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, owner, data_ref, created_at, updated_at FROM tokens WHERE id = \$1`).
		WithArgs("t1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO tokens`).
		WithArgs("t1", "alice", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO events .*RETURNING seq;`).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(int64(1)))
	mock.ExpectCommit()

	require.NoError(t, s.Mint(context.Background(), "alice", "t1", ""))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMint_RollsBackOnDuplicate(t *testing.T) {
	s, mock, db := newTxTestService(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, owner, data_ref, created_at, updated_at FROM tokens WHERE id = \$1`).
		WithArgs("t1").
		WillReturnError(sql.ErrNoRows)
	// Lost the race after the existence check: the insert hits the unique
	// constraint and the whole transaction is rolled back.
	mock.ExpectExec(`INSERT INTO tokens`).
		WithArgs("t1", "alice", "").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err := s.Mint(context.Background(), "alice", "t1", "")
	assert.ErrorIs(t, err, common.ErrTokenExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransfer_RollsBackWhenEventAppendFails(t *testing.T) {
	s, mock, db := newTxTestService(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, owner, data_ref, created_at, updated_at FROM tokens WHERE id = \$1`).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner", "data_ref", "created_at", "updated_at"}).
			AddRow("t1", "alice", "", time.Now(), time.Now()))
	mock.ExpectQuery(`SELECT delegate FROM token_approvals WHERE token_id = \$1`).
		WithArgs("t1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`DELETE FROM token_approvals WHERE token_id = \$1;`).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE tokens SET owner = \$2`).
		WithArgs("t1", "bob").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO events`).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := s.Transfer(context.Background(), "alice", "alice", "bob", "t1")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
