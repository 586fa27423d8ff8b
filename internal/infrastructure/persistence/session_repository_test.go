package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appcanvas/builder/internal/domain/models"
)

func TestSessionRepository_InsertAndGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSessionRepository(db)
	expires := time.Now().Add(time.Hour).Truncate(time.Millisecond)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO builder_sessions (id, user_id, expires_at, is_revoked, last_activity, created_date)")).
		WithArgs("s1", "u1", expires.UnixMilli(), false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.InsertSession(context.Background(), &models.StoredSession{ID: "s1", UserID: "u1", ExpiresAt: expires}))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, expires_at, is_revoked, last_activity, created_date")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expires_at", "is_revoked", "last_activity", "created_date"}).
			AddRow("s1", "u1", expires.UnixMilli(), true, int64(0), int64(0)))

	got, err := repo.GetSession(context.Background(), "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsRevoked)
	assert.True(t, expires.Equal(got.ExpiresAt))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	missing, err := repo.GetSession(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_PurgeExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cutoff := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM builder_sessions WHERE expires_at < ? OR (is_revoked = 1 AND last_activity < ?)")).
		WithArgs(cutoff.UnixMilli(), cutoff.UnixMilli()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := NewSessionRepository(db).PurgeExpired(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsLockConflict(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"Error 1213: Deadlock found when trying to get lock", true},
		{"Error 1205: Lock wait timeout exceeded", true},
		{"database is locked (5) (SQLITE_BUSY)", true},
		{"UNIQUE constraint failed: builder_screens.id", false},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, isLockConflict(errString(tt.msg)))
		})
	}
}

type errString string

func (e errString) Error() string { return string(e) }
