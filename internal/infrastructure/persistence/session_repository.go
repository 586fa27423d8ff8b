package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/pkg/constants"
)

// SessionRepository handles database operations for user sessions
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// InsertSession creates a new session in the database
func (r *SessionRepository) InsertSession(ctx context.Context, s *models.StoredSession) error {
	q := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, expires_at, is_revoked, last_activity, created_date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		constants.TableSession)

	now := time.Now().UnixMilli()
	_, err := r.db.ExecContext(ctx, q,
		s.ID,
		s.UserID,
		s.ExpiresAt.UnixMilli(),
		s.IsRevoked,
		now,
		now,
	)
	return err
}

// GetSession retrieves a session by its ID (from JWT claim). Unknown ids return nil.
func (r *SessionRepository) GetSession(ctx context.Context, sessionID string) (*models.StoredSession, error) {
	q := fmt.Sprintf(`
		SELECT id, user_id, expires_at, is_revoked, last_activity, created_date
		FROM %s
		WHERE id = ? LIMIT 1`,
		constants.TableSession)

	var s models.StoredSession
	var expiresAt, lastActivity, createdDate int64
	err := r.db.QueryRowContext(ctx, q, sessionID).Scan(
		&s.ID,
		&s.UserID,
		&expiresAt,
		&s.IsRevoked,
		&lastActivity,
		&createdDate,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	s.ExpiresAt = time.UnixMilli(expiresAt)
	s.LastActivity = time.UnixMilli(lastActivity)
	s.CreatedAt = time.UnixMilli(createdDate)
	return &s, nil
}

// RevokeSession marks a session as revoked
func (r *SessionRepository) RevokeSession(ctx context.Context, sessionID string) error {
	q := fmt.Sprintf("UPDATE %s SET is_revoked = 1 WHERE id = ?", constants.TableSession)
	_, err := r.db.ExecContext(ctx, q, sessionID)
	return err
}

// UpdateLastActivity updates the last activity timestamp
func (r *SessionRepository) UpdateLastActivity(ctx context.Context, sessionID string) error {
	q := fmt.Sprintf("UPDATE %s SET last_activity = ? WHERE id = ?", constants.TableSession)
	_, err := r.db.ExecContext(ctx, q, time.Now().UnixMilli(), sessionID)
	return err
}

// PurgeExpired deletes sessions that expired or were revoked before cutoff
func (r *SessionRepository) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	q := fmt.Sprintf("DELETE FROM %s WHERE expires_at < ? OR (is_revoked = 1 AND last_activity < ?)", constants.TableSession)
	res, err := r.db.ExecContext(ctx, q, cutoff.UnixMilli(), cutoff.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
