package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/appcanvas/builder/internal/domain/events"
	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/internal/domain/ports"
	"github.com/appcanvas/builder/pkg/auth"
	"github.com/appcanvas/builder/pkg/errors"
	"github.com/appcanvas/builder/pkg/logutils"
	"github.com/appcanvas/builder/pkg/utils"
)

// UserStore is the account storage AuthService needs
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// SessionStore is the issued-session storage AuthService needs
type SessionStore interface {
	InsertSession(ctx context.Context, s *models.StoredSession) error
	GetSession(ctx context.Context, sessionID string) (*models.StoredSession, error)
	RevokeSession(ctx context.Context, sessionID string) error
	UpdateLastActivity(ctx context.Context, sessionID string) error
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// AuthService is the local identity backend: HS256 tokens whose jti points
// at a row in the sessions table, so sign-out can revoke them.
type AuthService struct {
	users          UserStore
	sessions       SessionStore
	tokens         *auth.TokenManager
	allowAnonymous bool
	listeners      events.Listeners[ports.SessionChange]
}

var _ ports.AuthProvider = (*AuthService)(nil)

// NewAuthService creates a new AuthService
func NewAuthService(users UserStore, sessions SessionStore, tokens *auth.TokenManager, allowAnonymous bool) *AuthService {
	return &AuthService{
		users:          users,
		sessions:       sessions,
		tokens:         tokens,
		allowAnonymous: allowAnonymous,
	}
}

// SignInWithPassword authenticates an account and issues a session
func (s *AuthService) SignInWithPassword(ctx context.Context, email, password string) (*models.AuthSession, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !auth.IsValidEmail(email) {
		return nil, errors.NewValidationError("email", "Invalid email address")
	}

	// 1. Find user by email
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if user == nil {
		logutils.Log.Warnf("⚠️ Login failed for %s: user not found", email)
		return nil, errors.NewUnauthorizedError("Invalid email or password")
	}

	// 2. Verify password
	if user.PasswordHash == "" {
		return nil, errors.NewUnauthorizedError("Password authentication not configured for this user")
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		logutils.Log.Warnf("⚠️ Login failed for %s: invalid password", email)
		return nil, errors.NewUnauthorizedError("Invalid email or password")
	}

	// 3. Issue token and store the session
	return s.issue(ctx, user)
}

// SignInAnonymously creates a guest account and signs it in
func (s *AuthService) SignInAnonymously(ctx context.Context) (*models.AuthSession, error) {
	if !s.allowAnonymous {
		return nil, errors.NewPermissionError("sign in anonymously", "session")
	}

	user := &models.User{
		ID:          utils.GenerateID(),
		Name:        "Guest",
		IsAnonymous: true,
		CreatedAt:   time.Now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create anonymous user: %w", err)
	}
	return s.issue(ctx, user)
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*models.AuthSession, error) {
	session := userSessionOf(user)
	claims := auth.UserSession{
		ID:          session.ID,
		Name:        session.Name,
		Email:       user.Email,
		IsAnonymous: user.IsAnonymous,
	}

	token, tokenClaims, err := s.tokens.GenerateToken(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	expiresAt := tokenClaims.ExpiresAt.Time
	stored := &models.StoredSession{
		ID:        tokenClaims.ID,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}
	if err := s.sessions.InsertSession(ctx, stored); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	result := &models.AuthSession{
		ID:        tokenClaims.ID,
		Token:     token,
		User:      session,
		ExpiresAt: expiresAt,
	}
	logutils.Log.WithFields(logutils.Fields{"user": user.ID, "anonymous": user.IsAnonymous}).Info("🔑 Session issued")
	s.listeners.Notify(ports.SessionChange{SignedIn: true, Session: result})
	return result, nil
}

// GetSession validates the token signature and checks the stored session
func (s *AuthService) GetSession(ctx context.Context, token string) (*models.AuthSession, error) {
	if token == "" {
		return nil, errors.NewUnauthorizedError("Missing token")
	}

	// 1. Verify JWT signature and claims
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, errors.NewUnauthorizedError("Invalid or expired token")
	}

	// 2. Check DB for revocation
	stored, err := s.sessions.GetSession(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if stored == nil {
		return nil, errors.NewUnauthorizedError("Session not found")
	}
	if stored.IsRevoked {
		return nil, errors.NewUnauthorizedError("Session has been revoked")
	}
	if !stored.ExpiresAt.IsZero() && time.Now().After(stored.ExpiresAt) {
		return nil, errors.NewUnauthorizedError("Session has expired")
	}

	var email *string
	if claims.User.Email != "" {
		e := claims.User.Email
		email = &e
	}
	return &models.AuthSession{
		ID:    claims.ID,
		Token: token,
		User: models.UserSession{
			ID:          claims.User.ID,
			Name:        claims.User.Name,
			Email:       email,
			IsAnonymous: claims.User.IsAnonymous,
		},
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// TouchSession updates the last activity timestamp of a session
func (s *AuthService) TouchSession(sessionID string) {
	// Fire and forget; activity timestamps are informational
	go func() {
		_ = s.sessions.UpdateLastActivity(context.Background(), sessionID)
	}()
}

// SignOut revokes the session behind token. An empty token only notifies listeners.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		s.listeners.Notify(ports.SessionChange{SignedIn: false})
		return nil
	}
	claims, err := auth.DecodeToken(token)
	if err != nil {
		return errors.NewValidationError("token", "Invalid token")
	}

	if err := s.sessions.RevokeSession(ctx, claims.ID); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	logutils.Log.Infof("👋 User logged out: %s (Session: %s)", claims.User.ID, claims.ID)
	s.listeners.Notify(ports.SessionChange{SignedIn: false})
	return nil
}

// OnSessionChange subscribes to sign-in and sign-out notifications
func (s *AuthService) OnSessionChange(fn func(ports.SessionChange)) func() {
	return s.listeners.Add(fn)
}

// PurgeExpiredSessions deletes expired sessions and revoked ones with no activity since now
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.PurgeExpired(ctx, time.Now())
}

func userSessionOf(u *models.User) models.UserSession {
	session := models.UserSession{
		ID:          u.ID,
		Name:        u.Name,
		IsAnonymous: u.IsAnonymous,
	}
	if u.Email != "" {
		email := u.Email
		session.Email = &email
	}
	return session
}
