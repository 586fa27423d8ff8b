package ports

import (
	"context"

	"github.com/appcanvas/builder/internal/domain/models"
)

// SessionChange is delivered to OnSessionChange subscribers
type SessionChange struct {
	SignedIn bool
	Session  *models.AuthSession
}

// AuthProvider exposes session primitives of the identity backend
type AuthProvider interface {
	// GetSession resolves a bearer token; expired or revoked tokens fail.
	GetSession(ctx context.Context, token string) (*models.AuthSession, error)
	SignInAnonymously(ctx context.Context) (*models.AuthSession, error)
	SignInWithPassword(ctx context.Context, email, password string) (*models.AuthSession, error)
	SignOut(ctx context.Context, token string) error

	// OnSessionChange subscribes to sign-in and sign-out; the returned func unsubscribes.
	OnSessionChange(fn func(SessionChange)) func()
}
