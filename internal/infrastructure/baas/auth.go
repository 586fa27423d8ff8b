package baas

import (
	"context"
	"time"

	"github.com/appcanvas/builder/internal/domain/events"
	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/internal/domain/ports"
	"github.com/appcanvas/builder/pkg/auth"
	"github.com/appcanvas/builder/pkg/errors"
	"github.com/appcanvas/builder/pkg/logutils"
)

type authUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	IsAnonymous  bool           `json:"is_anonymous"`
	UserMetadata map[string]any `json:"user_metadata"`
}

type tokenResponse struct {
	AccessToken string   `json:"access_token"`
	ExpiresIn   int64    `json:"expires_in"`
	ExpiresAt   int64    `json:"expires_at"`
	User        authUser `json:"user"`
}

// AuthProvider signs app users in through the BaaS auth API
type AuthProvider struct {
	client    *Client
	listeners events.Listeners[ports.SessionChange]
}

var _ ports.AuthProvider = (*AuthProvider)(nil)

// NewAuthProvider creates a new AuthProvider
func NewAuthProvider(client *Client) *AuthProvider {
	return &AuthProvider{client: client}
}

// GetSession resolves a bearer token through GET /auth/v1/user
func (p *AuthProvider) GetSession(ctx context.Context, token string) (*models.AuthSession, error) {
	if token == "" {
		return nil, errors.NewUnauthorizedError("Missing token")
	}

	var user authUser
	var apiErr apiError
	resp, err := p.client.request(ctx, token).
		SetSuccessResult(&user).
		SetErrorResult(&apiErr).
		Get("/auth/v1/user")
	if err != nil {
		return nil, errors.NewInternalError("auth provider unreachable", err)
	}
	if resp.IsErrorState() {
		return nil, errors.NewUnauthorizedError("Invalid or expired session")
	}

	session := &models.AuthSession{Token: token, User: toUserSession(user)}
	if claims, err := auth.DecodeToken(token); err == nil {
		session.ID = claims.ID
		if claims.ExpiresAt != nil {
			session.ExpiresAt = claims.ExpiresAt.Time
		}
	}
	return session, nil
}

// SignInAnonymously creates an anonymous user via POST /auth/v1/signup
func (p *AuthProvider) SignInAnonymously(ctx context.Context) (*models.AuthSession, error) {
	return p.tokenRequest(ctx, "/auth/v1/signup", nil, map[string]any{"data": map[string]any{}})
}

// SignInWithPassword uses the password grant
func (p *AuthProvider) SignInWithPassword(ctx context.Context, email, password string) (*models.AuthSession, error) {
	return p.tokenRequest(ctx, "/auth/v1/token", map[string]string{"grant_type": "password"},
		map[string]string{"email": email, "password": password})
}

func (p *AuthProvider) tokenRequest(ctx context.Context, path string, params map[string]string, body any) (*models.AuthSession, error) {
	var out tokenResponse
	var apiErr apiError
	resp, err := p.client.request(ctx, "").
		SetQueryParams(params).
		SetBodyJsonMarshal(body).
		SetSuccessResult(&out).
		SetErrorResult(&apiErr).
		Post(path)
	if err != nil {
		return nil, errors.NewInternalError("auth provider unreachable", err)
	}
	if resp.IsErrorState() || out.AccessToken == "" {
		msg := apiErr.text()
		if msg == "" {
			msg = "Sign-in rejected"
		}
		return nil, errors.NewUnauthorizedError(msg)
	}

	session := &models.AuthSession{Token: out.AccessToken, User: toUserSession(out.User)}
	switch {
	case out.ExpiresAt > 0:
		session.ExpiresAt = time.Unix(out.ExpiresAt, 0)
	case out.ExpiresIn > 0:
		session.ExpiresAt = time.Now().Add(time.Duration(out.ExpiresIn) * time.Second)
	}
	if claims, err := auth.DecodeToken(out.AccessToken); err == nil {
		session.ID = claims.ID
	}

	logutils.Log.WithFields(logutils.Fields{"user": session.User.ID, "anonymous": session.User.IsAnonymous}).Info("🔑 BaaS sign-in")
	p.listeners.Notify(ports.SessionChange{SignedIn: true, Session: session})
	return session, nil
}

// SignOut revokes the token via POST /auth/v1/logout. An empty token signs out locally.
func (p *AuthProvider) SignOut(ctx context.Context, token string) error {
	if token == "" {
		p.listeners.Notify(ports.SessionChange{SignedIn: false})
		return nil
	}
	var apiErr apiError
	resp, err := p.client.request(ctx, token).
		SetErrorResult(&apiErr).
		Post("/auth/v1/logout")
	if err := checkResponse("sign out", resp, err, &apiErr); err != nil {
		return err
	}
	p.listeners.Notify(ports.SessionChange{SignedIn: false})
	return nil
}

// OnSessionChange subscribes to sign-in and sign-out
func (p *AuthProvider) OnSessionChange(fn func(ports.SessionChange)) func() {
	return p.listeners.Add(fn)
}

func toUserSession(u authUser) models.UserSession {
	s := models.UserSession{ID: u.ID, IsAnonymous: u.IsAnonymous}
	if u.Email != "" {
		email := u.Email
		s.Email = &email
		s.Name = email
	}
	if name, ok := u.UserMetadata["name"].(string); ok && name != "" {
		s.Name = name
	}
	if s.Name == "" {
		s.Name = "Guest"
	}
	return s
}
