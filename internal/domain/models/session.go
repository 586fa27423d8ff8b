package models

import "time"

// UserSession identifies the caller of a service operation. It is passed
// explicitly; services never read a current user from package state.
type UserSession struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       *string `json:"email,omitempty"`
	IsAnonymous bool    `json:"isAnonymous"`
}

// AuthSession is an issued sign-in
type AuthSession struct {
	ID        string      `json:"id"`
	Token     string      `json:"token"`
	User      UserSession `json:"user"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// User is a stored account
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	IsAnonymous  bool
	CreatedAt    time.Time
}

// NotificationLevel is the severity of a transient message
type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
	NotificationInfo    NotificationLevel = "info"
)

// Notification is a transient user-facing message
type Notification struct {
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
}

// StoredSession is the server-side record behind an issued token
type StoredSession struct {
	ID           string
	UserID       string
	ExpiresAt    time.Time
	IsRevoked    bool
	LastActivity time.Time
	CreatedAt    time.Time
}
