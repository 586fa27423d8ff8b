// Package services provides the application layer of the builder backend.
//
// This package contains:
//   - project lifecycle, publishing and share lookup (ProjectService)
//   - per-project editor sessions, drag handling and saving (EditorService)
//   - preview click handling (ActionInterpreter)
//   - local sign-in and session management (AuthService)
//   - record filtering, static export and scheduled maintenance
//   - event publishing and subscription (EventBus) and Prometheus metrics
//
// Services receive the caller as an explicit *models.UserSession and never
// read request state from globals.
package services
