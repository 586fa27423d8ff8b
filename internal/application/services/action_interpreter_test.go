package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/appcanvas/builder/internal/domain/document"
	"github.com/appcanvas/builder/internal/domain/models"
)

// previewState builds a three-screen document in preview mode whose
// "login" screen holds a button with the given actions.
func previewState(actions ...models.Action) document.State {
	button := &models.Component{
		ID:      "btn",
		Type:    models.ComponentButton,
		Width:   120,
		Height:  40,
		Content: models.StringPtr("Go"),
		Actions: actions,
	}
	doc := &models.Document{
		Screens: []*models.Screen{
			{ID: "login", Name: "Login", IsDefaultLoggedOut: true, Components: []*models.Component{button}},
			{ID: "home", Name: "Home", IsDefaultLoggedIn: true, Components: []*models.Component{}},
			{ID: "about", Name: "About", Components: []*models.Component{}},
		},
	}
	s := document.New("p1", doc)
	s.PreviewMode = true
	return s
}

func TestHandleClick_Navigate(t *testing.T) {
	ai := NewActionInterpreter(new(MockAuthProvider), nil)

	t.Run("existing target becomes current", func(t *testing.T) {
		res, err := ai.HandleClick(context.Background(), previewState(models.Action{Type: models.ActionNavigate, TargetScreenID: "about"}), "btn", nil)
		require.NoError(t, err)
		assert.Equal(t, "about", res.State.CurrentScreenID)
		assert.Empty(t, res.Notifications)
	})

	t.Run("deleted target is a no-op", func(t *testing.T) {
		res, err := ai.HandleClick(context.Background(), previewState(models.Action{Type: models.ActionNavigate, TargetScreenID: "gone"}), "btn", nil)
		require.NoError(t, err)
		assert.Equal(t, "login", res.State.CurrentScreenID)
	})
}

func TestHandleClick_IgnoredOutsidePreview(t *testing.T) {
	auth := new(MockAuthProvider)
	ai := NewActionInterpreter(auth, nil)
	s := previewState(models.Action{Type: models.ActionLogin})
	s.PreviewMode = false

	res, err := ai.HandleClick(context.Background(), s, "btn", nil)
	require.NoError(t, err)
	assert.Equal(t, s.CurrentScreenID, res.State.CurrentScreenID)
	assert.False(t, res.State.LoggedIn)
	auth.AssertNotCalled(t, "SignInAnonymously", mock.Anything)
}

func TestHandleClick_Login(t *testing.T) {
	t.Run("success signs in and lands on the logged-in screen", func(t *testing.T) {
		auth := new(MockAuthProvider)
		session := &models.AuthSession{ID: "s1", Token: "tok"}
		auth.On("SignInAnonymously", mock.Anything).Return(session, nil)
		ai := NewActionInterpreter(auth, NewMetrics())

		res, err := ai.HandleClick(context.Background(), previewState(models.Action{Type: models.ActionLogin}), "btn", nil)
		require.NoError(t, err)
		assert.True(t, res.State.LoggedIn)
		assert.Equal(t, "home", res.State.CurrentScreenID)
		assert.Equal(t, session, res.Session)
		assert.Equal(t, []models.Notification{{Level: models.NotificationSuccess, Message: "Logged in"}}, res.Notifications)
	})

	t.Run("failure notifies and stays", func(t *testing.T) {
		auth := new(MockAuthProvider)
		auth.On("SignInAnonymously", mock.Anything).Return(nil, fmt.Errorf("offline"))
		ai := NewActionInterpreter(auth, nil)

		res, err := ai.HandleClick(context.Background(), previewState(models.Action{Type: models.ActionLogin}), "btn", nil)
		require.NoError(t, err)
		assert.False(t, res.State.LoggedIn)
		assert.Equal(t, "login", res.State.CurrentScreenID)
		assert.Equal(t, []models.Notification{{Level: models.NotificationError, Message: "Login failed"}}, res.Notifications)
	})
}

func TestHandleClick_Logout(t *testing.T) {
	session := &models.AuthSession{ID: "s1", Token: "tok"}

	t.Run("success signs out and lands on the logged-out screen", func(t *testing.T) {
		auth := new(MockAuthProvider)
		auth.On("SignOut", mock.Anything, "tok").Return(nil)
		ai := NewActionInterpreter(auth, nil)

		s := previewState(models.Action{Type: models.ActionLogout})
		s.LoggedIn = true
		s = document.Navigate(s, "home")
		s, _ = document.AddComponent(s, "home", &models.Component{
			ID: "out", Type: models.ComponentButton, Width: 10, Height: 10,
			Actions: []models.Action{{Type: models.ActionLogout}},
		})

		res, err := ai.HandleClick(context.Background(), s, "out", session)
		require.NoError(t, err)
		assert.False(t, res.State.LoggedIn)
		assert.Equal(t, "login", res.State.CurrentScreenID)
		assert.Nil(t, res.Session)
		assert.Equal(t, "Logged out", res.Notifications[0].Message)
	})

	t.Run("failure keeps the session", func(t *testing.T) {
		auth := new(MockAuthProvider)
		auth.On("SignOut", mock.Anything, "tok").Return(fmt.Errorf("offline"))
		ai := NewActionInterpreter(auth, nil)

		s := previewState(models.Action{Type: models.ActionLogout})
		s.LoggedIn = true

		res, err := ai.HandleClick(context.Background(), s, "btn", session)
		require.NoError(t, err)
		assert.True(t, res.State.LoggedIn)
		assert.Equal(t, session, res.Session)
		assert.Equal(t, []models.Notification{{Level: models.NotificationError, Message: "Logout failed"}}, res.Notifications)
	})

	t.Run("without a session still signs out through the provider", func(t *testing.T) {
		auth := new(MockAuthProvider)
		auth.On("SignOut", mock.Anything, "").Return(nil)
		ai := NewActionInterpreter(auth, nil)

		s := previewState(models.Action{Type: models.ActionLogout})
		s.LoggedIn = true

		res, err := ai.HandleClick(context.Background(), s, "btn", nil)
		require.NoError(t, err)
		assert.False(t, res.State.LoggedIn)
		assert.Equal(t, "Logged out", res.Notifications[0].Message)
		auth.AssertCalled(t, "SignOut", mock.Anything, "")
	})
}

func TestHandleClick_ChainRunsInOrderPastFailures(t *testing.T) {
	auth := new(MockAuthProvider)
	auth.On("SignInAnonymously", mock.Anything).Return(nil, fmt.Errorf("offline"))
	ai := NewActionInterpreter(auth, nil)

	s := previewState(
		models.Action{Type: models.ActionSubmit},
		models.Action{Type: models.ActionLogin},
		models.Action{Type: "teleport"},
		models.Action{Type: models.ActionNavigate, TargetScreenID: "about"},
	)
	res, err := ai.HandleClick(context.Background(), s, "btn", nil)
	require.NoError(t, err)
	assert.Equal(t, "about", res.State.CurrentScreenID)
	assert.Len(t, res.Notifications, 1)
	auth.AssertNumberOfCalls(t, "SignInAnonymously", 1)
}
