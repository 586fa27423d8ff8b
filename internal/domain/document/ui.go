package document

import (
	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/pkg/errors"
)

// SelectComponent selects a component on the current screen. An empty id
// clears the selection; ids not on the current screen are ignored.
func SelectComponent(s State, componentID string) State {
	if componentID == "" {
		s.SelectedComponentID = ""
		return s
	}
	if sc := s.CurrentScreen(); sc != nil && sc.FindComponent(componentID) != nil {
		s.SelectedComponentID = componentID
	}
	return s
}

// SelectScreen switches the editor to another screen and clears the selection
func SelectScreen(s State, screenID string) State {
	if s.FindScreen(screenID) == nil {
		return s
	}
	s.CurrentScreenID = screenID
	s.SelectedComponentID = ""
	return s
}

// Navigate switches the previewed screen. Dangling targets are a no-op.
func Navigate(s State, screenID string) State {
	if screenID == "" || s.FindScreen(screenID) == nil {
		return s
	}
	s.CurrentScreenID = screenID
	return s
}

// SetCanvasSize picks an editor viewport preset
func SetCanvasSize(s State, size models.CanvasSize) (State, error) {
	if !size.Valid() {
		return s, errors.NewValidationError("canvasSize", "unknown canvas size '"+string(size)+"'")
	}
	s.CanvasSize = size
	return s, nil
}

// SetLoggedIn records the preview app's sign-in state
func SetLoggedIn(s State, loggedIn bool) State {
	s.LoggedIn = loggedIn
	return s
}

// TogglePreview enters or leaves preview mode. Entering preview clears the
// selection and jumps to the landing screen for the current sign-in state:
// signed in prefers the logged-in default, signed out the logged-out default,
// then the logged-in default. With no flagged screen the current one stays.
func TogglePreview(s State) State {
	s.PreviewMode = !s.PreviewMode
	if !s.PreviewMode {
		return s
	}

	s.SelectedComponentID = ""
	var landing *models.Screen
	if s.LoggedIn {
		landing = s.DefaultLoggedInScreen()
	} else {
		landing = s.DefaultLoggedOutScreen()
		if landing == nil {
			landing = s.DefaultLoggedInScreen()
		}
	}
	if landing != nil {
		s.CurrentScreenID = landing.ID
	}
	return s
}
