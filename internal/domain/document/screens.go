package document

import (
	"strings"

	"github.com/samber/lo"

	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/pkg/errors"
	"github.com/appcanvas/builder/pkg/utils"
)

// ScreenPatch is a shallow screen update; nil fields are left unchanged
type ScreenPatch struct {
	Name               *string `json:"name,omitempty"`
	BackgroundColor    *string `json:"backgroundColor,omitempty"`
	BackgroundImage    *string `json:"backgroundImage,omitempty"`
	IsDefaultLoggedIn  *bool   `json:"isDefaultLoggedIn,omitempty"`
	IsDefaultLoggedOut *bool   `json:"isDefaultLoggedOut,omitempty"`
	IsHome             *bool   `json:"isHome,omitempty"`
}

// NewScreen builds an empty screen with a fresh id
func NewScreen(name string) *models.Screen {
	return &models.Screen{
		ID:         utils.GenerateID(),
		Name:       name,
		Components: []*models.Component{},
	}
}

// AddScreen appends a screen and makes it current. Components brought along
// get ids when they have none and must not collide with each other or with
// the rest of the project.
func AddScreen(s State, screen *models.Screen) (State, error) {
	if screen == nil || strings.TrimSpace(screen.Name) == "" {
		return s, errors.NewValidationError("name", "screen name must not be empty")
	}

	sc := screen.Clone()
	sc.Name = strings.TrimSpace(sc.Name)
	if sc.ID == "" {
		sc.ID = utils.GenerateID()
	}
	if s.screenIndex(sc.ID) >= 0 {
		return s, errors.NewValidationError("id", "screen id already exists in project")
	}
	seen := make(map[string]bool, len(sc.Components))
	for i, c := range sc.Components {
		if c == nil {
			return s, errors.NewValidationError("components", "component is required")
		}
		comp := models.NormalizeComponent(c)
		if comp.ID == "" {
			comp.ID = utils.GenerateID()
		}
		if _, existing := s.FindComponent(comp.ID); existing != nil || seen[comp.ID] {
			return s, errors.NewValidationError("components", "component id already exists in project")
		}
		seen[comp.ID] = true
		sc.Components[i] = comp
	}

	s.Screens = append(append(make([]*models.Screen, 0, len(s.Screens)+1), s.Screens...), sc)
	s = enforceDefaultFlags(s, sc.ID, sc.IsDefaultLoggedIn, sc.IsDefaultLoggedOut, sc.IsHome)
	s.CurrentScreenID = sc.ID
	s.SelectedComponentID = ""
	return s, nil
}

// UpdateScreen merges patch into a screen. Unknown ids are a no-op.
func UpdateScreen(s State, screenID string, patch ScreenPatch) (State, error) {
	idx := s.screenIndex(screenID)
	if idx < 0 {
		return s, nil
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return s, errors.NewValidationError("name", "screen name must not be empty")
	}

	s.Screens = s.withScreen(idx, func(sc *models.Screen) *models.Screen {
		cp := sc.Clone()
		if patch.Name != nil {
			cp.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.BackgroundColor != nil {
			cp.BackgroundColor = *patch.BackgroundColor
		}
		if patch.BackgroundImage != nil {
			cp.BackgroundImage = *patch.BackgroundImage
		}
		if patch.IsDefaultLoggedIn != nil {
			cp.IsDefaultLoggedIn = *patch.IsDefaultLoggedIn
		}
		if patch.IsDefaultLoggedOut != nil {
			cp.IsDefaultLoggedOut = *patch.IsDefaultLoggedOut
		}
		if patch.IsHome != nil {
			cp.IsHome = *patch.IsHome
		}
		return cp
	})

	return enforceDefaultFlags(s, screenID,
		lo.FromPtr(patch.IsDefaultLoggedIn),
		lo.FromPtr(patch.IsDefaultLoggedOut),
		lo.FromPtr(patch.IsHome)), nil
}

// DeleteScreen removes a screen. The last remaining screen cannot be deleted.
// If the current screen is removed, the first remaining screen becomes current.
func DeleteScreen(s State, screenID string) (State, error) {
	idx := s.screenIndex(screenID)
	if idx < 0 {
		return s, nil
	}
	if len(s.Screens) <= 1 {
		return s, errors.NewLastScreenError(screenID)
	}

	removed := s.Screens[idx]
	s.Screens = lo.Reject(s.Screens, func(sc *models.Screen, _ int) bool { return sc.ID == screenID })
	if s.CurrentScreenID == screenID {
		s.CurrentScreenID = s.Screens[0].ID
	}
	if s.SelectedComponentID != "" && removed.FindComponent(s.SelectedComponentID) != nil {
		s.SelectedComponentID = ""
	}
	return s, nil
}

// enforceDefaultFlags clears a landing-page flag on every other screen when
// screenID was just given it, so at most one screen carries each flag.
func enforceDefaultFlags(s State, screenID string, loggedIn, loggedOut, home bool) State {
	if !loggedIn && !loggedOut && !home {
		return s
	}
	out := make([]*models.Screen, len(s.Screens))
	for i, sc := range s.Screens {
		conflict := sc.ID != screenID &&
			((loggedIn && sc.IsDefaultLoggedIn) || (loggedOut && sc.IsDefaultLoggedOut) || (home && sc.IsHome))
		if !conflict {
			out[i] = sc
			continue
		}
		cp := sc.Clone()
		if loggedIn {
			cp.IsDefaultLoggedIn = false
		}
		if loggedOut {
			cp.IsDefaultLoggedOut = false
		}
		if home {
			cp.IsHome = false
		}
		out[i] = cp
	}
	s.Screens = out
	return s
}
