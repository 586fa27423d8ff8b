package document

import (
	"github.com/samber/lo"

	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/pkg/errors"
	"github.com/appcanvas/builder/pkg/logutils"
	"github.com/appcanvas/builder/pkg/utils"
)

// ComponentPatch is a shallow update; nil fields are left unchanged.
// Styles and Actions replace the whole value when set.
type ComponentPatch struct {
	X                       *float64                   `json:"x,omitempty"`
	Y                       *float64                   `json:"y,omitempty"`
	Width                   *float64                   `json:"width,omitempty"`
	Height                  *float64                   `json:"height,omitempty"`
	Content                 *string                    `json:"content,omitempty"`
	Styles                  *models.Styles             `json:"styles,omitempty"`
	Actions                 *[]models.Action           `json:"actions,omitempty"`
	DatabaseConnection      *models.DatabaseConnection `json:"databaseConnection,omitempty"`
	ClearDatabaseConnection bool                       `json:"clearDatabaseConnection,omitempty"`
}

// AddComponent appends a component to a screen and selects it.
// An unknown screen is logged and leaves the state unchanged.
func AddComponent(s State, screenID string, c *models.Component) (State, error) {
	idx := s.screenIndex(screenID)
	if idx < 0 {
		logutils.Log.WithFields(logutils.Fields{"screen": screenID}).Warn("⚠️  addComponent: unknown screen, ignoring")
		return s, nil
	}
	if c == nil {
		return s, errors.NewValidationError("component", "component is required")
	}
	if !c.Type.Valid() {
		return s, errors.NewValidationError("type", "unknown component type '"+string(c.Type)+"'")
	}

	comp := models.NormalizeComponent(c)
	if comp.ID == "" {
		comp.ID = utils.GenerateID()
	}
	if _, existing := s.FindComponent(comp.ID); existing != nil {
		return s, errors.NewValidationError("id", "component id already exists in project")
	}

	s.Screens = s.withScreen(idx, func(sc *models.Screen) *models.Screen {
		cp := sc.Clone()
		cp.Components = append(cp.Components, comp)
		return cp
	})
	s.SelectedComponentID = comp.ID
	return s, nil
}

// UpdateComponent merges patch into a component. Unknown ids are a no-op.
// Non-positive sizes in the patch are ignored.
func UpdateComponent(s State, screenID, componentID string, patch ComponentPatch) (State, error) {
	idx := s.screenIndex(screenID)
	if idx < 0 || s.Screens[idx].FindComponent(componentID) == nil {
		return s, nil
	}

	s.Screens = s.withScreen(idx, func(sc *models.Screen) *models.Screen {
		cp := sc.Clone()
		cp.Components = lo.Map(cp.Components, func(c *models.Component, _ int) *models.Component {
			if c.ID != componentID {
				return c
			}
			return applyComponentPatch(c, patch)
		})
		return cp
	})
	return s, nil
}

func applyComponentPatch(c *models.Component, p ComponentPatch) *models.Component {
	out := c.Clone()
	if p.X != nil {
		out.X = *p.X
	}
	if p.Y != nil {
		out.Y = *p.Y
	}
	if p.Width != nil && *p.Width > 0 {
		out.Width = *p.Width
	}
	if p.Height != nil && *p.Height > 0 {
		out.Height = *p.Height
	}
	if p.Content != nil {
		out.Content = models.StringPtr(*p.Content)
	}
	if p.Styles != nil {
		out.Styles = *p.Styles
	}
	if p.Actions != nil {
		out.Actions = append([]models.Action(nil), (*p.Actions)...)
	}
	if p.ClearDatabaseConnection {
		out.DatabaseConnection = nil
	} else if p.DatabaseConnection != nil {
		conn := *p.DatabaseConnection
		out.DatabaseConnection = &conn
	}
	return models.NormalizeComponent(out)
}

// DeleteComponent removes a component and clears the selection if it was selected
func DeleteComponent(s State, screenID, componentID string) (State, error) {
	idx := s.screenIndex(screenID)
	if idx < 0 || s.Screens[idx].FindComponent(componentID) == nil {
		return s, nil
	}

	s.Screens = s.withScreen(idx, func(sc *models.Screen) *models.Screen {
		cp := sc.Clone()
		cp.Components = lo.Reject(cp.Components, func(c *models.Component, _ int) bool { return c.ID == componentID })
		return cp
	})
	if s.SelectedComponentID == componentID {
		s.SelectedComponentID = ""
	}
	return s, nil
}
