// Package document holds the editor's in-memory project document and the
// pure operations over it. Every operation takes a State and returns a new
// State; the input value and everything it points to are left untouched, and
// unchanged screens, components and databases are shared between the two.
package document

import (
	"github.com/samber/lo"

	"github.com/appcanvas/builder/internal/domain/models"
)

// State is one immutable snapshot of an open project plus editor UI state
type State struct {
	ProjectID           string             `json:"projectId"`
	Screens             []*models.Screen   `json:"screens"`
	Databases           []*models.Database `json:"databases"`
	CurrentScreenID     string             `json:"currentScreenId"`
	SelectedComponentID string             `json:"selectedComponentId,omitempty"`
	PreviewMode         bool               `json:"previewMode"`
	LoggedIn            bool               `json:"loggedIn"`
	CanvasSize          models.CanvasSize  `json:"canvasSize"`
}

// New opens a document. The first screen becomes current.
func New(projectID string, doc *models.Document) State {
	s := State{
		ProjectID:  projectID,
		Screens:    []*models.Screen{},
		Databases:  []*models.Database{},
		CanvasSize: models.CanvasDesktop,
	}
	if doc != nil {
		s.Screens = append(s.Screens, doc.Screens...)
		s.Databases = append(s.Databases, doc.Databases...)
	}
	if len(s.Screens) > 0 {
		s.CurrentScreenID = s.Screens[0].ID
	}
	return s
}

// Document returns the persisted part of the state
func (s State) Document() *models.Document {
	return &models.Document{
		Screens:   append([]*models.Screen{}, s.Screens...),
		Databases: append([]*models.Database{}, s.Databases...),
	}
}

// CurrentScreen returns the active screen, falling back to the first one
func (s State) CurrentScreen() *models.Screen {
	if sc := s.FindScreen(s.CurrentScreenID); sc != nil {
		return sc
	}
	if len(s.Screens) > 0 {
		return s.Screens[0]
	}
	return nil
}

// FindScreen returns the screen with id or nil
func (s State) FindScreen(id string) *models.Screen {
	sc, _ := lo.Find(s.Screens, func(sc *models.Screen) bool { return sc.ID == id })
	return sc
}

// FindComponent searches every screen for a component id
func (s State) FindComponent(id string) (*models.Screen, *models.Component) {
	for _, sc := range s.Screens {
		if c := sc.FindComponent(id); c != nil {
			return sc, c
		}
	}
	return nil, nil
}

// FindDatabase returns the database with id or nil
func (s State) FindDatabase(id string) *models.Database {
	db, _ := lo.Find(s.Databases, func(db *models.Database) bool { return db.ID == id })
	return db
}

// DefaultLoggedInScreen returns the first screen flagged as the signed-in landing page
func (s State) DefaultLoggedInScreen() *models.Screen {
	sc, _ := lo.Find(s.Screens, func(sc *models.Screen) bool { return sc.IsDefaultLoggedIn })
	return sc
}

// DefaultLoggedOutScreen returns the first screen flagged as the signed-out landing page
func (s State) DefaultLoggedOutScreen() *models.Screen {
	sc, _ := lo.Find(s.Screens, func(sc *models.Screen) bool { return sc.IsDefaultLoggedOut })
	return sc
}

func (s State) screenIndex(id string) int {
	_, idx, _ := lo.FindIndexOf(s.Screens, func(sc *models.Screen) bool { return sc.ID == id })
	return idx
}

func (s State) databaseIndex(id string) int {
	_, idx, _ := lo.FindIndexOf(s.Databases, func(db *models.Database) bool { return db.ID == id })
	return idx
}

// withScreen returns a new screens slice where index i is replaced by fn's result
func (s State) withScreen(i int, fn func(*models.Screen) *models.Screen) []*models.Screen {
	out := append(make([]*models.Screen, 0, len(s.Screens)), s.Screens...)
	out[i] = fn(s.Screens[i])
	return out
}

// withDatabase returns a new databases slice where index i is replaced by fn's result
func (s State) withDatabase(i int, fn func(*models.Database) *models.Database) []*models.Database {
	out := append(make([]*models.Database, 0, len(s.Databases)), s.Databases...)
	out[i] = fn(s.Databases[i])
	return out
}
