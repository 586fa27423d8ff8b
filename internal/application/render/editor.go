package render

import (
	"github.com/appcanvas/builder/internal/domain/binding"
	"github.com/appcanvas/builder/internal/domain/document"
	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/pkg/constants"
)

// SelectionBorder outlines the selected component in the editor
const SelectionBorder = "2px solid " + constants.SelectionColor

// EditorNode is one interactive canvas element
type EditorNode struct {
	ID          string               `json:"id"`
	Type        models.ComponentType `json:"type"`
	Tag         string               `json:"tag"`
	Content     string               `json:"content"`
	Placeholder bool                 `json:"placeholder"`
	Bound       bool                 `json:"bound"`
	Box         Box                  `json:"box"`
	Style       map[string]string    `json:"style"`
	Selected    bool                 `json:"selected"`
	Draggable   bool                 `json:"draggable"`
	Resizable   bool                 `json:"resizable"`
	Clickable   bool                 `json:"clickable"`
	Actions     []models.Action      `json:"actions,omitempty"`
}

// ScreenSummary is a row of the screens panel
type ScreenSummary struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Current            bool   `json:"current"`
	IsDefaultLoggedIn  bool   `json:"isDefaultLoggedIn"`
	IsDefaultLoggedOut bool   `json:"isDefaultLoggedOut"`
	IsHome             bool   `json:"isHome"`
	Components         int    `json:"components"`
}

// EditorView is everything the editor canvas needs to draw the current screen
type EditorView struct {
	ProjectID           string             `json:"projectId"`
	ScreenID            string             `json:"screenId"`
	ScreenName          string             `json:"screenName"`
	Canvas              models.Size        `json:"canvas"`
	CanvasSize          models.CanvasSize  `json:"canvasSize"`
	Background          map[string]string  `json:"background"`
	PreviewMode         bool               `json:"previewMode"`
	LoggedIn            bool               `json:"loggedIn"`
	SelectedComponentID string             `json:"selectedComponentId,omitempty"`
	Nodes               []EditorNode       `json:"nodes"`
	Screens             []ScreenSummary    `json:"screens"`
	Databases           []*models.Database `json:"databases"`
}

// RenderEditor renders the current screen of s. In preview mode nodes are
// not draggable and only components with actions get a pointer cursor.
func RenderEditor(s document.State) EditorView {
	view := EditorView{
		ProjectID:           s.ProjectID,
		Canvas:              s.CanvasSize.Dimensions(),
		CanvasSize:          s.CanvasSize,
		PreviewMode:         s.PreviewMode,
		LoggedIn:            s.LoggedIn,
		SelectedComponentID: s.SelectedComponentID,
		Nodes:               []EditorNode{},
		Screens:             make([]ScreenSummary, 0, len(s.Screens)),
		Databases:           s.Databases,
	}

	current := s.CurrentScreen()
	for _, sc := range s.Screens {
		view.Screens = append(view.Screens, ScreenSummary{
			ID:                 sc.ID,
			Name:               sc.Name,
			Current:            current != nil && sc.ID == current.ID,
			IsDefaultLoggedIn:  sc.IsDefaultLoggedIn,
			IsDefaultLoggedOut: sc.IsDefaultLoggedOut,
			IsHome:             sc.IsHome,
			Components:         len(sc.Components),
		})
	}
	if current == nil {
		return view
	}

	view.ScreenID = current.ID
	view.ScreenName = current.Name
	view.Background = StyleMap(ScreenBackground(current))
	for _, c := range current.Components {
		view.Nodes = append(view.Nodes, editorNode(c, s))
	}
	return view
}

func editorNode(c *models.Component, s document.State) EditorNode {
	selected := c.ID == s.SelectedComponentID && !s.PreviewMode
	content := binding.ResolveDisplayContent(c, s.Databases)

	style := StyleMap(StyleDeclarations(c))
	style["border"] = "none"
	if selected {
		style["border"] = SelectionBorder
	}
	style["cursor"] = cursor(c, s.PreviewMode)

	node := EditorNode{
		ID:        c.ID,
		Type:      c.Type,
		Tag:       tagFor(c.Type),
		Content:   content,
		Bound:     c.Type.Bindable() && c.DatabaseConnection != nil,
		Box:       Layout(c),
		Style:     style,
		Selected:  selected,
		Draggable: !s.PreviewMode,
		Resizable: !s.PreviewMode,
		Clickable: s.PreviewMode && len(c.Actions) > 0,
		Actions:   c.Actions,
	}
	if content == "" {
		node.Content = binding.Placeholder(c.Type)
		node.Placeholder = node.Content != ""
	}
	return node
}

func cursor(c *models.Component, preview bool) string {
	switch {
	case !preview:
		return "move"
	case len(c.Actions) > 0:
		return "pointer"
	default:
		return "default"
	}
}

func tagFor(t models.ComponentType) string {
	switch t {
	case models.ComponentButton:
		return "button"
	case models.ComponentInput:
		return "input"
	case models.ComponentImage:
		return "img"
	default:
		return "div"
	}
}
