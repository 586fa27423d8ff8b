package render

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appcanvas/builder/internal/domain/document"
	"github.com/appcanvas/builder/internal/domain/models"
)

func sampleDocument() *models.Document {
	return &models.Document{
		Screens: []*models.Screen{
			{ID: "welcome", Name: "Welcome", IsDefaultLoggedOut: true, BackgroundColor: "#f0f0f0", Components: []*models.Component{
				{ID: "login", Type: models.ComponentButton, X: 10, Y: 20, Width: 120, Height: 40,
					Content: models.StringPtr("Sign in"),
					Styles:  models.Styles{BackgroundColor: "#8B5CF6", Color: "#ffffff", FontSize: 16, BorderRadius: 6},
					Actions: []models.Action{{Type: models.ActionLogin}}},
				{ID: "title", Type: models.ComponentText, X: 0, Y: 100, Width: 200, Height: 30,
					DatabaseConnection: &models.DatabaseConnection{DatabaseID: "db1", FieldName: "name"}},
			}},
			{ID: "dash", Name: "Dashboard", IsDefaultLoggedIn: true, BackgroundImage: "https://img.example/bg.png", Components: []*models.Component{
				{ID: "pic", Type: models.ComponentImage, X: 5, Y: 5, Width: 150, Height: 150},
				{ID: "box", Type: models.ComponentContainer, X: 0, Y: 200, Width: 300, Height: 200},
			}},
		},
		Databases: []*models.Database{
			{ID: "db1", Name: "Users", Fields: []models.Field{{Name: "name", Type: models.FieldText}},
				Records: []models.Record{{ID: "r1", Data: map[string]any{"name": "Ada"}}}},
		},
	}
}

func TestStyleDeclarations(t *testing.T) {
	doc := sampleDocument()

	btn := InlineStyle(StyleDeclarations(doc.Screens[0].Components[0]))
	assert.Equal(t, "position: absolute; left: 10px; top: 20px; width: 120px; height: 40px; "+
		"background-color: #8B5CF6; color: #ffffff; font-size: 16px; border-radius: 6px;", btn)

	plain := StyleMap(StyleDeclarations(doc.Screens[1].Components[1]))
	assert.NotContains(t, plain, "background-color")
	assert.NotContains(t, plain, "font-size")
	assert.Equal(t, "200px", plain["top"])
}

func TestStyleDeclarations_StripsBreakouts(t *testing.T) {
	c := &models.Component{Type: models.ComponentText, Width: 1, Height: 1,
		Styles: models.Styles{Color: `red; } </style><script>`}}
	style := InlineStyle(StyleDeclarations(c))
	assert.NotContains(t, style, "<")
	assert.NotContains(t, style, "}")
	assert.Contains(t, style, "color: red  /stylescript;")
}

func TestScreenBackground(t *testing.T) {
	doc := sampleDocument()

	colorOnly := StyleMap(ScreenBackground(doc.Screens[0]))
	assert.Equal(t, "#f0f0f0", colorOnly["background-color"])
	assert.NotContains(t, colorOnly, "background-image")

	layered := StyleMap(ScreenBackground(doc.Screens[1]))
	assert.Equal(t, "#ffffff", layered["background-color"])
	assert.Equal(t, `url("https://img.example/bg.png")`, layered["background-image"])
	assert.Equal(t, "cover", layered["background-size"])
	assert.Equal(t, "center", layered["background-position"])

	blocked := StyleMap(ScreenBackground(&models.Screen{BackgroundImage: "javascript:alert(1)"}))
	assert.NotContains(t, blocked, "background-image")
}

func TestRenderEditor(t *testing.T) {
	s := document.New("p1", sampleDocument())
	s = document.SelectComponent(s, "login")

	view := RenderEditor(s)
	assert.Equal(t, "welcome", view.ScreenID)
	assert.Equal(t, models.Size{Width: 1200, Height: 800}, view.Canvas)
	require.Len(t, view.Nodes, 2)
	require.Len(t, view.Screens, 2)
	assert.True(t, view.Screens[0].Current)

	btn := view.Nodes[0]
	assert.Equal(t, "button", btn.Tag)
	assert.True(t, btn.Selected)
	assert.Equal(t, SelectionBorder, btn.Style["border"])
	assert.Equal(t, "move", btn.Style["cursor"])
	assert.True(t, btn.Draggable)
	assert.False(t, btn.Clickable)
	assert.Equal(t, Box{X: 10, Y: 20, Width: 120, Height: 40}, btn.Box)

	bound := view.Nodes[1]
	assert.True(t, bound.Bound)
	assert.Equal(t, "Ada", bound.Content)
	assert.Equal(t, "none", bound.Style["border"])
}

func TestRenderEditor_Preview(t *testing.T) {
	s := document.New("p1", sampleDocument())
	s = document.SelectComponent(s, "login")
	s = document.TogglePreview(s)

	view := RenderEditor(s)
	assert.True(t, view.PreviewMode)
	assert.Equal(t, "welcome", view.ScreenID, "signed out lands on the logged-out default")

	btn := view.Nodes[0]
	assert.False(t, btn.Selected)
	assert.False(t, btn.Draggable)
	assert.True(t, btn.Clickable)
	assert.Equal(t, "pointer", btn.Style["cursor"])
	assert.Equal(t, "default", view.Nodes[1].Style["cursor"])
}

func TestRenderEditor_Placeholders(t *testing.T) {
	s := document.New("p1", &models.Document{Screens: []*models.Screen{{ID: "s", Name: "S", Components: []*models.Component{
		{ID: "b", Type: models.ComponentButton, Width: 10, Height: 10},
		{ID: "i", Type: models.ComponentImage, Width: 10, Height: 10},
		{ID: "c", Type: models.ComponentContainer, Width: 10, Height: 10},
	}}}})

	view := RenderEditor(s)
	assert.Equal(t, "Button", view.Nodes[0].Content)
	assert.True(t, view.Nodes[0].Placeholder)
	assert.Equal(t, "https://via.placeholder.com/150", view.Nodes[1].Content)
	assert.Equal(t, "", view.Nodes[2].Content)
	assert.False(t, view.Nodes[2].Placeholder)
}

func TestRenderExport(t *testing.T) {
	out, err := RenderExport(sampleDocument(), ExportOptions{Title: "My App"})
	require.NoError(t, err)

	assert.Contains(t, out, "<title>My App</title>")
	assert.Equal(t, 2, strings.Count(out, `class="screen"`))
	assert.Contains(t, out, `data-screen-id="welcome" data-screen-name="Welcome" style="display: block;`)
	assert.Contains(t, out, `data-screen-id="dash" data-screen-name="Dashboard" style="display: none;`)
	assert.Contains(t, out, "left: 10px; top: 20px; width: 120px; height: 40px;")
	assert.Contains(t, out, ">Sign in</button>")
	assert.Contains(t, out, ">Ada</div>", "bindings are resolved")
	assert.Contains(t, out, `src="https://via.placeholder.com/150"`)
	assert.Contains(t, out, "function navigateToScreen(screenId)")
	assert.Contains(t, out, `var loggedInScreen = "dash";`)
	assert.Contains(t, out, `var loggedOutScreen = "welcome";`)
	assert.Contains(t, out, `onclick="runActions(this)"`)
	assert.NotContains(t, out, "app-banner\">")
}

func TestRenderExport_StartScreenAndBanner(t *testing.T) {
	out, err := RenderExport(sampleDocument(), ExportOptions{Title: "Shared", StartScreenID: "dash", Banner: true})
	require.NoError(t, err)
	assert.Contains(t, out, `data-screen-id="dash" data-screen-name="Dashboard" style="display: block;`)
	assert.Contains(t, out, `data-screen-id="welcome" data-screen-name="Welcome" style="display: none;`)
	assert.Contains(t, out, `<header class="app-banner">Shared</header>`)
}

func TestRenderExport_EscapesUserContent(t *testing.T) {
	doc := &models.Document{Screens: []*models.Screen{{ID: "s", Name: `<b>x</b>`, Components: []*models.Component{
		{ID: "t", Type: models.ComponentText, Width: 10, Height: 10, Content: models.StringPtr("<script>alert(1)</script>")},
		{ID: "i", Type: models.ComponentImage, Width: 10, Height: 10, Content: models.StringPtr("javascript:alert(1)")},
	}}}}

	out, err := RenderExport(doc, ExportOptions{Title: "<i>t</i>"})
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.Contains(t, out, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.NotContains(t, out, `src="javascript:`)
	assert.NotContains(t, out, "<i>t</i>")
}

func TestRenderExport_NoScreens(t *testing.T) {
	_, err := RenderExport(&models.Document{}, ExportOptions{})
	assert.Error(t, err)
}

func TestRenderConfig(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg := RenderConfig(sampleDocument(), now)

	assert.Equal(t, "1.0", cfg.Version)
	assert.Equal(t, "2026-03-01T12:00:00Z", cfg.ExportDate)
	assert.Len(t, cfg.Screens, 2)
	assert.Len(t, cfg.Databases, 1)

	raw, err := cfg.JSON()
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "1.0", decoded["version"])
	assert.Contains(t, decoded, "exportDate")

	empty := RenderConfig(nil, now)
	assert.NotNil(t, empty.Screens)
	assert.NotNil(t, empty.Databases)
}
