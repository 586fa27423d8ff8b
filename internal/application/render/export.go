package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"github.com/appcanvas/builder/internal/domain/binding"
	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/pkg/constants"
)

const exportHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <style>
    * { margin: 0; padding: 0; box-sizing: border-box; }
    body { font-family: system-ui, -apple-system, sans-serif; }
    button { cursor: pointer; border: 1px solid #ccc; }
    input { border: 1px solid #ccc; padding: 8px; }
    img { object-fit: cover; }
    .app-banner { padding: 12px 20px; font-weight: 600; border-bottom: 1px solid #e5e7eb; }
    .text { display: flex; align-items: center; justify-content: center; }
  </style>
</head>
<body>
{{- if .Banner}}
  <header class="app-banner">{{.Title}}</header>
{{- end}}
{{- range .Screens}}
  <div class="screen" data-screen-id="{{.ID}}" data-screen-name="{{.Name}}" style="{{.Style}}">
  {{- range .Elements}}
    {{- if eq .Tag "button"}}
    <button style="{{.Style}}"{{if .Actions}} data-actions="{{.Actions}}" onclick="runActions(this)"{{end}}>{{.Content}}</button>
    {{- else if eq .Tag "input"}}
    <input style="{{.Style}}" placeholder="{{.Content}}" />
    {{- else if eq .Tag "img"}}
    <img style="{{.Style}}" src="{{.Content}}" alt="Image"{{if .Actions}} data-actions="{{.Actions}}" onclick="runActions(this)"{{end}} />
    {{- else}}
    <div class="{{.Tag}}" style="{{.Style}}"{{if .Actions}} data-actions="{{.Actions}}" onclick="runActions(this)"{{end}}>{{.Content}}</div>
    {{- end}}
  {{- end}}
  </div>
{{- end}}
  <script>
    var screens = document.querySelectorAll('.screen');
    var loggedInScreen = {{.LoggedInScreenID}};
    var loggedOutScreen = {{.LoggedOutScreenID}};
    var loggedIn = false;

    function navigateToScreen(screenId) {
      var target = document.querySelector('[data-screen-id="' + screenId + '"]');
      if (!target) return;
      screens.forEach(function (s) { s.style.display = 'none'; });
      target.style.display = 'block';
    }

    function appLogin() {
      loggedIn = true;
      if (loggedInScreen) navigateToScreen(loggedInScreen);
    }

    function appLogout() {
      loggedIn = false;
      if (loggedOutScreen) navigateToScreen(loggedOutScreen);
    }

    function runActions(el) {
      var actions = JSON.parse(el.getAttribute('data-actions') || '[]');
      actions.forEach(function (a) {
        if (a.type === 'navigate' && a.targetScreenId) navigateToScreen(a.targetScreenId);
        else if (a.type === 'login') appLogin();
        else if (a.type === 'logout') appLogout();
      });
    }
  </script>
</body>
</html>
`

var exportTmpl = template.Must(template.New("export").Parse(exportHTML))

// ExportOptions tunes the static export
type ExportOptions struct {
	Title string
	// StartScreenID is shown first; empty or unknown means the first screen.
	StartScreenID string
	// Banner shows the title above the app, used by share previews.
	Banner bool
}

type exportPage struct {
	Title             string
	Banner            bool
	Screens           []exportScreen
	LoggedInScreenID  string
	LoggedOutScreenID string
}

type exportScreen struct {
	ID       string
	Name     string
	Style    template.CSS
	Elements []exportElement
}

type exportElement struct {
	Tag     string
	Style   template.CSS
	Content string
	Actions string
}

// RenderExport produces one self-contained HTML document holding every
// screen. Only the start screen is visible; navigateToScreen(id) switches.
// Bindings are resolved against the document's databases at render time.
func RenderExport(doc *models.Document, opts ExportOptions) (string, error) {
	if doc == nil || len(doc.Screens) == 0 {
		return "", fmt.Errorf("document has no screens")
	}
	title := opts.Title
	if title == "" {
		title = constants.DefaultProjectTitle
	}

	start := doc.Screens[0].ID
	if opts.StartScreenID != "" && doc.FindScreen(opts.StartScreenID) != nil {
		start = opts.StartScreenID
	}

	page := exportPage{Title: title, Banner: opts.Banner}
	for _, sc := range doc.Screens {
		if page.LoggedInScreenID == "" && sc.IsDefaultLoggedIn {
			page.LoggedInScreenID = sc.ID
		}
		if page.LoggedOutScreenID == "" && sc.IsDefaultLoggedOut {
			page.LoggedOutScreenID = sc.ID
		}
		page.Screens = append(page.Screens, exportScreenFor(sc, sc.ID == start, doc.Databases))
	}

	var buf bytes.Buffer
	if err := exportTmpl.Execute(&buf, page); err != nil {
		return "", fmt.Errorf("render export: %w", err)
	}
	return buf.String(), nil
}

func exportScreenFor(sc *models.Screen, visible bool, databases []*models.Database) exportScreen {
	display := "none"
	if visible {
		display = "block"
	}
	decls := append([]Declaration{
		{"display", display},
		{"position", "relative"},
		{"width", "100%"},
		{"min-height", "100vh"},
	}, ScreenBackground(sc)...)

	out := exportScreen{
		ID:       sc.ID,
		Name:     sc.Name,
		Style:    template.CSS(InlineStyle(decls)),
		Elements: make([]exportElement, 0, len(sc.Components)),
	}
	for _, c := range sc.Components {
		el := exportElement{
			Tag:   exportTag(c.Type),
			Style: template.CSS(InlineStyle(StyleDeclarations(c))),
		}
		if c.Type != models.ComponentContainer {
			el.Content = binding.DisplayText(c, databases)
		}
		if len(c.Actions) > 0 && c.Type != models.ComponentInput {
			b, err := json.Marshal(c.Actions)
			if err == nil {
				el.Actions = string(b)
			}
		}
		out.Elements = append(out.Elements, el)
	}
	return out
}

func exportTag(t models.ComponentType) string {
	switch t {
	case models.ComponentText:
		return "text"
	case models.ComponentContainer:
		return "container"
	default:
		return tagFor(t)
	}
}

// ConfigExport is the downloadable JSON description of an app
type ConfigExport struct {
	Version    string             `json:"version"`
	ExportDate string             `json:"exportDate"`
	Screens    []*models.Screen   `json:"screens"`
	Databases  []*models.Database `json:"databases"`
}

// RenderConfig snapshots a document for JSON download
func RenderConfig(doc *models.Document, now time.Time) ConfigExport {
	cfg := ConfigExport{
		Version:    constants.ConfigExportVersion,
		ExportDate: now.UTC().Format(time.RFC3339),
		Screens:    []*models.Screen{},
		Databases:  []*models.Database{},
	}
	if doc != nil {
		cfg.Screens = append(cfg.Screens, doc.Screens...)
		cfg.Databases = append(cfg.Databases, doc.Databases...)
	}
	return cfg
}

// JSON encodes the export with two-space indentation
func (c ConfigExport) JSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}
