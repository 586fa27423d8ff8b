package render

import (
	"bytes"
	"html/template"

	"github.com/appcanvas/builder/internal/domain/models"
)

var notFoundTmpl = template.Must(template.New("notfound").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>App not found</title>
<style>
body { margin: 0; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; background: #f9fafb; color: #111827; }
.not-found { max-width: 480px; margin: 120px auto; text-align: center; }
.not-found h1 { font-size: 24px; }
</style>
</head>
<body>
<div class="not-found">
<h1>App not found</h1>
<p>{{.}}</p>
</div>
</body>
</html>
`))

// RenderShare renders a published snapshot with its title shown above the
// app. The home screen, when one is flagged, is shown first.
func RenderShare(snap *models.PublishedSnapshot) (string, error) {
	return RenderExport(&snap.Document, ExportOptions{
		Title:         snap.Title,
		StartScreenID: HomeScreenID(&snap.Document),
		Banner:        true,
	})
}

// HomeScreenID returns the first screen flagged as home, or ""
func HomeScreenID(doc *models.Document) string {
	for _, sc := range doc.Screens {
		if sc.IsHome {
			return sc.ID
		}
	}
	return ""
}

// RenderNotFound is the page served for unknown share links
func RenderNotFound(message string) string {
	var buf bytes.Buffer
	if err := notFoundTmpl.Execute(&buf, message); err != nil {
		return "App not found"
	}
	return buf.String()
}
