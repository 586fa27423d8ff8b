// Package binding resolves what a component displays.
package binding

import (
	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/pkg/utils"
)

// ImagePlaceholder is shown for image components with nothing to display
const ImagePlaceholder = "https://via.placeholder.com/150"

// ResolveDisplayContent returns the value a component displays. Bound text
// and image components show their record field value; every miss along the
// way (database, record, field, empty value) falls back to the static
// content, and an unset static content yields "".
func ResolveDisplayContent(c *models.Component, databases []*models.Database) string {
	if c == nil {
		return ""
	}
	static := c.StaticContent()
	if !c.Type.Bindable() || c.DatabaseConnection == nil {
		return static
	}

	if v, ok := Lookup(c.DatabaseConnection, databases); ok {
		return v
	}
	return static
}

// Lookup follows a binding to its field value. ok is false on any miss or
// when the value is "". Whitespace counts as a value.
func Lookup(conn *models.DatabaseConnection, databases []*models.Database) (string, bool) {
	if conn == nil {
		return "", false
	}
	var db *models.Database
	for _, candidate := range databases {
		if candidate != nil && candidate.ID == conn.DatabaseID {
			db = candidate
			break
		}
	}
	if db == nil {
		return "", false
	}

	idx := conn.Index()
	if idx < 0 || idx >= len(db.Records) {
		return "", false
	}

	raw, present := db.Records[idx].Data[conn.FieldName]
	if !present {
		return "", false
	}
	value := utils.Stringify(raw)
	if value == "" {
		return "", false
	}
	return value, true
}

// Placeholder is the label shown when a component resolves to "".
// Containers have no label.
func Placeholder(t models.ComponentType) string {
	switch t {
	case models.ComponentButton:
		return "Button"
	case models.ComponentText:
		return "Text"
	case models.ComponentInput:
		return "Input"
	case models.ComponentImage:
		return ImagePlaceholder
	}
	return ""
}

// DisplayText is the resolved content, or the type placeholder when empty
func DisplayText(c *models.Component, databases []*models.Database) string {
	if content := ResolveDisplayContent(c, databases); content != "" {
		return content
	}
	return Placeholder(c.Type)
}
