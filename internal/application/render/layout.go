// Package render turns a project document into editor nodes or a static
// HTML export. Both outputs share the layout and style translation below.
package render

import (
	"strings"

	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/pkg/constants"
	"github.com/appcanvas/builder/pkg/utils"
)

// Box is a component's absolute geometry in canvas pixels
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Declaration is one CSS property/value pair
type Declaration struct {
	Property string
	Value    string
}

// Layout returns the geometry a component is drawn at
func Layout(c *models.Component) Box {
	return Box{X: c.X, Y: c.Y, Width: c.Width, Height: c.Height}
}

// StyleDeclarations translates geometry and applied styles into CSS.
// Colors are emitted only when set; font size and radius only when positive.
func StyleDeclarations(c *models.Component) []Declaration {
	box := Layout(c)
	decls := []Declaration{
		{"position", "absolute"},
		{"left", px(box.X)},
		{"top", px(box.Y)},
		{"width", px(box.Width)},
		{"height", px(box.Height)},
	}
	if v := cssValue(c.Styles.BackgroundColor); v != "" {
		decls = append(decls, Declaration{"background-color", v})
	}
	if v := cssValue(c.Styles.Color); v != "" {
		decls = append(decls, Declaration{"color", v})
	}
	if c.Styles.FontSize > 0 {
		decls = append(decls, Declaration{"font-size", px(c.Styles.FontSize)})
	}
	if c.Styles.BorderRadius > 0 {
		decls = append(decls, Declaration{"border-radius", px(c.Styles.BorderRadius)})
	}
	return decls
}

// ScreenBackground layers the background image (cover, centered) over the
// background color, which defaults to white.
func ScreenBackground(sc *models.Screen) []Declaration {
	color := cssValue(sc.BackgroundColor)
	if color == "" {
		color = constants.DefaultBackgroundColor
	}
	decls := []Declaration{{"background-color", color}}
	if url := cssURL(sc.BackgroundImage); url != "" {
		decls = append(decls,
			Declaration{"background-image", url},
			Declaration{"background-size", "cover"},
			Declaration{"background-position", "center"},
		)
	}
	return decls
}

// InlineStyle joins declarations into a style attribute value
func InlineStyle(decls []Declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.Property+": "+d.Value+";")
	}
	return strings.Join(parts, " ")
}

// StyleMap keys declarations by property for JSON consumers
func StyleMap(decls []Declaration) map[string]string {
	m := make(map[string]string, len(decls))
	for _, d := range decls {
		m[d.Property] = d.Value
	}
	return m
}

func px(f float64) string {
	return utils.FormatNumber(f) + "px"
}

// cssValue drops characters that could end the declaration or the attribute
func cssValue(v string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch r {
		case ';', '{', '}', '<', '>', '"', '\'', '\\', '\n', '\r':
			return -1
		}
		return r
	}, v))
}

// cssURL wraps a user supplied URL in url("...") with quotes and breakouts escaped
func cssURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "javascript:") {
		return ""
	}
	escaped := strings.NewReplacer(
		`\`, `%5C`,
		`"`, `%22`,
		`'`, `%27`,
		"(", "%28",
		")", "%29",
		"<", "%3C",
		">", "%3E",
		";", "%3B",
		"\n", "",
		"\r", "",
	).Replace(raw)
	return `url("` + escaped + `")`
}
