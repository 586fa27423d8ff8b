package models

// Size is a width/height pair in canvas pixels
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

var defaultSizes = map[ComponentType]Size{
	ComponentButton:    {Width: 120, Height: 40},
	ComponentText:      {Width: 200, Height: 30},
	ComponentInput:     {Width: 200, Height: 40},
	ComponentImage:     {Width: 150, Height: 150},
	ComponentContainer: {Width: 300, Height: 200},
}

const defaultFontSize = 16

// DefaultSize returns the palette size for a component type
func DefaultSize(t ComponentType) Size {
	if s, ok := defaultSizes[t]; ok {
		return s
	}
	return defaultSizes[ComponentContainer]
}

// DefaultContent is the label a freshly placed component starts with
func DefaultContent(t ComponentType) string {
	switch t {
	case ComponentButton:
		return "Button"
	case ComponentText:
		return "Text"
	default:
		return ""
	}
}

// DefaultStyles returns the styles a freshly placed component starts with
func DefaultStyles(t ComponentType) Styles {
	if t == ComponentButton {
		return Styles{BackgroundColor: "#8B5CF6", Color: "#ffffff", FontSize: defaultFontSize, BorderRadius: 6}
	}
	return Styles{BackgroundColor: "#ffffff", Color: "#000000", FontSize: defaultFontSize, BorderRadius: 0}
}

// CanvasSize is an editor viewport preset
type CanvasSize string

const (
	CanvasMobile  CanvasSize = "mobile"
	CanvasTablet  CanvasSize = "tablet"
	CanvasDesktop CanvasSize = "desktop"
)

var canvasDimensions = map[CanvasSize]Size{
	CanvasMobile:  {Width: 375, Height: 667},
	CanvasTablet:  {Width: 768, Height: 1024},
	CanvasDesktop: {Width: 1200, Height: 800},
}

// Valid reports whether c is a known preset
func (c CanvasSize) Valid() bool {
	_, ok := canvasDimensions[c]
	return ok
}

// Dimensions returns the preset viewport, desktop for unknown values
func (c CanvasSize) Dimensions() Size {
	if s, ok := canvasDimensions[c]; ok {
		return s
	}
	return canvasDimensions[CanvasDesktop]
}
