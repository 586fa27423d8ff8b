package document

import (
	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/pkg/utils"
)

// PlaceComponent builds a new component of type t centered on the drop point
// (x, y) using the palette size, content and styles for that type.
func PlaceComponent(t models.ComponentType, x, y float64) *models.Component {
	size := models.DefaultSize(t)
	return &models.Component{
		ID:      utils.GenerateID(),
		Type:    t,
		X:       x - size.Width/2,
		Y:       y - size.Height/2,
		Width:   size.Width,
		Height:  size.Height,
		Content: models.StringPtr(models.DefaultContent(t)),
		Styles:  models.DefaultStyles(t),
	}
}
