package document

import (
	"sync"
)

// DragSession tracks one pointer drag of a component. The offset between the
// pointer-down point and the component origin is kept for the whole drag.
type DragSession struct {
	ScreenID    string
	ComponentID string
	OffsetX     float64
	OffsetY     float64

	releaseOnce sync.Once
	released    bool
	mu          sync.Mutex
}

// BeginDrag starts dragging a component from pointer (px, py). ok is false
// when the component is not on the given screen.
func BeginDrag(s State, screenID, componentID string, px, py float64) (*DragSession, bool) {
	sc := s.FindScreen(screenID)
	if sc == nil {
		return nil, false
	}
	c := sc.FindComponent(componentID)
	if c == nil {
		return nil, false
	}
	return &DragSession{
		ScreenID:    screenID,
		ComponentID: componentID,
		OffsetX:     px - c.X,
		OffsetY:     py - c.Y,
	}, true
}

// Move repositions the component so the pointer keeps its original offset.
// Moves after Release are ignored.
func (d *DragSession) Move(s State, px, py float64) (State, error) {
	if d.Released() {
		return s, nil
	}
	x, y := px-d.OffsetX, py-d.OffsetY
	return UpdateComponent(s, d.ScreenID, d.ComponentID, ComponentPatch{X: &x, Y: &y})
}

// Release ends the drag. It returns true only for the first call.
func (d *DragSession) Release() bool {
	first := false
	d.releaseOnce.Do(func() {
		d.mu.Lock()
		d.released = true
		d.mu.Unlock()
		first = true
	})
	return first
}

// Released reports whether Release has been called
func (d *DragSession) Released() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.released
}
