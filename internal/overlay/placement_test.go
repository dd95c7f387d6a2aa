package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"actionnerd/internal/action"
)

func TestPlace_AboveWhenRoom(t *testing.T) {
	anchor := action.Rect{X: 400, Y: 300, Width: 100, Height: 20}
	got := Place(anchor, 200, 120, 1280, 800)

	assert.Equal(t, anchor.Y-120-placementMargin, got.Y)
	// Horizontally centered over the anchor.
	assert.Equal(t, anchor.X+anchor.Width/2-100, got.X)
}

func TestPlace_BelowWhenNoRoomAbove(t *testing.T) {
	anchor := action.Rect{X: 400, Y: 40, Width: 100, Height: 20}
	got := Place(anchor, 200, 120, 1280, 800)

	assert.Equal(t, anchor.Y+anchor.Height+placementMargin, got.Y)
}

func TestPlace_ClampsLeftEdge(t *testing.T) {
	anchor := action.Rect{X: 2, Y: 300, Width: 10, Height: 20}
	got := Place(anchor, 200, 120, 1280, 800)

	assert.Equal(t, float64(placementMargin), got.X)
}

func TestPlace_ClampsRightEdge(t *testing.T) {
	anchor := action.Rect{X: 1250, Y: 300, Width: 20, Height: 20}
	got := Place(anchor, 200, 120, 1280, 800)

	assert.Equal(t, 1280-200-float64(placementMargin), got.X)
	assert.GreaterOrEqual(t, got.X, float64(placementMargin))
}

func TestPlace_TinyViewportStaysOnScreen(t *testing.T) {
	anchor := action.Rect{X: 50, Y: 50, Width: 10, Height: 10}
	got := Place(anchor, 200, 120, 160, 100)

	assert.GreaterOrEqual(t, got.X, float64(placementMargin))
	assert.GreaterOrEqual(t, got.Y, float64(placementMargin))
}
