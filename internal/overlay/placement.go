package overlay

import "actionnerd/internal/action"

// placementMargin keeps surfaces off the viewport edges.
const placementMargin = 8

// Place positions a surface of the given size adjacent to the anchor
// rectangle: above when there is room, below otherwise, with the
// horizontal position clamped so the surface stays fully on screen.
func Place(anchor action.Rect, width, height float64, viewportW, viewportH float64) action.Rect {
	y := anchor.Y - height - placementMargin
	if y < placementMargin {
		y = anchor.Y + anchor.Height + placementMargin
	}
	// If below also overflows, pin to the bottom edge.
	if y+height > viewportH-placementMargin {
		y = viewportH - height - placementMargin
		if y < placementMargin {
			y = placementMargin
		}
	}

	x := anchor.X + anchor.Width/2 - width/2
	if x < placementMargin {
		x = placementMargin
	}
	if x+width > viewportW-placementMargin {
		x = viewportW - width - placementMargin
		if x < placementMargin {
			x = placementMargin
		}
	}

	return action.Rect{X: x, Y: y, Width: width, Height: height}
}
