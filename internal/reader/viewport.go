package reader

// Point is a position in viewport or content pixels
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in content pixels
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether (x, y) lies inside the rectangle.
// The right and bottom edges belong to the next rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Bottom returns the y coordinate just past the rectangle
func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

// Viewport is the scrollable window onto the page stream.
//
// ScrollTop may go negative while the host reports elastic overscroll;
// SetScroll clamps to the valid range like a browser scroll container.
type Viewport struct {
	ScrollTop    float64
	ScrollLeft   float64
	ClientWidth  float64
	ClientHeight float64
	ScrollWidth  float64
	ScrollHeight float64
}

// MaxScrollTop returns the largest valid vertical offset
func (v *Viewport) MaxScrollTop() float64 {
	return max(0, v.ScrollHeight-v.ClientHeight)
}

// MaxScrollLeft returns the largest valid horizontal offset
func (v *Viewport) MaxScrollLeft() float64 {
	return max(0, v.ScrollWidth-v.ClientWidth)
}

// SetScroll moves the viewport, clamping both axes
func (v *Viewport) SetScroll(left, top float64) {
	v.ScrollLeft = clamp(left, 0, v.MaxScrollLeft())
	v.ScrollTop = clamp(top, 0, v.MaxScrollTop())
}

// ScrollBy moves the viewport vertically by dy, clamped
func (v *Viewport) ScrollBy(dy float64) {
	v.SetScroll(v.ScrollLeft, v.ScrollTop+dy)
}

// AtBottom reports whether the viewport shows the end of the content or
// is pulled past it
func (v *Viewport) AtBottom() bool {
	return v.ScrollTop+v.ClientHeight >= v.ScrollHeight
}

// AtTop reports whether the viewport shows the start of the content or is
// pulled past it
func (v *Viewport) AtTop() bool {
	return v.ScrollTop <= 0
}

// Center returns the visual centre of the viewport in viewport pixels
func (v *Viewport) Center() Point {
	return Point{X: v.ClientWidth / 2, Y: v.ClientHeight / 2}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
