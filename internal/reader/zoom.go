package reader

// ZoomResult is the scale and scroll offsets to apply after a zoom
type ZoomResult struct {
	Scale float64
	Left  float64
	Top   float64
}

// Zoom scales the page stream around an anchor point
type Zoom struct {
	vp      *Viewport
	enabled bool
	scale   float64
}

// NewZoom creates a zoom engine at scale 1
func NewZoom(vp *Viewport, enabled bool) *Zoom {
	return &Zoom{vp: vp, enabled: enabled, scale: MinScale}
}

// Scale returns the current scale
func (z *Zoom) Scale() float64 {
	return z.scale
}

// ZoomTo computes the offsets that keep the content under anchor still
// when rescaling to target. A nil anchor means the viewport centre. It
// returns false when zoom is disabled or the clamped target equals the
// current scale; the scale is updated otherwise.
func (z *Zoom) ZoomTo(target float64, anchor *Point) (ZoomResult, bool) {
	if !z.enabled {
		return ZoomResult{}, false
	}
	target = clamp(target, MinScale, MaxScale)
	if target == z.scale {
		return ZoomResult{}, false
	}

	a := z.vp.Center()
	if anchor != nil {
		a = *anchor
	}
	ratio := target / z.scale

	left := (a.X+z.vp.ScrollLeft)*ratio - a.X
	maxLeft := max(0, z.vp.ClientWidth*target-z.vp.ClientWidth)
	left = clamp(left, 0, maxLeft)
	top := (a.Y+z.vp.ScrollTop)*ratio - a.Y

	z.scale = target
	return ZoomResult{Scale: target, Left: left, Top: top}, true
}
