package reader

// Anchor keeps the content under the viewport visually still while the
// stream grows above it.
type Anchor struct {
	vp       *Viewport
	recorded bool
	height   float64
	offset   float64
}

// NewAnchor creates an anchor manager for vp
func NewAnchor(vp *Viewport) *Anchor {
	return &Anchor{vp: vp}
}

// Record captures the scroll height and offset before a layout change
func (a *Anchor) Record() {
	a.recorded = true
	a.height = a.vp.ScrollHeight
	a.offset = a.vp.ScrollTop
}

// Restore shifts the offset by the height gained since Record and forgets
// the anchor. It is a no-op without a recorded anchor.
func (a *Anchor) Restore() {
	if !a.recorded {
		return
	}
	a.recorded = false
	a.vp.ScrollTop = a.vp.ScrollHeight - a.height + a.offset
}

// Clear drops a recorded anchor without restoring it
func (a *Anchor) Clear() {
	a.recorded = false
}

// Pending reports whether an anchor is waiting to be restored
func (a *Anchor) Pending() bool {
	return a.recorded
}
