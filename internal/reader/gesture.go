package reader

import "time"

// gestureHandler receives the actions the gesture controller decides on
type gestureHandler interface {
	toggleMenu()
	loadMore(dir Direction)
	scale() float64
	zoomTo(scale float64, anchor *Point)
	close()
}

type pressState int

const (
	idle pressState = iota
	pressed
	dragging
)

// Gesture turns raw pointer, touch and scroll input into reader actions.
// Pointer coordinates are viewport pixels.
type Gesture struct {
	vp     *Viewport
	anchor *Anchor
	h      gestureHandler
	sched  Scheduler
	now    func() time.Time

	zoomEnabled bool
	overscroll  bool

	state       pressState
	origin      Point // press position in content pixels
	pressedAt   time.Time
	pendingLoad *Direction

	edgeSwiping bool
	translation float64
	settleFrom  float64
	settleAt    time.Time

	overscrolling bool
	scrollDelta   float64
}

// NewGesture creates a gesture controller
func NewGesture(vp *Viewport, anchor *Anchor, h gestureHandler, sched Scheduler, settings Settings, now func() time.Time) *Gesture {
	return &Gesture{
		vp:          vp,
		anchor:      anchor,
		h:           h,
		sched:       sched,
		now:         now,
		zoomEnabled: settings.ZoomEnabled,
		overscroll:  settings.OverscrollToLoadPrevious,
	}
}

// PointerDown starts a press
func (g *Gesture) PointerDown(p Point) {
	g.state = pressed
	g.origin = Point{X: p.X + g.vp.ScrollLeft, Y: p.Y + g.vp.ScrollTop}
	g.pressedAt = g.now()
	g.pendingLoad = nil
}

// PointerMove pans the viewport while a press is held
func (g *Gesture) PointerMove(p Point) {
	if g.state == idle {
		return
	}
	g.state = dragging

	top := g.origin.Y - p.Y
	left := g.origin.X - p.X
	if top > g.vp.MaxScrollTop() {
		g.markLoad(Next)
	}
	if top < 0 {
		g.markLoad(Previous)
	}

	before := g.vp.ScrollTop
	g.vp.SetScroll(left, top)
	g.Scroll(g.vp.ScrollTop - before)
}

func (g *Gesture) markLoad(dir Direction) {
	g.pendingLoad = &dir
}

// PointerUp ends a press. A release inside the click window is a click;
// a second click while the first is still pending is a double click.
func (g *Gesture) PointerUp(p Point) {
	if g.state == idle {
		return
	}
	if g.now().Sub(g.pressedAt) < ClickWindow {
		g.click(p)
	}
	if g.pendingLoad != nil {
		g.h.loadMore(*g.pendingLoad)
	}
	g.state = idle
	g.pendingLoad = nil
}

// PointerLeave is treated as a release
func (g *Gesture) PointerLeave(p Point) {
	g.PointerUp(p)
}

func (g *Gesture) click(p Point) {
	if g.sched.Pending(TaskMenuToggle) {
		g.sched.Cancel(TaskMenuToggle)
		g.doubleClick(p)
		return
	}
	if !g.zoomEnabled {
		g.h.toggleMenu()
		return
	}
	g.sched.Schedule(TaskMenuToggle, DoubleClickDelay)
}

func (g *Gesture) doubleClick(p Point) {
	if g.h.scale() >= MaxScale {
		g.h.zoomTo(MinScale, nil)
		return
	}
	g.h.zoomTo(g.h.scale()+ScaleStep, &p)
}

// TouchStart begins an edge swipe when the touch lands in the edge zone
func (g *Gesture) TouchStart(p Point) {
	if p.X < EdgeSwipeZone {
		g.edgeSwiping = true
		g.sched.Cancel(TaskSwipeSettle)
	}
}

// TouchMove follows an active edge swipe. It reports whether the host
// should suppress its default scrolling for this move.
func (g *Gesture) TouchMove(p Point) bool {
	if !g.edgeSwiping {
		return false
	}
	g.translation = p.X
	return true
}

// TouchEnd finishes an edge swipe: past the threshold the reader closes,
// otherwise the surface settles back over TransitionDuration.
func (g *Gesture) TouchEnd(p Point) {
	if !g.edgeSwiping {
		return
	}
	g.edgeSwiping = false
	if p.X > EdgeSwipeThreshold {
		g.translation = 0
		g.h.close()
		return
	}
	g.settleFrom = g.translation
	g.settleAt = g.now()
	g.sched.Schedule(TaskSwipeSettle, TransitionDuration)
}

// EdgeSwiping reports whether an edge swipe is in progress
func (g *Gesture) EdgeSwiping() bool {
	return g.edgeSwiping
}

// Translation returns the horizontal offset of the reading surface,
// easing back to zero while a cancelled swipe settles.
func (g *Gesture) Translation() float64 {
	if g.edgeSwiping || !g.sched.Pending(TaskSwipeSettle) {
		return g.translation
	}
	done := float64(g.now().Sub(g.settleAt)) / float64(TransitionDuration)
	if done >= 1 {
		return 0
	}
	return g.settleFrom * (1 - done)
}

// Scroll reports a scroll or wheel movement of dy pixels. It restarts the
// edge-detection debounce.
func (g *Gesture) Scroll(dy float64) {
	if g.overscrolling {
		g.anchor.Restore()
		if g.vp.ScrollTop >= 0 {
			g.overscrolling = false
		}
	}
	g.scrollDelta = dy
	g.sched.Schedule(TaskScrollDebounce, ScrollDebounce)
}

// Fire runs the action of a task whose timer elapsed
func (g *Gesture) Fire(t Task) {
	switch t {
	case TaskMenuToggle:
		g.h.toggleMenu()
	case TaskSwipeSettle:
		g.translation = 0
	case TaskScrollDebounce:
		g.checkEdges()
	}
}

// checkEdges loads more when the viewport sits past an end of the stream,
// or at it while the last movement pushed towards it.
func (g *Gesture) checkEdges() {
	vp := g.vp
	if vp.ScrollTop+vp.ClientHeight > vp.ScrollHeight || (g.scrollDelta > 0 && vp.AtBottom()) {
		g.h.loadMore(Next)
	}
	if g.overscroll && !g.overscrolling && (vp.ScrollTop < 0 || (g.scrollDelta < 0 && vp.AtTop())) {
		g.h.loadMore(Previous)
		if vp.ScrollTop < 0 {
			g.overscrolling = true
		}
	}
}

// Overscrolling reports whether a previous-chapter load was triggered by
// pulling past the top and the offset has not come back yet.
func (g *Gesture) Overscrolling() bool {
	return g.overscrolling
}

// Reset drops all in-progress gesture state
func (g *Gesture) Reset() {
	g.state = idle
	g.pendingLoad = nil
	g.edgeSwiping = false
	g.translation = 0
	g.overscrolling = false
}
