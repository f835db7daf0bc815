package reader

import "time"

// DisplayMode selects how pages are laid out side by side
type DisplayMode int

const (
	// DisplayAuto uses one page per row when the viewport is taller than wide
	DisplayAuto DisplayMode = iota
	DisplayOnePage
	DisplaySpread
)

// String returns the name of the display mode
func (m DisplayMode) String() string {
	switch m {
	case DisplayOnePage:
		return "one page"
	case DisplaySpread:
		return "spread"
	default:
		return "auto"
	}
}

// StepPolicy decides how far from the opening chapter the next load reaches.
type StepPolicy int

const (
	// PerDirection counts loads forward and backward independently.
	PerDirection StepPolicy = iota
	// SharedCount steps by the total number of loaded chapters regardless of
	// direction. Only correct for sessions that load in one direction.
	SharedCount
)

// Settings is the read-only configuration a session is opened with
type Settings struct {
	DisplayMode              DisplayMode
	ZoomEnabled              bool
	OverscrollToLoadPrevious bool
	StepPolicy               StepPolicy
	StartPageTimeout         time.Duration
}

// Direction is the side of the stream a chapter load extends
type Direction int

const (
	Next Direction = iota
	Previous
)

// String returns the name of the direction
func (d Direction) String() string {
	if d == Previous {
		return "previous"
	}
	return "next"
}

// Timing and distance constants of the reading surface
const (
	TransitionDuration = 500 * time.Millisecond
	PollInterval       = 50 * time.Millisecond
	LoadCooldown       = 2500 * time.Millisecond
	ScrollDebounce     = 250 * time.Millisecond
	ClickWindow        = 100 * time.Millisecond
	DoubleClickDelay   = 250 * time.Millisecond
	VisibleGrace       = 500 * time.Millisecond

	EdgeSwipeZone      = 20.0
	EdgeSwipeThreshold = 100.0

	ShortChapterPages = 3
	RecentPositions   = 10

	MinScale  = 1.0
	MaxScale  = 2.0
	ScaleStep = 0.5
)
