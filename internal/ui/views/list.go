package views

// listCursor tracks the selected row of a scrolling list
type listCursor struct {
	cursor int
	offset int
	length int
	// visible is the number of rows the list can show
	visible int
}

func (l *listCursor) setLength(n int) {
	l.length = n
	l.move(0)
}

func (l *listCursor) setVisible(n int) {
	l.visible = max(1, n)
	l.updateOffset()
}

// move moves the cursor by delta, clamped to the list
func (l *listCursor) move(delta int) {
	l.cursor = min(l.cursor+delta, l.length-1)
	l.cursor = max(l.cursor, 0)
	l.updateOffset()
}

func (l *listCursor) home() {
	l.cursor = 0
	l.offset = 0
}

func (l *listCursor) end() {
	l.cursor = max(0, l.length-1)
	l.updateOffset()
}

// updateOffset ensures the cursor is visible
func (l *listCursor) updateOffset() {
	visible := max(1, l.visible)
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+visible {
		l.offset = l.cursor - visible + 1
	}
}

// window returns the half-open range of rows on screen
func (l *listCursor) window() (from, to int) {
	return l.offset, min(l.offset+max(1, l.visible), l.length)
}
