package state

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// Move shifts the cursor by delta rows without wrapping.
func (l *Level) Move(delta int) bool {
	if len(l.Items) == 0 {
		l.Cursor = 0
		return false
	}
	return l.jump(max(l.Cursor, 0) + delta)
}

// Wrap shifts the cursor by delta rows, wrapping past either end.
func (l *Level) Wrap(delta int) bool {
	n := len(l.Items)
	if n == 0 {
		return false
	}
	return l.jump(((max(l.Cursor, 0)+delta)%n + n) % n)
}

// Home moves the cursor to the first row.
func (l *Level) Home() bool { return l.jump(0) }

// End moves the cursor to the last row.
func (l *Level) End() bool { return l.jump(len(l.Items) - 1) }

// Page moves the cursor by pages screens of visible rows.
func (l *Level) Page(pages, visible int) bool {
	size := len(l.Items)
	if visible > 0 {
		size = min(visible, size)
	}
	return l.Move(pages * max(size, 1))
}

func (l *Level) jump(idx int) bool {
	if len(l.Items) == 0 {
		l.Cursor = 0
		return false
	}
	old := l.Cursor
	l.Cursor = clamp(idx, 0, len(l.Items)-1)
	return l.Cursor != old
}

// Reveal scrolls the viewport so the cursor is one of the visible rows.
func (l *Level) Reveal(visible int) {
	n := len(l.Items)
	if n == 0 {
		l.Cursor, l.ViewportOffset = 0, 0
		return
	}
	l.Cursor = clamp(l.Cursor, 0, n-1)
	if visible <= 0 {
		l.ViewportOffset = 0
		return
	}
	off := clamp(l.ViewportOffset, 0, max(n-visible, 0))
	off = min(off, l.Cursor)
	l.ViewportOffset = max(off, l.Cursor-visible+1)
}
