package tui

// indexChrome is the number of non-list lines in the index view
// (title bar, search line, footer).
const indexChrome = 3

// detailChrome is the number of non-content lines in the reading view
// (five header lines, a blank separator, footer).
const detailChrome = 7

// calculateScrollOffset computes the new scroll offset to keep the cursor
// visible within pageSize rows: the minimal adjustment that restores the
// invariant, not a recentering.
func calculateScrollOffset(cursor, currentOffset, pageSize int) int {
	if cursor < currentOffset {
		return cursor
	}
	if cursor >= currentOffset+pageSize {
		return cursor - pageSize + 1
	}
	return currentOffset
}

// pageSize returns how many index rows fit in the current viewport.
func (m *Model) pageSize() int {
	return max(1, m.height-indexChrome)
}

func (m *Model) ensureCursorVisible() {
	m.scrollOffset = calculateScrollOffset(m.cursor, m.scrollOffset, m.pageSize())
}

// clampCursor pins the cursor inside [0, len(rows)), or at 0 when the list
// is empty.
func (m *Model) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// clampScroll keeps the scroll offset within [0, max(0, rows-page)].
func (m *Model) clampScroll() {
	maxScroll := max(0, len(m.rows)-m.pageSize())
	if m.scrollOffset > maxScroll {
		m.scrollOffset = maxScroll
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}

// navigateList handles cursor movement keys over a list of itemCount rows.
// Returns false if the key is not a navigation key. Movement clamps at the
// ends; there is no wraparound.
func (m *Model) navigateList(key string, itemCount int) bool {
	changed := false

	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			changed = true
		}
	case "down", "j":
		if m.cursor < itemCount-1 {
			m.cursor++
			changed = true
		}
	case "pgup", "ctrl+u":
		m.cursor -= m.pageSize()
		if m.cursor < 0 {
			m.cursor = 0
		}
		changed = true
	case "pgdown", "ctrl+d":
		m.cursor += m.pageSize()
		if m.cursor >= itemCount {
			m.cursor = itemCount - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		changed = true
	case "end", "G":
		m.cursor = itemCount - 1
		if m.cursor < 0 {
			m.cursor = 0
		}
		changed = true
	default:
		return false
	}

	if changed {
		m.ensureCursorVisible()
	}
	return true
}

// gotoGesture advances the two-stage g gesture: the first g arms it, the
// next keystroke resolves it (a second g fires the jump, anything else is
// swallowed and disarms). It reports whether the key was consumed and
// whether the jump fires.
func (m *Model) gotoGesture(key string) (consumed, jump bool) {
	if m.gotoPending {
		m.gotoPending = false
		return true, key == "g"
	}
	if key == "g" {
		m.gotoPending = true
		return true, false
	}
	return false, false
}

// detailViewHeight returns how many content lines fit in the reading view.
func (m *Model) detailViewHeight() int {
	return max(1, m.height-detailChrome)
}

// maxDetailScroll is the furthest the reading view can scroll: body lines
// and attachment lines share one scroll axis.
func (m *Model) maxDetailScroll() int {
	if m.detail == nil {
		return 0
	}
	content := len(m.detail.bodyLines) + len(m.detail.attachments)
	return max(0, content-m.detailViewHeight())
}

func (m *Model) clampDetailScroll() {
	if m.detail == nil {
		return
	}
	if m.detail.scroll > m.maxDetailScroll() {
		m.detail.scroll = m.maxDetailScroll()
	}
	if m.detail.scroll < 0 {
		m.detail.scroll = 0
	}
}
