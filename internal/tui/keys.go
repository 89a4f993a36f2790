package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// handleIndexKeys handles keys in the index view when the search editor is
// not active.
func (m Model) handleIndexKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if consumed, jump := m.gotoGesture(key); consumed {
		if jump {
			m.cursor = 0
			m.scrollOffset = 0
		}
		return m, nil
	}

	if m.navigateList(key, len(m.rows)) {
		return m, nil
	}

	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "enter":
		return m.openSelected()

	case "m":
		return m.startCompose()

	case "l":
		m.searchActive = true
		m.searchInput.SetValue("")
		return m, m.searchInput.Focus()
	}
	return m, nil
}

// handleSearchKeys handles keys while the inline search editor is active.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		term := strings.TrimSpace(m.searchInput.Value())
		if term == "" {
			term = m.cfg.Notmuch.DefaultQuery
		}
		m.searchTerm = term
		m.searchActive = false
		m.searchInput.Blur()
		return m.startRefresh()

	case "esc":
		// Leave edit mode without committing.
		m.searchActive = false
		m.searchInput.Blur()
		return m, nil

	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}
}

// handleViewKeys handles keys in the reading view. Downward movement
// exhausts body scrolling before advancing into attachment selection;
// upward movement undoes attachment selection before scrolling back up.
func (m Model) handleViewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.detail
	if d == nil {
		m.state = stateIndex
		return m, nil
	}
	key := msg.String()

	if consumed, jump := m.gotoGesture(key); consumed {
		if jump {
			d.scroll = 0
		}
		return m, nil
	}

	switch key {
	case "q", "i", "esc":
		m.detail = nil
		m.state = stateIndex

	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "j", "down":
		if d.scroll < m.maxDetailScroll() {
			d.scroll++
		} else if d.selectedAtt < len(d.attachments)-1 {
			d.selectedAtt++
		}

	case "k", "up":
		if d.selectedAtt >= 0 {
			d.selectedAtt--
		} else if d.scroll > 0 {
			d.scroll--
		}

	case "G":
		d.scroll = m.maxDetailScroll()

	case "enter":
		if d.selectedAtt >= 0 && d.selectedAtt < len(d.attachments) {
			return m, m.openAttachment(d.msg.ID, d.attachments[d.selectedAtt])
		}
	}
	return m, nil
}

// handleComposeKeys forwards keys to the compose form, keeping the
// interrupt global.
func (m Model) handleComposeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}
	return m.updateComposeForm(msg)
}
