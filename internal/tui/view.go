package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)

	normalStyle = lipgloss.NewStyle()

	titleBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("4")).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14"))

	subjectStyle = lipgloss.NewStyle().
			Bold(true)

	attachmentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	searchStyle = lipgloss.NewStyle().
			Faint(true)

	searchActiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11"))

	footerStyle = lipgloss.NewStyle().
			Faint(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	flashStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Italic(true)
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case stateView:
		return m.renderDetail()
	case stateCompose:
		return m.renderCompose()
	default:
		return m.renderIndex()
	}
}

// renderIndex draws the message index: title bar, search line, the visible
// window of rows, and the footer.
func (m Model) renderIndex() string {
	var b strings.Builder

	title := fmt.Sprintf(" notmail %s  %d messages", m.version, len(m.rows))
	if m.loading {
		title += "  [refreshing]"
	}
	b.WriteString(titleBarStyle.Render(padRight(title, m.width)))
	b.WriteString("\n")

	if m.searchActive {
		b.WriteString(searchActiveStyle.Render("search: ") + m.searchInput.View())
	} else {
		b.WriteString(searchStyle.Render("search: " + m.searchTerm))
	}
	b.WriteString("\n")

	visible := m.pageSize()
	for i := 0; i < visible; i++ {
		idx := m.scrollOffset + i
		if idx >= len(m.rows) {
			b.WriteString("\n")
			continue
		}
		line := FormatLine(m.rows[idx], m.cfg.UI.TitleWidth)
		line = truncateRunes(line, m.width)
		if idx == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString(normalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString(m.renderFooter("j/k move  enter open  l search  m compose  q quit"))
	return b.String()
}

// renderFooter draws the single footer line. A refresh error outranks a
// flash message; both outrank the key hint.
func (m Model) renderFooter(hint string) string {
	switch {
	case m.err != nil:
		return errorStyle.Render("error: " + m.err.Error())
	case m.flashMessage != "":
		return flashStyle.Render(m.flashMessage)
	default:
		return footerStyle.Render(hint)
	}
}

// renderDetail draws the reading view: the five-line header block, a blank
// separator, the scrolled window over body and attachments, and the footer.
func (m Model) renderDetail() string {
	d := m.detail
	if d == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("From: "+d.msg.Headers["From"]) + "\n")
	b.WriteString(headerStyle.Render("To: "+d.msg.Headers["To"]) + "\n")
	b.WriteString(headerStyle.Render("Date: "+d.msg.Headers["Date"]) + "\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("Attachments: %d", len(d.attachments))) + "\n")
	b.WriteString(subjectStyle.Render("Subject: "+d.msg.Headers["Subject"]) + "\n")
	b.WriteString("\n")

	content := m.detailContent()
	height := m.detailViewHeight()
	for i := 0; i < height; i++ {
		idx := d.scroll + i
		if idx >= len(content) {
			b.WriteString("\n")
			continue
		}
		b.WriteString(truncateRunes(content[idx], m.width))
		b.WriteString("\n")
	}

	b.WriteString(m.renderFooter("j/k scroll  enter view attachment  q close"))
	return b.String()
}

// detailContent returns the full scrollable content of the reading view:
// the wrapped body lines followed by one line per attachment. Attachment
// lines carry a marker when selected, matching the scroll model in which
// attachments extend the body's scroll axis.
func (m Model) detailContent() []string {
	d := m.detail
	lines := make([]string, 0, len(d.bodyLines)+len(d.attachments))
	lines = append(lines, d.bodyLines...)
	for i, att := range d.attachments {
		marker := "   "
		style := attachmentStyle
		if i == d.selectedAtt {
			marker = " > "
			style = selectedStyle
		}
		lines = append(lines, marker+style.Render(att.Label()))
	}
	return lines
}

// renderCompose draws the envelope form.
func (m Model) renderCompose() string {
	if m.form == nil {
		return ""
	}
	return m.form.View() + "\n" + m.renderFooter("tab next field  enter submit  esc cancel")
}
