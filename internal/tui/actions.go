package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/notmail/notmail/internal/htmltext"
	"github.com/notmail/notmail/internal/mail"
	"github.com/notmail/notmail/internal/notmuch"
)

// ErrToolFailed indicates an external collaborator (viewer, editor) could
// not be run or exited with an error. Callers match with errors.Is.
var ErrToolFailed = errors.New("external tool failed")

// wrapToolErr tags a collaborator failure with ErrToolFailed.
func wrapToolErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrToolFailed, err)
}

// tickMsg fires at the configured interval; it expires flash messages and
// keeps the view repainting while nothing else happens.
type tickMsg time.Time

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// threadsLoadedMsg is sent when a refresh finishes.
type threadsLoadedMsg struct {
	forest []*notmuch.Message
	err    error
}

// refresh runs the search for the current term, falling back to the
// configured default query when the term is blank.
func (m Model) refresh() tea.Cmd {
	query := strings.TrimSpace(m.searchTerm)
	if query == "" {
		query = m.cfg.Notmuch.DefaultQuery
	}
	mailer := m.mailer
	return func() tea.Msg {
		forest, err := mailer.Search(context.Background(), query)
		return threadsLoadedMsg{forest: forest, err: err}
	}
}

// detailReadyMsg is sent when a message has been extracted for reading.
type detailReadyMsg struct {
	msg         *notmuch.Message
	bodyLines   []string
	attachments []mail.Attachment
	err         error
}

// openSelected extracts the selected message for the reading view.
// Opening is a no-op on an empty list.
func (m Model) openSelected() (tea.Model, tea.Cmd) {
	if len(m.rows) == 0 {
		return m, nil
	}
	target := m.rows[m.cursor].Message
	m.loading = true
	conv := m.conv
	width := m.bodyWrapWidth()
	return m, func() tea.Msg {
		body, atts, err := mail.Extract(target.Body, conv)
		if err != nil {
			return detailReadyMsg{err: err}
		}
		return detailReadyMsg{
			msg:         target,
			bodyLines:   wrapText(body, width),
			attachments: atts,
		}
	}
}

// bodyWrapWidth returns the wrap width for body text: the configured width,
// narrowed to the terminal when the terminal is narrower.
func (m Model) bodyWrapWidth() int {
	width := m.cfg.View.WrapWidth
	if m.width-2 < width {
		width = m.width - 2
	}
	if width <= 0 {
		width = htmltext.DefaultWidth
	}
	return width
}

// viewerDoneMsg is sent when the external attachment viewer exits.
type viewerDoneMsg struct {
	err error
}

// openAttachment fetches the attachment bytes, writes them to an owner-only
// temp file, and hands the path to the external viewer. The file is removed
// once the viewer exits. Failures are non-fatal; the reading view stays
// open.
func (m Model) openAttachment(msgID string, att mail.Attachment) tea.Cmd {
	mailer := m.mailer
	viewer := m.cfg.View.Viewer
	return func() tea.Msg {
		data := []byte(att.HTML)
		if att.Kind == mail.AttachmentFile {
			var err error
			data, err = mailer.ShowPart(context.Background(), msgID, att.PartID)
			if err != nil {
				return viewerDoneMsg{err: err}
			}
		}

		path := filepath.Join(os.TempDir(), attachmentFileName(msgID, att))
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return viewerDoneMsg{err: err}
		}
		defer os.Remove(path)

		if err := exec.Command(viewer, path).Run(); err != nil {
			return viewerDoneMsg{err: wrapToolErr(err)}
		}
		return viewerDoneMsg{}
	}
}

// attachmentFileName names the temp file the viewer is pointed at: the
// attachment's own filename, or <message-id>.html for the HTML
// pseudo-attachment.
func attachmentFileName(msgID string, att mail.Attachment) string {
	if att.Kind == mail.AttachmentHTML {
		return filepath.Base(msgID + ".html")
	}
	return filepath.Base(att.Filename)
}
