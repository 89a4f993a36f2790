package tui

import (
	"bytes"
	"context"
	"io"
	netmail "net/mail"
	"os"
	"os/exec"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	gomail "github.com/emersion/go-message/mail"
)

const (
	composeToKey      = "to"
	composeSubjectKey = "subject"
)

// newComposeForm builds the two-field envelope form. Field values are read
// back by key once the form completes; binding pointers would not survive
// the value-receiver model copies bubbletea makes.
func newComposeForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key(composeToKey).
				Title("To").
				Placeholder("recipient@example.com"),
			huh.NewInput().
				Key(composeSubjectKey).
				Title("Subject"),
		),
	)
}

// startCompose switches to the compose state and initializes the envelope
// form.
func (m Model) startCompose() (tea.Model, tea.Cmd) {
	m.form = newComposeForm()
	m.state = stateCompose
	return m, m.form.Init()
}

// updateComposeForm feeds a message to the embedded form and reacts to its
// terminal states: a completed envelope launches the external editor, an
// aborted one returns to the index.
func (m Model) updateComposeForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		to := strings.TrimSpace(m.form.GetString(composeToKey))
		subject := strings.TrimSpace(m.form.GetString(composeSubjectKey))
		m.form = nil
		if to == "" || subject == "" {
			m.setFlash("Compose canceled: empty envelope")
			return m.startRefresh()
		}
		return m.launchEditor(to, subject)

	case huh.StateAborted:
		// Compose always exits through Refresh, whichever way it ends.
		m.form = nil
		return m.startRefresh()
	}

	return m, cmd
}

// editorFinishedMsg is sent when the external editor exits. path points at
// the draft body file.
type editorFinishedMsg struct {
	to      string
	subject string
	path    string
	err     error
}

// launchEditor writes an empty owner-only draft file and suspends the TUI
// while the configured editor runs on it.
func (m Model) launchEditor(to, subject string) (tea.Model, tea.Cmd) {
	f, err := os.CreateTemp("", "notmail-draft-*.txt")
	if err != nil {
		m.setFlash("compose: " + err.Error())
		return m.startRefresh()
	}
	path := f.Name()
	f.Close()
	if err := os.Chmod(path, 0o600); err != nil {
		os.Remove(path)
		m.setFlash("compose: " + err.Error())
		return m.startRefresh()
	}

	c := exec.Command(m.cfg.Compose.Editor, path)
	return m, tea.ExecProcess(c, func(err error) tea.Msg {
		return editorFinishedMsg{to: to, subject: subject, path: path, err: wrapToolErr(err)}
	})
}

// finishCompose reads the draft body back, builds the RFC 5322 message and
// hands it to notmuch insert. An empty draft or an editor failure cancels
// the send without error.
func (m Model) finishCompose(msg editorFinishedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		os.Remove(msg.path)
		m.setFlash("editor: " + msg.err.Error())
		return m.startRefresh()
	}

	body, err := os.ReadFile(msg.path)
	os.Remove(msg.path)
	if err != nil {
		m.setFlash("compose: " + err.Error())
		return m.startRefresh()
	}
	if len(bytes.TrimSpace(body)) == 0 {
		m.setFlash("Compose canceled: empty draft")
		return m.startRefresh()
	}

	m.state = stateRefresh
	m.loading = true
	return m, m.insertDraft(msg.to, msg.subject, string(body))
}

// insertDoneMsg is sent when notmuch insert finishes.
type insertDoneMsg struct {
	err error
}

func (m Model) insertDraft(to, subject, body string) tea.Cmd {
	mailer := m.mailer
	from := m.cfg.Compose.From
	return func() tea.Msg {
		draft, err := BuildDraft(from, to, subject, body)
		if err != nil {
			return insertDoneMsg{err: err}
		}
		err = mailer.Insert(context.Background(), bytes.NewReader(draft))
		return insertDoneMsg{err: err}
	}
}

// BuildDraft assembles a plain-text RFC 5322 message.
func BuildDraft(from, to, subject, body string) ([]byte, error) {
	fromList, err := parseAddresses(from)
	if err != nil {
		return nil, err
	}
	toList, err := parseAddresses(to)
	if err != nil {
		return nil, err
	}

	var h gomail.Header
	h.SetDate(time.Now())
	h.SetAddressList("From", fromList)
	h.SetAddressList("To", toList)
	h.SetSubject(subject)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	if err := h.GenerateMessageID(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w, err := gomail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(w, body); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// parseAddresses accepts a comma-separated address list, tolerating bare
// local parts the strict parser rejects.
func parseAddresses(s string) ([]*gomail.Address, error) {
	list, err := netmail.ParseAddressList(s)
	if err == nil {
		addrs := make([]*gomail.Address, len(list))
		for i, a := range list {
			addrs[i] = (*gomail.Address)(a)
		}
		return addrs, nil
	}

	// Fall back to splitting on commas and taking each piece verbatim.
	parts := strings.Split(s, ",")
	addrs := make([]*gomail.Address, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		addrs = append(addrs, &gomail.Address{Address: p})
	}
	if len(addrs) == 0 {
		return nil, err
	}
	return addrs, nil
}
