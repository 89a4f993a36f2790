package tui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/notmail/notmail/internal/config"
	"github.com/notmail/notmail/internal/notmuch"
)

// colorProfileMu serializes tests that mutate the global lipgloss color
// profile.
var colorProfileMu sync.Mutex

// forceColorProfile sets lipgloss to ANSI color output for tests that
// assert on styled output. It acquires colorProfileMu to prevent data races
// with parallel tests and restores the original profile via t.Cleanup.
func forceColorProfile(t *testing.T) {
	t.Helper()
	colorProfileMu.Lock()
	orig := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.ANSI)
	t.Cleanup(func() {
		lipgloss.SetColorProfile(orig)
		colorProfileMu.Unlock()
	})
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// mockMailer is an in-memory Mailer. Each method returns the configured
// result or error; Insert records the drafts it receives.
type mockMailer struct {
	forest    []*notmuch.Message
	searchErr error
	queries   []string

	partData []byte
	partErr  error

	insertErr error
	inserted  [][]byte
}

func (f *mockMailer) Search(_ context.Context, query string) ([]*notmuch.Message, error) {
	f.queries = append(f.queries, query)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.forest, nil
}

func (f *mockMailer) ShowPart(_ context.Context, _ string, _ int) ([]byte, error) {
	if f.partErr != nil {
		return nil, f.partErr
	}
	return f.partData, nil
}

func (f *mockMailer) Insert(_ context.Context, draft io.Reader) error {
	data, err := io.ReadAll(draft)
	if err != nil {
		return err
	}
	f.inserted = append(f.inserted, bytes.TrimSpace(data))
	return f.insertErr
}

// stubConverter returns a canned conversion result.
type stubConverter struct {
	out    string
	err    error
	called int
}

func (s *stubConverter) Convert(_ string) (string, error) {
	s.called++
	if s.err != nil {
		return "", s.err
	}
	return s.out, nil
}

var errStub = errors.New("stub failure")

// makeMessage builds a leaf message with a plain-text body.
func makeMessage(id, subject, body string) *notmuch.Message {
	return &notmuch.Message{
		ID:           id,
		Timestamp:    1700000000,
		DateRelative: "Yest. 10:14",
		Tags:         []string{"inbox"},
		Headers: map[string]string{
			"From":    "alice@example.com",
			"To":      "bob@example.com",
			"Date":    "Tue, 14 Nov 2023 10:14:00 +0000",
			"Subject": subject,
		},
		Body: []notmuch.BodyPart{
			{ID: 1, ContentType: "text/plain", Content: body},
		},
	}
}

// makeThread builds a root with one reply, the depths already assigned the
// way the parser assigns them.
func makeThread(rootSubject, replySubject string) *notmuch.Message {
	root := makeMessage("root", rootSubject, "hello")
	reply := makeMessage("reply", replySubject, "hello back")
	reply.Depth = 1
	root.Replies = []*notmuch.Message{reply}
	return root
}

// newTestModel builds a model wired to the given mailer with a small
// terminal and the default config.
func newTestModel(mailer *mockMailer) Model {
	m := New(mailer, &stubConverter{}, Options{Config: config.Default(), Version: "test"})
	m.width = 100
	m.height = 24
	return m
}

// loadedModel builds a model whose index is already populated from the
// mailer's forest, as if a refresh had completed.
func loadedModel(t *testing.T, mailer *mockMailer) Model {
	t.Helper()
	m := newTestModel(mailer)
	next, _ := m.Update(threadsLoadedMsg{forest: mailer.forest})
	return next.(Model)
}

// pressKey sends a single key to the model and returns the resulting model
// and command.
func pressKey(t *testing.T, m Model, key string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "pgup":
		msg = tea.KeyMsg{Type: tea.KeyPgUp}
	case "pgdown":
		msg = tea.KeyMsg{Type: tea.KeyPgDown}
	case "end":
		msg = tea.KeyMsg{Type: tea.KeyEnd}
	case "ctrl+c":
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+u":
		msg = tea.KeyMsg{Type: tea.KeyCtrlU}
	case "ctrl+d":
		msg = tea.KeyMsg{Type: tea.KeyCtrlD}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// press sends a sequence of keys, discarding commands.
func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m, _ = pressKey(t, m, k)
	}
	return m
}
