// Package tui provides the interactive terminal client for notmail.
package tui

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/notmail/notmail/internal/config"
	"github.com/notmail/notmail/internal/htmltext"
	"github.com/notmail/notmail/internal/mail"
	"github.com/notmail/notmail/internal/notmuch"
)

// Mailer is the surface of the notmuch collaborator the client needs.
// *notmuch.Runner implements it.
type Mailer interface {
	Search(ctx context.Context, query string) ([]*notmuch.Message, error)
	ShowPart(ctx context.Context, id string, part int) ([]byte, error)
	Insert(ctx context.Context, draft io.Reader) error
}

// appState is the top-level application state. Refresh runs the search and
// unconditionally lands in Index; Exit is modeled by bubbletea's quit.
type appState int

const (
	stateRefresh appState = iota
	stateIndex
	stateView
	stateCompose
)

// Options configuration for the client.
type Options struct {
	Config  *config.Config
	Version string
}

// detailState holds the reading view: the open message, its wrapped body
// lines, and its attachments. Attachments extend the same one-dimensional
// scroll position: selectedAtt is -1 until downward movement has exhausted
// body scrolling.
type detailState struct {
	msg         *notmuch.Message
	bodyLines   []string
	attachments []mail.Attachment
	scroll      int
	selectedAtt int
}

// Model is the main TUI model following the Elm architecture.
type Model struct {
	mailer  Mailer
	conv    htmltext.Converter
	cfg     *config.Config
	version string

	state appState

	// Index state. The forest and its flattened rows are exclusively owned
	// here and replaced wholesale on every refresh; a failed refresh leaves
	// both untouched.
	searchTerm   string
	forest       []*notmuch.Message
	rows         []Row
	cursor       int
	scrollOffset int

	// Inline search editing
	searchActive bool
	searchInput  textinput.Model

	// Two-stage g gesture, shared by the index and reading views: the first
	// g arms, the next keystroke resolves or cancels.
	gotoPending bool

	// Reading view (nil outside stateView)
	detail *detailState

	// Compose form (nil outside stateCompose)
	form *huh.Form

	// Terminal dimensions
	width  int
	height int

	// Loading state
	loading bool
	err     error // last refresh failure, shown in the footer

	// Flash message (temporary notification for non-fatal failures)
	flashMessage   string
	flashExpiresAt time.Time

	// Quit flag
	quitting bool
}

// flashDuration is how long flash messages are displayed.
const flashDuration = 4 * time.Second

// New creates a new client model with the given collaborators.
func New(mailer Mailer, conv htmltext.Converter, opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	ti := textinput.New()
	ti.Placeholder = "notmuch search"
	ti.CharLimit = 200
	ti.Width = 50

	return Model{
		mailer:      mailer,
		conv:        conv,
		cfg:         cfg,
		version:     opts.Version,
		state:       stateRefresh,
		searchTerm:  cfg.Notmuch.DefaultQuery,
		searchInput: ti,
		width:       80,
		height:      24,
		loading:     true,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.refresh(),
		tick(m.cfg.TickInterval()),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureCursorVisible()
		m.clampScroll()
		m.clampDetailScroll()
		if m.state == stateCompose {
			return m.updateComposeForm(msg)
		}
		return m, nil

	case tickMsg:
		if m.flashMessage != "" && time.Now().After(m.flashExpiresAt) {
			m.flashMessage = ""
		}
		return m, tick(m.cfg.TickInterval())

	case threadsLoadedMsg:
		m.loading = false
		m.state = stateIndex
		if msg.err != nil {
			// Keep the previously displayed index.
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.forest = msg.forest
		m.rows = Flatten(msg.forest, m.cfg.UI.TitleWidth)
		m.clampCursor()
		m.ensureCursorVisible()
		m.clampScroll()
		return m, nil

	case detailReadyMsg:
		m.loading = false
		if msg.err != nil {
			return m.showFlash("open message: " + msg.err.Error())
		}
		m.detail = &detailState{
			msg:         msg.msg,
			bodyLines:   msg.bodyLines,
			attachments: msg.attachments,
			selectedAtt: -1,
		}
		m.state = stateView
		return m, nil

	case viewerDoneMsg:
		// Viewer failures are reported; the reading view stays open.
		if msg.err != nil {
			return m.showFlash("viewer: " + msg.err.Error())
		}
		return m, nil

	case editorFinishedMsg:
		return m.finishCompose(msg)

	case insertDoneMsg:
		if msg.err != nil {
			m.setFlash("insert: " + msg.err.Error())
		} else {
			m.setFlash("Message sent")
		}
		m.state = stateRefresh
		m.loading = true
		return m, m.refresh()

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	// Remaining messages belong to the embedded compose form (timers etc.).
	if m.state == stateCompose {
		return m.updateComposeForm(msg)
	}
	return m, nil
}

// handleKeyPress dispatches keyboard input to the active state.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateIndex:
		if m.searchActive {
			return m.handleSearchKeys(msg)
		}
		return m.handleIndexKeys(msg)
	case stateView:
		return m.handleViewKeys(msg)
	case stateCompose:
		return m.handleComposeKeys(msg)
	default:
		// Refresh in flight: only the interrupt is honored.
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}
}

// setFlash records a transient notification.
func (m *Model) setFlash(message string) {
	m.flashMessage = message
	m.flashExpiresAt = time.Now().Add(flashDuration)
}

// showFlash records a transient notification and returns the model. Expiry
// is handled by the periodic tick.
func (m Model) showFlash(message string) (tea.Model, tea.Cmd) {
	m.setFlash(message)
	return m, nil
}

// startRefresh moves to the Refresh state and kicks off the search.
func (m Model) startRefresh() (tea.Model, tea.Cmd) {
	m.state = stateRefresh
	m.loading = true
	return m, m.refresh()
}
