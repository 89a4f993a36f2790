package tui

import (
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/notmail/notmail/internal/notmuch"
)

func TestRefreshSuccessLandsInIndex(t *testing.T) {
	mailer := &mockMailer{forest: []*notmuch.Message{makeThread("Hi", "Re: Hi")}}
	m := newTestModel(mailer)

	next, _ := m.Update(threadsLoadedMsg{forest: mailer.forest})
	m = next.(Model)

	if m.state != stateIndex {
		t.Fatalf("state = %v, want stateIndex", m.state)
	}
	if m.loading {
		t.Error("loading should be cleared after refresh")
	}
	if len(m.rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(m.rows))
	}
}

func TestRefreshFailureKeepsPreviousIndex(t *testing.T) {
	mailer := &mockMailer{forest: []*notmuch.Message{makeThread("Hi", "Re: Hi")}}
	m := loadedModel(t, mailer)

	next, _ := m.Update(threadsLoadedMsg{err: errStub})
	m = next.(Model)

	if m.state != stateIndex {
		t.Fatalf("state = %v, want stateIndex", m.state)
	}
	if len(m.rows) != 2 {
		t.Errorf("rows = %d, want previous 2 retained", len(m.rows))
	}
	if m.err == nil {
		t.Error("refresh error should be recorded for the footer")
	}
}

func TestRefreshCommandFallsBackToDefaultQuery(t *testing.T) {
	mailer := &mockMailer{}
	m := newTestModel(mailer)
	m.searchTerm = "   "

	cmd := m.refresh()
	cmd()

	if len(mailer.queries) != 1 {
		t.Fatalf("queries = %v, want one", mailer.queries)
	}
	if mailer.queries[0] != m.cfg.Notmuch.DefaultQuery {
		t.Errorf("query = %q, want default %q", mailer.queries[0], m.cfg.Notmuch.DefaultQuery)
	}
}

func TestOpenSelectedOnEmptyListIsNoOp(t *testing.T) {
	m := loadedModel(t, &mockMailer{})

	next, cmd := pressKey(t, m, "enter")

	if cmd != nil {
		t.Error("opening with no rows should not produce a command")
	}
	if next.state != stateIndex {
		t.Errorf("state = %v, want stateIndex", next.state)
	}
}

func TestOpenSelectedEntersReadingView(t *testing.T) {
	mailer := &mockMailer{forest: []*notmuch.Message{makeMessage("m1", "Hi", "line one\nline two")}}
	m := loadedModel(t, mailer)

	m, cmd := pressKey(t, m, "enter")
	if cmd == nil {
		t.Fatal("expected an extraction command")
	}
	next, _ := m.Update(cmd())
	m = next.(Model)

	if m.state != stateView {
		t.Fatalf("state = %v, want stateView", m.state)
	}
	if m.detail == nil || m.detail.msg.ID != "m1" {
		t.Fatal("detail should hold the opened message")
	}
	if len(m.detail.bodyLines) != 2 {
		t.Errorf("bodyLines = %d, want 2", len(m.detail.bodyLines))
	}
	if m.detail.selectedAtt != -1 {
		t.Errorf("selectedAtt = %d, want -1", m.detail.selectedAtt)
	}
}

func TestCloseReadingViewReturnsToIndex(t *testing.T) {
	mailer := &mockMailer{forest: []*notmuch.Message{makeMessage("m1", "Hi", "body")}}
	m := openMessage(t, mailer)

	for _, key := range []string{"q", "i", "esc"} {
		closed := press(t, m, key)
		if closed.state != stateIndex {
			t.Errorf("key %q: state = %v, want stateIndex", key, closed.state)
		}
		if closed.detail != nil {
			t.Errorf("key %q: detail should be cleared", key)
		}
	}
}

func TestSearchEditCommitTriggersRefresh(t *testing.T) {
	mailer := &mockMailer{forest: []*notmuch.Message{makeMessage("m1", "Hi", "body")}}
	m := loadedModel(t, mailer)

	m, _ = pressKey(t, m, "l")
	if !m.searchActive {
		t.Fatal("l should activate the search editor")
	}

	for _, r := range "tag:todo" {
		m, _ = pressKey(t, m, string(r))
	}
	m, cmd := pressKey(t, m, "enter")

	if m.searchTerm != "tag:todo" {
		t.Errorf("searchTerm = %q, want %q", m.searchTerm, "tag:todo")
	}
	if m.state != stateRefresh {
		t.Errorf("state = %v, want stateRefresh", m.state)
	}
	if cmd == nil {
		t.Fatal("committing a search should produce a refresh command")
	}
	cmd()
	if got := mailer.queries[len(mailer.queries)-1]; got != "tag:todo" {
		t.Errorf("query = %q, want %q", got, "tag:todo")
	}
}

func TestSearchEditEscapeCancels(t *testing.T) {
	m := loadedModel(t, &mockMailer{forest: []*notmuch.Message{makeMessage("m1", "Hi", "body")}})
	before := m.searchTerm

	m = press(t, m, "l", "x", "esc")

	if m.searchActive {
		t.Error("esc should close the search editor")
	}
	if m.searchTerm != before {
		t.Errorf("searchTerm = %q, want unchanged %q", m.searchTerm, before)
	}
	if m.state != stateIndex {
		t.Errorf("state = %v, want stateIndex", m.state)
	}
}

func TestSearchEditEmptyCommitUsesDefaultQuery(t *testing.T) {
	m := loadedModel(t, &mockMailer{forest: []*notmuch.Message{makeMessage("m1", "Hi", "body")}})
	m = press(t, m, "l")
	m, _ = pressKey(t, m, "enter")

	if m.searchTerm != m.cfg.Notmuch.DefaultQuery {
		t.Errorf("searchTerm = %q, want default %q", m.searchTerm, m.cfg.Notmuch.DefaultQuery)
	}
}

func TestComposeKeyOpensForm(t *testing.T) {
	m := loadedModel(t, &mockMailer{})

	m, _ = pressKey(t, m, "m")

	if m.state != stateCompose {
		t.Fatalf("state = %v, want stateCompose", m.state)
	}
	if m.form == nil {
		t.Fatal("compose form should be initialized")
	}
}

func TestComposeAbortReturnsToRefresh(t *testing.T) {
	mailer := &mockMailer{}
	m := loadedModel(t, mailer)
	m, _ = pressKey(t, m, "m")
	m.form.State = huh.StateAborted

	next, cmd := m.updateComposeForm(tickMsg(time.Now()))
	m = next.(Model)

	if m.state != stateRefresh {
		t.Errorf("state = %v, want stateRefresh", m.state)
	}
	if m.form != nil {
		t.Error("compose form should be discarded")
	}
	if cmd == nil {
		t.Fatal("aborting compose should trigger a refresh")
	}
	cmd()
	if len(mailer.queries) == 0 {
		t.Error("refresh command should run the search")
	}
}

func TestFinishComposeEmptyDraftCancels(t *testing.T) {
	mailer := &mockMailer{}
	m := loadedModel(t, mailer)

	path := writeDraftFile(t, "   \n")
	next, cmd := m.Update(editorFinishedMsg{to: "bob@example.com", subject: "Hi", path: path})
	m = next.(Model)

	if m.flashMessage == "" {
		t.Error("empty draft should surface a flash message")
	}
	if m.state != stateRefresh {
		t.Errorf("state = %v, want stateRefresh", m.state)
	}
	if cmd == nil {
		t.Fatal("cancel should still trigger a refresh")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("draft file should be removed")
	}
}

func TestFinishComposeEditorErrorCancels(t *testing.T) {
	m := loadedModel(t, &mockMailer{})

	path := writeDraftFile(t, "body")
	next, _ := m.Update(editorFinishedMsg{to: "bob@example.com", subject: "Hi", path: path, err: errStub})
	m = next.(Model)

	if !strings.Contains(m.flashMessage, "editor") {
		t.Errorf("flash = %q, want editor failure", m.flashMessage)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("draft file should be removed")
	}
}

func TestFinishComposeSendsDraft(t *testing.T) {
	mailer := &mockMailer{}
	m := loadedModel(t, mailer)

	path := writeDraftFile(t, "hello there\n")
	next, cmd := m.Update(editorFinishedMsg{to: "bob@example.com", subject: "Greetings", path: path})
	m = next.(Model)

	if m.state != stateRefresh {
		t.Fatalf("state = %v, want stateRefresh", m.state)
	}
	if cmd == nil {
		t.Fatal("expected an insert command")
	}
	msg := cmd()
	done, ok := msg.(insertDoneMsg)
	if !ok {
		t.Fatalf("msg = %T, want insertDoneMsg", msg)
	}
	if done.err != nil {
		t.Fatalf("insert: %v", done.err)
	}

	if len(mailer.inserted) != 1 {
		t.Fatalf("inserted = %d drafts, want 1", len(mailer.inserted))
	}
	draft := string(mailer.inserted[0])
	for _, want := range []string{"To: <bob@example.com>", "Subject: Greetings", "Message-Id:", "hello there"} {
		if !strings.Contains(draft, want) {
			t.Errorf("draft missing %q:\n%s", want, draft)
		}
	}
}

func TestInsertFailureIsNonFatal(t *testing.T) {
	m := loadedModel(t, &mockMailer{})

	next, cmd := m.Update(insertDoneMsg{err: errStub})
	m = next.(Model)

	if !strings.Contains(m.flashMessage, "insert") {
		t.Errorf("flash = %q, want insert failure", m.flashMessage)
	}
	if m.state != stateRefresh {
		t.Errorf("state = %v, want stateRefresh", m.state)
	}
	if cmd == nil {
		t.Error("insert failure should still refresh the index")
	}
}

func TestTickExpiresFlash(t *testing.T) {
	m := loadedModel(t, &mockMailer{})
	m.flashMessage = "stale"
	m.flashExpiresAt = time.Now().Add(-time.Second)

	next, cmd := m.Update(tickMsg(time.Now()))
	m = next.(Model)

	if m.flashMessage != "" {
		t.Errorf("flash = %q, want expired", m.flashMessage)
	}
	if cmd == nil {
		t.Error("tick should reschedule itself")
	}
}

func TestTickKeepsLiveFlash(t *testing.T) {
	m := loadedModel(t, &mockMailer{})
	m.setFlash("fresh")

	next, _ := m.Update(tickMsg(time.Now()))
	m = next.(Model)

	if m.flashMessage != "fresh" {
		t.Errorf("flash = %q, want retained", m.flashMessage)
	}
}

func TestViewerFailureKeepsReadingViewOpen(t *testing.T) {
	mailer := &mockMailer{forest: []*notmuch.Message{makeMessage("m1", "Hi", "body")}}
	m := openMessage(t, mailer)

	next, _ := m.Update(viewerDoneMsg{err: errStub})
	m = next.(Model)

	if m.state != stateView {
		t.Errorf("state = %v, want stateView", m.state)
	}
	if !strings.Contains(m.flashMessage, "viewer") {
		t.Errorf("flash = %q, want viewer failure", m.flashMessage)
	}
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []string{"q", "ctrl+c"} {
		m := loadedModel(t, &mockMailer{})
		m, cmd := pressKey(t, m, key)
		if !m.quitting {
			t.Errorf("key %q should set quitting", key)
		}
		if cmd == nil {
			t.Errorf("key %q should produce tea.Quit", key)
		}
	}
}

func TestWindowResizeReclamps(t *testing.T) {
	forest := make([]*notmuch.Message, 0, 40)
	for i := 0; i < 40; i++ {
		forest = append(forest, makeMessage("m", "Subj", "body"))
	}
	m := loadedModel(t, &mockMailer{forest: forest})
	m = press(t, m, "G")

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	m = next.(Model)

	if m.cursor < m.scrollOffset || m.cursor >= m.scrollOffset+m.pageSize() {
		t.Errorf("cursor %d outside window [%d, %d)", m.cursor, m.scrollOffset, m.scrollOffset+m.pageSize())
	}
}

// openMessage loads the mailer's first message into the reading view.
func openMessage(t *testing.T, mailer *mockMailer) Model {
	t.Helper()
	m := loadedModel(t, mailer)
	m, cmd := pressKey(t, m, "enter")
	if cmd == nil {
		t.Fatal("expected an extraction command")
	}
	next, _ := m.Update(cmd())
	m = next.(Model)
	if m.state != stateView {
		t.Fatalf("state = %v, want stateView", m.state)
	}
	return m
}

// writeDraftFile creates a temp draft file with the given content.
func writeDraftFile(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "draft-*.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
	f.Close()
	return f.Name()
}
