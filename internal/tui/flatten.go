package tui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/notmail/notmail/internal/notmuch"
)

// DefaultTitleWidth is the width of the subject column in index rows.
const DefaultTitleWidth = 45

// noSubjectPlaceholder is rendered when a message has no Subject header.
const noSubjectPlaceholder = "<no subject>"

// Row is one line of the flattened index: the rendered title plus a
// reference to the message it represents. Rows are rebuilt from scratch on
// every refresh and never outlive the forest that produced them.
type Row struct {
	Title   string
	Message *notmuch.Message
}

// Flatten serializes a message forest into display rows in pre-order:
// every message exactly once, each parent immediately before its own
// subtree, siblings in input order. Titles are indented two spaces per
// reply depth and truncated to titleWidth terminal cells.
func Flatten(forest []*notmuch.Message, titleWidth int) []Row {
	if titleWidth <= 0 {
		titleWidth = DefaultTitleWidth
	}
	rows := make([]Row, 0, notmuch.CountMessages(forest))
	for _, msg := range forest {
		rows = appendRows(rows, msg, titleWidth)
	}
	return rows
}

func appendRows(rows []Row, msg *notmuch.Message, titleWidth int) []Row {
	rows = append(rows, Row{Title: rowTitle(msg, titleWidth), Message: msg})
	for _, reply := range msg.Replies {
		rows = appendRows(rows, reply, titleWidth)
	}
	return rows
}

func rowTitle(msg *notmuch.Message, titleWidth int) string {
	subject := msg.Subject()
	if subject == "" {
		subject = noSubjectPlaceholder
	}
	title := strings.Repeat("  ", msg.Depth) + sanitizeLine(subject)
	return runewidth.Truncate(title, titleWidth, "")
}

// FormatLine renders one full index line: relative date, the title column
// padded to titleWidth, and the bracketed tag list.
func FormatLine(r Row, titleWidth int) string {
	if titleWidth <= 0 {
		titleWidth = DefaultTitleWidth
	}
	return fmt.Sprintf("%19s  %s  %s",
		sanitizeLine(r.Message.DateRelative),
		padRight(r.Title, titleWidth),
		formatTags(r.Message.Tags))
}

func formatTags(tags []string) string {
	return "[" + strings.Join(tags, ",") + "]"
}
