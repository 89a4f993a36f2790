// Package notmuch invokes the notmuch CLI and parses its JSON output into
// message trees.
package notmuch

import (
	"encoding/json"
	"fmt"
)

// Message is a single mail message in a thread tree.
//
// Depth and Replies are computed while parsing the thread structure; they are
// not present in the notmuch output itself.
type Message struct {
	ID           string            `json:"id"`
	Timestamp    int64             `json:"timestamp"`
	DateRelative string            `json:"date_relative"`
	Tags         []string          `json:"tags"`
	Headers      map[string]string `json:"headers"`
	Body         []BodyPart        `json:"body"`

	Depth   int        `json:"-"`
	Replies []*Message `json:"-"`
}

// Subject returns the Subject header, or the empty string when missing.
func (m *Message) Subject() string {
	return m.Headers["Subject"]
}

// BodyPart is one node of a message's body tree. A part is either a leaf with
// string Content or a container with Children (notmuch represents multipart
// and alternative containers as nested arrays). Exactly one of Content and
// Children is populated; both may be empty for parts whose content notmuch
// omitted (e.g. binary attachments).
type BodyPart struct {
	ID          int    `json:"id"`
	ContentType string `json:"content-type"`
	Charset     string `json:"content-charset"`
	Filename    string `json:"filename"`

	Content  string
	Children []BodyPart
}

// bodyPartWire mirrors BodyPart for decoding, with the untagged content slot
// kept raw so it can be probed structurally.
type bodyPartWire struct {
	ID          int             `json:"id"`
	ContentType string          `json:"content-type"`
	Charset     string          `json:"content-charset"`
	Filename    string          `json:"filename"`
	Content     json.RawMessage `json:"content"`
}

// UnmarshalJSON decodes a body part, discriminating the untagged content slot
// by shape: a JSON string is leaf content, a JSON array is a list of child
// parts, and absent/null means no content at all. Anything else is an error.
func (p *BodyPart) UnmarshalJSON(data []byte) error {
	var wire bodyPartWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	p.ID = wire.ID
	p.ContentType = wire.ContentType
	p.Charset = wire.Charset
	p.Filename = wire.Filename
	p.Content = ""
	p.Children = nil

	switch jsonKind(wire.Content) {
	case kindAbsent:
		return nil
	case kindString:
		return json.Unmarshal(wire.Content, &p.Content)
	case kindArray:
		return json.Unmarshal(wire.Content, &p.Children)
	default:
		return fmt.Errorf("body part %d: content is neither a string nor an array", wire.ID)
	}
}

type rawKind int

const (
	kindAbsent rawKind = iota
	kindString
	kindArray
	kindObject
	kindOther
)

// jsonKind classifies a raw JSON value by its first significant byte.
func jsonKind(raw json.RawMessage) rawKind {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '"':
			return kindString
		case '[':
			return kindArray
		case '{':
			return kindObject
		case 'n': // null
			return kindAbsent
		default:
			return kindOther
		}
	}
	return kindAbsent
}
