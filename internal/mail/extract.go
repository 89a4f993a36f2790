// Package mail extracts readable text and attachment descriptors from a
// message's body tree.
package mail

import (
	"fmt"
	"strings"

	"github.com/notmail/notmail/internal/htmltext"
	"github.com/notmail/notmail/internal/notmuch"
)

// AttachmentKind discriminates between real file attachments and the
// synthetic HTML pseudo-attachment.
type AttachmentKind int

const (
	// AttachmentFile is a concrete part carrying a filename, re-fetchable
	// by part ID.
	AttachmentFile AttachmentKind = iota
	// AttachmentHTML is the message's raw HTML alternative, kept viewable
	// even when the plain text was derived from it.
	AttachmentHTML
)

// Attachment describes one openable attachment of a message. PartID,
// Filename and MimeType are set for AttachmentFile; HTML for AttachmentHTML.
type Attachment struct {
	Kind     AttachmentKind
	PartID   int
	Filename string
	MimeType string
	HTML     string
}

// Label returns the attachment's display name.
func (a Attachment) Label() string {
	if a.Kind == AttachmentHTML {
		return "text/html alternative"
	}
	return fmt.Sprintf("%s  (%s)", a.Filename, a.MimeType)
}

// Extract walks a message's body parts and returns the plain-text body plus
// attachments in walk order (depth-first, parts in listed sequence, the
// order users select attachments by).
//
// Leaf text accumulates into a plain buffer, except text/html which
// accumulates into a message-wide HTML buffer. When the walk produced no
// plain text but did find HTML, the body is rendered through conv; this is
// the only step that can fail. A non-empty HTML buffer always also yields an
// AttachmentHTML entry, appended last. When both buffers are empty the body
// is empty and conv is never invoked.
func Extract(parts []notmuch.BodyPart, conv htmltext.Converter) (string, []Attachment, error) {
	var text, html strings.Builder
	var atts []Attachment
	walk(parts, &text, &html, &atts)

	body := text.String()
	if body == "" && html.Len() > 0 {
		converted, err := conv.Convert(html.String())
		if err != nil {
			return "", nil, fmt.Errorf("render html body: %w", err)
		}
		body = converted
	}
	if html.Len() > 0 {
		atts = append(atts, Attachment{Kind: AttachmentHTML, HTML: html.String()})
	}
	return body, atts, nil
}

// walk visits every part depth-first. Both builders are shared across the
// whole walk: HTML alternatives are tracked per message, not per sub-tree.
func walk(parts []notmuch.BodyPart, text, html *strings.Builder, atts *[]Attachment) {
	for _, p := range parts {
		switch {
		case p.Children != nil:
			walk(p.Children, text, html, atts)
		case p.Content != "":
			if p.ContentType == "text/html" {
				html.WriteString(p.Content)
			} else {
				text.WriteString(p.Content)
			}
		}

		// A filename makes a part an attachment regardless of any text
		// contribution it made above.
		if p.Filename != "" {
			*atts = append(*atts, Attachment{
				Kind:     AttachmentFile,
				PartID:   p.ID,
				Filename: p.Filename,
				MimeType: p.ContentType,
			})
		}
	}
}
