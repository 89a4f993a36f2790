// Package htmltext renders HTML message bodies as plain text.
package htmltext

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/jaytaylor/html2text"
)

// ErrConversionFailed indicates the HTML-to-text collaborator was unavailable
// or rejected its input.
var ErrConversionFailed = errors.New("html conversion failed")

// DefaultWidth is the output column width used when none is configured.
const DefaultWidth = 80

// Converter renders an HTML document as width-constrained plain text.
type Converter interface {
	Convert(src string) (string, error)
}

// Lynx converts HTML by piping it through an external lynx process,
// `lynx -stdin -dump`. Path defaults to "lynx" from PATH, Width to
// DefaultWidth.
type Lynx struct {
	Path  string
	Width int
}

func (l Lynx) Convert(src string) (string, error) {
	path := l.Path
	if path == "" {
		path = "lynx"
	}
	width := l.Width
	if width <= 0 {
		width = DefaultWidth
	}

	cmd := exec.Command(path, "-stdin", "-dump", "-width", strconv.Itoa(width), "-display_charset=UTF-8")
	cmd.Stdin = strings.NewReader(src)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}
	return string(out), nil
}

// Builtin converts HTML in-process. It needs no external program but renders
// tables and links less faithfully than lynx.
type Builtin struct{}

func (Builtin) Convert(src string) (string, error) {
	text, err := html2text.FromString(src)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}
	return text, nil
}

// New returns the converter selected by name: "builtin" for the in-process
// renderer, anything else (including "") for lynx.
func New(name, lynxPath string, width int) Converter {
	if name == "builtin" {
		return Builtin{}
	}
	return Lynx{Path: lynxPath, Width: width}
}
