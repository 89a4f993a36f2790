package notmuch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
)

// Error taxonomy for notmuch invocations. Callers match with errors.Is.
var (
	// ErrSearchFailed indicates the show/search invocation itself failed.
	ErrSearchFailed = errors.New("notmuch search failed")
	// ErrFetchFailed indicates a raw part fetch failed.
	ErrFetchFailed = errors.New("attachment fetch failed")
	// ErrInsertFailed indicates `notmuch insert` rejected a composed draft.
	ErrInsertFailed = errors.New("notmuch insert failed")
)

// Runner invokes the notmuch binary as a subprocess. The zero value uses
// "notmuch" from PATH.
type Runner struct {
	Binary string
}

// NewRunner returns a Runner for the given binary path; empty means
// "notmuch" resolved from PATH.
func NewRunner(binary string) *Runner {
	if binary == "" {
		binary = "notmuch"
	}
	return &Runner{Binary: binary}
}

func searchArgs(query string) []string {
	return []string{"show", "--format=json", "--include-html", query}
}

func partArgs(id string, part int) []string {
	return []string{"show", "--format=raw", "--part=" + strconv.Itoa(part), "id:" + id}
}

// Search runs a notmuch show for the query and parses the resulting
// thread-set JSON into a message forest.
func (r *Runner) Search(ctx context.Context, query string) ([]*Message, error) {
	out, err := r.run(ctx, nil, searchArgs(query)...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	return ParseThreads(out)
}

// ShowPart fetches the raw bytes of one body part of a message.
func (r *Runner) ShowPart(ctx context.Context, id string, part int) ([]byte, error) {
	out, err := r.run(ctx, nil, partArgs(id, part)...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	return out, nil
}

// Insert pipes a complete RFC 5322 message to `notmuch insert`.
func (r *Runner) Insert(ctx context.Context, draft io.Reader) error {
	if _, err := r.run(ctx, draft, "insert"); err != nil {
		return fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}
	return nil
}

// run executes the binary with the given arguments, returning stdout.
// Failure includes trailing stderr output when available.
func (r *Runner) run(ctx context.Context, stdin io.Reader, args ...string) ([]byte, error) {
	slog.Debug("running notmuch", "binary", r.Binary, "args", args)

	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Stdin = stdin
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return nil, fmt.Errorf("%v: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}
