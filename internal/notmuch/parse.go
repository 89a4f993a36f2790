package notmuch

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedThread indicates that notmuch output did not match the expected
// thread-set structure. The parse is aborted wholesale; no partial results
// are returned.
var ErrMalformedThread = errors.New("malformed thread structure")

// ParseThreads parses the output of `notmuch show --format=json` into a
// forest of message trees, one root per thread, preserving input order
// across all thread-sets.
//
// The payload is an array of thread-sets; each thread-set is an array of
// threads; each thread is an array of nodes where node 0 is a message object
// and any following node is a "children" array of sibling sub-threads of the
// same recursive shape. Depth is assigned during the walk: 0 for a thread
// root, +1 per reply nesting level.
func ParseThreads(data []byte) ([]*Message, error) {
	var sets [][]json.RawMessage
	if err := json.Unmarshal(data, &sets); err != nil {
		return nil, fmt.Errorf("%w: not a thread-set array: %v", ErrMalformedThread, err)
	}

	var roots []*Message
	for _, threads := range sets {
		for _, thread := range threads {
			root, err := parseThread(thread, 0)
			if err != nil {
				return nil, err
			}
			roots = append(roots, root)
		}
	}
	return roots, nil
}

// parseThread parses one thread node list: a message followed by optional
// children arrays.
func parseThread(raw json.RawMessage, depth int) (*Message, error) {
	var nodes []json.RawMessage
	if err := json.Unmarshal(raw, &nodes); err != nil {
		return nil, fmt.Errorf("%w: thread is not an array: %v", ErrMalformedThread, err)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: empty thread", ErrMalformedThread)
	}
	if jsonKind(nodes[0]) != kindObject {
		return nil, fmt.Errorf("%w: expected message, got something else", ErrMalformedThread)
	}

	msg := &Message{}
	if err := json.Unmarshal(nodes[0], msg); err != nil {
		return nil, fmt.Errorf("%w: decode message: %v", ErrMalformedThread, err)
	}
	msg.Depth = depth

	for _, node := range nodes[1:] {
		if jsonKind(node) != kindArray {
			return nil, fmt.Errorf("%w: expected children array after message %q", ErrMalformedThread, msg.ID)
		}
		var children []json.RawMessage
		if err := json.Unmarshal(node, &children); err != nil {
			return nil, fmt.Errorf("%w: decode children of %q: %v", ErrMalformedThread, msg.ID, err)
		}
		for _, child := range children {
			if jsonKind(child) != kindArray {
				return nil, fmt.Errorf("%w: child of %q is not a thread", ErrMalformedThread, msg.ID)
			}
			reply, err := parseThread(child, depth+1)
			if err != nil {
				return nil, err
			}
			msg.Replies = append(msg.Replies, reply)
		}
	}
	return msg, nil
}

// CountMessages returns the total number of messages in the forest.
func CountMessages(forest []*Message) int {
	n := 0
	for _, m := range forest {
		n += 1 + CountMessages(m.Replies)
	}
	return n
}
