package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"storyclient/internal/domain"
	"storyclient/internal/messages"
)

// terminal renders the client's views as plain text. In interactive mode it
// also asks the user before running a view's action.
type terminal struct {
	in          *bufio.Scanner
	out         io.Writer
	msgs        *messages.Printer
	interactive bool
}

func newTerminal(in io.Reader, out io.Writer, msgs *messages.Printer) *terminal {
	if in == nil {
		in = strings.NewReader("")
	}
	if out == nil {
		out = io.Discard
	}
	return &terminal{in: bufio.NewScanner(in), out: out, msgs: msgs}
}

// Prompt reads lines until a non-blank one arrives. It reports false at end
// of input.
func (t *terminal) Prompt(label string) (string, bool) {
	for {
		fmt.Fprint(t.out, label)
		if !t.in.Scan() {
			fmt.Fprintln(t.out)
			return "", false
		}
		if line := strings.TrimSpace(t.in.Text()); line != "" {
			return line, true
		}
	}
}

func (t *terminal) Loading(message string) {
	fmt.Fprintln(t.out, message)
}

func (t *terminal) Render(story *domain.Story, onNewStory func()) {
	title := story.Title()
	if title == "" {
		title = fmt.Sprintf("Story #%d", story.ID)
	}
	fmt.Fprintf(t.out, "\n%s\n%s\n", title, strings.Repeat("=", len([]rune(title))))

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, story.Content, "", "  "); err != nil {
		t.out.Write(story.Content)
	} else {
		pretty.WriteTo(t.out)
	}
	fmt.Fprintln(t.out)

	if t.interactive && t.confirm(t.msgs.Sprintf(messages.NewStoryAction)) {
		onNewStory()
		return
	}
	fmt.Fprintln(t.out, t.msgs.Sprintf(messages.NewStoryHint))
}

func (t *terminal) ShowError(view domain.ErrorView) {
	if view.Title != "" {
		fmt.Fprintln(t.out, view.Title)
	}
	fmt.Fprintf(t.out, "error: %s\n", view.Message)
	if t.interactive && view.OnAction != nil && t.confirm(view.Action) {
		view.OnAction()
	}
}

// confirm offers action and reports whether the user accepted it with an
// empty line or "y".
func (t *terminal) confirm(action string) bool {
	fmt.Fprintf(t.out, "[%s] (Enter/y to continue, n to quit): ", action)
	if !t.in.Scan() {
		fmt.Fprintln(t.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(t.in.Text())) {
	case "", "y", "yes":
		return true
	default:
		return false
	}
}

var _ domain.Renderer = (*terminal)(nil)
