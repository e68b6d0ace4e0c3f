package main

import (
	"errors"
	"io"
	"strings"
)

// Handle-able error codes that arise from line editors
var (
	ErrInterrupt = errors.New("Interrupt")
	ErrEnd       = io.EOF
)

// LineEditor should provide decent line editing abilities like up/down arrow
// history, left/right arrow cursor movement, hidden password entry etc.
type LineEditor interface {
	// Line returns a line of text as read from the user
	Line(prompt string) (string, error)
	// LineHidden returns a line of text as read from the user, but does not
	// show what's typed to the user.
	LineHidden(prompt string) (string, error)

	// AddHistory puts line into the history. It should be called when a valid
	// command has occurred.
	AddHistory(line string)

	// SetConnCompleter is used to allow a line editor to provide completion
	// for connection names.
	SetConnCompleter(func(string) []string)

	// Close the line editor, restoring any terminal magic to its proper place
	Close() error
}

// completeLine expands the last word of line into full-line
// completions, keeping only candidates the word is a prefix of. Used
// by editors whose completion hook does no filtering of its own.
func completeLine(line string, candidates []string) []string {
	word := line
	if i := strings.LastIndex(line, " "); i >= 0 {
		word = line[i+1:]
	}
	head := line[:len(line)-len(word)]

	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), strings.ToLower(word)) {
			out = append(out, head+c)
		}
	}
	return out
}
