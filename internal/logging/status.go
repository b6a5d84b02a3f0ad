package logging

import (
	"fmt"
	"io"
)

// Terminal control sequences used by StatusLine.
const (
	hideCursor = "\033[?25l"
	showCursor = "\033[?25h"
	clearLine  = "\r\033[2K"
)

// StatusLine rewrites a single line of a terminal in place.
type StatusLine struct {
	w io.Writer
}

// NewStatusLine hides the cursor of w and returns a status line writing to it.
// Call Clear before writing other output to w and Close to restore the cursor.
func NewStatusLine(w io.Writer) *StatusLine {
	fmt.Fprint(w, hideCursor)

	return &StatusLine{w: w}
}

// Update replaces the current line with msg.
func (s *StatusLine) Update(msg string) {
	fmt.Fprintf(s.w, "%s%s\r", clearLine, msg)
}

// Clear erases the current line.
func (s *StatusLine) Clear() {
	fmt.Fprint(s.w, clearLine+"\r")
}

// Close shows the cursor again.
func (s *StatusLine) Close() {
	fmt.Fprint(s.w, showCursor)
}
