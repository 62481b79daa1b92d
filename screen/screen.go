// Package screen implements the terminal capability the interpreter
// writes through for HOME/HTAB/VTAB/PRINT and reads cursor position
// from for POS/TAB, grounded in the console abstraction pattern of the
// teacher's object.Console interface but narrowed to what the core
// actually uses.
package screen

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Screen is everything the interpreter needs from a terminal. All
// operations are best-effort: a write failure is swallowed rather than
// propagated, per the external-interfaces contract.
type Screen interface {
	Cls()
	HTab(col int)
	VTab(row int)
	Column() int
	Write(s string)
	Newline()
}

// ANSI is a Screen backed by an ANSI-capable terminal, sized via
// golang.org/x/term when the output is a real terminal and falling
// back to a fixed 40x24 (the Apple ][ text screen) otherwise.
type ANSI struct {
	out    io.Writer
	fd     int
	isTerm bool
	col    int
	row    int
}

// NewANSI wraps out (normally os.Stdout) as a Screen.
func NewANSI(out *os.File) *ANSI {
	fd := int(out.Fd())
	return &ANSI{out: out, fd: fd, isTerm: term.IsTerminal(fd), row: 1}
}

func (a *ANSI) size() (cols, rows int) {
	if a.isTerm {
		if w, h, err := term.GetSize(a.fd); err == nil && w > 0 && h > 0 {
			return w, h
		}
	}
	return 40, 24
}

func (a *ANSI) Cls() {
	fmt.Fprint(a.out, "\x1b[2J\x1b[H")
	a.col, a.row = 0, 1
}

// HTab moves to column col (1-based), clamped to the terminal width.
func (a *ANSI) HTab(col int) {
	cols, _ := a.size()
	if col < 1 {
		col = 1
	}
	if col > cols {
		col = cols
	}
	fmt.Fprintf(a.out, "\x1b[%dG", col)
	a.col = col - 1
}

// VTab moves to row row (1-based), clamped to the terminal height.
func (a *ANSI) VTab(row int) {
	_, rows := a.size()
	if row < 1 {
		row = 1
	}
	if row > rows {
		row = rows
	}
	fmt.Fprintf(a.out, "\x1b[%d;%dH", row, a.col+1)
	a.row = row
}

// Column reports the zero-based cursor column PRINT zones and TAB/POS
// are measured from.
func (a *ANSI) Column() int { return a.col }

func (a *ANSI) Write(s string) {
	fmt.Fprint(a.out, s)
	for _, r := range s {
		if r == '\n' {
			a.col = 0
		} else {
			a.col++
		}
	}
}

func (a *ANSI) Newline() {
	fmt.Fprint(a.out, "\n")
	a.col = 0
}
