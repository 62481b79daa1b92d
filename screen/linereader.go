package screen

import (
	"io"

	"github.com/danswartzendruber/liner"
)

// LineReader is the blocking "read one line" capability INPUT reads
// through.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// LinerReader is a LineReader backed by a dedicated liner.State, kept
// separate from any liner instance the REPL uses for command entry so
// INPUT's history doesn't pollute the command history, mirroring the
// two-instance pattern (one for the command prompt, one for INPUT)
// seen in the rest of the example pack.
type LinerReader struct {
	state *liner.State
}

// NewLinerReader creates a LineReader. Close it when the interpreter
// shuts down to restore the terminal.
func NewLinerReader() *LinerReader {
	l := liner.NewLiner()
	l.SetMultiLineMode(true)
	return &LinerReader{state: l}
}

func (r *LinerReader) ReadLine(prompt string) (string, error) {
	s, err := r.state.Prompt(prompt)
	if err == io.EOF {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	return s, nil
}

func (r *LinerReader) Close() error { return r.state.Close() }
