// Package interp implements the Applesoft statement interpreter: the
// program store, the RUN loop, variable/array/FOR/GOSUB/DATA state, and
// the dispatch for every statement keyword.
package interp

import (
	"sort"
	"strconv"

	"github.com/go-applesoft/applesoft/token"
)

// line is one stored program line: its number, the raw text as last
// stored (what LIST must reproduce verbatim), and the token sequence
// the lexer produced from that text for execution.
type line struct {
	num  int
	text string
	toks []token.Token
}

// program holds the stored lines in ascending line-number order.
type program struct {
	lines []line
}

func newProgram() *program {
	return &program{}
}

// find returns the index of num in p.lines, and whether it was found.
// When not found, the index is where it would be inserted to keep the
// slice sorted.
func (p *program) find(num int) (int, bool) {
	i := sort.Search(len(p.lines), func(i int) bool { return p.lines[i].num >= num })
	if i < len(p.lines) && p.lines[i].num == num {
		return i, true
	}
	return i, false
}

// store inserts or replaces the line, in ascending order by number. A
// line whose token sequence is just EOL (an empty program line, e.g.
// deleting "10" by entering "10" with nothing after it) removes the
// existing line instead of storing an empty one.
func (p *program) store(num int, toks []token.Token, text string) {
	i, found := p.find(num)

	if len(toks) <= 1 { // EOL only
		if found {
			p.lines = append(p.lines[:i], p.lines[i+1:]...)
		}
		return
	}

	if found {
		p.lines[i].toks = toks
		p.lines[i].text = text
		return
	}

	p.lines = append(p.lines, line{})
	copy(p.lines[i+1:], p.lines[i:])
	p.lines[i] = line{num: num, toks: toks, text: text}
}

// exists reports whether num is a stored line.
func (p *program) exists(num int) bool {
	_, ok := p.find(num)
	return ok
}

// firstIndex returns the index of the lowest stored line, or -1 if the
// program is empty.
func (p *program) firstIndex() int {
	if len(p.lines) == 0 {
		return -1
	}
	return 0
}

// indexOf returns the stored index for line number num, or -1.
func (p *program) indexOf(num int) int {
	i, ok := p.find(num)
	if !ok {
		return -1
	}
	return i
}

// clear empties the program, for NEW.
func (p *program) clear() {
	p.lines = nil
}

// list renders every line in order the way LIST does: "<num> <text>",
// with text reproduced exactly as it was last stored.
func (p *program) list() []string {
	out := make([]string, 0, len(p.lines))
	for _, l := range p.lines {
		out = append(out, strconv.Itoa(l.num)+" "+l.text)
	}
	return out
}
