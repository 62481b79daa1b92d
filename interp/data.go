package interp

import (
	"github.com/go-applesoft/applesoft/berrors"
	"github.com/go-applesoft/applesoft/token"
	"github.com/go-applesoft/applesoft/value"
)

// dataPool is the flat sequence of DATA literals harvested from the
// whole program at RUN, consumed in order by READ and rewound by
// RESTORE. Harvesting up front (rather than seeking DATA statements
// lazily during READ) keeps RESTORE <line> a simple index lookup.
type dataPool struct {
	items []value.Value
	// lineOf[i] is the program line number the i'th item came from, so
	// RESTORE <line> can find the first item contributed by that line.
	lineOf []int
	pos    int
}

func newDataPool() *dataPool {
	return &dataPool{}
}

// harvest walks every stored program line looking for DATA statements
// and appends their literals in program order.
func (d *dataPool) harvest(p *program) {
	d.items = nil
	d.lineOf = nil
	for _, ln := range p.lines {
		i := 0
		for i < len(ln.toks) {
			if ln.toks[i].Type == token.DATA {
				i++
				i = d.readItems(ln.toks, i, ln.num)
				continue
			}
			i++
		}
	}
	d.pos = 0
}

// readItems appends the comma-separated literals of one DATA statement
// starting at i, returning the index just past them (the statement's
// terminating ':' or EOL).
func (d *dataPool) readItems(toks []token.Token, i int, lineNum int) int {
	for i < len(toks) {
		t := toks[i]
		switch t.Type {
		case token.EOL, token.COLON:
			return i
		case token.STRING:
			d.items = append(d.items, value.Str(t.Str))
			d.lineOf = append(d.lineOf, lineNum)
			i++
		case token.COMMA:
			i++
		default:
			// unquoted DATA items are taken as a literal run of tokens
			// up to the next comma/colon/EOL, concatenated verbatim.
			lit := ""
			for i < len(toks) && toks[i].Type != token.COMMA && toks[i].Type != token.COLON && toks[i].Type != token.EOL {
				lit += toks[i].Literal
				i++
			}
			d.items = append(d.items, value.Str(lit))
			d.lineOf = append(d.lineOf, lineNum)
		}
	}
	return i
}

func (d *dataPool) next() (value.Value, error) {
	if d.pos >= len(d.items) {
		return value.Value{}, berrors.New(berrors.OutOfData)
	}
	v := d.items[d.pos]
	d.pos++
	return v, nil
}

func (d *dataPool) restore() { d.pos = 0 }

// restoreTo rewinds to the first DATA item contributed by lineNum or
// later; if lineNum contributed none, resumes at the next item after
// it in program order.
func (d *dataPool) restoreTo(lineNum int) {
	for i, ln := range d.lineOf {
		if ln >= lineNum {
			d.pos = i
			return
		}
	}
	d.pos = len(d.items)
}
