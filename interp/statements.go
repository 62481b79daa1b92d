package interp

import (
	"math"
	"strings"

	"github.com/go-applesoft/applesoft/berrors"
	"github.com/go-applesoft/applesoft/evaluator"
	"github.com/go-applesoft/applesoft/settings"
	"github.com/go-applesoft/applesoft/token"
	"github.com/go-applesoft/applesoft/value"
)

func (it *Interpreter) cur() token.Token {
	if it.pos >= len(it.curToks) {
		return token.Token{Type: token.EOL}
	}
	return it.curToks[it.pos]
}

func (it *Interpreter) advance() token.Token {
	t := it.cur()
	if it.pos < len(it.curToks) {
		it.pos++
	}
	return t
}

func (it *Interpreter) at(tt token.Type) bool { return it.cur().Type == tt }

// eval evaluates one expression starting at the interpreter's current
// position and leaves pos at the first unconsumed token.
func (it *Interpreter) eval() (value.Value, error) {
	v, pos, err := evaluator.Eval(it.curToks, it.pos, it)
	it.pos = pos
	return v, err
}

func (it *Interpreter) evalInt() (int, error) {
	v, err := it.eval()
	if err != nil {
		return 0, err
	}
	return int(math.Trunc(v.Num())), nil
}

// skipToStatementEnd advances past everything up to (not including) the
// next ':' or end of line.
func (it *Interpreter) skipToStatementEnd() {
	for !it.at(token.COLON) && !it.at(token.EOL) {
		it.advance()
	}
}

func (it *Interpreter) skipToEOL() {
	for !it.at(token.EOL) {
		it.advance()
	}
}

// execStatement dispatches on the current token and runs exactly one
// statement, leaving pos positioned at the following ':' or EOL.
func (it *Interpreter) execStatement() error {
	t := it.cur()

	switch t.Type {
	case token.PRINT:
		it.advance()
		return it.execPrint()
	case token.INPUT:
		it.advance()
		return it.execInput()
	case token.LET:
		it.advance()
		return it.execAssignment()
	case token.IF:
		it.advance()
		return it.execIf()
	case token.GOTO:
		it.advance()
		n, err := it.evalInt()
		if err != nil {
			return err
		}
		return it.doJump(n)
	case token.GOSUB:
		it.advance()
		n, err := it.evalInt()
		if err != nil {
			return err
		}
		return it.doGosub(n)
	case token.RETURN:
		it.advance()
		return it.doReturn()
	case token.FOR:
		it.advance()
		return it.execFor()
	case token.NEXT:
		it.advance()
		return it.execNext()
	case token.DIM:
		it.advance()
		return it.execDim()
	case token.DATA:
		it.skipToStatementEnd()
		return nil
	case token.READ:
		it.advance()
		return it.execRead()
	case token.RESTORE:
		it.advance()
		return it.execRestore()
	case token.DEF:
		it.advance()
		return it.execDefFn()
	case token.ON:
		it.advance()
		return it.execOn()
	case token.HOME:
		it.advance()
		it.scr.Cls()
		return nil
	case token.HTAB:
		it.advance()
		n, err := it.evalInt()
		if err != nil {
			return err
		}
		it.scr.HTab(n)
		return nil
	case token.VTAB:
		it.advance()
		n, err := it.evalInt()
		if err != nil {
			return err
		}
		it.scr.VTab(n)
		return nil
	case token.POKE:
		it.advance()
		return it.execPoke()
	case token.CALL:
		it.advance()
		_, err := it.eval() // address evaluated, result discarded
		return err
	case token.RUN:
		it.advance()
		return it.execRun()
	case token.LIST:
		it.advance()
		it.skipToEOL()
		for _, s := range it.List() {
			it.scr.Write(s)
			it.scr.Newline()
		}
		return nil
	case token.NEW:
		it.advance()
		it.NewProgram()
		return nil
	case token.SAVE:
		it.advance()
		return it.execSave()
	case token.LOAD:
		it.advance()
		return it.execLoad()
	case token.DEL:
		it.advance()
		return it.execDel()
	case token.END:
		it.advance()
		it.stopped = true
		it.skipToEOL()
		return nil
	case token.STOP:
		it.advance()
		it.stopped = true
		return &berrors.StopEvent{Line: it.curLine}
	case token.GET:
		return berrors.New(berrors.Syntax)
	case token.TRON:
		it.advance()
		it.settings.Set(settings.Tracing, true)
		return nil
	case token.TROFF:
		it.advance()
		it.settings.Set(settings.Tracing, false)
		return nil
	case token.IDENT:
		return it.execAssignment()
	default:
		return berrors.New(berrors.Syntax)
	}
}

// doJump and doGosub/doReturn just record the requested target for the
// execution loop; they never run anything themselves.
func (it *Interpreter) doJump(target int) error {
	idx, ok := it.prog.find(target)
	if !ok {
		return berrors.New(berrors.UndefinedStatement)
	}
	it.jumpTarget = idx
	it.jumpPos = 0
	it.jumped = true
	return nil
}

func (it *Interpreter) doGosub(target int) error {
	idx, ok := it.prog.find(target)
	if !ok {
		return berrors.New(berrors.UndefinedStatement)
	}
	it.gosub.push(retPoint{lineIdx: it.programIndex})
	it.jumpTarget = idx
	it.jumpPos = 0
	it.jumped = true
	return nil
}

func (it *Interpreter) doReturn() error {
	p, ok := it.gosub.pop()
	if !ok {
		return berrors.New(berrors.ReturnWithoutGosub)
	}
	it.jumpTarget = p.lineIdx
	it.jumpPos = 0
	it.jumped = true
	return nil
}

// --- PRINT / INPUT -----------------------------------------------------

func (it *Interpreter) execPrint() error {
	trailingSep := false
	for !it.at(token.EOL) && !it.at(token.COLON) {
		trailingSep = false

		switch it.cur().Type {
		case token.COMMA:
			it.advance()
			it.padToZone()
			trailingSep = true
			continue
		case token.SEMICOLON:
			it.advance()
			trailingSep = true
			continue
		}

		v, err := it.eval()
		if err != nil {
			return err
		}
		it.scr.Write(v.Print())
	}
	if !trailingSep {
		it.scr.Newline()
	}
	return nil
}

// padToZone writes spaces up to the next 16-column PRINT zone.
func (it *Interpreter) padToZone() {
	col := it.scr.Column()
	next := ((col / 16) + 1) * 16
	it.scr.Write(strings.Repeat(" ", next-col))
}

func (it *Interpreter) execInput() error {
	prompt := ""
	if it.at(token.STRING) {
		prompt = it.advance().Str
		if it.at(token.SEMICOLON) {
			it.advance()
			prompt += "? "
		} else if it.at(token.COMMA) {
			it.advance()
		}
	}

	var names []string
	for {
		if !it.at(token.IDENT) {
			return berrors.SyntaxExpected("A VARIABLE")
		}
		name := it.advance().Literal
		if it.at(token.LPAREN) {
			return berrors.New(berrors.Syntax) // array INPUT targets unsupported
		}
		names = append(names, name)
		if it.at(token.COMMA) {
			it.advance()
			continue
		}
		break
	}

	values, err := it.readValues(prompt, len(names))
	if err != nil {
		return err
	}
	for i, name := range names {
		it.vars.set(name, coerceInput(name, values[i]))
	}
	return nil
}

// readValues reads one line, splits on commas, and re-prompts with
// "?? " until it has collected want values.
func (it *Interpreter) readValues(prompt string, want int) ([]string, error) {
	var got []string
	p := prompt
	for len(got) < want {
		line, err := it.input.ReadLine(p)
		if err != nil {
			return nil, &berrors.HostError{Detail: err.Error()}
		}
		got = append(got, strings.Split(line, ",")...)
		p = "?? "
	}
	return got[:want], nil
}

func coerceInput(name, raw string) value.Value {
	raw = strings.TrimSpace(raw)
	if strings.HasSuffix(normalize(name), "$") {
		return value.Str(raw)
	}
	return value.Num(value.ParseNumber(raw))
}

// --- assignment ---------------------------------------------------------

func (it *Interpreter) execAssignment() error {
	if !it.at(token.IDENT) {
		return berrors.SyntaxExpected("A VARIABLE")
	}
	name := it.advance().Literal

	if it.at(token.LPAREN) {
		it.advance()
		indices, err := it.evalIndexList()
		if err != nil {
			return err
		}
		if err := it.expectEq(); err != nil {
			return err
		}
		v, err := it.eval()
		if err != nil {
			return err
		}
		return it.vars.setElement(name, indices, v)
	}

	if err := it.expectEq(); err != nil {
		return err
	}
	v, err := it.eval()
	if err != nil {
		return err
	}
	it.vars.set(name, v)
	return nil
}

func (it *Interpreter) expectEq() error {
	if !it.at(token.EQ) {
		return berrors.SyntaxExpected("'='")
	}
	it.advance()
	return nil
}

func (it *Interpreter) evalIndexList() ([]int, error) {
	var idx []int
	for {
		v, err := it.eval()
		if err != nil {
			return nil, err
		}
		idx = append(idx, int(math.Trunc(v.Num())))
		if it.at(token.COMMA) {
			it.advance()
			continue
		}
		break
	}
	if !it.at(token.RPAREN) {
		return nil, berrors.SyntaxExpected("')'")
	}
	it.advance()
	return idx, nil
}

// --- IF ------------------------------------------------------------

func (it *Interpreter) execIf() error {
	cond, err := it.eval()
	if err != nil {
		return err
	}
	if !it.at(token.THEN) {
		return berrors.SyntaxExpected("'THEN'")
	}
	it.advance()

	if cond.Num() == 0 {
		it.skipToEOL()
		return nil
	}

	if it.at(token.NUMBER) {
		n := int(math.Trunc(it.advance().Num))
		return it.doJump(n)
	}
	return nil
}

// --- FOR / NEXT ----------------------------------------------------

func (it *Interpreter) execFor() error {
	if !it.at(token.IDENT) {
		return berrors.SyntaxExpected("A VARIABLE")
	}
	name := it.advance().Literal
	if err := it.expectEq(); err != nil {
		return err
	}
	start, err := it.eval()
	if err != nil {
		return err
	}
	if !it.at(token.TO) {
		return berrors.SyntaxExpected("'TO'")
	}
	it.advance()
	limit, err := it.eval()
	if err != nil {
		return err
	}
	step := 1.0
	if it.at(token.STEP) {
		it.advance()
		s, err := it.eval()
		if err != nil {
			return err
		}
		step = s.Num()
	}

	it.vars.set(name, start)

	// Posttest loops still need a pretest for the zero-iteration case:
	// if the starting value already violates the stop condition for
	// this step's direction, the body never runs at all.
	if (step > 0 && start.Num() > limit.Num()) || (step < 0 && start.Num() < limit.Num()) {
		return it.skipForLoop()
	}

	it.forSt.push(forFrame{
		varName:  normalize(name),
		limit:    limit.Num(),
		step:     step,
		lineIdx:  it.curLineIdx,
		tokenPos: it.pos,
	})
	return nil
}

// skipForLoop is used when a FOR's initial value already satisfies the
// stop condition: it scans forward, tracking nested FOR/NEXT depth,
// for the NEXT that closes this loop, and jumps execution to just past
// it without ever pushing a frame or running the body.
func (it *Interpreter) skipForLoop() error {
	depth := 0
	idx := it.curLineIdx
	toks := it.curToks
	pos := it.pos

	for {
		for pos < len(toks) {
			switch toks[pos].Type {
			case token.FOR:
				depth++
			case token.NEXT:
				if depth == 0 {
					pos++
					if pos < len(toks) && toks[pos].Type == token.IDENT {
						pos++
					}
					it.jumpTarget = idx
					it.jumpPos = pos
					it.jumped = true
					return nil
				}
				depth--
			}
			pos++
		}
		idx++
		if idx >= len(it.prog.lines) {
			return berrors.New(berrors.NextWithoutFor)
		}
		toks = it.prog.lines[idx].toks
		pos = 0
	}
}

func (it *Interpreter) execNext() error {
	name := ""
	if it.at(token.IDENT) {
		name = normalize(it.advance().Literal)
	}

	var i int
	if name != "" {
		i = it.forSt.findTop(name)
		if i < 0 {
			return berrors.New(berrors.NextWithoutFor)
		}
	} else {
		_, ok := it.forSt.top()
		if !ok {
			return berrors.New(berrors.NextWithoutFor)
		}
		i = len(it.forSt.frames) - 1
	}

	frame := it.forSt.frames[i]
	cur := it.vars.get(frame.varName).Num() + frame.step
	it.vars.set(frame.varName, value.Num(cur))

	done := (frame.step > 0 && cur > frame.limit) || (frame.step < 0 && cur < frame.limit)
	if done {
		it.forSt.dropTo(i)
		return nil
	}

	it.forSt.dropTo(i + 1)
	it.jumpTarget = frame.lineIdx
	it.jumpPos = frame.tokenPos
	it.jumped = true
	return nil
}

// --- DIM -------------------------------------------------------------

func (it *Interpreter) execDim() error {
	for {
		if !it.at(token.IDENT) {
			return berrors.SyntaxExpected("A VARIABLE")
		}
		name := it.advance().Literal
		if !it.at(token.LPAREN) {
			return berrors.SyntaxExpected("'('")
		}
		it.advance()
		dims, err := it.evalIndexList()
		if err != nil {
			return err
		}
		if err := it.vars.dim(name, dims); err != nil {
			return err
		}
		if it.at(token.COMMA) {
			it.advance()
			continue
		}
		break
	}
	return nil
}

// --- READ / RESTORE --------------------------------------------------

func (it *Interpreter) execRead() error {
	for {
		if !it.at(token.IDENT) {
			return berrors.SyntaxExpected("A VARIABLE")
		}
		name := it.advance().Literal

		var indices []int
		if it.at(token.LPAREN) {
			it.advance()
			idx, err := it.evalIndexList()
			if err != nil {
				return err
			}
			indices = idx
		}

		item, err := it.data.next()
		if err != nil {
			return err
		}
		v := coerceInput(name, item.Str())

		if indices != nil {
			if err := it.vars.setElement(name, indices, v); err != nil {
				return err
			}
		} else {
			it.vars.set(name, v)
		}

		if it.at(token.COMMA) {
			it.advance()
			continue
		}
		break
	}
	return nil
}

func (it *Interpreter) execRestore() error {
	if it.at(token.NUMBER) {
		n := int(math.Trunc(it.advance().Num))
		it.data.restoreTo(n)
		return nil
	}
	it.data.restore()
	return nil
}

// --- DEF FN ----------------------------------------------------------

func (it *Interpreter) execDefFn() error {
	if !it.at(token.FN) {
		return berrors.SyntaxExpected("'FN'")
	}
	it.advance()
	if !it.at(token.IDENT) {
		return berrors.SyntaxExpected("A FUNCTION NAME")
	}
	name := it.advance().Literal

	if !it.at(token.LPAREN) {
		return berrors.SyntaxExpected("'('")
	}
	it.advance()
	if !it.at(token.IDENT) {
		return berrors.SyntaxExpected("A PARAMETER NAME")
	}
	param := it.advance().Literal
	if !it.at(token.RPAREN) {
		return berrors.SyntaxExpected("')'")
	}
	it.advance()
	if err := it.expectEq(); err != nil {
		return err
	}

	bodyStart := it.pos
	it.skipToStatementEnd()

	it.funcs[normalize(name)] = userFunc{
		param:     param,
		toks:      it.curToks,
		bodyStart: bodyStart,
	}
	return nil
}

// --- ON GOTO/GOSUB -----------------------------------------------------

func (it *Interpreter) execOn() error {
	v, err := it.eval()
	if err != nil {
		return err
	}
	i := int(math.Trunc(v.Num()))

	isGosub := false
	switch it.cur().Type {
	case token.GOTO:
		it.advance()
	case token.GOSUB:
		isGosub = true
		it.advance()
	default:
		return berrors.SyntaxExpected("'GOTO' OR 'GOSUB'")
	}

	var targets []int
	for {
		n, err := it.evalInt()
		if err != nil {
			return err
		}
		targets = append(targets, n)
		if it.at(token.COMMA) {
			it.advance()
			continue
		}
		break
	}

	if i < 1 || i > len(targets) {
		return nil // out of range: fall through to next statement
	}
	if isGosub {
		return it.doGosub(targets[i-1])
	}
	return it.doJump(targets[i-1])
}

// --- POKE --------------------------------------------------------------

func (it *Interpreter) execPoke() error {
	addr, err := it.evalInt()
	if err != nil {
		return err
	}
	if !it.at(token.COMMA) {
		return berrors.SyntaxExpected("','")
	}
	it.advance()
	val, err := it.evalInt()
	if err != nil {
		return err
	}
	return it.mem.poke(addr, val)
}

// --- RUN / SAVE / LOAD / DEL --------------------------------------------

func (it *Interpreter) execRun() error {
	var start *int
	if it.at(token.NUMBER) {
		n := int(math.Trunc(it.advance().Num))
		start = &n
	}
	it.skipToEOL()
	err := it.Run(start)
	it.jumped = true
	it.jumpTarget = len(it.prog.lines)
	return err
}

func (it *Interpreter) fileName() (string, error) {
	if !it.at(token.IDENT) && !it.at(token.STRING) {
		return "", berrors.SyntaxExpected("A FILE NAME")
	}
	t := it.advance()
	if t.Type == token.STRING {
		return t.Str, nil
	}
	return t.Literal, nil
}

func (it *Interpreter) execSave() error {
	name, err := it.fileName()
	if err != nil {
		return err
	}
	return it.files.Save(name, it.List())
}

func (it *Interpreter) execLoad() error {
	name, err := it.fileName()
	if err != nil {
		return err
	}
	lines, err := it.files.Load(name)
	if err != nil {
		return err
	}
	it.NewProgram()
	for _, ln := range lines {
		if err := it.ParseAndStore(ln); err != nil {
			return err
		}
	}
	return nil
}

func (it *Interpreter) execDel() error {
	from, err := it.evalInt()
	if err != nil {
		return err
	}
	to := from
	if it.at(token.MINUS) {
		it.advance()
		to, err = it.evalInt()
		if err != nil {
			return err
		}
	}
	for n := from; n <= to; n++ {
		it.prog.store(n, nil, "")
	}
	return nil
}
