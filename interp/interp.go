package interp

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/go-applesoft/applesoft/berrors"
	"github.com/go-applesoft/applesoft/evaluator"
	"github.com/go-applesoft/applesoft/lexer"
	"github.com/go-applesoft/applesoft/screen"
	"github.com/go-applesoft/applesoft/settings"
	"github.com/go-applesoft/applesoft/token"
	"github.com/go-applesoft/applesoft/value"
)

// Interpreter owns every piece of mutable state the core specifies:
// the program store, variable/array tables, FOR and GOSUB stacks, the
// DATA pool, the user-function table, the memory vector and the RNG.
// It drives line dispatch and statement execution, delegating every
// expression to the evaluator package through the Context methods
// below.
type Interpreter struct {
	prog  *program
	vars  *vars
	forSt forStack
	gosub gosubStack
	data  *dataPool
	funcs map[string]userFunc
	mem   *memory
	rng   *rand.Rand

	scr   screen.Screen
	input screen.LineReader
	files FileStore

	// programIndex is the line-table index the outer execution loop
	// will run next. It is pre-advanced to "current+1" as soon as a
	// line is fetched, so flow-control statements only need to
	// overwrite it with their target.
	programIndex int

	curToks   []token.Token
	curLine   int
	curLineIdx int
	pos       int

	jumped     bool // set by GOTO/GOSUB/RETURN/ON/NEXT-looping this statement
	jumpTarget int
	jumpPos    int // token offset to resume at within jumpTarget's line

	running  bool // true while inside RUN, false in immediate mode
	settings *settings.Store
	stopped  bool
}

// FileStore is the SAVE/LOAD persistence capability, implemented by
// the afile package (local text file or HTTP-backed).
type FileStore interface {
	Save(name string, lines []string) error
	Load(name string) ([]string, error)
}

// New creates an Interpreter wired to the given Screen, LineReader and
// FileStore collaborators.
func New(scr screen.Screen, input screen.LineReader, files FileStore) *Interpreter {
	return &Interpreter{
		prog:     newProgram(),
		vars:     newVars(),
		data:     newDataPool(),
		funcs:    map[string]userFunc{},
		mem:      newMemory(),
		rng:      rand.New(rand.NewSource(1)),
		scr:      scr,
		input:    input,
		files:    files,
		settings: settings.NewStore(),
	}
}

// --- evaluator.Context -------------------------------------------------

func (it *Interpreter) GetVariable(name string) value.Value { return it.vars.get(name) }

func (it *Interpreter) GetArrayElement(name string, indices []int) (value.Value, error) {
	return it.vars.getElement(name, indices)
}

// Random implements RND(x): a negative argument reseeds the generator
// deterministically from that argument and returns the first value off
// the newly seeded stream; zero or positive returns the next uniform
// value without touching the seed.
func (it *Interpreter) Random(seedOrNext float64) float64 {
	if seedOrNext < 0 {
		it.rng = rand.New(rand.NewSource(int64(seedOrNext * 1e9)))
	}
	return it.rng.Float64()
}

func (it *Interpreter) Peek(addr int) (byte, error) { return it.mem.peek(addr) }

func (it *Interpreter) CursorColumn() int { return it.scr.Column() }

// CallUserFunction implements FN name(expr): snapshot the bound
// parameter, bind the argument, evaluate the captured body in a fresh
// evaluator call, then restore the parameter — invisible to the
// caller even if the body were somehow to mutate it.
func (it *Interpreter) CallUserFunction(name string, arg value.Value) (value.Value, error) {
	fn, ok := it.funcs[normalize(name)]
	if !ok {
		return value.Value{}, berrors.UndefinedFunctionErr(name)
	}

	saved := it.vars.get(fn.param)
	it.vars.set(fn.param, arg)
	defer it.vars.set(fn.param, saved)

	v, _, err := evaluator.Eval(fn.toks, fn.bodyStart, it)
	return v, err
}

// --- program entry -------------------------------------------------

// StoreLine inserts, replaces, or (given empty text) deletes line num.
func (it *Interpreter) StoreLine(num int, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		it.prog.store(num, nil, "")
		return nil
	}
	toks, err := lexer.Lex(text)
	if err != nil {
		return err
	}
	it.prog.store(num, toks, text)
	return nil
}

// ParseAndStore accepts one raw REPL line. If it begins with digits,
// those are the line number and the remainder is stored; otherwise the
// line is executed immediately.
func (it *Interpreter) ParseAndStore(raw string) error {
	num, rest, ok := splitLineNumber(raw)
	if !ok {
		return it.ExecuteDirect(raw)
	}
	return it.StoreLine(num, rest)
}

func splitLineNumber(raw string) (int, string, bool) {
	trimmed := strings.TrimLeft(raw, " ")
	i := 0
	for i < len(trimmed) && trimmed[i] >= '0' && trimmed[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, "", false
	}
	n, err := strconv.Atoi(trimmed[:i])
	if err != nil {
		return 0, "", false
	}
	return n, trimmed[i:], true
}

// List renders the program the way LIST does.
func (it *Interpreter) List() []string { return it.prog.list() }

// NewProgram resets every piece of run state, empties the program, and
// forgets every DEF FN — unlike RUN, NEW does not leave user functions
// behind for the next program to inherit.
func (it *Interpreter) NewProgram() {
	it.prog.clear()
	it.resetRunState()
	it.funcs = map[string]userFunc{}
}

// resetRunState clears the state RUN and NEW both reset: variables,
// arrays, the FOR/GOSUB stacks, and the DATA pointer. User functions
// are deliberately left alone — DEF FN survives RUN, and only a fresh
// DEF FN line (or NEW) replaces one.
func (it *Interpreter) resetRunState() {
	it.vars.clear()
	it.forSt.clear()
	it.gosub.clear()
	it.data.restore()
}

// --- execution loop ----------------------------------------------------

// Run clears run state, rebuilds the DATA pool, and executes the
// program from its smallest line (or the first line >= *start, if
// start is non-nil).
func (it *Interpreter) Run(start *int) error {
	it.resetRunState()
	it.data.harvest(it.prog)

	if len(it.prog.lines) == 0 {
		return nil
	}

	idx := 0
	if start != nil {
		i, _ := it.prog.find(*start)
		if i >= len(it.prog.lines) {
			return berrors.New(berrors.UndefinedStatement)
		}
		idx = i
	}
	return it.execFrom(idx)
}

// execFrom runs the program starting at line-table index idx, token
// offset 0.
func (it *Interpreter) execFrom(idx int) error { return it.execFromAt(idx, 0) }

// execFromAt is the single flat dispatch loop every RUN, immediate-mode
// GOTO/GOSUB, RETURN, and same-line NEXT funnels through. A jump only
// ever rewrites jumpTarget/jumpPos; this loop is what actually
// advances, so neither a tight GOTO loop nor a tight FOR/NEXT loop
// costs any stack depth.
func (it *Interpreter) execFromAt(idx, startPos int) error {
	it.running = true
	it.stopped = false
	defer func() { it.running = false }()

	pos := startPos
	for idx < len(it.prog.lines) && !it.stopped {
		ln := it.prog.lines[idx]
		it.programIndex = idx + 1
		err := it.runLine(idx, ln.num, ln.toks, pos)
		pos = 0
		if err != nil {
			if isStop(err) {
				if it.scr.Column() != 0 {
					it.scr.Newline()
				}
				it.scr.Write(err.Error())
				it.scr.Newline()
				return nil
			}
			return annotate(err, ln.num)
		}
		if it.jumped {
			it.jumped = false
			idx = it.jumpTarget
			pos = it.jumpPos
			it.jumpPos = 0
			continue
		}
		idx = it.programIndex
	}
	// A program that runs off its last line (or hits END) without a
	// trailing newline still needs the cursor back at column 0 before
	// the REPL prints its next prompt, matching the terminal's own
	// CR-before-prompt behaviour.
	if it.scr.Column() != 0 {
		it.scr.Newline()
	}
	return nil
}

func isStop(err error) bool {
	_, ok := err.(*berrors.StopEvent)
	return ok
}

func annotate(err error, line int) error {
	return fmt.Errorf("%s IN %d", err.Error(), line)
}

// runLine executes every statement on one already-lexed line in order,
// honoring ':' separators and stopping early the moment a jump has
// been requested, abandoning any further statements on the line —
// this is the documented quirk where a GOSUB mid-line discards the
// rest of that physical line once control returns.
func (it *Interpreter) runLine(idx, num int, toks []token.Token, startPos int) error {
	it.curToks = toks
	it.curLine = num
	it.curLineIdx = idx
	it.pos = startPos

	if it.settings.Bool(settings.Tracing) {
		it.scr.Write(fmt.Sprintf("\n#%d", num))
	}

	for it.pos < len(toks) {
		if toks[it.pos].Type == token.EOL {
			return nil
		}
		if toks[it.pos].Type == token.COLON {
			it.pos++
			continue
		}
		if err := it.execStatement(); err != nil {
			return err
		}
		if it.jumped {
			return nil
		}
	}
	return nil
}

// ExecuteDirect runs one immediate-mode line: lexes it, executes its
// statements, and reports domain errors without a line suffix. A
// GOTO/GOSUB issued from immediate mode switches into the normal
// program execution loop from the resolved target.
func (it *Interpreter) ExecuteDirect(raw string) error {
	toks, err := lexer.Lex(raw)
	if err != nil {
		return err
	}

	prevRunning := it.running
	it.running = false
	it.curToks = toks
	it.curLine = 0
	it.curLineIdx = -1
	it.pos = 0

	for it.pos < len(toks) {
		if toks[it.pos].Type == token.EOL {
			it.running = prevRunning
			return nil
		}
		if toks[it.pos].Type == token.COLON {
			it.pos++
			continue
		}
		if err := it.execStatement(); err != nil {
			it.running = prevRunning
			if isStop(err) {
				return nil
			}
			return err
		}
		if it.jumped {
			it.jumped = false
			target, pos := it.jumpTarget, it.jumpPos
			it.jumpPos = 0
			if target == it.curLineIdx {
				// a FOR/NEXT loop packed onto this one immediate-mode
				// line: resume inline rather than switching into the
				// program execution loop.
				it.pos = pos
				continue
			}
			it.running = prevRunning
			return it.execFromAt(target, pos)
		}
	}
	it.running = prevRunning
	return nil
}
