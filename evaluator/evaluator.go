// Package evaluator implements the recursive-descent expression evaluator
// over a token sequence at a caller-chosen offset. It is pure with
// respect to tokens; variable, array, RND, PEEK, POS, and user-function
// references are delegated to a Context supplied by the interpreter, so
// this package never imports the interpreter and stays unit-testable
// behind a mock Context.
package evaluator

import (
	"math"

	"github.com/go-applesoft/applesoft/berrors"
	"github.com/go-applesoft/applesoft/token"
	"github.com/go-applesoft/applesoft/value"
)

// Context is everything the evaluator needs from the interpreter to
// resolve the handful of state-dependent constructs in an expression.
type Context interface {
	GetVariable(name string) value.Value
	GetArrayElement(name string, indices []int) (value.Value, error)
	Random(seedOrNext float64) float64
	Peek(addr int) (byte, error)
	CursorColumn() int
	CallUserFunction(name string, arg value.Value) (value.Value, error)
}

// Eval evaluates one expression starting at toks[start] and returns its
// value along with the offset of the first unconsumed token.
func Eval(toks []token.Token, start int, ctx Context) (value.Value, int, error) {
	e := &evaluator{toks: toks, pos: start, ctx: ctx}
	v, err := e.or()
	if err != nil {
		return value.Value{}, e.pos, err
	}
	return v, e.pos, nil
}

type evaluator struct {
	toks []token.Token
	pos  int
	ctx  Context
}

func (e *evaluator) cur() token.Token {
	if e.pos >= len(e.toks) {
		return token.Token{Type: token.EOL}
	}
	return e.toks[e.pos]
}

func (e *evaluator) advance() token.Token {
	t := e.cur()
	if e.pos < len(e.toks) {
		e.pos++
	}
	return t
}

func (e *evaluator) at(tt token.Type) bool { return e.cur().Type == tt }

func (e *evaluator) expect(tt token.Type, what string) error {
	if !e.at(tt) {
		return berrors.SyntaxExpected(what)
	}
	e.advance()
	return nil
}

// --- precedence climb, lowest to highest -----------------------------

func (e *evaluator) or() (value.Value, error) {
	left, err := e.and()
	if err != nil {
		return left, err
	}
	for e.at(token.OR) {
		e.advance()
		right, err := e.and()
		if err != nil {
			return right, err
		}
		left = boolValue(truthy(left) || truthy(right))
	}
	return left, nil
}

func (e *evaluator) and() (value.Value, error) {
	left, err := e.not()
	if err != nil {
		return left, err
	}
	for e.at(token.AND) {
		e.advance()
		right, err := e.not()
		if err != nil {
			return right, err
		}
		left = boolValue(truthy(left) && truthy(right))
	}
	return left, nil
}

func (e *evaluator) not() (value.Value, error) {
	if e.at(token.NOT) {
		e.advance()
		operand, err := e.not()
		if err != nil {
			return operand, err
		}
		return boolValue(!truthy(operand)), nil
	}
	return e.comparison()
}

func (e *evaluator) comparison() (value.Value, error) {
	left, err := e.add()
	if err != nil {
		return left, err
	}
	for {
		op := e.cur().Type
		switch op {
		case token.EQ, token.NEQ, token.LT, token.GT, token.LE, token.GE:
			e.advance()
			right, err := e.add()
			if err != nil {
				return right, err
			}
			left, err = compareValues(left, op, right)
			if err != nil {
				return left, err
			}
		default:
			return left, nil
		}
	}
}

func (e *evaluator) add() (value.Value, error) {
	left, err := e.mul()
	if err != nil {
		return left, err
	}
	for {
		op := e.cur().Type
		if op != token.PLUS && op != token.MINUS {
			return left, nil
		}
		e.advance()
		right, err := e.mul()
		if err != nil {
			return right, err
		}
		left, err = addOrSub(left, op, right)
		if err != nil {
			return left, err
		}
	}
}

func (e *evaluator) mul() (value.Value, error) {
	left, err := e.unary()
	if err != nil {
		return left, err
	}
	for {
		op := e.cur().Type
		if op != token.ASTERISK && op != token.SLASH {
			return left, nil
		}
		e.advance()
		right, err := e.unary()
		if err != nil {
			return right, err
		}
		if err := requireNumeric(left, right); err != nil {
			return value.Value{}, err
		}
		if op == token.ASTERISK {
			left = value.Num(left.Num() * right.Num())
		} else {
			if right.Num() == 0 {
				return value.Value{}, berrors.New(berrors.DivisionByZero)
			}
			left = value.Num(left.Num() / right.Num())
		}
	}
}

func (e *evaluator) unary() (value.Value, error) {
	switch e.cur().Type {
	case token.MINUS:
		e.advance()
		v, err := e.unary()
		if err != nil {
			return v, err
		}
		if err := requireNumeric(v); err != nil {
			return value.Value{}, err
		}
		return value.Num(-v.Num()), nil
	case token.PLUS:
		e.advance()
		return e.unary()
	default:
		return e.pow()
	}
}

func (e *evaluator) pow() (value.Value, error) {
	left, err := e.atom()
	if err != nil {
		return left, err
	}
	if e.at(token.CARET) {
		e.advance()
		// right-associative: the right operand is reparsed at the
		// unary level, so 2^3^2 groups as 2^(3^2), and 2^-2 parses.
		right, err := e.unary()
		if err != nil {
			return right, err
		}
		if err := requireNumeric(left, right); err != nil {
			return value.Value{}, err
		}
		left = value.Num(math.Pow(left.Num(), right.Num()))
	}
	return left, nil
}

// requireNumeric rejects string operands for the arithmetic operators
// that, unlike PLUS/MINUS and comparison, have no type-aware meaning
// for strings at all.
func requireNumeric(vs ...value.Value) error {
	for _, v := range vs {
		if v.IsString() {
			return berrors.New(berrors.TypeMismatch)
		}
	}
	return nil
}

func truthy(v value.Value) bool { return v.Num() != 0 }

func boolValue(b bool) value.Value {
	if b {
		return value.Num(1)
	}
	return value.Num(0)
}

func compareValues(left value.Value, op token.Type, right value.Value) (value.Value, error) {
	var cmp int
	if left.IsString() && right.IsString() {
		cmp = value.Compare(left, right)
	} else if !left.IsString() && !right.IsString() {
		cmp = value.Compare(left, right)
	} else {
		return value.Value{}, berrors.New(berrors.TypeMismatch)
	}

	switch op {
	case token.EQ:
		return boolValue(cmp == 0), nil
	case token.NEQ:
		return boolValue(cmp != 0), nil
	case token.LT:
		return boolValue(cmp < 0), nil
	case token.GT:
		return boolValue(cmp > 0), nil
	case token.LE:
		return boolValue(cmp <= 0), nil
	case token.GE:
		return boolValue(cmp >= 0), nil
	}
	return value.Value{}, berrors.New(berrors.Syntax)
}

func addOrSub(left value.Value, op token.Type, right value.Value) (value.Value, error) {
	if op == token.MINUS {
		if left.IsString() || right.IsString() {
			return value.Value{}, berrors.New(berrors.TypeMismatch)
		}
		return value.Num(left.Num() - right.Num()), nil
	}

	// PLUS: any string operand means concatenation, using PRINT
	// formatting for whichever side is still numeric.
	if left.IsString() || right.IsString() {
		return value.Str(sideAsString(left) + sideAsString(right)), nil
	}
	return value.Num(left.Num() + right.Num()), nil
}

func sideAsString(v value.Value) string {
	if v.IsString() {
		return v.Str()
	}
	return value.FormatNumber(v.Num())
}
