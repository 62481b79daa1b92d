package evaluator

import (
	"math"
	"strings"

	"github.com/go-applesoft/applesoft/berrors"
	"github.com/go-applesoft/applesoft/token"
	"github.com/go-applesoft/applesoft/value"
)

func (e *evaluator) atom() (value.Value, error) {
	t := e.cur()

	switch t.Type {
	case token.NUMBER:
		e.advance()
		return value.Num(t.Num), nil

	case token.STRING:
		e.advance()
		return value.Str(t.Str), nil

	case token.LPAREN:
		e.advance()
		v, err := e.or()
		if err != nil {
			return v, err
		}
		if err := e.expect(token.RPAREN, "')'"); err != nil {
			return value.Value{}, err
		}
		return v, nil

	case token.FN:
		return e.userFunctionCall()

	case token.IDENT:
		return e.variableOrArray()

	default:
		if token.IsFunction(t.Type) {
			return e.builtinCall(t.Type)
		}
	}

	return value.Value{}, berrors.New(berrors.Syntax)
}

func (e *evaluator) userFunctionCall() (value.Value, error) {
	e.advance() // FN
	if !e.at(token.IDENT) {
		return value.Value{}, berrors.SyntaxExpected("FUNCTION NAME")
	}
	name := e.advance().Literal

	if err := e.expect(token.LPAREN, "'('"); err != nil {
		return value.Value{}, err
	}
	arg, err := e.or()
	if err != nil {
		return value.Value{}, err
	}
	if err := e.expect(token.RPAREN, "')'"); err != nil {
		return value.Value{}, err
	}

	return e.ctx.CallUserFunction(name, arg)
}

func (e *evaluator) variableOrArray() (value.Value, error) {
	name := e.advance().Literal

	if !e.at(token.LPAREN) {
		return e.ctx.GetVariable(name), nil
	}

	e.advance() // (
	indices, err := e.indexList()
	if err != nil {
		return value.Value{}, err
	}
	return e.ctx.GetArrayElement(name, indices)
}

// indexList parses a comma-separated list of integer subscripts up to
// the closing ')'.
func (e *evaluator) indexList() ([]int, error) {
	var idx []int
	for {
		v, err := e.or()
		if err != nil {
			return nil, err
		}
		idx = append(idx, int(math.Trunc(v.Num())))
		if e.at(token.COMMA) {
			e.advance()
			continue
		}
		break
	}
	if err := e.expect(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	return idx, nil
}

// args parses the parenthesized argument list after an already-consumed
// function name and requires between min and max arguments (MID$ takes
// 2 or 3).
func (e *evaluator) args(min, max int) ([]value.Value, error) {
	if err := e.expect(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	var out []value.Value
	if !e.at(token.RPAREN) {
		for {
			v, err := e.or()
			if err != nil {
				return nil, err
			}
			out = append(out, v)
			if e.at(token.COMMA) {
				e.advance()
				continue
			}
			break
		}
	}
	if err := e.expect(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	if len(out) < min || len(out) > max {
		return nil, berrors.New(berrors.Syntax)
	}
	return out, nil
}

func (e *evaluator) builtinCall(tt token.Type) (value.Value, error) {
	e.advance()

	switch tt {
	case token.ABS, token.INT, token.SQR, token.SGN, token.SIN, token.COS,
		token.TAN, token.ATN, token.LOG, token.EXP:
		a, err := e.args(1, 1)
		if err != nil {
			return value.Value{}, err
		}
		return numericBuiltin(tt, a[0].Num())

	case token.RND:
		a, err := e.args(1, 1)
		if err != nil {
			return value.Value{}, err
		}
		return value.Num(e.ctx.Random(a[0].Num())), nil

	case token.PEEK:
		a, err := e.args(1, 1)
		if err != nil {
			return value.Value{}, err
		}
		b, err := e.ctx.Peek(int(math.Trunc(a[0].Num())))
		if err != nil {
			return value.Value{}, err
		}
		return value.Num(float64(b)), nil

	case token.POS:
		if _, err := e.args(1, 1); err != nil { // argument ignored
			return value.Value{}, err
		}
		return value.Num(float64(e.ctx.CursorColumn())), nil

	case token.LEN:
		a, err := e.args(1, 1)
		if err != nil {
			return value.Value{}, err
		}
		return value.Num(float64(len([]rune(a[0].Str())))), nil

	case token.VAL:
		a, err := e.args(1, 1)
		if err != nil {
			return value.Value{}, err
		}
		return value.Num(value.ParseNumber(a[0].Str())), nil

	case token.STRF:
		a, err := e.args(1, 1)
		if err != nil {
			return value.Value{}, err
		}
		return value.Str(value.StrFormatNumber(a[0].Num())), nil

	case token.CHRF:
		a, err := e.args(1, 1)
		if err != nil {
			return value.Value{}, err
		}
		return value.Str(string(rune(int(math.Trunc(a[0].Num()))))), nil

	case token.ASC:
		a, err := e.args(1, 1)
		if err != nil {
			return value.Value{}, err
		}
		r := []rune(a[0].Str())
		if len(r) == 0 {
			return value.Value{}, berrors.New(berrors.IllegalQuantity)
		}
		return value.Num(float64(r[0])), nil

	case token.LEFTF:
		a, err := e.args(2, 2)
		if err != nil {
			return value.Value{}, err
		}
		s := []rune(a[0].Str())
		n := clampLen(int(math.Trunc(a[1].Num())), len(s))
		return value.Str(string(s[:n])), nil

	case token.RIGHTF:
		a, err := e.args(2, 2)
		if err != nil {
			return value.Value{}, err
		}
		s := []rune(a[0].Str())
		n := clampLen(int(math.Trunc(a[1].Num())), len(s))
		return value.Str(string(s[len(s)-n:])), nil

	case token.MIDF:
		a, err := e.args(2, 3)
		if err != nil {
			return value.Value{}, err
		}
		s := []rune(a[0].Str())
		start := int(math.Trunc(a[1].Num())) - 1
		if start < 0 {
			start = 0
		}
		if start > len(s) {
			start = len(s)
		}
		length := len(s) - start
		if len(a) == 3 {
			length = clampLen(int(math.Trunc(a[2].Num())), len(s)-start)
		}
		return value.Str(string(s[start : start+length])), nil

	case token.TAB:
		a, err := e.args(1, 1)
		if err != nil {
			return value.Value{}, err
		}
		target := int(math.Trunc(a[0].Num()))
		col := e.ctx.CursorColumn()
		if target <= col {
			return value.Str(""), nil
		}
		return value.Str(strings.Repeat(" ", target-col)), nil

	case token.SPC:
		a, err := e.args(1, 1)
		if err != nil {
			return value.Value{}, err
		}
		n := int(math.Trunc(a[0].Num()))
		if n < 0 {
			n = 0
		}
		return value.Str(strings.Repeat(" ", n)), nil
	}

	return value.Value{}, berrors.New(berrors.Syntax)
}

func clampLen(n, max int) int {
	if n < 0 {
		n = 0
	}
	if n > max {
		n = max
	}
	return n
}

func numericBuiltin(tt token.Type, x float64) (value.Value, error) {
	switch tt {
	case token.ABS:
		return value.Num(math.Abs(x)), nil
	case token.INT:
		return value.Num(math.Floor(x)), nil
	case token.SQR:
		if x < 0 {
			return value.Value{}, berrors.New(berrors.IllegalQuantity)
		}
		return value.Num(math.Sqrt(x)), nil
	case token.SGN:
		switch {
		case x > 0:
			return value.Num(1), nil
		case x < 0:
			return value.Num(-1), nil
		default:
			return value.Num(0), nil
		}
	case token.SIN:
		return value.Num(math.Sin(x)), nil
	case token.COS:
		return value.Num(math.Cos(x)), nil
	case token.TAN:
		return value.Num(math.Tan(x)), nil
	case token.ATN:
		return value.Num(math.Atan(x)), nil
	case token.LOG:
		if x <= 0 {
			return value.Value{}, berrors.New(berrors.IllegalQuantity)
		}
		return value.Num(math.Log(x)), nil
	case token.EXP:
		return value.Num(math.Exp(x)), nil
	}
	return value.Value{}, berrors.New(berrors.Syntax)
}
