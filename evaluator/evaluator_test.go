package evaluator

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-applesoft/applesoft/berrors"
	"github.com/go-applesoft/applesoft/lexer"
	"github.com/go-applesoft/applesoft/token"
	"github.com/go-applesoft/applesoft/value"
)

// mockContext is a hand-written stand-in for the interpreter, letting
// the evaluator be tested without importing interp.
type mockContext struct {
	vars       map[string]value.Value
	arrays     map[string]map[string]value.Value
	peekBytes  map[int]byte
	cursorCol  int
	randomNext float64
	lastSeed   float64
	funcs      map[string]func(value.Value) (value.Value, error)
}

func newMockContext() *mockContext {
	return &mockContext{
		vars:      map[string]value.Value{},
		arrays:    map[string]map[string]value.Value{},
		peekBytes: map[int]byte{},
		funcs:     map[string]func(value.Value) (value.Value, error){},
	}
}

func (m *mockContext) GetVariable(name string) value.Value { return m.vars[name] }

func (m *mockContext) GetArrayElement(name string, indices []int) (value.Value, error) {
	key := ""
	for _, i := range indices {
		key += "," + strconv.Itoa(i)
	}
	tbl, ok := m.arrays[name]
	if !ok {
		return value.Value{}, berrors.New(berrors.BadSubscript)
	}
	v, ok := tbl[key]
	if !ok {
		return value.Value{}, berrors.New(berrors.BadSubscript)
	}
	return v, nil
}

func (m *mockContext) Random(seedOrNext float64) float64 {
	m.lastSeed = seedOrNext
	return m.randomNext
}

func (m *mockContext) Peek(addr int) (byte, error) { return m.peekBytes[addr], nil }

func (m *mockContext) CursorColumn() int { return m.cursorCol }

func (m *mockContext) CallUserFunction(name string, arg value.Value) (value.Value, error) {
	fn, ok := m.funcs[name]
	if !ok {
		return value.Value{}, berrors.UndefinedFunctionErr(name)
	}
	return fn(arg)
}

func evalLine(t *testing.T, src string, ctx Context) (value.Value, int) {
	t.Helper()
	toks, err := lexer.Lex(src)
	require.NoError(t, err)
	v, pos, err := Eval(toks, 0, ctx)
	require.NoError(t, err)
	return v, pos
}

func TestArithmeticPrecedence(t *testing.T) {
	v, _ := evalLine(t, "2+3*4", newMockContext())
	assert.Equal(t, float64(14), v.Num())
}

func TestRightAssociativePower(t *testing.T) {
	v, _ := evalLine(t, "2^3^2", newMockContext())
	assert.Equal(t, float64(512), v.Num())
}

func TestUnaryMinusBindsTighterThanAdd(t *testing.T) {
	v, _ := evalLine(t, "5+-2", newMockContext())
	assert.Equal(t, float64(3), v.Num())
}

func TestPowerOfNegativeUnary(t *testing.T) {
	v, _ := evalLine(t, "2^-2", newMockContext())
	assert.Equal(t, float64(0.25), v.Num())
}

func TestStringConcatenation(t *testing.T) {
	v, _ := evalLine(t, `"AB"+"CD"`, newMockContext())
	assert.Equal(t, "ABCD", v.Str())
}

func TestNumericAndStringConcatenation(t *testing.T) {
	v, _ := evalLine(t, `"X="+STR$(5)`, newMockContext())
	assert.Equal(t, "X=5 ", v.Str())
}

func TestStringMinusIsTypeMismatch(t *testing.T) {
	_, _, err := Eval(mustLex(t, `"A"-"B"`), 0, newMockContext())
	require.Error(t, err)
	assert.Equal(t, "?TYPE MISMATCH ERROR", err.Error())
}

func TestComparisonMixedTypeIsTypeMismatch(t *testing.T) {
	_, _, err := Eval(mustLex(t, `"A"=1`), 0, newMockContext())
	require.Error(t, err)
	assert.Equal(t, "?TYPE MISMATCH ERROR", err.Error())
}

func TestStringMultiplyIsTypeMismatch(t *testing.T) {
	_, _, err := Eval(mustLex(t, `"A"*2`), 0, newMockContext())
	require.Error(t, err)
	assert.Equal(t, "?TYPE MISMATCH ERROR", err.Error())
}

func TestStringDivideIsTypeMismatch(t *testing.T) {
	_, _, err := Eval(mustLex(t, `1/"A"`), 0, newMockContext())
	require.Error(t, err)
	assert.Equal(t, "?TYPE MISMATCH ERROR", err.Error())
}

func TestStringPowerIsTypeMismatch(t *testing.T) {
	_, _, err := Eval(mustLex(t, `"A"^2`), 0, newMockContext())
	require.Error(t, err)
	assert.Equal(t, "?TYPE MISMATCH ERROR", err.Error())
}

func TestUnaryMinusOnStringIsTypeMismatch(t *testing.T) {
	_, _, err := Eval(mustLex(t, `-"A"`), 0, newMockContext())
	require.Error(t, err)
	assert.Equal(t, "?TYPE MISMATCH ERROR", err.Error())
}

func TestStringOrdinalComparison(t *testing.T) {
	v, _ := evalLine(t, `"ABC"<"ABD"`, newMockContext())
	assert.Equal(t, float64(1), v.Num())
}

func TestDivisionByZero(t *testing.T) {
	_, _, err := Eval(mustLex(t, "1/0"), 0, newMockContext())
	require.Error(t, err)
	assert.Equal(t, "?DIVISION BY ZERO ERROR", err.Error())
}

func TestLogicalAndOrNot(t *testing.T) {
	v, _ := evalLine(t, "NOT 0 AND 1", newMockContext())
	assert.Equal(t, float64(1), v.Num())

	v, _ = evalLine(t, "0 OR 0", newMockContext())
	assert.Equal(t, float64(0), v.Num())
}

func TestVariableLookup(t *testing.T) {
	ctx := newMockContext()
	ctx.vars["X"] = value.Num(42)
	v, _ := evalLine(t, "X", ctx)
	assert.Equal(t, float64(42), v.Num())
}

func TestArrayElementLookup(t *testing.T) {
	ctx := newMockContext()
	ctx.arrays["A"] = map[string]value.Value{",3": value.Num(9)}
	v, _ := evalLine(t, "A(3)", ctx)
	assert.Equal(t, float64(9), v.Num())
}

func TestArrayElementBadSubscript(t *testing.T) {
	ctx := newMockContext()
	_, _, err := Eval(mustLex(t, "A(3)"), 0, ctx)
	require.Error(t, err)
	assert.Equal(t, "?BAD SUBSCRIPT ERROR", err.Error())
}

func TestBuiltinNumericFunctions(t *testing.T) {
	v, _ := evalLine(t, "ABS(-5)", newMockContext())
	assert.Equal(t, float64(5), v.Num())

	v, _ = evalLine(t, "INT(3.7)", newMockContext())
	assert.Equal(t, float64(3), v.Num())

	v, _ = evalLine(t, "SGN(-9)", newMockContext())
	assert.Equal(t, float64(-1), v.Num())
}

func TestSqrNegativeIsIllegalQuantity(t *testing.T) {
	_, _, err := Eval(mustLex(t, "SQR(-1)"), 0, newMockContext())
	require.Error(t, err)
	assert.Equal(t, "?ILLEGAL QUANTITY ERROR", err.Error())
}

func TestStringBuiltins(t *testing.T) {
	v, _ := evalLine(t, `LEFT$("HELLO",3)`, newMockContext())
	assert.Equal(t, "HEL", v.Str())

	v, _ = evalLine(t, `RIGHT$("HELLO",3)`, newMockContext())
	assert.Equal(t, "LLO", v.Str())

	v, _ = evalLine(t, `MID$("HELLO",2,3)`, newMockContext())
	assert.Equal(t, "ELL", v.Str())

	v, _ = evalLine(t, `MID$("HELLO",2)`, newMockContext())
	assert.Equal(t, "ELLO", v.Str())

	v, _ = evalLine(t, `LEN("HELLO")`, newMockContext())
	assert.Equal(t, float64(5), v.Num())

	v, _ = evalLine(t, `ASC("A")`, newMockContext())
	assert.Equal(t, float64(65), v.Num())

	v, _ = evalLine(t, `CHR$(65)`, newMockContext())
	assert.Equal(t, "A", v.Str())
}

func TestAscOfEmptyStringIsIllegalQuantity(t *testing.T) {
	_, _, err := Eval(mustLex(t, `ASC("")`), 0, newMockContext())
	require.Error(t, err)
	assert.Equal(t, "?ILLEGAL QUANTITY ERROR", err.Error())
}

func TestValAndStrRoundTrip(t *testing.T) {
	v, _ := evalLine(t, `VAL("42")`, newMockContext())
	assert.Equal(t, float64(42), v.Num())

	v, _ = evalLine(t, `STR$(42)`, newMockContext())
	assert.Equal(t, "42 ", v.Str())
}

func TestPeekDelegatesToContext(t *testing.T) {
	ctx := newMockContext()
	ctx.peekBytes[768] = 201
	v, _ := evalLine(t, "PEEK(768)", ctx)
	assert.Equal(t, float64(201), v.Num())
}

func TestPosDelegatesToCursorColumn(t *testing.T) {
	ctx := newMockContext()
	ctx.cursorCol = 7
	v, _ := evalLine(t, "POS(0)", ctx)
	assert.Equal(t, float64(7), v.Num())
}

func TestRndDelegatesSeedThrough(t *testing.T) {
	ctx := newMockContext()
	ctx.randomNext = 0.5
	v, _ := evalLine(t, "RND(1)", ctx)
	assert.Equal(t, float64(0.5), v.Num())
	assert.Equal(t, float64(1), ctx.lastSeed)
}

func TestTabPadsToTargetColumn(t *testing.T) {
	ctx := newMockContext()
	ctx.cursorCol = 5
	v, _ := evalLine(t, "TAB(10)", ctx)
	assert.Equal(t, "     ", v.Str())
}

func TestTabAtOrBeforeCursorYieldsEmpty(t *testing.T) {
	ctx := newMockContext()
	ctx.cursorCol = 10
	v, _ := evalLine(t, "TAB(3)", ctx)
	assert.Equal(t, "", v.Str())
}

func TestSpcPadsByCount(t *testing.T) {
	v, _ := evalLine(t, "SPC(3)", newMockContext())
	assert.Equal(t, "   ", v.Str())
}

func TestUserFunctionCallDelegates(t *testing.T) {
	ctx := newMockContext()
	ctx.funcs["SQ"] = func(arg value.Value) (value.Value, error) {
		return value.Num(arg.Num() * arg.Num()), nil
	}
	v, _ := evalLine(t, "FN SQ(4)", ctx)
	assert.Equal(t, float64(16), v.Num())
}

func TestUndefinedUserFunctionErrors(t *testing.T) {
	_, _, err := Eval(mustLex(t, "FN SQ(4)"), 0, newMockContext())
	require.Error(t, err)
	assert.Equal(t, "?UNDEF'D FUNCTION ERROR: FNSQ", err.Error())
}

func TestParenthesizedSubExpression(t *testing.T) {
	v, _ := evalLine(t, "(2+3)*4", newMockContext())
	assert.Equal(t, float64(20), v.Num())
}

func TestUnclosedParenIsSyntaxError(t *testing.T) {
	_, _, err := Eval(mustLex(t, "(2+3"), 0, newMockContext())
	require.Error(t, err)
	assert.Equal(t, "?SYNTAX ERROR: EXPECTED ')'", err.Error())
}

func TestEvalReturnsFirstUnconsumedOffset(t *testing.T) {
	toks := mustLex(t, "3+4:PRINT X")
	v, pos := evalOnly(t, toks)
	assert.Equal(t, float64(7), v.Num())
	assert.Greater(t, len(toks), pos)
}

func mustLex(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := lexer.Lex(src)
	require.NoError(t, err)
	return toks
}

func evalOnly(t *testing.T, toks []token.Token) (value.Value, int) {
	t.Helper()
	v, pos, err := Eval(toks, 0, newMockContext())
	require.NoError(t, err)
	return v, pos
}
