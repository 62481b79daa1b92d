// Package lexer turns a single Applesoft source line into a token sequence.
package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-applesoft/applesoft/token"
)

// Lexer is a lexical analyzer over one source line. It carries no state
// beyond that line — Lex is pure with respect to its input.
type Lexer struct {
	input        string
	position     int // current position in input (points at ch)
	readPosition int // position of the next byte to read
	ch           byte
}

// New creates a Lexer over a single line of source.
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// Lex tokenizes line in one pass, returning the token sequence terminated
// by an EOL token. An unrecognized character fails the whole line.
func Lex(line string) ([]token.Token, error) {
	l := New(line)
	var toks []token.Token

	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == token.EOL {
			return toks, nil
		}
	}
}

func (l *Lexer) next() (token.Token, error) {
	l.skipWhitespace()

	switch {
	case l.ch == 0:
		return token.Token{Type: token.EOL, Literal: ""}, nil

	case l.ch == '"':
		return l.readString(), nil

	case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())):
		return l.readNumber(), nil

	case isLetter(l.ch):
		return l.readIdentifier(), nil

	default:
		return l.readOperator()
	}
}

func (l *Lexer) readOperator() (token.Token, error) {
	ch := l.ch

	two := func(tt token.Type) (token.Token, error) {
		l.readChar()
		lit := string(ch) + string(l.ch)
		l.readChar()
		return token.Token{Type: tt, Literal: lit}, nil
	}
	one := func(tt token.Type) (token.Token, error) {
		lit := string(ch)
		l.readChar()
		return token.Token{Type: tt, Literal: lit}, nil
	}

	switch ch {
	case '+':
		return one(token.PLUS)
	case '-':
		return one(token.MINUS)
	case '*':
		return one(token.ASTERISK)
	case '/':
		return one(token.SLASH)
	case '^':
		return one(token.CARET)
	case '(':
		return one(token.LPAREN)
	case ')':
		return one(token.RPAREN)
	case ',':
		return one(token.COMMA)
	case ';':
		return one(token.SEMICOLON)
	case ':':
		return one(token.COLON)
	case '=':
		return one(token.EQ)
	case '?':
		l.readChar()
		return token.Token{Type: token.PRINT, Literal: "?"}, nil
	case '<':
		switch l.peekChar() {
		case '=':
			return two(token.LE)
		case '>':
			return two(token.NEQ)
		default:
			return one(token.LT)
		}
	case '>':
		if l.peekChar() == '=' {
			return two(token.GE)
		}
		return one(token.GT)
	default:
		bad := ch
		l.readChar()
		return token.Token{}, fmt.Errorf("?SYNTAX ERROR: UNEXPECTED CHARACTER %q", bad)
	}
}

// readString consumes a "..." literal. A missing closing quote terminates
// at end of line, per spec.
func (l *Lexer) readString() token.Token {
	l.readChar() // skip opening quote
	start := l.position
	for l.ch != '"' && l.ch != 0 {
		l.readChar()
	}
	s := l.input[start:l.position]
	if l.ch == '"' {
		l.readChar()
	}
	return token.Token{Type: token.STRING, Literal: s, Str: s}
}

// readNumber consumes a numeric literal: optional leading '.', digit run,
// optional '.'+digits, optional E/e with optional sign and digits.
func (l *Lexer) readNumber() token.Token {
	start := l.position

	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		save := l.position
		saveRead := l.readPosition
		saveCh := l.ch
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		if isDigit(l.ch) {
			for isDigit(l.ch) {
				l.readChar()
			}
		} else {
			// not actually an exponent, back out
			l.position, l.readPosition, l.ch = save, saveRead, saveCh
		}
	}

	lit := l.input[start:l.position]
	n, _ := strconv.ParseFloat(lit, 64)
	return token.Token{Type: token.NUMBER, Literal: lit, Num: n}
}

// readIdentifier consumes an identifier/keyword: a leading letter, then
// letters and digits, then a single optional trailing '$'. REM swallows
// the remainder of the line as its literal.
func (l *Lexer) readIdentifier() token.Token {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '$' {
		l.readChar()
	}

	lit := l.input[start:l.position]
	tt := token.LookupKeyword(lit)

	if tt == token.REM {
		rest := strings.TrimPrefix(l.input[l.position:], " ")
		// advance to end of line
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		l.ch = 0
		return token.Token{Type: token.REM, Literal: rest}
	}

	if tt == token.IDENT {
		return token.Token{Type: token.IDENT, Literal: strings.ToUpper(lit)}
	}
	return token.Token{Type: tt, Literal: strings.ToUpper(lit)}
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' {
		l.readChar()
	}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
