package p21

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
)

// tokenKind classifies lexical tokens of an exchange file.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokKeyword
	tokInstance
	tokString
	tokInteger
	tokReal
	tokEnum
	tokBinary
	tokLParen
	tokRParen
	tokComma
	tokSemicolon
	tokEquals
	tokDollar
	tokStar
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of file"
	case tokKeyword:
		return "keyword"
	case tokInstance:
		return "instance name"
	case tokString:
		return "string"
	case tokInteger:
		return "integer"
	case tokReal:
		return "real"
	case tokEnum:
		return "enumeration"
	case tokBinary:
		return "binary"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokComma:
		return "','"
	case tokSemicolon:
		return "';'"
	case tokEquals:
		return "'='"
	case tokDollar:
		return "'$'"
	case tokStar:
		return "'*'"
	default:
		return "unknown token"
	}
}

type token struct {
	kind tokenKind
	text string
	line int
	col  int
}

// lexer splits exchange-file text into tokens.
type lexer struct {
	src  string
	pos  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (l *lexer) errorf(line, col int, format string, args ...any) error {
	return &SyntaxError{Line: line, Column: col, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) peekByte(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

// skip consumes whitespace and comments.
func (l *lexer) skip() error {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '/' && l.peekByte(1) == '*':
			line, col := l.line, l.col
			l.advance()
			l.advance()
			for {
				if l.pos >= len(l.src) {
					return l.errorf(line, col, "unterminated comment")
				}
				if l.src[l.pos] == '*' && l.peekByte(1) == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

func isUpper(c byte) bool  { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool  { return c >= 'a' && c <= 'z' }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return isUpper(c) || isLower(c) }

// next returns the next token.
func (l *lexer) next() (token, error) {
	if err := l.skip(); err != nil {
		return token{}, err
	}
	line, col := l.line, l.col
	tok := func(k tokenKind, text string) (token, error) {
		return token{kind: k, text: text, line: line, col: col}, nil
	}
	if l.pos >= len(l.src) {
		return tok(tokEOF, "")
	}

	c := l.src[l.pos]
	switch {
	case c == '(':
		l.advance()
		return tok(tokLParen, "(")
	case c == ')':
		l.advance()
		return tok(tokRParen, ")")
	case c == ',':
		l.advance()
		return tok(tokComma, ",")
	case c == ';':
		l.advance()
		return tok(tokSemicolon, ";")
	case c == '=':
		l.advance()
		return tok(tokEquals, "=")
	case c == '$':
		l.advance()
		return tok(tokDollar, "$")
	case c == '*':
		l.advance()
		return tok(tokStar, "*")
	case c == '#':
		l.advance()
		start := l.pos
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.advance()
		}
		if start == l.pos {
			return token{}, l.errorf(line, col, "instance name without digits")
		}
		return tok(tokInstance, l.src[start:l.pos])
	case c == '\'':
		s, err := l.readString(line, col)
		if err != nil {
			return token{}, err
		}
		return tok(tokString, s)
	case c == '"':
		l.advance()
		start := l.pos
		for l.pos < len(l.src) && l.src[l.pos] != '"' {
			l.advance()
		}
		if l.pos >= len(l.src) {
			return token{}, l.errorf(line, col, "unterminated binary literal")
		}
		text := l.src[start:l.pos]
		l.advance()
		return tok(tokBinary, text)
	case c == '.' && isLetter(l.peekByte(1)):
		l.advance()
		start := l.pos
		for l.pos < len(l.src) && (isLetter(l.src[l.pos]) || isDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
			l.advance()
		}
		if l.pos >= len(l.src) || l.src[l.pos] != '.' {
			return token{}, l.errorf(line, col, "unterminated enumeration")
		}
		text := l.src[start:l.pos]
		l.advance()
		return tok(tokEnum, strings.ToUpper(text))
	case isDigit(c) || c == '+' || c == '-' || (c == '.' && isDigit(l.peekByte(1))):
		return l.readNumber(line, col)
	case isLetter(c) || c == '_' || c == '!':
		start := l.pos
		l.advance()
		for l.pos < len(l.src) {
			d := l.src[l.pos]
			if !(isLetter(d) || isDigit(d) || d == '_' || d == '-') {
				break
			}
			l.advance()
		}
		return tok(tokKeyword, strings.ToUpper(l.src[start:l.pos]))
	}
	return token{}, l.errorf(line, col, "unexpected character %q", c)
}

func (l *lexer) readNumber(line, col int) (token, error) {
	start := l.pos
	if c := l.src[l.pos]; c == '+' || c == '-' {
		l.advance()
	}
	isReal := false
scan:
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isDigit(c):
		case c == '.':
			isReal = true
		case c == 'E' || c == 'e':
			isReal = true
			if n := l.peekByte(1); n == '+' || n == '-' {
				l.advance()
			}
		default:
			break scan
		}
		l.advance()
	}
	text := l.src[start:l.pos]
	if text == "+" || text == "-" {
		return token{}, l.errorf(line, col, "sign without digits")
	}
	if isReal {
		return token{kind: tokReal, text: text, line: line, col: col}, nil
	}
	return token{kind: tokInteger, text: text, line: line, col: col}, nil
}

// readString reads a quoted string, resolving doubled quotes and the
// \X\, \X2\ and \X4\ control directives.
func (l *lexer) readString(line, col int) (string, error) {
	l.advance()
	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			return "", l.errorf(line, col, "unterminated string")
		}
		c := l.advance()
		if c == '\'' {
			if l.peekByte(0) == '\'' {
				l.advance()
				b.WriteByte('\'')
				continue
			}
			return b.String(), nil
		}
		if c == '\\' && l.decodeDirective(&b) {
			continue
		}
		b.WriteByte(c)
	}
}

// decodeDirective handles an encoding directive after a backslash.
// Returns false when the text is not a directive, leaving it untouched.
func (l *lexer) decodeDirective(b *strings.Builder) bool {
	rest := l.src[l.pos:]
	switch {
	case strings.HasPrefix(rest, "X\\") && len(rest) >= 4:
		v, err := strconv.ParseUint(rest[2:4], 16, 8)
		if err != nil {
			return false
		}
		b.WriteRune(rune(v))
		l.skipN(4)
		return true
	case strings.HasPrefix(rest, "X2\\"), strings.HasPrefix(rest, "X4\\"):
		width := 4
		if rest[1] == '4' {
			width = 8
		}
		end := strings.Index(rest, "\\X0\\")
		if end < 0 {
			return false
		}
		hex := rest[3:end]
		if len(hex)%width != 0 {
			return false
		}
		var units []uint16
		var runes []rune
		for i := 0; i < len(hex); i += width {
			v, err := strconv.ParseUint(hex[i:i+width], 16, 32)
			if err != nil {
				return false
			}
			if width == 4 {
				units = append(units, uint16(v))
			} else {
				runes = append(runes, rune(v))
			}
		}
		if width == 4 {
			runes = utf16.Decode(units)
		}
		b.WriteString(string(runes))
		l.skipN(end + 4)
		return true
	}
	return false
}

func (l *lexer) skipN(n int) {
	for i := 0; i < n && l.pos < len(l.src); i++ {
		l.advance()
	}
}
