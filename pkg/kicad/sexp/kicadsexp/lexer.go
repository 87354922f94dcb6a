package kicadsexp

import (
	"bufio"
	"fmt"
	"io"
	"unicode"
)

// TokenType represents the type of a token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenLeftParen
	TokenRightParen
	TokenSymbol
	TokenString
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenLeftParen:
		return "'('"
	case TokenRightParen:
		return "')'"
	case TokenSymbol:
		return "symbol"
	case TokenString:
		return "string"
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token represents a lexical token. Start and End are byte offsets into the
// input; End is exclusive.
type Token struct {
	Type  TokenType
	Value string
	Start int
	End   int
}

// Lexer tokenizes S-expressions from an io.Reader
type Lexer struct {
	reader *bufio.Reader
	offset int

	peeked     bool
	peekedRune rune
	peekedSize int
}

// NewLexer creates a new lexer
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{
		reader: bufio.NewReader(r),
	}
}

// Offset returns the number of bytes consumed so far
func (l *Lexer) Offset() int {
	return l.offset
}

// NextToken reads the next token from the input
func (l *Lexer) NextToken() (Token, error) {
	// Skip whitespace and comments
	for {
		ch, err := l.peek()
		if err != nil {
			if err == io.EOF {
				return Token{Type: TokenEOF, Start: l.offset, End: l.offset}, nil
			}
			return Token{}, err
		}

		if unicode.IsSpace(ch) {
			l.read()
			continue
		}

		// Comments run from # to end of line
		if ch == '#' {
			for {
				c, err := l.read()
				if err != nil || c == '\n' {
					break
				}
			}
			continue
		}

		break
	}

	ch, err := l.peek()
	if err != nil {
		if err == io.EOF {
			return Token{Type: TokenEOF, Start: l.offset, End: l.offset}, nil
		}
		return Token{}, err
	}

	start := l.offset
	switch ch {
	case '(':
		l.read()
		return Token{Type: TokenLeftParen, Value: "(", Start: start, End: l.offset}, nil

	case ')':
		l.read()
		return Token{Type: TokenRightParen, Value: ")", Start: start, End: l.offset}, nil

	case '"':
		return l.readString()

	default:
		return l.readSymbol()
	}
}

// peek looks at the next rune without consuming it
func (l *Lexer) peek() (rune, error) {
	if l.peeked {
		return l.peekedRune, nil
	}

	ch, size, err := l.reader.ReadRune()
	if err != nil {
		return 0, err
	}

	l.peeked = true
	l.peekedRune = ch
	l.peekedSize = size
	return ch, nil
}

// read consumes and returns the next rune
func (l *Lexer) read() (rune, error) {
	if l.peeked {
		l.peeked = false
		l.offset += l.peekedSize
		return l.peekedRune, nil
	}

	ch, size, err := l.reader.ReadRune()
	if err != nil {
		return 0, err
	}
	l.offset += size
	return ch, nil
}

// readString reads a quoted string
func (l *Lexer) readString() (Token, error) {
	start := l.offset
	l.read()

	var result []rune
	for {
		ch, err := l.read()
		if err != nil {
			if err == io.EOF {
				return Token{}, fmt.Errorf("unexpected EOF in string starting at offset %d", start)
			}
			return Token{}, err
		}

		if ch == '"' {
			// A doubled quote is an escaped quote
			next, err := l.peek()
			if err == nil && next == '"' {
				l.read()
				result = append(result, '"')
				continue
			}
			break
		}

		if ch == '\\' {
			next, err := l.read()
			if err != nil {
				return Token{}, fmt.Errorf("unexpected EOF after backslash at offset %d", l.offset)
			}
			switch next {
			case 'n':
				result = append(result, '\n')
			case 't':
				result = append(result, '\t')
			case 'r':
				result = append(result, '\r')
			case '\\':
				result = append(result, '\\')
			case '"':
				result = append(result, '"')
			default:
				result = append(result, next)
			}
			continue
		}

		result = append(result, ch)
	}

	return Token{Type: TokenString, Value: string(result), Start: start, End: l.offset}, nil
}

// readSymbol reads an unquoted symbol (identifier, number, etc.)
func (l *Lexer) readSymbol() (Token, error) {
	start := l.offset
	var result []rune

	for {
		ch, err := l.peek()
		if err != nil {
			if err == io.EOF {
				break
			}
			return Token{}, err
		}

		if unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' {
			break
		}

		l.read()
		result = append(result, ch)
	}

	if len(result) == 0 {
		return Token{}, fmt.Errorf("empty symbol at offset %d", start)
	}

	return Token{Type: TokenSymbol, Value: string(result), Start: start, End: l.offset}, nil
}
