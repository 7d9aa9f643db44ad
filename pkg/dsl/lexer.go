package dsl

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// Lexer performs lexical analysis on layout description text.
// It never fails on content: unrecognized words become KindUnknown tokens
// and validation is left to the parser.
type Lexer struct {
	reader *bufio.Reader
	line   int
	tokens []Token

	// pending word (or string content while inString is set)
	buf      strings.Builder
	inString bool
}

// NewLexer creates a new lexer from an io.Reader
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{
		reader: bufio.NewReader(r),
	}
}

// Tokenize converts raw text into an ordered token sequence
func Tokenize(text string) []Token {
	// strings.Reader never returns a non-EOF error
	tokens, _ := NewLexer(strings.NewReader(text)).Tokenize()
	return tokens
}

// Tokenize reads the whole input and returns its tokens.
// The only possible error is a read error from the underlying reader.
func (l *Lexer) Tokenize() ([]Token, error) {
	for {
		raw, err := l.reader.ReadString('\n')
		if len(raw) > 0 || err == nil {
			l.line++
			l.scanLine(strings.TrimRight(raw, "\r\n"))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return l.tokens, fmt.Errorf("failed to read input at line %d: %w", l.line, err)
		}
	}
	return l.tokens, nil
}

// scanLine tokenizes a single line; string mode does not span lines
func (l *Lexer) scanLine(line string) {
	l.buf.Reset()
	l.inString = false

	for _, ch := range strings.TrimSpace(line) {
		if l.inString {
			if ch == '"' {
				l.emit(KindString, l.buf.String())
				l.buf.Reset()
				l.inString = false
			} else {
				l.buf.WriteRune(ch)
			}
			continue
		}

		switch {
		case ch == '"':
			// A pending word becomes the string's prefix
			l.inString = true
		case isSymbol(ch):
			l.flush()
			l.emit(symbols[ch], string(ch))
		case unicode.IsSpace(ch):
			l.flush()
		default:
			l.buf.WriteRune(ch)
		}
	}

	// Unterminated string content is flushed like any other word
	l.flush()
}

// flush classifies the pending buffer and emits it; an empty buffer is a no-op
func (l *Lexer) flush() {
	word := strings.TrimSpace(l.buf.String())
	l.buf.Reset()
	if word == "" {
		return
	}
	l.emit(classify(word), word)
}

func (l *Lexer) emit(kind Kind, lexeme string) {
	l.tokens = append(l.tokens, Token{Kind: kind, Lexeme: lexeme, Line: l.line})
}

func isSymbol(ch rune) bool {
	_, ok := symbols[ch]
	return ok
}

// classify resolves a word to a keyword, a number or KindUnknown
func classify(word string) Kind {
	if kind, ok := keywords[word]; ok {
		return kind
	}
	if _, err := strconv.ParseInt(word, 10, 64); err == nil {
		return KindNumber
	}
	return KindUnknown
}

// TokenDump renders one "Line n: KIND -> lexeme" entry per token
func TokenDump(tokens []Token) []string {
	lines := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		lines = append(lines, fmt.Sprintf("Line %d: %s -> %s", tok.Line, tok.Kind, tok.Lexeme))
	}
	return lines
}
