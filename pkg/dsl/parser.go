package dsl

import (
	"fmt"
	"strconv"
)

// DefaultMaxDepth bounds panel/group nesting
const DefaultMaxDepth = 64

// Options controls a single parse
type Options struct {
	// Verbose adds the token dump and rule names to logged output
	Verbose bool
	// MaxDepth bounds container nesting; zero means DefaultMaxDepth
	MaxDepth int
	// Sink receives the token dump and the diagnostic line; may be nil
	Sink LogSink
}

// Parser is a recursive-descent parser over a token slice.
// A Parser holds parse-scoped state only; use one per input.
type Parser struct {
	tokens []Token
	// pos indexes the next unread token
	pos int
	// cur is the lookahead register: the token most recently read
	cur Token
	eof Token

	opts   Options
	report *Reporter
}

// NewParser creates a new parser over tokens
func NewParser(tokens []Token, opts Options) *Parser {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}

	eofLine := 1
	if n := len(tokens); n > 0 {
		eofLine = tokens[n-1].Line
	}

	return &Parser{
		tokens: tokens,
		eof:    Token{Kind: KindEOF, Line: eofLine},
		opts:   opts,
	}
}

// Parse runs the Program rule. On failure it returns the first latched
// diagnostic as a *ParseError and no tree.
//
// A nil error does not imply Diagnostic() is nil: a malformed item inside a
// widget list is logged and then treated as the end of that list, so the
// enclosing rule may still succeed.
func (p *Parser) Parse() (*Window, error) {
	p.pos = 0
	p.cur = Token{}
	p.report = NewReporter(p.opts.Sink, p.opts.Verbose)

	if p.opts.Verbose && p.opts.Sink != nil {
		for _, line := range TokenDump(p.tokens) {
			p.opts.Sink.AddLogEntry(line)
		}
	}

	win, ok := p.parseProgram()
	if !ok {
		if first := p.report.First(); first != nil {
			return nil, first
		}
		// Every failing rule reports; this guards the error interface against a nil pointer
		return nil, &ParseError{Category: CategoryStructural, Message: "Error: Parse failed", Line: p.cur.Line, Encountered: p.cur.Kind}
	}
	return win, nil
}

// Diagnostic returns the latched diagnostic of the last Parse, or nil
func (p *Parser) Diagnostic() *ParseError {
	if p.report == nil {
		return nil
	}
	return p.report.First()
}

// Result bundles the outcome of Parse
type Result struct {
	Window     *Window
	Tokens     []Token
	Diagnostic *ParseError
}

// Parse tokenizes and parses text with a fresh lexer/parser pair
func Parse(text string, opts Options) (*Result, error) {
	tokens := Tokenize(text)
	p := NewParser(tokens, opts)
	win, err := p.Parse()
	res := &Result{Window: win, Tokens: tokens, Diagnostic: p.Diagnostic()}
	return res, err
}

// advance moves the lookahead register forward; past the end it holds EOF
func (p *Parser) advance() {
	if p.pos >= len(p.tokens) {
		p.cur = p.eof
		return
	}
	p.cur = p.tokens[p.pos]
	p.pos++
}

// expect checks the lookahead kind without consuming it
func (p *Parser) expect(kind Kind, rule string) bool {
	if p.cur.Kind != kind {
		return p.report.Expected(kind, p.cur, rule)
	}
	return true
}

// number checks for a NUMBER token and converts it to a 32-bit integer
func (p *Parser) number(field, rule string) (int, bool) {
	if !p.expect(KindNumber, rule) {
		return 0, false
	}
	n, err := strconv.ParseInt(p.cur.Lexeme, 10, 32)
	if err != nil {
		return 0, p.report.Custom(CategoryValueRange,
			fmt.Sprintf("Error: Illegitimate %s value of %s", field, p.cur.Lexeme), p.cur, rule)
	}
	return int(n), true
}

// parseProgram parses WINDOW STRING '(' NUMBER ',' NUMBER ')' Layout Widget* END '.'
func (p *Parser) parseProgram() (*Window, bool) {
	const rule = "Program"

	p.advance()
	if !p.expect(KindWindow, rule) {
		return nil, false
	}
	p.advance()

	if !p.expect(KindString, rule) {
		return nil, false
	}
	win := &Window{Title: p.cur.Lexeme}
	p.advance()

	if !p.expect(KindLParen, rule) {
		return nil, false
	}
	p.advance()

	width, ok := p.number("width", rule)
	if !ok {
		return nil, false
	}
	p.advance()

	if !p.expect(KindComma, rule) {
		return nil, false
	}
	p.advance()

	height, ok := p.number("height", rule)
	if !ok {
		return nil, false
	}
	p.advance()

	if !p.expect(KindRParen, rule) {
		return nil, false
	}
	p.advance()

	layout, ok := p.parseLayout()
	if !ok {
		return nil, p.report.Custom(CategoryStructural, "Error: Malformed layout detected.", p.cur, rule)
	}
	win.Layout = layout
	p.advance()

	p.zeroOrMore(KindEnd, func() bool {
		return p.parseWidget(win, 0)
	})

	if !p.expect(KindEnd, rule) {
		return nil, false
	}
	p.advance()

	if !p.expect(KindPeriod, rule) {
		return nil, false
	}

	win.Width = width
	win.Height = height
	return win, true
}

// parseLayout parses LAYOUT LayoutManager ':' and leaves the colon in the register
func (p *Parser) parseLayout() (LayoutSpec, bool) {
	const rule = "Layout"

	if !p.expect(KindLayout, rule) {
		return LayoutSpec{}, false
	}
	p.advance()

	spec, ok := p.parseLayoutManager()
	if !ok {
		return LayoutSpec{}, p.report.Custom(CategoryStructural,
			fmt.Sprintf("Error: Expected %s or %s, encountered %s", KindFlow, KindGrid, p.cur.Kind), p.cur, rule)
	}
	p.advance()

	if !p.expect(KindColon, rule) {
		return LayoutSpec{}, false
	}
	return spec, true
}

// parseLayoutManager dispatches on FLOW or GRID; other kinds are reported by the caller
func (p *Parser) parseLayoutManager() (LayoutSpec, bool) {
	switch p.cur.Kind {
	case KindFlow:
		return FlowLayout(), true
	case KindGrid:
		return p.parseGridLayout()
	default:
		return LayoutSpec{}, false
	}
}

// parseGridLayout parses GRID '(' NUMBER ',' NUMBER (',' NUMBER ',' NUMBER)? ')'
func (p *Parser) parseGridLayout() (LayoutSpec, bool) {
	const rule = "GridLayout"

	p.advance()
	if !p.expect(KindLParen, rule) {
		return LayoutSpec{}, false
	}
	p.advance()

	rows, ok := p.number("rows", rule)
	if !ok {
		return LayoutSpec{}, false
	}
	p.advance()

	if !p.expect(KindComma, rule) {
		return LayoutSpec{}, false
	}
	p.advance()

	cols, ok := p.number("columns", rule)
	if !ok {
		return LayoutSpec{}, false
	}
	p.advance()

	// The gap pair is present iff a comma follows the column count
	switch p.cur.Kind {
	case KindRParen:
		return GridLayout(rows, cols), true
	case KindComma:
		p.advance()
	default:
		return LayoutSpec{}, p.report.Custom(CategoryStructural,
			fmt.Sprintf("Error: Expected %s or %s, encountered %s", KindComma, KindRParen, p.cur.Kind), p.cur, rule)
	}

	hgap, ok := p.number("hgap", rule)
	if !ok {
		return LayoutSpec{}, false
	}
	p.advance()

	if !p.expect(KindComma, rule) {
		return LayoutSpec{}, false
	}
	p.advance()

	vgap, ok := p.number("vgap", rule)
	if !ok {
		return LayoutSpec{}, false
	}
	p.advance()

	if !p.expect(KindRParen, rule) {
		return LayoutSpec{}, false
	}
	return GridLayoutWithGaps(rows, cols, hgap, vgap), true
}

// parseWidget dispatches one Widget alternative on the lookahead kind and
// appends the result to parent
func (p *Parser) parseWidget(parent container, depth int) bool {
	switch p.cur.Kind {
	case KindPanel:
		return p.parsePanel(parent, depth)
	case KindGroup:
		return p.parseGroup(parent, depth)
	case KindButton, KindTextfield, KindLabel:
		return p.parseLeaf(parent)
	default:
		return p.report.Expected(KindWidget, p.cur, "Widget")
	}
}

// parsePanel parses PANEL Layout Widget* END ';'.
// A malformed panel layout is reported but the panel keeps a flow layout
// and its widget list is parsed from the current lookahead.
func (p *Parser) parsePanel(parent container, depth int) bool {
	if !p.checkDepth(depth, "Panel") {
		return false
	}
	p.advance()

	panel := &Panel{Layout: FlowLayout()}
	if layout, ok := p.parseLayout(); ok {
		panel.Layout = layout
		p.advance()
	}

	if !p.parseEnding(func() bool { return p.parseWidget(panel, depth+1) }) {
		return false
	}
	parent.add(panel)
	return true
}

// parseGroup parses GROUP RadioButton* END ';'
func (p *Parser) parseGroup(parent container, depth int) bool {
	if !p.checkDepth(depth, "Group") {
		return false
	}
	p.advance()

	group := &Group{}
	if !p.parseEnding(func() bool { return p.parseRadioButton(group) }) {
		return false
	}
	parent.add(group)
	return true
}

// parseRadioButton parses RADIO STRING ';' inside a group
func (p *Parser) parseRadioButton(group *Group) bool {
	if p.cur.Kind != KindRadio {
		return p.report.Expected(KindRadio, p.cur, "RadioButton")
	}
	return p.parseLeaf(group)
}

// parseEnding parses item* END ';' for a container body
func (p *Parser) parseEnding(item func() bool) bool {
	const rule = "WidgetEnding"

	p.zeroOrMore(KindEnd, item)

	if !p.expect(KindEnd, rule) {
		return false
	}
	p.advance()

	return p.expect(KindSemicolon, rule)
}

// parseLeaf parses KEYWORD <arg> ';' using the leaf builder table
func (p *Parser) parseLeaf(parent container) bool {
	leaf, ok := leafRules[p.cur.Kind]
	if !ok {
		return p.report.Expected(KindWidget, p.cur, "Widget")
	}
	p.advance()

	var n int
	if leaf.arg == KindNumber {
		if n, ok = p.number(leaf.field, leaf.rule); !ok {
			return false
		}
	} else if !p.expect(leaf.arg, leaf.rule) {
		return false
	}
	widget := leaf.build(p.cur.Lexeme, n)
	p.advance()

	if !p.expect(KindSemicolon, leaf.rule) {
		return false
	}
	parent.add(widget)
	return true
}

func (p *Parser) checkDepth(depth int, rule string) bool {
	if depth >= p.opts.MaxDepth {
		return p.report.Custom(CategoryStructural,
			fmt.Sprintf("Error: Nesting depth exceeds %d", p.opts.MaxDepth), p.cur, rule)
	}
	return true
}
