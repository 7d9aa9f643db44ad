package dsl

// Kind represents the type of a token
type Kind int

const (
	// KindWindow is the "Window" keyword that opens a program
	KindWindow Kind = iota
	// KindString is a quoted string (title, label text)
	KindString
	// KindNumber is an integer (dimensions, grid parameters, field size)
	KindNumber
	KindLParen
	KindRParen
	KindComma
	KindColon
	KindSemicolon
	KindPeriod
	// KindLayout is the "Layout" keyword
	KindLayout
	KindFlow
	KindGrid
	KindPanel
	KindGroup
	KindRadio
	KindButton
	KindTextfield
	KindLabel
	// KindEnd closes widget lists and the window
	KindEnd
	// KindEOF is synthesized when reading past the last token
	KindEOF
	// KindUnknown is any word that is neither a keyword nor a number
	KindUnknown
	// KindWidget is a catch-all used only in diagnostics
	KindWidget
)

var kindNames = [...]string{
	KindWindow:    "WINDOW",
	KindString:    "STRING",
	KindNumber:    "NUMBER",
	KindLParen:    "LPAREN",
	KindRParen:    "RPAREN",
	KindComma:     "COMMA",
	KindColon:     "COLON",
	KindSemicolon: "SEMICOLON",
	KindPeriod:    "PERIOD",
	KindLayout:    "LAYOUT",
	KindFlow:      "FLOW",
	KindGrid:      "GRID",
	KindPanel:     "PANEL",
	KindGroup:     "GROUP",
	KindRadio:     "RADIO",
	KindButton:    "BUTTON",
	KindTextfield: "TEXTFIELD",
	KindLabel:     "LABEL",
	KindEnd:       "END",
	KindEOF:       "EOF",
	KindUnknown:   "UNKNOWN",
	KindWidget:    "WIDGET",
}

// String returns the upper-case name used in token dumps and diagnostics
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "UNKNOWN"
	}
	return kindNames[k]
}

// Token represents a single classified lexeme
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
}

// symbols maps the single-character tokens to their kind
var symbols = map[rune]Kind{
	'(': KindLParen,
	')': KindRParen,
	',': KindComma,
	':': KindColon,
	';': KindSemicolon,
	'.': KindPeriod,
}

// keywords is case-sensitive
var keywords = map[string]Kind{
	"Window":    KindWindow,
	"End":       KindEnd,
	"Flow":      KindFlow,
	"Grid":      KindGrid,
	"Group":     KindGroup,
	"Label":     KindLabel,
	"Layout":    KindLayout,
	"Panel":     KindPanel,
	"Radio":     KindRadio,
	"Textfield": KindTextfield,
	"Button":    KindButton,
}
