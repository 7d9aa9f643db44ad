package dsl

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// recordingSink collects log lines in order
type recordingSink struct {
	lines []string
}

func (s *recordingSink) AddLogEntry(message string) {
	s.lines = append(s.lines, message)
}

func mustParse(t *testing.T, input string) *Result {
	t.Helper()
	res, err := Parse(input, Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return res
}

func parseError(t *testing.T, input string) *ParseError {
	t.Helper()
	res, err := Parse(input, Options{})
	if err == nil {
		t.Fatalf("Parse() error = nil, want diagnostic")
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Parse() error type = %T, want *ParseError", err)
	}
	if res.Window != nil {
		t.Errorf("Parse() returned a tree alongside error %v", err)
	}
	return pe
}

func TestParser_EmptyWindow(t *testing.T) {
	res := mustParse(t, `Window "Demo" (300,200) Layout Flow: End.`)

	want := &Window{Title: "Demo", Width: 300, Height: 200, Layout: FlowLayout()}
	if diff := cmp.Diff(want, res.Window); diff != "" {
		t.Errorf("Window mismatch (-want +got):\n%s", diff)
	}
	if len(res.Window.Children) != 0 {
		t.Errorf("Children = %d, want 0", len(res.Window.Children))
	}
	if res.Diagnostic != nil {
		t.Errorf("Diagnostic = %v, want nil", res.Diagnostic)
	}
}

func TestParser_GridWithButton(t *testing.T) {
	res := mustParse(t, `Window "Demo" (300,200) Layout Grid(2,2): Button "OK"; End.`)

	want := &Window{
		Title:    "Demo",
		Width:    300,
		Height:   200,
		Layout:   GridLayout(2, 2),
		Children: []Widget{&Button{Label: "OK"}},
	}
	if diff := cmp.Diff(want, res.Window); diff != "" {
		t.Errorf("Window mismatch (-want +got):\n%s", diff)
	}
}

func TestParser_UnquotedButtonLabel(t *testing.T) {
	pe := parseError(t, `Window "Demo" (300,200) Layout Flow: Button OK; End.`)

	if !pe.HasExpected || pe.Expected != KindString {
		t.Errorf("Expected = %v (set=%v), want STRING", pe.Expected, pe.HasExpected)
	}
	if pe.Encountered != KindUnknown {
		t.Errorf("Encountered = %v, want UNKNOWN", pe.Encountered)
	}
	if pe.Line != 1 {
		t.Errorf("Line = %d, want 1", pe.Line)
	}
	if pe.Category != CategoryGrammar {
		t.Errorf("Category = %v, want %v", pe.Category, CategoryGrammar)
	}
}

func TestParser_WordBeforeQuoteJoinsLabel(t *testing.T) {
	res := mustParse(t, `Window "Demo" (300,200) Layout Flow: Button ab"c d"; End.`)

	want := []Widget{&Button{Label: "abc d"}}
	if diff := cmp.Diff(want, res.Window.Children); diff != "" {
		t.Errorf("Children mismatch (-want +got):\n%s", diff)
	}
}

func TestParser_EmptyInput(t *testing.T) {
	pe := parseError(t, "")

	if pe.Expected != KindWindow || pe.Encountered != KindEOF {
		t.Errorf("diagnostic = %v, want Expected WINDOW, encountered EOF", pe)
	}
	if pe.Line != 1 {
		t.Errorf("Line = %d, want 1", pe.Line)
	}
	if got, want := pe.Error(), "Error: Expected WINDOW, encountered EOF (line 1)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestParser_TruncatedInputReportsLastLine(t *testing.T) {
	pe := parseError(t, "Window \"Demo\"\n(300,200)\nLayout Flow:\n")

	// The widget list sees EOF where it expects a widget or END
	if pe.Expected != KindWidget || pe.Encountered != KindEOF {
		t.Errorf("diagnostic = %v, want Expected WIDGET, encountered EOF", pe)
	}
	if pe.Line != 3 {
		t.Errorf("Line = %d, want 3", pe.Line)
	}
}

func TestParser_FullTree(t *testing.T) {
	input := `Window "Calc" (400,300) Layout Grid(2,1,5,5):
  Textfield 20;
  Panel Layout Grid(1,2):
    Button "1";
    Button "2";
  End;
  Group
    Radio "A";
    Radio "B";
  End;
  Label "done";
End.`

	res := mustParse(t, input)

	want := &Window{
		Title:  "Calc",
		Width:  400,
		Height: 300,
		Layout: GridLayoutWithGaps(2, 1, 5, 5),
		Children: []Widget{
			&Textfield{Columns: 20},
			&Panel{
				Layout: GridLayout(1, 2),
				Children: []Widget{
					&Button{Label: "1"},
					&Button{Label: "2"},
				},
			},
			&Group{Radios: []*Radio{{Label: "A"}, {Label: "B"}}},
			&Label{Text: "done"},
		},
	}
	if diff := cmp.Diff(want, res.Window); diff != "" {
		t.Errorf("Window mismatch (-want +got):\n%s", diff)
	}
}

func TestParser_SourceOrderPreserved(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(`Window "Order" (10,10) Layout Flow:` + "\n")
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&sb, "Label \"%d\";\n", i)
	}
	sb.WriteString("End.")

	res := mustParse(t, sb.String())

	if len(res.Window.Children) != 50 {
		t.Fatalf("Children = %d, want 50", len(res.Window.Children))
	}
	for i, child := range res.Window.Children {
		label, ok := child.(*Label)
		if !ok {
			t.Fatalf("child %d = %T, want *Label", i, child)
		}
		if label.Text != fmt.Sprint(i) {
			t.Errorf("child %d text = %q, want %q", i, label.Text, fmt.Sprint(i))
		}
	}
}

func TestParser_EmptyContainers(t *testing.T) {
	res := mustParse(t, `Window "D" (1,1) Layout Flow: Panel Layout Flow: End; Group End; End.`)

	want := []Widget{
		&Panel{Layout: FlowLayout()},
		&Group{},
	}
	if diff := cmp.Diff(want, res.Window.Children); diff != "" {
		t.Errorf("Children mismatch (-want +got):\n%s", diff)
	}
}

func TestParser_NestedPanels(t *testing.T) {
	res := mustParse(t, `Window "D" (1,1) Layout Flow:
Panel Layout Flow:
  Panel Layout Grid(3,3):
    Label "deep";
  End;
End;
End.`)

	outer, ok := res.Window.Children[0].(*Panel)
	if !ok {
		t.Fatalf("child = %T, want *Panel", res.Window.Children[0])
	}
	inner, ok := outer.Children[0].(*Panel)
	if !ok {
		t.Fatalf("nested child = %T, want *Panel", outer.Children[0])
	}
	if inner.Layout != GridLayout(3, 3) {
		t.Errorf("inner layout = %+v, want grid 3x3", inner.Layout)
	}
	if diff := cmp.Diff([]Widget{&Label{Text: "deep"}}, inner.Children); diff != "" {
		t.Errorf("inner children mismatch (-want +got):\n%s", diff)
	}
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     string
		category Category
	}{
		{
			name:     "missing window keyword",
			input:    `Panel "Demo" (1,1) Layout Flow: End.`,
			want:     "Error: Expected WINDOW, encountered PANEL (line 1)",
			category: CategoryGrammar,
		},
		{
			name:     "missing title",
			input:    `Window (1,1) Layout Flow: End.`,
			want:     "Error: Expected STRING, encountered LPAREN (line 1)",
			category: CategoryGrammar,
		},
		{
			name:     "width out of range",
			input:    `Window "D" (3000000000,1) Layout Flow: End.`,
			want:     "Error: Illegitimate width value of 3000000000 (line 1)",
			category: CategoryValueRange,
		},
		{
			name:     "height out of range",
			input:    `Window "D" (1,-3000000000) Layout Flow: End.`,
			want:     "Error: Illegitimate height value of -3000000000 (line 1)",
			category: CategoryValueRange,
		},
		{
			name:     "missing comma between dimensions",
			input:    `Window "D" (1 1) Layout Flow: End.`,
			want:     "Error: Expected COMMA, encountered NUMBER (line 1)",
			category: CategoryGrammar,
		},
		{
			name:     "unknown layout manager",
			input:    `Window "D" (1,1) Layout Blah: End.`,
			want:     "Error: Expected FLOW or GRID, encountered UNKNOWN (line 1)",
			category: CategoryStructural,
		},
		{
			name:     "missing layout colon",
			input:    `Window "D" (1,1) Layout Flow End.`,
			want:     "Error: Expected COLON, encountered END (line 1)",
			category: CategoryGrammar,
		},
		{
			name:     "grid without closing paren",
			input:    `Window "D" (1,1) Layout Grid(1,2;: End.`,
			want:     "Error: Expected COMMA or RPAREN, encountered SEMICOLON (line 1)",
			category: CategoryStructural,
		},
		{
			name:     "grid with single gap",
			input:    `Window "D" (1,1) Layout Grid(1,2,3): End.`,
			want:     "Error: Expected COMMA, encountered RPAREN (line 1)",
			category: CategoryGrammar,
		},
		{
			name:     "grid rows out of range",
			input:    `Window "D" (1,1) Layout Grid(99999999999,2): End.`,
			want:     "Error: Illegitimate rows value of 99999999999 (line 1)",
			category: CategoryValueRange,
		},
		{
			name:     "grid vgap out of range",
			input:    `Window "D" (1,1) Layout Grid(1,2,3,4444444444): End.`,
			want:     "Error: Illegitimate vgap value of 4444444444 (line 1)",
			category: CategoryValueRange,
		},
		{
			name:     "textfield size out of range",
			input:    `Window "D" (1,1) Layout Flow: Textfield 9999999999; End.`,
			want:     "Error: Illegitimate textfield size value of 9999999999 (line 1)",
			category: CategoryValueRange,
		},
		{
			name:     "unknown widget",
			input:    `Window "D" (1,1) Layout Flow: Label "a"; Foo; End.`,
			want:     "Error: Expected WIDGET, encountered UNKNOWN (line 1)",
			category: CategoryGrammar,
		},
		{
			name:     "non-radio inside group",
			input:    `Window "D" (1,1) Layout Flow: Group Radio "A"; Button "x"; End; End.`,
			want:     "Error: Expected RADIO, encountered BUTTON (line 1)",
			category: CategoryGrammar,
		},
		{
			name:     "missing semicolon on later line",
			input:    "Window \"D\" (1,1)\nLayout Flow:\nButton \"ok\" End.",
			want:     "Error: Expected SEMICOLON, encountered END (line 3)",
			category: CategoryGrammar,
		},
		{
			name:     "missing final period",
			input:    `Window "D" (1,1) Layout Flow: End;`,
			want:     "Error: Expected PERIOD, encountered SEMICOLON (line 1)",
			category: CategoryGrammar,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe := parseError(t, tt.input)
			if got := pe.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if pe.Category != tt.category {
				t.Errorf("Category = %v, want %v", pe.Category, tt.category)
			}
		})
	}
}

func TestParser_FirstErrorWins(t *testing.T) {
	sink := &recordingSink{}
	// Several independent mistakes: only the earliest is surfaced
	input := `Window "D" (1,1) Layout Flow: Button OK; Label; Textfield x; End`

	_, err := Parse(input, Options{Sink: sink})
	if err == nil {
		t.Fatal("Parse() error = nil, want diagnostic")
	}
	if len(sink.lines) != 1 {
		t.Fatalf("logged %d lines, want exactly 1: %v", len(sink.lines), sink.lines)
	}
	if want := "Error: Expected STRING, encountered UNKNOWN (line 1)"; sink.lines[0] != want {
		t.Errorf("logged %q, want %q", sink.lines[0], want)
	}
}

// A panel whose layout is missing is logged, yet the list it sits in keeps
// going and the whole parse still succeeds.
func TestParser_MalformedItemStillSucceeds(t *testing.T) {
	sink := &recordingSink{}
	input := `Window "Demo" (300,200) Layout Flow: Panel End; Button "A"; End.`

	res, err := Parse(input, Options{Sink: sink})
	if err != nil {
		t.Fatalf("Parse() error = %v, want success", err)
	}
	if res.Diagnostic == nil {
		t.Fatal("Diagnostic = nil, want the latched layout mismatch")
	}
	if got, want := res.Diagnostic.Error(), "Error: Expected LAYOUT, encountered END (line 1)"; got != want {
		t.Errorf("Diagnostic = %q, want %q", got, want)
	}
	if len(sink.lines) != 1 {
		t.Errorf("logged %d lines, want 1: %v", len(sink.lines), sink.lines)
	}

	want := []Widget{
		&Panel{Layout: FlowLayout()},
		&Button{Label: "A"},
	}
	if diff := cmp.Diff(want, res.Window.Children); diff != "" {
		t.Errorf("Children mismatch (-want +got):\n%s", diff)
	}
}

func TestParser_VerboseOutput(t *testing.T) {
	sink := &recordingSink{}
	input := "Window \"D\" (1,1)\nLayout Flow:\nButton OK;\nEnd."

	_, err := Parse(input, Options{Verbose: true, Sink: sink})
	if err == nil {
		t.Fatal("Parse() error = nil, want diagnostic")
	}

	tokens := Tokenize(input)
	if len(sink.lines) != len(tokens)+1 {
		t.Fatalf("logged %d lines, want %d token lines + 1 diagnostic", len(sink.lines), len(tokens))
	}
	if sink.lines[0] != "Line 1: WINDOW -> Window" {
		t.Errorf("first line = %q, want token dump", sink.lines[0])
	}
	last := sink.lines[len(sink.lines)-1]
	if want := "Error: Expected STRING, encountered UNKNOWN (line 3) [Button]"; last != want {
		t.Errorf("diagnostic = %q, want %q", last, want)
	}
}

func TestParser_DepthGuard(t *testing.T) {
	nested := func(depth int) string {
		var sb strings.Builder
		sb.WriteString(`Window "D" (1,1) Layout Flow: `)
		for i := 0; i < depth; i++ {
			sb.WriteString("Panel Layout Flow: ")
		}
		for i := 0; i < depth; i++ {
			sb.WriteString("End; ")
		}
		sb.WriteString("End.")
		return sb.String()
	}

	if _, err := Parse(nested(3), Options{MaxDepth: 3}); err != nil {
		t.Fatalf("depth 3 with MaxDepth 3: error = %v", err)
	}

	_, err := Parse(nested(4), Options{MaxDepth: 3})
	if err == nil {
		t.Fatal("depth 4 with MaxDepth 3: error = nil, want depth diagnostic")
	}
	if !strings.Contains(err.Error(), "Nesting depth exceeds 3") {
		t.Errorf("error = %v, want nesting depth diagnostic", err)
	}

	// The default guard still handles very deep input without blowing the stack
	_, err = Parse(nested(10000), Options{})
	if err == nil || !strings.Contains(err.Error(), "Nesting depth exceeds 64") {
		t.Errorf("error = %v, want default nesting depth diagnostic", err)
	}
}

func TestParser_TrailingTokensIgnored(t *testing.T) {
	res := mustParse(t, `Window "D" (1,1) Layout Flow: End. garbage after`)
	if res.Window.Title != "D" {
		t.Errorf("Title = %q, want D", res.Window.Title)
	}
}

func TestParser_ReuseIsIndependent(t *testing.T) {
	bad := NewParser(Tokenize("Window"), Options{})
	if _, err := bad.Parse(); err == nil {
		t.Fatal("Parse() error = nil, want diagnostic")
	}
	if _, err := bad.Parse(); err == nil {
		t.Fatal("second Parse() error = nil, want the same diagnostic")
	}

	good := NewParser(Tokenize(`Window "D" (1,1) Layout Flow: End.`), Options{})
	if _, err := good.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if good.Diagnostic() != nil {
		t.Errorf("Diagnostic() = %v, want nil after a clean parse", good.Diagnostic())
	}
}

func TestCountWidgets(t *testing.T) {
	res := mustParse(t, `Window "D" (1,1) Layout Flow:
Panel Layout Flow: Button "a"; Button "b"; End;
Group Radio "x"; Radio "y"; Radio "z"; End;
End.`)

	got := CountWidgets(res.Window)
	want := map[WidgetKind]int{
		WidgetWindow: 1,
		WidgetPanel:  1,
		WidgetButton: 2,
		WidgetGroup:  1,
		WidgetRadio:  3,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CountWidgets() mismatch (-want +got):\n%s", diff)
	}
}
