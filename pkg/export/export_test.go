package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/akam1o/guidl/pkg/dsl"
	"github.com/akam1o/guidl/pkg/errors"
)

const calcInput = `Window "Calc" (400,300) Layout Grid(2,1,5,5):
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

func parseCalc(t *testing.T) *dsl.Window {
	t.Helper()
	res, err := dsl.Parse(calcInput, dsl.Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return res.Window
}

func TestText(t *testing.T) {
	got := Text(parseCalc(t))

	want := `Window "Calc" (400, 300) Layout Grid(2, 1, 5, 5)
  Textfield 20
  Panel Layout Grid(1, 2)
    Button "1"
    Button "2"
  Group
    Radio "A"
    Radio "B"
  Label "done"
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Text() mismatch (-want +got):\n%s", diff)
	}
}

func TestText_EmptyWindow(t *testing.T) {
	res, err := dsl.Parse(`Window "Demo" (300,200) Layout Flow: End.`, dsl.Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got, want := Text(res.Window), "Window \"Demo\" (300, 200) Layout Flow\n"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := YAML(&buf, parseCalc(t)); err != nil {
		t.Fatalf("YAML() error = %v", err)
	}

	out := buf.String()
	for _, s := range []string{"type: window", "title: Calc", "kind: grid", "hgap: 5", "columns: 20", "type: radio"} {
		if !strings.Contains(out, s) {
			t.Errorf("YAML output missing %q:\n%s", s, out)
		}
	}

	var doc Node
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("YAML output does not decode: %v", err)
	}
	if len(doc.Items) != 4 {
		t.Fatalf("children = %d, want 4", len(doc.Items))
	}
	panel := doc.Items[1]
	if panel.Type != "panel" || len(panel.Items) != 2 {
		t.Errorf("panel = %+v", panel)
	}
	if panel.Layout.HGap != nil {
		t.Errorf("panel hgap = %v, want unset", *panel.Layout.HGap)
	}
}

func TestHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, parseCalc(t)); err != nil {
		t.Fatalf("RenderHTML() error = %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "<!doctype html>") {
		t.Errorf("missing doctype: %q", out[:min(len(out), 40)])
	}
	for _, s := range []string{
		"<title>Calc</title>",
		`<li class="guidl-panel">`,
		"Button &#34;1&#34;",
		`<li class="guidl-radio">`,
	} {
		if !strings.Contains(out, s) {
			t.Errorf("HTML output missing %q:\n%s", s, out)
		}
	}
	if got := strings.Count(out, "<li"); got != 9 {
		t.Errorf("list items = %d, want 9", got)
	}
}

func TestRender(t *testing.T) {
	w := parseCalc(t)

	tests := []struct {
		format Format
		prefix string
	}{
		{FormatText, `Window "Calc"`},
		{FormatYAML, "type: window"},
		{FormatHTML, "<!doctype html>"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Render(tt.format, w, &buf); err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if !strings.HasPrefix(buf.String(), tt.prefix) {
				t.Errorf("Render() = %q, want prefix %q", buf.String(), tt.prefix)
			}
		})
	}
}

func TestRender_Errors(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(FormatText, nil, &buf); !errors.HasCode(err, errors.ErrCodeExport) {
		t.Errorf("Render(nil) error = %v, want EXPORT_ERROR", err)
	}
	if err := Render(Format("pdf"), parseCalc(t), &buf); !errors.HasCode(err, errors.ErrCodeExport) {
		t.Errorf("Render(pdf) error = %v, want EXPORT_ERROR", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"text", FormatText, false},
		{"YAML", FormatYAML, false},
		{" html ", FormatHTML, false},
		{"", FormatText, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
