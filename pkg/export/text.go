// Package export renders a parsed widget tree as a text outline, a YAML
// document or an HTML page.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/akam1o/guidl/pkg/dsl"
	"github.com/akam1o/guidl/pkg/errors"
)

// Format names an export format
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatHTML Format = "html"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatYAML, FormatHTML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", errors.New(
			errors.ErrCodeExport,
			fmt.Sprintf("Unknown export format: %s", s),
			"Supported formats are text, yaml and html",
			"Pass -format text, -format yaml or -format html",
		)
	}
}

// Render writes w in the given format
func Render(format Format, w *dsl.Window, out io.Writer) error {
	if w == nil {
		return errors.New(errors.ErrCodeExport, "Nothing to export", "No window was parsed", "Parse a valid file first")
	}

	var err error
	switch format {
	case FormatText, "":
		_, err = io.WriteString(out, Text(w))
	case FormatYAML:
		err = YAML(out, w)
	case FormatHTML:
		err = RenderHTML(out, w)
	default:
		_, err = ParseFormat(string(format))
		return err
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExport, fmt.Sprintf("Failed to export %s", format), "", "")
	}
	return nil
}

// Text returns an indented outline of the tree, one node per line.
// The outline is stable and is what history and diff compare.
func Text(w *dsl.Window) string {
	var sb strings.Builder
	dsl.Walk(w, func(n dsl.Widget, depth int) bool {
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(Describe(n))
		sb.WriteByte('\n')
		return true
	})
	return sb.String()
}

// Describe returns a one-line summary of a single node, children excluded
func Describe(n dsl.Widget) string {
	switch v := n.(type) {
	case *dsl.Window:
		return fmt.Sprintf("Window %s (%d, %d) Layout %s", strconv.Quote(v.Title), v.Width, v.Height, LayoutString(v.Layout))
	case *dsl.Panel:
		return "Panel Layout " + LayoutString(v.Layout)
	case *dsl.Group:
		return "Group"
	case *dsl.Button:
		return "Button " + strconv.Quote(v.Label)
	case *dsl.Label:
		return "Label " + strconv.Quote(v.Text)
	case *dsl.Textfield:
		return "Textfield " + strconv.Itoa(v.Columns)
	case *dsl.Radio:
		return "Radio " + strconv.Quote(v.Label)
	default:
		return "?"
	}
}

// LayoutString renders a layout spec in source notation
func LayoutString(l dsl.LayoutSpec) string {
	if l.Kind != dsl.LayoutGrid {
		return "Flow"
	}
	if l.HasGaps {
		return fmt.Sprintf("Grid(%d, %d, %d, %d)", l.Rows, l.Cols, l.HGap, l.VGap)
	}
	return fmt.Sprintf("Grid(%d, %d)", l.Rows, l.Cols)
}
