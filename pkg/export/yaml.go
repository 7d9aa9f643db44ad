package export

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/akam1o/guidl/pkg/dsl"
)

// Node is the serializable form of a widget
type Node struct {
	Type    string      `yaml:"type"`
	Title   *string     `yaml:"title,omitempty"`
	Width   *int        `yaml:"width,omitempty"`
	Height  *int        `yaml:"height,omitempty"`
	Layout  *LayoutNode `yaml:"layout,omitempty"`
	Text    *string     `yaml:"text,omitempty"`
	Columns *int        `yaml:"columns,omitempty"`
	Items   []Node      `yaml:"children,omitempty"`
}

// LayoutNode is the serializable form of a layout spec
type LayoutNode struct {
	Kind string `yaml:"kind"`
	Rows int    `yaml:"rows,omitempty"`
	Cols int    `yaml:"cols,omitempty"`
	HGap *int   `yaml:"hgap,omitempty"`
	VGap *int   `yaml:"vgap,omitempty"`
}

// ToNode converts a widget subtree
func ToNode(w dsl.Widget) Node {
	n := Node{Type: string(w.WidgetKind())}

	switch v := w.(type) {
	case *dsl.Window:
		n.Title = &v.Title
		n.Width = &v.Width
		n.Height = &v.Height
		n.Layout = toLayoutNode(v.Layout)
		n.Items = toNodes(v.Children)
	case *dsl.Panel:
		n.Layout = toLayoutNode(v.Layout)
		n.Items = toNodes(v.Children)
	case *dsl.Group:
		for _, r := range v.Radios {
			n.Items = append(n.Items, ToNode(r))
		}
	case *dsl.Button:
		n.Text = &v.Label
	case *dsl.Label:
		n.Text = &v.Text
	case *dsl.Radio:
		n.Text = &v.Label
	case *dsl.Textfield:
		n.Columns = &v.Columns
	}
	return n
}

func toNodes(children []dsl.Widget) []Node {
	if len(children) == 0 {
		return nil
	}
	out := make([]Node, 0, len(children))
	for _, c := range children {
		out = append(out, ToNode(c))
	}
	return out
}

func toLayoutNode(l dsl.LayoutSpec) *LayoutNode {
	ln := &LayoutNode{Kind: string(dsl.LayoutFlow)}
	if l.Kind != dsl.LayoutGrid {
		return ln
	}
	ln.Kind = string(dsl.LayoutGrid)
	ln.Rows = l.Rows
	ln.Cols = l.Cols
	if l.HasGaps {
		hgap, vgap := l.HGap, l.VGap
		ln.HGap = &hgap
		ln.VGap = &vgap
	}
	return ln
}

// YAML writes the tree as a YAML document
func YAML(out io.Writer, w *dsl.Window) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(ToNode(w)); err != nil {
		return err
	}
	return enc.Close()
}
