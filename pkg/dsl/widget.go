package dsl

// WidgetKind identifies a node variant in the widget tree
type WidgetKind string

const (
	WidgetWindow    WidgetKind = "window"
	WidgetPanel     WidgetKind = "panel"
	WidgetGroup     WidgetKind = "group"
	WidgetButton    WidgetKind = "button"
	WidgetTextfield WidgetKind = "textfield"
	WidgetLabel     WidgetKind = "label"
	WidgetRadio     WidgetKind = "radio"
)

// Widget is a node of the widget tree
type Widget interface {
	WidgetKind() WidgetKind
}

// LayoutKind selects the layout manager of a container
type LayoutKind string

const (
	LayoutFlow LayoutKind = "flow"
	LayoutGrid LayoutKind = "grid"
)

// LayoutSpec describes the layout manager of a window or panel
type LayoutSpec struct {
	Kind LayoutKind `json:"kind"`

	// Grid parameters; zero for flow layouts
	Rows int `json:"rows,omitempty"`
	Cols int `json:"cols,omitempty"`

	// HasGaps is set when the optional hgap/vgap pair was given
	HasGaps bool `json:"has_gaps,omitempty"`
	HGap    int  `json:"hgap,omitempty"`
	VGap    int  `json:"vgap,omitempty"`
}

// FlowLayout returns a flow layout spec
func FlowLayout() LayoutSpec {
	return LayoutSpec{Kind: LayoutFlow}
}

// GridLayout returns a grid layout spec without gaps
func GridLayout(rows, cols int) LayoutSpec {
	return LayoutSpec{Kind: LayoutGrid, Rows: rows, Cols: cols}
}

// GridLayoutWithGaps returns a grid layout spec with horizontal and vertical gaps
func GridLayoutWithGaps(rows, cols, hgap, vgap int) LayoutSpec {
	return LayoutSpec{Kind: LayoutGrid, Rows: rows, Cols: cols, HasGaps: true, HGap: hgap, VGap: vgap}
}

// Window is the root of a successfully parsed description
type Window struct {
	Title    string
	Width    int
	Height   int
	Layout   LayoutSpec
	Children []Widget
}

// Panel is a nested container with its own layout
type Panel struct {
	Layout   LayoutSpec
	Children []Widget
}

// Group holds mutually exclusive radio buttons
type Group struct {
	Radios []*Radio
}

// Button carries its label
type Button struct {
	Label string
}

// Textfield carries the initial column count
type Textfield struct {
	Columns int
}

// Label carries its text
type Label struct {
	Text string
}

// Radio is a radio button inside a Group
type Radio struct {
	Label string
}

func (*Window) WidgetKind() WidgetKind    { return WidgetWindow }
func (*Panel) WidgetKind() WidgetKind     { return WidgetPanel }
func (*Group) WidgetKind() WidgetKind     { return WidgetGroup }
func (*Button) WidgetKind() WidgetKind    { return WidgetButton }
func (*Textfield) WidgetKind() WidgetKind { return WidgetTextfield }
func (*Label) WidgetKind() WidgetKind     { return WidgetLabel }
func (*Radio) WidgetKind() WidgetKind     { return WidgetRadio }

// container accepts newly parsed children; it is the insertion point
// handed down through the recursive rules
type container interface {
	Widget
	add(Widget)
}

func (w *Window) add(child Widget) { w.Children = append(w.Children, child) }
func (p *Panel) add(child Widget)  { p.Children = append(p.Children, child) }

// add accepts only radio buttons; the grammar never hands it anything else
func (g *Group) add(child Widget) {
	if r, ok := child.(*Radio); ok {
		g.Radios = append(g.Radios, r)
	}
}

// leafRule describes a single-argument leaf widget: KEYWORD <arg> ';'
type leafRule struct {
	rule  string
	arg   Kind
	field string
	build func(lexeme string, n int) Widget
}

// leafRules maps leaf keywords to their builders; resolved at compile time
var leafRules = map[Kind]leafRule{
	KindButton: {
		rule:  "Button",
		arg:   KindString,
		build: func(s string, _ int) Widget { return &Button{Label: s} },
	},
	KindLabel: {
		rule:  "Label",
		arg:   KindString,
		build: func(s string, _ int) Widget { return &Label{Text: s} },
	},
	KindTextfield: {
		rule:  "Textfield",
		arg:   KindNumber,
		field: "textfield size",
		build: func(_ string, n int) Widget { return &Textfield{Columns: n} },
	},
	KindRadio: {
		rule:  "RadioButton",
		arg:   KindString,
		build: func(s string, _ int) Widget { return &Radio{Label: s} },
	},
}

// Walk visits w and its descendants depth-first in source order.
// Returning false from fn skips the children of that node.
func Walk(w Widget, fn func(w Widget, depth int) bool) {
	walk(w, 0, fn)
}

func walk(w Widget, depth int, fn func(Widget, int) bool) {
	if w == nil || !fn(w, depth) {
		return
	}
	switch n := w.(type) {
	case *Window:
		for _, c := range n.Children {
			walk(c, depth+1, fn)
		}
	case *Panel:
		for _, c := range n.Children {
			walk(c, depth+1, fn)
		}
	case *Group:
		for _, r := range n.Radios {
			walk(r, depth+1, fn)
		}
	}
}

// CountWidgets returns the number of nodes per kind, including the root
func CountWidgets(w Widget) map[WidgetKind]int {
	counts := make(map[WidgetKind]int)
	Walk(w, func(n Widget, _ int) bool {
		counts[n.WidgetKind()]++
		return true
	})
	return counts
}
