package export

import (
	"io"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"github.com/akam1o/guidl/pkg/dsl"
)

// HTML builds a standalone page with a nested list outline of the tree
func HTML(w *dsl.Window) g.Node {
	return h.Doctype(
		h.HTML(
			h.Head(
				h.Meta(h.Charset("utf-8")),
				h.TitleEl(g.Text(w.Title)),
			),
			h.Body(
				h.H1(g.Text(w.Title)),
				h.Ul(h.Class("guidl-tree"), widgetItem(w)),
			),
		),
	)
}

// RenderHTML writes the HTML page for w
func RenderHTML(out io.Writer, w *dsl.Window) error {
	return HTML(w).Render(out)
}

func widgetItem(n dsl.Widget) g.Node {
	children := childrenOf(n)
	return h.Li(
		h.Class("guidl-"+string(n.WidgetKind())),
		h.Span(g.Text(Describe(n))),
		g.If(len(children) > 0, h.Ul(g.Map(children, widgetItem))),
	)
}

func childrenOf(n dsl.Widget) []dsl.Widget {
	switch v := n.(type) {
	case *dsl.Window:
		return v.Children
	case *dsl.Panel:
		return v.Children
	case *dsl.Group:
		out := make([]dsl.Widget, 0, len(v.Radios))
		for _, r := range v.Radios {
			out = append(out, r)
		}
		return out
	}
	return nil
}
