package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Fieldset: true, atom.Figcaption: true, atom.Figure: true, atom.Footer: true,
	atom.Form: true, atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true, atom.Header: true,
	atom.Hr: true, atom.Li: true, atom.Main: true, atom.Nav: true,
	atom.Ol: true, atom.P: true, atom.Pre: true, atom.Section: true,
	atom.Table: true, atom.Tr: true, atom.Ul: true,
}

var skippedElements = map[atom.Atom]bool{
	atom.Head: true, atom.Script: true, atom.Style: true,
	atom.Template: true, atom.Noscript: true,
}

// InnerText approximates the browser's innerText for a parsed node without
// layout. Block elements require one line break around them and <p> two;
// adjacent requirements merge into the largest, and leading or trailing ones
// are dropped. <br> is a literal line break. Runs of whitespace collapse to
// one space and are trimmed at line edges.
func InnerText(n *html.Node) string {
	var w innerTextWriter
	w.walk(n)
	w.endLine()
	return w.out.String()
}

type innerTextWriter struct {
	out     strings.Builder
	line    strings.Builder
	pending int
}

func (w *innerTextWriter) started() bool {
	return w.out.Len() > 0 || strings.TrimSpace(w.line.String()) != ""
}

func (w *innerTextWriter) requireBreaks(n int) {
	if w.started() && n > w.pending {
		w.pending = n
	}
}

func (w *innerTextWriter) endLine() {
	w.out.WriteString(strings.Join(strings.Fields(w.line.String()), " "))
	w.line.Reset()
}

func (w *innerTextWriter) flushBreaks() {
	if w.pending == 0 {
		return
	}
	w.endLine()
	w.out.WriteString(strings.Repeat("\n", w.pending))
	w.pending = 0
}

func (w *innerTextWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" && w.pending > 0 {
			return
		}
		w.flushBreaks()
		w.line.WriteString(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		if skippedElements[n.DataAtom] {
			return
		}
		if n.DataAtom == atom.Br {
			w.flushBreaks()
			w.endLine()
			w.out.WriteByte('\n')
			return
		}
	}

	breaks := 0
	if n.Type == html.ElementNode && blockElements[n.DataAtom] {
		breaks = 1
		if n.DataAtom == atom.P {
			breaks = 2
		}
	}
	w.requireBreaks(breaks)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
	w.requireBreaks(breaks)
}
