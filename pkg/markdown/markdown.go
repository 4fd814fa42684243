// Package markdown extracts note metadata from markdown bodies.
package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	gm_ast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Title returns the plain text of the first level-one heading in body, or ""
// when there is none. Inline markup is dropped; code spans keep their text.
func Title(body string) string {
	src := []byte(body)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var title string
	_ = gm_ast.Walk(doc, func(n gm_ast.Node, entering bool) (gm_ast.WalkStatus, error) {
		if !entering {
			return gm_ast.WalkContinue, nil
		}
		h, ok := n.(*gm_ast.Heading)
		if !ok {
			return gm_ast.WalkContinue, nil
		}
		if h.Level != 1 {
			return gm_ast.WalkSkipChildren, nil
		}
		title = inlineText(h, src)
		if title == "" {
			return gm_ast.WalkSkipChildren, nil
		}
		return gm_ast.WalkStop, nil
	})
	return title
}

func inlineText(n gm_ast.Node, src []byte) string {
	var b strings.Builder
	_ = gm_ast.Walk(n, func(c gm_ast.Node, entering bool) (gm_ast.WalkStatus, error) {
		if !entering {
			return gm_ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gm_ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *gm_ast.String:
			b.Write(t.Value)
		}
		return gm_ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(b.String()), " ")
}
