package parser

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/xxxsen/qaforge/internal/model"
)

// parseMarkdown walks the goldmark AST and flattens it to plain text: heading
// text kept, fenced code kept verbatim, block nodes separated by blank lines.
func parseMarkdown(fileName string, data []byte) (*Result, error) {
	md := goldmark.New()
	reader := text.NewReader(data)
	doc := md.Parser().Parse(reader)

	var parts []string
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			if txt := string(n.Text(data)); txt != "" {
				parts = append(parts, txt)
			}
		case *ast.FencedCodeBlock:
			var sb strings.Builder
			for i := 0; i < n.Lines().Len(); i++ {
				line := n.Lines().At(i)
				sb.Write(line.Value(data))
			}
			if code := strings.TrimRight(sb.String(), "\n"); code != "" {
				parts = append(parts, code)
			}
		default:
			if txt := extractText(node, data); txt != "" {
				parts = append(parts, txt)
			}
		}
	}
	return &Result{
		Document: model.Document{
			Content:  strings.Join(parts, "\n\n"),
			FileName: fileName,
			FileType: model.FileTypeMarkdown,
		},
	}, nil
}

func extractText(n ast.Node, source []byte) string {
	var sb strings.Builder
	ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if node.Type() == ast.TypeBlock || node.Type() == ast.TypeInline {
			if node.Kind() == ast.KindText {
				sb.Write(node.(*ast.Text).Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
