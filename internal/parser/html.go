package parser

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/xxxsen/qaforge/internal/model"
)

// parseHTML extracts the visible text for retrieval and the page structure
// (ids, inputs, buttons, checkboxes, links) for script synthesis.
func parseHTML(fileName string, data []byte) (*Result, error) {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	page := &model.PageStructure{FileName: fileName}
	classSet := make(map[string]struct{})
	var texts []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if n.Data == "script" || n.Data == "style" {
				return
			}
			attrs := attrMap(n)
			if id := attrs["id"]; id != "" {
				page.IDs = append(page.IDs, id)
			}
			for _, cls := range strings.Fields(attrs["class"]) {
				classSet[cls] = struct{}{}
			}
			switch n.Data {
			case "button":
				if attrs["id"] != "" {
					page.Buttons = append(page.Buttons, attrs["id"])
				}
			case "input":
				typ := attrs["type"]
				if typ == "" {
					typ = "text"
				}
				if typ == "checkbox" {
					if attrs["id"] != "" {
						page.Checkboxes = append(page.Checkboxes, attrs["id"])
					}
				} else {
					page.Inputs = append(page.Inputs, model.PageInput{
						ID:   attrs["id"],
						Name: attrs["name"],
						Type: typ,
					})
				}
			case "a":
				page.Links = append(page.Links, model.PageLink{
					Text: strings.TrimSpace(nodeText(n)),
					Href: attrs["href"],
				})
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				texts = append(texts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	page.Classes = make([]string, 0, len(classSet))
	for cls := range classSet {
		page.Classes = append(page.Classes, cls)
	}
	sort.Strings(page.Classes)

	return &Result{
		Document: model.Document{
			Content:  strings.Join(texts, "\n"),
			FileName: fileName,
			FileType: model.FileTypeHTML,
		},
		Page: page,
	}, nil
}

func attrMap(n *html.Node) map[string]string {
	attrs := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		attrs[a.Key] = a.Val
	}
	return attrs
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
