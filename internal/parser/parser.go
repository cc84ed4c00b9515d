// Package parser turns uploaded files into plain-text documents ready for
// chunking. HTML files additionally yield the page structure used by script
// synthesis.
package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xxxsen/qaforge/internal/model"
	apperrors "github.com/xxxsen/qaforge/internal/pkg/errors"
)

type Result struct {
	Document model.Document
	Page     *model.PageStructure
}

func Parse(ctx context.Context, fileName string, data []byte) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".md", ".markdown":
		return parseMarkdown(fileName, data)
	case ".txt":
		return parseText(fileName, data)
	case ".json":
		return parseJSON(fileName, data)
	case ".pdf":
		return parsePDF(ctx, fileName, data)
	case ".html", ".htm":
		return parseHTML(fileName, data)
	default:
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFile, fileName)
	}
}

// Supported reports whether the file extension maps to a known parser.
func Supported(fileName string) bool {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".md", ".markdown", ".txt", ".json", ".pdf", ".html", ".htm":
		return true
	}
	return false
}
