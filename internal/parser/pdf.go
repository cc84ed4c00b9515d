package parser

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/xxxsen/qaforge/internal/model"
)

// parsePDF pipes the file through the poppler pdftotext binary. Extraction
// failures surface as per-file parse errors so one bad pdf does not fail a
// whole upload batch.
func parsePDF(ctx context.Context, fileName string, data []byte) (*Result, error) {
	cmd := exec.CommandContext(ctx, "pdftotext", "-", "-")
	cmd.Stdin = bytes.NewReader(data)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("pdftotext: %w", err)
		}
		return nil, fmt.Errorf("pdftotext: %w: %s", err, msg)
	}
	return &Result{
		Document: model.Document{
			Content:  stdout.String(),
			FileName: fileName,
			FileType: model.FileTypePDF,
		},
	}, nil
}
