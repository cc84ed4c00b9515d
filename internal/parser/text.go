package parser

import (
	"encoding/json"
	"fmt"

	"github.com/xxxsen/qaforge/internal/model"
)

func parseText(fileName string, data []byte) (*Result, error) {
	return &Result{
		Document: model.Document{
			Content:  string(data),
			FileName: fileName,
			FileType: model.FileTypeText,
		},
	}, nil
}

// parseJSON validates the payload and stores the 2-space indented re-encoding
// so equivalent files chunk identically regardless of original formatting.
func parseJSON(fileName string, data []byte) (*Result, error) {
	var payload interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	pretty, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return &Result{
		Document: model.Document{
			Content:  string(pretty),
			FileName: fileName,
			FileType: model.FileTypeJSON,
		},
	}, nil
}
