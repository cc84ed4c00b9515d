package model

const (
	FileTypeMarkdown = "markdown"
	FileTypeText     = "text"
	FileTypeJSON     = "json"
	FileTypePDF      = "pdf"
	FileTypeHTML     = "html"
)

// Document is the parser output fed into the retrieval pipeline. Content is
// normalized plain text; FileName doubles as the provenance key for chunks.
type Document struct {
	Content  string `json:"content"`
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
}
