package model

// Chunk is the unit of indexing: a bounded, overlapping substring of one
// document. ChunkID is "<file_name>_<index>" and is unique within a build
// unless two documents share a file name.
type Chunk struct {
	Content    string `json:"content"`
	ChunkID    string `json:"chunk_id"`
	SourceFile string `json:"source_file"`
	FileType   string `json:"file_type"`
	ChunkIndex int    `json:"chunk_index"`
}

// ChunkMeta is the metadata record stored next to each indexed vector.
type ChunkMeta struct {
	SourceFile string `json:"source_file"`
	FileType   string `json:"file_type"`
	ChunkIndex int    `json:"chunk_index"`
}

// ContextResult is the read projection returned by a retrieval query,
// in store ranking order.
type ContextResult struct {
	Content  string    `json:"content"`
	Metadata ChunkMeta `json:"metadata"`
}
