package errcode

const (
	ErrUnknown = 11000000 + iota
	ErrInvalid
	ErrNotFound
	ErrTooMany
	ErrInternal
	ErrInvalidFile
	ErrUnsupportedFile
	ErrUploadFailed
	ErrKnowledgeBaseEmpty
	ErrStoreNotReady
	ErrAIUnavailable
	ErrCIUnavailable
)
