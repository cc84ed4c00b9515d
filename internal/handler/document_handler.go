package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/qaforge/internal/pkg/errcode"
	"github.com/xxxsen/qaforge/internal/pkg/response"
	"github.com/xxxsen/qaforge/internal/service"
)

type DocumentHandler struct {
	knowledge      *service.KnowledgeService
	artifacts      *service.ArtifactService
	maxUploadBytes int64
}

func NewDocumentHandler(knowledge *service.KnowledgeService, artifacts *service.ArtifactService, maxUploadBytes int64) *DocumentHandler {
	return &DocumentHandler{knowledge: knowledge, artifacts: artifacts, maxUploadBytes: maxUploadBytes}
}

func (h *DocumentHandler) tooLarge(size int64) bool {
	return h.maxUploadBytes > 0 && size > h.maxUploadBytes
}

// Upload takes a multipart batch under the repeated "files" field. A batch
// succeeds when at least one file parses; individual failures, including
// oversized files, are reported alongside the counts.
func (h *DocumentHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, errcode.ErrInvalidFile, "multipart form is required")
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		response.ErrorWithStatus(c, http.StatusBadRequest, errcode.ErrInvalidFile, "files field is required")
		return
	}
	var rejected []string
	files := make([]service.UploadFile, 0, len(headers))
	for _, fh := range headers {
		if h.tooLarge(fh.Size) {
			rejected = append(rejected, fmt.Sprintf("%s: exceeds upload limit of %s", fh.Filename, formatUploadLimit(h.maxUploadBytes)))
			continue
		}
		data, err := readUpload(fh)
		if err != nil {
			response.ErrorWithStatus(c, http.StatusBadRequest, errcode.ErrUploadFailed, fmt.Sprintf("read %s failed", fh.Filename))
			return
		}
		files = append(files, service.UploadFile{Name: filepath.Base(fh.Filename), Data: data})
	}
	out := h.knowledge.AddDocuments(c.Request.Context(), files)
	out.Total = len(headers)
	out.Errors = append(rejected, out.Errors...)
	if out.Parsed == 0 {
		msg := "no valid documents processed"
		if len(out.Errors) > 0 {
			msg += ": " + strings.Join(out.Errors, "; ")
		}
		response.ErrorWithStatus(c, http.StatusBadRequest, errcode.ErrInvalidFile, msg)
		return
	}
	response.Success(c, out)
}

// UploadHTML replaces the current page structure with the one parsed from the
// posted file.
func (h *DocumentHandler) UploadHTML(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, errcode.ErrInvalidFile, "file is required")
		return
	}
	if h.tooLarge(fh.Size) {
		response.ErrorWithStatus(c, http.StatusBadRequest, errcode.ErrInvalidFile,
			fmt.Sprintf("%s exceeds upload limit of %s", fh.Filename, formatUploadLimit(h.maxUploadBytes)))
		return
	}
	data, err := readUpload(fh)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, errcode.ErrUploadFailed, fmt.Sprintf("read %s failed", fh.Filename))
		return
	}
	page, err := h.knowledge.SetPage(c.Request.Context(), service.UploadFile{Name: filepath.Base(fh.Filename), Data: data})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"file_name": page.FileName,
		"elements_found": gin.H{
			"ids":        len(page.IDs),
			"classes":    len(page.Classes),
			"buttons":    len(page.Buttons),
			"inputs":     len(page.Inputs),
			"checkboxes": len(page.Checkboxes),
			"links":      len(page.Links),
		},
	})
}

// BuildKnowledgeBase indexes the uploaded batch. Cached generation rounds are
// invalidated because they were produced against the old index.
func (h *DocumentHandler) BuildKnowledgeBase(c *gin.Context) {
	docs, chunks, err := h.knowledge.Build(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	h.artifacts.InvalidateCache()
	response.Success(c, gin.H{
		"documents_processed": docs,
		"chunks_created":      chunks,
	})
}
