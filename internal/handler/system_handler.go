package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/qaforge/internal/pkg/response"
	"github.com/xxxsen/qaforge/internal/service"
)

type SystemHandler struct {
	knowledge *service.KnowledgeService
	artifacts *service.ArtifactService
}

func NewSystemHandler(knowledge *service.KnowledgeService, artifacts *service.ArtifactService) *SystemHandler {
	return &SystemHandler{knowledge: knowledge, artifacts: artifacts}
}

func (h *SystemHandler) Health(c *gin.Context) {
	stats := h.knowledge.Stats(c.Request.Context())
	response.Success(c, gin.H{
		"status":               "healthy",
		"documents_loaded":     stats.Documents,
		"page_loaded":          stats.PageLoaded,
		"chunks_indexed":       stats.Chunks,
		"test_cases_generated": h.artifacts.CasesCount(),
	})
}

// Reset clears both services: the knowledge side drops documents, page and
// index, the artifact side drops cached rounds and remembered cases.
func (h *SystemHandler) Reset(c *gin.Context) {
	if err := h.knowledge.Reset(c.Request.Context()); err != nil {
		handleError(c, err)
		return
	}
	h.artifacts.Clear()
	response.Success(c, gin.H{"status": "reset"})
}
