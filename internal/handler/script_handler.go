package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/qaforge/internal/generator"
	"github.com/xxxsen/qaforge/internal/model"
	"github.com/xxxsen/qaforge/internal/pkg/errcode"
	"github.com/xxxsen/qaforge/internal/pkg/response"
	"github.com/xxxsen/qaforge/internal/service"
)

type ScriptHandler struct {
	knowledge *service.KnowledgeService
	artifacts *service.ArtifactService
}

func NewScriptHandler(knowledge *service.KnowledgeService, artifacts *service.ArtifactService) *ScriptHandler {
	return &ScriptHandler{knowledge: knowledge, artifacts: artifacts}
}

type generateScriptRequest struct {
	TestCase *model.TestCase `json:"test_case"`
}

func (h *ScriptHandler) Generate(c *gin.Context) {
	var req generateScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.TestCase == nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, errcode.ErrInvalid, "test_case is required")
		return
	}
	art := h.artifacts.GenerateScript(c.Request.Context(), *req.TestCase, h.knowledge.Page())
	response.Success(c, art)
}

// Download streams the stored script as a python file rather than wrapping it
// in the JSON envelope.
func (h *ScriptHandler) Download(c *gin.Context) {
	testID := c.Param("test_id")
	script, err := h.artifacts.Script(c.Request.Context(), testID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.Header("Content-Type", "text/x-python; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", generator.ScriptFileName(testID)))
	c.String(http.StatusOK, script)
}
