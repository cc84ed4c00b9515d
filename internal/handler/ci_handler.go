package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/qaforge/internal/ci"
	"github.com/xxxsen/qaforge/internal/pkg/errcode"
	"github.com/xxxsen/qaforge/internal/pkg/response"
)

type CIHandler struct {
	client *ci.Client
}

func NewCIHandler(client *ci.Client) *CIHandler {
	return &CIHandler{client: client}
}

type triggerRunRequest struct {
	TestID string `json:"test_id"`
	Script string `json:"script"`
}

func (h *CIHandler) Trigger(c *gin.Context) {
	var req triggerRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	if strings.TrimSpace(req.TestID) == "" || strings.TrimSpace(req.Script) == "" {
		response.ErrorWithStatus(c, http.StatusBadRequest, errcode.ErrInvalid, "test_id and script are required")
		return
	}
	run, err := h.client.Trigger(c.Request.Context(), req.TestID, req.Script)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, run)
}

func (h *CIHandler) Status(c *gin.Context) {
	h.proxy(c, h.client.Status)
}

func (h *CIHandler) Logs(c *gin.Context) {
	h.proxy(c, h.client.Logs)
}

func (h *CIHandler) Artifacts(c *gin.Context) {
	h.proxy(c, h.client.Artifacts)
}

func (h *CIHandler) proxy(c *gin.Context, fetch func(ctx context.Context, runID string) (json.RawMessage, error)) {
	runID := c.Param("id")
	if strings.TrimSpace(runID) == "" {
		response.ErrorWithStatus(c, http.StatusBadRequest, errcode.ErrInvalid, "run id is required")
		return
	}
	payload, err := fetch(c.Request.Context(), runID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, payload)
}
