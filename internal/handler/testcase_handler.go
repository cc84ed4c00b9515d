package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/qaforge/internal/pkg/errcode"
	"github.com/xxxsen/qaforge/internal/pkg/response"
	"github.com/xxxsen/qaforge/internal/service"
)

type TestCaseHandler struct {
	artifacts *service.ArtifactService
}

func NewTestCaseHandler(artifacts *service.ArtifactService) *TestCaseHandler {
	return &TestCaseHandler{artifacts: artifacts}
}

type generateTestCasesRequest struct {
	Query    string `json:"query"`
	NResults int    `json:"n_results"`
}

func (h *TestCaseHandler) Generate(c *gin.Context) {
	var req generateTestCasesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	batch, err := h.artifacts.GenerateTestCases(c.Request.Context(), req.Query, req.NResults)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, batch)
}

func (h *TestCaseHandler) List(c *gin.Context) {
	cases := h.artifacts.LastCases()
	response.Success(c, gin.H{"test_cases": cases, "count": len(cases)})
}
