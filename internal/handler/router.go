package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/qaforge/internal/middleware"
)

type RouterDeps struct {
	System    *SystemHandler
	Documents *DocumentHandler
	TestCases *TestCaseHandler
	Scripts   *ScriptHandler
	CI        *CIHandler

	// RateWindow throttles the generation endpoints; zero disables it.
	RateWindow time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/health", deps.System.Health)
	api.DELETE("/reset", deps.System.Reset)

	api.POST("/documents/upload", deps.Documents.Upload)
	api.POST("/documents/upload_html", deps.Documents.UploadHTML)
	api.POST("/knowledge_base/build", deps.Documents.BuildKnowledgeBase)

	generate := api.Group("")
	if deps.RateWindow > 0 {
		generate.Use(middleware.RateLimit(deps.RateWindow))
	}
	generate.POST("/test_cases/generate", deps.TestCases.Generate)
	generate.POST("/scripts/generate", deps.Scripts.Generate)

	api.GET("/test_cases", deps.TestCases.List)
	api.GET("/scripts/:test_id", deps.Scripts.Download)

	api.POST("/ci/runs", deps.CI.Trigger)
	api.GET("/ci/runs/:id/status", deps.CI.Status)
	api.GET("/ci/runs/:id/logs", deps.CI.Logs)
	api.GET("/ci/runs/:id/artifacts", deps.CI.Artifacts)
}
