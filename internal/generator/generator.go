package generator

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/qaforge/internal/ai"
	"github.com/xxxsen/qaforge/internal/model"
)

// Source values recorded on an Outcome.
const (
	SourceModel    = "model"
	SourceTemplate = "template"
)

// Outcome is the result of a test case generation request. Source tells the
// caller which path produced the cases, so the fallback is a normal value
// instead of a swallowed error.
type Outcome struct {
	Cases  []model.TestCase `json:"cases"`
	Source string           `json:"source"`
}

// Generator produces QA artifacts from a query and retrieved context. The
// language model is optional; without one every request takes the template
// path.
type Generator struct {
	llm     ai.IGenerator
	timeout time.Duration
}

func New(llm ai.IGenerator, timeout time.Duration) *Generator {
	return &Generator{llm: llm, timeout: timeout}
}

// GenerateTestCases returns test cases for the query. When a language model
// is configured it is tried first; a generation or parse failure falls back
// to the deterministic templates and is never surfaced as an error.
func (g *Generator) GenerateTestCases(ctx context.Context, query string, contextDocs []model.ContextResult) Outcome {
	if g.llm == nil {
		return Outcome{Cases: templateTestCases(query, contextDocs), Source: SourceTemplate}
	}
	cases, err := g.modelTestCases(ctx, query, contextDocs)
	if err != nil {
		logutil.GetLogger(ctx).Warn("model test case generation failed, falling back to templates",
			zap.String("query", query), zap.Error(err))
		return Outcome{Cases: templateTestCases(query, contextDocs), Source: SourceTemplate}
	}
	return Outcome{Cases: cases, Source: SourceModel}
}

// GenerateSeleniumScript renders a runnable selenium test for one test case.
// The output is a pure function of its arguments; identical inputs yield
// byte-identical script text.
func (g *Generator) GenerateSeleniumScript(tc model.TestCase, page *model.PageStructure) string {
	return buildSeleniumScript(tc, page)
}
