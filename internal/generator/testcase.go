package generator

import (
	"fmt"

	"github.com/xxxsen/qaforge/internal/model"
)

// templateTestCases builds the fixed five-case suite for a query: basic
// functionality, edge cases, error handling, performance and data
// validation, in that order.
func templateTestCases(query string, contextDocs []model.ContextResult) []model.TestCase {
	ground := groundedIn(contextDocs)
	return []model.TestCase{
		{
			TestID:         "TC-001",
			Feature:        fmt.Sprintf("Basic %s Functionality", query),
			Scenario:       fmt.Sprintf("Verify that %s works as expected", query),
			ExpectedResult: fmt.Sprintf("System should successfully handle %s", query),
			GroundedIn:     ground,
		},
		{
			TestID:         "TC-002",
			Feature:        fmt.Sprintf("%s Edge Cases", query),
			Scenario:       fmt.Sprintf("Test %s with boundary conditions", query),
			ExpectedResult: "System should handle edge cases gracefully",
			GroundedIn:     ground,
		},
		{
			TestID:         "TC-003",
			Feature:        fmt.Sprintf("%s Error Handling", query),
			Scenario:       fmt.Sprintf("Verify error handling for %s", query),
			ExpectedResult: "System should display appropriate error messages",
			GroundedIn:     ground,
		},
		{
			TestID:         "TC-004",
			Feature:        fmt.Sprintf("%s Performance", query),
			Scenario:       fmt.Sprintf("Verify %s completes within acceptable time", query),
			ExpectedResult: "Operation should complete in less than 3 seconds",
			GroundedIn:     ground,
		},
		{
			TestID:         "TC-005",
			Feature:        fmt.Sprintf("%s Data Validation", query),
			Scenario:       fmt.Sprintf("Test input validation for %s", query),
			ExpectedResult: "System should reject invalid inputs",
			GroundedIn:     ground,
		},
	}
}

// groundedIn returns the first two distinct source files of the context in
// order of first appearance, or ["documentation"] when there is no context.
func groundedIn(contextDocs []model.ContextResult) []string {
	files := make([]string, 0, 2)
	seen := make(map[string]struct{})
	for _, doc := range contextDocs {
		name := doc.Metadata.SourceFile
		if name == "" {
			name = "unknown"
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		files = append(files, name)
		if len(files) == 2 {
			break
		}
	}
	if len(files) == 0 {
		return []string{"documentation"}
	}
	return files
}
