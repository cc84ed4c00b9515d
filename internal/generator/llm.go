package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xxxsen/qaforge/internal/model"
)

type parsedCase struct {
	Feature        string `json:"feature"`
	Scenario       string `json:"scenario"`
	ExpectedResult string `json:"expected_result"`
}

func (g *Generator) modelTestCases(ctx context.Context, query string, contextDocs []model.ContextResult) ([]model.TestCase, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	resp, err := g.llm.Generate(ctx, buildPrompt(query, contextDocs))
	if err != nil {
		return nil, err
	}
	return parseTestCases(resp, groundedIn(contextDocs))
}

func buildPrompt(query string, contextDocs []model.ContextResult) string {
	sections := make([]string, 0, len(contextDocs))
	for _, doc := range contextDocs {
		name := doc.Metadata.SourceFile
		if name == "" {
			name = "unknown"
		}
		sections = append(sections, fmt.Sprintf("Source: %s\n%s", name, doc.Content))
	}
	return fmt.Sprintf(`Based on the following documentation, generate detailed test cases for: %s

Documentation:
%s

Return a JSON array of test case objects with this structure:
[{"feature": "Feature name", "scenario": "Test scenario description", "expected_result": "Expected outcome"}]
- Generate 3-5 test cases.
- Return the JSON array only. No extra text.`, query, strings.Join(sections, "\n\n"))
}

// parseTestCases recovers test cases from a model response. It first tries
// the JSON array the prompt asks for, then falls back to scanning for lines
// that mention test case keys. Ids are reassigned sequentially and every
// case is grounded in the retrieval context rather than whatever the model
// claims.
func parseTestCases(output string, ground []string) ([]model.TestCase, error) {
	clean := strings.TrimSpace(output)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	var parsed []parsedCase
	start := strings.Index(clean, "[")
	end := strings.LastIndex(clean, "]")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(clean[start:end+1]), &parsed); err != nil {
			parsed = nil
		}
	}
	if len(parsed) == 0 {
		parsed = scanTestCases(clean)
	}

	cases := make([]model.TestCase, 0, len(parsed))
	for _, pc := range parsed {
		feature := strings.TrimSpace(pc.Feature)
		scenario := strings.TrimSpace(pc.Scenario)
		if feature == "" && scenario == "" {
			continue
		}
		expected := strings.TrimSpace(pc.ExpectedResult)
		if expected == "" {
			expected = "Should work as described"
		}
		cases = append(cases, model.TestCase{
			TestID:         fmt.Sprintf("TC-%03d", len(cases)+1),
			Feature:        feature,
			Scenario:       scenario,
			ExpectedResult: expected,
			GroundedIn:     ground,
		})
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("no test cases found in model output")
	}
	return cases, nil
}

// scanTestCases is the loose recovery path for output that is not valid
// JSON: any line naming a test case key becomes one case, with the line
// itself kept as the scenario.
func scanTestCases(text string) []parsedCase {
	var parsed []parsedCase
	for _, line := range strings.Split(text, "\n") {
		low := strings.ToLower(line)
		if !strings.Contains(low, `"test_id"`) && !strings.Contains(low, `"feature"`) {
			continue
		}
		parsed = append(parsed, parsedCase{
			Feature:        "Generated Feature",
			Scenario:       strings.TrimSpace(line),
			ExpectedResult: "Should work as described",
		})
	}
	return parsed
}
