package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	resp    string
	err     error
	prompts []string
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.resp, nil
}

func TestModelTestCasesParsesJSON(t *testing.T) {
	llm := &fakeLLM{resp: "```json\n[" +
		`{"feature": "Coupon Entry", "scenario": "Apply a valid coupon", "expected_result": "Total drops by 25 percent"},` +
		`{"feature": "Coupon Rejection", "scenario": "Apply an expired coupon", "expected_result": "Error shown"}` +
		"]\n```"}
	g := New(llm, 0)

	out := g.GenerateTestCases(context.Background(), "coupon", contextFrom("checkout.md", "pricing.md"))
	require.Equal(t, SourceModel, out.Source)
	require.Len(t, out.Cases, 2)
	require.Equal(t, "TC-001", out.Cases[0].TestID)
	require.Equal(t, "Coupon Entry", out.Cases[0].Feature)
	require.Equal(t, "TC-002", out.Cases[1].TestID)
	require.Equal(t, []string{"checkout.md", "pricing.md"}, out.Cases[0].GroundedIn)
}

func TestModelTestCasesPromptEmbedsContext(t *testing.T) {
	llm := &fakeLLM{resp: `[{"feature": "F", "scenario": "S", "expected_result": "E"}]`}
	g := New(llm, 0)

	g.GenerateTestCases(context.Background(), "login flow", contextFrom("guide.md"))
	require.Len(t, llm.prompts, 1)
	require.Contains(t, llm.prompts[0], "generate detailed test cases for: login flow")
	require.Contains(t, llm.prompts[0], "Source: guide.md")
	require.Contains(t, llm.prompts[0], "content of guide.md")
}

func TestModelTestCasesSkipsBlankEntries(t *testing.T) {
	llm := &fakeLLM{resp: `[` +
		`{"feature": "", "scenario": "", "expected_result": "ignored"},` +
		`{"feature": "Login", "scenario": "Submit valid credentials", "expected_result": ""}` +
		`]`}
	g := New(llm, 0)

	out := g.GenerateTestCases(context.Background(), "login", nil)
	require.Equal(t, SourceModel, out.Source)
	require.Len(t, out.Cases, 1)
	require.Equal(t, "TC-001", out.Cases[0].TestID)
	require.Equal(t, "Login", out.Cases[0].Feature)
	require.Equal(t, "Should work as described", out.Cases[0].ExpectedResult)
}

func TestModelTestCasesLineScanRecovery(t *testing.T) {
	llm := &fakeLLM{resp: "Sure, here are the cases:\n" +
		`"test_id": TC-1 verify the login form` + "\n" +
		"some filler text\n" +
		`"feature": logout handling` + "\n"}
	g := New(llm, 0)

	out := g.GenerateTestCases(context.Background(), "login", nil)
	require.Equal(t, SourceModel, out.Source)
	require.Len(t, out.Cases, 2)
	require.Equal(t, "Generated Feature", out.Cases[0].Feature)
	require.Equal(t, `"test_id": TC-1 verify the login form`, out.Cases[0].Scenario)
	require.Equal(t, "Should work as described", out.Cases[0].ExpectedResult)
}

func TestModelFailureFallsBackToTemplates(t *testing.T) {
	g := New(&fakeLLM{err: context.DeadlineExceeded}, 0)

	out := g.GenerateTestCases(context.Background(), "login", nil)
	require.Equal(t, SourceTemplate, out.Source)
	require.Len(t, out.Cases, 5)
}

func TestUnparseableOutputFallsBackToTemplates(t *testing.T) {
	g := New(&fakeLLM{resp: "I cannot help with that."}, 0)

	out := g.GenerateTestCases(context.Background(), "login", nil)
	require.Equal(t, SourceTemplate, out.Source)
	require.Len(t, out.Cases, 5)
	require.Equal(t, "TC-001", out.Cases[0].TestID)
}
