package model

// TestCase is one generated QA test record. GroundedIn lists up to two
// source files the backing context came from, or ["documentation"] when the
// context was empty.
type TestCase struct {
	TestID         string   `json:"test_id"`
	Feature        string   `json:"feature"`
	Scenario       string   `json:"scenario"`
	ExpectedResult string   `json:"expected_result"`
	GroundedIn     []string `json:"grounded_in"`
}
