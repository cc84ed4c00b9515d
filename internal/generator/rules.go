package generator

import "strings"

// inputValueRules picks a synthetic value for an input field by matching
// keywords against the lowercased element id. Rules are evaluated in order
// and the first match wins; every keyword in a rule must appear. Order
// matters: "username" sits above "name" so it is not shadowed by the
// broader keyword.
var inputValueRules = []struct {
	keywords []string
	value    string
}{
	{[]string{"coupon"}, "SAVE25"},
	{[]string{"email"}, "testuser@example.com"},
	{[]string{"password"}, "SecurePass123!"},
	{[]string{"phone"}, "+1-555-0123"},
	{[]string{"username"}, "testuser123"},
	{[]string{"name"}, "Test User"},
	{[]string{"card", "number"}, "4532123456789012"},
	{[]string{"expiry"}, "12/25"},
	{[]string{"exp"}, "12/25"},
	{[]string{"cvv"}, "123"},
}

const defaultInputValue = "test_value"

func inputValue(id string) string {
	low := strings.ToLower(id)
	for _, rule := range inputValueRules {
		matched := true
		for _, kw := range rule.keywords {
			if !strings.Contains(low, kw) {
				matched = false
				break
			}
		}
		if matched {
			return rule.value
		}
	}
	return defaultInputValue
}

// pageRoutes maps a keyword found in an uploaded page's file name to the
// sample folder the page is served from. A name matching no route is used
// as-is.
var pageRoutes = []struct {
	keyword string
	folder  string
}{
	{"enrollment", "third_sample"},
	{"checkout", "first_sample"},
	{"registration", "second_sample"},
}

func resolvePagePath(fileName string) string {
	low := strings.ToLower(fileName)
	for _, route := range pageRoutes {
		if strings.Contains(low, route.keyword) {
			return route.folder + "/" + fileName
		}
	}
	return fileName
}

// assertionRules selects verification blocks for a generated script by
// scanning the test case's scenario and feature text. A rule matches when
// any of its keywords appears; every matching rule contributes its block,
// in table order. No match at all emits assertDefault alone.
var assertionRules = []struct {
	keywords []string
	block    string
}{
	{[]string{"coupon", "discount"}, assertCoupon},
	{[]string{"enroll", "payment"}, assertEnrollment},
	{[]string{"registration", "register"}, assertRegistration},
	{[]string{"validation", "error"}, assertValidation},
}

func matchAssertions(scenario string, feature string) []string {
	haystack := strings.ToLower(scenario) + " " + strings.ToLower(feature)
	var blocks []string
	for _, rule := range assertionRules {
		for _, kw := range rule.keywords {
			if strings.Contains(haystack, kw) {
				blocks = append(blocks, rule.block)
				break
			}
		}
	}
	if len(blocks) == 0 {
		blocks = append(blocks, assertDefault)
	}
	return blocks
}
