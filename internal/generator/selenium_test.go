package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/qaforge/internal/model"
)

func checkoutPage() *model.PageStructure {
	return &model.PageStructure{
		FileName: "checkout_page.html",
		Inputs: []model.PageInput{
			{ID: "coupon-code", Type: "text"},
			{ID: "email", Type: "email"},
		},
		Checkboxes: []string{"terms"},
		Buttons:    []string{"submit-btn"},
	}
}

func TestSeleniumScriptPurity(t *testing.T) {
	g := New(nil, 0)
	tc := model.TestCase{
		TestID:         "TC-001",
		Feature:        "Coupon Discount",
		Scenario:       "Apply coupon at checkout",
		ExpectedResult: "Total reflects the discount",
	}

	first := g.GenerateSeleniumScript(tc, checkoutPage())
	second := g.GenerateSeleniumScript(tc, checkoutPage())
	require.Equal(t, first, second)
}

func TestSeleniumScriptFillsCouponValue(t *testing.T) {
	g := New(nil, 0)
	script := g.GenerateSeleniumScript(model.TestCase{TestID: "TC-001", Scenario: "Apply coupon"}, checkoutPage())

	require.Contains(t, script, `wait.until(EC.presence_of_element_located((By.ID, "coupon-code")))`)
	require.Contains(t, script, `coupon_code_field.send_keys("SAVE25")`)
	require.Contains(t, script, `email_field.send_keys("testuser@example.com")`)
}

func TestInputValueRules(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"coupon-code", "SAVE25"},
		{"user-email", "testuser@example.com"},
		{"password", "SecurePass123!"},
		{"phone", "+1-555-0123"},
		{"username", "testuser123"},
		{"first-name", "Test User"},
		{"cardholder-name", "Test User"},
		{"card-number", "4532123456789012"},
		{"card-expiry", "12/25"},
		{"exp-date", "12/25"},
		{"cvv", "123"},
		{"address", "test_value"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			require.Equal(t, tt.want, inputValue(tt.id))
		})
	}
}

func TestResolvePagePath(t *testing.T) {
	tests := []struct {
		fileName string
		want     string
	}{
		{"course_enrollment.html", "third_sample/course_enrollment.html"},
		{"checkout_page.html", "first_sample/checkout_page.html"},
		{"user_registration.html", "second_sample/user_registration.html"},
		{"Checkout.HTML", "first_sample/Checkout.HTML"},
		{"landing.html", "landing.html"},
	}
	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			require.Equal(t, tt.want, resolvePagePath(tt.fileName))
		})
	}
}

func TestSeleniumScriptRegistrationAssertion(t *testing.T) {
	g := New(nil, 0)
	tc := model.TestCase{
		TestID:   "TC-001",
		Feature:  "User Signup",
		Scenario: "Verify that registration works as expected",
	}

	script := g.GenerateSeleniumScript(tc, nil)
	require.Contains(t, script, "# Verify registration success")
	require.NotContains(t, script, "# Basic verification")
}

func TestSeleniumScriptDefaultAssertion(t *testing.T) {
	g := New(nil, 0)
	tc := model.TestCase{
		TestID:   "TC-001",
		Feature:  "Basic login Functionality",
		Scenario: "Verify that login works as expected",
	}

	script := g.GenerateSeleniumScript(tc, nil)
	require.Contains(t, script, "# Basic verification")
	require.Contains(t, script, "assert driver.title")
}

func TestSeleniumScriptEmitsAllMatchingAssertions(t *testing.T) {
	g := New(nil, 0)
	tc := model.TestCase{
		TestID:   "TC-002",
		Feature:  "Checkout",
		Scenario: "Verify coupon validation during payment",
	}

	script := g.GenerateSeleniumScript(tc, nil)
	iCoupon := strings.Index(script, "# Verify coupon/discount was applied")
	iSubmit := strings.Index(script, "# Verify form submission")
	iValidation := strings.Index(script, "# Check for validation/error messages")
	require.GreaterOrEqual(t, iCoupon, 0)
	require.Greater(t, iSubmit, iCoupon)
	require.Greater(t, iValidation, iSubmit)
	require.NotContains(t, script, "# Basic verification")
}

func TestSeleniumScriptWithoutPageNavigatesDefault(t *testing.T) {
	g := New(nil, 0)
	script := g.GenerateSeleniumScript(model.TestCase{TestID: "TC-003", Scenario: "Open the app"}, nil)

	require.Contains(t, script, `driver.get("http://localhost:8000")`)
	require.NotContains(t, script, "import os")
	require.NotContains(t, script, "os.path")
	require.NotContains(t, script, "# Fill input fields")
}

func TestSeleniumScriptWithPageLoadsLocalFile(t *testing.T) {
	g := New(nil, 0)
	script := g.GenerateSeleniumScript(model.TestCase{TestID: "TC-001", Scenario: "Checkout"}, checkoutPage())

	require.Contains(t, script, "import os")
	require.Contains(t, script, `os.path.abspath("sample_docs/first_sample/checkout_page.html")`)
	require.Contains(t, script, `driver.get(f"file://{html_path}")`)
	require.Contains(t, script, `driver.get("http://localhost:8000")`)
}

func TestSeleniumScriptCapsElementCounts(t *testing.T) {
	g := New(nil, 0)
	page := &model.PageStructure{
		FileName: "big_form.html",
		Inputs: []model.PageInput{
			{ID: "f1"}, {ID: "f2"}, {ID: "f3"}, {ID: "f4"}, {ID: "f5"}, {ID: "f6"},
		},
		Checkboxes: []string{"c1", "c2", "c3"},
		Buttons:    []string{"b1", "b2"},
	}

	script := g.GenerateSeleniumScript(model.TestCase{TestID: "TC-001"}, page)
	require.Equal(t, 5, strings.Count(script, "_field = wait.until"))
	require.Equal(t, 2, strings.Count(script, "_checkbox = driver.find_element"))
	require.Equal(t, 1, strings.Count(script, "_button = wait.until"))
	require.NotContains(t, script, `By.ID, "f6"`)
}

func TestSeleniumScriptSkipsInputsWithoutID(t *testing.T) {
	g := New(nil, 0)
	page := &model.PageStructure{
		FileName: "form.html",
		Inputs:   []model.PageInput{{ID: "", Name: "anonymous"}, {ID: "email"}},
	}

	script := g.GenerateSeleniumScript(model.TestCase{TestID: "TC-001"}, page)
	require.Equal(t, 1, strings.Count(script, "_field = wait.until"))
	require.Contains(t, script, `By.ID, "email"`)
}

func TestSeleniumScriptHeaderAndTeardown(t *testing.T) {
	g := New(nil, 0)
	tc := model.TestCase{
		TestID:         "TC-003",
		Feature:        "Login\nForm",
		Scenario:       "Submit credentials",
		ExpectedResult: "User lands on the dashboard",
	}

	script := g.GenerateSeleniumScript(tc, nil)
	require.Contains(t, script, "def test_tc_003():")
	require.Contains(t, script, "Feature: Login Form")
	require.Contains(t, script, "Expected Result: User lands on the dashboard")
	require.Contains(t, script, "finally:")
	require.Contains(t, script, "driver.quit()")
	require.Contains(t, script, `driver.save_screenshot("test_tc_003_failure.png")`)
	require.Contains(t, script, `test_tc_003()`)
}

func TestSeleniumScriptChecksCheckboxOnlyWhenUnchecked(t *testing.T) {
	g := New(nil, 0)
	script := g.GenerateSeleniumScript(model.TestCase{TestID: "TC-001"}, checkoutPage())

	require.Contains(t, script, "if not terms_checkbox.is_selected():")
	require.Contains(t, script, "terms_checkbox.click()")
}
