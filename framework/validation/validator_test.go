package validation_test

import (
	"testing"

	"github.com/km-arc/go-autowire/framework/validation"
)

// ── helpers ──────────────────────────────────────────────────────────────────

// pass asserts the validator passes for the given data/rules.
func pass(t *testing.T, label string, data map[string]string, rules validation.Rules) {
	t.Helper()
	t.Run(label, func(t *testing.T) {
		v := validation.Make(data, rules)
		if v.Fails() {
			t.Errorf("expected PASS, got FAIL with errors: %+v", v.Errors().Bag)
		}
	})
}

// fail asserts the validator fails with an error on the given field.
func fail(t *testing.T, label, field string, data map[string]string, rules validation.Rules) {
	t.Helper()
	t.Run(label, func(t *testing.T) {
		v := validation.Make(data, rules)
		if v.Passes() {
			t.Errorf("expected FAIL on field %q, but validator PASSED", field)
		}
		if v.Errors().First(field) == "" {
			t.Errorf("expected error on field %q, but none found. Errors: %+v", field, v.Errors().Bag)
		}
	})
}

// ── presence ─────────────────────────────────────────────────────────────────

func TestValidation_Required(t *testing.T) {
	r := validation.Rules{"name": "required"}

	pass(t, "non-empty value", map[string]string{"name": "Alice"}, r)
	fail(t, "empty string", "name", map[string]string{"name": ""}, r)
	fail(t, "whitespace only", "name", map[string]string{"name": "   "}, r)
	fail(t, "missing key", "name", map[string]string{}, r)
}

func TestValidation_Required_MessageFormat(t *testing.T) {
	v := validation.Make(map[string]string{"name": ""}, validation.Rules{"name": "required"})
	_ = v.Fails()
	msg := v.Errors().First("name")
	expected := "The name field is required."
	if msg != expected {
		t.Errorf("message: got %q want %q", msg, expected)
	}
}

// ── length ───────────────────────────────────────────────────────────────────

func TestValidation_LengthRules(t *testing.T) {
	pass(t, "min boundary", map[string]string{"name": "abc"}, validation.Rules{"name": "min:3"})
	fail(t, "below min", "name", map[string]string{"name": "ab"}, validation.Rules{"name": "min:3"})
	pass(t, "max boundary", map[string]string{"bio": "hello"}, validation.Rules{"bio": "max:5"})
	fail(t, "above max", "bio", map[string]string{"bio": "toolong"}, validation.Rules{"bio": "max:5"})
	pass(t, "exact size", map[string]string{"code": "1234"}, validation.Rules{"code": "size:4"})
	fail(t, "wrong size", "code", map[string]string{"code": "123"}, validation.Rules{"code": "size:4"})
	pass(t, "between bounds", map[string]string{"pin": "12345"}, validation.Rules{"pin": "between:4,6"})
	fail(t, "outside between", "pin", map[string]string{"pin": "1234567"}, validation.Rules{"pin": "between:4,6"})
}

func TestValidation_LengthCountsRunes(t *testing.T) {
	// "日本語" is 3 runes, 9 bytes
	pass(t, "unicode rune count", map[string]string{"name": "日本語"}, validation.Rules{"name": "min:3"})
	fail(t, "unicode too short", "name", map[string]string{"name": "日本"}, validation.Rules{"name": "min:3"})
}

// ── numbers ──────────────────────────────────────────────────────────────────

func TestValidation_NumericRules(t *testing.T) {
	pass(t, "numeric float", map[string]string{"amount": "3.14"}, validation.Rules{"amount": "numeric"})
	fail(t, "numeric letters", "amount", map[string]string{"amount": "abc"}, validation.Rules{"amount": "numeric"})
	pass(t, "integer negative", map[string]string{"count": "-3"}, validation.Rules{"count": "integer"})
	fail(t, "integer float", "count", map[string]string{"count": "3.14"}, validation.Rules{"count": "integer"})
}

func TestValidation_ComparisonRules(t *testing.T) {
	pass(t, "gt above", map[string]string{"age": "19"}, validation.Rules{"age": "gt:18"})
	fail(t, "gt equal", "age", map[string]string{"age": "18"}, validation.Rules{"age": "gt:18"})
	pass(t, "gte equal", map[string]string{"age": "18"}, validation.Rules{"age": "gte:18"})
	fail(t, "gte below", "age", map[string]string{"age": "17"}, validation.Rules{"age": "gte:18"})
	pass(t, "lt below", map[string]string{"score": "99"}, validation.Rules{"score": "lt:100"})
	fail(t, "lt equal", "score", map[string]string{"score": "100"}, validation.Rules{"score": "lt:100"})
	pass(t, "lte equal", map[string]string{"score": "100"}, validation.Rules{"score": "lte:100"})
	fail(t, "lte above", "score", map[string]string{"score": "101"}, validation.Rules{"score": "lte:100"})
}

func TestValidation_Boolean(t *testing.T) {
	r := validation.Rules{"active": "boolean"}

	for _, v := range []string{"true", "false", "1", "0", "yes", "no", "True", "False"} {
		pass(t, "boolean "+v, map[string]string{"active": v}, r)
	}
	fail(t, "invalid bool", "active", map[string]string{"active": "maybe"}, r)
}

// ── membership ───────────────────────────────────────────────────────────────

func TestValidation_In(t *testing.T) {
	r := validation.Rules{"env": "in:local,production,testing"}

	pass(t, "local", map[string]string{"env": "local"}, r)
	pass(t, "production", map[string]string{"env": "production"}, r)
	fail(t, "staging not in list", "env", map[string]string{"env": "staging"}, r)
	fail(t, "empty not in list", "env", map[string]string{"env": ""}, r)
}

func TestValidation_NotIn(t *testing.T) {
	r := validation.Rules{"status": "not_in:banned,suspended"}

	pass(t, "active", map[string]string{"status": "active"}, r)
	fail(t, "banned", "status", map[string]string{"status": "banned"}, r)
}

// ── cross-field ──────────────────────────────────────────────────────────────

func TestValidation_CrossFieldRules(t *testing.T) {
	pass(t, "confirmed matching", map[string]string{
		"password":              "secret",
		"password_confirmation": "secret",
	}, validation.Rules{"password": "confirmed"})
	fail(t, "confirmed missing", "password", map[string]string{
		"password": "secret",
	}, validation.Rules{"password": "confirmed"})

	pass(t, "same value", map[string]string{
		"email":         "a@b.com",
		"confirm_email": "a@b.com",
	}, validation.Rules{"confirm_email": "same:email"})
	fail(t, "same differs", "confirm_email", map[string]string{
		"email":         "a@b.com",
		"confirm_email": "c@d.com",
	}, validation.Rules{"confirm_email": "same:email"})

	fail(t, "different equal", "new_password", map[string]string{
		"old_password": "same",
		"new_password": "same",
	}, validation.Rules{"new_password": "different:old_password"})
}

// ── formats ──────────────────────────────────────────────────────────────────

func TestValidation_Email(t *testing.T) {
	r := validation.Rules{"email": "email"}

	pass(t, "valid email", map[string]string{"email": "user@example.com"}, r)
	fail(t, "no @ sign", "email", map[string]string{"email": "notanemail"}, r)
	fail(t, "no domain", "email", map[string]string{"email": "user@"}, r)
}

func TestValidation_CharacterClasses(t *testing.T) {
	pass(t, "alpha letters", map[string]string{"name": "HelloWorld"}, validation.Rules{"name": "alpha"})
	fail(t, "alpha digits", "name", map[string]string{"name": "hello123"}, validation.Rules{"name": "alpha"})
	pass(t, "alpha_num", map[string]string{"slug": "user123"}, validation.Rules{"slug": "alpha_num"})
	fail(t, "alpha_num dash", "slug", map[string]string{"slug": "user-123"}, validation.Rules{"slug": "alpha_num"})
	pass(t, "alpha_dash", map[string]string{"slug": "user_name-123"}, validation.Rules{"slug": "alpha_dash"})
	fail(t, "alpha_dash dot", "slug", map[string]string{"slug": "user.name"}, validation.Rules{"slug": "alpha_dash"})
}

func TestValidation_URL(t *testing.T) {
	r := validation.Rules{"website": "url"}

	pass(t, "https", map[string]string{"website": "https://example.com/path?q=1"}, r)
	fail(t, "no protocol", "website", map[string]string{"website": "example.com"}, r)
	fail(t, "ftp protocol", "website", map[string]string{"website": "ftp://example.com"}, r)
}

func TestValidation_Regex(t *testing.T) {
	r := validation.Rules{"zip": `regex:^\d{5}$`}

	pass(t, "5 digits", map[string]string{"zip": "12345"}, r)
	fail(t, "4 digits", "zip", map[string]string{"zip": "1234"}, r)
}

// ── control rules ────────────────────────────────────────────────────────────

func TestValidation_Nullable(t *testing.T) {
	pass(t, "empty with nullable", map[string]string{"bio": ""}, validation.Rules{"bio": "nullable|min:10"})
}

func TestValidation_Sometimes(t *testing.T) {
	r := validation.Rules{"nickname": "sometimes|min:3"}

	pass(t, "absent field", map[string]string{}, r)
	pass(t, "present and valid", map[string]string{"nickname": "coolname"}, r)
}

// ── chained rules ────────────────────────────────────────────────────────────

func TestValidation_Chained(t *testing.T) {
	rules := validation.Rules{
		"email":    "required|email",
		"password": "required|min:8|confirmed",
		"age":      "required|integer|gte:18",
	}

	pass(t, "all valid", map[string]string{
		"email":                 "user@example.com",
		"password":              "secret123",
		"password_confirmation": "secret123",
		"age":                   "25",
	}, rules)

	v := validation.Make(map[string]string{
		"email":    "not-an-email",
		"password": "short",
		"age":      "16",
	}, rules)
	if v.Passes() {
		t.Fatal("expected validation to fail")
	}
	for _, field := range []string{"email", "password", "age"} {
		if v.Errors().First(field) == "" {
			t.Errorf("expected an error on %s", field)
		}
	}
}

func TestValidation_StopsAtFirstFailurePerField(t *testing.T) {
	v := validation.Make(map[string]string{"email": ""}, validation.Rules{"email": "required|email|min:5"})
	_ = v.Fails()
	if got := len(v.Errors().Bag["email"]); got != 1 {
		t.Errorf("messages for email: got %d, want 1 (later rules bail)", got)
	}
}

// ── one-shot helper and bag ──────────────────────────────────────────────────

func TestCheck_OneShot(t *testing.T) {
	errs := validation.Check(
		map[string]string{"level": "noisy"},
		validation.Rules{"level": "in:debug,info,warn,error"},
	)
	if !errs.Has() {
		t.Fatal("expected the bag to carry a failure")
	}
	if errs.First("level") == "" {
		t.Error("First should return the failure message")
	}

	clean := validation.Check(
		map[string]string{"level": "info"},
		validation.Rules{"level": "in:debug,info,warn,error"},
	)
	if clean.Has() {
		t.Errorf("expected a clean bag, got %+v", clean.Bag)
	}
}

func TestErrors_FirstOnUnknownField(t *testing.T) {
	v := validation.Make(map[string]string{"email": "bad"}, validation.Rules{"email": "required|email"})
	_ = v.Fails()
	if v.Errors().First("nonexistent") != "" {
		t.Error("First on an unknown field should return the empty string")
	}
}
