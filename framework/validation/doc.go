// Package validation provides rule-string field validation.
//
// # Overview
//
// Rules are pipe-separated strings on a map of field names, in the style
// popularized by Laravel's validator. The framework uses the same engine for
// two inputs: configuration values at bootstrap (config.Config.Validate) and
// request payloads in handlers.
//
// # Basic Usage
//
//	v := validation.Make(map[string]string{
//	    "name":  "Alice",
//	    "email": "alice@example.com",
//	}, validation.Rules{
//	    "name":  "required|min:2|max:100",
//	    "email": "required|email",
//	})
//
//	if v.Fails() {
//	    // v.Errors() returns *Errors with Bag map[string][]string
//	    // JSON: {"errors": {"field": ["message1", "message2"]}}
//	}
//
// One-shot checks skip the intermediate Validator:
//
//	if errs := validation.Check(data, rules); errs.Has() { ... }
//
// # Available Rules
//
// String rules:
//   - required: field must be present and non-empty
//   - string: passes (all flat input values are strings)
//   - min:n, max:n, size:n: UTF-8 character count bounds
//   - between:min,max: length between min and max (inclusive)
//   - alpha, alpha_num, alpha_dash: character class checks
//   - regex:pattern: must match the regexp pattern
//
// Format rules:
//   - email: valid RFC 5322 email address
//   - url: must start with http:// or https://
//
// Numeric rules:
//   - numeric: parseable as float64
//   - integer: parseable as int
//   - gt:n, gte:n, lt:n, lte:n: numeric comparisons
//
// Comparison rules:
//   - confirmed: field_confirmation must match field
//   - same:other, different:other: compare against data[other]
//
// Type rules:
//   - boolean: true/false/1/0/yes/no (case-insensitive)
//   - in:a,b,c and not_in:a,b,c: membership in a comma-separated list
//
// Control rules:
//   - nullable: an empty value is accepted and skips the remaining rules
//   - sometimes: skips all remaining rules silently if the field is absent
//
// # Error Bag
//
// Failures collect per field and serialize to a stable JSON shape:
//
//	{
//	  "errors": {
//	    "email": ["The email field is required."],
//	    "age":   ["The age must be greater than or equal to 18."]
//	  }
//	}
//
// Rules within one field stop at the first failure, so a missing required
// field reports once, not once per rule.
package validation
