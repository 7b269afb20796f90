package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-inject/framework/validation"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func pass(t *testing.T, label string, data map[string]string, rules validation.Rules) {
	t.Helper()
	t.Run(label, func(t *testing.T) {
		v := validation.Make(data, rules)
		assert.True(t, v.Passes(), "errors: %v", v.Errors())
	})
}

func fail(t *testing.T, label, field string, data map[string]string, rules validation.Rules) {
	t.Helper()
	t.Run(label, func(t *testing.T) {
		v := validation.Make(data, rules)
		require.True(t, v.Fails(), "expected failure on %q", field)
		assert.NotEmpty(t, v.Errors().First(field))
	})
}

// ── rules ────────────────────────────────────────────────────────────────────

func TestValidation_Required(t *testing.T) {
	t.Parallel()
	r := validation.Rules{"name": "required"}

	pass(t, "non-empty value", map[string]string{"name": "Alice"}, r)
	fail(t, "empty string", "name", map[string]string{"name": ""}, r)
	fail(t, "whitespace only", "name", map[string]string{"name": "   "}, r)
	fail(t, "missing key", "name", map[string]string{}, r)
}

func TestValidation_Required_MessageFormat(t *testing.T) {
	t.Parallel()

	v := validation.Make(map[string]string{"name": ""}, validation.Rules{"name": "required"})
	require.True(t, v.Fails())
	assert.Equal(t, "The name field is required.", v.Errors().First("name"))
}

func TestValidation_Nullable(t *testing.T) {
	t.Parallel()
	r := validation.Rules{"email": "nullable|email"}

	pass(t, "empty skips", map[string]string{"email": ""}, r)
	pass(t, "valid value", map[string]string{"email": "a@b.io"}, r)
	fail(t, "invalid value", "email", map[string]string{"email": "nope"}, r)
}

func TestValidation_Email(t *testing.T) {
	t.Parallel()
	r := validation.Rules{"email": "email"}

	pass(t, "valid email", map[string]string{"email": "user@example.com"}, r)
	pass(t, "subdomain", map[string]string{"email": "user@mail.example.co.uk"}, r)
	fail(t, "no @ sign", "email", map[string]string{"email": "notanemail"}, r)
	fail(t, "no domain", "email", map[string]string{"email": "user@"}, r)
}

func TestValidation_IntegerAndBoolean(t *testing.T) {
	t.Parallel()

	pass(t, "integer", map[string]string{"n": "42"}, validation.Rules{"n": "integer"})
	fail(t, "not integer", "n", map[string]string{"n": "4.2"}, validation.Rules{"n": "integer"})
	pass(t, "boolean", map[string]string{"b": "false"}, validation.Rules{"b": "boolean"})
	fail(t, "not boolean", "b", map[string]string{"b": "maybe"}, validation.Rules{"b": "boolean"})
}

func TestValidation_URLAndAddr(t *testing.T) {
	t.Parallel()

	pass(t, "url", map[string]string{"u": "https://example.com"}, validation.Rules{"u": "url"})
	fail(t, "bad url", "u", map[string]string{"u": "ftp://example.com"}, validation.Rules{"u": "url"})
	pass(t, "port only", map[string]string{"a": ":8000"}, validation.Rules{"a": "addr"})
	pass(t, "host and port", map[string]string{"a": "127.0.0.1:9000"}, validation.Rules{"a": "addr"})
	fail(t, "no port", "a", map[string]string{"a": "localhost"}, validation.Rules{"a": "addr"})
}

func TestValidation_MinMax(t *testing.T) {
	t.Parallel()
	r := validation.Rules{"name": "min:2|max:4"}

	pass(t, "in range", map[string]string{"name": "abc"}, r)
	pass(t, "multibyte counted as runes", map[string]string{"name": "日本語"}, r)
	fail(t, "too short", "name", map[string]string{"name": "a"}, r)
	fail(t, "too long", "name", map[string]string{"name": "abcde"}, r)
}

func TestValidation_InNotIn(t *testing.T) {
	t.Parallel()

	r := validation.Rules{"env": "in:local, testing ,production"}
	pass(t, "allowed", map[string]string{"env": "testing"}, r)
	fail(t, "not allowed", "env", map[string]string{"env": "staging"}, r)

	n := validation.Rules{"name": "not_in:admin,root"}
	pass(t, "not reserved", map[string]string{"name": "alice"}, n)
	fail(t, "reserved", "name", map[string]string{"name": "root"}, n)
}

func TestValidation_AlphaDashAndRegex(t *testing.T) {
	t.Parallel()

	pass(t, "alpha_dash", map[string]string{"s": "go-inject_1"}, validation.Rules{"s": "alpha_dash"})
	fail(t, "alpha_dash space", "s", map[string]string{"s": "go inject"}, validation.Rules{"s": "alpha_dash"})
	pass(t, "regex", map[string]string{"s": "v1.2"}, validation.Rules{"s": `regex:^v\d+\.\d+$`})
	fail(t, "regex mismatch", "s", map[string]string{"s": "1.2"}, validation.Rules{"s": `regex:^v\d+\.\d+$`})
	fail(t, "invalid regex", "s", map[string]string{"s": "x"}, validation.Rules{"s": "regex:("})
}

func TestValidation_UnknownRulePasses(t *testing.T) {
	t.Parallel()

	pass(t, "unknown", map[string]string{"s": "x"}, validation.Rules{"s": "shiny"})
}

// ── errors ───────────────────────────────────────────────────────────────────

func TestErrors_BailsOnFirstFailure(t *testing.T) {
	t.Parallel()

	v := validation.Make(map[string]string{}, validation.Rules{"email": "required|email"})
	require.True(t, v.Fails())
	assert.Len(t, v.Errors().Bag["email"], 1)
}

func TestErrors_NilWhenPassing(t *testing.T) {
	t.Parallel()

	v := validation.Make(map[string]string{"a": "1"}, validation.Rules{"a": "integer"})
	assert.Nil(t, v.Errors())

	var errs *validation.Errors
	assert.False(t, errs.Has())
	assert.Empty(t, errs.First("a"))
	assert.Empty(t, errs.Fields())
}

func TestErrors_ErrorSortedByField(t *testing.T) {
	t.Parallel()

	v := validation.Make(map[string]string{}, validation.Rules{
		"b": "required",
		"a": "required",
	})
	require.True(t, v.Fails())

	errs := v.Errors()
	assert.Equal(t, []string{"a", "b"}, errs.Fields())
	assert.EqualError(t, errs, "validation: The a field is required. The b field is required.")
}
