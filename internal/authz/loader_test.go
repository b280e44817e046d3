package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRules(t *testing.T) {
	doc := []byte(`
rules:
  - method: GET
    path: /v1/products/**
    require: public
  - method: post
    path: /v1/products
    require: role:admin
  - path: /v1/users/me
    require: authenticated
  - path: /v1/internal/**
`)

	rules, err := ParseRules(doc)
	require.NoError(t, err)
	require.Len(t, rules, 4)

	assert.Equal(t, Rule{Method: "GET", Pattern: "/v1/products/**", Require: Public()}, rules[0])
	assert.Equal(t, Rule{Method: "POST", Pattern: "/v1/products", Require: Role("ADMIN")}, rules[1])
	// Method defaults to any, requirement defaults to authenticated.
	assert.Equal(t, Rule{Method: "*", Pattern: "/v1/users/me", Require: Authenticated()}, rules[2])
	assert.Equal(t, Rule{Method: "*", Pattern: "/v1/internal/**", Require: Authenticated()}, rules[3])
}

func TestParseRulesRejectsUnknownRequirement(t *testing.T) {
	_, err := ParseRules([]byte("rules:\n  - path: /x\n    require: sometimes\n"))
	assert.ErrorContains(t, err, "unknown requirement")
}

func TestParseRulesRejectsEmptyRole(t *testing.T) {
	_, err := ParseRules([]byte("rules:\n  - path: /x\n    require: \"role:\"\n"))
	assert.ErrorContains(t, err, "empty role name")
}

func TestParseRulesRequiresPath(t *testing.T) {
	_, err := ParseRules([]byte("rules:\n  - method: GET\n    require: public\n"))
	assert.ErrorContains(t, err, "path is required")
}

func TestParseRulesRejectsBadYAML(t *testing.T) {
	_, err := ParseRules([]byte("rules: ["))
	assert.Error(t, err)
}
