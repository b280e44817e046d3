package authz

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ruleFile is the on-disk shape of an authorization rule list:
//
//	rules:
//	  - method: GET
//	    path: /v1/products/**
//	    require: public
//	  - method: POST
//	    path: /v1/products
//	    require: role:ADMIN
//
// require is one of "public", "authenticated" or "role:<NAME>".
type ruleFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

type ruleEntry struct {
	Method  string `yaml:"method"`
	Path    string `yaml:"path"`
	Require string `yaml:"require"`
}

// LoadRules reads an ordered rule list from a YAML file. Rule order in the
// file is preserved; evaluation remains first-match-wins.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes a YAML rule document into rules.
func ParseRules(data []byte) ([]Rule, error) {
	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal rules: %w", err)
	}

	rules := make([]Rule, 0, len(file.Rules))
	for i, entry := range file.Rules {
		if entry.Path == "" {
			return nil, fmt.Errorf("rule %d: path is required", i)
		}

		method := entry.Method
		if method == "" {
			method = "*"
		}

		req, err := parseRequirement(entry.Require)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s %s): %w", i, method, entry.Path, err)
		}

		rules = append(rules, Rule{
			Method:  strings.ToUpper(method),
			Pattern: entry.Path,
			Require: req,
		})
	}

	return rules, nil
}

func parseRequirement(s string) (Requirement, error) {
	switch {
	case s == "public":
		return Public(), nil
	case s == "" || s == "authenticated":
		return Authenticated(), nil
	case strings.HasPrefix(s, "role:"):
		name := strings.TrimPrefix(s, "role:")
		if name == "" {
			return Requirement{}, fmt.Errorf("empty role name")
		}
		return Role(strings.ToUpper(name)), nil
	default:
		return Requirement{}, fmt.Errorf("unknown requirement %q", s)
	}
}
