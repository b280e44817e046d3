package authz

import "strings"

// Identity is the per-request outcome of authentication: the principal id
// and the role-claim strings carried by the token. A nil *Identity means the
// request is anonymous.
type Identity struct {
	PrincipalID string
	Authorities []string
}

// HasAuthority reports whether the identity carries the exact claim string.
func (id *Identity) HasAuthority(claim string) bool {
	if id == nil {
		return false
	}
	for _, a := range id.Authorities {
		if a == claim {
			return true
		}
	}
	return false
}

// RequirementKind discriminates what a rule demands of the caller.
type RequirementKind int

const (
	// RequirePublic allows everyone, authenticated or not.
	RequirePublic RequirementKind = iota
	// RequireAuthenticated allows any non-anonymous caller.
	RequireAuthenticated
	// RequireRole allows only callers holding the rule's role claim.
	RequireRole
)

// Requirement is the tagged variant attached to a rule.
type Requirement struct {
	Kind RequirementKind
	Role string // bare role name, set only for RequireRole
}

// RoleClaim returns the claim string checked against the identity,
// e.g. role "ADMIN" -> "ROLE_ADMIN".
func (r Requirement) RoleClaim() string {
	return "ROLE_" + r.Role
}

func Public() Requirement        { return Requirement{Kind: RequirePublic} }
func Authenticated() Requirement { return Requirement{Kind: RequireAuthenticated} }
func Role(name string) Requirement {
	return Requirement{Kind: RequireRole, Role: name}
}

// Decision is the outcome of evaluating a request against the policy.
type Decision int

const (
	Allow Decision = iota
	// Unauthorized: the route needs an identity and the request has none (401).
	Unauthorized
	// Forbidden: an identity is present but lacks the required role (403).
	Forbidden
)

// Rule binds an HTTP method and path pattern to a requirement.
//
// Pattern segments are matched literally; "*" matches exactly one segment
// and a trailing "**" matches any remainder (including none). Method "*"
// matches every method.
type Rule struct {
	Method  string
	Pattern string
	Require Requirement
}

// Policy is an ordered rule list evaluated first-match-wins. Declare
// specific rules before catch-alls. Policies are built once at startup and
// are immutable, so they are safe to share across requests.
type Policy struct {
	rules []Rule
}

// NewPolicy builds a policy from rules in declaration order.
func NewPolicy(rules ...Rule) *Policy {
	return &Policy{rules: rules}
}

// Decide evaluates the request against the rule list. An unmatched request
// falls through to RequireAuthenticated (deny by default).
func (p *Policy) Decide(method, path string, id *Identity) Decision {
	req := Authenticated()
	for _, rule := range p.rules {
		if !matchMethod(rule.Method, method) {
			continue
		}
		if !matchPattern(rule.Pattern, path) {
			continue
		}
		req = rule.Require
		break
	}

	switch req.Kind {
	case RequirePublic:
		return Allow
	case RequireAuthenticated:
		if id == nil {
			return Unauthorized
		}
		return Allow
	default: // RequireRole
		if id == nil {
			return Unauthorized
		}
		if !id.HasAuthority(req.RoleClaim()) {
			return Forbidden
		}
		return Allow
	}
}

func matchMethod(pattern, method string) bool {
	return pattern == "*" || strings.EqualFold(pattern, method)
}

func matchPattern(pattern, path string) bool {
	pat := splitPath(pattern)
	segs := splitPath(path)

	for i, ps := range pat {
		if ps == "**" && i == len(pat)-1 {
			return true
		}
		if i >= len(segs) {
			return false
		}
		if ps != "*" && ps != segs[i] {
			return false
		}
	}
	return len(pat) == len(segs)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
