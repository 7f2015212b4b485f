package auth

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// RoleTools lists the tools a role may call. Entries are path.Match
// patterns, so "get_*" covers every getter and "*" covers everything.
// Deny wins over Allow.
type RoleTools struct {
	Allow    []string
	Deny     []string
	Inherits []string
}

// ToolPolicy is a role-based allowlist of tools.
type ToolPolicy struct {
	// Roles maps role names to their tool rules.
	Roles map[string]RoleTools

	// DefaultRole applies to identities that carry no roles.
	DefaultRole string
}

// ParseToolPolicy parses a policy of the form
//
//	reader=search_papers,get_*;admin=*
//
// Role entries are separated by ';' and tool patterns by ','. A pattern
// prefixed with '!' is a deny rule.
func ParseToolPolicy(s string) (*ToolPolicy, error) {
	p := &ToolPolicy{Roles: make(map[string]RoleTools)}
	for entry := range strings.SplitSeq(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		role, tools, ok := strings.Cut(entry, "=")
		role = strings.TrimSpace(role)
		if !ok || role == "" {
			return nil, fmt.Errorf("%w: entry %q must be role=tools", ErrInvalidPolicy, entry)
		}
		rt := p.Roles[role]
		for pattern := range strings.SplitSeq(tools, ",") {
			pattern = strings.TrimSpace(pattern)
			if pattern == "" {
				continue
			}
			denied := strings.HasPrefix(pattern, "!")
			pattern = strings.TrimPrefix(pattern, "!")
			if _, err := path.Match(pattern, ""); err != nil {
				return nil, fmt.Errorf("%w: bad pattern %q for role %q", ErrInvalidPolicy, pattern, role)
			}
			if denied {
				rt.Deny = append(rt.Deny, pattern)
			} else {
				rt.Allow = append(rt.Allow, pattern)
			}
		}
		p.Roles[role] = rt
	}
	if len(p.Roles) == 0 {
		return nil, fmt.Errorf("%w: no roles defined", ErrInvalidPolicy)
	}
	return p, nil
}

// Name returns "tool_policy".
func (p *ToolPolicy) Name() string {
	return "tool_policy"
}

// Authorize permits ActionList for any identity and ActionCall when some
// role of the subject allows the tool.
func (p *ToolPolicy) Authorize(_ context.Context, req *AuthzRequest) error {
	if req.Subject == nil {
		return deny(req, "no identity provided")
	}
	if req.Action == ActionList {
		return nil
	}
	if p.Allowed(req.Subject, req.Tool) {
		return nil
	}
	return deny(req, "no role permits this tool")
}

// Allowed reports whether id may call tool.
func (p *ToolPolicy) Allowed(id *Identity, tool string) bool {
	if id == nil {
		return false
	}
	roles := id.Roles
	if len(roles) == 0 && p.DefaultRole != "" {
		roles = []string{p.DefaultRole}
	}

	allowed := false
	seen := make(map[string]bool)
	var visit func(string) bool
	visit = func(name string) bool {
		if seen[name] {
			return true
		}
		seen[name] = true
		rt, ok := p.Roles[name]
		if !ok {
			return true
		}
		if matchAny(rt.Deny, tool) {
			return false
		}
		if matchAny(rt.Allow, tool) {
			allowed = true
		}
		for _, parent := range rt.Inherits {
			if !visit(parent) {
				return false
			}
		}
		return true
	}
	for _, r := range roles {
		if !visit(r) {
			return false
		}
	}
	return allowed
}

func matchAny(patterns []string, name string) bool {
	for _, pat := range patterns {
		if ok, _ := path.Match(pat, name); ok {
			return true
		}
	}
	return false
}

var _ Authorizer = (*ToolPolicy)(nil)
