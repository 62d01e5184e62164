package auth

import (
	"context"
	"sort"
	"strings"
)

// Principal is the authenticated caller. It is a value: copies are safe to
// share and nothing mutates it after construction.
type Principal struct {
	subject string
	email   string
	groups  map[string]struct{}
}

func NewPrincipal(subject, email string, groups []string) Principal {
	set := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		if g = strings.TrimSpace(g); g != "" {
			set[g] = struct{}{}
		}
	}
	return Principal{subject: subject, email: email, groups: set}
}

func (p Principal) Subject() string { return p.subject }
func (p Principal) Email() string   { return p.email }

func (p Principal) InGroup(name string) bool {
	_, ok := p.groups[name]
	return ok
}

// Groups returns the memberships sorted by name.
func (p Principal) Groups() []string {
	out := make([]string, 0, len(p.groups))
	for g := range p.groups {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal bound to ctx, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
