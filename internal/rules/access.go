// Package rules holds the consistency rules applied around persistence:
// query scoping, delete guards, task status derivation and email policy.
package rules

import "timesheet-api/internal/domain"

// Scope narrows q to records owned by p unless p is privileged.
// Any caller supplied user filter is overwritten.
func Scope(q domain.Query, p domain.Principal) domain.Query {
	if p.Privileged() {
		return q
	}
	uid := p.UserID
	q.Where.UserID = &uid
	return q
}

// ScopeFilter is Scope for bare filters used by deletes.
func ScopeFilter(f domain.Filter, p domain.Principal) domain.Filter {
	return Scope(domain.Query{Where: f}, p).Where
}
