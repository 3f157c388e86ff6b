// Package identity holds the configuration-supplied set of privileged
// identities (admin e-mail addresses or phone numbers).
//
// The set is injected at startup rather than hardcoded, and it is consulted
// by the HTTP layer's admin middleware; it never enters the lifecycle
// engine's trust boundary.
package identity

import "strings"

// AllowList is a small fixed set of identities granted the elevated role
// without registration.
type AllowList struct {
	members map[string]struct{}
}

// ParseAllowList builds an AllowList from a comma-separated configuration
// value. Entries are trimmed and matched case-insensitively; empty entries
// are ignored. An empty value yields a list that admits nobody.
func ParseAllowList(raw string) AllowList {
	members := make(map[string]struct{})
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		members[entry] = struct{}{}
	}
	return AllowList{members: members}
}

// Contains reports whether identifier is in the set.
func (l AllowList) Contains(identifier string) bool {
	_, ok := l.members[strings.ToLower(strings.TrimSpace(identifier))]
	return ok
}

// Len returns the number of configured identities.
func (l AllowList) Len() int {
	return len(l.members)
}
