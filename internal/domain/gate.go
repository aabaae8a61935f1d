package domain

import "strings"

// AdminGate decides whether an address may be offered privileged affordances
// (market creation and resolution). It is built once from configuration and
// never mutated afterwards.
//
// The gate is a UX filter only: the registry contract enforces authorization
// on-chain and rejects unauthorized callers regardless of what the gate says.
type AdminGate struct {
	allowed map[string]struct{}
}

// NewAdminGate builds a gate from an allow-list of addresses. Entries are
// normalized to lowercase so checksummed and plain hex spellings compare equal.
func NewAdminGate(addresses []string) AdminGate {
	allowed := make(map[string]struct{}, len(addresses))
	for _, addr := range addresses {
		addr = strings.ToLower(strings.TrimSpace(addr))
		if addr == "" {
			continue
		}
		allowed[addr] = struct{}{}
	}
	return AdminGate{allowed: allowed}
}

// Allowed reports whether the address is on the allow-list. An empty address
// (no connected party) is never allowed.
func (g AdminGate) Allowed(address string) bool {
	address = strings.ToLower(strings.TrimSpace(address))
	if address == "" {
		return false
	}
	_, ok := g.allowed[address]
	return ok
}
