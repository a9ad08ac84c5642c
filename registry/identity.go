package registry

import "github.com/google/uuid"

// idNamespace is the fixed UUID namespace plugin identities are derived
// under. Never change it: identities must stay stable across releases.
var idNamespace = uuid.MustParse("7f1c2b52-9c4e-4a7a-9d25-3a1e8f0b6c41")

// IdentityFor derives the deterministic plugin identity for an alias.
// The same alias always yields the same identity across restarts and
// across processes; it is the primary key linking a registration to its
// persisted bootstrap state.
func IdentityFor(alias string) string {
	return uuid.NewSHA1(idNamespace, []byte(alias)).String()
}
