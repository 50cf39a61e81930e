package artifact

import (
	"context"

	"github.com/abduss/artifactrepo/internal/auth"
)

// Gate decides whether a caller may act on an artifact. List and read are
// public, create needs any authenticated caller, delete needs the owner or
// an admin. Pure decision logic; the only state consulted is one record
// lookup.
type Gate struct {
	records RecordStore
}

// NewGate constructs an authorization gate over the record store.
func NewGate(records RecordStore) *Gate {
	return &Gate{records: records}
}

// CanCreate reports whether the caller may upload artifacts.
func (g *Gate) CanCreate(p auth.Principal) bool {
	return p.Authenticated()
}

// CanDelete reports whether the caller may delete the named artifact.
// Any failure to establish ownership denies, including a missing record:
// a delete of an unknown name is answered 403, not 404.
func (g *Gate) CanDelete(ctx context.Context, p auth.Principal, name string) bool {
	if !p.Authenticated() {
		return false
	}
	rec, err := g.records.Get(ctx, name)
	if err != nil {
		return false
	}
	return p.IsAdmin() || rec.OwnerID == p.UserID
}
