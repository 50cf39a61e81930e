package artifact

import (
	"context"
	"io"
)

// RecordStore abstracts the metadata key-value store. Implementations must
// make Claim and SetStatus atomic: the coordinator holds no locks and may
// run as multiple independent instances.
type RecordStore interface {
	// Get returns the record stored under name, or ErrRecordNotFound.
	Get(ctx context.Context, name string) (Record, error)
	// Claim inserts rec (status pending) unless an active record already
	// holds the name, in which case it returns ErrNameTaken. A failed
	// record does not block the claim and is overwritten by it.
	Claim(ctx context.Context, rec Record) error
	// SetStatus moves a pending record to the given terminal status and
	// returns the post-transition record. If the record is already
	// terminal the stored record is returned unchanged.
	SetStatus(ctx context.Context, name string, status Status) (Record, error)
	// Delete removes the record. Deleting an absent record is not an error.
	Delete(ctx context.Context, name string) error
	// List returns all records in store-defined order.
	List(ctx context.Context) ([]Record, error)
	// ExistsActive reports whether a pending or succeeded record holds name.
	ExistsActive(ctx context.Context, name string) (bool, error)
}

// BlobStore abstracts physical artifact storage. Save is all-or-nothing:
// a partially written blob must never be visible to Load. Delete of an
// absent blob is a no-op.
type BlobStore interface {
	Save(ctx context.Context, name, contentType string, r io.Reader, size int64) error
	// Load returns the blob bytes, or ErrBlobNotFound for a missing name.
	Load(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}
