package artifact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const recordsTimeout = 5 * time.Second

// PostgresRecords stores artifact records in PostgreSQL. The table:
//
//	CREATE TABLE artifact_records (
//	    name         TEXT PRIMARY KEY,
//	    content_type TEXT NOT NULL,
//	    owner_id     TEXT NOT NULL,
//	    uploaded_at  TIMESTAMPTZ NOT NULL,
//	    status       TEXT NOT NULL
//	);
type PostgresRecords struct {
	pool *pgxpool.Pool
}

// NewPostgresRecords builds a record store over the given pool.
func NewPostgresRecords(pool *pgxpool.Pool) *PostgresRecords {
	return &PostgresRecords{pool: pool}
}

// Claim inserts a pending record unless an active one holds the name. The
// primary key plus the conditional upsert make the claim atomic: of two
// racing uploads exactly one gets the row, the other sees no returned row.
// A failed row does not block and is overwritten by the new claim.
func (r *PostgresRecords) Claim(ctx context.Context, rec Record) error {
	ctx, cancel := context.WithTimeout(ctx, recordsTimeout)
	defer cancel()

	query := `
INSERT INTO artifact_records (name, content_type, owner_id, uploaded_at, status)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (name) DO UPDATE
SET content_type = EXCLUDED.content_type,
    owner_id     = EXCLUDED.owner_id,
    uploaded_at  = EXCLUDED.uploaded_at,
    status       = EXCLUDED.status
WHERE artifact_records.status = $6
RETURNING name;`

	var name string
	err := r.pool.QueryRow(ctx, query,
		rec.Name, rec.ContentType, rec.OwnerID, rec.UploadedAt, StatusPending, StatusFailed,
	).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNameTaken
		}
		return fmt.Errorf("claim artifact record: %w", err)
	}
	return nil
}

// SetStatus transitions a pending record to the given status. If another
// writer already resolved the record, the stored record is returned as-is.
func (r *PostgresRecords) SetStatus(ctx context.Context, name string, status Status) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, recordsTimeout)
	defer cancel()

	query := `
UPDATE artifact_records
SET status = $2
WHERE name = $1 AND status = $3
RETURNING name, content_type, owner_id, uploaded_at, status;`

	var rec Record
	err := r.pool.QueryRow(ctx, query, name, status, StatusPending).Scan(
		&rec.Name, &rec.ContentType, &rec.OwnerID, &rec.UploadedAt, &rec.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.Get(ctx, name)
		}
		return Record{}, fmt.Errorf("set artifact status: %w", err)
	}
	return rec, nil
}

// Get fetches the record stored under name.
func (r *PostgresRecords) Get(ctx context.Context, name string) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, recordsTimeout)
	defer cancel()

	query := `
SELECT name, content_type, owner_id, uploaded_at, status
FROM artifact_records
WHERE name = $1;`

	var rec Record
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&rec.Name, &rec.ContentType, &rec.OwnerID, &rec.UploadedAt, &rec.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, fmt.Errorf("get artifact record: %w", err)
	}
	return rec, nil
}

// List returns all records ordered by upload time, newest first.
func (r *PostgresRecords) List(ctx context.Context) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, recordsTimeout)
	defer cancel()

	query := `
SELECT name, content_type, owner_id, uploaded_at, status
FROM artifact_records
ORDER BY uploaded_at DESC;`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list artifact records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Name, &rec.ContentType, &rec.OwnerID, &rec.UploadedAt, &rec.Status); err != nil {
			return nil, fmt.Errorf("scan artifact record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artifact records: %w", err)
	}
	return records, nil
}

// Delete removes the record; deleting an absent name is a no-op.
func (r *PostgresRecords) Delete(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, recordsTimeout)
	defer cancel()

	if _, err := r.pool.Exec(ctx, `DELETE FROM artifact_records WHERE name = $1;`, name); err != nil {
		return fmt.Errorf("delete artifact record: %w", err)
	}
	return nil
}

// ExistsActive reports whether a pending or succeeded record holds name.
func (r *PostgresRecords) ExistsActive(ctx context.Context, name string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, recordsTimeout)
	defer cancel()

	query := `
SELECT EXISTS (
    SELECT 1 FROM artifact_records
    WHERE name = $1 AND status IN ($2, $3)
);`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, name, StatusPending, StatusSucceeded).Scan(&exists); err != nil {
		return false, fmt.Errorf("check active artifact record: %w", err)
	}
	return exists, nil
}
