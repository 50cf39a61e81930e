package artifact

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abduss/artifactrepo/internal/auth"
	"github.com/abduss/artifactrepo/internal/config"
	"github.com/abduss/artifactrepo/internal/metrics"
	"go.uber.org/zap"
)

// Service coordinates artifact metadata and blob storage. The two stores
// cannot be updated atomically together; uploads claim the name with a
// pending record first, then resolve it to succeeded or failed once the
// blob write concludes.
type Service struct {
	records     RecordStore
	blobs       BlobStore
	gate        *Gate
	baseURL     string
	allowed     map[string]struct{}
	blobTimeout time.Duration
	maxUpload   int64
	log         *zap.Logger
}

// NewService constructs the coordinator. An empty allow-list accepts any
// content type.
func NewService(records RecordStore, blobs BlobStore, gate *Gate, cfg config.ArtifactConfig, log *zap.Logger) *Service {
	var allowed map[string]struct{}
	if len(cfg.AllowedTypes) > 0 {
		allowed = make(map[string]struct{}, len(cfg.AllowedTypes))
		for _, t := range cfg.AllowedTypes {
			allowed[t] = struct{}{}
		}
	}
	return &Service{
		records:     records,
		blobs:       blobs,
		gate:        gate,
		baseURL:     cfg.BaseURL,
		allowed:     allowed,
		blobTimeout: cfg.BlobTimeout,
		maxUpload:   cfg.MaxUploadBytes,
		log:         log,
	}
}

// Upload claims the name with a pending record, writes the blob, and
// resolves the record to a terminal status. A blob-write failure is not
// returned as an error: the caller receives the record in failed status.
func (s *Service) Upload(ctx context.Context, caller auth.Principal, name, contentType string, body io.Reader, size int64, now time.Time) (Record, error) {
	if !s.gate.CanCreate(caller) {
		return Record{}, auth.ErrUnauthorized
	}
	if !validName(name) {
		return Record{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if s.allowed != nil {
		if _, ok := s.allowed[contentType]; !ok {
			return Record{}, fmt.Errorf("%w: %s", ErrTypeNotAllowed, contentType)
		}
	}
	if s.maxUpload > 0 && size > s.maxUpload {
		return Record{}, ErrTooLarge
	}

	// Cheap pre-check; the Claim below is the authority under races.
	taken, err := s.records.ExistsActive(ctx, name)
	if err != nil {
		return Record{}, fmt.Errorf("check name availability: %w", err)
	}
	if taken {
		return Record{}, ErrNameTaken
	}

	rec := Record{
		Name:        name,
		ContentType: contentType,
		OwnerID:     caller.UserID,
		UploadedAt:  now,
		Status:      StatusPending,
	}
	if err := s.records.Claim(ctx, rec); err != nil {
		return Record{}, err
	}

	// Once the claim is durable the upload runs to a terminal status even
	// if the caller disconnects, so the save and the status transition are
	// detached from the request context.
	status := StatusSucceeded
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.blobTimeout)
	defer cancel()
	if err := s.blobs.Save(saveCtx, name, contentType, body, size); err != nil {
		s.log.Error("blob save failed", zap.String("artifact", name), zap.Error(err))
		status = StatusFailed
	}

	stored, err := s.records.SetStatus(context.WithoutCancel(ctx), name, status)
	if err != nil {
		return Record{}, fmt.Errorf("resolve upload status: %w", err)
	}

	metrics.UploadsTotal.WithLabelValues(string(stored.Status)).Inc()
	return stored.WithURL(s.baseURL), nil
}

// List returns all records enriched with their download URLs.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	records, err := s.records.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	enriched := make([]Record, 0, len(records))
	for _, rec := range records {
		enriched = append(enriched, rec.WithURL(s.baseURL))
	}
	return enriched, nil
}

// Open returns the record and stored bytes for the named artifact. The two
// absences stay distinct: a record can exist (pending or failed upload)
// while no blob does, and Open then returns ErrBlobNotFound.
func (s *Service) Open(ctx context.Context, name string) (Record, io.ReadCloser, error) {
	rec, err := s.records.Get(ctx, name)
	if err != nil {
		return Record{}, nil, err
	}
	reader, err := s.blobs.Load(ctx, name)
	if err != nil {
		return Record{}, nil, err
	}
	return rec.WithURL(s.baseURL), reader, nil
}

// Delete removes the blob first and the record second: a half-finished
// delete leaves a record pointing at nothing, which a retry cleans up,
// never an invisible orphaned blob.
func (s *Service) Delete(ctx context.Context, caller auth.Principal, name string) error {
	if !s.gate.CanDelete(ctx, caller, name) {
		return ErrDeleteForbidden
	}

	if err := s.blobs.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}
	if err := s.records.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	metrics.DeletesTotal.Inc()
	return nil
}

// validName rejects names that cannot identify a single artifact. Distinct
// names must never collapse onto one blob, so path separators are refused
// rather than normalized away.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
