package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect/internal/platform/blobstore"
)

// ErrDocumentNotFound covers both a missing metadata row and a missing
// blob.
var ErrDocumentNotFound = errors.New("document not found")

type Service struct {
	docs   DocumentRepository
	blobs  blobstore.BlobStore
	signer *URLSigner
}

func NewService(docs DocumentRepository, blobs blobstore.BlobStore, signer *URLSigner) *Service {
	return &Service{docs: docs, blobs: blobs, signer: signer}
}

// Upload stores the file bytes and records a document row pointing at them.
func (s *Service) Upload(ctx context.Context, patientID, ownerID uuid.UUID, label, fileName, contentType string, content io.Reader) (*Document, error) {
	meta, err := s.blobs.Upload(ctx, blobstore.BlobMetadata{
		FileName:    fileName,
		ContentType: contentType,
	}, content)
	if err != nil {
		return nil, err
	}

	d := &Document{
		PatientID: &patientID,
		OwnerID:   &ownerID,
		Path:      meta.ID,
	}
	if label != "" {
		d.Label = &label
	}
	if err := s.docs.Create(ctx, d); err != nil {
		// The blob is orphaned if the row insert fails; drop it so
		// storage does not accumulate unreferenced files.
		_ = s.blobs.Delete(ctx, meta.ID)
		return nil, fmt.Errorf("store document: %w", err)
	}
	return d, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Document, error) {
	return s.docs.ListByPatient(ctx, patientID)
}

func (s *Service) GetDocument(ctx context.Context, id int64) (*Document, error) {
	return s.docs.GetByID(ctx, id)
}

// SignedURL returns a download token and its expiry for a document.
func (s *Service) SignedURL(ctx context.Context, id int64) (string, time.Time, error) {
	d, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return "", time.Time{}, ErrDocumentNotFound
	}
	return s.signer.Sign(d)
}

// OpenByToken verifies a download token and opens the blob it grants.
func (s *Service) OpenByToken(ctx context.Context, token string) (io.ReadCloser, *blobstore.BlobMetadata, error) {
	_, path, err := s.signer.Verify(token)
	if err != nil {
		return nil, nil, err
	}
	rc, meta, err := s.blobs.Download(ctx, path)
	if err != nil {
		if errors.Is(err, blobstore.ErrBlobNotFound) {
			return nil, nil, ErrDocumentNotFound
		}
		return nil, nil, err
	}
	return rc, meta, nil
}

// Delete removes the metadata row and its blob.
func (s *Service) Delete(ctx context.Context, id int64) error {
	d, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return ErrDocumentNotFound
	}
	if err := s.docs.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, d.Path); err != nil && !errors.Is(err, blobstore.ErrBlobNotFound) {
		return err
	}
	return nil
}
