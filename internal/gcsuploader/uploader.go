// Package gcsuploader moves import files in and out of Google Cloud Storage.
package gcsuploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// ErrInvalidURI is returned for URIs that are not of the form gs://bucket/object.
var ErrInvalidURI = errors.New("invalid GCS URI")

// ErrTooLarge is returned when an object exceeds the configured download limit.
var ErrTooLarge = errors.New("object exceeds size limit")

// importsPrefix is the object prefix uploaded import files are stored under.
const importsPrefix = "imports"

// GCSStorageService is the concrete implementation of StorageService
// that interacts with Google Cloud Storage. It holds a shared client.
type GCSStorageService struct {
	client  *storage.Client
	maxSize int64
}

// NewGCSStorageService creates a GCSStorageService. Downloads larger than
// maxSize bytes are rejected; zero means no limit.
// It assumes Application Default Credentials are configured (gcloud auth application-default login).
func NewGCSStorageService(ctx context.Context, maxSize int64) (*GCSStorageService, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewGCSStorageService: create storage client: %w", err)
	}
	return &GCSStorageService{client: client, maxSize: maxSize}, nil
}

// Close closes the storage client.
func (s *GCSStorageService) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// UploadFile uploads a local file to a GCS bucket under the given object name.
func (s *GCSStorageService) UploadFile(ctx context.Context, bucketName, objectName, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file %q: %w", filePath, err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	w.ContentType = "text/csv"

	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return fmt.Errorf("copy file to GCS writer: %w", err)
	}

	// Close to finalize the upload
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize upload: %w", err)
	}

	return nil
}

// FetchFromGCS downloads the file bytes from the given GCS URI.
func (s *GCSStorageService) FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	bucketName, objectPath, err := ParseGCSURI(gcsURI)
	if err != nil {
		return nil, err
	}

	rc, err := s.client.Bucket(bucketName).Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetchFromGCS: reading object %s/%s: %w", bucketName, objectPath, err)
	}
	defer rc.Close()

	if err := checkSize(gcsURI, rc.Attrs.Size, s.maxSize); err != nil {
		return nil, fmt.Errorf("fetchFromGCS: %w", err)
	}

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("fetchFromGCS: reading bytes: %w", err)
	}

	return data, nil
}

// checkSize rejects objects larger than maxSize. A maxSize of zero disables the check.
func checkSize(gcsURI string, size, maxSize int64) error {
	if maxSize > 0 && size > maxSize {
		return fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrTooLarge, gcsURI, size, maxSize)
	}
	return nil
}

// ParseGCSURI splits gs://bucket/path/to/file.csv into bucket and object path.
func ParseGCSURI(gcsURI string) (bucket, object string, err error) {
	if !strings.HasPrefix(gcsURI, "gs://") {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidURI, gcsURI)
	}

	trimmed := strings.TrimPrefix(gcsURI, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w (no object path): %s", ErrInvalidURI, gcsURI)
	}

	return parts[0], parts[1], nil
}

// ExtractFilenameFromGCSURI extracts the filename from a GCS URI.
// e.g., "gs://bucket/folder/file.csv" → "file.csv"
func ExtractFilenameFromGCSURI(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")

	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}

	return path.Base(parts[1])
}

// ImportObjectName returns a unique object name for an uploaded import file,
// e.g. imports/2024/03/01/<uuid>-bank.csv.
func ImportObjectName(filePath string, now time.Time) string {
	return path.Join(importsPrefix, now.UTC().Format("2006/01/02"), uuid.NewString()+"-"+path.Base(filePath))
}

// URI builds a gs:// URI.
func URI(bucket, object string) string {
	return "gs://" + bucket + "/" + object
}

var _ StorageService = (*GCSStorageService)(nil)
