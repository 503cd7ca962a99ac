package gcsuploader

import "context"

// StorageService defines the interface for import file storage.
// This abstraction allows for easier testing and potential alternative implementations.
type StorageService interface {
	// UploadFile uploads a local file to bucketName/objectName.
	UploadFile(ctx context.Context, bucketName, objectName, filePath string) error

	// FetchFromGCS downloads the object addressed by a gs:// URI.
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)

	// Close releases the underlying client.
	Close() error
}
