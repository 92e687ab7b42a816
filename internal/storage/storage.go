// Package storage provides object storage abstractions for cloud storage operations.
package storage

import (
	"context"
	"errors"
)

// Common errors for storage operations.
var (
	ErrObjectNotFound     = errors.New("object not found")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrUploadFailed       = errors.New("upload failed")
	ErrDownloadFailed     = errors.New("download failed")
	ErrDeleteFailed       = errors.New("delete failed")
)

// ObjectStorage abstracts whole-object reads and writes against cloud object
// storage. Implementations include S3 and the local filesystem.
//
// Versions are opaque tokens (an ETag for S3) that change whenever the object
// content changes.
type ObjectStorage interface {
	// Get returns the full content of an object and its current version.
	// Returns ErrObjectNotFound if the object does not exist.
	Get(ctx context.Context, key string) ([]byte, string, error)

	// Put replaces the object with data in a single write and returns the
	// new version.
	Put(ctx context.Context, key string, data []byte) (string, error)

	// ConditionalPut replaces the object only if its current version equals
	// version. An empty version requires that the object does not exist.
	// Returns ErrPreconditionFailed when the condition does not hold.
	ConditionalPut(ctx context.Context, key string, data []byte, version string) (string, error)

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists in storage.
	Exists(ctx context.Context, key string) (bool, error)
}
