// Package storage holds the blob backends that keep uploaded file bytes.
// Metadata lives in postgres; a File row points at a blob through an opaque
// storage key.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrBlobNotFound is returned when no blob exists under the requested key.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is the byte-level storage behind the file store. Put streams the
// reader to storage and reports the number of bytes written; a failed Put must
// not leave a readable blob under the key.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader) (int64, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
