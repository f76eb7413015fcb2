// Package blobstore provides the blob storage abstraction behind the face
// gallery.
//
// A blob store holds one opaque document read and written whole; the gallery
// relies on that read-modify-write shape so readers never observe a partial
// update. Backends: local filesystem and Amazon S3.
package blobstore

import "context"

// Store reads and writes a single blob. Read returns (nil, nil) when the
// blob does not exist yet; errors are reserved for actual I/O failures so
// callers can distinguish "empty gallery" from "gallery unreachable".
type Store interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}
