package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// BlobStore is the object-store contract the intake core depends on. Keys are
// caller-supplied and treated as append-only: a key is written once and never
// overwritten in place.
type BlobStore interface {
	// Put writes the content under key and returns the byte count actually
	// persisted, which callers must prefer over client-declared sizes.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (int64, error)
	// Exists reports whether a key is present.
	Exists(ctx context.Context, key string) (bool, error)
}

// Ingest streams content into the store under key while computing its sha256,
// so large uploads are never buffered whole. It returns the hex digest and
// the byte count reported by the store after the write.
func Ingest(ctx context.Context, store BlobStore, key string, r io.Reader, declaredSize int64, contentType string) (string, int64, error) {
	hasher := sha256.New()
	written, err := store.Put(ctx, key, io.TeeReader(r, hasher), declaredSize, contentType)
	if err != nil {
		return "", 0, fmt.Errorf("failed to store object %s: %w", key, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), written, nil
}
