package storage

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("storage: document not found")

// DocumentStore serves the documents an audit reads: transcript exports and
// program-requirement files.
type DocumentStore interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Location describes key for error messages and logs ("file://...").
	Location(key string) string
}

// ReadAll fetches a whole document.
func ReadAll(ctx context.Context, s DocumentStore, key string) ([]byte, error) {
	rc, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
