// Package photostore defines where item photo bytes live. A photo reference
// is what an item stores in its photo list: an absolute file path, a file://
// URI, or a key relative to the store's directory.
package photostore

import (
	"context"
	"io"
)

type PhotoStore interface {
	// Save persists r under a file name derived from name and returns the
	// absolute reference to store on the item.
	Save(ctx context.Context, name string, r io.Reader) (ref string, err error)
	// Get resolves a reference to its bytes and MIME type.
	Get(ctx context.Context, ref string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, ref string) error
}
