package roster

import (
	"context"
	"errors"
)

// ErrConflict is returned by Store.Put when the stored document changed since
// it was read.
var ErrConflict = errors.New("team document was modified concurrently")

// ErrDuplicatePortfolio is returned when a portfolio URL is already on the roster.
var ErrDuplicatePortfolio = errors.New("portfolio URL already exists")

// Store reads and replaces the single team document.
//
// Put must only succeed when doc.Revision equals the stored revision; on
// success the store writes doc with Revision+1 and updates doc.Revision.
type Store interface {
	Get(ctx context.Context) (*Document, error)
	Put(ctx context.Context, doc *Document) error
}
