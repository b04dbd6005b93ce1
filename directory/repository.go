package directory

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("site link not found")

// Repository is the system-of-record for site links. The cache layer
// never masks its errors and never caches them.
type Repository interface {
	FindMany(ctx context.Context, filter ListFilter) ([]SiteLink, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	FindByID(ctx context.Context, id string) (*SiteLink, error)
	Create(ctx context.Context, link *SiteLink) (*SiteLink, error)
	Update(ctx context.Context, id string, fields UpdateFields) (*SiteLink, error)
	Delete(ctx context.Context, id string) (*SiteLink, error)
}
