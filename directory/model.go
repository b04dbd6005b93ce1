package directory

import (
	"time"

	"github.com/uptrace/bun"
)

// SiteLink is one row of the Site Index: a titled URL filed under a
// campus and an index letter.
type SiteLink struct {
	bun.BaseModel `bun:"table:site_links,alias:sl" msgpack:"-"`

	ID        string    `bun:"id,pk" json:"id" msgpack:"id"`
	Title     string    `bun:"title,notnull" json:"title" msgpack:"title"`
	URL       string    `bun:"url,notnull" json:"url" msgpack:"url"`
	Campus    string    `bun:"campus,notnull" json:"campus" msgpack:"campus"`
	Letter    string    `bun:"letter,notnull" json:"letter" msgpack:"letter"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt" msgpack:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updatedAt" msgpack:"updated_at"`
}

// ListFilter narrows a listing query. Zero values mean "all" on that
// dimension.
type ListFilter struct {
	Campus string `json:"campus,omitempty"`
	Letter string `json:"letter,omitempty"`
	Search string `json:"search,omitempty"`
}

// ListResult is the read-path response: the matching rows plus cache
// metadata for the response headers and the admin dashboard.
type ListResult struct {
	Rows     []SiteLink `json:"rows"`
	Total    int        `json:"total"`
	CacheHit bool       `json:"cacheHit"`
	TimingMs int64      `json:"timingMs"`
}

// UpdateFields carries a partial update; nil fields are left untouched.
type UpdateFields struct {
	Title  *string `json:"title,omitempty"`
	URL    *string `json:"url,omitempty"`
	Campus *string `json:"campus,omitempty"`
	Letter *string `json:"letter,omitempty"`
}
