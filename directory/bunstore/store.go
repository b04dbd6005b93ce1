// Package bunstore provides the bun/SQLite implementation of
// directory.Repository.
package bunstore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/smccd/siteindex-cache/directory"
)

// Open opens a SQLite database at dsn and wraps it in a bun.DB.
func Open(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// Store implements directory.Repository on top of bun.
type Store struct {
	db *bun.DB
}

// New wraps an existing bun.DB.
func New(db *bun.DB) *Store {
	return &Store{db: db}
}

// Init creates the site_links table when missing.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*directory.SiteLink)(nil)).
		IfNotExists().
		Exec(ctx)
	return errors.Wrap(err, "create site_links table")
}

// FindMany returns the rows matching the filter, ordered by title.
// Campus and letter match exactly (case-insensitively); the search term
// matches anywhere in the title.
func (s *Store) FindMany(ctx context.Context, filter directory.ListFilter) ([]directory.SiteLink, error) {
	links := make([]directory.SiteLink, 0)
	q := s.db.NewSelect().Model(&links)
	applyFilter(q, filter)
	if err := q.Order("title ASC").Scan(ctx); err != nil {
		return nil, errors.Wrap(err, "list site links")
	}
	return links, nil
}

// Count returns the number of rows matching the filter.
func (s *Store) Count(ctx context.Context, filter directory.ListFilter) (int, error) {
	q := s.db.NewSelect().Model((*directory.SiteLink)(nil))
	applyFilter(q, filter)
	n, err := q.Count(ctx)
	return n, errors.Wrap(err, "count site links")
}

// FindByID returns the row with the given ID, or directory.ErrNotFound.
func (s *Store) FindByID(ctx context.Context, id string) (*directory.SiteLink, error) {
	link := new(directory.SiteLink)
	err := s.db.NewSelect().Model(link).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, directory.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get site link")
	}
	return link, nil
}

// Create inserts the link, assigning an ID and timestamps.
func (s *Store) Create(ctx context.Context, link *directory.SiteLink) (*directory.SiteLink, error) {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	link.CreatedAt = now
	link.UpdatedAt = now

	if _, err := s.db.NewInsert().Model(link).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, "create site link")
	}
	return link, nil
}

// Update applies the non-nil fields to the row and returns the updated
// row, or directory.ErrNotFound.
func (s *Store) Update(ctx context.Context, id string, fields directory.UpdateFields) (*directory.SiteLink, error) {
	link, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if fields.Title != nil {
		link.Title = *fields.Title
	}
	if fields.URL != nil {
		link.URL = *fields.URL
	}
	if fields.Campus != nil {
		link.Campus = *fields.Campus
	}
	if fields.Letter != nil {
		link.Letter = *fields.Letter
	}
	link.UpdatedAt = time.Now().UTC()

	if _, err := s.db.NewUpdate().Model(link).WherePK().Exec(ctx); err != nil {
		return nil, errors.Wrap(err, "update site link")
	}
	return link, nil
}

// Delete removes the row and returns it, or directory.ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) (*directory.SiteLink, error) {
	link, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.NewDelete().Model(link).WherePK().Exec(ctx); err != nil {
		return nil, errors.Wrap(err, "delete site link")
	}
	return link, nil
}

func applyFilter(q *bun.SelectQuery, filter directory.ListFilter) {
	if campus := strings.TrimSpace(filter.Campus); campus != "" {
		q.Where("lower(campus) = ?", strings.ToLower(campus))
	}
	if letter := strings.TrimSpace(filter.Letter); letter != "" {
		q.Where("lower(letter) = ?", strings.ToLower(letter))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		q.Where("lower(title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
}
