package postgres

import (
	"context"
	"database/sql"

	"propdocs/internal/model"
	"propdocs/internal/repository"
)

// TagPostgres is a PostgreSQL implementation of repository.TagRepository.
type TagPostgres struct {
	db *sql.DB
}

// NewTagPostgres creates a new TagPostgres repository.
func NewTagPostgres(db *sql.DB) *TagPostgres {
	return &TagPostgres{db: db}
}

var _ repository.TagRepository = (*TagPostgres)(nil)

// List returns every tag ordered by name.
func (r *TagPostgres) List(ctx context.Context) ([]model.Tag, error) {
	const q = `SELECT id, name, color FROM tags ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Tag, 0)
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts a tag and returns the stored row.
func (r *TagPostgres) Create(ctx context.Context, tag *model.Tag) (*model.Tag, error) {
	const q = `
		INSERT INTO tags (id, name, color)
		VALUES ($1, $2, $3)
		RETURNING id, name, color
	`
	var out model.Tag
	if err := r.db.QueryRowContext(ctx, q, tag.ID, tag.Name, tag.Color).Scan(&out.ID, &out.Name, &out.Color); err != nil {
		return nil, err
	}
	return &out, nil
}
