package postgres

import (
	"context"
	"database/sql"

	"propdocs/internal/model"
	"propdocs/internal/repository"
)

// PropertyPostgres reads the properties table.
type PropertyPostgres struct {
	db *sql.DB
}

// NewPropertyPostgres creates a new PropertyPostgres repository.
func NewPropertyPostgres(db *sql.DB) *PropertyPostgres {
	return &PropertyPostgres{db: db}
}

var _ repository.PropertyRepository = (*PropertyPostgres)(nil)

// List returns all properties ordered by name.
func (r *PropertyPostgres) List(ctx context.Context) ([]model.Property, error) {
	const q = `SELECT id, name, address FROM properties ORDER BY name ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Property, 0)
	for rows.Next() {
		var p model.Property
		if err := rows.Scan(&p.ID, &p.Name, &p.Address); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// FindByID fetches a single property.
func (r *PropertyPostgres) FindByID(ctx context.Context, id string) (*model.Property, error) {
	const q = `SELECT id, name, address FROM properties WHERE id = $1`
	var p model.Property
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Name, &p.Address); err != nil {
		return nil, err
	}
	return &p, nil
}
