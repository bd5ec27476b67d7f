package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"propdocs/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTagPostgres(db)
	ctx := context.Background()

	t.Run("list", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, name, color FROM tags ORDER BY name ASC").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "color"}).
				AddRow("t1", "Gas", "#f97316").
				AddRow("t2", "Water", "#0ea5e9"))

		tags, err := repo.List(ctx)

		require.NoError(t, err)
		assert.Equal(t, []model.Tag{
			{ID: "t1", Name: "Gas", Color: "#f97316"},
			{ID: "t2", Name: "Water", Color: "#0ea5e9"},
		}, tags)
	})

	t.Run("create", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO tags").
			WithArgs("t3", "Urgent", "#ef4444").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "color"}).AddRow("t3", "Urgent", "#ef4444"))

		tag, err := repo.Create(ctx, &model.Tag{ID: "t3", Name: "Urgent", Color: "#ef4444"})

		require.NoError(t, err)
		assert.Equal(t, "t3", tag.ID)
	})

	t.Run("create duplicate", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO tags").WillReturnError(errors.New("duplicate key"))

		tag, err := repo.Create(ctx, &model.Tag{ID: "t4", Name: "Urgent"})

		assert.Error(t, err)
		assert.Nil(t, tag)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPropertyPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPropertyPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT id, name, address FROM properties ORDER BY").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "address"}).
			AddRow("p1", "Flat 2", "12 High St"))

	props, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Property{{ID: "p1", Name: "Flat 2", Address: "12 High St"}}, props)

	mock.ExpectQuery(`SELECT id, name, address FROM properties WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	p, err := repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.Nil(t, p)

	assert.NoError(t, mock.ExpectationsWereMet())
}
