package repository

import (
	"context"

	"github.com/deppfellow/flavors/internal/model"
	"github.com/deppfellow/flavors/internal/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const flavorColumns = `id, name, is_favorite, created_at, updated_at`

const (
	listFlavorsSQL = `SELECT ` + flavorColumns + ` FROM flavors`

	getFlavorSQL = `SELECT ` + flavorColumns + ` FROM flavors WHERE id = $1`

	createFlavorSQL = `
		INSERT INTO flavors (name, is_favorite)
		VALUES ($1, $2)
		RETURNING ` + flavorColumns

	updateFlavorSQL = `
		UPDATE flavors
		SET name = $1,
			is_favorite = $2,
			updated_at = now()
		WHERE id = $3
		RETURNING ` + flavorColumns

	deleteFlavorSQL = `DELETE FROM flavors WHERE id = $1`
)

// FlavorRepository runs the flavors queries. Each method is a single
// statement, so callers never see a partially applied write.
//
// Ids are passed through as the caller's string. Postgres parses them, and
// a value that is not an integer comes back as an invalid_text_representation
// error instead of being rejected here.
type FlavorRepository struct {
	db DBTX
}

func NewFlavorRepository(db DBTX) *FlavorRepository {
	return &FlavorRepository{db: db}
}

// List returns every row in storage order. An empty table yields an empty,
// non-nil slice.
func (r *FlavorRepository) List(ctx context.Context) ([]model.Flavor, error) {
	rows, err := r.db.Query(ctx, listFlavorsSQL)
	if err != nil {
		return nil, sqlerr.InTable(model.FlavorsTable, errors.Wrap(err, "listing flavors"))
	}

	flavors, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Flavor])
	if err != nil {
		return nil, sqlerr.InTable(model.FlavorsTable, errors.Wrap(err, "collecting flavors"))
	}
	if flavors == nil {
		flavors = []model.Flavor{}
	}
	return flavors, nil
}

// GetByID returns the row with the given id, or an error wrapping
// pgx.ErrNoRows.
func (r *FlavorRepository) GetByID(ctx context.Context, id string) (*model.Flavor, error) {
	return r.one(ctx, "getting flavor", getFlavorSQL, id)
}

// Create inserts a row. A null field is stored as NULL, so a missing name
// trips the NOT NULL constraint and a missing is_favorite stays NULL.
// Other values reach Postgres as text and are parsed by the column type.
func (r *FlavorRepository) Create(ctx context.Context, fields model.FlavorFields) (*model.Flavor, error) {
	name, isFavorite := fieldArgs(fields)
	return r.one(ctx, "creating flavor", createFlavorSQL, name, isFavorite)
}

// Update overwrites name and is_favorite and bumps updated_at. Both fields
// are written even when null. A missing row is reported as pgx.ErrNoRows.
func (r *FlavorRepository) Update(ctx context.Context, id string, fields model.FlavorFields) (*model.Flavor, error) {
	name, isFavorite := fieldArgs(fields)
	return r.one(ctx, "updating flavor", updateFlavorSQL, name, isFavorite, id)
}

// Delete removes the row if there is one. Deleting a missing id is not an
// error.
func (r *FlavorRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, deleteFlavorSQL, id); err != nil {
		return sqlerr.InTable(model.FlavorsTable, errors.Wrap(err, "deleting flavor"))
	}
	return nil
}

func (r *FlavorRepository) one(ctx context.Context, op, query string, args ...any) (*model.Flavor, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, sqlerr.InTable(model.FlavorsTable, errors.Wrap(err, op))
	}

	flavor, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Flavor])
	if err != nil {
		return nil, sqlerr.InTable(model.FlavorsTable, errors.Wrap(err, op))
	}
	return &flavor, nil
}

// fieldArgs returns *string arguments, which pgx always sends in text
// format whatever the parameter type.
func fieldArgs(fields model.FlavorFields) (*string, *string) {
	return fields.Name.Text(), fields.IsFavorite.Text()
}
