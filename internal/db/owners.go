package db

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"golang.org/x/sync/singleflight"

	"pipeline/internal/model"
	"pipeline/internal/table"
)

// ListOwners retrieves owners whose name matches search, ordered by name.
func ListOwners(ctx context.Context, db *sql.DB, search string) ([]model.Owner, error) {
	query := `
		SELECT id, name
		FROM owners
		WHERE (? = '' OR name LIKE ? ESCAPE '\')
		ORDER BY name
	`

	rows, err := db.QueryContext(ctx, query, search, containsPattern(search))
	if err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	defer rows.Close()

	var results []model.Owner
	for rows.Next() {
		var o model.Owner
		if err := rows.Scan(&o.ID, &o.Name); err != nil {
			return nil, fmt.Errorf("failed to scan owner row: %w", err)
		}
		results = append(results, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating owner rows: %w", err)
	}

	return results, nil
}

// InsertOwner creates a new owner.
func InsertOwner(ctx context.Context, db *sql.DB, name string) (int64, error) {
	result, err := db.ExecContext(ctx, "INSERT INTO owners (name) VALUES (?)", name)
	if err != nil {
		return 0, fmt.Errorf("failed to insert owner: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

// OwnerOptions serves the owner filter's option list. Concurrent lookups for
// the same search share one query.
type OwnerOptions struct {
	db    *sql.DB
	group singleflight.Group
}

// NewOwnerOptions creates an option source over db.
func NewOwnerOptions(db *sql.DB) *OwnerOptions {
	return &OwnerOptions{db: db}
}

// Options returns owners matching search as filter options valued
// "owner:<id>".
func (o *OwnerOptions) Options(ctx context.Context, search string) ([]table.Option, error) {
	v, err, _ := o.group.Do("owners:"+search, func() (interface{}, error) {
		owners, err := ListOwners(ctx, o.db, search)
		if err != nil {
			return nil, err
		}
		opts := make([]table.Option, 0, len(owners))
		for _, owner := range owners {
			opts = append(opts, table.Option{Value: model.OwnerKey(owner.ID), Label: owner.Name})
		}
		return opts, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]table.Option)), nil
}
