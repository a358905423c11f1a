package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"pipeline/internal/table"
	"pipeline/internal/views"
)

// ViewPersister stores saved views in the saved_views table.
type ViewPersister struct {
	db *sql.DB
}

// NewViewPersister creates a views.Persister over db.
func NewViewPersister(db *sql.DB) *ViewPersister {
	return &ViewPersister{db: db}
}

type viewData struct {
	Columns []table.Column   `json:"columns"`
	Sort    table.SortConfig `json:"sort"`
	Filters []table.Filter   `json:"filters"`
}

func (p *ViewPersister) Get(ctx context.Context, pageType string) ([]views.View, error) {
	query := `
		SELECT id, name, data, created_at, updated_at
		FROM saved_views
		WHERE page_type = ?
		ORDER BY name
	`

	rows, err := p.db.QueryContext(ctx, query, pageType)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved views: %w", err)
	}
	defer rows.Close()

	var results []views.View
	for rows.Next() {
		v := views.View{PageType: pageType}
		var data, createdAt, updatedAt string
		if err := rows.Scan(&v.ID, &v.Name, &data, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan saved view: %w", err)
		}
		var d viewData
		if err := json.Unmarshal([]byte(data), &d); err != nil {
			return nil, table.Wrap(table.CodeValidation, "saved view "+strconv.Quote(v.ID)+" is corrupt", err)
		}
		v.Columns, v.Sort, v.Filters = d.Columns, d.Sort, d.Filters
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			v.CreatedAt = t
		}
		if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
			v.UpdatedAt = t
		}
		results = append(results, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating saved views: %w", err)
	}

	return results, nil
}

func (p *ViewPersister) Put(ctx context.Context, v views.View) error {
	data, err := json.Marshal(viewData{Columns: v.Columns, Sort: v.Sort, Filters: v.Filters})
	if err != nil {
		return fmt.Errorf("failed to encode saved view: %w", err)
	}

	query := `
		INSERT INTO saved_views (page_type, id, name, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(page_type, id) DO UPDATE SET
			name = excluded.name,
			data = excluded.data,
			updated_at = excluded.updated_at
	`
	_, err = p.db.ExecContext(ctx, query, v.PageType, v.ID, v.Name, string(data),
		v.CreatedAt.UTC().Format(time.RFC3339Nano), v.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save view: %w", err)
	}
	return nil
}

func (p *ViewPersister) Delete(ctx context.Context, pageType, id string) error {
	if _, err := p.db.ExecContext(ctx, "DELETE FROM saved_views WHERE page_type = ? AND id = ?", pageType, id); err != nil {
		return fmt.Errorf("failed to delete view: %w", err)
	}
	return nil
}
