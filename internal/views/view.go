package views

import (
	"slices"
	"time"

	"pipeline/internal/table"
)

// View is a named snapshot of one table screen's columns, sort and filters.
type View struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	PageType  string           `json:"page_type"`
	Columns   []table.Column   `json:"columns"`
	Sort      table.SortConfig `json:"sort"`
	Filters   []table.Filter   `json:"filters"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// State returns the part of the view a table applies.
func (v View) State() table.ViewState {
	return table.ViewState{
		Columns: slices.Clone(v.Columns),
		Sort:    v.Sort,
		Filters: slices.Clone(v.Filters),
	}
}

func (v View) clone() View {
	v.Columns = slices.Clone(v.Columns)
	v.Filters = slices.Clone(v.Filters)
	return v
}

func cloneAll(list []View) []View {
	out := make([]View, len(list))
	for i, v := range list {
		out[i] = v.clone()
	}
	return out
}
