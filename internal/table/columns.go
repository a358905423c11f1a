package table

import (
	"fmt"
	"slices"
	"strconv"
)

// MinColumnWidth is the narrowest a column can be resized to.
const MinColumnWidth = 40

// Column describes one table column.
type Column struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Order  int    `json:"order"`
	Width  int    `json:"width"`
	Hidden bool   `json:"hidden,omitempty"`
}

// ColumnManager holds the ordered column layout of one table.
type ColumnManager struct {
	canonical map[string]Column
	columns   []Column // always sorted by Order

	dragging string
}

// NewColumnManager creates a manager over the canonical column set. The
// slice order of defs becomes the initial column order.
func NewColumnManager(defs []Column) *ColumnManager {
	m := &ColumnManager{canonical: make(map[string]Column, len(defs))}
	for _, d := range defs {
		if d.Width < MinColumnWidth {
			d.Width = MinColumnWidth
		}
		d.Hidden = false
		m.canonical[d.ID] = d
		m.columns = append(m.columns, d)
	}
	m.renumber()
	return m
}

// Columns returns a copy of the columns in display order.
func (m *ColumnManager) Columns() []Column {
	return slices.Clone(m.columns)
}

// Visible returns the non-hidden columns in display order.
func (m *ColumnManager) Visible() []Column {
	var out []Column
	for _, c := range m.columns {
		if !c.Hidden {
			out = append(out, c)
		}
	}
	return out
}

// Column returns the column with id.
func (m *ColumnManager) Column(id string) (Column, bool) {
	i := m.index(id)
	if i < 0 {
		return Column{}, false
	}
	return m.columns[i], true
}

// Reorder moves fromID into toID's slot. Moving right lands after toID,
// moving left lands before it.
func (m *ColumnManager) Reorder(fromID, toID string) bool {
	if fromID == toID {
		return false
	}
	from, to := m.index(fromID), m.index(toID)
	if from < 0 || to < 0 {
		return false
	}
	col := m.columns[from]
	m.columns = slices.Delete(m.columns, from, from+1)
	m.columns = slices.Insert(m.columns, to, col)
	m.renumber()
	return true
}

// Resize sets the width of id, clamped to MinColumnWidth.
func (m *ColumnManager) Resize(id string, width int) bool {
	i := m.index(id)
	if i < 0 {
		return false
	}
	m.columns[i].Width = max(width, MinColumnWidth)
	return true
}

// Hide hides id. The last visible column cannot be hidden.
func (m *ColumnManager) Hide(id string) bool {
	i := m.index(id)
	if i < 0 || m.columns[i].Hidden || len(m.Visible()) <= 1 {
		return false
	}
	m.columns[i].Hidden = true
	return true
}

// ShowAll clears every hidden flag.
func (m *ColumnManager) ShowAll() {
	for i := range m.columns {
		m.columns[i].Hidden = false
	}
}

// SetColumnOrder replaces the layout wholesale. The list must cover exactly
// the canonical ids and its orders must be a permutation of 0..n-1; anything
// else is rejected and the current layout kept.
func (m *ColumnManager) SetColumnOrder(list []Column) error {
	next, err := m.validate(list)
	if err != nil {
		return err
	}
	m.columns = next
	m.dragging = ""
	return nil
}

// ValidateColumnOrder checks list the way SetColumnOrder does without
// applying it.
func (m *ColumnManager) ValidateColumnOrder(list []Column) error {
	_, err := m.validate(list)
	return err
}

func (m *ColumnManager) validate(list []Column) ([]Column, error) {
	if len(list) == 0 {
		return nil, invalid("column order is empty", nil)
	}
	if len(list) != len(m.canonical) {
		return nil, invalid(
			fmt.Sprintf("column order has %d columns, want %d", len(list), len(m.canonical)),
			map[string]string{"got": strconv.Itoa(len(list)), "want": strconv.Itoa(len(m.canonical))},
		)
	}
	seen := make(map[string]bool, len(list))
	orders := make([]bool, len(list))
	next := make([]Column, 0, len(list))
	visible := 0
	for _, c := range list {
		def, ok := m.canonical[c.ID]
		if !ok {
			return nil, invalid("unknown column "+strconv.Quote(c.ID), map[string]string{"column": c.ID})
		}
		if seen[c.ID] {
			return nil, invalid("duplicate column "+strconv.Quote(c.ID), map[string]string{"column": c.ID})
		}
		if c.Width <= 0 {
			return nil, invalid("column "+strconv.Quote(c.ID)+" has no width", map[string]string{"column": c.ID})
		}
		if c.Order < 0 || c.Order >= len(list) || orders[c.Order] {
			return nil, invalid(
				fmt.Sprintf("column %q has order %d, want a unique order in 0..%d", c.ID, c.Order, len(list)-1),
				map[string]string{"column": c.ID, "order": strconv.Itoa(c.Order)},
			)
		}
		orders[c.Order] = true
		seen[c.ID] = true
		if !c.Hidden {
			visible++
		}
		next = append(next, Column{
			ID:     c.ID,
			Label:  def.Label,
			Order:  c.Order,
			Width:  max(c.Width, MinColumnWidth),
			Hidden: c.Hidden,
		})
	}
	if visible == 0 {
		return nil, invalid("column order hides every column", nil)
	}
	slices.SortFunc(next, func(a, b Column) int { return a.Order - b.Order })
	return next, nil
}

// DragStart begins a drag of id.
func (m *ColumnManager) DragStart(id string) bool {
	if m.index(id) < 0 {
		return false
	}
	m.dragging = id
	return true
}

// Dragging returns the column being dragged, if any.
func (m *ColumnManager) Dragging() string {
	return m.dragging
}

// DragEnd commits the drag onto targetID.
func (m *ColumnManager) DragEnd(targetID string) bool {
	from := m.dragging
	m.dragging = ""
	if from == "" {
		return false
	}
	return m.Reorder(from, targetID)
}

// DragCancel drops an in-progress drag without committing it.
func (m *ColumnManager) DragCancel() {
	m.dragging = ""
}

func (m *ColumnManager) index(id string) int {
	return slices.IndexFunc(m.columns, func(c Column) bool { return c.ID == id })
}

func (m *ColumnManager) renumber() {
	for i := range m.columns {
		m.columns[i].Order = i
	}
}
