package table

import (
	"slices"
	"strconv"
	"strings"
)

// Direction is a sort direction. The zero value means unsorted.
type Direction string

const (
	DirectionNone Direction = ""
	Ascending     Direction = "asc"
	Descending    Direction = "desc"
)

// SortConfig is the current sort key and direction. An empty Key keeps
// insertion order.
type SortConfig struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
}

// Active reports whether a sort is applied.
func (c SortConfig) Active() bool {
	return c.Key != "" && c.Direction != DirectionNone
}

func (c SortConfig) normalized() SortConfig {
	if c.Key == "" || (c.Direction != Ascending && c.Direction != Descending) {
		return SortConfig{}
	}
	return c
}

// ValueFunc extracts the sortable value of key from row. ok is false for a
// null value.
type ValueFunc[T any] func(row T, key string) (value string, ok bool)

// SortManager holds the sort config and derives sorted copies of a collection.
type SortManager[T any] struct {
	config SortConfig
	value  ValueFunc[T]
}

// NewSortManager creates a sort manager reading values through value.
func NewSortManager[T any](value ValueFunc[T]) *SortManager[T] {
	return &SortManager[T]{value: value}
}

// Config returns the current sort config.
func (m *SortManager[T]) Config() SortConfig {
	return m.config
}

// RequestSort cycles the direction for key: a new key starts ascending, then
// descending, then the sort is cleared.
func (m *SortManager[T]) RequestSort(key string) SortConfig {
	switch {
	case key == "":
		m.config = SortConfig{}
	case m.config.Key != key:
		m.config = SortConfig{Key: key, Direction: Ascending}
	case m.config.Direction == Ascending:
		m.config.Direction = Descending
	default:
		m.config = SortConfig{}
	}
	return m.config
}

// SetSort sets the sort config directly.
func (m *SortManager[T]) SetSort(cfg SortConfig) {
	m.config = cfg.normalized()
}

// Apply returns a stably sorted copy of rows. rows is not modified.
func (m *SortManager[T]) Apply(rows []T) []T {
	out := slices.Clone(rows)
	if !m.config.Active() || m.value == nil {
		return out
	}
	key := m.config.Key
	desc := m.config.Direction == Descending
	slices.SortStableFunc(out, func(a, b T) int {
		av, aok := m.value(a, key)
		bv, bok := m.value(b, key)
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return 1
		case !bok:
			return -1
		}
		c := CompareValues(av, bv)
		if desc {
			return -c
		}
		return c
	})
	return out
}

// CompareValues compares numerically when both values parse as numbers,
// otherwise case-insensitively.
func CompareValues(a, b string) int {
	af, aerr := strconv.ParseFloat(strings.TrimSpace(a), 64)
	bf, berr := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if aerr == nil && berr == nil {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
