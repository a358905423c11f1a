package table

// LegacyFilter is the older flat filter shape: a scalar value with its own
// change and clear callbacks. A legacy filter with options is a single
// select; without options it is a free-text search.
type LegacyFilter struct {
	ID       string
	Label    string
	Value    string
	Options  []Option
	OnChange func(value string)
	OnClear  func()
}

// FilterSource is either LegacyFilters or UnifiedFilters.
type FilterSource interface {
	isFilterSource()
}

// LegacyFilters is a set of flat callback-per-filter definitions.
type LegacyFilters []LegacyFilter

// UnifiedFilters is a set of state-bag filter definitions.
type UnifiedFilters []Filter

func (LegacyFilters) isFilterSource()  {}
func (UnifiedFilters) isFilterSource() {}

// ResolveFilters builds the filter bag for src. Legacy callbacks are driven
// from the bag, so both shapes share rendering and reset behavior.
func ResolveFilters(src FilterSource) (*FilterState, error) {
	switch src := src.(type) {
	case nil:
		return NewFilterState()
	case UnifiedFilters:
		return NewFilterState(src...)
	case LegacyFilters:
		return resolveLegacy(src)
	default:
		return nil, invalid("unsupported filter source", nil)
	}
}

func resolveLegacy(legacy LegacyFilters) (*FilterState, error) {
	defs := make([]Filter, 0, len(legacy))
	byID := make(map[string]LegacyFilter, len(legacy))
	for _, lf := range legacy {
		typ := FilterSearch
		if len(lf.Options) > 0 {
			typ = FilterSingleSelect
		}
		defs = append(defs, Filter{
			ID:      lf.ID,
			Label:   lf.Label,
			Type:    typ,
			Value:   Text(lf.Value),
			Options: lf.Options,
		})
		byID[lf.ID] = lf
	}
	state, err := NewFilterState(defs...)
	if err != nil {
		return nil, err
	}

	last := make(map[string]FilterValue, len(defs))
	for _, f := range state.Filters() {
		last[f.ID] = f.Value
	}
	state.Subscribe(func(filters []Filter) {
		for _, f := range filters {
			prev := last[f.ID]
			if prev.Equal(f.Value) {
				continue
			}
			last[f.ID] = f.Value
			lf := byID[f.ID]
			if !f.IsActive() && lf.OnClear != nil {
				lf.OnClear()
				continue
			}
			if lf.OnChange != nil {
				value := f.Value.String()
				if !f.IsActive() {
					value = ""
				}
				lf.OnChange(value)
			}
		}
	})
	return state, nil
}
