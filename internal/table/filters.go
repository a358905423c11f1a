package table

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"
)

// FilterType is the shape of a filter's value.
type FilterType string

const (
	FilterSearch       FilterType = "search"
	FilterSingleSelect FilterType = "single-select"
	FilterMultiSelect  FilterType = "multi-select"
)

// AllValue is the sentinel meaning "no restriction" for select filters.
const AllValue = "all"

// Option is one choice of a select filter.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FilterValue is either a scalar or a list.
type FilterValue struct {
	text   string
	list   []string
	isList bool
}

// Text returns a scalar filter value.
func Text(s string) FilterValue {
	return FilterValue{text: s}
}

// List returns a list filter value.
func List(values ...string) FilterValue {
	return FilterValue{list: slices.Clone(values), isList: true}
}

// IsList reports whether v holds a list.
func (v FilterValue) IsList() bool { return v.isList }

// String returns the scalar value, or the list joined with commas.
func (v FilterValue) String() string {
	if v.isList {
		return strings.Join(v.list, ",")
	}
	return v.text
}

// Values returns the list values, or the scalar as a one-element list.
func (v FilterValue) Values() []string {
	if v.isList {
		return slices.Clone(v.list)
	}
	if v.text == "" {
		return nil
	}
	return []string{v.text}
}

// Equal reports whether v and o hold the same value.
func (v FilterValue) Equal(o FilterValue) bool {
	if v.isList != o.isList {
		return false
	}
	if v.isList {
		return slices.Equal(v.list, o.list)
	}
	return v.text == o.text
}

// MarshalJSON encodes a scalar as a string and a list as an array.
func (v FilterValue) MarshalJSON() ([]byte, error) {
	if v.isList {
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	}
	return json.Marshal(v.text)
}

// UnmarshalJSON accepts a string or an array of strings.
func (v *FilterValue) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*v = List(list...)
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	*v = Text(text)
	return nil
}

// Filter is one unified filter definition.
type Filter struct {
	ID      string      `json:"id"`
	Label   string      `json:"label,omitempty"`
	Type    FilterType  `json:"type"`
	Value   FilterValue `json:"value"`
	Options []Option    `json:"options,omitempty"`
}

// IsActive reports whether f restricts the collection. The "all" sentinel
// only means "no restriction" for select filters; search text is taken
// literally.
func (f Filter) IsActive() bool {
	return f.restricts(f.Value)
}

func (f Filter) restricts(v FilterValue) bool {
	if f.Type == FilterSearch {
		return strings.TrimSpace(v.String()) != ""
	}
	for _, s := range v.Values() {
		if s = strings.TrimSpace(s); s != "" && s != AllValue {
			return true
		}
	}
	return false
}

func (f Filter) emptyValue() FilterValue {
	switch f.Type {
	case FilterMultiSelect:
		return List()
	case FilterSingleSelect:
		return Text(AllValue)
	default:
		return Text("")
	}
}

func (f Filter) check(v FilterValue) error {
	if (f.Type == FilterMultiSelect) != v.IsList() {
		want := "a single value"
		if f.Type == FilterMultiSelect {
			want = "a list"
		}
		return invalid(
			"filter "+strconv.Quote(f.ID)+" expects "+want,
			map[string]string{"filter": f.ID, "type": string(f.Type)},
		)
	}
	return nil
}

// FilterState is the keyed bag of filters for one table.
type FilterState struct {
	order   []string
	filters map[string]Filter
	tokens  *Tokens

	observers []func([]Filter)
}

// NewFilterState creates a bag from defs, in order. Filters with an empty
// value start at their "all" sentinel.
func NewFilterState(defs ...Filter) (*FilterState, error) {
	s := &FilterState{filters: make(map[string]Filter, len(defs)), tokens: NewTokens()}
	for _, f := range defs {
		if f.ID == "" {
			return nil, invalid("filter id is required", nil)
		}
		if _, dup := s.filters[f.ID]; dup {
			return nil, invalid("duplicate filter "+strconv.Quote(f.ID), map[string]string{"filter": f.ID})
		}
		switch f.Type {
		case FilterSearch, FilterSingleSelect, FilterMultiSelect:
		default:
			return nil, invalid("filter "+strconv.Quote(f.ID)+" has unknown type", map[string]string{"filter": f.ID})
		}
		if !f.IsActive() {
			f.Value = f.emptyValue()
		} else if err := f.check(f.Value); err != nil {
			return nil, err
		}
		f.Options = slices.Clone(f.Options)
		s.order = append(s.order, f.ID)
		s.filters[f.ID] = f
	}
	return s, nil
}

// Subscribe registers fn to receive the bag after every committed change.
func (s *FilterState) Subscribe(fn func([]Filter)) {
	s.observers = append(s.observers, fn)
}

// Filters returns a copy of the bag in definition order.
func (s *FilterState) Filters() []Filter {
	out := make([]Filter, 0, len(s.order))
	for _, id := range s.order {
		f := s.filters[id]
		f.Options = slices.Clone(f.Options)
		out = append(out, f)
	}
	return out
}

// Filter returns the filter with id.
func (s *FilterState) Filter(id string) (Filter, bool) {
	f, ok := s.filters[id]
	return f, ok
}

// SetFilterValue replaces one filter's value.
func (s *FilterState) SetFilterValue(id string, v FilterValue) error {
	f, ok := s.filters[id]
	if !ok {
		return WithMetadata(CodeNotFound, "unknown filter "+strconv.Quote(id), map[string]string{"filter": id})
	}
	if err := f.check(v); err != nil {
		return err
	}
	if !f.restricts(v) {
		v = f.emptyValue()
	}
	if f.Value.Equal(v) {
		return nil
	}
	f.Value = v
	s.filters[id] = f
	s.notify()
	return nil
}

// ClearAllFilters resets every filter to its sentinel and notifies once,
// even when nothing was active, so an explicit clear always refetches.
func (s *FilterState) ClearAllFilters() {
	for _, id := range s.order {
		f := s.filters[id]
		f.Value = f.emptyValue()
		s.filters[id] = f
	}
	s.notify()
}

// ReplaceAll applies values from next to the matching filters in one update.
// Every entry is checked first; on error nothing changes. Filters missing
// from next are cleared. Options are kept from the current bag.
func (s *FilterState) ReplaceAll(next []Filter) error {
	staged, err := s.stage(next)
	if err != nil {
		return err
	}
	s.filters = staged
	s.notify()
	return nil
}

// ValidateAll checks next the way ReplaceAll does without applying it.
func (s *FilterState) ValidateAll(next []Filter) error {
	_, err := s.stage(next)
	return err
}

func (s *FilterState) stage(next []Filter) (map[string]Filter, error) {
	staged := make(map[string]Filter, len(s.filters))
	for id, f := range s.filters {
		f.Value = f.emptyValue()
		staged[id] = f
	}
	for _, in := range next {
		f, ok := staged[in.ID]
		if !ok {
			return nil, invalid("unknown filter "+strconv.Quote(in.ID), map[string]string{"filter": in.ID})
		}
		if !f.restricts(in.Value) {
			continue
		}
		if err := f.check(in.Value); err != nil {
			return nil, err
		}
		f.Value = in.Value
		staged[in.ID] = f
	}
	return staged, nil
}

// HasActiveFilters reports whether any filter restricts the collection.
func (s *FilterState) HasActiveFilters() bool {
	for _, f := range s.filters {
		if f.IsActive() {
			return true
		}
	}
	return false
}

// Active returns the filters that restrict the collection, in order.
func (s *FilterState) Active() []Filter {
	var out []Filter
	for _, id := range s.order {
		if f := s.filters[id]; f.IsActive() {
			out = append(out, f)
		}
	}
	return out
}

// DisplayValue resolves the stored value of id to option labels. Values with
// no matching option are returned raw.
func (s *FilterState) DisplayValue(id string) string {
	f, ok := s.filters[id]
	if !ok || !f.IsActive() {
		return ""
	}
	values := f.Value.Values()
	labels := make([]string, 0, len(values))
	for _, v := range values {
		labels = append(labels, resolveLabel(f.Options, v))
	}
	return strings.Join(labels, ", ")
}

func resolveLabel(options []Option, raw string) string {
	for _, o := range options {
		if o.Value == raw {
			return o.Label
		}
	}
	// Composite values like "owner:42" match an option stored as "42", and
	// the reverse.
	bare := raw
	if i := strings.LastIndexByte(raw, ':'); i >= 0 {
		bare = raw[i+1:]
	}
	for _, o := range options {
		ov := o.Value
		if i := strings.LastIndexByte(ov, ':'); i >= 0 {
			ov = ov[i+1:]
		}
		if ov == bare {
			return o.Label
		}
	}
	return raw
}

// IssueOptionsToken starts an async option lookup for id.
func (s *FilterState) IssueOptionsToken(id string) Token {
	return s.tokens.Issue("options:" + id)
}

// SetOptions installs an option list fetched under tok. Results for anything
// but the newest lookup of id are discarded with a stale response error.
func (s *FilterState) SetOptions(id string, options []Option, tok Token) error {
	if !s.tokens.Accept("options:"+id, tok) {
		return WithMetadata(CodeStaleResponse, "stale options for "+strconv.Quote(id), map[string]string{"filter": id})
	}
	f, ok := s.filters[id]
	if !ok {
		return WithMetadata(CodeNotFound, "unknown filter "+strconv.Quote(id), map[string]string{"filter": id})
	}
	f.Options = slices.Clone(options)
	s.filters[id] = f
	return nil
}

func (s *FilterState) notify() {
	if len(s.observers) == 0 {
		return
	}
	snapshot := s.Filters()
	for _, fn := range s.observers {
		fn(snapshot)
	}
}
