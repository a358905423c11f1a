package table

import (
	"slices"
)

// Config describes one table screen.
type Config[T any] struct {
	// PageType scopes saved views, e.g. "opportunities".
	PageType string
	// Columns is the canonical column set in default order.
	Columns  []Column
	PageSize int
	RowID    func(T) string
	Value    ValueFunc[T]
	Filters  FilterSource
	// Popovers is shared by every filter widget of the screen. A new
	// registry is created when nil.
	Popovers *PopoverRegistry
}

// FetchRequest asks the data source for a fresh collection.
type FetchRequest struct {
	PageType string
	Filters  []Filter
	Sort     SortConfig
	Token    Token
}

// ViewState is the part of a table a saved view captures.
type ViewState struct {
	Columns []Column   `json:"columns"`
	Sort    SortConfig `json:"sort"`
	Filters []Filter   `json:"filters"`
}

// Props is what a row renderer draws.
type Props[T any] struct {
	Displayed   []T
	Columns     []Column
	Sort        SortConfig
	Selected    []string
	AllSelected bool
	Total       int
	HasMore     bool
	Loading     bool
}

// Table composes the column, sort, selection, window and filter state of one
// table screen. Renderers, filter bars and the views panel only talk to it.
type Table[T any] struct {
	pageType string
	rowID    func(T) string

	columns   *ColumnManager
	sort      *SortManager[T]
	selection *SelectionManager
	window    *Window
	filters   *FilterState
	popovers  *PopoverRegistry
	trigger   ProximityTrigger
	tokens    *Tokens

	raw    []T
	sorted []T

	applying bool
	onFetch  []func(FetchRequest)
	onChange []func()
}

// New creates a table from cfg.
func New[T any](cfg Config[T]) (*Table[T], error) {
	if cfg.RowID == nil {
		return nil, invalid("row id func is required", nil)
	}
	if len(cfg.Columns) == 0 {
		return nil, invalid("at least one column is required", nil)
	}
	filters, err := ResolveFilters(cfg.Filters)
	if err != nil {
		return nil, err
	}
	popovers := cfg.Popovers
	if popovers == nil {
		popovers = NewPopoverRegistry()
	}
	t := &Table[T]{
		pageType:  cfg.PageType,
		rowID:     cfg.RowID,
		columns:   NewColumnManager(cfg.Columns),
		sort:      NewSortManager(cfg.Value),
		selection: NewSelectionManager(),
		window:    NewWindow(cfg.PageSize),
		filters:   filters,
		popovers:  popovers,
		tokens:    NewTokens(),
	}
	filters.Subscribe(func([]Filter) {
		if t.applying {
			return
		}
		t.resetWindow()
		t.emitFetch()
		t.emitChange()
	})
	return t, nil
}

// PageType returns the saved-view scope of the table.
func (t *Table[T]) PageType() string { return t.pageType }

// OnFetch registers fn to receive every fetch request.
func (t *Table[T]) OnFetch(fn func(FetchRequest)) {
	t.onFetch = append(t.onFetch, fn)
}

// OnChange registers fn to run after every committed state change.
func (t *Table[T]) OnChange(fn func()) {
	t.onChange = append(t.onChange, fn)
}

// Refetch asks the data source for the collection matching current state.
func (t *Table[T]) Refetch() FetchRequest {
	return t.emitFetch()
}

// Collection

// SetRows replaces the collection, resetting window and selection.
func (t *Table[T]) SetRows(rows []T) {
	t.raw = slices.Clone(rows)
	t.sorted = t.sort.Apply(t.raw)
	t.resetWindow()
	t.emitChange()
}

// SetRowsFor installs rows fetched for tok. Responses to superseded
// requests are discarded.
func (t *Table[T]) SetRowsFor(tok Token, rows []T) error {
	if !t.tokens.Accept("rows", tok) {
		return NewError(CodeStaleResponse, "stale rows for "+t.pageType)
	}
	t.SetRows(rows)
	return nil
}

// AppendRows extends the collection without resetting window or selection.
func (t *Table[T]) AppendRows(rows []T) {
	if len(rows) == 0 {
		return
	}
	t.raw = append(t.raw, rows...)
	t.sorted = t.sort.Apply(t.raw)
	t.window.SetTotal(len(t.sorted))
	t.emitChange()
}

// Len returns the full collection length.
func (t *Table[T]) Len() int { return len(t.sorted) }

// Displayed returns the revealed prefix of the sorted collection.
func (t *Table[T]) Displayed() []T {
	_, end := t.window.Bounds()
	return slices.Clone(t.sorted[:end])
}

// DisplayedIDs returns the ids of the revealed rows.
func (t *Table[T]) DisplayedIDs() []string {
	_, end := t.window.Bounds()
	ids := make([]string, 0, end)
	for _, row := range t.sorted[:end] {
		ids = append(ids, t.rowID(row))
	}
	return ids
}

// Props returns the renderer's view of the table.
func (t *Table[T]) Props() Props[T] {
	return Props[T]{
		Displayed:   t.Displayed(),
		Columns:     t.columns.Visible(),
		Sort:        t.sort.Config(),
		Selected:    t.selection.IDs(),
		AllSelected: t.selection.AllSelected(),
		Total:       len(t.sorted),
		HasMore:     t.window.HasMore(),
		Loading:     t.window.IsLoading(),
	}
}

// Sort

// Sort returns the sort config.
func (t *Table[T]) Sort() SortConfig { return t.sort.Config() }

// RequestSort cycles the sort for key and re-sorts.
func (t *Table[T]) RequestSort(key string) SortConfig {
	cfg := t.sort.RequestSort(key)
	t.resort()
	return cfg
}

// SetSort sets the sort directly and re-sorts.
func (t *Table[T]) SetSort(cfg SortConfig) {
	t.sort.SetSort(cfg)
	t.resort()
}

func (t *Table[T]) resort() {
	t.sorted = t.sort.Apply(t.raw)
	t.emitChange()
}

// Columns

// Columns returns all columns in display order.
func (t *Table[T]) Columns() []Column { return t.columns.Columns() }

// VisibleColumns returns the non-hidden columns in display order.
func (t *Table[T]) VisibleColumns() []Column { return t.columns.Visible() }

// ReorderColumn moves fromID into toID's slot.
func (t *Table[T]) ReorderColumn(fromID, toID string) bool {
	return t.changed(t.columns.Reorder(fromID, toID))
}

// ResizeColumn sets a column width, clamped to MinColumnWidth.
func (t *Table[T]) ResizeColumn(id string, width int) bool {
	return t.changed(t.columns.Resize(id, width))
}

// HideColumn hides id unless it is the last visible column.
func (t *Table[T]) HideColumn(id string) bool {
	return t.changed(t.columns.Hide(id))
}

// ShowAllColumns unhides every column.
func (t *Table[T]) ShowAllColumns() {
	t.columns.ShowAll()
	t.emitChange()
}

// DragStart begins dragging column id.
func (t *Table[T]) DragStart(id string) bool { return t.columns.DragStart(id) }

// DragEnd drops the dragged column onto targetID.
func (t *Table[T]) DragEnd(targetID string) bool {
	return t.changed(t.columns.DragEnd(targetID))
}

// DragCancel abandons a drag.
func (t *Table[T]) DragCancel() { t.columns.DragCancel() }

// Dragging returns the dragged column id, if any.
func (t *Table[T]) Dragging() string { return t.columns.Dragging() }

// SetColumnOrder replaces the column layout wholesale.
func (t *Table[T]) SetColumnOrder(list []Column) error {
	if err := t.columns.SetColumnOrder(list); err != nil {
		return err
	}
	t.emitChange()
	return nil
}

// Selection

// ToggleRow flips the selection of a row. Only displayed rows can be
// selected; a selected row can be deselected wherever it sits.
func (t *Table[T]) ToggleRow(id string) bool {
	return t.changed(t.selection.Toggle(id, t.DisplayedIDs()))
}

// SelectAll selects every displayed row, or clears the selection.
func (t *Table[T]) SelectAll(checked bool) {
	t.selection.SelectAll(checked, t.DisplayedIDs())
	t.emitChange()
}

// IsRowSelected reports whether id is selected.
func (t *Table[T]) IsRowSelected(id string) bool { return t.selection.IsSelected(id) }

// SelectedIDs returns the selected ids, sorted.
func (t *Table[T]) SelectedIDs() []string { return t.selection.IDs() }

// AllSelected reports the select-all flag.
func (t *Table[T]) AllSelected() bool { return t.selection.AllSelected() }

// Window

// WindowState returns the loader counters and state.
func (t *Table[T]) WindowState() (displayed, pageSize int, state WindowState) {
	return t.window.Displayed(), t.window.PageSize(), t.window.State()
}

// HasMore reports whether rows remain hidden.
func (t *Table[T]) HasMore() bool { return t.window.HasMore() }

// IsLoading reports whether a page is pending.
func (t *Table[T]) IsLoading() bool { return t.window.IsLoading() }

// LoadMore starts revealing the next page. Re-entrant calls are no-ops.
func (t *Table[T]) LoadMore() bool {
	return t.changed(t.window.LoadMore())
}

// CommitLoad reveals the pending page.
func (t *Table[T]) CommitLoad() bool {
	if !t.window.Commit() {
		return false
	}
	t.trigger.Rearm()
	t.emitChange()
	return true
}

// ObserveProximity feeds the boundary signal; it starts at most one load
// per crossing.
func (t *Table[T]) ObserveProximity(near bool) bool {
	return t.changed(t.trigger.Observe(near, t.window))
}

// ResetDisplayedItems returns to the first page and clears the selection.
func (t *Table[T]) ResetDisplayedItems() {
	t.resetWindow()
	t.emitChange()
}

func (t *Table[T]) resetWindow() {
	t.window.Reset(len(t.sorted))
	t.selection.Reset()
	t.trigger.Rearm()
}

// Filters

// Filters returns the filter bag in definition order.
func (t *Table[T]) Filters() []Filter { return t.filters.Filters() }

// SetFilterValue replaces one filter value. Selection and window reset before
// the fetch request goes out.
func (t *Table[T]) SetFilterValue(id string, v FilterValue) error {
	return t.filters.SetFilterValue(id, v)
}

// ClearAllFilters resets every filter with a single fetch request.
func (t *Table[T]) ClearAllFilters() { t.filters.ClearAllFilters() }

// HasActiveFilters reports whether any filter restricts the collection.
func (t *Table[T]) HasActiveFilters() bool { return t.filters.HasActiveFilters() }

// FilterDisplayValue returns the human label of a filter's value.
func (t *Table[T]) FilterDisplayValue(id string) string { return t.filters.DisplayValue(id) }

// IssueOptionsToken starts an option lookup for filter id.
func (t *Table[T]) IssueOptionsToken(id string) Token { return t.filters.IssueOptionsToken(id) }

// SetFilterOptions installs options fetched under tok.
func (t *Table[T]) SetFilterOptions(id string, options []Option, tok Token) error {
	if err := t.filters.SetOptions(id, options, tok); err != nil {
		return err
	}
	t.emitChange()
	return nil
}

// Popovers returns the shared popover registry.
func (t *Table[T]) Popovers() *PopoverRegistry { return t.popovers }

// Views

// Snapshot captures the state a saved view stores.
func (t *Table[T]) Snapshot() ViewState {
	return ViewState{
		Columns: t.columns.Columns(),
		Sort:    t.sort.Config(),
		Filters: t.filters.Filters(),
	}
}

// ApplyView replaces columns, sort and filters together, resets window and
// selection, and then sends one fetch request. Invalid state is rejected
// before anything changes.
func (t *Table[T]) ApplyView(state ViewState) error {
	if err := t.columns.ValidateColumnOrder(state.Columns); err != nil {
		return err
	}
	if err := t.filters.ValidateAll(state.Filters); err != nil {
		return err
	}

	t.applying = true
	if err := t.columns.SetColumnOrder(state.Columns); err != nil {
		t.applying = false
		return err
	}
	t.sort.SetSort(state.Sort)
	err := t.filters.ReplaceAll(state.Filters)
	t.applying = false
	if err != nil {
		return err
	}

	t.sorted = t.sort.Apply(t.raw)
	t.resetWindow()
	t.emitFetch()
	t.emitChange()
	return nil
}

func (t *Table[T]) changed(ok bool) bool {
	if ok {
		t.emitChange()
	}
	return ok
}

func (t *Table[T]) emitFetch() FetchRequest {
	req := FetchRequest{
		PageType: t.pageType,
		Filters:  t.filters.Filters(),
		Sort:     t.sort.Config(),
		Token:    t.tokens.Issue("rows"),
	}
	for _, fn := range t.onFetch {
		fn(req)
	}
	return req
}

func (t *Table[T]) emitChange() {
	for _, fn := range t.onChange {
		fn()
	}
}
