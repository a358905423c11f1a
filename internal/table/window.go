package table

// WindowState is the incremental loader state.
type WindowState int

const (
	WindowIdle WindowState = iota
	WindowLoading
	WindowExhausted
)

func (s WindowState) String() string {
	switch s {
	case WindowLoading:
		return "loading"
	case WindowExhausted:
		return "exhausted"
	default:
		return "idle"
	}
}

// DefaultPageSize is used when a window is created with a non-positive size.
const DefaultPageSize = 20

// Window reveals a growing prefix of a collection one page at a time.
//
// LoadMore and Commit are split so a trigger that fires again before the
// previous page lands cannot advance the window twice.
type Window struct {
	pageSize  int
	displayed int
	total     int
	state     WindowState
}

// NewWindow creates an empty window. The first LoadMore reveals the first page.
func NewWindow(pageSize int) *Window {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Window{pageSize: pageSize}
}

// PageSize returns the page size.
func (w *Window) PageSize() int { return w.pageSize }

// Displayed returns the number of revealed items.
func (w *Window) Displayed() int { return w.displayed }

// Total returns the known collection length.
func (w *Window) Total() int { return w.total }

// State returns the loader state.
func (w *Window) State() WindowState { return w.state }

// IsLoading reports whether a page is pending.
func (w *Window) IsLoading() bool { return w.state == WindowLoading }

// HasMore reports whether items remain hidden.
func (w *Window) HasMore() bool { return w.displayed < w.total }

// LoadMore starts loading the next page. It returns false, changing nothing,
// while a page is already pending or nothing remains.
func (w *Window) LoadMore() bool {
	if w.state == WindowLoading || !w.HasMore() {
		return false
	}
	w.state = WindowLoading
	return true
}

// Commit appends the pending page. It is a no-op unless loading.
func (w *Window) Commit() bool {
	if w.state != WindowLoading {
		return false
	}
	w.displayed = min(w.displayed+w.pageSize, w.total)
	w.settle()
	return true
}

// Reset returns to the first page of a new collection of length total.
func (w *Window) Reset(total int) {
	w.total = max(total, 0)
	w.displayed = min(w.pageSize, w.total)
	w.state = WindowIdle
	w.settle()
}

// SetTotal updates the known length without resetting, for collections that
// grow while displayed. A shrink clamps the displayed count.
func (w *Window) SetTotal(total int) {
	w.total = max(total, 0)
	if w.displayed > w.total {
		w.displayed = w.total
	}
	if w.state != WindowLoading {
		w.settle()
	}
}

// Bounds returns the half-open range of revealed items.
func (w *Window) Bounds() (start, end int) {
	return 0, w.displayed
}

func (w *Window) settle() {
	if w.total > 0 && w.displayed >= w.total {
		w.state = WindowExhausted
		return
	}
	w.state = WindowIdle
}

// ProximityTrigger converts a level "sentinel is near the viewport" signal
// into a single LoadMore per crossing.
type ProximityTrigger struct {
	near bool
}

// Observe records the current proximity and returns true exactly once per
// transition from far to near while the window is armed.
func (t *ProximityTrigger) Observe(near bool, w *Window) bool {
	crossed := near && !t.near
	t.near = near
	if !crossed {
		return false
	}
	return w.LoadMore()
}

// Rearm forgets the last observation, used after a reset.
func (t *ProximityTrigger) Rearm() {
	t.near = false
}
