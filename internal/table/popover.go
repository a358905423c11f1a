package table

// PopoverRegistry tracks the single open popover (filter dropdown) across
// every filter widget it is shared with.
type PopoverRegistry struct {
	active string
}

// NewPopoverRegistry creates a registry with nothing open.
func NewPopoverRegistry() *PopoverRegistry {
	return &PopoverRegistry{}
}

// Open makes id the open popover and returns the one it closed, if any.
func (r *PopoverRegistry) Open(id string) (closed string) {
	if r.active == id {
		return ""
	}
	closed = r.active
	r.active = id
	return closed
}

// Close closes id if it is open.
func (r *PopoverRegistry) Close(id string) bool {
	if id == "" || r.active != id {
		return false
	}
	r.active = ""
	return true
}

// Toggle opens id, or closes it when already open. It reports whether id is
// open afterwards.
func (r *PopoverRegistry) Toggle(id string) bool {
	if r.active == id {
		r.active = ""
		return false
	}
	r.active = id
	return true
}

// CloseAll closes whatever is open.
func (r *PopoverRegistry) CloseAll() {
	r.active = ""
}

// Active returns the open popover id, or "".
func (r *PopoverRegistry) Active() string {
	return r.active
}

// IsOpen reports whether id is the open popover.
func (r *PopoverRegistry) IsOpen(id string) bool {
	return id != "" && r.active == id
}
