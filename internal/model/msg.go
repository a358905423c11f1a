package model

import (
	"pipeline/internal/table"
	"pipeline/internal/views"
)

// Bubble Tea message types

// ErrorMsg represents an error message.
type ErrorMsg struct {
	Err error
}

// OpportunitiesLoadedMsg is sent when a fetch for the opportunities table
// completes. Token identifies the request it answers.
type OpportunitiesLoadedMsg struct {
	Token table.Token
	Rows  []Opportunity
}

// ProposalsLoadedMsg is sent when a fetch for the proposals table completes.
type ProposalsLoadedMsg struct {
	Token table.Token
	Rows  []Proposal
}

// OwnerOptionsLoadedMsg carries the owner filter options for a screen.
type OwnerOptionsLoadedMsg struct {
	PageType string
	Token    table.Token
	Options  []table.Option
}

// WindowCommitMsg lands a pending page of the incremental loader.
type WindowCommitMsg struct {
	PageType string
}

// ViewsListedMsg carries the saved views of a page type. Token guards
// against an older refresh landing after a newer one.
type ViewsListedMsg struct {
	PageType string
	Token    table.Token
	Views    []views.View
}

// ViewSavedMsg is sent when a view is saved. Previous is set on overwrite.
type ViewSavedMsg struct {
	View     views.View
	Previous *views.View
}

// ViewLoadedMsg is sent when a saved view is read back for applying.
type ViewLoadedMsg struct {
	View views.View
}

// ViewDeletedMsg is sent when a view is deleted.
type ViewDeletedMsg struct {
	Deleted views.View
}

// Screen represents different app screens.
type Screen int

const (
	ScreenOpportunities Screen = iota
	ScreenProposals
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNav Mode = iota
	ModeInsert
)
