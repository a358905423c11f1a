package model

import (
	"strconv"
	"time"
)

// Stages an opportunity moves through.
var Stages = []string{"lead", "qualified", "proposal", "won", "lost"}

// Proposal statuses.
var ProposalStatuses = []string{"draft", "sent", "accepted", "declined"}

// Owner is a sales rep that opportunities and proposals are assigned to.
type Owner struct {
	ID   int64
	Name string
}

// OwnerKey returns the filter value used for an owner, e.g. "owner:42".
func OwnerKey(id int64) string {
	return "owner:" + strconv.FormatInt(id, 10)
}

// Opportunity represents a deal in the pipeline with its owner joined.
type Opportunity struct {
	ID        int64
	Name      string
	Account   string
	Stage     string
	OwnerID   int64
	OwnerName string
	Amount    *float64
	CloseDate string // ISO 8601 date (YYYY-MM-DD)
	CreatedAt time.Time
}

// Key returns the stable row id.
func (o Opportunity) Key() string {
	return "opp:" + strconv.FormatInt(o.ID, 10)
}

// Proposal represents a quote sent against an opportunity.
type Proposal struct {
	ID              int64
	Title           string
	OpportunityID   int64
	OpportunityName string
	Status          string
	OwnerID         int64
	OwnerName       string
	Value           *float64
	SentOn          string // ISO 8601 date, empty while draft
	CreatedAt       time.Time
}

// Key returns the stable row id.
func (p Proposal) Key() string {
	return "prop:" + strconv.FormatInt(p.ID, 10)
}

// NewOpportunity represents data for creating an opportunity.
type NewOpportunity struct {
	Name      string
	Account   string
	Stage     string
	OwnerID   int64
	Amount    *float64
	CloseDate string
}

// NewProposal represents data for creating a proposal.
type NewProposal struct {
	Title         string
	OpportunityID int64
	Status        string
	Value         *float64
	SentOn        string
}
