package ui

import (
	"context"
	"database/sql"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"pipeline/internal/db"
	"pipeline/internal/model"
	"pipeline/internal/table"
	"pipeline/internal/util"
)

// Page types scope saved views.
const (
	PageOpportunities = "opportunities"
	PageProposals     = "proposals"
)

func opportunityColumns() []table.Column {
	return []table.Column{
		{ID: "name", Label: "Name", Width: 240},
		{ID: "account", Label: "Account", Width: 160},
		{ID: "stage", Label: "Stage", Width: 112},
		{ID: "owner", Label: "Owner", Width: 144},
		{ID: "amount", Label: "Amount", Width: 104},
		{ID: "close_date", Label: "Close", Width: 104},
	}
}

func opportunityFilters() table.UnifiedFilters {
	stages := []table.Option{{Value: table.AllValue, Label: "All stages"}}
	for _, s := range model.Stages {
		stages = append(stages, table.Option{Value: s, Label: util.TitleCase(s)})
	}
	return table.UnifiedFilters{
		{ID: "q", Label: "Search", Type: table.FilterSearch},
		{ID: "stage", Label: "Stage", Type: table.FilterSingleSelect, Options: stages},
		{ID: "owner", Label: "Owner", Type: table.FilterMultiSelect},
	}
}

func opportunityValue(o model.Opportunity, key string) (string, bool) {
	switch key {
	case "name":
		return o.Name, true
	case "account":
		return o.Account, o.Account != ""
	case "stage":
		return o.Stage, true
	case "owner":
		return o.OwnerName, true
	case "amount":
		if o.Amount == nil {
			return "", false
		}
		return strconv.FormatFloat(*o.Amount, 'f', -1, 64), true
	case "close_date":
		return o.CloseDate, o.CloseDate != ""
	default:
		return "", false
	}
}

func opportunityCell(o model.Opportunity, id string, width int) string {
	switch id {
	case "stage":
		return util.TitleCase(o.Stage)
	case "amount":
		return util.FormatCurrency(o.Amount)
	case "close_date":
		return util.FormatDateHuman(o.CloseDate)
	}
	v, _ := opportunityValue(o, id)
	return util.TruncateString(v, width)
}

func fetchOpportunities(database *sql.DB) FetchFunc {
	return func(req table.FetchRequest) tea.Cmd {
		q := db.OpportunityQueryFrom(req)
		return func() tea.Msg {
			rows, err := db.ListOpportunities(context.Background(), database, q)
			if err != nil {
				return model.ErrorMsg{Err: err}
			}
			return model.OpportunitiesLoadedMsg{Token: req.Token, Rows: rows}
		}
	}
}

// NewOpportunitiesScreen creates the opportunities table screen.
func NewOpportunitiesScreen(database *sql.DB, pageSize int, popovers *table.PopoverRegistry) (*TableScreen[model.Opportunity], error) {
	return NewTableScreen(
		"opportunities",
		"No opportunities match the current filters.",
		table.Config[model.Opportunity]{
			PageType: PageOpportunities,
			Columns:  opportunityColumns(),
			PageSize: pageSize,
			RowID:    model.Opportunity.Key,
			Value:    opportunityValue,
			Filters:  opportunityFilters(),
			Popovers: popovers,
		},
		opportunityCell,
		fetchOpportunities(database),
	)
}

func proposalColumns() []table.Column {
	return []table.Column{
		{ID: "title", Label: "Title", Width: 240},
		{ID: "opportunity", Label: "Opportunity", Width: 200},
		{ID: "status", Label: "Status", Width: 104},
		{ID: "owner", Label: "Owner", Width: 144},
		{ID: "value", Label: "Value", Width: 104},
		{ID: "sent_on", Label: "Sent", Width: 104},
	}
}

// proposalFilters uses the flat callback filter shape: each callback keeps
// query current, and the fetch reads query.
func proposalFilters(query *db.ProposalQuery) table.LegacyFilters {
	statuses := []table.Option{{Value: table.AllValue, Label: "All statuses"}}
	for _, s := range model.ProposalStatuses {
		statuses = append(statuses, table.Option{Value: s, Label: util.TitleCase(s)})
	}
	return table.LegacyFilters{
		{
			ID:       "q",
			Label:    "Search",
			OnChange: func(v string) { query.Search = v },
		},
		{
			ID:       "status",
			Label:    "Status",
			Options:  statuses,
			OnChange: func(v string) { query.Status = v },
			OnClear:  func() { query.Status = "" },
		},
	}
}

func proposalValue(p model.Proposal, key string) (string, bool) {
	switch key {
	case "title":
		return p.Title, true
	case "opportunity":
		return p.OpportunityName, true
	case "status":
		return p.Status, true
	case "owner":
		return p.OwnerName, true
	case "value":
		if p.Value == nil {
			return "", false
		}
		return strconv.FormatFloat(*p.Value, 'f', -1, 64), true
	case "sent_on":
		return p.SentOn, p.SentOn != ""
	default:
		return "", false
	}
}

func proposalCell(p model.Proposal, id string, width int) string {
	switch id {
	case "status":
		return util.TitleCase(p.Status)
	case "value":
		return util.FormatCurrency(p.Value)
	case "sent_on":
		return util.FormatDate(p.SentOn)
	}
	v, _ := proposalValue(p, id)
	return util.TruncateString(v, width)
}

func fetchProposals(database *sql.DB, query *db.ProposalQuery) FetchFunc {
	return func(req table.FetchRequest) tea.Cmd {
		q := *query
		return func() tea.Msg {
			rows, err := db.ListProposals(context.Background(), database, q)
			if err != nil {
				return model.ErrorMsg{Err: err}
			}
			return model.ProposalsLoadedMsg{Token: req.Token, Rows: rows}
		}
	}
}

// NewProposalsScreen creates the proposals table screen.
func NewProposalsScreen(database *sql.DB, pageSize int, popovers *table.PopoverRegistry) (*TableScreen[model.Proposal], error) {
	query := &db.ProposalQuery{}
	return NewTableScreen(
		"proposals",
		"No proposals match the current filters.",
		table.Config[model.Proposal]{
			PageType: PageProposals,
			Columns:  proposalColumns(),
			PageSize: pageSize,
			RowID:    model.Proposal.Key,
			Value:    proposalValue,
			Filters:  proposalFilters(query),
			Popovers: popovers,
		},
		proposalCell,
		fetchProposals(database, query),
	)
}

func loadOwnerOptionsCmd(owners *db.OwnerOptions, pageType string, tok table.Token) tea.Cmd {
	return func() tea.Msg {
		opts, err := owners.Options(context.Background(), "")
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		return model.OwnerOptionsLoadedMsg{PageType: pageType, Token: tok, Options: opts}
	}
}
