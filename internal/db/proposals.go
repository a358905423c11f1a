package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"pipeline/internal/model"
)

// ProposalQuery narrows ListProposals. Rows come back in id order.
type ProposalQuery struct {
	Search string
	Status string
}

// ListProposals retrieves proposals joined with their opportunity and owner.
func ListProposals(ctx context.Context, db *sql.DB, q ProposalQuery) ([]model.Proposal, error) {
	query := `
		SELECT
			p.id,
			p.title,
			p.opportunity_id,
			o.name,
			p.status,
			o.owner_id,
			w.name,
			p.value,
			COALESCE(p.sent_on, ''),
			p.created_at
		FROM proposals p
		JOIN opportunities o ON o.id = p.opportunity_id
		JOIN owners w ON w.id = o.owner_id
		WHERE (? = '' OR p.title LIKE ? ESCAPE '\' OR o.name LIKE ? ESCAPE '\')
		  AND (? IN ('', 'all') OR p.status = ?)
		ORDER BY p.id`

	search := strings.TrimSpace(q.Search)
	pattern := containsPattern(search)
	rows, err := db.QueryContext(ctx, query, search, pattern, pattern, q.Status, q.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	defer rows.Close()

	var results []model.Proposal
	for rows.Next() {
		var p model.Proposal
		var value sql.NullFloat64
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Title, &p.OpportunityID, &p.OpportunityName, &p.Status, &p.OwnerID, &p.OwnerName, &value, &p.SentOn, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan proposal row: %w", err)
		}
		if value.Valid {
			p.Value = &value.Float64
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			p.CreatedAt = t
		}
		results = append(results, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating proposal rows: %w", err)
	}

	return results, nil
}

// InsertProposal creates a new proposal.
func InsertProposal(ctx context.Context, db *sql.DB, p model.NewProposal) (int64, error) {
	query := `
		INSERT INTO proposals (title, opportunity_id, status, value, sent_on)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := db.ExecContext(ctx, query, p.Title, p.OpportunityID, p.Status, nullableFloat(p.Value), nullableString(p.SentOn))
	if err != nil {
		return 0, fmt.Errorf("failed to insert proposal: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}
