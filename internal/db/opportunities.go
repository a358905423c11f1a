package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pipeline/internal/model"
	"pipeline/internal/table"
)

// OpportunityQuery narrows ListOpportunities. Rows always come back in id
// order; the table sorts them locally.
type OpportunityQuery struct {
	Search   string
	Stage    string
	OwnerIDs []int64
}

// OpportunityQueryFrom reads the opportunities filter bag of a fetch request.
func OpportunityQueryFrom(req table.FetchRequest) OpportunityQuery {
	var q OpportunityQuery
	for _, f := range req.Filters {
		if !f.IsActive() {
			continue
		}
		switch f.ID {
		case "q":
			q.Search = strings.TrimSpace(f.Value.String())
		case "stage":
			q.Stage = f.Value.String()
		case "owner":
			q.OwnerIDs = parseOwnerIDs(f.Value.Values())
		}
	}
	return q
}

// ListOpportunities retrieves opportunities with their owners, filtered by q.
func ListOpportunities(ctx context.Context, db *sql.DB, q OpportunityQuery) ([]model.Opportunity, error) {
	var where []string
	var args []interface{}
	if q.Search != "" {
		where = append(where, `(o.name LIKE ? ESCAPE '\' OR o.account LIKE ? ESCAPE '\')`)
		pattern := containsPattern(q.Search)
		args = append(args, pattern, pattern)
	}
	if q.Stage != "" && q.Stage != table.AllValue {
		where = append(where, "o.stage = ?")
		args = append(args, q.Stage)
	}
	if len(q.OwnerIDs) > 0 {
		where = append(where, "o.owner_id IN ("+placeholders(len(q.OwnerIDs))+")")
		for _, id := range q.OwnerIDs {
			args = append(args, id)
		}
	}

	query := `
		SELECT
			o.id,
			o.name,
			COALESCE(o.account, ''),
			o.stage,
			o.owner_id,
			w.name,
			o.amount,
			COALESCE(o.close_date, ''),
			o.created_at
		FROM opportunities o
		JOIN owners w ON w.id = o.owner_id
	`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY o.id"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list opportunities: %w", err)
	}
	defer rows.Close()

	var results []model.Opportunity
	for rows.Next() {
		var o model.Opportunity
		var amount sql.NullFloat64
		var createdAt string
		if err := rows.Scan(&o.ID, &o.Name, &o.Account, &o.Stage, &o.OwnerID, &o.OwnerName, &amount, &o.CloseDate, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan opportunity row: %w", err)
		}
		if amount.Valid {
			o.Amount = &amount.Float64
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			o.CreatedAt = t
		}
		results = append(results, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating opportunity rows: %w", err)
	}

	return results, nil
}

// InsertOpportunity creates a new opportunity.
func InsertOpportunity(ctx context.Context, db *sql.DB, o model.NewOpportunity) (int64, error) {
	query := `
		INSERT INTO opportunities (name, account, stage, owner_id, amount, close_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := db.ExecContext(ctx, query, o.Name, nullableString(o.Account), o.Stage, o.OwnerID, nullableFloat(o.Amount), nullableString(o.CloseDate))
	if err != nil {
		return 0, fmt.Errorf("failed to insert opportunity: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern builds a LIKE pattern matching s literally anywhere in the
// column. Pair it with ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// parseOwnerIDs accepts "owner:42" and bare "42".
func parseOwnerIDs(values []string) []int64 {
	var ids []int64
	for _, v := range values {
		v = strings.TrimPrefix(v, "owner:")
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
