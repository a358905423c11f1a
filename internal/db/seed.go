package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pipeline/internal/model"
)

var seedOwners = []string{"Ada Lovelace", "Grace Hopper", "Margaret Hamilton", "Ken Thompson", "Barbara Liskov"}

var seedAccounts = []string{
	"Acme Corp", "Globex", "Initech", "Umbrella", "Hooli", "Stark Industries",
	"Wayne Enterprises", "Soylent", "Vandelay Industries", "Pied Piper", "Tyrell", "Cyberdyne",
}

var seedProducts = []string{"Platform licence", "Support renewal", "Onboarding package", "Data migration", "Expansion seats"}

// SeedCount is the number of demo opportunities SeedDemo inserts.
const SeedCount = 64

// IsEmpty reports whether no opportunities exist yet.
func IsEmpty(ctx context.Context, db *sql.DB) (bool, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM opportunities").Scan(&n); err != nil {
		return false, fmt.Errorf("failed to count opportunities: %w", err)
	}
	return n == 0, nil
}

// SeedDemo fills an empty database with a deterministic demo pipeline.
func SeedDemo(ctx context.Context, db *sql.DB, today time.Time) error {
	ownerIDs := make([]int64, 0, len(seedOwners))
	for _, name := range seedOwners {
		id, err := InsertOwner(ctx, db, name)
		if err != nil {
			return err
		}
		ownerIDs = append(ownerIDs, id)
	}

	for i := range SeedCount {
		stage := model.Stages[(i*7)%len(model.Stages)]
		opp := model.NewOpportunity{
			Name:      fmt.Sprintf("%s - %s", seedAccounts[i%len(seedAccounts)], seedProducts[i%len(seedProducts)]),
			Account:   seedAccounts[i%len(seedAccounts)],
			Stage:     stage,
			OwnerID:   ownerIDs[(i*3)%len(ownerIDs)],
			CloseDate: today.AddDate(0, 0, (i*11)%90-30).Format("2006-01-02"),
		}
		// Every ninth deal has not been sized yet.
		if i%9 != 4 {
			amount := float64(2500 + (i*1733)%95000)
			opp.Amount = &amount
		}
		oppID, err := InsertOpportunity(ctx, db, opp)
		if err != nil {
			return err
		}

		if stage == "lead" || stage == "qualified" {
			continue
		}
		status := model.ProposalStatuses[i%len(model.ProposalStatuses)]
		prop := model.NewProposal{
			Title:         fmt.Sprintf("Proposal for %s", opp.Name),
			OpportunityID: oppID,
			Status:        status,
			Value:         opp.Amount,
		}
		if status != "draft" {
			prop.SentOn = today.AddDate(0, 0, -(i % 21)).Format("2006-01-02")
		}
		if _, err := InsertProposal(ctx, db, prop); err != nil {
			return err
		}
	}
	return nil
}
