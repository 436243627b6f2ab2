package ops

import (
	"database/sql"

	"github.com/hpungsan/nbtidy/internal/db"
)

// HistoryInput contains parameters for the History operation.
type HistoryInput struct {
	Limit int
}

// HistoryOutput contains the result of the History operation.
type HistoryOutput struct {
	Runs []db.Run `json:"runs"`
}

// History returns the most recent recorded runs, newest first.
func History(database *sql.DB, input HistoryInput) (*HistoryOutput, error) {
	runs, err := db.RecentRuns(database, input.Limit)
	if err != nil {
		return nil, err
	}
	return &HistoryOutput{Runs: runs}, nil
}
