package db

import (
	"database/sql"

	"github.com/hpungsan/nbtidy/internal/errors"
)

// Run is one recorded sanitize or check pass over a working tree.
type Run struct {
	ID        string   `json:"id"`
	Root      string   `json:"root"`
	Mode      string   `json:"mode"` // "sanitize" or "check"
	Strip     bool     `json:"strip"`
	Checked   int      `json:"checked"`
	Modified  int      `json:"modified"`
	CreatedAt int64    `json:"created_at"`
	Paths     []string `json:"paths,omitempty"`
}

// RecordRun stores a run and its modified paths in one transaction.
func RecordRun(db *sql.DB, run *Run) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	strip := 0
	if run.Strip {
		strip = 1
	}
	_, err = tx.Exec(
		`INSERT INTO runs (id, root, mode, strip, checked, modified, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Root, run.Mode, strip, run.Checked, run.Modified, run.CreatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	for _, path := range run.Paths {
		if _, err := tx.Exec(
			`INSERT INTO run_files (run_id, path) VALUES (?, ?)`,
			run.ID, path,
		); err != nil {
			return errors.NewInternal(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first, with their
// modified paths loaded.
func RecentRuns(db *sql.DB, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(
		`SELECT id, root, mode, strip, checked, modified, created_at
		 FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	runs := make([]Run, 0, limit)
	for rows.Next() {
		var r Run
		var strip int
		if err := rows.Scan(&r.ID, &r.Root, &r.Mode, &strip, &r.Checked, &r.Modified, &r.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		r.Strip = strip != 0
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	for i := range runs {
		paths, err := runFiles(db, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Paths = paths
	}
	return runs, nil
}

func runFiles(db *sql.DB, runID string) ([]string, error) {
	rows, err := db.Query(`SELECT path FROM run_files WHERE run_id = ? ORDER BY path`, runID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, errors.NewInternal(err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return paths, nil
}
