package sink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // sqlite driver

	"github.com/sonjayce/TianyanchaAutosearch/models"
)

// SQLite archives every run's records so results survive later runs
// overwriting the result file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the archive at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			keyword TEXT NOT NULL,
			position INTEGER NOT NULL,
			registration_number TEXT NOT NULL,
			operator_name TEXT NOT NULL,
			site_name TEXT NOT NULL,
			domain TEXT NOT NULL,
			review_date TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_records_run_id ON records(run_id)`)
	return err
}

func (s *SQLite) Save(ctx context.Context, b Batch) (string, error) {
	if len(b.Records) == 0 {
		return "", models.ErrNoRecords
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	const q = `INSERT INTO records (run_id, keyword, position, registration_number, operator_name, site_name, domain, review_date, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i, r := range b.Records {
		if _, err := stmt.ExecContext(ctx, b.RunID, b.Keyword, i,
			r.RegistrationNumber, r.OperatorName, r.SiteName, r.Domain, r.ReviewDate, now); err != nil {
			return "", fmt.Errorf("insert record %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return "sqlite:run_id=" + b.RunID, nil
}

// Records returns the archived records of one run in discovery order.
func (s *SQLite) Records(ctx context.Context, runID string) ([]models.Record, error) {
	const q = `SELECT registration_number, operator_name, site_name, domain, review_date FROM records WHERE run_id = ? ORDER BY position`

	rows, err := s.db.QueryContext(ctx, q, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Record
	for rows.Next() {
		var r models.Record
		if err := rows.Scan(&r.RegistrationNumber, &r.OperatorName, &r.SiteName, &r.Domain, &r.ReviewDate); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
