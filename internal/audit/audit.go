package audit

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ericksa/contractreview/internal/review"
)

// Auditor appends a row per completed review. Failures to write are logged
// and never fail the review itself.
type Auditor struct {
	db *sql.DB
}

type Entry struct {
	ID           int64     `json:"id"`
	Document     string    `json:"document"`
	ContractType string    `json:"contract_type"`
	Depth        string    `json:"depth"`
	Composite    int       `json:"composite"`
	RiskLevel    string    `json:"risk_level"`
	Findings     int       `json:"findings"`
	Error        string    `json:"error,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewAuditor(path string) *Auditor {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		log.Printf("Failed to open audit DB: %v", err)
		return &Auditor{}
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS review_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document TEXT NOT NULL,
		contract_type TEXT,
		depth TEXT,
		composite INTEGER,
		risk_level TEXT,
		findings INTEGER,
		error TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		log.Printf("Failed to create review log table: %v", err)
	}
	return &Auditor{db: db}
}

// Record logs one completed review.
func (a *Auditor) Record(res *review.Result) {
	if a.db == nil || res == nil {
		return
	}
	_, err := a.db.Exec(
		"INSERT INTO review_log (document, contract_type, depth, composite, risk_level, findings) VALUES (?, ?, ?, ?, ?, ?)",
		res.Document.Name, res.Profile.ID, string(res.Depth),
		res.Report.Composite, string(res.Report.RiskLevel), len(res.Findings),
	)
	if err != nil {
		log.Printf("Failed to write review log: %v", err)
	}
}

// RecordFailure logs a document that could not be reviewed.
func (a *Auditor) RecordFailure(document string, reviewErr error) {
	if a.db == nil {
		return
	}
	_, err := a.db.Exec(
		"INSERT INTO review_log (document, error) VALUES (?, ?)",
		document, reviewErr.Error(),
	)
	if err != nil {
		log.Printf("Failed to write review log: %v", err)
	}
}

// GetLogs returns the most recent entries.
func (a *Auditor) GetLogs(limit int) ([]Entry, error) {
	if a.db == nil {
		return nil, nil
	}
	rows, err := a.db.Query("SELECT id, document, COALESCE(contract_type,''), COALESCE(depth,''), COALESCE(composite,0), COALESCE(risk_level,''), COALESCE(findings,0), COALESCE(error,''), timestamp FROM review_log ORDER BY timestamp DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Document, &e.ContractType, &e.Depth, &e.Composite, &e.RiskLevel, &e.Findings, &e.Error, &e.Timestamp); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (a *Auditor) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
