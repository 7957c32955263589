package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/vagabot/vagabot/internal/model"
)

// Ensure SQLiteStore implements model.JobStore.
var _ model.JobStore = (*SQLiteStore)(nil)

// ErrEmptyFragment guards bulk update/remove calls that would hit every record.
var ErrEmptyFragment = errors.New("empty fragment matches every record")

// SQLiteStore persists job records and the seeding flag in a SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// jobRow mirrors the jobs table in both back-ends; column names are the
// model.JobFields keys.
type jobRow struct {
	Title    string `db:"title" json:"title"`
	Company  string `db:"company" json:"company"`
	Location string `db:"location" json:"location"`
	Course   string `db:"course" json:"course"`
	Contract string `db:"contract" json:"contract"`
	Workload string `db:"workload" json:"workload"`
	Salary   string `db:"salary" json:"salary"`
	Benefits string `db:"benefits" json:"benefits"`
	Deadline string `db:"deadline" json:"deadline"`
}

func rowFrom(r model.Record) jobRow {
	return jobRow{
		Title:    r["title"],
		Company:  r["company"],
		Location: r["location"],
		Course:   r["course"],
		Contract: r["contract"],
		Workload: r["workload"],
		Salary:   r["salary"],
		Benefits: r["benefits"],
		Deadline: r["deadline"],
	}
}

func (j jobRow) record() model.Record {
	return model.NewRecord([]string{
		j.Title, j.Company, j.Location, j.Course, j.Contract,
		j.Workload, j.Salary, j.Benefits, j.Deadline,
	})
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// jobs and store_meta tables exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS jobs (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			title      TEXT NOT NULL DEFAULT '',
			company    TEXT NOT NULL DEFAULT '',
			location   TEXT NOT NULL DEFAULT '',
			course     TEXT NOT NULL DEFAULT '',
			contract   TEXT NOT NULL DEFAULT '',
			workload   TEXT NOT NULL DEFAULT '',
			salary     TEXT NOT NULL DEFAULT '',
			benefits   TEXT NOT NULL DEFAULT '',
			deadline   TEXT NOT NULL DEFAULT '',
			first_seen DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_title_company ON jobs(title, company)`,
		`CREATE TABLE IF NOT EXISTS store_meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, q := range schema {
		if _, err := db.Exec(q); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Created reports whether the store has completed its bulk seed.
func (s *SQLiteStore) Created(ctx context.Context) (bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM store_meta WHERE key = 'created'")
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading created flag: %w", err)
	}
	return value == "true", nil
}

// MarkCreated records that the bulk seed finished. Calling it again is a no-op.
func (s *SQLiteStore) MarkCreated(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "INSERT OR REPLACE INTO store_meta (key, value) VALUES ('created', 'true')")
	if err != nil {
		return fmt.Errorf("setting created flag: %w", err)
	}
	return nil
}

// Search returns stored records containing every pair of f, oldest first.
// An empty fragment returns every record.
func (s *SQLiteStore) Search(ctx context.Context, f model.Fragment) ([]model.Record, error) {
	where, args, ok := whereClause(f)
	if !ok {
		return nil, nil
	}

	var rows []jobRow
	q := "SELECT title, company, location, course, contract, workload, salary, benefits, deadline FROM jobs" + where + " ORDER BY id"
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("searching jobs: %w", err)
	}

	records := make([]model.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.record())
	}
	return records, nil
}

// Insert appends r unconditionally.
func (s *SQLiteStore) Insert(ctx context.Context, r model.Record) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO jobs
		(title, company, location, course, contract, workload, salary, benefits, deadline)
		VALUES (:title, :company, :location, :course, :contract, :workload, :salary, :benefits, :deadline)`,
		rowFrom(r))
	if err != nil {
		return fmt.Errorf("inserting job %q: %w", r.Title(), err)
	}
	return nil
}

// Update overwrites every record matching f with r's values.
func (s *SQLiteStore) Update(ctx context.Context, f model.Fragment, r model.Record) (int, error) {
	if len(f) == 0 {
		return 0, ErrEmptyFragment
	}
	where, args, ok := whereClause(f)
	if !ok {
		return 0, nil
	}

	row := rowFrom(r)
	set := []any{row.Title, row.Company, row.Location, row.Course, row.Contract, row.Workload, row.Salary, row.Benefits, row.Deadline}
	res, err := s.db.ExecContext(ctx, `UPDATE jobs SET
		title = ?, company = ?, location = ?, course = ?, contract = ?,
		workload = ?, salary = ?, benefits = ?, deadline = ?`+where,
		append(set, args...)...)
	if err != nil {
		return 0, fmt.Errorf("updating jobs: %w", err)
	}
	return affected(res)
}

// Remove deletes every record matching f.
func (s *SQLiteStore) Remove(ctx context.Context, f model.Fragment) (int, error) {
	if len(f) == 0 {
		return 0, ErrEmptyFragment
	}
	where, args, ok := whereClause(f)
	if !ok {
		return 0, nil
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM jobs"+where, args...)
	if err != nil {
		return 0, fmt.Errorf("removing jobs: %w", err)
	}
	return affected(res)
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// whereClause renders f as an AND of equality tests. ok is false when f names
// a key outside the schema, which no stored record can contain.
func whereClause(f model.Fragment) (where string, args []any, ok bool) {
	if len(f) == 0 {
		return "", nil, true
	}

	keys := make([]string, 0, len(f))
	for k := range f {
		if !knownColumn(k) {
			return "", nil, false
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conds := make([]string, 0, len(keys))
	for _, k := range keys {
		conds = append(conds, k+" = ?")
		args = append(args, f[k])
	}
	return " WHERE " + strings.Join(conds, " AND "), args, true
}

func knownColumn(key string) bool {
	for _, f := range model.JobFields {
		if f.Key == key {
			return true
		}
	}
	return false
}

func affected(res sql.Result) (int, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}
