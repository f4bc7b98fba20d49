// Package history records finished analyses in a SQL database so past runs can be listed,
// exported and pruned.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
	"github.com/metaconscious/CodeModificationAnalyzer/schema"
	_ "modernc.org/sqlite" // SQLite driver
)

// Table names for run history.
const (
	runsTable     = "codemod_analysis_runs"
	runFilesTable = "codemod_run_files"
)

const (
	// sqliteTime keeps a fixed width so text comparison orders timestamps.
	sqliteTime = "2006-01-02T15:04:05.000000000Z07:00"
	// mysqlDateTime is how go-sql-driver/mysql renders DATETIME columns without parseTime=true.
	mysqlDateTime = "2006-01-02 15:04:05.999999"
)

// Store implements contract.HistoryStore on top of database/sql.
type Store struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &Store{} // Compile-time check

// NewStore opens the history database for backend and brings its schema up to date.
// NoneBackend yields a store that accepts and returns nothing.
func NewStore(backend schema.DatabaseBackend, connStr string) (*Store, error) {
	if backend == schema.NoneBackend || backend == "" {
		return &Store{backend: schema.NoneBackend}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	if err := migrateUp(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare history tables: %w", err)
	}
	return &Store{db: db, backend: backend}, nil
}

// openDB opens and pings the database behind backend.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	var db *sql.DB
	var err error

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetHistoryDBFilePath()
		}
		db, err = sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// A single connection avoids "database is locked" errors.
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		db, err = sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		db, err = sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=... dbname=...", err)
		}

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct."
		default:
			connDetail = "Verify the database file is accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}
	return db, nil
}

// Backend returns the backend the store was opened with.
func (s *Store) Backend() schema.DatabaseBackend {
	return s.backend
}

func (s *Store) disabled() bool {
	return s.backend == schema.NoneBackend || s.db == nil
}

// RecordRun stores a run and its files in one transaction.
func (s *Store) RecordRun(record schema.HistoryRecord, files []schema.HistoryFileRecord) error {
	if s.disabled() {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	runQuery := fmt.Sprintf(`INSERT INTO %s (run_id, start_time, end_time, run_duration_ms, repository, branch,
		author_pattern, start_date, end_date, file_filters, total_commits, lines_added, lines_deleted,
		total_lines_modified, files_touched) VALUES (%s)`, quoteTableName(runsTable, s.backend), s.placeholders(15))
	_, err = tx.Exec(runQuery,
		record.RunID, s.formatTime(record.StartTime), s.formatTime(record.EndTime), record.RunDurationMs,
		record.Repository, record.Branch, record.AuthorPattern, record.StartDate, record.EndDate, record.FileFilters,
		record.TotalCommits, record.LinesAdded, record.LinesDeleted, record.TotalLinesModified, record.FilesTouched)
	if err != nil {
		return fmt.Errorf("failed to insert analysis run: %w", err)
	}

	if len(files) > 0 {
		fileQuery := fmt.Sprintf(`INSERT INTO %s (run_id, file_path, insertions, deletions) VALUES (%s)`,
			quoteTableName(runFilesTable, s.backend), s.placeholders(4))
		stmt, err := tx.Prepare(fileQuery)
		if err != nil {
			return fmt.Errorf("failed to prepare file insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()
		for _, f := range files {
			if _, err := stmt.Exec(record.RunID, f.FilePath, f.Insertions, f.Deletions); err != nil {
				return fmt.Errorf("failed to insert file %s: %w", f.FilePath, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit analysis run: %w", err)
	}
	return nil
}

// ListRuns returns stored runs, newest first.
func (s *Store) ListRuns(limit int) ([]schema.HistoryRecord, error) {
	if s.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, repository, branch, author_pattern,
		start_date, end_date, file_filters, total_commits, lines_added, lines_deleted, total_lines_modified,
		files_touched FROM %s ORDER BY start_time DESC, run_id`, quoteTableName(runsTable, s.backend))
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.HistoryRecord
	for rows.Next() {
		var rec schema.HistoryRecord
		var start, end dbTime
		if err := rows.Scan(&rec.RunID, &start, &end, &rec.RunDurationMs, &rec.Repository, &rec.Branch,
			&rec.AuthorPattern, &rec.StartDate, &rec.EndDate, &rec.FileFilters, &rec.TotalCommits,
			&rec.LinesAdded, &rec.LinesDeleted, &rec.TotalLinesModified, &rec.FilesTouched); err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		rec.StartTime, rec.EndTime = start.Time, end.Time
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis runs: %w", err)
	}
	return results, nil
}

// ListRunFiles returns every stored file row ordered by run and path.
func (s *Store) ListRunFiles() ([]schema.HistoryFileRecord, error) {
	if s.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, file_path, insertions, deletions FROM %s ORDER BY run_id, file_path`,
		quoteTableName(runFilesTable, s.backend))
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query run files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.HistoryFileRecord
	for rows.Next() {
		var rec schema.HistoryFileRecord
		if err := rows.Scan(&rec.RunID, &rec.FilePath, &rec.Insertions, &rec.Deletions); err != nil {
			return nil, fmt.Errorf("failed to scan run file: %w", err)
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run files: %w", err)
	}
	return results, nil
}

// Clear deletes runs that started before the cutoff, along with their files.
func (s *Store) Clear(before time.Time) (int64, error) {
	if s.disabled() {
		return 0, nil
	}

	runs := quoteTableName(runsTable, s.backend)
	files := quoteTableName(runFilesTable, s.backend)

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var res sql.Result
	if before.IsZero() {
		if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s", files)); err != nil {
			return 0, fmt.Errorf("failed to clear run files: %w", err)
		}
		res, err = tx.Exec(fmt.Sprintf("DELETE FROM %s", runs))
	} else {
		cutoff := s.formatTime(before)
		ph := s.placeholders(1)
		filesQuery := fmt.Sprintf("DELETE FROM %s WHERE run_id IN (SELECT run_id FROM %s WHERE start_time < %s)", files, runs, ph)
		if _, err := tx.Exec(filesQuery, cutoff); err != nil {
			return 0, fmt.Errorf("failed to clear run files: %w", err)
		}
		res, err = tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE start_time < %s", runs, ph), cutoff)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to clear analysis runs: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted runs: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit clear: %w", err)
	}
	return deleted, nil
}

// GetStatus returns status information about the history store.
func (s *Store) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(s.backend),
		Connected:  s.db != nil,
		TableSizes: make(map[string]int64),
	}
	if s.disabled() {
		return status, nil
	}

	runs := quoteTableName(runsTable, s.backend)
	row := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*), COALESCE(SUM(total_commits), 0) FROM %s", runs))
	if err := row.Scan(&status.TotalRuns, &status.TotalCommits); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var last, oldest dbTime
		row = s.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY start_time DESC LIMIT 1", runs))
		if err := row.Scan(&status.LastRunID, &last); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		row = s.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY start_time ASC LIMIT 1", runs))
		if err := row.Scan(&oldest); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.LastRunTime, status.OldestRunTime = last.Time, oldest.Time
	}

	for _, table := range []string{runsTable, runFilesTable} {
		var count int64
		row = s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, s.backend)))
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	return status, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// placeholders returns n comma-separated bind parameters for the backend.
func (s *Store) placeholders(n int) string {
	ph := make([]string, n)
	for i := range ph {
		if s.backend == schema.PostgreSQLBackend {
			ph[i] = fmt.Sprintf("$%d", i+1)
		} else {
			ph[i] = "?"
		}
	}
	return strings.Join(ph, ", ")
}

// formatTime converts a time.Time to the appropriate format for the backend.
func (s *Store) formatTime(t time.Time) any {
	switch s.backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(sqliteTime)
	default:
		return t
	}
}

// quoteTableName quotes a table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return "`" + name + "`"
	case schema.PostgreSQLBackend:
		return `"` + name + `"`
	default:
		return name
	}
}

// dbTime scans timestamps stored natively or as text.
type dbTime struct {
	time.Time
}

// Scan implements sql.Scanner.
func (d *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		d.Time = time.Time{}
		return nil
	case time.Time:
		d.Time = v
		return nil
	case []byte:
		return d.parse(string(v))
	case string:
		return d.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into a timestamp", src)
	}
}

func (d *dbTime) parse(s string) error {
	for _, layout := range []string{time.RFC3339Nano, mysqlDateTime} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return errors.New("unrecognized timestamp " + s)
}
