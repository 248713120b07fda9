package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"krisha_scrooper/models"
)

// SQLiteStore keeps the daemon's operational state: watch runs, their logs,
// per-watch stats and queued commands. Extracted listings are never stored.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Ping() error {
	return s.db.Ping()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scrape_runs (
		id INTEGER PRIMARY KEY,
		watch TEXT,
		url TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		pages INTEGER,
		listings_found INTEGER,
		total_found INTEGER,
		errors_count INTEGER
	);

	CREATE TABLE IF NOT EXISTS scrape_logs (
		id INTEGER PRIMARY KEY,
		run_id INTEGER,
		timestamp DATETIME,
		level TEXT,
		message TEXT,
		watch TEXT
	);

	CREATE TABLE IF NOT EXISTS watch_stats (
		watch TEXT PRIMARY KEY,
		last_run_at DATETIME,
		last_run_status TEXT,
		last_total_found INTEGER,
		runs INTEGER,
		success_rate REAL,
		avg_run_duration_sec INTEGER
	);

	CREATE TABLE IF NOT EXISTS commands (
		id INTEGER PRIMARY KEY,
		command TEXT,
		params JSON,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		processed_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_commands_pending ON commands(processed_at) WHERE processed_at IS NULL;
	CREATE INDEX IF NOT EXISTS idx_logs_run ON scrape_logs(run_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON scrape_runs(status, started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_watch ON scrape_runs(watch, started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) CreateRun(run *models.ScrapeRun) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO scrape_runs (watch, url, started_at, status, pages, listings_found,
			total_found, errors_count)
		VALUES (?, ?, ?, ?, 0, 0, 0, 0)`,
		run.Watch, run.URL, run.StartedAt, run.Status)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) UpdateRun(run *models.ScrapeRun) error {
	_, err := s.db.Exec(`
		UPDATE scrape_runs SET finished_at = ?, status = ?, pages = ?, listings_found = ?,
			total_found = ?, errors_count = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.Pages, run.ListingsFound,
		run.TotalFound, run.ErrorsCount, run.ID)
	return err
}

func (s *SQLiteStore) Log(runID *int64, level models.LogLevel, message, watch string) error {
	_, err := s.db.Exec(`
		INSERT INTO scrape_logs (run_id, timestamp, level, message, watch)
		VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now(), level, message, watch)
	return err
}

// RecentRuns returns the newest runs first.
func (s *SQLiteStore) RecentRuns(limit int) ([]models.ScrapeRun, error) {
	rows, err := s.db.Query(`
		SELECT id, watch, url, started_at, finished_at, status, pages, listings_found,
			total_found, errors_count
		FROM scrape_runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]models.ScrapeRun, 0)
	for rows.Next() {
		var run models.ScrapeRun
		var finished sql.NullTime
		if err := rows.Scan(&run.ID, &run.Watch, &run.URL, &run.StartedAt, &finished, &run.Status,
			&run.Pages, &run.ListingsFound, &run.TotalFound, &run.ErrorsCount); err != nil {
			return nil, err
		}
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RecentLogs returns the newest log lines of one run, or of all runs when
// runID is nil.
func (s *SQLiteStore) RecentLogs(runID *int64, limit int) ([]models.ScrapeLog, error) {
	query := `SELECT id, run_id, timestamp, level, message, watch FROM scrape_logs`
	args := []interface{}{}
	if runID != nil {
		query += ` WHERE run_id = ?`
		args = append(args, *runID)
	}
	query += ` ORDER BY timestamp DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]models.ScrapeLog, 0)
	for rows.Next() {
		var entry models.ScrapeLog
		var run sql.NullInt64
		if err := rows.Scan(&entry.ID, &run, &entry.Timestamp, &entry.Level, &entry.Message, &entry.Watch); err != nil {
			return nil, err
		}
		if run.Valid {
			id := run.Int64
			entry.RunID = &id
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

func (s *SQLiteStore) UpdateWatchStats(watch string) error {
	_, err := s.db.Exec(`
		INSERT INTO watch_stats (watch, last_run_at, last_run_status, last_total_found, runs,
			success_rate, avg_run_duration_sec)
		SELECT
			?,
			(SELECT started_at FROM scrape_runs WHERE watch = ? ORDER BY started_at DESC, id DESC LIMIT 1),
			(SELECT status FROM scrape_runs WHERE watch = ? ORDER BY started_at DESC, id DESC LIMIT 1),
			COALESCE((SELECT total_found FROM scrape_runs WHERE watch = ? AND status = 'completed'
				ORDER BY started_at DESC, id DESC LIMIT 1), 0),
			(SELECT COUNT(*) FROM scrape_runs WHERE watch = ?),
			COALESCE((SELECT CAST(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END) AS REAL) /
				NULLIF(COUNT(*), 0) FROM scrape_runs WHERE watch = ?), 0),
			COALESCE((SELECT CAST(AVG((julianday(finished_at) - julianday(started_at)) * 86400) AS INTEGER)
				FROM scrape_runs WHERE watch = ? AND finished_at IS NOT NULL), 0)
		WHERE true
		ON CONFLICT(watch) DO UPDATE SET
			last_run_at = excluded.last_run_at,
			last_run_status = excluded.last_run_status,
			last_total_found = excluded.last_total_found,
			runs = excluded.runs,
			success_rate = excluded.success_rate,
			avg_run_duration_sec = excluded.avg_run_duration_sec`,
		watch, watch, watch, watch, watch, watch, watch)
	return err
}

func (s *SQLiteStore) GetWatchStats() ([]models.WatchStats, error) {
	rows, err := s.db.Query(`
		SELECT watch, last_run_at, last_run_status, last_total_found, runs, success_rate,
			avg_run_duration_sec
		FROM watch_stats ORDER BY watch`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]models.WatchStats, 0)
	for rows.Next() {
		var st models.WatchStats
		var lastRun sql.NullTime
		var status sql.NullString
		if err := rows.Scan(&st.Watch, &lastRun, &status, &st.LastTotalFound, &st.Runs,
			&st.SuccessRate, &st.AvgRunDurationSec); err != nil {
			return nil, err
		}
		if lastRun.Valid {
			t := lastRun.Time
			st.LastRunAt = &t
		}
		st.LastRunStatus = status.String
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

func (s *SQLiteStore) EnqueueCommand(cmd models.CommandType, params *models.CommandParams) (int64, error) {
	var raw interface{}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return 0, err
		}
		raw = string(data)
	}
	result, err := s.db.Exec(`INSERT INTO commands (command, params, created_at) VALUES (?, ?, ?)`,
		cmd, raw, time.Now())
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) GetPendingCommands() ([]models.Command, error) {
	rows, err := s.db.Query(`
		SELECT id, command, params, created_at, processed_at
		FROM commands WHERE processed_at IS NULL ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cmds []models.Command
	for rows.Next() {
		var cmd models.Command
		var params sql.NullString
		var processed sql.NullTime
		if err := rows.Scan(&cmd.ID, &cmd.Command, &params, &cmd.CreatedAt, &processed); err != nil {
			return nil, err
		}
		if params.Valid {
			cmd.Params = json.RawMessage(params.String)
		}
		if processed.Valid {
			t := processed.Time
			cmd.ProcessedAt = &t
		}
		cmds = append(cmds, cmd)
	}
	return cmds, rows.Err()
}

func (s *SQLiteStore) MarkCommandProcessed(id int64) error {
	_, err := s.db.Exec(`UPDATE commands SET processed_at = ? WHERE id = ?`, time.Now(), id)
	return err
}

func ParseCommandParams(cmd *models.Command) (*models.CommandParams, error) {
	if cmd.Params == nil || string(cmd.Params) == "null" {
		return &models.CommandParams{}, nil
	}
	var params models.CommandParams
	if err := json.Unmarshal(cmd.Params, &params); err != nil {
		return nil, err
	}
	return &params, nil
}

// ResetAllData clears all operational tables.
func (s *SQLiteStore) ResetAllData() error {
	tables := []string{
		"scrape_logs",
		"scrape_runs",
		"watch_stats",
		"commands",
	}

	for _, table := range tables {
		_, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	return nil
}
