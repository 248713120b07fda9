package models

import "time"

// WatchStats aggregates the run history of one saved search.
type WatchStats struct {
	Watch             string     `json:"watch" db:"watch"`
	LastRunAt         *time.Time `json:"last_run_at" db:"last_run_at"`
	LastRunStatus     string     `json:"last_run_status" db:"last_run_status"`
	LastTotalFound    int        `json:"last_total_found" db:"last_total_found"`
	Runs              int        `json:"runs" db:"runs"`
	SuccessRate       float64    `json:"success_rate" db:"success_rate"`
	AvgRunDurationSec int        `json:"avg_run_duration_sec" db:"avg_run_duration_sec"`
}
