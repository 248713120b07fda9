package models

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// ScrapeRun records one walk of a saved search. Only counters are kept, never
// the extracted listings.
type ScrapeRun struct {
	ID            int64      `json:"id" db:"id"`
	Watch         string     `json:"watch" db:"watch"`
	URL           string     `json:"url" db:"url"`
	StartedAt     time.Time  `json:"started_at" db:"started_at"`
	FinishedAt    *time.Time `json:"finished_at" db:"finished_at"`
	Status        RunStatus  `json:"status" db:"status"`
	Pages         int        `json:"pages" db:"pages"`
	ListingsFound int        `json:"listings_found" db:"listings_found"`
	TotalFound    int        `json:"total_found" db:"total_found"`
	ErrorsCount   int        `json:"errors_count" db:"errors_count"`
}
