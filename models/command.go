package models

import (
	"encoding/json"
	"time"
)

type CommandType string

const (
	CmdScrapeNow   CommandType = "scrape_now"
	CmdScrapeWatch CommandType = "scrape_watch"
	CmdPause       CommandType = "pause"
	CmdResume      CommandType = "resume"
)

// Valid reports whether the daemon knows how to handle c.
func (c CommandType) Valid() bool {
	switch c {
	case CmdScrapeNow, CmdScrapeWatch, CmdPause, CmdResume:
		return true
	}
	return false
}

type Command struct {
	ID          int64           `json:"id" db:"id"`
	Command     CommandType     `json:"command" db:"command"`
	Params      json.RawMessage `json:"params" db:"params"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	ProcessedAt *time.Time      `json:"processed_at" db:"processed_at"`
}

type CommandParams struct {
	Watch string `json:"watch,omitempty"`
}
