package models

import (
	"errors"
	"time"
)

// RunSummary describes a finished run and the artifacts it produced
type RunSummary struct {
	ID              string        `json:"id"`
	GeneratedAt     time.Time     `json:"generated_at"`
	Input           string        `json:"input"`
	RecordsRead     int           `json:"records_read"`
	RecordsExcluded int           `json:"records_excluded"`
	RecordsKept     int           `json:"records_kept"`
	People          int           `json:"people"`
	TopSenders      []PersonCount `json:"top_senders"`
	Outputs         []string      `json:"outputs"`
	Elapsed         time.Duration `json:"elapsed_ns"`
}

// Validate checks that the summary is internally consistent
func (s *RunSummary) Validate() error {
	if s.ID == "" {
		return errors.New("summary ID must not be empty")
	}
	if s.RecordsRead < 0 || s.RecordsExcluded < 0 || s.RecordsKept < 0 {
		return errors.New("record counts must not be negative")
	}
	if s.RecordsRead != s.RecordsExcluded+s.RecordsKept {
		return errors.New("records read must equal excluded + kept")
	}
	if len(s.TopSenders) > s.People {
		return errors.New("top senders cannot outnumber people")
	}
	return nil
}
