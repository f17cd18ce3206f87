// Package models defines the core entities of a mailstats run.
// These models represent logged message events, per-person counts, monthly
// series and the summary of a finished run.
//
// Terminology:
//   - Record: one logged message event (a row of the input log).
//   - Person: a name appearing as sender or recipient; it has no identity
//     beyond being a key in the count table.
package models

import (
	"errors"
	"strings"
	"time"
)

// Record represents a single logged message event.
// Recipient may hold several names joined by a separator.
type Record struct {
	Time      time.Time `json:"time"`
	MessageID string    `json:"message_id"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Topic     string    `json:"topic"`
	Mode      string    `json:"mode"`
}

// Recipients splits the recipient field on sep.
// A field without sep yields a single name.
func (r *Record) Recipients(sep string) []string {
	return strings.Split(r.Recipient, sep)
}

// Validate checks the fields the pipeline relies on.
func (r *Record) Validate() error {
	if r.Time.IsZero() {
		return errors.New("record time must be set")
	}
	if r.Recipient == "" {
		return errors.New("record recipient must not be empty")
	}
	return nil
}
