package models

import "errors"

// PersonCount is one row of the merged count table.
type PersonCount struct {
	Person     string `json:"person"`
	Senders    int    `json:"senders"`
	Recipients int    `json:"recipients"`
}

// Validate checks the count table invariants for a single row.
// A person only appears in the table if they were counted in some role.
func (p *PersonCount) Validate() error {
	if p.Senders < 0 || p.Recipients < 0 {
		return errors.New("counts must not be negative")
	}
	if p.Senders == 0 && p.Recipients == 0 {
		return errors.New("person must be counted as sender or recipient")
	}
	return nil
}
