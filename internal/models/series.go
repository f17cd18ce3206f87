package models

import "time"

// MonthlyPoint is one calendar-month bucket.
// Month is the first instant of the month in UTC.
type MonthlyPoint struct {
	Month time.Time `json:"month"`
	Value int       `json:"value"`
}

// Series is the monthly history plotted for one person
type Series struct {
	Person string         `json:"person"`
	Points []MonthlyPoint `json:"points"`
}

// Total sums the values of all points
func (s *Series) Total() int {
	total := 0
	for _, p := range s.Points {
		total += p.Value
	}
	return total
}
