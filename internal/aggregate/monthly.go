package aggregate

import (
	"strings"
	"time"

	"github.com/rewired-gh/mailstats/internal/models"
)

// MonthStart truncates t to the first instant of its calendar month in UTC
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthlyVolume counts the records sent by person per calendar month.
func MonthlyVolume(records []models.Record, person string) models.Series {
	buckets := make(map[time.Time]int)
	for _, r := range records {
		if r.Sender == person {
			buckets[MonthStart(r.Time)]++
		}
	}
	return models.Series{Person: person, Points: fillMonths(buckets)}
}

// MonthlyUniqueContacts counts, per calendar month, the distinct senders of
// records whose recipient field contains person.
//
// Matching is by substring, so "ann" also matches "joanne". Callers that need
// exact membership should split the field with Record.Recipients instead.
func MonthlyUniqueContacts(records []models.Record, person string) models.Series {
	senders := make(map[time.Time]map[string]struct{})
	for _, r := range records {
		if !strings.Contains(r.Recipient, person) {
			continue
		}
		month := MonthStart(r.Time)
		if senders[month] == nil {
			senders[month] = make(map[string]struct{})
		}
		senders[month][r.Sender] = struct{}{}
	}

	buckets := make(map[time.Time]int, len(senders))
	for month, set := range senders {
		buckets[month] = len(set)
	}
	return models.Series{Person: person, Points: fillMonths(buckets)}
}

// SeriesFor applies fn to each name, keeping the order of names
func SeriesFor(records []models.Record, names []string, fn func([]models.Record, string) models.Series) []models.Series {
	out := make([]models.Series, 0, len(names))
	for _, name := range names {
		out = append(out, fn(records, name))
	}
	return out
}

// fillMonths lays buckets out on a contiguous month range from the earliest
// to the latest key; months without records get a zero value.
func fillMonths(buckets map[time.Time]int) []models.MonthlyPoint {
	if len(buckets) == 0 {
		return nil
	}

	var first, last time.Time
	for month := range buckets {
		if first.IsZero() || month.Before(first) {
			first = month
		}
		if month.After(last) {
			last = month
		}
	}

	var points []models.MonthlyPoint
	for month := first; !month.After(last); month = month.AddDate(0, 1, 0) {
		points = append(points, models.MonthlyPoint{Month: month, Value: buckets[month]})
	}
	return points
}
