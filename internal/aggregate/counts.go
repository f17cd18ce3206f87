// Package aggregate counts message activity per person and builds the
// monthly series shown in the report charts.
//
// Every function is a pure computation over a cleaned, time-ordered slice of
// records; nothing here keeps state between calls.
package aggregate

import (
	"sort"

	"github.com/rewired-gh/mailstats/internal/models"
)

// SendersCount returns the number of records sent by each name
func SendersCount(records []models.Record) map[string]int {
	counter := make(map[string]int)
	for _, r := range records {
		counter[r.Sender]++
	}
	return counter
}

// RecipientCount returns how often each name appears as a recipient.
// Every name of a multi-recipient field is counted once on its own.
func RecipientCount(records []models.Record, sep string) map[string]int {
	counter := make(map[string]int)
	for i := range records {
		for _, name := range records[i].Recipients(sep) {
			counter[name]++
		}
	}
	return counter
}

// MergeAndRank joins sender and recipient counts into one row per person,
// ordered by descending sender count. Ties keep the order in which names
// first appear in records (sender, then recipients, row by row).
func MergeAndRank(records []models.Record, sep string) []models.PersonCount {
	senders := SendersCount(records)
	recipients := RecipientCount(records, sep)

	seen := make(map[string]bool, len(senders)+len(recipients))
	table := make([]models.PersonCount, 0, len(senders)+len(recipients))
	add := func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		table = append(table, models.PersonCount{
			Person:     name,
			Senders:    senders[name],
			Recipients: recipients[name],
		})
	}

	for i := range records {
		add(records[i].Sender)
		for _, name := range records[i].Recipients(sep) {
			add(name)
		}
	}

	sort.SliceStable(table, func(i, j int) bool {
		return table[i].Senders > table[j].Senders
	})

	return table
}

// TopSenders returns the first n names of a ranked table.
// Shorter tables yield fewer names; the result is never padded.
func TopSenders(table []models.PersonCount, n int) []string {
	if n > len(table) {
		n = len(table)
	}
	if n < 0 {
		n = 0
	}

	names := make([]string, 0, n)
	for _, row := range table[:n] {
		names = append(names, row.Person)
	}
	return names
}

// Lookup returns the rows for names, in the order of names.
// Names absent from the table are skipped.
func Lookup(table []models.PersonCount, names []string) []models.PersonCount {
	byName := make(map[string]models.PersonCount, len(table))
	for _, row := range table {
		byName[row.Person] = row
	}

	rows := make([]models.PersonCount, 0, len(names))
	for _, name := range names {
		if row, ok := byName[name]; ok {
			rows = append(rows, row)
		}
	}
	return rows
}
