// Package report renders the run artifacts: the per-person count table and
// the monthly line charts.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/rewired-gh/mailstats/internal/models"
)

// CountsHeader is the header row of the count table
var CountsHeader = []string{"person", "senders", "recipients"}

// WriteCounts writes the ranked count table as CSV, one row per person
func WriteCounts(w io.Writer, table []models.PersonCount) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CountsHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range table {
		record := []string{row.Person, strconv.Itoa(row.Senders), strconv.Itoa(row.Recipients)}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row for %q: %w", row.Person, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
