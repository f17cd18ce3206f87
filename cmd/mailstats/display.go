package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/rewired-gh/mailstats/internal/models"
)

// printSummary displays the run counts and the top senders table
func printSummary(w io.Writer, s *models.RunSummary) {
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Records: %d read, %d excluded, %d kept\n", s.RecordsRead, s.RecordsExcluded, s.RecordsKept)
	fmt.Fprintf(w, "People:  %d\n", s.People)
	fmt.Fprintln(w, strings.Repeat("-", 60))

	if len(s.TopSenders) == 0 {
		fmt.Fprintln(w, "No senders left after filtering")
	} else {
		fmt.Fprintf(w, "%-4s %-30s %10s %10s\n", "#", "person", "senders", "recipients")
		for i, row := range s.TopSenders {
			fmt.Fprintf(w, "%-4d %-30s %10d %10d\n", i+1, truncate(row.Person, 30), row.Senders, row.Recipients)
		}
	}

	fmt.Fprintln(w, strings.Repeat("-", 60))
	for _, out := range s.Outputs {
		fmt.Fprintf(w, "wrote %s\n", out)
	}
}

// truncate shortens s to at most n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
