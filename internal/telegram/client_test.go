package telegram

import (
	"strings"
	"testing"
	"time"

	"github.com/rewired-gh/mailstats/internal/models"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		expected string
	}{
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{2 * time.Minute, "2m0s"},
		{90 * time.Second, "1m30s"},
	}

	for _, tt := range tests {
		result := formatDuration(tt.duration)
		if result != tt.expected {
			t.Errorf("formatDuration(%v) = %s, expected %s", tt.duration, result, tt.expected)
		}
	}
}

func TestEscapeMarkdownV2(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"alice", "alice"},
		{"events.csv", "events\\.csv"},
		{"kaminski-v", "kaminski\\-v"},
		{"a|b", "a\\|b"},
		{"c:\\data", "c:\\\\data"},
	}

	for _, tt := range tests {
		if got := escapeMarkdownV2(tt.in); got != tt.expected {
			t.Errorf("escapeMarkdownV2(%q) = %q, expected %q", tt.in, got, tt.expected)
		}
	}
}

func TestFormatSummary(t *testing.T) {
	s := &models.RunSummary{
		ID:              "run-1",
		GeneratedAt:     time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC),
		Input:           "enron-events.csv",
		RecordsRead:     10,
		RecordsExcluded: 2,
		RecordsKept:     8,
		People:          4,
		TopSenders: []models.PersonCount{
			{Person: "jeff.dasovich", Senders: 5, Recipients: 1},
			{Person: "sara_shackleton", Senders: 3, Recipients: 2},
		},
		Elapsed: 1500 * time.Millisecond,
	}

	msg := formatSummary(s)

	for _, want := range []string{
		"Input: enron\\-events\\.csv",
		"2024\\-05\\-01 12:00:00",
		"Records: 8 kept, 2 excluded",
		"People: 4",
		"1\\. jeff\\.dasovich: *5* sent, 1 received",
		"2\\. sara\\_shackleton: *3* sent, 2 received",
		"Took: 1\\.5s",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("formatSummary() missing %q in:\n%s", want, msg)
		}
	}
}

func TestFormatSummaryNoSenders(t *testing.T) {
	msg := formatSummary(&models.RunSummary{ID: "run-2", Input: "empty.csv"})
	if !strings.Contains(msg, "No senders left after filtering") {
		t.Errorf("expected empty notice, got:\n%s", msg)
	}
}
