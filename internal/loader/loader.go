// Package loader reads the message-event log and cleans it into an ordered
// set of records ready for aggregation.
//
// The log is a headerless delimited file with six positional columns:
// time (epoch milliseconds), message_id, sender, recipient, topic, mode.
// Cleaning fills absent recipients with a sentinel name, converts times to
// UTC, drops automated senders and orders the remaining records by time.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rewired-gh/mailstats/internal/models"
)

// Columns is the positional schema of the input log
var Columns = []string{"time", "message_id", "sender", "recipient", "topic", "mode"}

const (
	colTime = iota
	colMessageID
	colSender
	colRecipient
	colTopic
	colMode
)

var (
	// ErrMalformedRow is returned when a row does not have len(Columns) fields
	ErrMalformedRow = errors.New("malformed row")
	// ErrInvalidTime is returned when the time column is not epoch milliseconds
	ErrInvalidTime = errors.New("invalid time")
	// ErrEmptyInput is returned when the log has no rows at all
	ErrEmptyInput = errors.New("empty input")
)

// Options controls parsing and cleaning
type Options struct {
	Delimiter        rune
	MissingRecipient string
	ExcludedSenders  map[string]bool
}

// Dataset is the cleaned, time-ordered event log
type Dataset struct {
	Records  []models.Record
	Read     int // rows parsed from the input
	Excluded int // rows dropped because of their sender
}

// Load opens path and reads it with Read
func Load(path string, opts Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	ds, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Read parses and cleans an event log
func Read(r io.Reader, opts Options) (*Dataset, error) {
	cr := csv.NewReader(r)
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.FieldsPerRecord = len(Columns)
	cr.LazyQuotes = true

	ds := &Dataset{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) && errors.Is(perr.Err, csv.ErrFieldCount) {
				return nil, fmt.Errorf("%w: line %d: expected %d fields, got %d", ErrMalformedRow, perr.Line, len(Columns), len(row))
			}
			return nil, fmt.Errorf("failed to parse input: %w", err)
		}
		ds.Read++

		line, _ := cr.FieldPos(0)
		rec, err := parseRow(row, opts)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if opts.ExcludedSenders[rec.Sender] {
			ds.Excluded++
			continue
		}
		ds.Records = append(ds.Records, rec)
	}

	if ds.Read == 0 {
		return nil, ErrEmptyInput
	}

	sort.SliceStable(ds.Records, func(i, j int) bool {
		return ds.Records[i].Time.Before(ds.Records[j].Time)
	})

	return ds, nil
}

func parseRow(row []string, opts Options) (models.Record, error) {
	ts, err := parseEpochMillis(row[colTime])
	if err != nil {
		return models.Record{}, err
	}

	recipient := row[colRecipient]
	if naTokens[recipient] {
		recipient = opts.MissingRecipient
	}

	rec := models.Record{
		Time:      ts,
		MessageID: row[colMessageID],
		Sender:    row[colSender],
		Recipient: recipient,
		Topic:     row[colTopic],
		Mode:      row[colMode],
	}
	if err := rec.Validate(); err != nil {
		return models.Record{}, fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}
	return rec, nil
}

// naTokens are the field values treated as an absent recipient
var naTokens = map[string]bool{
	"": true, "#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true,
	"-1.#QNAN": true, "-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true,
	"<NA>": true, "N/A": true, "NA": true, "NULL": true, "NaN": true,
	"None": true, "n/a": true, "nan": true, "null": true,
}

// Timestamps must fit in int64 nanoseconds since the epoch,
// roughly 1677-09-21 through 2262-04-11.
const (
	minEpochMillis = math.MinInt64 / int64(time.Millisecond)
	maxEpochMillis = math.MaxInt64 / int64(time.Millisecond)
)

// parseEpochMillis accepts integer or float milliseconds since the epoch.
// Fractions are kept down to the nanosecond.
func parseEpochMillis(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ms < minEpochMillis || ms > maxEpochMillis {
			return time.Time{}, fmt.Errorf("%w: %q out of range", ErrInvalidTime, s)
		}
		return time.UnixMilli(ms).UTC(), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	if f < float64(minEpochMillis) || f > float64(maxEpochMillis) {
		return time.Time{}, fmt.Errorf("%w: %q out of range", ErrInvalidTime, s)
	}
	whole, frac := math.Modf(f)
	ns := int64(whole)*int64(time.Millisecond) + int64(math.Round(frac*float64(time.Millisecond)))
	return time.Unix(0, ns).UTC(), nil
}
