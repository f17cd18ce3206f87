package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultOptions() Options {
	return Options{
		Delimiter:        ',',
		MissingRecipient: "missing",
		ExcludedSenders: map[string]bool{
			"announcements": true,
			"notes":         true,
			"schedule":      true,
			"outlook":       true,
			"arsystem":      true,
		},
	}
}

func TestReadCleansRecords(t *testing.T) {
	input := strings.Join([]string{
		"978307200000,m1,alice,bob,hello,email",
		"978393600000,m2,bob,alice|carol,re: hello,email",
		"978480000000,m3,schedule,dave,meeting,email",
	}, "\n")

	ds, err := Read(strings.NewReader(input), defaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 3, ds.Read)
	assert.Equal(t, 1, ds.Excluded)
	require.Len(t, ds.Records, 2)

	first := ds.Records[0]
	assert.Equal(t, time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC), first.Time)
	assert.Equal(t, "m1", first.MessageID)
	assert.Equal(t, "alice", first.Sender)
	assert.Equal(t, "bob", first.Recipient)
	assert.Equal(t, "hello", first.Topic)
	assert.Equal(t, "email", first.Mode)

	assert.Equal(t, "alice|carol", ds.Records[1].Recipient)
}

func TestReadFillsMissingRecipient(t *testing.T) {
	for _, field := range []string{"", "NA", "N/A", "n/a", "null", "NULL", "NaN", "nan", "None", "<NA>", "#N/A"} {
		t.Run("field "+field, func(t *testing.T) {
			ds, err := Read(strings.NewReader("978307200000,m1,alice,"+field+",topic,email\n"), defaultOptions())
			require.NoError(t, err)
			require.Len(t, ds.Records, 1)
			assert.Equal(t, "missing", ds.Records[0].Recipient)
		})
	}

	// lookalikes are real names
	ds, err := Read(strings.NewReader("978307200000,m1,alice,nancy|na,topic,email\n"), defaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "nancy|na", ds.Records[0].Recipient)
}

func TestReadOrdersByTime(t *testing.T) {
	input := strings.Join([]string{
		"3000,m3,carol,alice,t,email",
		"1000,m1,alice,bob,t,email",
		"2000,m2a,bob,carol,t,email",
		"2000,m2b,dave,carol,t,email",
	}, "\n")

	ds, err := Read(strings.NewReader(input), defaultOptions())
	require.NoError(t, err)

	ids := make([]string, 0, len(ds.Records))
	for _, r := range ds.Records {
		ids = append(ids, r.MessageID)
	}
	// equal timestamps keep file order
	assert.Equal(t, []string{"m1", "m2a", "m2b", "m3"}, ids)
}

func TestReadExcludesOnlyConfiguredSenders(t *testing.T) {
	input := strings.Join([]string{
		"1000,m1,announcements,alice,t,email",
		"1000,m2,notes,alice,t,email",
		"1000,m3,outlook,alice,t,email",
		"1000,m4,arsystem,alice,t,email",
		"1000,m5,alice,notes,t,email",
	}, "\n")

	ds, err := Read(strings.NewReader(input), defaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 4, ds.Excluded)
	require.Len(t, ds.Records, 1)
	// an excluded name is only dropped as a sender
	assert.Equal(t, "notes", ds.Records[0].Recipient)
}

func TestReadCustomDelimiter(t *testing.T) {
	opts := defaultOptions()
	opts.Delimiter = ';'

	ds, err := Read(strings.NewReader("1000;m1;alice;bob|carol;t;email\n"), opts)
	require.NoError(t, err)
	require.Len(t, ds.Records, 1)
	assert.Equal(t, "bob|carol", ds.Records[0].Recipient)
}

func TestReadFloatTimestamp(t *testing.T) {
	ds, err := Read(strings.NewReader("9.783072e11,m1,alice,bob,t,email\n"), defaultOptions())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC), ds.Records[0].Time)
}

func TestReadFractionalTimestamp(t *testing.T) {
	ds, err := Read(strings.NewReader("1000.5,m1,alice,bob,t,email\n"), defaultOptions())
	require.NoError(t, err)
	assert.Equal(t, time.Unix(1, 500_000).UTC(), ds.Records[0].Time)
}

func TestReadTimestampBounds(t *testing.T) {
	input := strings.Join([]string{
		"-9223372036854,m1,alice,bob,t,email",
		"9223372036854,m2,alice,bob,t,email",
	}, "\n")

	ds, err := Read(strings.NewReader(input), defaultOptions())
	require.NoError(t, err)
	require.Len(t, ds.Records, 2)
	assert.Equal(t, 1677, ds.Records[0].Time.Year())
	assert.Equal(t, 2262, ds.Records[1].Time.Year())
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		noSentinel bool
		wantErr    error
	}{
		{
			name:    "too few fields",
			input:   "1000,m1,alice,bob,t\n",
			wantErr: ErrMalformedRow,
		},
		{
			name:    "too many fields",
			input:   "1000,m1,alice,bob,t,email,extra\n",
			wantErr: ErrMalformedRow,
		},
		{
			name:    "non-numeric time",
			input:   "yesterday,m1,alice,bob,t,email\n",
			wantErr: ErrInvalidTime,
		},
		{
			name:    "time past 2262",
			input:   "9000000000000000,m1,alice,bob,t,email\n",
			wantErr: ErrInvalidTime,
		},
		{
			name:    "time before 1677",
			input:   "-9300000000000,m1,alice,bob,t,email\n",
			wantErr: ErrInvalidTime,
		},
		{
			name:    "float time out of range",
			input:   "1e20,m1,alice,bob,t,email\n",
			wantErr: ErrInvalidTime,
		},
		{
			name:       "empty recipient without sentinel",
			input:      "1000,m1,alice,,t,email\n",
			noSentinel: true,
			wantErr:    ErrMalformedRow,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: ErrEmptyInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultOptions()
			if tt.noSentinel {
				opts.MissingRecipient = ""
			}
			_, err := Read(strings.NewReader(tt.input), opts)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	require.NoError(t, os.WriteFile(path, []byte("1000,m1,alice,bob,t,email\n"), 0o644))

	ds, err := Load(path, defaultOptions())
	require.NoError(t, err)
	assert.Len(t, ds.Records, 1)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), defaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
