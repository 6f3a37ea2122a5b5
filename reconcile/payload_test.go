package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	cases := map[string]time.Time{
		"2024-03-01T08:00:00Z":          time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		"2024-03-01T08:00:00+08:00":     time.Date(2024, 3, 1, 8, 0, 0, 0, time.FixedZone("", 8*3600)),
		"2024-03-01T08:00:00":           time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		"2024-03-01T08:00:00.123456789": time.Date(2024, 3, 1, 8, 0, 0, 123456789, time.UTC),
	}
	for input, want := range cases {
		got := ParseTimestamp(input)
		require.True(t, got.Equal(want), "parsing %q: got %v, want %v", input, got, want)
	}
}

func TestParseTimestampFallsBackToNow(t *testing.T) {
	for _, input := range []string{"", "yesterday", "01/03/2024"} {
		before := time.Now().UTC().Add(-time.Minute)
		got := ParseTimestamp(input)
		require.False(t, got.Before(before), "input %q should fall back to now", input)
		require.False(t, got.After(time.Now().UTC().Add(time.Minute)), "input %q should fall back to now", input)
	}
}

func TestFormatTimestamp(t *testing.T) {
	require.Empty(t, FormatTimestamp(time.Time{}))

	in := time.Date(2024, 3, 1, 16, 0, 0, 0, time.FixedZone("", 8*3600))
	require.Equal(t, "2024-03-01T08:00:00Z", FormatTimestamp(in))
}

func TestTimestampRoundTrip(t *testing.T) {
	orig := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	require.True(t, ParseTimestamp(FormatTimestamp(orig)).Equal(orig))
}
