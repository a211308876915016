package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Timestamp is an instant on the simulated clock, stored as Unix epoch
// milliseconds. Engines emit timestamps either as numeric epochs or as
// ISO-8601 strings; both decode to the same numeric representation so that
// ordering comparisons are always numeric.
type Timestamp int64

// NewTimestamp creates a Timestamp from a time.Time.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.UnixMilli())
}

// Time converts the timestamp back to a time.Time in UTC.
func (ts Timestamp) Time() time.Time {
	return time.UnixMilli(int64(ts)).UTC()
}

// UTCDate truncates the timestamp to its UTC calendar date. Date-range
// filters compare at this granularity to avoid timezone-boundary mismatches.
func (ts Timestamp) UTCDate() time.Time {
	t := ts.Time()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Before reports whether ts is strictly earlier than other.
func (ts Timestamp) Before(other Timestamp) bool {
	return ts < other
}

// MarshalJSON encodes the timestamp as a plain epoch-millisecond number.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(ts), 10)), nil
}

// UnmarshalJSON accepts a numeric epoch (seconds or milliseconds) or an
// ISO-8601 / date-only string. Seconds-resolution epochs are detected by
// magnitude and scaled up so both conventions land on milliseconds.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*ts = 0
		return nil
	}

	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		parsed, err := parseTimeString(str)
		if err != nil {
			return err
		}
		*ts = NewTimestamp(parsed)
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	*ts = fromEpochNumber(f)
	return nil
}

// epochMillisCutoff separates seconds-resolution epochs from millisecond
// ones. 1e11 seconds is year 5138; 1e11 milliseconds is March 1973. Any
// realistic backtest timestamp sits clearly on one side.
const epochMillisCutoff = 1e11

func fromEpochNumber(f float64) Timestamp {
	if f < epochMillisCutoff {
		return Timestamp(f * 1000)
	}
	return Timestamp(f)
}

func parseTimeString(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	// Some engines serialize epoch numbers as strings.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromEpochNumber(f).Time(), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}
