package models

import (
	"encoding/json"
	"testing"
)

func TestTimestampUnmarshalMillis(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte("1700000000000"), &ts); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if ts != 1700000000000 {
		t.Fatalf("expected millis preserved, got %d", ts)
	}
}

func TestTimestampUnmarshalSeconds(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte("1700000000"), &ts); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if ts != 1700000000000 {
		t.Fatalf("seconds epoch should scale to millis, got %d", ts)
	}
}

func TestTimestampUnmarshalISOString(t *testing.T) {
	cases := []string{
		`"2024-03-01T10:30:00Z"`,
		`"2024-03-01T10:30:00"`,
		`"2024-03-01 10:30:00"`,
	}
	want := Timestamp(1709289000000)
	for _, raw := range cases {
		var ts Timestamp
		if err := json.Unmarshal([]byte(raw), &ts); err != nil {
			t.Fatalf("unmarshal %s failed: %v", raw, err)
		}
		if ts != want {
			t.Fatalf("%s decoded to %d, want %d", raw, ts, want)
		}
	}
}

func TestTimestampUnmarshalDateOnly(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`"2024-03-01"`), &ts); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if got := ts.Time().Format("2006-01-02"); got != "2024-03-01" {
		t.Fatalf("date-only round trip broke: %s", got)
	}
}

func TestTimestampUnmarshalNumericString(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`"1700000000000"`), &ts); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if ts != 1700000000000 {
		t.Fatalf("stringified epoch should decode, got %d", ts)
	}
}

func TestTimestampUnmarshalGarbage(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`"next tuesday"`), &ts); err == nil {
		t.Fatalf("expected error for unparseable string")
	}
}

func TestTimestampMarshalPlainNumber(t *testing.T) {
	data, err := json.Marshal(Timestamp(1700000000000))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != "1700000000000" {
		t.Fatalf("expected plain number, got %s", data)
	}
}

func TestDeriveStatus(t *testing.T) {
	intent := &OrderIntent{Symbol: "BTC-USD"}
	trade := &TradeFill{Symbol: "BTC-USD"}

	cases := []struct {
		name    string
		outcome ExecutionOutcome
		want    OutcomeStatus
	}{
		{"explicit status wins", ExecutionOutcome{Status: OutcomeRejected, Intent: intent, Trade: trade}, OutcomeRejected},
		{"trade only is liquidated", ExecutionOutcome{Trade: trade}, OutcomeLiquidated},
		{"intent only is rejected", ExecutionOutcome{Intent: intent}, OutcomeRejected},
		{"both is executed", ExecutionOutcome{Intent: intent, Trade: trade}, OutcomeExecuted},
		{"neither defaults to executed", ExecutionOutcome{}, OutcomeExecuted},
	}
	for _, tc := range cases {
		if got := tc.outcome.DeriveStatus(); got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}
