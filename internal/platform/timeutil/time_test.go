package timeutil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fxamacker/cbor/v2"
)

func TestLayouts(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 0, 123456789, time.UTC)
	if got := ts.Format(RFC3339Millis); got != "2024-01-15T10:30:00.123Z" {
		t.Fatalf("unexpected millis format: %s", got)
	}
	if got := ts.Format(RFC3339Micros); got != "2024-01-15T10:30:00.123456Z" {
		t.Fatalf("unexpected micros format: %s", got)
	}
}

func TestTimeMarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    Time
		expected string
	}{
		{"zero milliseconds", NewTime(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)), `"2024-01-15T10:30:00.000Z"`},
		{"nanoseconds truncated", NewTime(time.Date(2024, 1, 15, 10, 30, 0, 123456789, time.UTC)), `"2024-01-15T10:30:00.123Z"`},
		{
			"positive offset converted",
			NewTime(time.Date(2024, 1, 15, 12, 30, 0, 0, time.FixedZone("CET", 2*60*60))),
			`"2024-01-15T10:30:00.000Z"`,
		},
		{
			"negative offset converted",
			NewTime(time.Date(2024, 1, 15, 5, 30, 0, 0, time.FixedZone("EST", -5*60*60))),
			`"2024-01-15T10:30:00.000Z"`,
		},
		{"zero value", Time{}, `"0001-01-01T00:00:00.000Z"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(data) != tt.expected {
				t.Fatalf("expected %s, got %s", tt.expected, data)
			}
		})
	}
}

func TestTimeUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{"seconds", `"2024-01-15T10:30:00Z"`, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"millis", `"2024-01-15T10:30:00.123Z"`, time.Date(2024, 1, 15, 10, 30, 0, 123000000, time.UTC)},
		{"nanos", `"2024-01-15T10:30:00.123456789Z"`, time.Date(2024, 1, 15, 10, 30, 0, 123456789, time.UTC)},
		{"offset", `"2024-01-15T12:30:00+02:00"`, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result Time
			if err := json.Unmarshal([]byte(tt.input), &result); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !result.Equal(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, result.UTC())
			}
		})
	}
}

func TestTimeUnmarshalJSONNullPreservesValue(t *testing.T) {
	result := NewTime(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))
	original := result.Time

	if err := json.Unmarshal([]byte("null"), &result); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Equal(original) {
		t.Fatalf("null should preserve existing value, got %v", result)
	}
}

func TestTimeUnmarshalJSONInvalid(t *testing.T) {
	for _, input := range []string{`"not-a-date"`, `""`, `12345`, `"2024-01-15"`, `"2024-01-15T10:30:00"`} {
		var result Time
		if err := json.Unmarshal([]byte(input), &result); err == nil {
			t.Fatalf("expected error for input %s", input)
		}
	}
}

func TestTimeCBOREncodesTextString(t *testing.T) {
	ts := NewTime(time.Date(2024, 6, 15, 14, 30, 45, 123456000, time.UTC))

	data, err := cbor.Marshal(struct {
		Timestamp Time `cbor:"timestamp"`
	}{ts})
	if err != nil {
		t.Fatalf("cbor marshal: %v", err)
	}

	var raw map[string]any
	if err := cbor.Unmarshal(data, &raw); err != nil {
		t.Fatalf("cbor unmarshal: %v", err)
	}
	if got, ok := raw["timestamp"].(string); !ok || got != "2024-06-15T14:30:45.123Z" {
		t.Fatalf("expected text timestamp, got %#v", raw["timestamp"])
	}

	var decoded struct {
		Timestamp Time `cbor:"timestamp"`
	}
	if err := cbor.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("cbor unmarshal into Time: %v", err)
	}
	if !decoded.Timestamp.Equal(ts.Truncate(time.Millisecond)) {
		t.Fatalf("expected %v, got %v", ts, decoded.Timestamp)
	}
}

func TestTimeUnmarshalCBORNullPreservesValue(t *testing.T) {
	result := NewTime(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))
	original := result.Time

	null, err := cbor.Marshal(nil)
	if err != nil {
		t.Fatalf("cbor marshal: %v", err)
	}
	if err := result.UnmarshalCBOR(null); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Equal(original) {
		t.Fatalf("null should preserve existing value, got %v", result)
	}
}

func TestTimeSchema(t *testing.T) {
	registry := huma.NewMapRegistry("#/components/schemas/", huma.DefaultSchemaNamer)
	s := Time{}.Schema(registry)
	if s.Type != huma.TypeString || s.Format != "date-time" {
		t.Fatalf("unexpected schema: %+v", s)
	}
}

func TestNow(t *testing.T) {
	before := time.Now()
	result := Now()
	after := time.Now()

	if result.Before(before) || result.After(after) {
		t.Fatalf("Now() returned time outside expected range")
	}
}

func TestTimeString(t *testing.T) {
	ts := NewTime(time.Date(2024, 1, 15, 10, 30, 0, 0, time.FixedZone("EST", -5*60*60)))
	if got := ts.String(); got != "2024-01-15T15:30:00.000Z" {
		t.Fatalf("unexpected string: %s", got)
	}
}
