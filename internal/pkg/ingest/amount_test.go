package ingest

import "testing"

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{in: "19.995", want: 2000},
		{in: "19.994", want: 1999},
		{in: "-19.995", want: -2000},
		{in: "19.90", want: 1990},
		{in: "19,90", want: 1990},
		{in: "1.234,56", want: 123456},
		{in: "1,234.56", want: 123456},
		{in: "12,345,678.90", want: 1234567890},
		{in: "1.234.567,89", want: 123456789},
		{in: "12,345,678", want: 1234567800},
		{in: "R$ 49,9", want: 4990},
		{in: "100", want: 10000},
		{in: "0.005", want: 1},
		{in: "", want: 0},
	}

	for _, tt := range tests {
		got, err := ToMinorUnits(tt.in)
		if err != nil {
			t.Fatalf("ToMinorUnits(%q) returned error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ToMinorUnits(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestToMinorUnits_Invalid(t *testing.T) {
	if _, err := ToMinorUnits("abc"); err == nil {
		t.Fatalf("expected error for non-numeric amount")
	}
	var a flexAmount = "abc"
	if _, err := a.MinorUnits(); err == nil {
		t.Fatalf("expected unparsable amount to report an error")
	}
	if got := minorUnitsOrWarn(a, "relay", "r1"); got != 0 {
		t.Fatalf("expected unparsable amount to be stored as 0, got %d", got)
	}
}

func TestFlexAmount_Unmarshal(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
	}{
		{raw: `19.995`, want: 2000},
		{raw: `"19.995"`, want: 2000},
		{raw: `null`, want: 0},
		{raw: `{"value":1}`, want: 0},
	}

	for _, tt := range tests {
		var a flexAmount
		if err := a.UnmarshalJSON([]byte(tt.raw)); err != nil {
			t.Fatalf("UnmarshalJSON(%s) returned error: %v", tt.raw, err)
		}
		got, err := a.MinorUnits()
		if err != nil {
			t.Fatalf("MinorUnits(%s) returned error: %v", tt.raw, err)
		}
		if got != tt.want {
			t.Fatalf("UnmarshalJSON(%s) -> %d, want %d", tt.raw, got, tt.want)
		}
	}
}
