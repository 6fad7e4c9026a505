package dates

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"2026-03-05", "2026-03-05", false},
		{"05-03-2026", "2026-03-05", false},
		{"5/3/2026", "2026-03-05", false},
		{"05/03/2026", "2026-03-05", false},
		{"Mar 5, 2026", "2026-03-05", false},
		{"5 Mar 2026", "2026-03-05", false},
		{"  2026-03-05  ", "2026-03-05", false},
		{"", "", true},
		{"not a date", "", true},
		{"2026-13-40", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToDisplay(t *testing.T) {
	if got := ToDisplay("2026-03-05"); got != "05-03-2026" {
		t.Errorf("ToDisplay = %q, want 05-03-2026", got)
	}
	// Malformed stored value passes through unchanged.
	if got := ToDisplay("garbage"); got != "garbage" {
		t.Errorf("ToDisplay(garbage) = %q", got)
	}
}

func TestInRange(t *testing.T) {
	tests := []struct {
		iso, from, to string
		want          bool
	}{
		{"2026-03-05", "2026-03-01", "2026-03-31", true},
		{"2026-03-05", "", "", true},
		{"2026-02-28", "2026-03-01", "", false},
		{"2026-04-01", "", "2026-03-31", false},
		{"2026-03-01", "2026-03-01", "2026-03-01", true},
	}
	for _, tt := range tests {
		if got := InRange(tt.iso, tt.from, tt.to); got != tt.want {
			t.Errorf("InRange(%q, %q, %q) = %v, want %v", tt.iso, tt.from, tt.to, got, tt.want)
		}
	}
}
