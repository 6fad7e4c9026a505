package uploads

import "testing"

func TestSegment(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Asha Rao", "asha_rao"},
		{"  Asha  Rao  ", "asha__rao"},
		{"bill", "bill"},
		{"../../etc", "....etc"},
		{"", "unknown"},
		{"@@@", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Segment(tt.input); got != tt.want {
				t.Errorf("Segment(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"receipt.pdf", "receipt.pdf"},
		{"../../../etc/passwd", "passwd"},
		{"my receipt (1).jpg", "my_receipt__1_.jpg"},
		{"", "file"},
		{".", "file"},
		{"/", "file"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilename_TruncatesLongNames(t *testing.T) {
	long := ""
	for i := 0; i < 150; i++ {
		long += "a"
	}
	got := SanitizeFilename(long + ".pdf")
	if len(got) > 100 {
		t.Errorf("expected truncation to 100 chars, got %d", len(got))
	}
	if got[len(got)-4:] != ".pdf" {
		t.Errorf("expected extension preserved, got %q", got)
	}
}
