package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/crewhub/internal/app/system/htmlsanitize"
)

func TestSanitize_Empty(t *testing.T) {
	if got := htmlsanitize.Sanitize(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestSanitize_PlainText(t *testing.T) {
	if got := htmlsanitize.Sanitize("Paid in cash at site office."); got != "Paid in cash at site office." {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

func TestSanitize_RemovesScript(t *testing.T) {
	input := "<p>Receipt attached</p><script>alert('xss')</script>"
	got := htmlsanitize.Sanitize(input)
	if got != "<p>Receipt attached</p>" {
		t.Errorf("expected script removed, got %q", got)
	}
}

func TestSanitize_RemovesOnclick(t *testing.T) {
	input := `<button onclick="alert('xss')">Click</button>`
	if got := htmlsanitize.Sanitize(input); strings.Contains(got, "onclick") {
		t.Errorf("expected onclick removed, got %q", got)
	}
}

func TestSanitize_RemovesJavascriptHref(t *testing.T) {
	input := `<a href="javascript:alert('xss')">Click</a>`
	if got := htmlsanitize.Sanitize(input); strings.Contains(got, "javascript:") {
		t.Errorf("expected javascript: href removed, got %q", got)
	}
}

func TestText_StripsAllMarkup(t *testing.T) {
	input := `<b>Asha</b> <i>Rao</i>`
	if got := htmlsanitize.Text(input); got != "Asha Rao" {
		t.Errorf("Text(%q) = %q, want %q", input, got, "Asha Rao")
	}
}
