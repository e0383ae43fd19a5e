package avatar

import (
	"strings"
	"testing"
)

func TestPlaceholderIsDeterministic(t *testing.T) {
	for _, name := range []string{"Ann", "Bob", "Zoë", ""} {
		if Placeholder(name) != Placeholder(name) {
			t.Fatalf("placeholder for %q not stable", name)
		}
		if idx := Index(name); idx < 0 || idx >= len(placeholders) {
			t.Fatalf("index %d out of range for %q", idx, name)
		}
	}
}

func TestIndexUsesRuneSum(t *testing.T) {
	// 'A'(65) + 'n'(110) + 'n'(110) = 285; 285 % 4 = 1
	if got := Index("Ann"); got != 1 {
		t.Fatalf("expected index 1, got %d", got)
	}
}

func TestURLPrefersExplicitAvatar(t *testing.T) {
	if got := URL(" https://cdn/x.png ", "Ann", "a@x.com"); got != "https://cdn/x.png" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestURLFallsBackToEmail(t *testing.T) {
	got := URL("", "  ", "A@X.com")
	if got != Placeholder("a@x.com") {
		t.Fatalf("expected email-derived placeholder, got %q", got)
	}
	if !strings.HasPrefix(got, PathPrefix) {
		t.Fatalf("expected placeholder path, got %q", got)
	}
}

func TestEmbeddedImagesPresent(t *testing.T) {
	for _, name := range placeholders {
		if _, err := Images.ReadFile("images/" + name); err != nil {
			t.Fatalf("missing embedded image %s: %v", name, err)
		}
	}
}
