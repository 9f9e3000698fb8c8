package validate

import (
	"strings"
	"testing"
)

func TestTitleWithinLimit(t *testing.T) {
	if msg := Title("Spirited Away"); msg != "" {
		t.Errorf("Title returned %q for a valid title", msg)
	}
}

func TestTitleOverLimit(t *testing.T) {
	msg := Title(strings.Repeat("a", MaxTitleLength+1))
	if msg == "" {
		t.Fatal("expected a validation message for an oversized title")
	}
	if !strings.Contains(msg, "title") {
		t.Errorf("message %q should name the field", msg)
	}
}

func TestDescriptionOverLimit(t *testing.T) {
	if msg := Description(strings.Repeat("x", MaxDescriptionLength+1)); msg == "" {
		t.Fatal("expected a validation message for an oversized description")
	}
}

func TestFieldLimitsCoverFields(t *testing.T) {
	limits := FieldLimits()
	for _, field := range []string{"title", "description", "genre", "personName", "chatMessage"} {
		if limits[field] == 0 {
			t.Errorf("FieldLimits missing %q", field)
		}
	}
}
