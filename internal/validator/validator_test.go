package validator

import (
	"strings"
	"testing"
)

type inner struct {
	Points int `json:"points" validate:"gt=0"`
}

type outer struct {
	Title string  `json:"title" validate:"required"`
	Items []inner `json:"items" validate:"required,dive"`
}

func TestStructValid(t *testing.T) {
	if fields := Struct(outer{Title: "ok", Items: []inner{{Points: 1}}}); fields != nil {
		t.Fatalf("expected no errors, got %v", fields)
	}
}

func TestStructReportsJSONPaths(t *testing.T) {
	fields := Struct(outer{Items: []inner{{Points: 1}, {Points: 0}}})

	if _, ok := fields["title"]; !ok {
		t.Errorf("missing title error in %v", fields)
	}
	msg, ok := fields["items[1].points"]
	if !ok {
		t.Fatalf("missing items[1].points error in %v", fields)
	}
	if !strings.Contains(msg, "points") {
		t.Errorf("message %q should mention the field", msg)
	}
}
