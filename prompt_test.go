package main

import (
	"strings"
	"testing"
)

func TestIsAffirmative(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"y", true},
		{"Y", true},
		{"yes", true},
		{"YES", true},
		{"s", true},
		{"si", true},
		{"Sí", true},
		{"SÍ", true},
		{" sí \n", true},
		{"n", false},
		{"no", false},
		{"", false},
		{"yess", false},
		{"oui", false},
	}

	for _, tt := range tests {
		if got := isAffirmative(tt.answer); got != tt.want {
			t.Errorf("isAffirmative(%q) = %v, want %v", tt.answer, got, tt.want)
		}
	}
}

func TestPromptYes(t *testing.T) {
	if !promptYes(strings.NewReader("sí\n"), "continue? ") {
		t.Error("affirmative line rejected")
	}
	if promptYes(strings.NewReader("no\n"), "continue? ") {
		t.Error("negative line accepted")
	}
	if promptYes(strings.NewReader(""), "continue? ") {
		t.Error("empty input accepted")
	}
}
