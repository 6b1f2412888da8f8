package services

import (
	"testing"

	"maps-scraper/models"
)

func TestParseRating(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"4.5", 4.5, true},
		{"4,5", 4.5, true},
		{"4.85", 4.85, true},
		{"5", 5, true},
		{"0", 0, true},
		{"", 0, false},
		{"Nuevo", 0, false},
		{"6,0", 0, false},
		{"4.5 estrellas", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseRating(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseRating(%q) = (%.2f, %v); want (%.2f, %v)",
				tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"123", 123},
		{"1.234 reseñas", 1},
		{"42 opiniones", 42},
		{"", 0},
		{"sin datos", 0},
	}

	for _, tt := range tests {
		if got := ParseCount(tt.raw); got != tt.want {
			t.Errorf("ParseCount(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestParseStarsClamps(t *testing.T) {
	if got := ParseStars("7"); got != 5 {
		t.Errorf("ParseStars(\"7\") = %d, want 5", got)
	}
	if got := ParseStars("3"); got != 3 {
		t.Errorf("ParseStars(\"3\") = %d, want 3", got)
	}
	if got := ParseStars(""); got != 0 {
		t.Errorf("ParseStars(\"\") = %d, want 0", got)
	}
}

func TestCleanAuthorPlaceholder(t *testing.T) {
	if got := CleanAuthor("  "); got != AnonymousAuthor {
		t.Errorf("empty author: got %q, want %q", got, AnonymousAuthor)
	}
	if got := CleanAuthor(" María  López "); got != "María López" {
		t.Errorf("author normalization: got %q", got)
	}
}

func TestIsClosed(t *testing.T) {
	if !IsClosed("Cerrado") || !IsClosed("Closed all day") {
		t.Error("closed markers not detected")
	}
	if IsClosed("9:00–18:00") {
		t.Error("open hours flagged as closed")
	}
}

func TestCleanReviewDefaults(t *testing.T) {
	raw := models.RawReview{Author: "", Stars: "", Date: " hace 2 meses ", Text: " Buen lugar ", Photos: 2, Likes: "no likes"}

	got := CleanReview(raw)
	if got.Author != AnonymousAuthor {
		t.Errorf("author: got %q", got.Author)
	}
	if got.Rating != 0 || got.Likes != 0 {
		t.Errorf("defaults: rating %d likes %d, want 0 0", got.Rating, got.Likes)
	}
	if got.Date != "hace 2 meses" || got.Text != "Buen lugar" {
		t.Errorf("trim: date %q text %q", got.Date, got.Text)
	}
	if got.Photos != 2 {
		t.Errorf("photos: got %d", got.Photos)
	}
}
