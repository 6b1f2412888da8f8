package regulatory

import (
	"testing"
	"time"

	"maps-scraper/models"
)

var knownListings = []models.KnownListing{
	{ID: 1, Name: "SANNA Clínica El Golf"},
	{ID: 2, Name: "SANNA Clínica San Borja"},
	{ID: 3, Name: "SANNA Centro Médico Miraflores"},
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"SANNA Clínica El Golf", "sanna clinica el golf"},
		{"Centro Médico - Miraflores", "centro medico miraflores"},
		{"  San   Borja ", "san borja"},
		{`"SANNA" (Surco)`, "sanna surco"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBestMatchSharedTokens(t *testing.T) {
	m := NewMatcher()

	got := m.BestMatch("Clinica El Golf", knownListings)
	if got == nil {
		t.Fatal("expected a match for accent-free variant")
	}
	if got.Listing.ID != 1 {
		t.Errorf("matched listing %d, want 1", got.Listing.ID)
	}
	if got.Shared < 3 {
		t.Errorf("shared tokens = %d, want >= 3", got.Shared)
	}
}

func TestBestMatchBelowThreshold(t *testing.T) {
	m := NewMatcher()

	if got := m.BestMatch("Hospital Nacional Dos de Mayo", knownListings); got != nil {
		t.Errorf("unrelated candidate matched %q", got.Listing.Name)
	}
}

func TestBestMatchExactNormalized(t *testing.T) {
	// An exact name match is accepted even when too short to clear the
	// shared-token threshold.
	short := []models.KnownListing{{ID: 9, Name: "SANNA"}}

	m := NewMatcher()
	got := m.BestMatch("sanna", short)
	if got == nil || got.Listing.ID != 9 {
		t.Fatalf("exact normalized match rejected: %+v", got)
	}
}

func TestBestMatchPrefersMoreOverlap(t *testing.T) {
	m := NewMatcher()

	got := m.BestMatch("SANNA Clínica San Borja", knownListings)
	if got == nil {
		t.Fatal("expected a match")
	}
	if got.Listing.ID != 2 {
		t.Errorf("matched listing %d, want 2", got.Listing.ID)
	}
}

func TestBestMatchEmptyKnown(t *testing.T) {
	m := NewMatcher()
	if got := m.BestMatch("SANNA El Golf", nil); got != nil {
		t.Errorf("match against empty list: %+v", got)
	}
}

func TestFactFromNotice(t *testing.T) {
	date := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)

	compliant := models.Notice{
		Code: "NOR001", Outcome: OutcomeCompliant,
		ListingID: 1, OfficialCode: "PER001", Date: date,
	}
	fact := FactFromNotice(&compliant)
	if fact.Total != 1 || fact.Compliant != 1 || fact.NonCompliant != 0 {
		t.Errorf("compliant fact: %+v", fact)
	}
	if fact.NoticeCode != "NOR001" || fact.OfficialCode != "PER001" || fact.ListingID != 1 {
		t.Errorf("fact keys: %+v", fact)
	}

	rejected := models.Notice{Code: "NOR002", Outcome: OutcomeNonCompliant}
	fact = FactFromNotice(&rejected)
	if fact.Compliant != 0 || fact.NonCompliant != 1 {
		t.Errorf("non-compliant fact: %+v", fact)
	}
}
