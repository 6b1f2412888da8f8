package regulatory

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"maps-scraper/models"
)

// Match is a resolved link from an extracted entity name to a known listing.
type Match struct {
	Listing models.KnownListing
	Shared  int
}

// Matcher resolves an extracted entity name against the known-listing list.
// Implementations are interchangeable; callers never depend on the
// similarity algorithm.
type Matcher interface {
	BestMatch(candidate string, known []models.KnownListing) *Match
}

var punctRegexp = regexp.MustCompile(`[\\'’"–\-/()\[\]]`)

// TokenOverlapMatcher scores candidates by the number of shared normalized
// tokens, requiring MinShared common tokens or an exact normalized match.
// Jaccard similarity breaks ties between equal overlap counts.
type TokenOverlapMatcher struct {
	MinShared int
}

// NewMatcher returns the default matcher with the standard threshold.
func NewMatcher() *TokenOverlapMatcher {
	return &TokenOverlapMatcher{MinShared: 2}
}

// BestMatch returns the best-scoring known listing, or nil when no listing
// clears the threshold.
func (m *TokenOverlapMatcher) BestMatch(candidate string, known []models.KnownListing) *Match {
	candNorm := Normalize(candidate)
	candTokens := tokenSet(candNorm)

	jaccard := metrics.NewJaccard()

	var best *Match
	var bestSim float64
	exact := false

	for _, listing := range known {
		listingNorm := Normalize(listing.Name)
		if listingNorm == candNorm {
			exact = true
		}

		shared := sharedTokens(candTokens, tokenSet(listingNorm))
		sim := strutil.Similarity(candNorm, listingNorm, jaccard)

		if best == nil || shared > best.Shared || (shared == best.Shared && sim > bestSim) {
			best = &Match{Listing: listing, Shared: shared}
			bestSim = sim
		}
	}

	if best == nil {
		return nil
	}
	if best.Shared >= m.MinShared || exact {
		return best
	}
	return nil
}

// Normalize lowercases, strips diacritics and collapses punctuation so
// name variants compare equal.
func Normalize(s string) string {
	s = strings.ToLower(s)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}

	s = punctRegexp.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}

func sharedTokens(a, b map[string]struct{}) int {
	n := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			n++
		}
	}
	return n
}
