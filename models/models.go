package models

import "time"

// RawReview holds one review card exactly as extracted from the browser,
// before any field parsing. Numeric-looking fields stay strings so a bad
// extraction can default instead of aborting the record.
type RawReview struct {
	Author string
	Stars  string
	Date   string
	Text   string
	Photos int
	Likes  string
}

// OpeningHour is one row of a listing's hours table. Closed is derived
// from the hours text during cleaning.
type OpeningHour struct {
	Day    string `json:"day"`
	Hours  string `json:"hours"`
	Closed bool   `json:"closed"`
}

// ListingRecord is the full result of collecting one listing URL:
// the listing attributes plus every review that could be loaded.
// It is what gets persisted and what the JSON snapshot serializes.
type ListingRecord struct {
	URL          string        `json:"url"`
	Name         string        `json:"name"`
	Address      string        `json:"address"`
	GlobalRating string        `json:"global_rating"`
	TotalReviews string        `json:"total_reviews"`
	Website      string        `json:"website"`
	Phone        string        `json:"phone"`
	Reference    string        `json:"reference"`
	Hours        []OpeningHour `json:"hours"`
	Reviews      []RawReview   `json:"reviews"`
	ScrapedAt    time.Time     `json:"scraped_at"`
}

// Review is the persisted, parsed form of a RawReview.
type Review struct {
	ID        int64
	ListingID int64
	Author    string
	Rating    int
	Date      string
	Text      string
	Photos    int
	Likes     int
	CreatedAt time.Time
}

// Emotional category ids, matching the seeded lookup table.
const (
	CategoryVeryPositive = 1
	CategoryPositive     = 2
	CategoryNeutral      = 3
	CategoryNegative     = 4
	CategoryVeryNegative = 5
)

// CategoryNames maps category ids to their display names, used for lookups
// and aggregation grouping.
var CategoryNames = map[int]string{
	CategoryVeryPositive: "Muy Positivo",
	CategoryPositive:     "Positivo",
	CategoryNeutral:      "Neutral",
	CategoryNegative:     "Negativo",
	CategoryVeryNegative: "Muy Negativo",
}

// LexiconEntry is one curated keyword with its signed weight.
type LexiconEntry struct {
	Word     string
	Weight   float64
	Type     string
	Category string
}

// DetectedKeyword records one lexicon hit inside a review.
type DetectedKeyword struct {
	Word     string  `json:"word"`
	Weight   float64 `json:"weight"`
	Category string  `json:"category"`
}

// SentimentResult is the engine's scoring output for a single review.
// It carries everything the sentiment_analyses row needs except the
// review id; persistence is a separate call made by the orchestrator.
type SentimentResult struct {
	CategoryID    int
	Score         float64
	Confidence    float64
	PositiveWords []string
	NegativeWords []string
	Detected      []DetectedKeyword
}

// AnalyzedReview is the per-row view the aggregator consumes: the stored
// category, combined score and serialized keyword hits of one analysis.
type AnalyzedReview struct {
	CategoryID   int
	Score        float64
	DetectedJSON string
}

// EmotionalMetrics is the one-per-listing aggregate row. Percentages are
// over analyzed reviews only and sum to 100 when TotalAnalyzed > 0.
type EmotionalMetrics struct {
	ListingID       int64
	TotalAnalyzed   int
	PctVeryPositive float64
	PctPositive     float64
	PctNeutral      float64
	PctNegative     float64
	PctVeryNegative float64
	AvgScore        float64
	Satisfaction    float64
	TopKeywords     string
	LastAnalyzedAt  time.Time
}
