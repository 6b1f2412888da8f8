package services

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"maps-scraper/models"
	"maps-scraper/utils"
)

// Satisfaction-index blend over the five category percentages. Percentages
// sum to 100, so the index lands in [0, 100] by construction.
const (
	satVeryPositive = 1.0
	satPositive     = 0.75
	satNeutral      = 0.5
	satNegative     = 0.25
	satVeryNegative = 0.0
)

const maxTopKeywords = 10

// Aggregator recomputes per-listing emotional metrics from the stored
// sentiment analyses. Metrics are always derived in full, never patched.
type Aggregator struct {
	logger *utils.Logger
}

func NewAggregator(logger *utils.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Compute derives the metrics row for a listing from its analyzed reviews.
// Returns nil when no analyses exist, distinguishing "not yet analyzed"
// from "analyzed, all neutral". Re-invocation over the same rows yields a
// deep-equal result.
func (a *Aggregator) Compute(listingID int64, rows []models.AnalyzedReview) *models.EmotionalMetrics {
	total := len(rows)
	if total == 0 {
		return nil
	}

	counts := make(map[int]int)
	var scoreSum float64
	for _, r := range rows {
		counts[r.CategoryID]++
		scoreSum += r.Score
	}

	pct := func(category int) float64 {
		return float64(counts[category]) / float64(total) * 100
	}

	m := &models.EmotionalMetrics{
		ListingID:       listingID,
		TotalAnalyzed:   total,
		PctVeryPositive: pct(models.CategoryVeryPositive),
		PctPositive:     pct(models.CategoryPositive),
		PctNeutral:      pct(models.CategoryNeutral),
		PctNegative:     pct(models.CategoryNegative),
		PctVeryNegative: pct(models.CategoryVeryNegative),
		AvgScore:        scoreSum / float64(total),
		TopKeywords:     a.topKeywords(rows),
	}

	m.Satisfaction = satVeryPositive*m.PctVeryPositive +
		satPositive*m.PctPositive +
		satNeutral*m.PctNeutral +
		satNegative*m.PctNegative +
		satVeryNegative*m.PctVeryNegative

	return m
}

// topKeywords flattens every detected-keyword record across the listing's
// analyses, counts occurrences by word and formats the 10 most frequent as
// "word(count)". Ties keep first-encountered order.
func (a *Aggregator) topKeywords(rows []models.AnalyzedReview) string {
	counts := make(map[string]int)
	var order []string

	for _, r := range rows {
		if r.DetectedJSON == "" {
			continue
		}
		var kws []models.DetectedKeyword
		if err := json.Unmarshal([]byte(r.DetectedJSON), &kws); err != nil {
			a.logger.Debug("[metrics] Skipping malformed keyword blob: %v", err)
			continue
		}
		for _, kw := range kws {
			if _, seen := counts[kw.Word]; !seen {
				order = append(order, kw.Word)
			}
			counts[kw.Word]++
		}
	}

	if len(order) == 0 {
		return ""
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxTopKeywords {
		order = order[:maxTopKeywords]
	}

	parts := make([]string, 0, len(order))
	for _, word := range order {
		parts = append(parts, fmt.Sprintf("%s(%d)", word, counts[word]))
	}
	return strings.Join(parts, ", ")
}

// Print writes a per-listing emotional summary to the log.
func (a *Aggregator) Print(name string, m *models.EmotionalMetrics) {
	a.logger.Info("[metrics] %s — %d reviews analyzed", name, m.TotalAnalyzed)
	a.logger.Info("[metrics]   Muy Positivo: %.1f%% | Positivo: %.1f%% | Neutral: %.1f%% | Negativo: %.1f%% | Muy Negativo: %.1f%%",
		m.PctVeryPositive, m.PctPositive, m.PctNeutral, m.PctNegative, m.PctVeryNegative)
	a.logger.Info("[metrics]   Satisfaction: %.1f/100 | Avg score: %.3f", m.Satisfaction, m.AvgScore)
	if m.TopKeywords != "" {
		a.logger.Info("[metrics]   Top keywords: %s", m.TopKeywords)
	}
}
