package services

import (
	"regexp"
	"strings"

	"github.com/cdipaolo/sentiment"
	"github.com/jonreiter/govader"

	"maps-scraper/models"
	"maps-scraper/utils"
)

// Signal-combination policy. The lexicon-only signal is trusted less than
// the two general-purpose estimators, hence the fixed 0.4/0.3/0.3 split.
const (
	weightVader   = 0.4
	weightGeneral = 0.3
	weightLexicon = 0.3
)

// Word-list caps on the stored analysis row.
const (
	maxPositiveWords    = 10
	maxNegativeWords    = 10
	maxDetectedKeywords = 15
)

var (
	// specialCharRegexp replaces everything but word characters and basic
	// punctuation with a space
	specialCharRegexp = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?;]`)
	// whitespaceRegexp collapses whitespace runs
	whitespaceRegexp = regexp.MustCompile(`\s+`)
)

// Estimator produces a polarity in [-1, 1] for already-normalized text.
type Estimator interface {
	Polarity(text string) (float64, error)
}

type vaderEstimator struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func (v *vaderEstimator) Polarity(text string) (float64, error) {
	return v.analyzer.PolarityScores(text).Compound, nil
}

type generalEstimator struct {
	model sentiment.Models
}

func (g *generalEstimator) Polarity(text string) (float64, error) {
	analysis := g.model.SentimentAnalysis(text, sentiment.English)
	// the classifier emits 0 or 1; map onto the [-1, 1] polarity range
	return 2*float64(analysis.Score) - 1, nil
}

// Engine scores review text by blending three independent sentiment signals.
// It is constructed with an immutable lexicon snapshot; reloading the lexicon
// means constructing a new Engine. The Engine never persists anything.
type Engine struct {
	vader   Estimator
	general Estimator
	lexicon map[string]models.LexiconEntry
	logger  *utils.Logger
}

// NewEngine builds an Engine from a loaded keyword lexicon. An estimator
// that fails to initialize is left out and contributes a neutral 0 signal.
func NewEngine(lexicon []models.LexiconEntry, logger *utils.Logger) *Engine {
	e := &Engine{
		vader:   &vaderEstimator{analyzer: govader.NewSentimentIntensityAnalyzer()},
		lexicon: make(map[string]models.LexiconEntry, len(lexicon)),
		logger:  logger,
	}

	for _, entry := range lexicon {
		e.lexicon[strings.ToLower(entry.Word)] = entry
	}

	model, err := sentiment.Restore()
	if err != nil {
		logger.Warn("[sentiment] General estimator unavailable, degrading to neutral: %v", err)
	} else {
		e.general = &generalEstimator{model: model}
	}

	logger.Info("[sentiment] Engine ready — %d lexicon entries", len(e.lexicon))
	return e
}

// ScoreReview computes the full sentiment analysis for one review text.
// Returns nil for empty or whitespace-only text: such reviews get no
// analysis row at all.
func (e *Engine) ScoreReview(text string) *models.SentimentResult {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	clean := NormalizeText(text)

	vaderScore := e.signal(e.vader, clean)
	generalScore := e.signal(e.general, clean)
	lexiconScore, positive, negative, detected := e.scanLexicon(clean)

	combined := weightVader*vaderScore + weightGeneral*generalScore + weightLexicon*lexiconScore
	conf := confidence(combined, vaderScore, generalScore, lexiconScore)

	return &models.SentimentResult{
		CategoryID:    Categorize(combined),
		Score:         combined,
		Confidence:    conf,
		PositiveWords: truncateStrings(positive, maxPositiveWords),
		NegativeWords: truncateStrings(negative, maxNegativeWords),
		Detected:      truncateKeywords(detected, maxDetectedKeywords),
	}
}

// signal runs one estimator, degrading any failure to the neutral 0 the
// combined-score formula depends on.
func (e *Engine) signal(est Estimator, text string) float64 {
	if est == nil {
		return 0
	}
	score, err := est.Polarity(text)
	if err != nil {
		return 0
	}
	return score
}

// scanLexicon tokenizes on whitespace and accumulates the weight of every
// token found in the lexicon. The score is the mean matched weight.
func (e *Engine) scanLexicon(text string) (float64, []string, []string, []models.DetectedKeyword) {
	var (
		positive []string
		negative []string
		detected []models.DetectedKeyword
		total    float64
		matched  int
	)

	for _, word := range strings.Fields(strings.ToLower(text)) {
		entry, ok := e.lexicon[word]
		if !ok {
			continue
		}

		total += entry.Weight
		matched++
		detected = append(detected, models.DetectedKeyword{
			Word:     word,
			Weight:   entry.Weight,
			Category: entry.Category,
		})

		if entry.Weight > 0 {
			positive = append(positive, word)
		} else if entry.Weight < 0 {
			negative = append(negative, word)
		}
	}

	if matched == 0 {
		return 0, positive, negative, detected
	}
	return total / float64(matched), positive, negative, detected
}

// confidence measures agreement between the three signals: the mean squared
// deviation from the combined score, inverted and floored at 0.
func confidence(combined float64, signals ...float64) float64 {
	var variance float64
	for _, s := range signals {
		d := s - combined
		variance += d * d
	}
	variance /= float64(len(signals))

	if variance >= 1 {
		return 0
	}
	return 1 - variance
}

// Categorize maps a combined score onto the five emotional categories.
// Bands are checked top-down with inclusive lower bounds.
func Categorize(score float64) int {
	switch {
	case score >= 0.6:
		return models.CategoryVeryPositive
	case score >= 0.2:
		return models.CategoryPositive
	case score >= -0.2:
		return models.CategoryNeutral
	case score >= -0.6:
		return models.CategoryNegative
	default:
		return models.CategoryVeryNegative
	}
}

// NormalizeText lowercases, strips special characters down to basic
// punctuation, and collapses whitespace.
func NormalizeText(text string) string {
	text = strings.ToLower(text)
	text = specialCharRegexp.ReplaceAllString(text, " ")
	text = whitespaceRegexp.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func truncateStrings(words []string, max int) []string {
	if len(words) > max {
		return words[:max]
	}
	return words
}

func truncateKeywords(kws []models.DetectedKeyword, max int) []models.DetectedKeyword {
	if len(kws) > max {
		return kws[:max]
	}
	return kws
}
