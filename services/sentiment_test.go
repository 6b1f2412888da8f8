package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"maps-scraper/models"
	"maps-scraper/utils"
)

type stubEstimator struct {
	score float64
	err   error
}

func (s *stubEstimator) Polarity(string) (float64, error) { return s.score, s.err }

func newTestEngine(lexicon []models.LexiconEntry, vader, general Estimator) *Engine {
	e := &Engine{
		vader:   vader,
		general: general,
		lexicon: make(map[string]models.LexiconEntry, len(lexicon)),
		logger:  utils.NewLogger(),
	}
	for _, entry := range lexicon {
		e.lexicon[strings.ToLower(entry.Word)] = entry
	}
	return e
}

func TestScoreReviewEmptyText(t *testing.T) {
	e := newTestEngine(nil, &stubEstimator{score: 0.9}, &stubEstimator{score: 0.9})

	for _, text := range []string{"", "   ", "\n\t  "} {
		if got := e.ScoreReview(text); got != nil {
			t.Errorf("ScoreReview(%q) = %+v, want nil", text, got)
		}
	}
}

func TestCombinedScoreFixedSignals(t *testing.T) {
	lexicon := []models.LexiconEntry{{Word: "meh", Weight: -0.1, Category: "Neutral"}}
	e := newTestEngine(lexicon, &stubEstimator{score: 0.5}, &stubEstimator{score: 0.2})

	res := e.ScoreReview("meh")
	if res == nil {
		t.Fatal("expected a result")
	}

	want := 0.4*0.5 + 0.3*0.2 + 0.3*(-0.1) // 0.23
	if math.Abs(res.Score-want) > 1e-9 {
		t.Errorf("combined score: got %.6f, want %.6f", res.Score, want)
	}
	if res.CategoryID != models.CategoryPositive {
		t.Errorf("category: got %d, want %d (Positivo)", res.CategoryID, models.CategoryPositive)
	}
}

func TestCategorizeBands(t *testing.T) {
	tests := []struct {
		score float64
		want  int
	}{
		{1.0, models.CategoryVeryPositive},
		{0.6, models.CategoryVeryPositive}, // boundary inclusive on the low side
		{0.59, models.CategoryPositive},
		{0.2, models.CategoryPositive},
		{0.19, models.CategoryNeutral},
		{0.0, models.CategoryNeutral},
		{-0.2, models.CategoryNeutral},
		{-0.21, models.CategoryNegative},
		{-0.6, models.CategoryNegative},
		{-0.61, models.CategoryVeryNegative},
		{-1.0, models.CategoryVeryNegative},
	}

	for _, tt := range tests {
		if got := Categorize(tt.score); got != tt.want {
			t.Errorf("Categorize(%.2f) = %d, want %d", tt.score, got, tt.want)
		}
	}
}

func TestCategorizeExhaustive(t *testing.T) {
	// every score in [-1, 1] lands in exactly one band
	for s := -1.0; s <= 1.0; s += 0.01 {
		got := Categorize(s)
		if got < models.CategoryVeryPositive || got > models.CategoryVeryNegative {
			t.Fatalf("Categorize(%.2f) = %d, outside 1..5", s, got)
		}
	}
}

func TestConfidenceFullAgreement(t *testing.T) {
	lexicon := []models.LexiconEntry{{Word: "bueno", Weight: 0.4, Category: "Positivo"}}
	e := newTestEngine(lexicon, &stubEstimator{score: 0.4}, &stubEstimator{score: 0.4})

	res := e.ScoreReview("bueno")
	if res == nil {
		t.Fatal("expected a result")
	}
	// all three signals equal and weights sum to 1, so variance is zero
	if math.Abs(res.Confidence-1.0) > 1e-9 {
		t.Errorf("confidence: got %.6f, want 1.0", res.Confidence)
	}
}

func TestConfidenceDisagreementLowersIt(t *testing.T) {
	e := newTestEngine(nil, &stubEstimator{score: 1.0}, &stubEstimator{score: -1.0})

	res := e.ScoreReview("texto sin palabras clave")
	if res == nil {
		t.Fatal("expected a result")
	}
	if res.Confidence >= 1.0 {
		t.Errorf("confidence should drop below 1 on disagreement, got %.4f", res.Confidence)
	}
	if res.Confidence < 0 || res.Confidence > 1 {
		t.Errorf("confidence out of [0,1]: %.4f", res.Confidence)
	}
}

func TestEstimatorFailureDegradesToNeutral(t *testing.T) {
	e := newTestEngine(nil,
		&stubEstimator{err: errors.New("estimator down")},
		&stubEstimator{score: 0.5})

	res := e.ScoreReview("algo de texto")
	if res == nil {
		t.Fatal("failure must not suppress the result")
	}

	want := 0.3 * 0.5 // failed vader contributes 0
	if math.Abs(res.Score-want) > 1e-9 {
		t.Errorf("combined score: got %.6f, want %.6f", res.Score, want)
	}
}

func TestMissingEstimatorIsNeutral(t *testing.T) {
	e := newTestEngine(nil, &stubEstimator{score: 0.5}, nil)

	res := e.ScoreReview("texto")
	want := 0.4 * 0.5
	if math.Abs(res.Score-want) > 1e-9 {
		t.Errorf("combined score: got %.6f, want %.6f", res.Score, want)
	}
}

func TestKeywordListsTruncated(t *testing.T) {
	var lexicon []models.LexiconEntry
	var words []string
	for i := 0; i < 20; i++ {
		w := fmt.Sprintf("palabra%d", i)
		lexicon = append(lexicon, models.LexiconEntry{Word: w, Weight: 0.5, Category: "Positivo"})
		words = append(words, w)
	}

	e := newTestEngine(lexicon, &stubEstimator{}, &stubEstimator{})
	res := e.ScoreReview(strings.Join(words, " "))
	if res == nil {
		t.Fatal("expected a result")
	}

	if len(res.PositiveWords) != maxPositiveWords {
		t.Errorf("positive words: got %d, want %d", len(res.PositiveWords), maxPositiveWords)
	}
	if len(res.Detected) != maxDetectedKeywords {
		t.Errorf("detected keywords: got %d, want %d", len(res.Detected), maxDetectedKeywords)
	}
	// first-match order preserved
	if res.PositiveWords[0] != "palabra0" || res.Detected[14].Word != "palabra14" {
		t.Errorf("truncation should keep first-match order: %v", res.PositiveWords)
	}
}

func TestLexiconScoreIsMeanOfMatches(t *testing.T) {
	lexicon := []models.LexiconEntry{
		{Word: "bueno", Weight: 0.8, Category: "Positivo"},
		{Word: "malo", Weight: -0.6, Category: "Negativo"},
	}
	e := newTestEngine(lexicon, &stubEstimator{}, &stubEstimator{})

	score, pos, neg, detected := e.scanLexicon("bueno pero malo")
	want := (0.8 - 0.6) / 2
	if math.Abs(score-want) > 1e-9 {
		t.Errorf("lexicon score: got %.4f, want %.4f", score, want)
	}
	if len(pos) != 1 || pos[0] != "bueno" {
		t.Errorf("positive words: %v", pos)
	}
	if len(neg) != 1 || neg[0] != "malo" {
		t.Errorf("negative words: %v", neg)
	}
	if len(detected) != 2 {
		t.Errorf("detected: got %d entries, want 2", len(detected))
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"¡Excelente Servicio!", "excelente servicio!"},
		{"Muy   bueno\n\ttodo", "muy bueno todo"},
		{"atención@buena #top", "atención buena top"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeText(tt.in); got != tt.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
