package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"maps-scraper/models"
)

var (
	// ratingRegexp captures a decimal rating, comma or dot separated
	ratingRegexp = regexp.MustCompile(`^([0-5])[.,](\d{1,2})$`)
	// digitsRegexp captures the first run of digits in a counter string
	digitsRegexp = regexp.MustCompile(`\d+`)
)

// AnonymousAuthor is the placeholder used when a review has no author name.
const AnonymousAuthor = "Anónimo"

// ParseRating parses a global rating like "4.5" or "4,5". The second return
// is false when the text is not a valid 0–5 rating, which maps to NULL.
func ParseRating(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	m := ratingRegexp.FindStringSubmatch(raw)
	if m == nil {
		// whole values like "5" are valid too
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 && n <= 5 {
			return float64(n), true
		}
		return 0, false
	}
	val, err := strconv.ParseFloat(m[1]+"."+m[2], 64)
	if err != nil || val < 0 || val > 5 {
		return 0, false
	}
	return val, true
}

// ParseCount extracts a non-negative integer from a counter string such as
// a total-review or likes label, defaulting to 0.
func ParseCount(raw string) int {
	m := digitsRegexp.FindString(raw)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ParseStars converts a filled-star count string to a 0–5 star rating.
func ParseStars(raw string) int {
	n := ParseCount(raw)
	if n > 5 {
		return 5
	}
	return n
}

// CleanAuthor trims the author display name, substituting the anonymous
// placeholder when empty.
func CleanAuthor(raw string) string {
	author := NormalizeSpace(raw)
	if author == "" {
		return AnonymousAuthor
	}
	return author
}

// IsClosed reports whether an hours cell marks the day as closed.
func IsClosed(hours string) bool {
	h := strings.ToLower(hours)
	return strings.Contains(h, "cerrado") || strings.Contains(h, "closed")
}

// NormalizeSpace strips leading/trailing whitespace and collapses internal
// whitespace runs to single spaces.
func NormalizeSpace(s string) string {
	fields := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}

// CleanHours normalizes hours rows and marks closed days.
func CleanHours(hours []models.OpeningHour) []models.OpeningHour {
	out := make([]models.OpeningHour, 0, len(hours))
	for _, h := range hours {
		day := NormalizeSpace(h.Day)
		text := NormalizeSpace(h.Hours)
		if day == "" && text == "" {
			continue
		}
		out = append(out, models.OpeningHour{Day: day, Hours: text, Closed: IsClosed(text)})
	}
	return out
}

// CleanReview parses one raw review card into its persisted form.
func CleanReview(raw models.RawReview) models.Review {
	return models.Review{
		Author: CleanAuthor(raw.Author),
		Rating: ParseStars(raw.Stars),
		Date:   strings.TrimSpace(raw.Date),
		Text:   strings.TrimSpace(raw.Text),
		Photos: raw.Photos,
		Likes:  ParseCount(raw.Likes),
	}
}
