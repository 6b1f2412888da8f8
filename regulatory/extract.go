package regulatory

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Fallback values when a notice page lacks the expected structure.
const (
	NoType    = "SIN TIPO"
	NoActions = "SIN ACCIONES"
)

// Ruling outcomes.
const (
	OutcomeCompliant    = "Conforme"
	OutcomeNonCompliant = "No conforme"
)

var (
	actionRegexp  = regexp.MustCompile(`(?i)(Ot[óo]rguese|Decl[áa]rese|Autoriz[ae]|Enc[áa]rg[ue])[^.]{20,200}\.`)
	grantRegexp   = regexp.MustCompile(`(?i)ot[oó]rg[ao]|autoriz[ao]`)
	monthReplacer = strings.NewReplacer(
		"enero", "January", "febrero", "February", "marzo", "March",
		"abril", "April", "mayo", "May", "junio", "June",
		"julio", "July", "agosto", "August", "setiembre", "September",
		"septiembre", "September", "octubre", "October",
		"noviembre", "November", "diciembre", "December",
	)
)

// ExtractType returns the notice's type heading, the first h2 on the page.
func ExtractType(doc *goquery.Document) string {
	h2 := doc.Find("h2").First()
	if h2.Length() == 0 {
		return NoType
	}
	t := strings.TrimSpace(h2.Text())
	if t == "" {
		return NoType
	}
	return t
}

// ExtractDate parses the publication date from the paragraph following the
// type heading, written as "12 de marzo de 2024" (setiembre variant
// included). The second return is false when no date could be parsed.
func ExtractDate(doc *goquery.Document) (time.Time, bool) {
	h2 := doc.Find("h2").First()
	if h2.Length() == 0 {
		return time.Time{}, false
	}

	p := h2.NextFiltered("p")
	if p.Length() == 0 {
		return time.Time{}, false
	}

	text := strings.ToLower(strings.TrimSpace(p.Text()))
	text = monthReplacer.Replace(text)

	date, err := time.Parse("2 de January de 2006", text)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// ExtractAction returns the first corrective-action sentence: a ruling verb
// followed by 20–200 characters up to the period.
func ExtractAction(text string) string {
	if m := actionRegexp.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	return NoActions
}

// ExtractEntity finds the regulated entity's commercial name in the page
// text. Patterns are tried in order of specificity.
func ExtractEntity(text, prefix string) string {
	patterns := []*regexp.Regexp{
		regexp.MustCompile(`(?i)nombre comercial\s*[“"]?(` + prefix + `[^”",\n]+)`),
		regexp.MustCompile(`(?i)autorizaci[oó]n.*?a\s+(` + prefix + `[^”",\n]+)`),
		regexp.MustCompile(`(?i)(` + prefix + `[^,.\n]{5,80})`),
	}

	for _, pattern := range patterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// ClassifyOutcome labels the ruling: a granting/authorizing action sentence
// is compliant, anything else is not.
func ClassifyOutcome(actions string) string {
	if grantRegexp.MatchString(actions) {
		return OutcomeCompliant
	}
	return OutcomeNonCompliant
}
