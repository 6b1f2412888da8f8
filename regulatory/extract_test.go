package regulatory

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestExtractType(t *testing.T) {
	doc := docFromHTML(t, `<html><body><h2> Resolución Directoral </h2></body></html>`)
	if got := ExtractType(doc); got != "Resolución Directoral" {
		t.Errorf("type: got %q", got)
	}

	empty := docFromHTML(t, `<html><body><p>nada</p></body></html>`)
	if got := ExtractType(empty); got != NoType {
		t.Errorf("missing h2: got %q, want %q", got, NoType)
	}
}

func TestExtractDateSpanishMonths(t *testing.T) {
	tests := []struct {
		text string
		want time.Time
	}{
		{"12 de marzo de 2024", time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)},
		{"3 de setiembre de 2023", time.Date(2023, 9, 3, 0, 0, 0, 0, time.UTC)},
		{"28 de Septiembre de 2023", time.Date(2023, 9, 28, 0, 0, 0, 0, time.UTC)},
		{"1 de enero de 2025", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		doc := docFromHTML(t, `<html><body><h2>Tipo</h2><p>`+tt.text+`</p></body></html>`)
		got, ok := ExtractDate(doc)
		if !ok {
			t.Errorf("ExtractDate(%q): no date parsed", tt.text)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ExtractDate(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestExtractDateMissing(t *testing.T) {
	doc := docFromHTML(t, `<html><body><h2>Tipo</h2><p>sin fecha aquí</p></body></html>`)
	if _, ok := ExtractDate(doc); ok {
		t.Error("unparseable text should not yield a date")
	}

	noH2 := docFromHTML(t, `<html><body><p>12 de marzo de 2024</p></body></html>`)
	if _, ok := ExtractDate(noH2); ok {
		t.Error("date requires the heading context")
	}
}

func TestExtractAction(t *testing.T) {
	text := "Visto el expediente. Otórguese la autorización sanitaria de funcionamiento al establecimiento solicitante. Regístrese."
	got := ExtractAction(text)
	if !strings.HasPrefix(got, "Otórguese") || !strings.HasSuffix(got, ".") {
		t.Errorf("action: got %q", got)
	}

	if got := ExtractAction("texto sin verbos resolutivos"); got != NoActions {
		t.Errorf("fallback: got %q, want %q", got, NoActions)
	}
}

func TestExtractEntityPatterns(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{`con nombre comercial "SANNA Clínica El Golf" ubicado en`, `SANNA Clínica El Golf`},
		{`se concede la autorización sanitaria a SANNA Centro Médico Sur`, `SANNA Centro Médico Sur`},
		{`el establecimiento SANNA San Borja brinda servicios`, `SANNA San Borja brinda servicios`},
		{`sin mención de la cadena`, ``},
	}

	for _, tt := range tests {
		if got := ExtractEntity(tt.text, "SANNA"); got != tt.want {
			t.Errorf("ExtractEntity(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestClassifyOutcome(t *testing.T) {
	tests := []struct {
		actions string
		want    string
	}{
		{"Otórguese la autorización sanitaria.", OutcomeCompliant},
		{"Se autoriza el funcionamiento.", OutcomeCompliant},
		{"Declárese improcedente la solicitud.", OutcomeNonCompliant},
		{NoActions, OutcomeNonCompliant},
	}

	for _, tt := range tests {
		if got := ClassifyOutcome(tt.actions); got != tt.want {
			t.Errorf("ClassifyOutcome(%q) = %q, want %q", tt.actions, got, tt.want)
		}
	}
}
