package storage

import "maps-scraper/models"

// seedOfficials pre-populates the reviewer-official lookup.
var seedOfficials = []models.Official{
	{Code: "PER001", FirstName: "César Henry", LastName: "Vásquez Sánchez", Role: "Ministro de salud"},
	{Code: "PER002", FirstName: "Juan Antonio", LastName: "Almeyda Alcántara", Role: "Director general de donaciones, trasplantes y banco de sangre"},
	{Code: "PER003", FirstName: "Edwin", LastName: "Quispe Quispe", Role: "Director ejecutivo de medicamentos, insumos y drogas"},
	{Code: "PER004", FirstName: "Segundo", LastName: "Montoya Mestanza", Role: "Director general de administración de recursos"},
}

// seedLexicon is a starter keyword set so a fresh database can score
// reviews immediately. Curators extend the table directly.
var seedLexicon = []struct {
	word       string
	weight     float64
	categoryID int
}{
	{"excelente", 0.9, models.CategoryVeryPositive},
	{"increíble", 0.85, models.CategoryVeryPositive},
	{"perfecto", 0.8, models.CategoryVeryPositive},
	{"bueno", 0.6, models.CategoryPositive},
	{"amable", 0.55, models.CategoryPositive},
	{"limpio", 0.5, models.CategoryPositive},
	{"rápido", 0.45, models.CategoryPositive},
	{"recomendado", 0.5, models.CategoryPositive},
	{"normal", 0.0, models.CategoryNeutral},
	{"regular", -0.1, models.CategoryNeutral},
	{"lento", -0.45, models.CategoryNegative},
	{"caro", -0.4, models.CategoryNegative},
	{"sucio", -0.55, models.CategoryNegative},
	{"malo", -0.6, models.CategoryNegative},
	{"pésimo", -0.9, models.CategoryVeryNegative},
	{"terrible", -0.85, models.CategoryVeryNegative},
	{"horrible", -0.85, models.CategoryVeryNegative},
}
