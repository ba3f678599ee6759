package conversation

import (
	"strings"
	"testing"
	"time"

	"github.com/omriShneor/project_casa/internal/config"
	"github.com/omriShneor/project_casa/internal/database"
	"github.com/stretchr/testify/assert"
)

func TestMenuText_OfficeHours(t *testing.T) {
	p := config.DefaultProfile()
	loc := p.Location()

	open := MenuText(p, time.Date(2026, 3, 2, 11, 0, 0, 0, loc)) // Monday
	assert.Contains(t, open, "✅ Estamos en horario de atención")
	for _, opt := range []string{"1️⃣ Buscar propiedades", "2️⃣ Ver detalles", "3️⃣ Agendar visita", "4️⃣ Contacto"} {
		assert.Contains(t, open, opt)
	}

	closed := MenuText(p, time.Date(2026, 3, 1, 11, 0, 0, 0, loc)) // Sunday
	assert.Contains(t, closed, "⏰ Fuera de horario (Lunes a Sábado 9:00-20:00)")
}

func TestContactText(t *testing.T) {
	p := config.DefaultProfile()
	p.Contact = config.Contact{Address: "Av. Brasil 2500", Email: "info@casa.uy"}

	got := ContactText(p)
	assert.Contains(t, got, "📍 Av. Brasil 2500")
	assert.Contains(t, got, "📧 info@casa.uy")
	assert.NotContains(t, got, "📱")
}

func TestResultsText(t *testing.T) {
	got := ResultsText([]database.Listing{
		{Reference: "A-100", City: "Montevideo", Zone: "Pocitos", Bedrooms: 2, ForSale: true, SalePrice: 150000},
		{Reference: "A-101", Bedrooms: 1},
	})
	assert.True(t, strings.HasPrefix(got, "✅ 2 propiedades:"))
	assert.Contains(t, got, "1) *A-100*\nMontevideo, Pocitos\n💰 $ 150.000 | 🛏️ 2 dorm")
	assert.Contains(t, got, "2) *A-101*\n💰 Consultar | 🛏️ 1 dorm")
}

func TestDetailText(t *testing.T) {
	l := database.Listing{
		Reference: "A-100", City: "Montevideo", ForRent: true, RentPrice: 30000,
		Bedrooms: 2, Bathrooms: 1, Area: 65.5, LandArea: 0,
		Description: strings.Repeat("a", 200),
		Pool:        true, Grill: true, Heating: true, Furnished: true, Elevator: true, Security: true,
		CommonFees: 14500, CommonFeesCurrency: "$",
	}

	got := DetailText(l)
	assert.Contains(t, got, "🏠 *A-100*")
	assert.Contains(t, got, "📋 Alquiler")
	assert.Contains(t, got, "📏 65.5m²")
	assert.NotContains(t, got, "Terreno")
	assert.Contains(t, got, "📝 "+strings.Repeat("a", 150)+"...")
	assert.Contains(t, got, "✨ Piscina, Parrillero, Calefacción, Amueblado, Ascensor\n")
	assert.Contains(t, got, "💵 GC: $ 14.500")
}

func TestAskDateTimeText(t *testing.T) {
	got := AskDateTimeText("Jane", time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC))
	assert.Contains(t, got, "Gracias Jane!")
	assert.Contains(t, got, "Ej: 03/03/2026 15:00")
}

func TestInvalidDateTimeText(t *testing.T) {
	now := time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)
	assert.Contains(t, InvalidDateTimeText(ErrVisitTimeFormat, now), "No entendí la fecha.")
	assert.Contains(t, InvalidDateTimeText(ErrVisitTimeInvalid, now), "Esa fecha no existe.")
	assert.Contains(t, InvalidDateTimeText(ErrVisitTimePast, now), "Esa fecha ya pasó.")
}
