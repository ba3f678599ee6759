package conversation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/omriShneor/project_casa/internal/config"
	"github.com/omriShneor/project_casa/internal/database"
)

const (
	maxDetailDescription = 150
	maxDetailAmenities   = 5
)

// Fixed replies.
const (
	SearchPromptText   = "🔍 ¿Qué buscás?\n\nEj: \"Casa Montevideo\""
	NoResultsText      = "😔 No encontré propiedades. Probá con otros términos."
	NotFoundText       = "❌ No encontré esa propiedad."
	AskReferenceText   = "Indicá la referencia o el número de la lista (ej: A-100)"
	NeedSelectionText  = "Primero seleccioná una propiedad (opción 1)"
	AskNameText        = "📅 ¿Tu nombre?"
	ProgressText       = "⏳ Consultando..."
	BookingFailedText  = "❌ No pudimos agendar la visita. Llamanos o escribí \"menu\"."
	ErrorText          = "❌ Hubo un error. Escribí \"menu\" para volver al inicio."
	scheduleInviteText = "📞 Escribí \"3\" para agendar una visita"
)

// MenuText is the greeting with the four options and the office-hours status.
func MenuText(profile *config.Profile, now time.Time) string {
	var sb strings.Builder
	sb.WriteString("¡Hola! 👋\n\n")
	if profile.InOfficeHours(now) {
		sb.WriteString("✅ Estamos en horario de atención\n\n")
	} else {
		sb.WriteString("⏰ Fuera de horario (" + profile.HoursLine() + ")\n\n")
	}
	sb.WriteString("🏠 *MENÚ:*\n\n")
	sb.WriteString("1️⃣ Buscar propiedades\n")
	sb.WriteString("2️⃣ Ver detalles\n")
	sb.WriteString("3️⃣ Agendar visita\n")
	sb.WriteString("4️⃣ Contacto\n\n")
	sb.WriteString("💬 O preguntá directamente")
	return sb.String()
}

func ContactText(profile *config.Profile) string {
	var sb strings.Builder
	sb.WriteString("📞 *CONTACTO*\n\n")
	sb.WriteString("⏰ " + profile.HoursLine())
	if c := profile.Contact; c.Address != "" {
		sb.WriteString("\n📍 " + c.Address)
	}
	if c := profile.Contact; c.Email != "" {
		sb.WriteString("\n📧 " + c.Email)
	}
	if c := profile.Contact; c.Phone != "" {
		sb.WriteString("\n📱 " + c.Phone)
	}
	return sb.String()
}

// ResultsText enumerates search results so the sender can pick one by number.
func ResultsText(listings []database.Listing) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ %d propiedades:\n\n", len(listings))
	for i, l := range listings {
		fmt.Fprintf(&sb, "%d) *%s*\n", i+1, l.Reference)
		if loc := l.Location(); loc != "" {
			sb.WriteString(loc + "\n")
		}
		fmt.Fprintf(&sb, "💰 %s | 🛏️ %d dorm\n\n", l.PriceText(), l.Bedrooms)
	}
	sb.WriteString("💬 Respondé con el número o la referencia")
	return sb.String()
}

// DetailText is the full card of a listing.
func DetailText(l database.Listing) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏠 *%s*\n\n", l.Reference)
	if op := l.Operation(); op != "" {
		sb.WriteString("📋 " + op + "\n")
	}
	sb.WriteString("💰 " + l.PriceText() + "\n")

	loc := l.Location()
	if loc == "" {
		loc = "Sin ubicación"
	}
	sb.WriteString("📍 " + loc + "\n")
	fmt.Fprintf(&sb, "🛏️ %d dorm | 🚿 %d baños | 📏 %sm²\n", l.Bedrooms, l.Bathrooms, trimFloat(l.Area))
	if l.LandArea > 0 {
		fmt.Fprintf(&sb, "🌳 Terreno: %sm²\n", trimFloat(l.LandArea))
	}

	if desc := strings.TrimSpace(l.Description); desc != "" {
		sb.WriteString("\n📝 " + truncate(desc, maxDetailDescription) + "\n")
	}
	if amenities := l.Amenities(); len(amenities) > 0 {
		if len(amenities) > maxDetailAmenities {
			amenities = amenities[:maxDetailAmenities]
		}
		sb.WriteString("\n✨ " + strings.Join(amenities, ", ") + "\n")
	}
	if l.CommonFees > 0 {
		cur := l.CommonFeesCurrency
		if cur == "" {
			cur = "$"
		}
		sb.WriteString("💵 GC: " + cur + " " + database.FormatAmount(l.CommonFees) + "\n")
	}

	sb.WriteString("\n" + scheduleInviteText)
	return sb.String()
}

// AskDateTimeText thanks the client and shows the expected format with an example for tomorrow.
func AskDateTimeText(name string, now time.Time) string {
	example := time.Date(now.Year(), now.Month(), now.Day()+1, 15, 0, 0, 0, now.Location())
	return fmt.Sprintf("Gracias %s!\n\nFecha y hora:\nFormato: DD/MM/AAAA HH:MM\nEj: %s", name, example.Format(VisitTimeLayout))
}

func InvalidDateTimeText(err error, now time.Time) string {
	reason := "No entendí la fecha."
	switch {
	case errors.Is(err, ErrVisitTimeInvalid):
		reason = "Esa fecha no existe."
	case errors.Is(err, ErrVisitTimePast):
		reason = "Esa fecha ya pasó."
	}
	example := time.Date(now.Year(), now.Month(), now.Day()+1, 15, 0, 0, 0, now.Location())
	return fmt.Sprintf("⚠️ %s\nFormato: DD/MM/AAAA HH:MM\nEj: %s", reason, example.Format(VisitTimeLayout))
}

func BookingConfirmedText(req BookingRequest) string {
	return fmt.Sprintf("✅ *VISITA AGENDADA*\n\n🏠 %s\n👤 %s\n📅 %s\n\n¡Te contactaremos! 🎉",
		req.Reference, req.ClientName, req.ScheduledAt.Format(VisitTimeLayout))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func trimFloat(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
