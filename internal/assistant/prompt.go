package assistant

import (
	"fmt"
	"strings"

	"github.com/omriShneor/project_casa/internal/config"
)

const promptRules = `REGLAS OBLIGATORIAS:
1. Respondé SOLO en español rioplatense (nunca portugués, inglés u otro idioma).
2. Si hay INFORMACIÓN DEL MANUAL, usala PRIMERO y de forma LITERAL.
3. No inventes datos que estén en el manual, citalo exactamente.
4. Si el manual no tiene la información, decí "según lo habitual en Uruguay" y usá conocimiento general.
5. Respuestas CORTAS: máximo 4 líneas, es WhatsApp.
6. Usá emojis con moderación 🏠
7. Recordá toda la conversación previa.
8. Para agendar una visita: primero el nombre, después fecha y hora en formato DD/MM/AAAA HH:MM.`

const manualEmphasis = "⚠️ HAY INFORMACIÓN DEL MANUAL: USARLA ES OBLIGATORIO ⚠️"

// SystemPrompt renders the instructions and the assembled context for one question.
func SystemPrompt(profile *config.Profile, b Bundle) string {
	var sb strings.Builder

	sb.WriteString("Sos un asistente de inmobiliaria profesional.\n\n")
	sb.WriteString(profile.BusinessInfo())
	sb.WriteString("\n")
	sb.WriteString(promptRules)
	sb.WriteString("\n")

	if b.Manual != "" {
		sb.WriteString("\n")
		sb.WriteString(manualEmphasis)
		sb.WriteString("\n")
	}

	if b.History != "" {
		sb.WriteString("\nCONVERSACIÓN PREVIA (recordar contexto):\n")
		sb.WriteString(b.History)
	}

	if b.Manual != "" {
		sb.WriteString("\n📚 INFORMACIÓN DEL MANUAL (USAR ESTA INFO OBLIGATORIAMENTE):\n")
		sb.WriteString(b.Manual)
		sb.WriteString("\n")
	}

	if len(b.Listings) > 0 {
		sb.WriteString("\n🏠 PROPIEDADES DISPONIBLES:\n")
		for i, l := range b.Listings {
			sb.WriteString(fmt.Sprintf("%d. REF: %s - %s - %d dorm - %s\n",
				i+1, l.Reference, l.City, l.Bedrooms, l.PriceText()))
		}
	}

	return sb.String()
}
