package manual

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// keywords are the domain words that link a question to a manual section,
// folded. Each entry holds the inflections of a single word; a question and
// a section are related only when both mention the same word.
var keywords = [][]string{
	{"documento", "documentos"},
	{"documentacion"},
	{"procedimiento", "procedimientos"},
	{"proceso", "procesos"},
	{"tramite", "tramites"},
	{"requisito", "requisitos"},
	{"necesito", "necesita", "necesitan"},
	{"comision", "comisiones"},
	{"honorario", "honorarios"},
	{"politica", "politicas"},
	{"norma", "normas"},
	{"contrato", "contratos"},
	{"reserva", "reservas"},
	{"reservar"},
	{"alquiler", "alquileres"},
	{"alquilar"},
	{"arrendar"},
	{"venta", "ventas"},
	{"vender"},
	{"compra", "compras"},
	{"comprar"},
	{"cancelacion", "cancelaciones"},
	{"cancelar"},
	{"visita", "visitas"},
	{"pago", "pagos"},
	{"garantia", "garantias"},
	{"fianza", "fianzas"},
	{"sena", "senas"},
	{"deposito", "depositos"},
}

// keywordsIn returns the indexes of the keywords mentioned in folded.
func keywordsIn(folded string) []int {
	var found []int
	for i, forms := range keywords {
		if containsAny(folded, forms) {
			found = append(found, i)
		}
	}
	return found
}

func sharesKeyword(folded string, questionKeywords []int) bool {
	for _, k := range questionKeywords {
		if containsAny(folded, keywords[k]) {
			return true
		}
	}
	return false
}

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold lowercases and strips accents so "Comisión" matches "comision".
// "ñ" is folded to "n" as well, which is why "seña" is listed as "sena".
func fold(s string) string {
	out, _, err := transform.String(accentFolder, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
