package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/omriShneor/project_casa/internal/database"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Header aliases, folded (lowercase, no accents, spaces and dashes as "_").
var columns = map[string][]string{
	"reference":   {"referencia", "reference", "ref"},
	"type":        {"tipo", "type", "property_type"},
	"operation":   {"operacion", "operation"},
	"price":       {"precio", "price"},
	"currency":    {"moneda", "currency"},
	"sale_price":  {"precio_venta", "sale_price"},
	"rent_price":  {"precio_alquiler", "rent_price"},
	"bedrooms":    {"dormitorios", "habitaciones", "bedrooms"},
	"bathrooms":   {"banos", "banios", "bathrooms"},
	"area":        {"metros", "superficie", "area", "m2"},
	"land_area":   {"terreno", "superficie_terreno", "land_area"},
	"garages":     {"garajes", "cocheras", "garages"},
	"address":     {"direccion", "address"},
	"city":        {"ciudad", "localidad", "city"},
	"zone":        {"zona", "barrio", "zone"},
	"region":      {"departamento", "provincia", "region"},
	"description": {"descripcion", "description"},
	"features":    {"caracteristicas", "features", "amenities"},
	"status":      {"estado", "status"},
	"agent":       {"agente", "agent"},
	"fees":        {"gastos_comunes", "common_fees"},
	"notes":       {"notas", "notes", "observaciones"},
}

var statusAliases = map[string]database.ListingStatus{
	"disponible": database.ListingStatusAvailable,
	"available":  database.ListingStatusAvailable,
	"reservado":  database.ListingStatusReserved,
	"reservada":  database.ListingStatusReserved,
	"reserved":   database.ListingStatusReserved,
	"vendido":    database.ListingStatusSold,
	"vendida":    database.ListingStatusSold,
	"sold":       database.ListingStatusSold,
	"alquilado":  database.ListingStatusRented,
	"alquilada":  database.ListingStatusRented,
	"rented":     database.ListingStatusRented,
}

func foldKey(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(out, "\ufeff")))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(out)
}

type row map[string]string

func normalizeRow(raw map[string]string) row {
	r := make(row, len(raw))
	for k, v := range raw {
		r[foldKey(k)] = strings.TrimSpace(v)
	}
	return r
}

func (r row) get(field string) string {
	for _, alias := range columns[field] {
		if v := r[alias]; v != "" {
			return v
		}
	}
	return ""
}

// ListingFromRow maps a catalog row to a listing. A missing reference gets a
// generated REF-YYYYMMDD-xxxx one.
func ListingFromRow(raw map[string]string, now time.Time) (*database.Listing, error) {
	r := normalizeRow(raw)

	l := &database.Listing{
		Reference:    r.get("reference"),
		PropertyType: strings.ToLower(r.get("type")),
		Address:      r.get("address"),
		City:         r.get("city"),
		Zone:         r.get("zone"),
		Region:       r.get("region"),
		Description:  r.get("description"),
		Agent:        r.get("agent"),
		Notes:        r.get("notes"),
		Status:       database.ListingStatusAvailable,
	}
	if l.Reference == "" {
		l.Reference = GenerateReference(now)
	}

	var err error
	if l.Bedrooms, err = parseInt(r.get("bedrooms")); err != nil {
		return nil, fmt.Errorf("bedrooms: %w", err)
	}
	if l.Bathrooms, err = parseInt(r.get("bathrooms")); err != nil {
		return nil, fmt.Errorf("bathrooms: %w", err)
	}
	if l.Garages, err = parseInt(r.get("garages")); err != nil {
		return nil, fmt.Errorf("garages: %w", err)
	}
	if l.Area, err = ParseAmount(r.get("area")); err != nil {
		return nil, fmt.Errorf("area: %w", err)
	}
	if l.LandArea, err = ParseAmount(r.get("land_area")); err != nil {
		return nil, fmt.Errorf("land area: %w", err)
	}
	if l.CommonFees, err = ParseAmount(r.get("fees")); err != nil {
		return nil, fmt.Errorf("common fees: %w", err)
	}

	if err := applyPrices(l, r); err != nil {
		return nil, err
	}

	if s := foldKey(r.get("status")); s != "" {
		status, ok := statusAliases[s]
		if !ok {
			return nil, fmt.Errorf("unknown status %q", r.get("status"))
		}
		l.Status = status
	}

	applyFeatures(l, r.get("features"))
	return l, nil
}

func applyPrices(l *database.Listing, r row) error {
	currency := r.get("currency")
	if currency == "" {
		currency = "$"
	}

	sale, err := ParseAmount(r.get("sale_price"))
	if err != nil {
		return fmt.Errorf("sale price: %w", err)
	}
	rent, err := ParseAmount(r.get("rent_price"))
	if err != nil {
		return fmt.Errorf("rent price: %w", err)
	}
	price, err := ParseAmount(r.get("price"))
	if err != nil {
		return fmt.Errorf("price: %w", err)
	}

	op := foldKey(r.get("operation"))
	if sale == 0 && rent == 0 && price > 0 {
		switch {
		case strings.Contains(op, "alquiler"), strings.Contains(op, "rent"):
			rent = price
		default:
			sale = price
		}
	}

	if sale > 0 || strings.Contains(op, "venta") || strings.Contains(op, "sale") {
		l.ForSale = true
		l.SalePrice = sale
		l.SaleCurrency = currency
	}
	if rent > 0 || strings.Contains(op, "alquiler") || strings.Contains(op, "rent") {
		l.ForRent = true
		l.RentPrice = rent
		l.RentCurrency = currency
	}
	if l.CommonFees > 0 {
		l.CommonFeesCurrency = currency
	}
	return nil
}

// applyFeatures reads ";"- or ","-separated amenities.
func applyFeatures(l *database.Listing, features string) {
	for _, f := range strings.FieldsFunc(features, func(r rune) bool { return r == ';' || r == ',' }) {
		switch f := foldKey(f); {
		case strings.Contains(f, "piscina"), strings.Contains(f, "pool"):
			l.Pool = true
		case strings.Contains(f, "parrill"), strings.Contains(f, "barbacoa"), strings.Contains(f, "grill"):
			l.Grill = true
		case strings.Contains(f, "calefaccion"), strings.Contains(f, "heating"):
			l.Heating = true
		case strings.Contains(f, "amueblad"), strings.Contains(f, "furnished"):
			l.Furnished = true
		case strings.Contains(f, "ascensor"), strings.Contains(f, "elevator"):
			l.Elevator = true
		case strings.Contains(f, "seguridad"), strings.Contains(f, "vigilancia"), strings.Contains(f, "security"):
			l.Security = true
		case strings.Contains(f, "garaje"), strings.Contains(f, "cochera"), strings.Contains(f, "parking"):
			if l.Garages == 0 {
				l.Garages = 1
			}
		}
	}
}

// GenerateReference builds a REF-YYYYMMDD-xxxx reference with 4 random digits.
func GenerateReference(now time.Time) string {
	id := uuid.New()
	n := (int(id[0])<<8 | int(id[1])) % 10000
	return fmt.Sprintf("REF-%s-%04d", now.Format("20060102"), n)
}

var (
	thousands      = regexp.MustCompile(`^\d{1,3}([.,]\d{3})+$`)
	currencyPrefix = regexp.MustCompile(`(?i)^(u\$s|us\$|usd|eur|\$|€)\s*`)
)

// ParseAmount accepts plain numbers, currency-prefixed values and values with
// "." or "," thousands separators. Empty input is zero.
func ParseAmount(s string) (float64, error) {
	s = currencyPrefix.ReplaceAllString(strings.TrimSpace(s), "")
	s = strings.TrimSuffix(strings.TrimSpace(s), "m2")
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return 0, nil
	}

	switch {
	case thousands.MatchString(s):
		s = strings.NewReplacer(".", "", ",", "").Replace(s)
	case strings.Contains(s, ".") && strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	default:
		s = strings.ReplaceAll(s, ",", ".")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative number %q", s)
	}
	return v, nil
}

func parseInt(s string) (int, error) {
	v, err := ParseAmount(s)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}
