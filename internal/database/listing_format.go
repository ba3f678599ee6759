package database

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.Spanish)

// FormatAmount renders a price with Spanish digit grouping ("250.000").
func FormatAmount(v float64) string {
	return amountPrinter.Sprintf("%d", int64(math.Round(v)))
}

// Location joins city, zone and region with ", " skipping the empty ones.
func (l Listing) Location() string {
	var parts []string
	for _, p := range []string{l.City, l.Zone, l.Region} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// PriceText is the sale price when for sale, else the monthly rent, else "Consultar".
func (l Listing) PriceText() string {
	switch {
	case l.ForSale && l.SalePrice > 0:
		return currencyOrDefault(l.SaleCurrency) + " " + FormatAmount(l.SalePrice)
	case l.ForRent && l.RentPrice > 0:
		return currencyOrDefault(l.RentCurrency) + " " + FormatAmount(l.RentPrice) + "/mes"
	default:
		return "Consultar"
	}
}

// Operation is "Venta", "Alquiler", "Venta/Alquiler" or empty.
func (l Listing) Operation() string {
	switch {
	case l.ForSale && l.ForRent:
		return "Venta/Alquiler"
	case l.ForSale:
		return "Venta"
	case l.ForRent:
		return "Alquiler"
	}
	return ""
}

// Amenities lists the features the listing has, in display order.
func (l Listing) Amenities() []string {
	var out []string
	flags := []struct {
		on   bool
		name string
	}{
		{l.Pool, "Piscina"},
		{l.Grill, "Parrillero"},
		{l.Heating, "Calefacción"},
		{l.Furnished, "Amueblado"},
		{l.Elevator, "Ascensor"},
		{l.Security, "Seguridad"},
	}
	for _, f := range flags {
		if f.on {
			out = append(out, f.name)
		}
	}
	if l.Garages > 0 {
		out = append(out, amountPrinter.Sprintf("%d garage(s)", l.Garages))
	}
	return out
}

func currencyOrDefault(c string) string {
	if c == "" {
		return "$"
	}
	return c
}
