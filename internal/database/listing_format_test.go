package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListingLocation(t *testing.T) {
	assert.Equal(t, "Montevideo, Pocitos, Montevideo", Listing{City: "Montevideo", Zone: "Pocitos", Region: "Montevideo"}.Location())
	assert.Equal(t, "Punta del Este", Listing{City: "Punta del Este", Zone: " "}.Location())
	assert.Empty(t, Listing{}.Location())
}

func TestListingPriceText(t *testing.T) {
	tests := []struct {
		name    string
		listing Listing
		want    string
	}{
		{"sale", Listing{ForSale: true, SaleCurrency: "U$S", SalePrice: 250000}, "U$S 250.000"},
		{"sale wins over rent", Listing{ForSale: true, SalePrice: 180000, ForRent: true, RentPrice: 900}, "$ 180.000"},
		{"rent", Listing{ForRent: true, RentCurrency: "$", RentPrice: 35000}, "$ 35.000/mes"},
		{"sale without price falls to rent", Listing{ForSale: true, ForRent: true, RentPrice: 12000}, "$ 12.000/mes"},
		{"nothing", Listing{}, "Consultar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.listing.PriceText())
		})
	}
}

func TestListingOperationAndAmenities(t *testing.T) {
	l := Listing{ForSale: true, ForRent: true, Pool: true, Elevator: true, Garages: 2}
	assert.Equal(t, "Venta/Alquiler", l.Operation())
	assert.Equal(t, []string{"Piscina", "Ascensor", "2 garage(s)"}, l.Amenities())
	assert.Empty(t, Listing{}.Operation())
	assert.Nil(t, Listing{}.Amenities())
}
