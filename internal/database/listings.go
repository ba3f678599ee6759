package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// ListingStatus is the availability of a listing
type ListingStatus string

const (
	ListingStatusAvailable ListingStatus = "available"
	ListingStatusReserved  ListingStatus = "reserved"
	ListingStatusSold      ListingStatus = "sold"
	ListingStatusRented    ListingStatus = "rented"
)

// MaxSearchResults caps free-text search replies.
const MaxSearchResults = 10

// Listing is a single property in the catalog
type Listing struct {
	ID                 int64         `json:"id"`
	Reference          string        `json:"reference"`
	PropertyType       string        `json:"property_type,omitempty"`
	City               string        `json:"city,omitempty"`
	Zone               string        `json:"zone,omitempty"`
	Region             string        `json:"region,omitempty"`
	Address            string        `json:"address,omitempty"`
	Bedrooms           int           `json:"bedrooms"`
	Bathrooms          int           `json:"bathrooms"`
	Area               float64       `json:"area"`
	LandArea           float64       `json:"land_area"`
	Garages            int           `json:"garages"`
	ForSale            bool          `json:"for_sale"`
	SaleCurrency       string        `json:"sale_currency,omitempty"`
	SalePrice          float64       `json:"sale_price"`
	ForRent            bool          `json:"for_rent"`
	RentCurrency       string        `json:"rent_currency,omitempty"`
	RentPrice          float64       `json:"rent_price"`
	CommonFees         float64       `json:"common_fees"`
	CommonFeesCurrency string        `json:"common_fees_currency,omitempty"`
	Pool               bool          `json:"pool"`
	Grill              bool          `json:"grill"`
	Heating            bool          `json:"heating"`
	Furnished          bool          `json:"furnished"`
	Elevator           bool          `json:"elevator"`
	Security           bool          `json:"security"`
	Description        string        `json:"description,omitempty"`
	Notes              string        `json:"notes,omitempty"`
	Agent              string        `json:"agent,omitempty"`
	Status             ListingStatus `json:"status"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

const listingColumns = `id, reference, COALESCE(property_type, ''), COALESCE(city, ''), COALESCE(zone, ''),
	COALESCE(region, ''), COALESCE(address, ''), bedrooms, bathrooms, area, land_area, garages,
	for_sale, COALESCE(sale_currency, ''), sale_price, for_rent, COALESCE(rent_currency, ''), rent_price,
	common_fees, COALESCE(common_fees_currency, ''), pool, grill, heating, furnished, elevator, security,
	COALESCE(description, ''), COALESCE(notes, ''), COALESCE(agent, ''), status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (*Listing, error) {
	var l Listing
	err := row.Scan(
		&l.ID, &l.Reference, &l.PropertyType, &l.City, &l.Zone,
		&l.Region, &l.Address, &l.Bedrooms, &l.Bathrooms, &l.Area, &l.LandArea, &l.Garages,
		&l.ForSale, &l.SaleCurrency, &l.SalePrice, &l.ForRent, &l.RentCurrency, &l.RentPrice,
		&l.CommonFees, &l.CommonFeesCurrency, &l.Pool, &l.Grill, &l.Heating, &l.Furnished, &l.Elevator, &l.Security,
		&l.Description, &l.Notes, &l.Agent, &l.Status, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// escapeLike escapes LIKE wildcards so user text matches literally
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// SearchListings matches query as a substring of description, city, zone,
// region and notes of available listings, ignoring case (Unicode aware, see
// unicode_lower). Results keep storage order and are capped at MaxSearchResults.
func (d *DB) SearchListings(query string) ([]Listing, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Listing{}, nil
	}

	term := "%" + escapeLike(strings.ToLower(query)) + "%"
	rows, err := d.Query(`
		SELECT `+listingColumns+`
		FROM listings
		WHERE status = ?
		AND (
			unicode_lower(COALESCE(description, '')) LIKE ? ESCAPE '\' OR
			unicode_lower(COALESCE(city, '')) LIKE ? ESCAPE '\' OR
			unicode_lower(COALESCE(zone, '')) LIKE ? ESCAPE '\' OR
			unicode_lower(COALESCE(region, '')) LIKE ? ESCAPE '\' OR
			unicode_lower(COALESCE(notes, '')) LIKE ? ESCAPE '\'
		)
		ORDER BY id
		LIMIT ?
	`, ListingStatusAvailable, term, term, term, term, term, MaxSearchResults)
	if err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}
	defer rows.Close()

	listings := []Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, *l)
	}

	return listings, rows.Err()
}

// GetListingByReference retrieves a listing by its reference, nil if absent
func (d *DB) GetListingByReference(reference string) (*Listing, error) {
	row := d.QueryRow(`SELECT `+listingColumns+` FROM listings WHERE reference = ?`, strings.TrimSpace(reference))
	l, err := scanListing(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return l, nil
}

// UpsertListing inserts a listing or replaces the one with the same reference
func (d *DB) UpsertListing(l *Listing) error {
	if l.Reference == "" {
		return fmt.Errorf("listing reference is required")
	}
	if l.Status == "" {
		l.Status = ListingStatusAvailable
	}

	_, err := d.Exec(`
		INSERT INTO listings (
			reference, property_type, city, zone, region, address, bedrooms, bathrooms, area, land_area, garages,
			for_sale, sale_currency, sale_price, for_rent, rent_currency, rent_price, common_fees, common_fees_currency,
			pool, grill, heating, furnished, elevator, security, description, notes, agent, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(reference) DO UPDATE SET
			property_type = excluded.property_type,
			city = excluded.city,
			zone = excluded.zone,
			region = excluded.region,
			address = excluded.address,
			bedrooms = excluded.bedrooms,
			bathrooms = excluded.bathrooms,
			area = excluded.area,
			land_area = excluded.land_area,
			garages = excluded.garages,
			for_sale = excluded.for_sale,
			sale_currency = excluded.sale_currency,
			sale_price = excluded.sale_price,
			for_rent = excluded.for_rent,
			rent_currency = excluded.rent_currency,
			rent_price = excluded.rent_price,
			common_fees = excluded.common_fees,
			common_fees_currency = excluded.common_fees_currency,
			pool = excluded.pool,
			grill = excluded.grill,
			heating = excluded.heating,
			furnished = excluded.furnished,
			elevator = excluded.elevator,
			security = excluded.security,
			description = excluded.description,
			notes = excluded.notes,
			agent = excluded.agent,
			status = excluded.status,
			updated_at = CURRENT_TIMESTAMP
	`,
		l.Reference, l.PropertyType, l.City, l.Zone, l.Region, l.Address, l.Bedrooms, l.Bathrooms, l.Area, l.LandArea, l.Garages,
		l.ForSale, l.SaleCurrency, l.SalePrice, l.ForRent, l.RentCurrency, l.RentPrice, l.CommonFees, l.CommonFeesCurrency,
		l.Pool, l.Grill, l.Heating, l.Furnished, l.Elevator, l.Security, l.Description, l.Notes, l.Agent, l.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert listing %s: %w", l.Reference, err)
	}
	return nil
}

// CountAvailableListings returns how many listings can be offered to clients
func (d *DB) CountAvailableListings() (int, error) {
	var count int
	err := d.QueryRow(`SELECT COUNT(*) FROM listings WHERE status = ?`, ListingStatusAvailable).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return count, nil
}
