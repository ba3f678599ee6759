package migrations

import (
	"database/sql"
)

func init() {
	Register(Migration{
		Version: 1,
		Name:    "initial_schema",
		Up:      initialSchema,
	})
}

func initialSchema(db *sql.DB) error {
	statements := []string{
		// Property catalog, written by the importer
		`CREATE TABLE IF NOT EXISTS listings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			reference TEXT UNIQUE NOT NULL,
			property_type TEXT,
			city TEXT,
			zone TEXT,
			region TEXT,
			address TEXT,
			bedrooms INTEGER DEFAULT 0,
			bathrooms INTEGER DEFAULT 0,
			area REAL DEFAULT 0,
			land_area REAL DEFAULT 0,
			garages INTEGER DEFAULT 0,
			for_sale BOOLEAN DEFAULT 0,
			sale_currency TEXT,
			sale_price REAL DEFAULT 0,
			for_rent BOOLEAN DEFAULT 0,
			rent_currency TEXT,
			rent_price REAL DEFAULT 0,
			common_fees REAL DEFAULT 0,
			common_fees_currency TEXT,
			pool BOOLEAN DEFAULT 0,
			grill BOOLEAN DEFAULT 0,
			heating BOOLEAN DEFAULT 0,
			furnished BOOLEAN DEFAULT 0,
			elevator BOOLEAN DEFAULT 0,
			security BOOLEAN DEFAULT 0,
			description TEXT,
			notes TEXT,
			agent TEXT,
			status TEXT NOT NULL DEFAULT 'available' CHECK(status IN ('available', 'reserved', 'sold', 'rented')),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_city ON listings(city)`,

		// Viewing appointments requested through the assistant
		`CREATE TABLE IF NOT EXISTS bookings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			listing_id INTEGER NOT NULL,
			client_name TEXT NOT NULL,
			client_contact TEXT NOT NULL,
			requested_text TEXT NOT NULL,
			scheduled_at DATETIME,
			status TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending', 'confirmed', 'cancelled')),
			notes TEXT,
			calendar_event_id TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(listing_id) REFERENCES listings(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_listing ON bookings(listing_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_created ON bookings(created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
