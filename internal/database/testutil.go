package database

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates an in-memory SQLite database for testing.
// The database is automatically closed when the test completes.
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

var testListingCounter int64 = 0

// CreateTestListing inserts an available listing. Fields set on the template
// are kept; an empty reference gets a unique generated one.
func CreateTestListing(t *testing.T, db *DB, template Listing) *Listing {
	t.Helper()
	testListingCounter++

	if template.Reference == "" {
		template.Reference = fmt.Sprintf("TEST-%d", testListingCounter)
	}
	if template.Status == "" {
		template.Status = ListingStatusAvailable
	}

	require.NoError(t, db.UpsertListing(&template), "failed to create test listing")

	listing, err := db.GetListingByReference(template.Reference)
	require.NoError(t, err, "failed to reload test listing")
	require.NotNil(t, listing)
	return listing
}
