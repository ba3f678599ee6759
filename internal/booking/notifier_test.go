package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/omriShneor/project_casa/internal/database"
	"github.com/omriShneor/project_casa/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func montevideo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Montevideo")
	require.NoError(t, err)
	return loc
}

func fixture(t *testing.T) (*database.DB, database.Booking, database.Listing) {
	t.Helper()
	db := database.NewTestDB(t)
	l := database.CreateTestListing(t, db, database.Listing{
		Reference: "A-100", City: "Montevideo", Zone: "Pocitos",
		ForRent: true, RentCurrency: "$", RentPrice: 35000,
	})
	at := time.Date(2026, 3, 10, 16, 30, 0, 0, montevideo(t))
	id, err := db.RecordBooking("A-100", "Jane Doe", "59899123456", "10/03/2026 16:30", &at, "")
	require.NoError(t, err)
	b, err := db.GetBooking(id)
	require.NoError(t, err)
	b.ScheduledAt = &at
	return db, *b, *l
}

func TestEventFor(t *testing.T) {
	loc := montevideo(t)
	at := time.Date(2026, 3, 10, 16, 30, 0, 0, loc)
	b := database.Booking{ClientName: "Jane Doe", ClientContact: "59899123456", ScheduledAt: &at}
	l := database.Listing{Reference: "A-100", City: "Montevideo", Zone: "Pocitos", ForSale: true, SaleCurrency: "U$S", SalePrice: 180000}

	ev := EventFor(b, l, loc)
	assert.Equal(t, "Visita: A-100 - Jane Doe", ev.Summary)
	assert.Equal(t, "Montevideo, Pocitos", ev.Location)
	assert.Equal(t, "Cliente: Jane Doe\nTeléfono: 59899123456\nPropiedad: A-100\nUbicación: Montevideo, Pocitos\nPrecio: U$S 180.000", ev.Description)
	assert.Equal(t, time.Hour, ev.EndTime.Sub(ev.StartTime))
	assert.Equal(t, "America/Montevideo", ev.TimeZone)
}

func TestNotify_StoresCalendarEvent(t *testing.T) {
	db, b, l := fixture(t)
	cal := &mocks.MockCalendar{Authenticated: true}
	cal.On("CreateEvent", mock.Anything, "primary", mock.AnythingOfType("gcal.EventInput")).Return("evt-1", nil)
	email := &mocks.MockNotifier{}
	email.On("Send", mock.Anything, mock.Anything, mock.Anything, "agencia@casa.uy").Return(nil)

	n := NewNotifier(Config{
		Calendar: cal, CalendarID: "primary", Store: db,
		Email: email, AgencyEmail: "agencia@casa.uy", Location: montevideo(t),
	})
	assert.True(t, n.CalendarEnabled())
	n.Notify(context.Background(), b, l)

	cal.AssertExpectations(t)
	email.AssertExpectations(t)
	stored, err := db.GetBooking(b.ID)
	require.NoError(t, err)
	assert.Equal(t, "evt-1", stored.CalendarEventID)
}

func TestNotify_FailuresAreSwallowed(t *testing.T) {
	db, b, l := fixture(t)
	cal := &mocks.MockCalendar{Authenticated: true}
	cal.On("CreateEvent", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))
	email := &mocks.MockNotifier{}
	email.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	n := NewNotifier(Config{Calendar: cal, Store: db, Email: email, AgencyEmail: "a@b.c"})
	assert.NotPanics(t, func() { n.Notify(context.Background(), b, l) })

	stored, err := db.GetBooking(b.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.CalendarEventID)
}

func TestNotify_CalendarDisabled(t *testing.T) {
	_, b, l := fixture(t)
	cal := &mocks.MockCalendar{Authenticated: false}

	n := NewNotifier(Config{Calendar: cal})
	assert.False(t, n.CalendarEnabled())
	n.Notify(context.Background(), b, l)

	cal.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything, mock.Anything)
	assert.False(t, NewNotifier(Config{}).CalendarEnabled())
}

func TestNotify_StoreFailureIsSwallowed(t *testing.T) {
	at := time.Date(2026, 3, 10, 16, 30, 0, 0, montevideo(t))
	b := database.Booking{ID: 7, ListingReference: "A-100", ClientName: "Jane Doe", ScheduledAt: &at}
	l := database.Listing{Reference: "A-100", City: "Montevideo"}

	cal := &mocks.MockCalendar{Authenticated: true}
	cal.On("CreateEvent", mock.Anything, mock.Anything, mock.Anything).Return("evt-9", nil)
	store := &mocks.MockListingStore{}
	store.On("SetBookingCalendarEvent", int64(7), "evt-9").Return(errors.New("database is locked"))

	n := NewNotifier(Config{Calendar: cal, Store: store})
	assert.NotPanics(t, func() { n.Notify(context.Background(), b, l) })
	store.AssertExpectations(t)
}
