package database

import (
	"database/sql"
	"fmt"
	"time"
)

// BookingStatus represents the lifecycle of a viewing request
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is a viewing appointment requested by a client
type Booking struct {
	ID               int64         `json:"id"`
	ListingID        int64         `json:"listing_id"`
	ListingReference string        `json:"listing_reference"` // Joined from listings table
	ClientName       string        `json:"client_name"`
	ClientContact    string        `json:"client_contact"`
	RequestedText    string        `json:"requested_text"`
	ScheduledAt      *time.Time    `json:"scheduled_at,omitempty"`
	Status           BookingStatus `json:"status"`
	Notes            string        `json:"notes,omitempty"`
	CalendarEventID  string        `json:"calendar_event_id,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}

// RecordBooking persists a pending booking for the listing with the given
// reference. Returns ErrListingNotFound if the reference does not resolve.
func (d *DB) RecordBooking(reference, clientName, clientContact, requestedText string, scheduledAt *time.Time, notes string) (int64, error) {
	var listingID int64
	err := d.QueryRow(`SELECT id FROM listings WHERE reference = ?`, reference).Scan(&listingID)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: %s", ErrListingNotFound, reference)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve listing: %w", err)
	}

	result, err := d.Exec(`
		INSERT INTO bookings (listing_id, client_name, client_contact, requested_text, scheduled_at, status, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, listingID, clientName, clientContact, requestedText, scheduledAt, BookingStatusPending, notes)
	if err != nil {
		return 0, fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get booking id: %w", err)
	}
	return id, nil
}

const bookingColumns = `b.id, b.listing_id, l.reference, b.client_name, b.client_contact, b.requested_text,
	b.scheduled_at, b.status, COALESCE(b.notes, ''), COALESCE(b.calendar_event_id, ''), b.created_at`

func scanBooking(row rowScanner) (*Booking, error) {
	var b Booking
	var scheduledAt sql.NullTime
	err := row.Scan(
		&b.ID, &b.ListingID, &b.ListingReference, &b.ClientName, &b.ClientContact, &b.RequestedText,
		&scheduledAt, &b.Status, &b.Notes, &b.CalendarEventID, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if scheduledAt.Valid {
		b.ScheduledAt = &scheduledAt.Time
	}
	return &b, nil
}

// GetBooking retrieves a booking by ID, nil if absent
func (d *DB) GetBooking(id int64) (*Booking, error) {
	row := d.QueryRow(`
		SELECT `+bookingColumns+`
		FROM bookings b JOIN listings l ON l.id = b.listing_id
		WHERE b.id = ?
	`, id)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

// ListBookings returns the most recent bookings first
func (d *DB) ListBookings(limit int) ([]Booking, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := d.Query(`
		SELECT `+bookingColumns+`
		FROM bookings b JOIN listings l ON l.id = b.listing_id
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := []Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// SetBookingCalendarEvent stores the calendar event created for a booking
func (d *DB) SetBookingCalendarEvent(id int64, eventID string) error {
	result, err := d.Exec(`UPDATE bookings SET calendar_event_id = ? WHERE id = ?`, eventID, id)
	if err != nil {
		return fmt.Errorf("failed to set calendar event: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("booking %d not found", id)
	}
	return nil
}

// CancelBooking marks a booking cancelled and returns it as it was before the
// change. Returns nil, nil when the booking does not exist.
func (d *DB) CancelBooking(id int64) (*Booking, error) {
	b, err := d.GetBooking(id)
	if err != nil || b == nil {
		return b, err
	}
	if _, err := d.Exec(`UPDATE bookings SET status = ? WHERE id = ?`, BookingStatusCancelled, id); err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}
	return b, nil
}
