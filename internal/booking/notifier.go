// Package booking fans a persisted visit out to the agency calendar and inbox.
package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/omriShneor/project_casa/internal/database"
	"github.com/omriShneor/project_casa/internal/gcal"
	"github.com/omriShneor/project_casa/internal/notify"
	"go.uber.org/zap"
)

const (
	visitDuration   = time.Hour
	defaultTimeout  = 30 * time.Second
	defaultTimezone = "America/Montevideo"
)

// Calendar creates events on the agency calendar.
type Calendar interface {
	CreateEvent(ctx context.Context, calendarID string, input gcal.EventInput) (string, error)
	IsAuthenticated() bool
}

// Store records the calendar event id on the booking.
type Store interface {
	SetBookingCalendarEvent(id int64, eventID string) error
}

type Config struct {
	Calendar   Calendar
	CalendarID string
	Store      Store
	Email      notify.Notifier
	// Recipient of the email notification.
	AgencyEmail string
	Location    *time.Location
	Timeout     time.Duration
	Logger      *zap.Logger
}

// Notifier is best effort: every failure is logged and swallowed.
type Notifier struct {
	calendar    Calendar
	calendarID  string
	store       Store
	email       notify.Notifier
	agencyEmail string
	location    *time.Location
	timeout     time.Duration
	logger      *zap.Logger
}

func NewNotifier(cfg Config) *Notifier {
	n := &Notifier{
		calendar:    cfg.Calendar,
		calendarID:  cfg.CalendarID,
		store:       cfg.Store,
		email:       cfg.Email,
		agencyEmail: cfg.AgencyEmail,
		location:    cfg.Location,
		timeout:     cfg.Timeout,
		logger:      cfg.Logger,
	}
	if n.location == nil {
		loc, err := time.LoadLocation(defaultTimezone)
		if err != nil {
			loc = time.UTC
		}
		n.location = loc
	}
	if n.timeout <= 0 {
		n.timeout = defaultTimeout
	}
	if n.logger == nil {
		n.logger = zap.NewNop()
	}
	return n
}

// CalendarEnabled reports whether bookings will reach the calendar.
func (n *Notifier) CalendarEnabled() bool {
	return n.calendar != nil && n.calendar.IsAuthenticated()
}

// Notify syncs the booking to the calendar and emails the agency.
func (n *Notifier) Notify(ctx context.Context, b database.Booking, l database.Listing) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	log := n.logger.With(zap.Int64("booking_id", b.ID), zap.String("reference", l.Reference))

	if n.CalendarEnabled() {
		if err := n.syncCalendar(ctx, b, l); err != nil {
			log.Error("calendar sync failed", zap.Error(err))
		} else {
			log.Info("booking added to calendar")
		}
	} else {
		log.Debug("calendar disabled, skipping sync")
	}

	if n.email != nil && n.email.IsConfigured() && n.agencyEmail != "" {
		if err := n.email.Send(ctx, &b, &l, n.agencyEmail); err != nil {
			log.Error("booking email failed", zap.String("notifier", n.email.Name()), zap.Error(err))
		} else {
			log.Info("booking email sent", zap.String("to", n.agencyEmail))
		}
	}
}

func (n *Notifier) syncCalendar(ctx context.Context, b database.Booking, l database.Listing) error {
	if b.ScheduledAt == nil {
		return fmt.Errorf("booking has no scheduled time")
	}
	eventID, err := n.calendar.CreateEvent(ctx, n.calendarID, EventFor(b, l, n.location))
	if err != nil {
		return err
	}
	if n.store != nil {
		if err := n.store.SetBookingCalendarEvent(b.ID, eventID); err != nil {
			return fmt.Errorf("event %s created but not stored: %w", eventID, err)
		}
	}
	return nil
}

// EventFor builds the one-hour calendar event for a booking.
func EventFor(b database.Booking, l database.Listing, loc *time.Location) gcal.EventInput {
	start := b.ScheduledAt.In(loc)
	location := l.Location()

	var desc strings.Builder
	fmt.Fprintf(&desc, "Cliente: %s\n", b.ClientName)
	fmt.Fprintf(&desc, "Teléfono: %s\n", b.ClientContact)
	fmt.Fprintf(&desc, "Propiedad: %s\n", l.Reference)
	fmt.Fprintf(&desc, "Ubicación: %s\n", location)
	fmt.Fprintf(&desc, "Precio: %s", l.PriceText())

	return gcal.EventInput{
		Summary:     fmt.Sprintf("Visita: %s - %s", l.Reference, b.ClientName),
		Description: desc.String(),
		Location:    location,
		StartTime:   start,
		EndTime:     start.Add(visitDuration),
		TimeZone:    loc.String(),
	}
}
