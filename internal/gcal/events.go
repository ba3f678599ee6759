package gcal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

var ErrEventNotFound = errors.New("google calendar event not found")

// ErrNotAuthenticated is returned by event calls before a token is available.
var ErrNotAuthenticated = errors.New("calendar service not initialized")

// EventInput represents the input for creating a calendar event
type EventInput struct {
	Summary     string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	// TimeZone is an IANA name such as "America/Montevideo".
	TimeZone string
}

// CreateEvent creates a new event in Google Calendar and returns the event ID
func (c *Client) CreateEvent(ctx context.Context, calendarID string, input EventInput) (string, error) {
	if !c.IsAuthenticated() {
		return "", ErrNotAuthenticated
	}
	if calendarID == "" {
		calendarID = "primary"
	}

	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		Start: &calendar.EventDateTime{
			DateTime: input.StartTime.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: input.EndTime.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		},
	}

	created, err := c.service.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create event: %w", err)
	}
	return created.Id, nil
}

// DeleteEvent removes an event, used when a booking is cancelled from the admin API.
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	if !c.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if calendarID == "" {
		calendarID = "primary"
	}

	err := c.service.Events.Delete(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		var gErr *googleapi.Error
		if errors.As(err, &gErr) && (gErr.Code == http.StatusNotFound || gErr.Code == http.StatusGone) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}
