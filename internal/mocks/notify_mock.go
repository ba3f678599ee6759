package mocks

import (
	"context"

	"github.com/omriShneor/project_casa/internal/database"
	"github.com/omriShneor/project_casa/internal/gcal"
	"github.com/stretchr/testify/mock"
)

// MockNotifier is a mock implementation of the notify.Notifier interface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, booking *database.Booking, listing *database.Listing, recipient string) error {
	args := m.Called(ctx, booking, listing, recipient)
	return args.Error(0)
}

func (m *MockNotifier) Name() string {
	return "mock"
}

func (m *MockNotifier) IsConfigured() bool {
	return true
}

// MockCalendar is a mock implementation of the agency calendar
type MockCalendar struct {
	mock.Mock
	Authenticated bool
}

func (m *MockCalendar) CreateEvent(ctx context.Context, calendarID string, input gcal.EventInput) (string, error) {
	args := m.Called(ctx, calendarID, input)
	return args.String(0), args.Error(1)
}

func (m *MockCalendar) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	args := m.Called(ctx, calendarID, eventID)
	return args.Error(0)
}

func (m *MockCalendar) IsAuthenticated() bool {
	return m.Authenticated
}
