package mocks

import (
	"time"

	"github.com/omriShneor/project_casa/internal/database"
	"github.com/stretchr/testify/mock"
)

// MockListingStore is a mock implementation of the listing and booking store
type MockListingStore struct {
	mock.Mock
}

func (m *MockListingStore) SearchListings(query string) ([]database.Listing, error) {
	args := m.Called(query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]database.Listing), args.Error(1)
}

func (m *MockListingStore) GetListingByReference(reference string) (*database.Listing, error) {
	args := m.Called(reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.Listing), args.Error(1)
}

func (m *MockListingStore) RecordBooking(reference, clientName, clientContact, requestedText string, scheduledAt *time.Time, notes string) (int64, error) {
	args := m.Called(reference, clientName, clientContact, requestedText, scheduledAt, notes)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockListingStore) SetBookingCalendarEvent(id int64, eventID string) error {
	args := m.Called(id, eventID)
	return args.Error(0)
}
