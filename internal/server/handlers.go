package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/omriShneor/project_casa/internal/database"
	"github.com/omriShneor/project_casa/internal/gcal"
	"github.com/omriShneor/project_casa/internal/importer"
	"go.uber.org/zap"
)

const maxUploadBytes = 20 << 20

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func connectionState(c Connector) string {
	switch {
	case c == nil:
		return "disabled"
	case c.IsConnected():
		return "connected"
	default:
		return "disconnected"
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	listings, err := s.db.CountAvailableListings()
	if err != nil {
		s.logger.Error("status: count listings", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to count listings")
		return
	}

	calendar := "disabled"
	if s.calendar != nil {
		calendar = "disconnected"
		if s.calendar.IsAuthenticated() {
			calendar = "connected"
		}
	}

	status := map[string]interface{}{
		"whatsapp":           connectionState(s.whatsapp),
		"telegram":           connectionState(s.telegram),
		"calendar":           calendar,
		"generator":          s.generator,
		"manual_chars":       s.manualSize,
		"listings_available": listings,
	}
	if s.sessions != nil {
		status["active_sessions"] = s.sessions()
	}
	if s.scheduler != nil {
		status["import_schedule"] = s.scheduler.Status()
	}
	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleListListings(w http.ResponseWriter, r *http.Request) {
	listings, err := s.db.SearchListings(r.URL.Query().Get("q"))
	if err != nil {
		s.logger.Error("search listings", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to search listings")
		return
	}
	respondJSON(w, http.StatusOK, listings)
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := s.db.GetListingByReference(r.PathValue("reference"))
	if err != nil {
		s.logger.Error("get listing", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to get listing")
		return
	}
	if listing == nil {
		respondError(w, http.StatusNotFound, "listing not found")
		return
	}
	respondJSON(w, http.StatusOK, listing)
}

// handleImportListings accepts a multipart "file" field holding a CSV, XLSX
// or JSON catalog.
func (s *Server) handleImportListings(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	tmp, err := os.CreateTemp("", "listings-*"+ext)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	defer os.Remove(tmp.Name())

	_, err = io.Copy(tmp, file)
	tmp.Close()
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	result, err := s.importer.ImportListingsFile(tmp.Name())
	if errors.Is(err, importer.ErrUnsupportedFormat) {
		respondError(w, http.StatusBadRequest, "file must be .csv, .xlsx or .json")
		return
	}
	if err != nil {
		s.logger.Error("import listings", zap.Error(err))
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	result.File = header.Filename
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	bookings, err := s.db.ListBookings(limit)
	if err != nil {
		s.logger.Error("list bookings", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}
	respondJSON(w, http.StatusOK, bookings)
}

// handleCancelBooking cancels a booking and removes its calendar event.
// A failed event removal is logged and does not undo the cancellation.
func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	booking, err := s.db.CancelBooking(id)
	if err != nil {
		s.logger.Error("cancel booking", zap.Int64("booking_id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to cancel booking")
		return
	}
	if booking == nil {
		respondError(w, http.StatusNotFound, "booking not found")
		return
	}
	if booking.Status == database.BookingStatusCancelled {
		respondError(w, http.StatusConflict, "booking already cancelled")
		return
	}

	calendarRemoved := false
	if booking.CalendarEventID != "" && s.calendar != nil && s.calendar.IsAuthenticated() {
		err := s.calendar.DeleteEvent(r.Context(), s.calendarID, booking.CalendarEventID)
		switch {
		case err == nil, errors.Is(err, gcal.ErrEventNotFound):
			calendarRemoved = true
		default:
			s.logger.Warn("could not delete calendar event",
				zap.Int64("booking_id", id),
				zap.String("event_id", booking.CalendarEventID),
				zap.Error(err))
		}
	}

	booking.Status = database.BookingStatusCancelled
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"booking":          booking,
		"calendar_removed": calendarRemoved,
	})
}

func (s *Server) handleGCalStatus(w http.ResponseWriter, r *http.Request) {
	if s.calendar == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{"connected": false, "message": "Not configured"})
		return
	}
	connected := s.calendar.IsAuthenticated()
	message := "Connected"
	if !connected {
		message = "Not authorized"
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"connected": connected, "message": message})
}

func (s *Server) handleGCalConnect(w http.ResponseWriter, r *http.Request) {
	if s.calendar == nil {
		respondError(w, http.StatusServiceUnavailable, "Google Calendar credentials not configured")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"auth_url": s.calendar.GetAuthURL()})
}

func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "No authorization code received")
		return
	}
	if s.calendar == nil {
		respondError(w, http.StatusServiceUnavailable, "Google Calendar credentials not configured")
		return
	}
	if err := s.calendar.ExchangeCode(r.Context(), code); err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to exchange code: %v", err))
		return
	}
	s.logger.Info("google calendar authorized")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "Google Calendar conectado. Ya podés cerrar esta ventana.")
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("encoding JSON response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
