package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"lendhub/internal/models"
	"lendhub/internal/service"
)

type bookingRequest struct {
	ItemID int64     `json:"item_id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var body bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.ItemID < 1 {
		writeError(w, http.StatusBadRequest, "item_id is required")
		return
	}

	now := time.Now()
	if body.Start.IsZero() || body.End.IsZero() ||
		!body.Start.After(now) || !body.End.After(now) || !body.End.After(body.Start) {
		s.mapError(w, service.ErrInvalidPeriod)
		return
	}

	booking, err := s.bookings.CreateBooking(r.Context(), actorID, service.CreateBookingInput{
		ItemID: body.ItemID,
		Start:  body.Start,
		End:    body.End,
	})
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bookingID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := s.bookings.GetBooking(r.Context(), actorID, bookingID)
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleApproveBooking(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bookingID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var approved bool
	switch r.URL.Query().Get("approved") {
	case "true":
		approved = true
	case "false":
		approved = false
	default:
		writeError(w, http.StatusBadRequest, "approved must be true or false")
		return
	}

	booking, err := s.bookings.ApproveBooking(r.Context(), bookingID, actorID, approved)
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleListBookingsByBooker(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, s.bookings.GetBookingsByBooker)
}

func (s *HTTPServer) handleListBookingsByOwner(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, s.bookings.GetBookingsByOwner)
}

func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request,
	list func(ctx context.Context, actorID int64, state models.BookingState, from, size int) ([]*models.Booking, error)) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rawState := r.URL.Query().Get("state")
	state, err := models.ParseBookingState(rawState)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown state: "+rawState)
		return
	}

	from, size, err := parsePaging(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bookings, err := list(r.Context(), actorID, state, from, size)
	if err != nil {
		s.mapError(w, err)
		return
	}
	if bookings == nil {
		bookings = []*models.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}
