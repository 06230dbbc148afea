package api

import (
	"errors"
	"net/http"

	"lendhub/internal/database"
	"lendhub/internal/models"
	"lendhub/internal/service"
)

// mapError translates domain errors into HTTP status codes. Anything
// unclassified is a 500 with a generic body; the cause is logged, not
// leaked.
func (s *HTTPServer) mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrUserNotFound),
		errors.Is(err, database.ErrItemNotFound),
		errors.Is(err, database.ErrBookingNotFound),
		errors.Is(err, database.ErrRequestNotFound),
		errors.Is(err, service.ErrOwnItem),
		errors.Is(err, service.ErrBookerApproval):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrItemUnavailable),
		errors.Is(err, service.ErrAlreadyApproved),
		errors.Is(err, service.ErrInvalidPeriod),
		errors.Is(err, service.ErrInvalidPaging),
		errors.Is(err, service.ErrBlankField),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrNoCompletedBooking):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAccessDenied):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, database.ErrEmailTaken),
		errors.Is(err, database.ErrConcurrentModification):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrUnknownState):
		// The handler validates the state token; seeing this after that
		// check means an unhandled filter inside the engine.
		writeError(w, http.StatusNotImplemented, err.Error())
	default:
		s.logger.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
