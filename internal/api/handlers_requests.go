package api

import (
	"encoding/json"
	"net/http"
	"time"

	"lendhub/internal/models"
	"lendhub/internal/service"
)

func (s *HTTPServer) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var body service.CreateRequestInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	request, err := s.requests.CreateRequest(r.Context(), actorID, body)
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, request)
}

func (s *HTTPServer) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	requestID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	request, err := s.requests.GetRequest(r.Context(), actorID, requestID)
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (s *HTTPServer) handleListOwnRequests(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	requests, err := s.requests.GetRequestsByRequester(r.Context(), actorID)
	if err != nil {
		s.mapError(w, err)
		return
	}
	if requests == nil {
		requests = []*models.ItemRequest{}
	}
	writeJSON(w, http.StatusOK, requests)
}

func (s *HTTPServer) handleListOtherRequests(w http.ResponseWriter, r *http.Request) {
	actorID, err := actorFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	from, size, err := parsePaging(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	requests, err := s.requests.GetOtherRequests(r.Context(), actorID, from, size)
	if err != nil {
		s.mapError(w, err)
		return
	}
	if requests == nil {
		requests = []*models.ItemRequest{}
	}
	writeJSON(w, http.StatusOK, requests)
}

type exportRequest struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// handleEnqueueExport queues a booking report for the period. The file
// lands in the configured export directory once the worker gets to it.
func (s *HTTPServer) handleEnqueueExport(w http.ResponseWriter, r *http.Request) {
	if _, err := actorFromRequest(r); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.exports == nil {
		writeError(w, http.StatusServiceUnavailable, "exports are disabled")
		return
	}

	var body exportRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Start.IsZero() || body.End.IsZero() || !body.End.After(body.Start) {
		writeError(w, http.StatusBadRequest, "export period end must be after start")
		return
	}

	if err := s.exports.EnqueueExport(r.Context(), body.Start, body.End); err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
