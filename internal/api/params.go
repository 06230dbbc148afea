package api

import (
	"errors"
	"net/http"
	"strconv"

	"lendhub/internal/models"
)

var errMissingActor = errors.New("missing " + actorHeader + " header")

func actorFromRequest(r *http.Request) (int64, error) {
	raw := r.Header.Get(actorHeader)
	if raw == "" {
		return 0, errMissingActor
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid " + actorHeader + " header")
	}
	return id, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid id in path")
	}
	return id, nil
}

// parsePaging reads from/size query parameters with the listing defaults.
func parsePaging(r *http.Request) (from, size int, err error) {
	from = models.DefaultPageFrom
	size = models.DefaultPageSize

	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, errors.New("invalid from parameter")
		}
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		size, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, errors.New("invalid size parameter")
		}
	}
	return from, size, nil
}
