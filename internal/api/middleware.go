package api

import (
	"net/http"
	"time"

	"lendhub/internal/metrics"
	"lendhub/internal/models"

	"github.com/google/uuid"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *HTTPServer) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(w, r)
	})
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(r.URL.Path)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", recorder.Header().Get("X-Request-Id")).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// rateLimitMiddleware throttles by actor id. Requests without the actor
// header pass through; handlers reject those on their own.
func (s *HTTPServer) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.cfg.RateLimit.Enabled || s.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		actorID, err := actorFromRequest(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		limit := s.cfg.RateLimit.Requests
		if limit <= 0 {
			limit = models.RateLimitRequests
		}
		window := time.Duration(s.cfg.RateLimit.Window) * time.Second
		if window <= 0 {
			window = models.RateLimitWindow * time.Second
		}

		allowed, err := s.limiter.Allow(r.Context(), actorID, limit, window)
		if err != nil {
			s.logger.Error().Err(err).Int64("actor_id", actorID).Msg("rate limiter error")
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			metrics.IncRateLimited()
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}
