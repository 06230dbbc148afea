package models

const (
	// DefaultPageFrom is the zero-based offset used when the caller omits `from`.
	DefaultPageFrom = 0

	// DefaultPageSize is the page length used when the caller omits `size`.
	DefaultPageSize = 10

	// RateLimitRequests is the per-actor request budget within RateLimitWindow.
	RateLimitRequests = 30

	// RateLimitWindow is the rate-limit window in seconds.
	RateLimitWindow = 60

	// ExportQueueSize bounds the in-memory report job queue.
	ExportQueueSize = 64
)
