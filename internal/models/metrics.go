package models

import "time"

// SystemMetrics is a JSON snapshot of the in-process counters.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	Recalculations           uint64    `json:"recalculations"`
	RecalculationFailures    uint64    `json:"recalculation_failures"`
	RateLimited              uint64    `json:"rate_limited"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
