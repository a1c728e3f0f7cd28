// Package ratelimit tracks the business-search provider's daily request quota.
// It reads the RateLimit-DailyLimit, RateLimit-Remaining and
// RateLimit-ResetTime response headers and keeps the latest state in a Store
// so consecutive runs (and other processes sharing Redis) see the same quota.
package ratelimit

import (
	"time"
)

// Response headers carrying the quota.
const (
	HeaderDailyLimit = "RateLimit-DailyLimit"
	HeaderRemaining  = "RateLimit-Remaining"
	HeaderResetTime  = "RateLimit-ResetTime"
)

// Redis keys for quota state storage.
const (
	RedisKeyDailyLimit = "yelp:rate_limit:daily_limit"
	RedisKeyRemaining  = "yelp:rate_limit:remaining"
	RedisKeyResetAt    = "yelp:rate_limit:reset_at"
	RedisKeyLastUpdate = "yelp:rate_limit:last_update"
)

// QuotaThresholdLow is the remaining request count below which the quota is
// reported as low.
const QuotaThresholdLow = 50

// QuotaState is the provider's daily quota as last reported.
type QuotaState struct {
	// DailyLimit is the total number of requests allowed per day.
	DailyLimit int `json:"daily_limit"`

	// Remaining is the number of requests left in the current window.
	Remaining int `json:"remaining"`

	// ResetAt is when the window resets.
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is when this state was recorded.
	LastUpdate time.Time `json:"last_update"`
}

// IsStale returns true if the state is older than maxAge.
func (s *QuotaState) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// Exhausted returns true once no requests remain and the window has not reset.
// A state without a reset time counts as not yet reset.
func (s *QuotaState) Exhausted() bool {
	if s.Remaining > 0 {
		return false
	}
	return s.ResetAt.IsZero() || s.TimeUntilReset() > 0
}

// IsLow returns true when fewer than QuotaThresholdLow requests remain.
func (s *QuotaState) IsLow() bool {
	return s.Remaining < QuotaThresholdLow
}

// TimeUntilReset returns the duration until the quota resets.
// Returns 0 if the reset time has already passed.
func (s *QuotaState) TimeUntilReset() time.Duration {
	duration := time.Until(s.ResetAt)
	if duration < 0 {
		return 0
	}
	return duration
}
