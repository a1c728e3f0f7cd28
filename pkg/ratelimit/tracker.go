package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for quota tracking.
var (
	quotaRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "yelp_quota_remaining",
		Help: "Requests remaining in the current daily quota window",
	})

	quotaDailyLimit = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "yelp_quota_daily_limit",
		Help: "Daily request quota reported by the provider",
	})

	quotaLowTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yelp_quota_low_total",
		Help: "Responses received while the daily quota was low or exhausted",
	})
)

// Tracker records the provider's quota from response headers.
// It never blocks requests; an exhausted quota surfaces as a 429 from the
// provider, which ends pagination like any other non-success status.
type Tracker struct {
	store  Store
	logger zerolog.Logger
}

// NewTracker creates a tracker persisting state to store.
func NewTracker(store Store, logger zerolog.Logger) *Tracker {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Tracker{
		store:  store,
		logger: logger,
	}
}

// State returns the last recorded quota state, or nil if none was recorded.
func (t *Tracker) State(ctx context.Context) (*QuotaState, error) {
	state, err := t.store.Load(ctx)
	if errors.Is(err, ErrNoState) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load quota state: %w", err)
	}
	return state, nil
}

// UpdateFromHeaders parses the quota headers and stores the new state.
// Responses without quota headers are ignored.
func (t *Tracker) UpdateFromHeaders(ctx context.Context, headers http.Header) error {
	state, err := ParseHeaders(headers, time.Now())
	if err != nil {
		return err
	}
	if state == nil {
		return nil
	}

	if err := t.store.Save(ctx, state); err != nil {
		return err
	}

	quotaRemaining.Set(float64(state.Remaining))
	quotaDailyLimit.Set(float64(state.DailyLimit))

	switch {
	case state.Exhausted():
		quotaLowTotal.Inc()
		t.logger.Error().
			Int("remaining", state.Remaining).
			Time("reset_at", state.ResetAt).
			Msg("Daily quota exhausted")
	case state.IsLow():
		quotaLowTotal.Inc()
		t.logger.Warn().
			Int("remaining", state.Remaining).
			Int("daily_limit", state.DailyLimit).
			Time("reset_at", state.ResetAt).
			Msg("Daily quota low")
	default:
		t.logger.Debug().
			Int("remaining", state.Remaining).
			Int("daily_limit", state.DailyLimit).
			Msg("Quota state updated")
	}

	return nil
}

// ParseHeaders builds a QuotaState from response headers.
// Returns nil without error when RateLimit-Remaining is absent.
func ParseHeaders(headers http.Header, now time.Time) (*QuotaState, error) {
	remainStr := headers.Get(HeaderRemaining)
	if remainStr == "" {
		return nil, nil
	}

	remain, err := strconv.Atoi(remainStr)
	if err != nil {
		return nil, fmt.Errorf("parse %s header: %w", HeaderRemaining, err)
	}

	state := &QuotaState{
		Remaining:  remain,
		LastUpdate: now,
	}

	if limitStr := headers.Get(HeaderDailyLimit); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, fmt.Errorf("parse %s header: %w", HeaderDailyLimit, err)
		}
		state.DailyLimit = limit
	}

	if resetStr := headers.Get(HeaderResetTime); resetStr != "" {
		resetAt, err := time.Parse(time.RFC3339, resetStr)
		if err != nil {
			return nil, fmt.Errorf("parse %s header: %w", HeaderResetTime, err)
		}
		state.ResetAt = resetAt
	}

	return state, nil
}
