package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Sternrassler/restaurant-export/pkg/client"
	"github.com/Sternrassler/restaurant-export/pkg/logging"
	"github.com/Sternrassler/restaurant-export/pkg/metrics"
	"github.com/Sternrassler/restaurant-export/pkg/pagination"
	"github.com/Sternrassler/restaurant-export/pkg/ratelimit"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// config is the runtime configuration read from the environment.
type config struct {
	APIKey      string
	APIURL      string
	UserAgent   string
	Location    string
	Category    string
	Output      string
	MaxResults  int
	RedisURL    string
	MetricsFile string
}

func main() {
	logging.Setup(logging.Config{
		Level:   logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty:  getEnv("LOG_PRETTY", "false") == "true",
		Output:  os.Stderr,
		Service: "restaurant-export",
	})

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}
}

// loadConfig reads the configuration from environment variables.
func loadConfig() (config, error) {
	cfg := config{
		APIKey:      os.Getenv("YELP_API_KEY"),
		APIURL:      getEnv("YELP_API_URL", client.DefaultBaseURL),
		UserAgent:   getEnv("USER_AGENT", "restaurant-export/0.1.0"),
		Location:    getEnv("YELP_LOCATION", "Toronto, ON"),
		Category:    getEnv("YELP_CATEGORY", "indpak"),
		Output:      getEnv("OUTPUT_FILE", "indian_restaurants_toronto.csv"),
		RedisURL:    os.Getenv("REDIS_URL"),
		MetricsFile: os.Getenv("METRICS_FILE"),
	}

	if cfg.APIKey == "" {
		return cfg, fmt.Errorf("YELP_API_KEY is required")
	}

	maxResults, err := strconv.Atoi(getEnv("MAX_RESULTS", "200"))
	if err != nil {
		return cfg, fmt.Errorf("parse MAX_RESULTS: %w", err)
	}
	if maxResults < 0 {
		return cfg, fmt.Errorf("MAX_RESULTS must be >= 0 (got %d)", maxResults)
	}
	cfg.MaxResults = maxResults

	return cfg, nil
}

// run wires the client, quota tracker and fetcher and performs one export.
func run(ctx context.Context, cfg config) error {
	store, closeStore := newQuotaStore(ctx, cfg.RedisURL)
	defer closeStore()

	tracker := ratelimit.NewTracker(store, logging.NewLogger("quota"))

	searchClient, err := client.New(client.Config{
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.APIURL,
		UserAgent: cfg.UserAgent,
		Tracker:   tracker,
	})
	if err != nil {
		return fmt.Errorf("create search client: %w", err)
	}

	fetcher := pagination.NewFetcher(searchClient, pagination.DefaultConfig(cfg.Location, cfg.Category, cfg.MaxResults))

	summary, runErr := fetcher.Run(ctx, cfg.Output)

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Warn().Err(err).Msg("Failed to write metrics")
		}
	}

	if runErr != nil {
		return runErr
	}

	logQuota(ctx, tracker, summary)
	return nil
}

// newQuotaStore returns a Redis-backed store when redisURL is set and
// reachable, and an in-memory store otherwise.
func newQuotaStore(ctx context.Context, redisURL string) (ratelimit.Store, func()) {
	if redisURL == "" {
		return ratelimit.NewMemoryStore(), func() {}
	}

	opts := &redis.Options{Addr: redisURL}
	if strings.Contains(redisURL, "://") {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Warn().Err(err).Msg("Invalid REDIS_URL, tracking quota in memory")
			return ratelimit.NewMemoryStore(), func() {}
		}
		opts = parsed
	}

	redisClient := redis.NewClient(opts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("redis", opts.Addr).Msg("Redis unavailable, tracking quota in memory")
		redisClient.Close()
		return ratelimit.NewMemoryStore(), func() {}
	}

	log.Info().Str("redis", opts.Addr).Msg("Connected to Redis")
	return ratelimit.NewRedisStore(redisClient), func() { redisClient.Close() }
}

func logQuota(ctx context.Context, tracker *ratelimit.Tracker, summary pagination.Summary) {
	state, err := tracker.State(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read quota state")
		return
	}

	event := log.Info().
		Str("run_id", summary.RunID).
		Int("requests", summary.Requests)
	if state != nil {
		event = event.
			Int("quota_remaining", state.Remaining).
			Time("quota_reset_at", state.ResetAt)
	}
	event.Msg("Run finished")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
