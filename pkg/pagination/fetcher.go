package pagination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/restaurant-export/pkg/client"
	"github.com/Sternrassler/restaurant-export/pkg/export"
	"github.com/Sternrassler/restaurant-export/pkg/search"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for export runs.
var (
	pagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restaurant_export_pages_total",
		Help: "Total non-empty result pages fetched",
	})

	recordsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restaurant_export_records_total",
		Help: "Total business records collected",
	})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "restaurant_export_runs_total",
		Help: "Completed pagination loops by stop reason",
	}, []string{"stop_reason"})
)

// StopReason tells why pagination ended.
type StopReason string

const (
	// StopMaxResults means the offset reached the configured maximum.
	StopMaxResults StopReason = "max_results"

	// StopHTTPError means the provider answered with a non-success status.
	StopHTTPError StopReason = "http_error"

	// StopTransportError means a request failed before any response arrived.
	StopTransportError StopReason = "transport_error"

	// StopEndOfData means the provider returned an empty page.
	StopEndOfData StopReason = "end_of_data"
)

// DefaultPageSize is the number of entries requested per page.
const DefaultPageSize = 50

// DefaultPause is the delay between consecutive page requests.
const DefaultPause = 1 * time.Second

// PageFetcher issues a single search request.
// *client.Client implements it.
type PageFetcher interface {
	Search(ctx context.Context, q search.SearchQuery) (*client.Response, error)
}

// Config holds fetcher configuration.
type Config struct {
	// Term is the search term sent with every request.
	Term string

	// Location and Category are forwarded to the provider verbatim.
	Location string
	Category string

	// PageSize is the limit sent with every request.
	PageSize int

	// MaxResults is advisory: pagination stops once the offset reaches it,
	// but the last page is kept whole.
	MaxResults int

	// Pause between pages. Zero disables pausing.
	Pause time.Duration
}

// DefaultConfig returns the standard configuration for a location and
// provider category code.
func DefaultConfig(location, category string, maxResults int) Config {
	return Config{
		Term:       search.DefaultTerm,
		Location:   location,
		Category:   category,
		PageSize:   DefaultPageSize,
		MaxResults: maxResults,
		Pause:      DefaultPause,
	}
}

// Summary describes a finished run.
type Summary struct {
	RunID      string
	Requests   int
	Pages      int
	Records    int
	StopReason StopReason
	Output     string
}

// Fetcher is the paginated fetch-and-flatten loop.
type Fetcher struct {
	fetcher PageFetcher
	config  Config
	logger  zerolog.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewFetcher creates a fetcher. An empty Term and a non-positive PageSize
// fall back to the defaults.
func NewFetcher(fetcher PageFetcher, config Config) *Fetcher {
	if config.Term == "" {
		config.Term = search.DefaultTerm
	}
	if config.PageSize <= 0 {
		config.PageSize = DefaultPageSize
	}
	if config.Pause < 0 {
		config.Pause = 0
	}

	return &Fetcher{
		fetcher: fetcher,
		config:  config,
		logger:  log.With().Str("component", "fetcher").Logger(),
		sleep:   sleepContext,
	}
}

// Run collects all pages and writes them as CSV to output.
// Non-success responses end pagination early but still produce a file;
// malformed responses, cancellation and write failures return an error.
func (f *Fetcher) Run(ctx context.Context, output string) (Summary, error) {
	summary := Summary{RunID: uuid.NewString()}
	logger := f.logger.With().Str("run_id", summary.RunID).Logger()

	records, err := f.collect(ctx, logger, &summary)
	if err != nil {
		return summary, err
	}

	if err := export.WriteCSV(output, records); err != nil {
		logger.Error().Err(err).Str("output", output).Msg("Failed to write output")
		return summary, fmt.Errorf("write output: %w", err)
	}
	summary.Output = output

	logger.Info().
		Str("output", output).
		Int("records", summary.Records).
		Str("stop_reason", string(summary.StopReason)).
		Msg("Data successfully saved")

	return summary, nil
}

// Collect runs the pagination loop and returns the accumulated records
// without writing them anywhere.
func (f *Fetcher) Collect(ctx context.Context) (search.ResultSet, Summary, error) {
	summary := Summary{RunID: uuid.NewString()}
	logger := f.logger.With().Str("run_id", summary.RunID).Logger()

	records, err := f.collect(ctx, logger, &summary)
	return records, summary, err
}

func (f *Fetcher) collect(ctx context.Context, logger zerolog.Logger, summary *Summary) (search.ResultSet, error) {
	start := time.Now()
	records := search.ResultSet{}
	offset := 0

	logger.Info().
		Str("location", f.config.Location).
		Str("category", f.config.Category).
		Int("max_results", f.config.MaxResults).
		Msg("Starting paginated fetch")

	for offset < f.config.MaxResults {
		query := search.SearchQuery{
			Term:     f.config.Term,
			Location: f.config.Location,
			Category: f.config.Category,
			Limit:    f.config.PageSize,
			Offset:   offset,
		}

		resp, err := f.fetcher.Search(ctx, query)
		summary.Requests++
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("fetch page at offset %d: %w", offset, ctxErr)
			}

			var apiErr *client.APIError
			if errors.As(err, &apiErr) && apiErr.ErrorClass != client.ErrorClassNetwork {
				logger.Error().
					Int("status", apiErr.StatusCode).
					Str("body", apiErr.Body).
					Int("offset", offset).
					Msg("Error fetching data")
				summary.StopReason = StopHTTPError
			} else {
				logger.Error().
					Err(err).
					Int("offset", offset).
					Msg("Search request failed")
				summary.StopReason = StopTransportError
			}
			break
		}

		page, err := search.ParsePage(resp.Body)
		if err != nil {
			logger.Error().
				Err(err).
				Int("offset", offset).
				Int("body_bytes", len(resp.Body)).
				Msg("Unparseable search response")
			return nil, fmt.Errorf("parse page at offset %d: %w", offset, err)
		}

		if len(page.Records) == 0 {
			logger.Info().Int("offset", offset).Msg("No more businesses found")
			summary.StopReason = StopEndOfData
			break
		}

		fetched := len(page.Records)
		records = append(records, page.Records...)
		summary.Pages++
		pagesTotal.Inc()
		recordsTotal.Add(float64(fetched))

		logger.Info().
			Int("fetched", fetched).
			Int("total", offset+fetched).
			Int("available", page.Total).
			Msg("Fetched businesses")

		offset += fetched

		if offset >= f.config.MaxResults {
			break
		}

		if err := f.sleep(ctx, f.config.Pause); err != nil {
			return nil, fmt.Errorf("pause after offset %d: %w", offset, err)
		}
	}

	if summary.StopReason == "" {
		summary.StopReason = StopMaxResults
	}
	summary.Records = len(records)
	runsTotal.WithLabelValues(string(summary.StopReason)).Inc()

	logger.Info().
		Int("records", summary.Records).
		Int("pages", summary.Pages).
		Str("stop_reason", string(summary.StopReason)).
		Dur("duration", time.Since(start)).
		Msg("Pagination complete")

	return records, nil
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
