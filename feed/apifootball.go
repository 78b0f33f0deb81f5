package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout = 10 * time.Second
	defaultRetries = 2
	defaultBackoff = 500 * time.Millisecond
	apiKeyHeader   = "x-apisports-key"
)

type APIFootballConfig struct {
	BaseURL string
	APIKey  string
	// Timeout bounds every single HTTP attempt.
	Timeout time.Duration
	// Retries is the number of extra attempts after the first failure.
	Retries int
	Backoff time.Duration
	// LeagueID and Season narrow date queries; zero means all competitions.
	LeagueID int
	Season   int
}

// APIFootballClient talks to an api-football compatible fixtures endpoint.
type APIFootballClient struct {
	cfg        APIFootballConfig
	httpClient *http.Client
	logger     *slog.Logger
}

func NewAPIFootballClient(cfg APIFootballConfig, logger *slog.Logger) *APIFootballClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = defaultRetries
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = defaultBackoff
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if logger == nil {
		logger = slog.Default()
	}
	return &APIFootballClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type fixturesResponse struct {
	Errors   json.RawMessage `json:"errors"`
	Response []struct {
		Fixture struct {
			ID     int64 `json:"id"`
			Status struct {
				Short string `json:"short"`
			} `json:"status"`
		} `json:"fixture"`
		Goals struct {
			Home *int `json:"home"`
			Away *int `json:"away"`
		} `json:"goals"`
	} `json:"response"`
}

func (c *APIFootballClient) FetchResultsForDate(ctx context.Context, date time.Time) ([]MatchResult, error) {
	q := url.Values{}
	q.Set("date", date.UTC().Format("2006-01-02"))
	if c.cfg.LeagueID > 0 {
		q.Set("league", fmt.Sprint(c.cfg.LeagueID))
	}
	if c.cfg.Season > 0 {
		q.Set("season", fmt.Sprint(c.cfg.Season))
	}
	return c.fetchFixtures(ctx, q)
}

func (c *APIFootballClient) FetchLiveMatches(ctx context.Context) ([]MatchResult, error) {
	q := url.Values{}
	q.Set("live", "all")
	return c.fetchFixtures(ctx, q)
}

func (c *APIFootballClient) fetchFixtures(ctx context.Context, query url.Values) ([]MatchResult, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.Retries; attempt++ {
		if attempt > 0 {
			wait := c.cfg.Backoff * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
			case <-time.After(wait):
			}
		}

		results, err := c.doFetch(ctx, query)
		if err == nil {
			return results, nil
		}
		lastErr = err

		var permanent *permanentError
		if errors.As(err, &permanent) {
			break
		}
		c.logger.Warn("feed request failed",
			slog.Int("attempt", attempt+1),
			slog.String("query", query.Encode()),
			slog.Any("error", err))
	}
	return nil, fmt.Errorf("%w: %w", ErrUnavailable, lastErr)
}

// permanentError marks responses that retrying cannot fix (4xx).
type permanentError struct {
	status int
	body   string
}

func (e *permanentError) Error() string {
	return fmt.Sprintf("feed returned status %d: %s", e.status, e.body)
}

func (c *APIFootballClient) doFetch(ctx context.Context, query url.Values) ([]MatchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/fixtures?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, &permanentError{status: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}

	var payload fixturesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}

	results := make([]MatchResult, 0, len(payload.Response))
	for _, item := range payload.Response {
		results = append(results, MatchResult{
			ExternalMatchID: item.Fixture.ID,
			HomeScore:       item.Goals.Home,
			AwayScore:       item.Goals.Away,
			Status:          item.Fixture.Status.Short,
		})
	}
	return results, nil
}

var _ Provider = (*APIFootballClient)(nil)
