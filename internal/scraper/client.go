// Package scraper imports public profiles through a hosted actor API. A run
// is started for a profile URL, polled until it reaches a terminal state, and
// its dataset is then fetched and mapped into resume content.
package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"tailorbase/internal/config"
	"tailorbase/internal/errors"

	"golang.org/x/time/rate"
)

// Actor run states, as reported by the API
const (
	runStatusReady     = "READY"
	runStatusRunning   = "RUNNING"
	runStatusSucceeded = "SUCCEEDED"
	runStatusFailed    = "FAILED"
	runStatusAborted   = "ABORTED"
	runStatusTimedOut  = "TIMED-OUT"
)

// Client drives one actor on the scraping service. Poll calls are paced with
// a token bucket so concurrent imports do not hammer the API.
type Client struct {
	baseURL    string
	actorID    string
	token      string
	httpClient *http.Client
	poller     *rate.Limiter
	interval   time.Duration
	maxWait    time.Duration
	limit      int
	logger     *errors.Logger
}

// Run is the subset of the actor run object the import flow needs
type Run struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

// NewClient creates a scraper client from configuration
func NewClient(cfg config.ScraperConfig, logger *errors.Logger) *Client {
	perSec := cfg.PollRatePerSec
	if perSec <= 0 {
		perSec = 1
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		actorID:    cfg.ActorID,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		poller:     rate.NewLimiter(rate.Limit(perSec), 1),
		interval:   cfg.PollInterval,
		maxWait:    cfg.MaxWait,
		limit:      cfg.DatasetLimit,
		logger:     logger,
	}
}

// StartRun launches an actor run for the given profile URL
func (c *Client) StartRun(ctx context.Context, profileURL string) (*Run, error) {
	payload, err := json.Marshal(map[string]any{
		"profileUrls": []string{profileURL},
	})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/acts/%s/runs?token=%s",
		c.baseURL, url.PathEscape(c.actorID), url.QueryEscape(c.token))

	var wrapper struct {
		Data Run `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodPost, endpoint, payload, &wrapper); err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeImportFailed,
			"Failed to start scraper run", err)
	}

	c.logger.Info("Scraper run started",
		"run_id", wrapper.Data.ID,
		"status", wrapper.Data.Status)
	return &wrapper.Data, nil
}

// GetRun fetches the current state of a run
func (c *Client) GetRun(ctx context.Context, runID string) (*Run, error) {
	endpoint := fmt.Sprintf("%s/actor-runs/%s?token=%s",
		c.baseURL, url.PathEscape(runID), url.QueryEscape(c.token))

	var wrapper struct {
		Data Run `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &wrapper); err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeImportFailed,
			"Failed to fetch scraper run", err)
	}
	return &wrapper.Data, nil
}

// WaitForRun polls until the run reaches a terminal state or the wait budget
// is spent. Polls are spaced by the configured interval and additionally
// paced by the client-wide rate limit.
func (c *Client) WaitForRun(ctx context.Context, runID string) (*Run, error) {
	deadline := time.Now().Add(c.maxWait)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		if err := c.poller.Wait(ctx); err != nil {
			return nil, err
		}

		run, err := c.GetRun(ctx, runID)
		if err != nil {
			return nil, err
		}

		switch run.Status {
		case runStatusSucceeded:
			return run, nil
		case runStatusFailed, runStatusAborted, runStatusTimedOut:
			return run, errors.NewNetworkError(errors.ErrCodeImportFailed,
				"Scraper run ended in state "+run.Status, nil)
		case runStatusReady, runStatusRunning:
			// keep polling
		default:
			c.logger.Warn("Unknown scraper run status", "run_id", runID, "status", run.Status)
		}

		if time.Now().After(deadline) {
			return run, errors.NewNetworkError(errors.ErrCodeImportFailed,
				"Scraper run did not finish within the wait budget", nil)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return run, ctx.Err()
		}
	}
}

// FetchItems downloads the run's dataset items
func (c *Client) FetchItems(ctx context.Context, datasetID string) ([]ProfileItem, error) {
	endpoint := fmt.Sprintf("%s/datasets/%s/items?token=%s&limit=%d",
		c.baseURL, url.PathEscape(datasetID), url.QueryEscape(c.token), c.limit)

	var items []ProfileItem
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &items); err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeImportFailed,
			"Failed to fetch scraper dataset", err)
	}
	return items, nil
}

// Import runs the full start-poll-fetch sequence for one profile
func (c *Client) Import(ctx context.Context, profileURL string) ([]ProfileItem, *Run, error) {
	run, err := c.StartRun(ctx, profileURL)
	if err != nil {
		return nil, nil, err
	}

	run, err = c.WaitForRun(ctx, run.ID)
	if err != nil {
		return nil, run, err
	}

	items, err := c.FetchItems(ctx, run.DefaultDatasetID)
	if err != nil {
		return nil, run, err
	}
	return items, run, nil
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("scraper API returned %d: %s", resp.StatusCode, data)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
