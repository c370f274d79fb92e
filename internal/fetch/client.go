// Package fetch wraps the two network collaborators of the pipeline:
// the HTML document carrying the indicator table and the JSON rate feed.
// Failures are fatal to the run and surfaced unmodified; nothing here
// retries.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	apperrors "gdpetl/internal/errors"
	"gdpetl/pkg/contracts"
)

const defaultTimeout = 30 * time.Second

// Client performs the pipeline's HTTP calls.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewClient creates a fetch client with a sane timeout and no retries.
func NewClient(logger *slog.Logger) *Client {
	httpClient := resty.New().
		SetTimeout(defaultTimeout).
		SetHeader("User-Agent", contracts.UserAgent())

	return &Client{
		http:   httpClient,
		logger: logger,
	}
}

// Document fetches the raw HTML text of the source document.
func (c *Client) Document(ctx context.Context, url string) (string, error) {
	c.logger.Info("Fetching source document", slog.String("url", url))

	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", apperrors.NewNetworkError("document fetch failed", err)
	}
	if resp.IsError() {
		return "", apperrors.NewNetworkError(
			fmt.Sprintf("document fetch returned %s", resp.Status()), nil).
			WithContext("url", url)
	}

	c.logger.Info("Document fetched",
		slog.String("url", url),
		slog.Int("size_bytes", len(resp.Body())))
	return string(resp.Body()), nil
}

// quotesPayload mirrors the shape of the rate feed response. Only the
// quotes field matters to the pipeline.
type quotesPayload struct {
	Success bool               `json:"success"`
	Quotes  map[string]float64 `json:"quotes"`
}

// Quotes fetches the raw rate mapping from the rate feed, authenticating
// with the access key as a query parameter. The mapping keys are compound
// base-prefixed currency codes (e.g. "USDGBP"); normalization is the
// caller's concern.
func (c *Client) Quotes(ctx context.Context, url, accessKey string) (map[string]float64, error) {
	c.logger.Info("Fetching currency rates", slog.String("url", url))

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("access_key", accessKey).
		Get(url)
	if err != nil {
		return nil, apperrors.NewNetworkError("rate fetch failed", err)
	}
	if resp.IsError() {
		return nil, apperrors.NewNetworkError(
			fmt.Sprintf("rate fetch returned %s", resp.Status()), nil).
			WithContext("url", url)
	}

	var payload quotesPayload
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, apperrors.NewParsingError("rate payload is not valid JSON", err)
	}
	if payload.Quotes == nil {
		return nil, apperrors.NewParsingError("rate payload has no quotes field", nil)
	}

	c.logger.Info("Rates fetched", slog.Int("quote_count", len(payload.Quotes)))
	return payload.Quotes, nil
}
