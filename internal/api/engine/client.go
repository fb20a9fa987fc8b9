package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpClient "github.com/Alias1177/BacktestView/internal/platform/http"
	"github.com/Alias1177/BacktestView/models"
)

// Client is the backtesting engine API client
type Client struct {
	endpoint   string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new engine client
type ClientOptions struct {
	BaseURL         string
	Path            string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new engine API client
func NewClient(options ClientOptions) *Client {
	httpOpts := httpClient.ClientOptions{
		Name:            "engine",
		Timeout:         options.RequestTimeout,
		RequestsPerSec:  options.RequestsPerSec,
		MaxRetries:      options.MaxRetries,
		MaxRetryTimeout: options.MaxRetryTimeout,
	}

	if options.Path == "" {
		options.Path = "/api/backtest"
	}

	return &Client{
		endpoint:   strings.TrimRight(options.BaseURL, "/") + options.Path,
		httpClient: httpClient.NewClient(httpOpts),
		logger:     log.With().Str("component", "engine_client").Logger(),
	}
}

// NewClientWithTransport builds a client around an already configured transport.
func NewClientWithTransport(endpoint string, transport *httpClient.Client) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: transport,
		logger:     log.With().Str("component", "engine_client").Logger(),
	}
}

// RunBacktest submits the request and decodes the engine's reply.
func (c *Client) RunBacktest(ctx context.Context, backtestReq models.BacktestRequest) (*models.BacktestResponse, error) {
	payload, err := json.Marshal(backtestReq)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug().Str("url", c.endpoint).Str("ticker", backtestReq.Ticker).Msg("Submitting backtest")

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		var statusErr *httpClient.HTTPStatusError
		if errors.As(err, &statusErr) {
			return nil, c.failedStatus(statusErr.StatusCode, statusErr.Body, err)
		}
		c.logger.Error().Err(err).Msg("Engine unreachable")
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.failedStatus(resp.StatusCode, body, nil)
	}

	var data models.BacktestResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing JSON")
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("parsing JSON: %w", err)}
	}

	c.logger.Debug().
		Int("buys", countPoints(data.ChartData.TradeMarkers, true)).
		Int("sells", countPoints(data.ChartData.TradeMarkers, false)).
		Msg("Backtest completed")
	return &data, nil
}

// failedStatus classifies a non-2xx reply: a readable {error} body is an
// engine error, anything else is a transport error.
func (c *Client) failedStatus(status int, body []byte, cause error) error {
	var errBody models.ErrorResponse
	if jsonErr := json.Unmarshal(body, &errBody); jsonErr == nil && errBody.Error != "" {
		c.logger.Warn().Int("status", status).Str("error", errBody.Error).Msg("Engine rejected backtest")
		return &EngineError{StatusCode: status, Message: errBody.Error}
	}
	c.logger.Error().Int("status", status).Str("response", string(body)).Msg("Engine returned unreadable error")
	return &TransportError{StatusCode: status, Err: cause}
}

func countPoints(markers *models.TradeMarkers, buys bool) int {
	if markers == nil {
		return 0
	}
	if buys {
		return len(markers.BuyPoints)
	}
	return len(markers.SellPoints)
}
