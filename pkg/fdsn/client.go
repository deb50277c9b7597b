package fdsn

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/config"
	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/logging"
	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/models"
)

const timeLayout = "2006-01-02T15:04:05"

// Client talks to one FDSN data center (station/1, event/1, dataselect/1).
type Client struct {
	provider   string
	baseURL    string
	httpClient *http.Client
	username   string
	password   string
	logger     logging.Logger
	retry      RetryConfig
	breaker    *CircuitBreaker
}

// Config configures a provider client.
type Config struct {
	// Provider is a known provider name (see Endpoint); BaseURL overrides the
	// registry when set.
	Provider string
	BaseURL  string

	// Credentials for restricted data, sent as HTTP basic auth.
	Username string
	Password string

	Timeout     time.Duration
	Logger      logging.Logger
	RetryConfig *RetryConfig

	// BreakerConfig overrides the default per-provider circuit breaker,
	// which reports state changes to the breaker gauge.
	BreakerConfig *CircuitBreakerConfig
}

// NewClient creates a client for one data center.
func NewClient(cfg Config) (*Client, error) {
	base := cfg.BaseURL
	if base == "" {
		resolved, ok := Endpoint(cfg.Provider)
		if !ok {
			return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
		}
		base = resolved
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = config.GetEnvDuration("FDSN_TIMEOUT", 120*time.Second)
	}

	retry := DefaultRetryConfig()
	if cfg.RetryConfig != nil {
		retry = *cfg.RetryConfig
	}

	breakerCfg := cfg.BreakerConfig
	if breakerCfg == nil {
		def := DefaultCircuitBreakerConfig(cfg.Provider)
		def.Logger = cfg.Logger
		def.OnStateChange = BreakerMetricsCallback()
		breakerCfg = &def
	}
	breaker := NewCircuitBreaker(*breakerCfg)

	return &Client{
		provider:   cfg.Provider,
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		username:   cfg.Username,
		password:   cfg.Password,
		logger:     cfg.Logger,
		retry:      retry,
		breaker:    breaker,
	}, nil
}

// Provider returns the provider name the client was built for.
func (c *Client) Provider() string { return c.provider }

// StationQuery filters a station/1 request.
type StationQuery struct {
	Network  string
	Station  string
	Channel  string
	MinLat   float64
	MaxLat   float64
	MinLon   float64
	MaxLon   float64
	Start    time.Time
	End      time.Time
	Level    string // "station", "channel" or "response"
	NoBounds bool   // skip the bounding-box parameters
}

// Stations runs a station/1 query and normalizes the inventory.
func (c *Client) Stations(ctx context.Context, q StationQuery) ([]models.Station, error) {
	data, err := c.StationXML(ctx, q)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	stations, err := ParseStationXML(data)
	if err != nil {
		return nil, fmt.Errorf("parse station response from %s: %w", c.provider, err)
	}
	for i := range stations {
		stations[i].Provider = c.provider
	}
	return stations, nil
}

// StationXML runs a station/1 query and returns the raw StationXML document,
// or nil when the service reported no matching data (HTTP 204/404).
func (c *Client) StationXML(ctx context.Context, q StationQuery) ([]byte, error) {
	params := url.Values{}
	setNonEmpty(params, "network", q.Network)
	setNonEmpty(params, "station", q.Station)
	setNonEmpty(params, "channel", q.Channel)
	if !q.NoBounds {
		params.Set("minlatitude", formatFloat(q.MinLat))
		params.Set("maxlatitude", formatFloat(q.MaxLat))
		params.Set("minlongitude", formatFloat(q.MinLon))
		params.Set("maxlongitude", formatFloat(q.MaxLon))
	}
	if !q.Start.IsZero() {
		params.Set("starttime", q.Start.UTC().Format(timeLayout))
	}
	if !q.End.IsZero() {
		params.Set("endtime", q.End.UTC().Format(timeLayout))
	}
	level := q.Level
	if level == "" {
		level = "channel"
	}
	params.Set("level", level)
	// Restricted metadata stays visible; access control is the provider's job.
	params.Set("includerestricted", "true")

	return c.get(ctx, "station", "/fdsnws/station/1/query?"+params.Encode())
}

// EventQuery filters an event/1 request.
type EventQuery struct {
	Start        time.Time
	End          time.Time
	MinMagnitude float64
	MaxMagnitude float64
	MinDepthKm   float64
	MaxDepthKm   float64
	MagLimits    bool
	DepthLimits  bool
}

// Events runs an event/1 query asking for all origins and magnitudes, so
// uncertainty and secondary-magnitude extraction have material to work with.
func (c *Client) Events(ctx context.Context, q EventQuery) ([]QuakeMLEvent, error) {
	params := url.Values{}
	if !q.Start.IsZero() {
		params.Set("starttime", q.Start.UTC().Format(timeLayout))
	}
	if !q.End.IsZero() {
		params.Set("endtime", q.End.UTC().Format(timeLayout))
	}
	if q.MagLimits {
		params.Set("minmagnitude", formatFloat(q.MinMagnitude))
		params.Set("maxmagnitude", formatFloat(q.MaxMagnitude))
	}
	if q.DepthLimits {
		params.Set("mindepth", formatFloat(q.MinDepthKm))
		params.Set("maxdepth", formatFloat(q.MaxDepthKm))
	}
	params.Set("includeallmagnitudes", "true")
	params.Set("includeallorigins", "true")

	data, err := c.get(ctx, "event", "/fdsnws/event/1/query?"+params.Encode())
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	events, err := ParseQuakeML(data)
	if err != nil {
		return nil, fmt.Errorf("parse event response from %s: %w", c.provider, err)
	}
	return events, nil
}

// BulkItem is one line of a dataselect bulk request.
type BulkItem struct {
	Network  string
	Station  string
	Location string
	Channel  string
	Start    time.Time
	End      time.Time
}

func (b BulkItem) line() string {
	loc := b.Location
	if loc == "" || loc == "*" {
		loc = "*"
	}
	return fmt.Sprintf("%s %s %s %s %s %s",
		b.Network, b.Station, loc, b.Channel,
		b.Start.UTC().Format(timeLayout), b.End.UTC().Format(timeLayout))
}

// Waveforms fetches miniSEED for a single channel/time window. A nil result
// with nil error means the service had no data for the window.
func (c *Client) Waveforms(ctx context.Context, item BulkItem) ([]byte, error) {
	params := url.Values{}
	params.Set("network", item.Network)
	params.Set("station", item.Station)
	loc := item.Location
	if loc == "" {
		loc = "*"
	}
	params.Set("location", loc)
	params.Set("channel", item.Channel)
	params.Set("starttime", item.Start.UTC().Format(timeLayout))
	params.Set("endtime", item.End.UTC().Format(timeLayout))
	return c.get(ctx, "dataselect", "/fdsnws/dataselect/1/query?"+params.Encode())
}

// WaveformsBulk POSTs a bulk request (one line per item) and returns the
// concatenated miniSEED response. Providers do not guarantee that record
// order matches request order.
func (c *Client) WaveformsBulk(ctx context.Context, items []BulkItem) ([]byte, error) {
	if len(items) == 0 {
		return nil, nil
	}
	var body strings.Builder
	for _, item := range items {
		body.WriteString(item.line())
		body.WriteByte('\n')
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/fdsnws/dataselect/1/query", strings.NewReader(body.String()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/plain")
	return c.do(req, "dataselect")
}

func (c *Client) get(ctx context.Context, service, pathAndQuery string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathAndQuery, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req, service)
}

func (c *Client) do(req *http.Request, service string) ([]byte, error) {
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	retry := c.retry
	retry.OnRetry = func(int) { recordRetry(c.provider, service) }

	call := func() ([]byte, error) {
		resp, err := DoWithRetry(req.Context(), c.httpClient, req, retry)
		if err != nil {
			recordRequest(c.provider, service, "error")
			return nil, fmt.Errorf("%s %s request: %w", c.provider, service, err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotFound:
			// FDSN "no data matched" answers.
			recordRequest(c.provider, service, "nodata")
			return nil, nil
		case resp.StatusCode != http.StatusOK:
			recordRequest(c.provider, service, "error")
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
			return nil, fmt.Errorf("%s %s request: HTTP %d: %s", c.provider, service, resp.StatusCode, strings.TrimSpace(string(snippet)))
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			recordRequest(c.provider, service, "error")
			return nil, fmt.Errorf("%s %s response read: %w", c.provider, service, err)
		}
		recordRequest(c.provider, service, "ok")
		return data, nil
	}

	if c.breaker == nil {
		return call()
	}
	var data []byte
	err := c.breaker.Call(func() error {
		var callErr error
		data, callErr = call()
		return callErr
	})
	return data, err
}

func setNonEmpty(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
