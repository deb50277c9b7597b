// Package stations implements multi-provider station discovery.
package stations

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/config"
	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/fdsn"
	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/geodesy"
	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/logging"
	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/models"
)

// Inventory is the slice of the FDSN client the station service depends on.
type Inventory interface {
	Provider() string
	Stations(ctx context.Context, q fdsn.StationQuery) ([]models.Station, error)
	StationXML(ctx context.Context, q fdsn.StationQuery) ([]byte, error)
}

// InventoryFactory builds an inventory handle for a provider name.
type InventoryFactory func(provider string) (Inventory, error)

// Service fans station queries out across FDSN data centers.
type Service struct {
	logger       logging.Logger
	newInventory InventoryFactory

	workers         int
	providerTimeout time.Duration
	attempts        int
	backoffBase     time.Duration
}

// Option customizes a Service.
type Option func(*Service)

// WithInventoryFactory replaces the FDSN-backed factory, mainly for tests.
func WithInventoryFactory(f InventoryFactory) Option {
	return func(s *Service) { s.newInventory = f }
}

// WithWorkers bounds the provider fan-out.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithRetryPolicy overrides the per-provider attempt count and backoff base.
func WithRetryPolicy(attempts int, base time.Duration) Option {
	return func(s *Service) {
		if attempts > 0 {
			s.attempts = attempts
		}
		if base > 0 {
			s.backoffBase = base
		}
	}
}

// WithProviderTimeout overrides the per-provider deadline.
func WithProviderTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.providerTimeout = d
		}
	}
}

// NewService creates the station service with the default policy: four
// concurrent providers, three attempts each with exponential backoff from two
// seconds, and a two-minute deadline per provider.
func NewService(logger logging.Logger, opts ...Option) *Service {
	s := &Service{
		logger:          logger,
		workers:         config.GetEnvInt("STATION_WORKERS", 4),
		providerTimeout: config.GetEnvDuration("STATION_PROVIDER_TIMEOUT", 120*time.Second),
		attempts:        config.GetEnvInt("STATION_RETRY_ATTEMPTS", 3),
		backoffBase:     2 * time.Second,
	}
	s.newInventory = func(provider string) (Inventory, error) {
		// Retries happen at this layer by re-issuing the whole provider
		// query, so the underlying client runs without its own retry loop.
		return fdsn.NewClient(fdsn.Config{
			Provider:    provider,
			Logger:      logger,
			Timeout:     s.providerTimeout,
			RetryConfig: &fdsn.RetryConfig{RetryFunc: fdsn.DefaultShouldRetry},
		})
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SearchRequest is a region-of-interest station search.
type SearchRequest struct {
	Providers []string
	MinLat    float64
	MaxLat    float64
	MinLon    float64
	MaxLon    float64
	Networks  string
	Stations  string
	Channels  string
	Start     time.Time
	End       time.Time
	// IncludeClosed keeps stations whose end date precedes the request
	// window instead of constraining the query in time.
	IncludeClosed bool
}

// SearchByROI queries every provider concurrently and merges the results.
// Provider failures degrade to zero stations from that provider; duplicates
// are collapsed by NET.STA keeping the first-seen record, with later
// providers recorded as alternates.
func (s *Service) SearchByROI(ctx context.Context, req SearchRequest) ([]models.Station, error) {
	if len(req.Providers) == 0 {
		s.logger.Warn("Station search invoked without providers")
		return nil, nil
	}

	query := fdsn.StationQuery{
		Network: req.Networks,
		Station: req.Stations,
		Channel: req.Channels,
		MinLat:  req.MinLat,
		MaxLat:  req.MaxLat,
		MinLon:  req.MinLon,
		MaxLon:  req.MaxLon,
		Level:   "channel",
	}
	if !req.IncludeClosed {
		query.Start = req.Start
		query.End = req.End
	}

	perProvider := make([][]models.Station, len(req.Providers))
	var group errgroup.Group
	group.SetLimit(s.workers)
	for i, provider := range req.Providers {
		i, provider := i, provider
		group.Go(func() error {
			result, err := s.queryProvider(ctx, provider, query)
			if err != nil {
				s.logger.WithFields(logging.Fields{
					"provider": provider,
					"error":    err,
				}).Error("Provider station query failed, contributing zero stations")
				return nil
			}
			perProvider[i] = result
			return nil
		})
	}
	_ = group.Wait()

	merged := dedupe(perProvider)
	s.logger.WithFields(logging.Fields{
		"providers": len(req.Providers),
		"stations":  len(merged),
	}).Info("Station search complete")
	return merged, nil
}

// queryProvider runs one provider query with the service retry policy under
// the per-provider deadline.
func (s *Service) queryProvider(ctx context.Context, provider string, query fdsn.StationQuery) ([]models.Station, error) {
	inv, err := s.newInventory(provider)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < s.attempts; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(s.backoffBase) * math.Pow(2, float64(attempt-1)))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
		result, err := inv.Stations(ctx, query)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("after %d attempts: %w", s.attempts, lastErr)
}

// dedupe merges per-provider result sets in provider order, collapsing by
// NET.STA. The first-seen record wins; later duplicates only contribute
// their provider name.
func dedupe(perProvider [][]models.Station) []models.Station {
	var merged []models.Station
	index := make(map[string]int)
	for _, result := range perProvider {
		for _, station := range result {
			key := station.Key()
			if at, seen := index[key]; seen {
				kept := &merged[at]
				if station.Provider != kept.Provider && !contains(kept.Providers, station.Provider) {
					kept.Providers = append(kept.Providers, station.Provider)
				}
				continue
			}
			index[key] = len(merged)
			merged = append(merged, station)
		}
	}
	return merged
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// EventDistanceRequest is a station search by distance ring around an event.
type EventDistanceRequest struct {
	Providers  []string
	EventLat   float64
	EventLon   float64
	MinDistDeg float64
	MaxDistDeg float64
	Networks   string
	Stations   string
	Channels   string
	Start      time.Time
	End        time.Time
}

// SearchByEventDistance derives a bounding box from the outer radius, runs
// the ROI search, then keeps stations inside the closed distance interval,
// annotating distance and azimuths relative to the event.
func (s *Service) SearchByEventDistance(ctx context.Context, req EventDistanceRequest) ([]models.Station, error) {
	minLon, minLat, maxLon, maxLat := geodesy.BoundingBoxForRadius(req.EventLat, req.EventLon, req.MaxDistDeg)
	candidates, err := s.SearchByROI(ctx, SearchRequest{
		Providers: req.Providers,
		MinLat:    minLat,
		MaxLat:    maxLat,
		MinLon:    minLon,
		MaxLon:    maxLon,
		Networks:  req.Networks,
		Stations:  req.Stations,
		Channels:  req.Channels,
		Start:     req.Start,
		End:       req.End,
	})
	if err != nil {
		return nil, err
	}

	var out []models.Station
	for _, station := range candidates {
		dist := geodesy.AngularDistance(req.EventLat, req.EventLon, station.Latitude, station.Longitude)
		if dist < req.MinDistDeg || dist > req.MaxDistDeg {
			continue
		}
		_, az, baz := geodesy.DistanceAzimuth(req.EventLat, req.EventLon, station.Latitude, station.Longitude)
		station.DistanceDeg = &dist
		station.Azimuth = &az
		station.BackAzimuth = &baz
		out = append(out, station)
	}
	return out, nil
}

// metadataSaver bounds concurrent per-station metadata downloads.
const metadataWorkers = 4

// SaveRequest configures the per-station metadata export.
type SaveRequest struct {
	OutputDir string
	Level     string
	Timeout   time.Duration
	Start     time.Time
	End       time.Time
	Channels  string
}

// SaveStationXML writes one StationXML file per unique station under the
// request's output directory, each fetched from that station's own provider.
// Per-station failures are logged and skipped; the count of files written is
// returned.
func (s *Service) SaveStationXML(ctx context.Context, list []models.Station, req SaveRequest) (int, error) {
	if req.Level == "" {
		req.Level = "response"
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return 0, err
	}

	seen := make(map[string]bool)
	var mu sync.Mutex
	saved := 0

	var group errgroup.Group
	group.SetLimit(metadataWorkers)
	for _, station := range list {
		if seen[station.Key()] {
			continue
		}
		seen[station.Key()] = true
		station := station
		group.Go(func() error {
			if err := s.saveOne(ctx, station, req); err != nil {
				s.logger.WithFields(logging.Fields{
					"station": station.Key(),
					"error":   err,
				}).Error("Station metadata save failed")
				return nil
			}
			mu.Lock()
			saved++
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()
	return saved, nil
}

func (s *Service) saveOne(ctx context.Context, station models.Station, req SaveRequest) error {
	inv, err := s.newInventory(station.Provider)
	if err != nil {
		return err
	}
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}
	data, err := inv.StationXML(ctx, fdsn.StationQuery{
		Network:  station.Network,
		Station:  station.Station,
		Channel:  req.Channels,
		Start:    req.Start,
		End:      req.End,
		Level:    req.Level,
		NoBounds: true,
	})
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("no metadata returned")
	}
	name := fmt.Sprintf("%s.%s.xml", station.Network, station.Station)
	return os.WriteFile(filepath.Join(req.OutputDir, name), data, 0o644)
}
