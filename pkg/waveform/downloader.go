package waveform

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/fdsn"
	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/logging"
	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/models"
	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/mseed"
	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/progress"
)

// DataSource is the slice of the FDSN client the downloader depends on.
type DataSource interface {
	Provider() string
	Waveforms(ctx context.Context, item fdsn.BulkItem) ([]byte, error)
	WaveformsBulk(ctx context.Context, items []fdsn.BulkItem) ([]byte, error)
}

// Credentials carry restricted-data authentication for a run.
type Credentials struct {
	Username string
	Password string
}

// SourceFactory builds a data source for a provider name.
type SourceFactory func(provider string, creds *Credentials) (DataSource, error)

// Downloader orchestrates waveform retrieval across providers. A single
// cooperative cancel flag, reset at the start of each run, lets a caller
// stop a run early; a cancelled run returns the partial result, not an
// error.
type Downloader struct {
	logger    logging.Logger
	newSource SourceFactory
	sink      progress.Sink
	cancelled atomic.Bool
}

// DownloaderOption customizes a Downloader.
type DownloaderOption func(*Downloader)

// WithSourceFactory replaces the FDSN-backed factory, mainly for tests.
func WithSourceFactory(f SourceFactory) DownloaderOption {
	return func(d *Downloader) { d.newSource = f }
}

// WithProgress attaches a progress sink.
func WithProgress(sink progress.Sink) DownloaderOption {
	return func(d *Downloader) {
		if sink != nil {
			d.sink = sink
		}
	}
}

// NewDownloader creates a downloader.
func NewDownloader(logger logging.Logger, opts ...DownloaderOption) *Downloader {
	d := &Downloader{logger: logger, sink: progress.Nop{}}
	d.newSource = func(provider string, creds *Credentials) (DataSource, error) {
		cfg := fdsn.Config{Provider: provider, Logger: logger}
		if creds != nil {
			cfg.Username = creds.Username
			cfg.Password = creds.Password
		}
		return fdsn.NewClient(cfg)
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Cancel requests early termination of the running download. A cancelled
// run returns whatever it accumulated so far.
func (d *Downloader) Cancel() { d.cancelled.Store(true) }

// Reset clears the cancel flag. Callers reusing a downloader call it before
// starting a new run.
func (d *Downloader) Reset() { d.cancelled.Store(false) }

// Request describes one download run.
type Request struct {
	Events       []models.Event
	Stations     []models.Station
	ArrivalTimes models.ArrivalTimes

	TimeBefore  float64 // seconds before the P window anchor
	TimeAfter   float64 // seconds after the P window anchor
	ChannelSpec string
	Location    string

	Bulk       bool
	ChunkSize  int
	MaxRetries int
	RetryDelay time.Duration

	// FallbackProvider serves stations that carry no provider of their own.
	FallbackProvider string
	Credentials      *Credentials

	CleanGaps bool
	FillValue float64
	MaxGapS   float64
}

// requestItem is one resolved (channel, window) tuple with the event it was
// built for.
type requestItem struct {
	fdsn.BulkItem
	eventID string
}

// Download runs the orchestration: channel resolution, windowing, provider
// grouping, chunked bulk or individual retrieval, and optional gap cleanup.
// Network failures degrade to logged skips; only pre-flight problems (no
// request list at all) are an error.
func (d *Downloader) Download(ctx context.Context, req Request) (*Collection, error) {
	if req.ChunkSize <= 0 {
		req.ChunkSize = 50
	}
	if req.MaxRetries <= 0 {
		req.MaxRetries = 3
	}
	if req.RetryDelay <= 0 {
		req.RetryDelay = 5 * time.Second
	}
	// Negative offsets would invert the request window.
	if req.TimeBefore < 0 {
		req.TimeBefore = 0
	}
	if req.TimeAfter < 0 {
		req.TimeAfter = 0
	}

	expanded := ExpandChannels(req.ChannelSpec)
	if len(expanded) == 0 {
		return nil, fmt.Errorf("channel spec %q resolves to no channels", req.ChannelSpec)
	}

	groups, order, err := d.buildRequests(req, expanded)
	if err != nil {
		return nil, err
	}

	collection := &Collection{}
	sources := make(map[string]DataSource)
	for _, provider := range order {
		source, ok := sources[provider]
		if !ok {
			source, err = d.newSource(provider, req.Credentials)
			if err != nil {
				d.logger.WithFields(logging.Fields{"provider": provider, "error": err}).Error("Skipping provider, cannot build client")
				continue
			}
			sources[provider] = source
		}
		if req.Bulk {
			d.downloadBulk(ctx, source, groups[provider], req, collection)
		} else {
			d.downloadIndividual(ctx, source, groups[provider], req, collection)
		}
		if d.cancelled.Load() {
			break
		}
	}

	if req.CleanGaps {
		collection.Traces = CleanGaps(Merge(collection.Traces, req.FillValue), req.MaxGapS)
	}
	return collection, nil
}

// buildRequests resolves channels and windows for every event-station pair
// and groups the tuples by provider, keeping first-seen provider order.
func (d *Downloader) buildRequests(req Request, expanded []string) (map[string][]requestItem, []string, error) {
	groups := make(map[string][]requestItem)
	var order []string

	for _, ev := range req.Events {
		origin, err := models.ParseEventTime(ev.Time)
		if err != nil {
			d.logger.WithFields(logging.Fields{"event": ev.EventID, "error": err}).Warn("Skipping event with unparseable origin time")
			continue
		}
		for _, st := range req.Stations {
			provider := st.Provider
			if provider == "" {
				provider = req.FallbackProvider
			}
			if provider == "" {
				d.logger.WithFields(logging.Fields{"station": st.Key()}).Warn("Skipping station without provider")
				continue
			}

			offset := 0.0
			if table, ok := req.ArrivalTimes[models.ArrivalKey(ev.EventID, st.Network, st.Station)]; ok {
				offset = table["P"]
			}
			anchor := origin.Add(time.Duration(offset * float64(time.Second)))
			start := anchor.Add(-time.Duration(req.TimeBefore * float64(time.Second)))
			end := anchor.Add(time.Duration(req.TimeAfter * float64(time.Second)))

			for _, cha := range resolveChannels(st, expanded) {
				if _, seen := groups[provider]; !seen {
					order = append(order, provider)
				}
				groups[provider] = append(groups[provider], requestItem{
					BulkItem: fdsn.BulkItem{
						Network:  st.Network,
						Station:  st.Station,
						Location: req.Location,
						Channel:  cha,
						Start:    start,
						End:      end,
					},
					eventID: ev.EventID,
				})
			}
		}
	}

	if len(order) == 0 {
		return nil, nil, fmt.Errorf("no downloadable requests could be constructed")
	}
	return groups, order, nil
}

// downloadBulk issues chunked bulk requests. Event tagging is positional by
// stream run within the chunk, which is an approximation: bulk responses are
// not guaranteed to preserve request order.
func (d *Downloader) downloadBulk(ctx context.Context, source DataSource, items []requestItem, req Request, collection *Collection) {
	taskID := fmt.Sprintf("bulk-%s", source.Provider())
	chunks := (len(items) + req.ChunkSize - 1) / req.ChunkSize
	d.sink.CreateTask(taskID, chunks, fmt.Sprintf("Bulk download from %s", source.Provider()))

	success := true
	for start := 0; start < len(items); start += req.ChunkSize {
		if d.cancelled.Load() {
			d.sink.CompleteTask(taskID, false, "cancelled")
			return
		}
		end := start + req.ChunkSize
		if end > len(items) {
			end = len(items)
		}
		chunk := items[start:end]

		data, err := d.withRetry(ctx, req, func() ([]byte, error) {
			return source.WaveformsBulk(ctx, bulkItems(chunk))
		})
		if err != nil {
			d.logger.WithFields(logging.Fields{
				"provider": source.Provider(),
				"chunk":    start / req.ChunkSize,
				"error":    err,
			}).Error("Bulk chunk failed after retries, skipping")
			success = false
			d.sink.IncrementTask(taskID, 1)
			continue
		}
		d.ingestBulk(data, chunk, collection)
		d.sink.IncrementTask(taskID, 1)
	}
	d.sink.CompleteTask(taskID, success, "")
}

func (d *Downloader) ingestBulk(data []byte, chunk []requestItem, collection *Collection) {
	if data == nil {
		return
	}
	records, err := mseed.Decode(data)
	if err != nil {
		d.logger.WithFields(logging.Fields{"error": err}).Error("Discarding undecodable bulk response")
		return
	}
	traces := tracesFromRecords(records)
	run := -1
	lastID := ""
	for i := range traces {
		if traces[i].SourceID() != lastID {
			run++
			lastID = traces[i].SourceID()
		}
		idx := run
		if idx >= len(chunk) {
			idx = len(chunk) - 1
		}
		traces[i].EventID = chunk[idx].eventID
		collection.Add(traces[i])
	}
}

// downloadIndividual requests one channel window at a time. Tagging is exact
// in this mode.
func (d *Downloader) downloadIndividual(ctx context.Context, source DataSource, items []requestItem, req Request, collection *Collection) {
	taskID := fmt.Sprintf("individual-%s", source.Provider())
	d.sink.CreateTask(taskID, len(items), fmt.Sprintf("Download from %s", source.Provider()))

	lastEvent := ""
	for _, item := range items {
		if item.eventID != lastEvent {
			// Cancellation is checked at event boundaries in this mode.
			if d.cancelled.Load() {
				d.sink.CompleteTask(taskID, false, "cancelled")
				return
			}
			lastEvent = item.eventID
		}
		data, err := d.withRetry(ctx, req, func() ([]byte, error) {
			return source.Waveforms(ctx, item.BulkItem)
		})
		if err != nil {
			d.logger.WithFields(logging.Fields{
				"provider": source.Provider(),
				"stream":   fmt.Sprintf("%s.%s.%s.%s", item.Network, item.Station, item.Location, item.Channel),
				"error":    err,
			}).Error("Channel download failed after retries, skipping")
			d.sink.IncrementTask(taskID, 1)
			continue
		}
		if data != nil {
			records, err := mseed.Decode(data)
			if err != nil {
				d.logger.WithFields(logging.Fields{"error": err}).Error("Discarding undecodable response")
			} else {
				for _, tr := range tracesFromRecords(records) {
					tr.EventID = item.eventID
					collection.Add(tr)
				}
			}
		}
		d.sink.IncrementTask(taskID, 1)
	}
	d.sink.CompleteTask(taskID, true, "")
}

// withRetry runs fn up to MaxRetries times with a fixed pause between
// attempts.
func (d *Downloader) withRetry(ctx context.Context, req Request, fn func() ([]byte, error)) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < req.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(req.RetryDelay):
			}
		}
		data, err := fn()
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func bulkItems(chunk []requestItem) []fdsn.BulkItem {
	out := make([]fdsn.BulkItem, len(chunk))
	for i, item := range chunk {
		out[i] = item.BulkItem
	}
	return out
}
