// internal/service/wordcloud/service.go

package wordcloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trendcloud/internal/domain/hashtag"
	"trendcloud/internal/metrics"
)

// Common errors
var (
	ErrNoSnapshot       = hashtag.ErrNoSnapshot
	ErrPageOutOfRange   = errors.New("page out of range")
	ErrAllSourcesFailed = errors.New("all sources failed to load")
)

// SnapshotCache stores the latest snapshot outside the process
type SnapshotCache interface {
	SaveSnapshot(ctx context.Context, s hashtag.Snapshot) error
	// LoadSnapshot returns ErrNoSnapshot when nothing is cached
	LoadSnapshot(ctx context.Context) (*hashtag.Snapshot, error)
}

// EventPublisher publishes refresh events; *nats.Conn satisfies it
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

// ServiceConfig contains configuration for the word cloud service
type ServiceConfig struct {
	RefreshInterval time.Duration
	EventsTopic     string
	DefaultCanvas   hashtag.Canvas
	Aggregator      AggregatorConfig
	Layout          LayoutConfig
}

// AggregatedEvent is published after every installed snapshot
type AggregatedEvent struct {
	Type        string         `json:"type"`
	SnapshotID  string         `json:"snapshot_id"`
	Generation  uint64         `json:"generation"`
	GeneratedAt time.Time      `json:"generated_at"`
	Report      hashtag.Report `json:"report"`
}

// Service implements the hashtag.Service interface
type Service struct {
	sources    []hashtag.SourceLoader
	aggregator *Aggregator
	layout     *LayoutEngine
	cache      SnapshotCache
	eventBus   EventPublisher
	metrics    *metrics.Metrics
	config     ServiceConfig
	log        *zap.Logger

	mu         sync.RWMutex
	current    *hashtag.Snapshot
	generation uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService creates a new word cloud service. cache, eventBus and m may be nil.
func NewService(
	sources []hashtag.SourceLoader,
	cache SnapshotCache,
	eventBus EventPublisher,
	m *metrics.Metrics,
	config ServiceConfig,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if config.EventsTopic == "" {
		config.EventsTopic = "wordcloud"
	}
	if config.DefaultCanvas.Width <= 0 || config.DefaultCanvas.Height <= 0 {
		config.DefaultCanvas = hashtag.Canvas{Width: 1000, Height: 600}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Service{
		sources:    sources,
		aggregator: NewAggregator(config.Aggregator, log.Named("aggregator")),
		layout:     NewLayoutEngine(config.Layout),
		cache:      cache,
		eventBus:   eventBus,
		metrics:    m,
		config:     config,
		log:        log,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start warms the snapshot from the cache, refreshes once and then refreshes
// on every RefreshInterval until Stop is called
func (s *Service) Start(ctx context.Context) error {
	if s.cache != nil {
		cached, err := s.cache.LoadSnapshot(ctx)
		switch {
		case err == nil:
			// Any refresh in this process supersedes the cached copy
			cached.Generation = 0
			s.install(cached)
			s.log.Info("Warmed snapshot from cache",
				zap.String("snapshot_id", cached.ID),
				zap.Int("entries", len(cached.Entries)),
			)
		case errors.Is(err, ErrNoSnapshot):
		default:
			s.log.Warn("Failed to load cached snapshot", zap.Error(err))
		}
	}

	if _, err := s.Refresh(ctx); err != nil {
		s.log.Error("Initial refresh failed", zap.Error(err))
	}

	if s.config.RefreshInterval > 0 {
		s.wg.Add(1)
		go s.refreshLoop()
	}

	return nil
}

// refreshLoop refreshes the snapshot periodically
func (s *Service) refreshLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Refresh(s.ctx); err != nil {
				s.log.Error("Periodic refresh failed", zap.Error(err))
			}
		}
	}
}

// Stop gracefully stops periodic refreshes
func (s *Service) Stop(ctx context.Context) error {
	s.cancel()

	c := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(c)
	}()

	select {
	case <-c:
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

// Refresh reloads every source and installs a new snapshot. A refresh that
// completes after a newer one started does not replace the newer snapshot.
func (s *Service) Refresh(ctx context.Context) (*hashtag.Snapshot, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	docs, err := s.loadSources(ctx)
	if err != nil {
		s.countRefresh("failed")
		return nil, err
	}

	started := time.Now()
	entries, report := s.aggregator.AggregateWithReport(docs)
	elapsed := time.Since(started)

	snap := &hashtag.Snapshot{
		ID:          uuid.New().String(),
		Generation:  gen,
		GeneratedAt: time.Now().UTC(),
		Entries:     entries,
		Report:      report,
	}

	if s.metrics != nil {
		s.metrics.AggregationDuration.Observe(elapsed.Seconds())
		s.metrics.DroppedRecords.Add(float64(report.DroppedRecords))
		s.metrics.SkippedSections.Add(float64(report.SkippedSections + report.SkippedSources))
	}

	if !s.install(snap) {
		s.countRefresh("superseded")
		s.log.Debug("Discarding superseded snapshot", zap.Uint64("generation", gen))
		return s.Snapshot(ctx)
	}
	s.countRefresh("installed")

	s.log.Info("Installed snapshot",
		zap.String("snapshot_id", snap.ID),
		zap.Uint64("generation", gen),
		zap.Int("entries", len(entries)),
		zap.Duration("aggregation", elapsed),
	)

	if s.cache != nil {
		if err := s.cache.SaveSnapshot(ctx, *snap); err != nil {
			s.log.Warn("Failed to cache snapshot", zap.Error(err))
		}
	}

	if err := s.publishAggregatedEvent(snap); err != nil {
		s.log.Warn("Failed to publish aggregated event", zap.Error(err))
	}

	return snap, nil
}

// loadSources loads all sources concurrently and concatenates the documents
// in loader order
func (s *Service) loadSources(ctx context.Context) ([]hashtag.Document, error) {
	results := make([][]hashtag.Document, len(s.sources))
	errs := make([]error, len(s.sources))

	var wg sync.WaitGroup
	for i, src := range s.sources {
		wg.Add(1)
		go func(i int, src hashtag.SourceLoader) {
			defer wg.Done()
			results[i], errs[i] = src.Load(ctx)
		}(i, src)
	}
	wg.Wait()

	var docs []hashtag.Document
	failed := 0
	for i, src := range s.sources {
		if errs[i] != nil {
			failed++
			s.log.Warn("Failed to load source", zap.String("source", src.Name()), zap.Error(errs[i]))
			if s.metrics != nil {
				s.metrics.SourceLoadErrors.WithLabelValues(src.Name()).Inc()
			}
			continue
		}
		docs = append(docs, results[i]...)
	}

	if len(s.sources) > 0 && failed == len(s.sources) {
		return nil, ErrAllSourcesFailed
	}
	return docs, nil
}

// install replaces the current snapshot unless a newer one is already held
func (s *Service) install(snap *hashtag.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && snap.Generation < s.current.Generation {
		return false
	}
	s.current = snap
	if s.metrics != nil {
		s.metrics.AggregatedEntries.Set(float64(len(snap.Entries)))
	}
	return true
}

func (s *Service) countRefresh(outcome string) {
	if s.metrics != nil {
		s.metrics.RefreshesTotal.WithLabelValues(outcome).Inc()
	}
}

// publishAggregatedEvent publishes a snapshot installed event
func (s *Service) publishAggregatedEvent(snap *hashtag.Snapshot) error {
	if s.eventBus == nil {
		return nil
	}

	data, err := json.Marshal(AggregatedEvent{
		Type:        "aggregated",
		SnapshotID:  snap.ID,
		Generation:  snap.Generation,
		GeneratedAt: snap.GeneratedAt,
		Report:      snap.Report,
	})
	if err != nil {
		return fmt.Errorf("error marshaling aggregated event: %w", err)
	}

	return s.eventBus.Publish(AggregatedSubject(s.config.EventsTopic), data)
}

// AggregatedSubject is the event bus subject for installed snapshots
func AggregatedSubject(topic string) string {
	return fmt.Sprintf("%s.aggregated", topic)
}

// Snapshot returns the current snapshot
func (s *Service) Snapshot(ctx context.Context) (*hashtag.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, ErrNoSnapshot
	}
	return s.current, nil
}

// Query filters and sorts the current snapshot
func (s *Service) Query(ctx context.Context, q hashtag.Query) ([]hashtag.Entry, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return FilterAndSort(snap.Entries, q), nil
}

// Cloud lays out one zero-based page of the filtered snapshot
func (s *Service) Cloud(ctx context.Context, q hashtag.Query, canvas hashtag.Canvas, page int) (*hashtag.Page, error) {
	entries, err := s.Query(ctx, q)
	if err != nil {
		return nil, err
	}

	if !hashtag.ValidDimension(canvas.Width) {
		canvas.Width = s.config.DefaultCanvas.Width
	}
	if !hashtag.ValidDimension(canvas.Height) {
		canvas.Height = s.config.DefaultCanvas.Height
	}

	total := s.layout.PageCount(len(entries))
	if page < 0 || (total > 0 && page >= total) || (total == 0 && page > 0) {
		return nil, ErrPageOutOfRange
	}

	started := time.Now()
	result := s.layout.LayoutPage(entries, canvas, q.SortBy, page)
	if s.metrics != nil {
		s.metrics.LayoutDuration.Observe(time.Since(started).Seconds())
		s.metrics.LayoutFallbacks.Add(float64(result.Fallback))
	}

	return &result, nil
}

// Entry returns a single entry of the current snapshot by text
func (s *Service) Entry(ctx context.Context, text string) (*hashtag.Entry, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for i := range snap.Entries {
		if snap.Entries[i].Text == text {
			e := snap.Entries[i]
			return &e, nil
		}
	}
	return nil, hashtag.ErrNotFound
}
