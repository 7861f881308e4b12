// Package reload rebuilds the tabular snapshot and knowledge index from the
// sheet source and publishes the pair atomically.
package reload

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/campusbot/internal/domain"
	"github.com/kailas-cloud/campusbot/internal/knowledge"
	"github.com/kailas-cloud/campusbot/internal/metrics"
	"github.com/kailas-cloud/campusbot/internal/repository/tabular"
)

// Source is the consumer contract for the tabular data source.
type Source interface {
	LoadAll(ctx context.Context) *tabular.Snapshot
}

// Service performs full reloads. Concurrent readers keep seeing the old
// state until the new one is completely built.
type Service struct {
	source      Source
	embedder    domain.Embedder
	store       *knowledge.Store
	concurrency int
	logger      *zap.Logger
}

// New creates a reload service. concurrency bounds the parallel embedding
// calls during an index build.
func New(
	source Source,
	embedder domain.Embedder,
	store *knowledge.Store,
	concurrency int,
	logger *zap.Logger,
) *Service {
	return &Service{
		source:      source,
		embedder:    embedder,
		store:       store,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Reload fetches every sheet, rebuilds the index, and swaps the published
// state. Per-category fetch failures come back as empty collections and
// never abort the reload.
func (s *Service) Reload(ctx context.Context) *knowledge.State {
	snap := s.source.LoadAll(ctx)

	counts := snap.Counts()
	s.logger.Info("Loaded sheets",
		zap.Int("students", counts.Students),
		zap.Int("teachers", counts.Teachers),
		zap.Int("guest_teachers", counts.GuestTeachers),
		zap.Int("schedule", counts.Schedule),
		zap.Int("subjects", counts.Subjects),
		zap.Int("faqs", counts.FAQs),
		zap.Int("rooms", counts.Rooms),
	)

	index := knowledge.Build(ctx, snap, s.embedder, s.concurrency, s.logger)

	state := &knowledge.State{Snapshot: snap, Index: index}
	s.store.Publish(state)

	for _, cat := range domain.Categories() {
		metrics.KnowledgeEntries.WithLabelValues(string(cat)).
			Set(float64(len(snap.Collection(cat))))
	}

	s.logger.Info("Knowledge base built", zap.Int("entries", index.Len()))
	return state
}
