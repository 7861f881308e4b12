// Package knowledge flattens the tabular snapshot into embedded
// natural-language entries and answers cosine-similarity lookups over them.
package knowledge

import (
	"context"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/campusbot/internal/domain"
	"github.com/kailas-cloud/campusbot/internal/repository/tabular"
)

// Scored is a search hit: an entry with its similarity to the query.
type Scored struct {
	Entry domain.KnowledgeEntry
	Score float64
}

// Index is an immutable flat index over one snapshot. Entries keep the
// fixed category order: students, teachers, guest teachers, schedule,
// subjects, faqs, rooms.
type Index struct {
	entries []domain.KnowledgeEntry
}

// NewIndex builds an index directly from entries. Used by Build and by tests.
func NewIndex(entries []domain.KnowledgeEntry) *Index {
	return &Index{entries: entries}
}

// Len returns the number of entries, including unrankable ones.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Search returns the top k entries by cosine similarity to query, in
// descending score order with insertion order preserved on ties. Entries
// with empty vectors never participate. An empty filter matches everything.
func (ix *Index) Search(query []float32, k int, filter domain.Category) []Scored {
	if k <= 0 || len(query) == 0 {
		return nil
	}

	scored := make([]Scored, 0, len(ix.entries))
	for _, e := range ix.entries {
		if filter != "" && e.Category != filter {
			continue
		}
		if !e.Rankable() {
			continue
		}
		scored = append(scored, Scored{Entry: e, Score: CosineSimilarity(query, e.Embedding)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// CosineSimilarity returns the cosine of the angle between a and b.
// A zero-norm pair scores 0; callers exclude empty vectors before ranking,
// this guards the division explicitly.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Build flattens every record of the snapshot into an embedded entry.
// Embedding calls run with bounded concurrency; every call resolves (or is
// recorded as failed with an empty vector) before Build returns, so callers
// can publish the result atomically. A failed embedding keeps its entry but
// leaves it unrankable.
func Build(
	ctx context.Context,
	snap *tabular.Snapshot,
	embedder domain.Embedder,
	concurrency int,
	logger *zap.Logger,
) *Index {
	if concurrency <= 0 {
		concurrency = 1
	}

	var entries []domain.KnowledgeEntry
	for _, cat := range domain.Categories() {
		for _, rec := range snap.Collection(cat) {
			entries = append(entries, domain.KnowledgeEntry{
				Text:     Describe(cat, rec),
				Record:   rec,
				Category: cat,
			})
		}
	}

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	var failed sync.Map

	for i := range entries {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			res, err := embedder.Embed(ctx, entries[i].Text)
			if err != nil {
				failed.Store(i, err)
				return
			}
			entries[i].Embedding = res.Embedding
		}(i)
	}
	wg.Wait()

	failed.Range(func(key, value any) bool {
		i := key.(int)
		logger.Warn("Embedding failed, entry excluded from ranking",
			zap.String("category", string(entries[i].Category)),
			zap.String("text", entries[i].Text),
			zap.Error(value.(error)),
		)
		return true
	})

	return NewIndex(entries)
}
