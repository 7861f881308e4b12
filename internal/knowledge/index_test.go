package knowledge

import (
	"context"
	"math"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/campusbot/internal/domain"
	"github.com/kailas-cloud/campusbot/internal/repository/tabular"
)

func entry(text string, cat domain.Category, vec []float32) domain.KnowledgeEntry {
	return domain.KnowledgeEntry{Text: text, Category: cat, Embedding: vec}
}

func TestSearch_ExcludesEmptyVectors(t *testing.T) {
	ix := NewIndex([]domain.KnowledgeEntry{
		entry("a", domain.CategoryStudent, []float32{1, 0}),
		entry("failed", domain.CategoryStudent, nil),
		entry("b", domain.CategoryStudent, []float32{0.9, 0.1}),
	})

	results := ix.Search([]float32{1, 0}, 10, "")
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Entry.Text == "failed" {
			t.Error("entry with empty vector must never be returned")
		}
	}
}

func TestSearch_TopKDescendingStable(t *testing.T) {
	// "tie1" and "tie2" have identical vectors; insertion order must hold.
	ix := NewIndex([]domain.KnowledgeEntry{
		entry("far", domain.CategoryRoom, []float32{0, 1}),
		entry("tie1", domain.CategoryRoom, []float32{1, 1}),
		entry("tie2", domain.CategoryRoom, []float32{1, 1}),
		entry("exact", domain.CategoryRoom, []float32{1, 0}),
	})

	results := ix.Search([]float32{1, 0}, 3, "")
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Entry.Text != "exact" {
		t.Errorf("results[0] = %q, want \"exact\"", results[0].Entry.Text)
	}
	if results[1].Entry.Text != "tie1" || results[2].Entry.Text != "tie2" {
		t.Errorf("tie order not stable: %q, %q", results[1].Entry.Text, results[2].Entry.Text)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("scores not descending at %d: %v > %v", i, results[i].Score, results[i-1].Score)
		}
	}

	if got := ix.Search([]float32{1, 0}, 2, ""); len(got) != 2 {
		t.Errorf("k=2 returned %d results", len(got))
	}
}

func TestSearch_CategoryFilter(t *testing.T) {
	ix := NewIndex([]domain.KnowledgeEntry{
		entry("student", domain.CategoryStudent, []float32{1, 0}),
		entry("room", domain.CategoryRoom, []float32{1, 0}),
	})

	results := ix.Search([]float32{1, 0}, 10, domain.CategoryRoom)
	if len(results) != 1 || results[0].Entry.Text != "room" {
		t.Fatalf("filter returned %+v", results)
	}
}

func TestCosineSimilarity(t *testing.T) {
	v := []float32{0.3, -0.4, 0.5}

	if got := CosineSimilarity(v, v); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("sim(v, v) = %v, want 1.0", got)
	}

	a := []float32{1, 2, 3}
	b := []float32{-2, 0.5, 1}
	if CosineSimilarity(a, b) != CosineSimilarity(b, a) {
		t.Error("similarity must be symmetric")
	}

	if got := CosineSimilarity([]float32{0, 0}, []float32{1, 1}); got != 0 {
		t.Errorf("zero-norm pair = %v, want 0", got)
	}
}

type stubEmbedder struct {
	mu      sync.Mutex
	calls   int
	failOn  string
	vectors map[string][]float32
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if text == s.failOn {
		return domain.EmbeddingResult{}, domain.ErrEmbeddingProviderError
	}
	if v, ok := s.vectors[text]; ok {
		return domain.EmbeddingResult{Embedding: v}, nil
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 0}}, nil
}

func TestBuild_FixedOrderAndFailureIsolation(t *testing.T) {
	snap := &tabular.Snapshot{
		Students: []domain.Record{{"number": "1", "name": "สมชาย"}},
		Teachers: []domain.Record{{"name": "ฐาปนันท์", "specialize": "Network"}},
		Rooms:    []domain.Record{{"room_number": "735", "building": "7"}},
	}

	emb := &stubEmbedder{
		failOn: Describe(domain.CategoryTeacher, snap.Teachers[0]),
	}
	ix := Build(context.Background(), snap, emb, 2, zap.NewNop())

	if ix.Len() != 3 {
		t.Fatalf("index has %d entries, want 3", ix.Len())
	}
	// Entry order follows the fixed category order regardless of which
	// embedding call finished first.
	if ix.entries[0].Category != domain.CategoryStudent ||
		ix.entries[1].Category != domain.CategoryTeacher ||
		ix.entries[2].Category != domain.CategoryRoom {
		t.Errorf("unexpected category order: %v, %v, %v",
			ix.entries[0].Category, ix.entries[1].Category, ix.entries[2].Category)
	}

	if ix.entries[1].Rankable() {
		t.Error("failed embedding must leave the entry unrankable")
	}
	if !ix.entries[0].Rankable() || !ix.entries[2].Rankable() {
		t.Error("embedding failure must not spill over to other entries")
	}

	results := ix.Search([]float32{1, 0}, 10, "")
	if len(results) != 2 {
		t.Errorf("search returned %d entries, want 2", len(results))
	}
}

func TestStore_AtomicSwapUnderConcurrentReads(t *testing.T) {
	store := NewStore()

	old := &State{
		Snapshot: &tabular.Snapshot{Students: []domain.Record{{"name": "a"}}},
		Index: NewIndex([]domain.KnowledgeEntry{
			entry("a", domain.CategoryStudent, []float32{1}),
		}),
	}
	store.Publish(old)

	replacement := &State{
		Snapshot: &tabular.Snapshot{Students: []domain.Record{{"name": "b"}, {"name": "c"}}},
		Index: NewIndex([]domain.KnowledgeEntry{
			entry("b", domain.CategoryStudent, []float32{1}),
			entry("c", domain.CategoryStudent, []float32{1}),
		}),
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			st := store.Current()
			// Snapshot and index always belong to the same load.
			if len(st.Snapshot.Students) != st.Index.Len() {
				t.Errorf("reader observed mixed state: %d records vs %d entries",
					len(st.Snapshot.Students), st.Index.Len())
				return
			}
		}
	}()

	for i := 0; i < 100; i++ {
		store.Publish(old)
		store.Publish(replacement)
	}
	<-done

	if got := store.Current(); got != old && got != replacement {
		t.Error("current state is neither published value")
	}
}

func TestDescribe_Templates(t *testing.T) {
	student := domain.Record{"number": "12", "name": "สมหญิง", "gender": "หญิง"}
	got := Describe(domain.CategoryStudent, student)
	want := "นักเรียนหมายเลข 12 ชื่อ สมหญิง เพศ หญิง แผนก เทคโนโลยีสารสนเทศ นักเรียน"
	if got != want {
		t.Errorf("student template:\ngot:  %q\nwant: %q", got, want)
	}

	// Missing optional fields render empty, keeping positions stable.
	sched := domain.Record{"subject_name": "Go", "teacher": "ครู ก", "day": "จันทร์",
		"time_start": "18:00", "time_end": "21:00", "room": "735"}
	got = Describe(domain.CategorySchedule, sched)
	want = "วิชา Go รหัส  สอนโดย ครู ก วันจันทร์ เวลา 18:00-21:00 ห้อง 735 ตึก  on-site"
	if got != want {
		t.Errorf("schedule template:\ngot:  %q\nwant: %q", got, want)
	}

	faq := domain.Record{"question": "สมัครยังไง", "answer": "ออนไลน์"}
	got = Describe(domain.CategoryFAQ, faq)
	want = "คำถาม: สมัครยังไง คำตอบ: ออนไลน์ หมวด "
	if got != want {
		t.Errorf("faq template:\ngot:  %q\nwant: %q", got, want)
	}
}
