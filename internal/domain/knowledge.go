package domain

// KnowledgeEntry is one record flattened into descriptive text plus its
// embedding vector. An empty Embedding means vectorization failed; such an
// entry is kept for counting but must never participate in ranking.
type KnowledgeEntry struct {
	Text      string
	Record    Record
	Embedding []float32
	Category  Category
}

// Rankable reports whether the entry may participate in similarity search.
func (e KnowledgeEntry) Rankable() bool {
	return len(e.Embedding) > 0
}
