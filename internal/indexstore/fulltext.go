package indexstore

import (
	"sync"

	"github.com/yanyiwu/gojieba"

	"github.com/kasuganosora/sqlexec/internal/domain"
)

// FullTextIndex is a token-level inverted index over string columns,
// tokenized with gojieba so that CJK text segments correctly. Point
// lookup and Set/Remove take the raw string
// value; Get unions the postings of every token the query
// segments into.
type FullTextIndex struct {
	name      string
	mu        sync.RWMutex
	postings  map[string]map[domain.RowID]bool
	tokenizer *gojieba.Jieba
}

// NewFullTextIndex creates an empty FullTextIndex registered under
// name. Callers must call Close when done with the index, to release
// the underlying dictionary resources gojieba allocates.
func NewFullTextIndex(name string) *FullTextIndex {
	return &FullTextIndex{
		name:      name,
		postings:  make(map[string]map[domain.RowID]bool),
		tokenizer: gojieba.NewJieba(),
	}
}

// Close releases the gojieba tokenizer's underlying resources.
func (idx *FullTextIndex) Close() {
	idx.tokenizer.Free()
}

func (idx *FullTextIndex) GetName() string { return idx.name }

func (idx *FullTextIndex) tokens(key domain.IndexKey) []string {
	if key.Kind != domain.KindString || key.String == "" {
		return nil
	}
	return idx.tokenizer.CutForSearch(key.String, true)
}

func (idx *FullTextIndex) Get(key domain.IndexKey) []domain.RowID {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	seen := make(map[domain.RowID]bool)
	for _, tok := range idx.tokens(key) {
		for id := range idx.postings[tok] {
			seen[id] = true
		}
	}
	out := make([]domain.RowID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	return out
}

// GetRange is not a meaningful operation over token postings: r is
// ignored, and every indexed row-id is returned, as for a nil range
// elsewhere.
func (idx *FullTextIndex) GetRange(r *KeyRange) []domain.RowID {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	seen := make(map[domain.RowID]bool)
	for _, ids := range idx.postings {
		for id := range ids {
			seen[id] = true
		}
	}
	out := make([]domain.RowID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	return out
}

func (idx *FullTextIndex) Set(key domain.IndexKey, rowID domain.RowID) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, tok := range idx.tokens(key) {
		ids, ok := idx.postings[tok]
		if !ok {
			ids = make(map[domain.RowID]bool)
			idx.postings[tok] = ids
		}
		ids[rowID] = true
	}
}

func (idx *FullTextIndex) Remove(key domain.IndexKey, rowID domain.RowID) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, tok := range idx.tokens(key) {
		ids, ok := idx.postings[tok]
		if !ok {
			continue
		}
		delete(ids, rowID)
		if len(ids) == 0 {
			delete(idx.postings, tok)
		}
	}
}
