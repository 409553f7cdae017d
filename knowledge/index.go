// Package knowledge provides full-text search over specialist guide
// documents, so dispatch decisions can be returned with supporting
// references from the corpus each specialist is built on.
package knowledge

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/google/uuid"

	"routekit/errors"
)

// Document is one guide document attributed to a specialist.
type Document struct {
	// ID uniquely identifies the document. Assigned on Add when empty.
	ID string `json:"id"`

	// Specialist is the profile ID this guide belongs to.
	Specialist string `json:"specialist"`

	// Title is a short human-readable name for the guide.
	Title string `json:"title"`

	// Content is the guide body.
	Content string `json:"content"`

	// AddedAt is when the document was indexed.
	AddedAt time.Time `json:"added_at"`
}

// Reference is one search hit: a guide relevant to a routed request.
type Reference struct {
	// DocID identifies the matching document.
	DocID string `json:"doc_id"`

	// Specialist is the profile the document belongs to.
	Specialist string `json:"specialist"`

	// Title is the document title.
	Title string `json:"title"`

	// Score is the normalized relevance score in (0,1].
	Score float64 `json:"score"`
}

// IndexConfig configures the guide index.
type IndexConfig struct {
	// Path is the on-disk index location. Empty means in-memory only.
	Path string
}

// Index is a bleve-backed full-text index of guide documents.
type Index struct {
	mu  sync.RWMutex
	idx bleve.Index
}

// NewIndex opens or creates a guide index.
func NewIndex(cfg IndexConfig) (*Index, error) {
	var idx bleve.Index
	var err error

	switch {
	case cfg.Path == "":
		idx, err = bleve.NewMemOnly(buildIndexMapping())
	default:
		if _, statErr := os.Stat(cfg.Path); os.IsNotExist(statErr) {
			idx, err = bleve.New(cfg.Path, buildIndexMapping())
		} else {
			idx, err = bleve.Open(cfg.Path)
		}
	}
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeIndexFailure, "opening guide index")
	}

	return &Index{idx: idx}, nil
}

// buildIndexMapping creates the bleve index mapping for guide documents.
func buildIndexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	// Analyzed for full-text search
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name

	// Not analyzed, exact match
	keywordFieldMapping := bleve.NewKeywordFieldMapping()

	dateFieldMapping := bleve.NewDateTimeFieldMapping()

	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	docMapping.AddFieldMappingsAt("specialist", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("added_at", dateFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = standard.Name

	return indexMapping
}

// Add indexes a guide document and returns its ID.
func (x *Index) Add(ctx context.Context, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Wrap(err, "adding guide document")
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.AddedAt.IsZero() {
		doc.AddedAt = time.Now()
	}

	if err := x.idx.Index(doc.ID, doc); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrCodeIndexFailure, "indexing guide document")
	}
	return doc.ID, nil
}

// AddAll indexes multiple documents, returning the IDs of those added.
// Indexing stops at the first failure.
func (x *Index) AddAll(ctx context.Context, docs []Document) ([]string, error) {
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		id, err := x.Add(ctx, doc)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Search finds guide documents relevant to a query, optionally filtered
// to one specialist. Results are best first, capped at limit.
func (x *Index) Search(ctx context.Context, queryText, specialist string, limit int) ([]Reference, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if limit <= 0 {
		limit = 5
	}

	contentQuery := bleve.NewMatchQuery(queryText)

	searchQuery := bleve.NewBooleanQuery()
	searchQuery.AddMust(contentQuery)
	if specialist != "" {
		specialistQuery := bleve.NewTermQuery(specialist)
		specialistQuery.SetField("specialist")
		searchQuery.AddMust(specialistQuery)
	}

	searchReq := bleve.NewSearchRequest(searchQuery)
	searchReq.Size = limit
	searchReq.Fields = []string{"specialist", "title"}

	searchResult, err := x.idx.SearchInContext(ctx, searchReq)
	if err != nil {
		return nil, errors.Wrap(err, "searching guide index")
	}

	refs := make([]Reference, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		ref := Reference{
			DocID: hit.ID,
			Score: normalizeScore(hit.Score),
		}
		if v, ok := hit.Fields["specialist"].(string); ok {
			ref.Specialist = v
		}
		if v, ok := hit.Fields["title"].(string); ok {
			ref.Title = v
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Count returns the number of indexed documents.
func (x *Index) Count() (uint64, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	n, err := x.idx.DocCount()
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrCodeIndexFailure, "counting guide documents")
	}
	return n, nil
}

// Close releases the index.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.idx.Close()
}

// normalizeScore maps a BM25 score to (0,1]. Scores can exceed 1, so
// high scores are squashed the same way across queries.
func normalizeScore(score float64) float64 {
	if score > 1 {
		return 1 - (1 / (1 + score))
	}
	return score
}
