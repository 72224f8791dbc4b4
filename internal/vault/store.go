// Package vault is the Elasticsearch-backed per-user document store.
package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/epluris/epluris/backend/internal/models"
)

// ErrDocNotFound is returned when a document does not exist or belongs to a
// different user.
var ErrDocNotFound = errors.New("vault document not found")

// Store wraps go-elasticsearch with helpers tailored to vault documents. All
// users share one index; every query filters on userId.
type Store struct {
	es    *elasticsearch.Client
	index string
	log   *slog.Logger
}

// New instantiates the vault store.
func New(addr, index string, logger *slog.Logger) (*Store, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{addr},
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Store{es: es, index: index, log: logger}, nil
}

// Ping checks if Elasticsearch is available.
func (s *Store) Ping(ctx context.Context) error {
	res, err := s.es.Ping(s.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", res.Status())
	}

	return nil
}

// Health checks cluster health for the API health endpoint.
func (s *Store) Health(ctx context.Context) error {
	res, err := s.es.Cluster.Health(s.es.Cluster.Health.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(res.Body)
		return fmt.Errorf("cluster health bad: %s", strings.TrimSpace(string(data)))
	}
	return nil
}

// Index writes a vault document.
func (s *Store) Index(ctx context.Context, doc models.VaultDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal doc: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: doc.ID,
		Body:       bytes.NewReader(payload),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, s.es)
	if err != nil {
		return fmt.Errorf("index doc: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index doc failed: %s", strings.TrimSpace(string(body)))
	}

	return nil
}

// Get fetches one document, enforcing ownership.
func (s *Store) Get(ctx context.Context, userID, docID string) (models.VaultDocument, error) {
	req := esapi.GetRequest{Index: s.index, DocumentID: docID}

	res, err := req.Do(ctx, s.es)
	if err != nil {
		return models.VaultDocument{}, fmt.Errorf("get doc: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return models.VaultDocument{}, ErrDocNotFound
	}
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return models.VaultDocument{}, fmt.Errorf("get doc failed: %s", strings.TrimSpace(string(body)))
	}

	var parsed struct {
		Source models.VaultDocument `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return models.VaultDocument{}, fmt.Errorf("decode get response: %w", err)
	}

	if parsed.Source.UserID != userID {
		return models.VaultDocument{}, ErrDocNotFound
	}

	return parsed.Source, nil
}

// List returns the user's documents newest-first, excluding trashed ones.
func (s *Store) List(ctx context.Context, userID string, size int) ([]models.VaultDocument, error) {
	return s.query(ctx, userID, "", size)
}

// Search matches the user's documents on title, description, tags, and
// notes, excluding trashed ones.
func (s *Store) Search(ctx context.Context, userID, term string, size int) ([]models.VaultDocument, error) {
	return s.query(ctx, userID, term, size)
}

func (s *Store) query(ctx context.Context, userID, term string, size int) ([]models.VaultDocument, error) {
	if size <= 0 {
		size = 50
	}
	if size > 500 {
		size = 500
	}

	boolQuery := map[string]any{
		"filter": []map[string]any{
			{"term": map[string]any{"userId": userID}},
		},
		"must_not": []map[string]any{
			{"exists": map[string]any{"field": "deletedAt"}},
		},
	}
	if term != "" {
		boolQuery["must"] = []map[string]any{
			{
				"multi_match": map[string]any{
					"query":  term,
					"fields": []string{"title^2", "description", "tags", "notes"},
				},
			},
		}
	}

	body := map[string]any{
		"size":  size,
		"query": map[string]any{"bool": boolQuery},
		"sort": []map[string]any{
			{"savedAt": map[string]any{"order": "desc"}},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search failed: %s", strings.TrimSpace(string(data)))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.VaultDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	docs := make([]models.VaultDocument, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	return docs, nil
}

// Update applies a partial update to one document after an ownership check.
func (s *Store) Update(ctx context.Context, userID, docID string, fields map[string]any) error {
	if _, err := s.Get(ctx, userID, docID); err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]any{"doc": fields})
	if err != nil {
		return fmt.Errorf("marshal update body: %w", err)
	}

	req := esapi.UpdateRequest{
		Index:      s.index,
		DocumentID: docID,
		Body:       bytes.NewReader(payload),
	}

	res, err := req.Do(ctx, s.es)
	if err != nil {
		return fmt.Errorf("update doc: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return ErrDocNotFound
	}
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("update doc failed: %s", strings.TrimSpace(string(body)))
	}

	return nil
}

// SoftDelete moves a document to the trash by stamping deletedAt. The
// retention job permanently removes trashed documents later.
func (s *Store) SoftDelete(ctx context.Context, userID, docID string) error {
	return s.Update(ctx, userID, docID, map[string]any{
		"deletedAt": time.Now().UTC().Format(time.RFC3339),
	})
}

// Stats summarizes the user's vault via aggregations.
func (s *Store) Stats(ctx context.Context, userID string) (models.VaultStats, error) {
	body := map[string]any{
		"size":             0,
		"track_total_hits": true,
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []map[string]any{
					{"term": map[string]any{"userId": userID}},
				},
				"must_not": []map[string]any{
					{"exists": map[string]any{"field": "deletedAt"}},
				},
			},
		},
		"aggs": map[string]any{
			"tags": map[string]any{
				"cardinality": map[string]any{"field": "tags"},
			},
			"sources": map[string]any{
				"terms": map[string]any{"field": "source", "size": 50},
			},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return models.VaultStats{}, fmt.Errorf("marshal stats body: %w", err)
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return models.VaultStats{}, fmt.Errorf("stats: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return models.VaultStats{}, fmt.Errorf("stats failed: %s", strings.TrimSpace(string(data)))
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
		} `json:"hits"`
		Aggregations struct {
			Tags struct {
				Value int64 `json:"value"`
			} `json:"tags"`
			Sources struct {
				Buckets []struct {
					Key      string `json:"key"`
					DocCount int    `json:"doc_count"`
				} `json:"buckets"`
			} `json:"sources"`
		} `json:"aggregations"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return models.VaultStats{}, fmt.Errorf("decode stats response: %w", err)
	}

	sources := make(map[string]int, len(parsed.Aggregations.Sources.Buckets))
	for _, bucket := range parsed.Aggregations.Sources.Buckets {
		sources[bucket.Key] = bucket.DocCount
	}

	return models.VaultStats{
		TotalDocuments: parsed.Hits.Total.Value,
		TotalTags:      parsed.Aggregations.Tags.Value,
		Sources:        sources,
		LastUpdated:    time.Now().UTC(),
	}, nil
}

// PurgeDeleted permanently removes trashed documents older than maxAge using
// batched delete-by-query. It loops until a batch deletes fewer documents
// than batchSize.
func (s *Store) PurgeDeleted(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	cutoff := time.Now().Add(-maxAge).UTC().Format(time.RFC3339)
	totalDeleted := int64(0)

	for {
		body := map[string]any{
			"query": map[string]any{
				"range": map[string]any{
					"deletedAt": map[string]any{
						"lte": cutoff,
					},
				},
			},
		}

		payload, err := json.Marshal(body)
		if err != nil {
			return totalDeleted, fmt.Errorf("marshal purge body: %w", err)
		}

		res, err := s.es.DeleteByQuery(
			[]string{s.index},
			bytes.NewReader(payload),
			s.es.DeleteByQuery.WithContext(ctx),
			s.es.DeleteByQuery.WithWaitForCompletion(true),
			s.es.DeleteByQuery.WithConflicts("proceed"),
			s.es.DeleteByQuery.WithScrollSize(batchSize),
		)
		if err != nil {
			return totalDeleted, fmt.Errorf("delete by query: %w", err)
		}

		if res.IsError() {
			data, _ := io.ReadAll(res.Body)
			res.Body.Close()
			return totalDeleted, fmt.Errorf("delete by query failed: %s", strings.TrimSpace(string(data)))
		}

		var parsed struct {
			Deleted int64 `json:"deleted"`
		}
		if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
			res.Body.Close()
			return totalDeleted, fmt.Errorf("decode purge response: %w", err)
		}
		res.Body.Close()

		totalDeleted += parsed.Deleted

		if parsed.Deleted < int64(batchSize) {
			break
		}
	}

	return totalDeleted, nil
}
