package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/epluris/epluris/backend/internal/aggregator"
	"github.com/epluris/epluris/backend/internal/config"
	"github.com/epluris/epluris/backend/internal/models"
	"github.com/epluris/epluris/backend/internal/processing"
	"github.com/epluris/epluris/backend/internal/providers"
	"github.com/epluris/epluris/backend/internal/registry"
	"github.com/epluris/epluris/backend/internal/vault"
)

type searcher interface {
	Search(ctx context.Context, query, engine string, num int) ([]models.Result, error)
	SearchAll(ctx context.Context, query string, num int) []models.Result
	GovSearch(ctx context.Context, query string, tokens []string) []aggregator.DatasetResponse
	GetDataset(ctx context.Context, id string, params map[string]any) (*aggregator.DatasetResponse, error)
}

type vaultStore interface {
	Health(ctx context.Context) error
	Get(ctx context.Context, userID, docID string) (models.VaultDocument, error)
	List(ctx context.Context, userID string, size int) ([]models.VaultDocument, error)
	Search(ctx context.Context, userID, term string, size int) ([]models.VaultDocument, error)
	Update(ctx context.Context, userID, docID string, fields map[string]any) error
	SoftDelete(ctx context.Context, userID, docID string) error
	Stats(ctx context.Context, userID string) (models.VaultStats, error)
}

type saveProducer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type server struct {
	log   *slog.Logger
	cfg   *config.API
	agg   searcher
	vault vaultStore
	saves saveProducer
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/search", s.handleSearch)
	r.Route("/gov", func(r chi.Router) {
		r.Get("/search", s.handleGovSearch)
		r.Get("/dataset", s.handleGovDataset)
		r.Get("/datasets", s.handleGovDatasets)
	})
	r.Route("/vault/{userID}", func(r chi.Router) {
		r.Post("/documents", s.handleVaultSave)
		r.Get("/documents", s.handleVaultList)
		r.Get("/documents/{docID}", s.handleVaultGet)
		r.Patch("/documents/{docID}", s.handleVaultUpdate)
		r.Delete("/documents/{docID}", s.handleVaultDelete)
		r.Get("/stats", s.handleVaultStats)
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.vault.Health(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: `query parameter "q" is required`})
		return
	}

	engine := strings.TrimSpace(r.URL.Query().Get("engine"))
	if engine == "" {
		engine = "google"
	}
	num := clampInt(r.URL.Query().Get("num"), s.cfg.DefaultResults, s.cfg.MaxResults)

	var results []models.Result
	if engine == "all" {
		results = s.agg.SearchAll(r.Context(), query, num)
	} else {
		var err error
		results, err = s.agg.Search(r.Context(), query, engine, num)
		if err != nil {
			s.writeSearchError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":     query,
		"engine":    engine,
		"count":     len(results),
		"results":   results,
		"timestamp": time.Now().UTC(),
	})
}

func (s *server) handleGovSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: `query parameter "q" is required`})
		return
	}

	tokens := parseCSV(r.URL.Query().Get("category"))
	responses := s.agg.GovSearch(r.Context(), query, tokens)

	writeJSON(w, http.StatusOK, map[string]any{
		"query":     query,
		"count":     len(responses),
		"responses": responses,
		"timestamp": time.Now().UTC(),
	})
}

func (s *server) handleGovDataset(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: `query parameter "name" is required`})
		return
	}

	params := map[string]any{}
	if raw := r.URL.Query().Get("params"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: `parameter "params" must be a JSON object`})
			return
		}
	}

	resp, err := s.agg.GetDataset(r.Context(), name, params)
	if err != nil {
		s.writeSearchError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   resp.Success,
		"dataset":   name,
		"timestamp": time.Now().UTC(),
		"data":      resp.Data,
		"metadata":  resp.Metadata,
	})
}

func (s *server) handleGovDatasets(w http.ResponseWriter, r *http.Request) {
	// registry.Endpoint hides key names and secret references from JSON.
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"data":      registry.Default().List(),
		"timestamp": time.Now().UTC(),
	})
}

type saveRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Source      string                `json:"source"`
	SourceURL   string                `json:"sourceUrl"`
	Tags        []string              `json:"tags"`
	Notes       string                `json:"notes"`
	Metadata    *models.VaultMetadata `json:"metadata"`
}

func (s *server) handleVaultSave(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "title is required"})
		return
	}
	if !providers.ValidLink(req.SourceURL) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "sourceUrl must be an absolute http(s) URL"})
		return
	}
	if req.Source == "" {
		req.Source = "other"
	}

	event := models.SaveEvent{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Source:      req.Source,
		SourceURL:   req.SourceURL,
		Tags:        processing.NormalizeTags(req.Tags),
		Notes:       req.Notes,
		SavedAt:     time.Now().UTC().Format(time.RFC3339),
		Metadata:    req.Metadata,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	msg := kafka.Message{Key: []byte(userID), Value: payload}
	if err := s.saves.WriteMessages(r.Context(), msg); err != nil {
		s.log.Error("enqueue save", slog.Any("err", err))
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "save could not be queued"})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"id":     event.ID,
		"status": "queued",
	})
}

func (s *server) handleVaultList(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	size := clampInt(r.URL.Query().Get("size"), 50, 500)

	var docs []models.VaultDocument
	var err error
	if term != "" {
		docs, err = s.vault.Search(r.Context(), userID, term, size)
	} else {
		docs, err = s.vault.List(r.Context(), userID, size)
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"documents": docs,
		"count":     len(docs),
	})
}

func (s *server) handleVaultGet(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	docID := chi.URLParam(r, "docID")

	doc, err := s.vault.Get(r.Context(), userID, docID)
	if err != nil {
		if errors.Is(err, vault.ErrDocNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "document not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// updatableFields whitelists what PATCH may change.
var updatableFields = map[string]struct{}{
	"title":       {},
	"description": {},
	"tags":        {},
	"notes":       {},
}

func (s *server) handleVaultUpdate(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	docID := chi.URLParam(r, "docID")

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	for k := range fields {
		if _, ok := updatableFields[k]; !ok {
			delete(fields, k)
		}
	}
	if len(fields) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "no updatable fields supplied"})
		return
	}

	if err := s.vault.Update(r.Context(), userID, docID, fields); err != nil {
		if errors.Is(err, vault.ErrDocNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "document not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleVaultDelete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	docID := chi.URLParam(r, "docID")

	if err := s.vault.SoftDelete(r.Context(), userID, docID); err != nil {
		if errors.Is(err, vault.ErrDocNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "document not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleVaultStats(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	stats, err := s.vault.Stats(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// writeSearchError maps provider failures onto HTTP statuses.
func (s *server) writeSearchError(w http.ResponseWriter, err error) {
	var remoteErr *providers.RemoteError
	switch {
	case errors.Is(err, aggregator.ErrUnknownEngine):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, registry.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, providers.ErrTimeout):
		writeJSON(w, http.StatusGatewayTimeout, errorResponse{Error: err.Error()})
	case errors.Is(err, providers.ErrMissingCredential),
		errors.Is(err, providers.ErrMalformedResponse),
		errors.As(err, &remoteErr):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func parseCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func clampInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// nothing better to do
	}
}
