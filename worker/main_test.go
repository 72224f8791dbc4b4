package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/epluris/epluris/backend/internal/cache"
	"github.com/epluris/epluris/backend/internal/config"
	"github.com/epluris/epluris/backend/internal/models"
)

type stubIndexer struct {
	docs []models.VaultDocument
}

func (s *stubIndexer) Index(_ context.Context, doc models.VaultDocument) error {
	s.docs = append(s.docs, doc)
	return nil
}

func workerConfig() *config.Worker {
	return &config.Worker{
		Common: config.Common{
			ElasticsearchAddr:  "http://test",
			ElasticsearchIndex: "vault",
		},
		TagLimit:     5,
		TagMinLength: 4,
	}
}

func TestProcessMessageIndexesDocument(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	seen := cache.New(100, time.Hour)
	idx := &stubIndexer{}
	cfg := workerConfig()

	event := models.SaveEvent{
		ID:        "doc-1",
		UserID:    "user-1",
		Title:     "Harmonized Tariff Schedule",
		Source:    "usitc",
		SourceURL: "https://hts.usitc.gov",
		Tags:      []string{"Trade", "tariff"},
		SavedAt:   "2026-01-02T15:04:05Z",
	}
	data, err := json.Marshal(event)
	require.NoError(t, err)

	msg := kafka.Message{Value: data}

	require.NoError(t, processMessage(context.Background(), log, idx, seen, cfg, msg))
	require.Equal(t, 1, len(idx.docs))

	doc := idx.docs[0]
	require.Equal(t, "doc-1", doc.ID)
	require.Equal(t, "user-1", doc.UserID)
	require.Equal(t, []string{"trade", "tariff"}, doc.Tags)
	require.Equal(t, 2026, doc.SavedAt.Year())

	// A redelivery of the same event is dropped.
	require.NoError(t, processMessage(context.Background(), log, idx, seen, cfg, msg))
	require.Equal(t, 1, len(idx.docs))
}

func TestProcessMessageSuggestsTagsWhenMissing(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	seen := cache.New(100, time.Hour)
	idx := &stubIndexer{}
	cfg := workerConfig()

	event := models.SaveEvent{
		ID:          "doc-2",
		UserID:      "user-1",
		Title:       "Overdose mortality rates",
		Description: "Provisional overdose mortality counts by state and month.",
		Source:      "cdc",
		SourceURL:   "https://data.cdc.gov",
	}
	data, err := json.Marshal(event)
	require.NoError(t, err)

	require.NoError(t, processMessage(context.Background(), log, idx, seen, cfg, kafka.Message{Value: data}))
	require.Equal(t, 1, len(idx.docs))

	doc := idx.docs[0]
	require.NotEmpty(t, doc.Tags)
	require.Contains(t, doc.Tags, "overdose")
	require.Contains(t, doc.Tags, "mortality")
}

func TestProcessMessageRejectsInvalidEvents(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	seen := cache.New(100, time.Hour)
	idx := &stubIndexer{}
	cfg := workerConfig()

	require.Error(t, processMessage(context.Background(), log, idx, seen, cfg,
		kafka.Message{Value: []byte("not json")}))

	missingTitle, _ := json.Marshal(models.SaveEvent{UserID: "u"})
	require.Error(t, processMessage(context.Background(), log, idx, seen, cfg,
		kafka.Message{Value: missingTitle}))

	missingUser, _ := json.Marshal(models.SaveEvent{Title: "t"})
	require.Error(t, processMessage(context.Background(), log, idx, seen, cfg,
		kafka.Message{Value: missingUser}))

	require.Empty(t, idx.docs)
}

func TestProcessMessageGeneratesIDWhenMissing(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	seen := cache.New(100, time.Hour)
	idx := &stubIndexer{}
	cfg := workerConfig()

	event := models.SaveEvent{
		UserID:    "user-1",
		Title:     "Border crossing counts",
		Source:    "dot",
		SourceURL: "https://data.bts.gov",
	}
	data, err := json.Marshal(event)
	require.NoError(t, err)

	require.NoError(t, processMessage(context.Background(), log, idx, seen, cfg, kafka.Message{Value: data}))
	require.Equal(t, 1, len(idx.docs))
	require.NotEmpty(t, idx.docs[0].ID)
	require.False(t, idx.docs[0].SavedAt.IsZero())
}

func TestParseTimestamp(t *testing.T) {
	ts := parseTimestamp("2026-02-03T04:05:06Z")
	require.False(t, ts.IsZero())
	require.Equal(t, 2026, ts.Year())
	require.Equal(t, 2, int(ts.Month()))
	require.Equal(t, 3, ts.Day())

	legacy := parseTimestamp("2026-02-03 04:05:06")
	require.False(t, legacy.IsZero())
	require.Equal(t, 4, legacy.Hour())

	require.True(t, parseTimestamp("invalid").IsZero())
	require.True(t, parseTimestamp("").IsZero())
}
