package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/epluris/epluris/backend/internal/cache"
	"github.com/epluris/epluris/backend/internal/config"
	"github.com/epluris/epluris/backend/internal/logger"
	"github.com/epluris/epluris/backend/internal/models"
	"github.com/epluris/epluris/backend/internal/processing"
	"github.com/epluris/epluris/backend/internal/vault"
)

type docIndexer interface {
	Index(ctx context.Context, doc models.VaultDocument) error
}

func main() {
	log := logger.New("worker")
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	store, err := vault.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
	if err != nil {
		log.Error("init vault store", slog.Any("err", err))
		os.Exit(1)
	}

	seen := cache.New(cfg.DedupeCapacity, cfg.DedupeTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.KafkaTopic,
		GroupID:        cfg.KafkaConsumer,
		QueueCapacity:  cfg.BatchSize,
		MinBytes:       1e3,
		MaxBytes:       10e6,
		CommitInterval: 0, // Disable auto-commit; manual commit only
	})
	defer reader.Close()

	dlqWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaTopic + "_dlq",
		MaxAttempts: 3,
	})
	defer dlqWriter.Close()

	log.Info("worker started",
		slog.String("topic", cfg.KafkaTopic),
		slog.String("group", cfg.KafkaConsumer),
		slog.String("dlq_topic", cfg.KafkaTopic+"_dlq"),
	)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("context canceled, stopping")
				return
			}
			log.Error("fetch message", slog.Any("err", err))
			continue
		}

		if err := processMessage(ctx, log, store, seen, cfg, msg); err != nil {
			log.Warn("process message failed, sending to DLQ",
				slog.Any("err", err),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)

			// Send to DLQ with error context, retry with backoff
			dlqMsg := kafka.Message{
				Key:   msg.Key,
				Value: msg.Value,
				Headers: append(msg.Headers,
					kafka.Header{Key: "original_partition", Value: []byte(fmt.Sprintf("%d", msg.Partition))},
					kafka.Header{Key: "original_offset", Value: []byte(fmt.Sprintf("%d", msg.Offset))},
					kafka.Header{Key: "error", Value: []byte(err.Error())},
					kafka.Header{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
				),
			}

			// Retry DLQ write with exponential backoff
			dlqSuccess := false
			for attempt := 0; attempt < 5; attempt++ {
				if dlqErr := dlqWriter.WriteMessages(ctx, dlqMsg); dlqErr == nil {
					dlqSuccess = true
					log.Info("message sent to DLQ",
						slog.Int("partition", msg.Partition),
						slog.Int64("offset", msg.Offset),
						slog.Int("attempt", attempt+1),
					)
					break
				} else {
					backoff := time.Duration(1<<uint(attempt)) * time.Second
					log.Warn("DLQ write failed, retrying",
						slog.Any("err", dlqErr),
						slog.Int("attempt", attempt+1),
						slog.Duration("backoff", backoff),
					)
					select {
					case <-time.After(backoff):
						// Continue to next attempt
					case <-ctx.Done():
						log.Info("context canceled during DLQ retry")
						return
					}
				}
			}

			// Only commit if DLQ write succeeded; otherwise skip commit and reprocess on restart
			if dlqSuccess {
				if err := reader.CommitMessages(ctx, msg); err != nil {
					log.Error("commit failed message to dlq", slog.Any("err", err))
				}
			} else {
				log.Error("DLQ write exhausted retries, message may be lost if later messages commit",
					slog.Int("partition", msg.Partition),
					slog.Int64("offset", msg.Offset),
				)
			}
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message", slog.Any("err", err))
		}
	}
}

func processMessage(ctx context.Context, log *slog.Logger, store docIndexer, seen *cache.Cache, cfg *config.Worker, msg kafka.Message) error {
	var event models.SaveEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return err
	}

	title := strings.TrimSpace(event.Title)
	if title == "" {
		return errors.New("save event missing title")
	}
	if strings.TrimSpace(event.UserID) == "" {
		return errors.New("save event missing userId")
	}

	savedAt := parseTimestamp(event.SavedAt)
	if savedAt.IsZero() {
		savedAt = time.Now().UTC()
	}

	source := strings.TrimSpace(event.Source)
	if source == "" {
		source = "other"
	}

	tags := processing.NormalizeTags(event.Tags)
	if len(tags) == 0 {
		// Fall back to tags derived from the document's own text.
		text := title + " " + processing.CleanText(event.Description+" "+event.Notes)
		tags = processing.SuggestTags(text, cfg.TagLimit, cfg.TagMinLength)
	}

	doc := models.VaultDocument{
		ID:          event.ID,
		UserID:      event.UserID,
		Title:       title,
		Description: event.Description,
		Source:      source,
		SourceURL:   event.SourceURL,
		Tags:        tags,
		Notes:       event.Notes,
		SavedAt:     savedAt,
		Metadata:    event.Metadata,
	}

	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	if seen.IsSeen(doc.ID) {
		log.Debug("duplicate save event", slog.String("id", doc.ID))
		return nil
	}

	if err := store.Index(ctx, doc); err != nil {
		return err
	}

	seen.MarkSeen(doc.ID)
	log.Info("indexed vault document",
		slog.String("id", doc.ID),
		slog.String("user", doc.UserID),
		slog.String("title", doc.Title),
	)
	return nil
}

func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}

	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}

	for _, f := range formats {
		if ts, err := time.Parse(f, raw); err == nil {
			return ts
		}
	}

	return time.Time{}
}
