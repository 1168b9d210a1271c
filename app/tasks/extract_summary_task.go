package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/viralcal/viralcal/app/database"
)

const extractionBatchSize = 20

// ExtractSummaryTask enriches stored events with article summaries pulled
// from their URLs. Runs only when the remote store is available.
type ExtractSummaryTask struct {
	Task
	httpClient *http.Client
	extractor  *SummaryExtractor
	eventRepo  database.EventRepository
	userAgent  string
}

func NewExtractSummaryTask(httpClient *http.Client, extractor *SummaryExtractor, eventRepo database.EventRepository, userAgent string) *ExtractSummaryTask {
	return &ExtractSummaryTask{
		Task:       NewTask(TaskTypeExtractSummary, "all"),
		httpClient: httpClient,
		extractor:  extractor,
		eventRepo:  eventRepo,
		userAgent:  userAgent,
	}
}

func (t *ExtractSummaryTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	events, err := t.eventRepo.GetEventsForExtraction(ctx, extractionBatchSize)
	if err != nil {
		return fmt.Errorf("failed to get events for summary extraction: %w", err)
	}

	if len(events) == 0 {
		slog.Debug("No events need summary extraction")
		return nil
	}

	successCount := 0
	errorCount := 0

	for _, event := range events {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := t.extractSummaryForEvent(ctx, event); err != nil {
			slog.Error("Failed to extract summary for event", "event_id", event.ID, "url", event.URL, "error", err)
			errorCount++

			if err := t.eventRepo.UpdateExtractionStatus(ctx, event.ID, "failed", err.Error()); err != nil {
				slog.Error("Failed to update extraction status", "event_id", event.ID, "error", err)
			}
		} else {
			successCount++
		}
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"success", successCount,
		"errors", errorCount)

	return nil
}

func (t *ExtractSummaryTask) extractSummaryForEvent(ctx context.Context, event database.EventForExtraction) error {
	if event.URL == "" {
		return fmt.Errorf("event has no URL")
	}

	data, err := t.fetchArticle(ctx, event.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch article: %w", err)
	}

	summary, err := t.extractor.Run(data)
	if err != nil {
		return fmt.Errorf("failed to extract summary: %w", err)
	}

	if err := t.eventRepo.UpdateExtractedSummary(ctx, event.ID, summary, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to store extracted summary: %w", err)
	}

	slog.Debug("Summary extracted successfully", "event_id", event.ID, "url", event.URL, "summary_length", len(summary))
	return nil
}

func (t *ExtractSummaryTask) fetchArticle(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return nil, fmt.Errorf("content type is not HTML: %s", contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
