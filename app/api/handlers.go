package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/viralcal/viralcal/app/aggregator"
	"github.com/viralcal/viralcal/app/database"
	"github.com/viralcal/viralcal/app/importer"
	"github.com/viralcal/viralcal/app/sources"
	"github.com/viralcal/viralcal/app/storage"
	"github.com/viralcal/viralcal/app/tasks"
	"github.com/viralcal/viralcal/app/viral"
)

// NewHandler wires the HTTP handlers. jobRepo and summaryRepo may be nil when
// the remote store is disabled; the endpoints that need them report 503.
func NewHandler(chain *storage.Chain, store *storage.Store, agg *aggregator.Aggregator,
	configCache *sources.ConfigCache, scheduler tasks.TaskSchedulerInterface,
	jobRepo database.JobRepository, summaryRepo database.SummaryRepository,
	sourceConfigRepo database.SourceConfigRepository,
	redditClient sources.Client, importDelayMs, minScore, maxPosts int) *Handler {
	return &Handler{
		chain:            chain,
		store:            store,
		aggregator:       agg,
		configCache:      configCache,
		scheduler:        scheduler,
		jobRepo:          jobRepo,
		summaryRepo:      summaryRepo,
		sourceConfigRepo: sourceConfigRepo,
		redditClient:     redditClient,
		importDelay:      importDelayMs,
		minScore:         minScore,
		maxPosts:         maxPosts,
	}
}

// GetDay returns the stored bucket for a calendar date, reading through the
// provider chain (remote, then local cache, then mock data).
func (h *Handler) GetDay(c *gin.Context) {
	date := c.Param("date")
	if _, err := time.Parse(viral.DateFormat, date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}

	bucket, ok := h.chain.Get(c.Request.Context(), date)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No events for date", "date": date})
		return
	}

	c.JSON(http.StatusOK, bucket)
}

// GetToday returns today's bucket through the provider chain.
func (h *Handler) GetToday(c *gin.Context) {
	date := viral.Today()

	bucket, ok := h.chain.Get(c.Request.Context(), date)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No events for date", "date": date})
		return
	}

	c.JSON(http.StatusOK, bucket)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	health["cached_dates"] = h.store.Local().Count()
	health["loaded_configurations"] = h.configCache.GetConfigCount()
	health["remote_store"] = h.jobRepo != nil

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	local := h.store.Local()

	stats := map[string]interface{}{
		"cached_dates": local.Count(),
		"dates":        local.Dates(),
		"sources":      h.aggregator.SourceStatuses(),
	}

	c.JSON(http.StatusOK, stats)
}

// CronRefresh triggers a source refresh from an external scheduler.
func (h *Handler) CronRefresh(c *gin.Context) {
	task := tasks.NewRefreshSourcesTask(h.aggregator, h.store, h.jobRepo, h.sourceConfigRepo, h.minScore)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing refresh task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue refresh task"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"task":    gin.H{"id": task.ID, "type": task.Type},
	})
}

// APIListSources reports configuration and rate-limit state per source.
func (h *Handler) APIListSources(c *gin.Context) {
	statuses := h.aggregator.SourceStatuses()

	result := make([]map[string]interface{}, 0, len(statuses))
	for name, status := range statuses {
		info := map[string]interface{}{
			"name":       name,
			"configured": status.Configured,
		}
		if status.RateLimit.Remaining > 0 || !status.RateLimit.ResetAt.IsZero() {
			info["rate_limit_remaining"] = status.RateLimit.Remaining
			if !status.RateLimit.ResetAt.IsZero() {
				info["rate_limit_reset_at"] = status.RateLimit.ResetAt.Format(time.RFC3339)
			}
		}
		result = append(result, info)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"sources": result,
		"total":   len(result),
	})
}

type importRequest struct {
	Subreddits []string `json:"subreddits"`
	Timeframes []string `json:"timeframes"`
	MinScore   int      `json:"min_score"`
	MaxPosts   int      `json:"max_posts"`
	AllTime    bool     `json:"all_time"`
	NewsOnly   bool     `json:"news_only"`
}

// APITriggerImport enqueues a paced historical import against Reddit.
func (h *Handler) APITriggerImport(c *gin.Context) {
	if h.redditClient == nil || !h.redditClient.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Reddit source not configured"})
		return
	}

	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	config := h.configCache.GetConfig(sources.TypeReddit)
	subreddits := req.Subreddits
	if len(subreddits) == 0 {
		subreddits = config.Subreddits
	}
	timeframes := req.Timeframes
	if len(timeframes) == 0 {
		timeframes = config.Timeframes
	}
	minScore := req.MinScore
	if minScore <= 0 {
		minScore = h.minScore
	}
	maxPosts := req.MaxPosts
	if maxPosts <= 0 {
		maxPosts = h.maxPosts
	}

	pacer := sources.NewIntervalPacer(time.Duration(h.importDelay) * time.Millisecond)
	imp := importer.New(h.redditClient, pacer)

	task := tasks.NewImportHistoricalTask(sources.TypeReddit, imp, h.store, h.jobRepo, importer.Options{
		Subreddits:     subreddits,
		Timeframes:     timeframes,
		MinScore:       minScore,
		MaxPosts:       maxPosts,
		IncludeAllTime: req.AllTime,
	}, req.NewsOnly)

	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing import task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue import task"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"task":    gin.H{"id": task.ID, "type": task.Type},
		"import": gin.H{
			"subreddits": subreddits,
			"timeframes": timeframes,
			"min_score":  minScore,
			"max_posts":  maxPosts,
			"all_time":   req.AllTime,
			"news_only":  req.NewsOnly,
		},
	})
}

// APIListJobs returns recent import job history from the remote store.
func (h *Handler) APIListJobs(c *gin.Context) {
	if h.jobRepo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Remote store not configured"})
		return
	}

	jobs, err := h.jobRepo.GetRecentJobs(c.Request.Context(), 50)
	if err != nil {
		slog.Error("Database error", "operation", "get_recent_jobs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	result := make([]map[string]interface{}, 0, len(jobs))
	for _, job := range jobs {
		result = append(result, map[string]interface{}{
			"id":              job.ID,
			"status":          job.Status,
			"source":          job.SourceType,
			"started_at":      job.StartedAt,
			"completed_at":    job.CompletedAt,
			"events_imported": job.EventsImported,
			"error":           job.ErrorMessage,
			"created_at":      job.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"jobs":  result,
		"total": len(result),
	})
}

// APIGetSummaries returns the per-day rollups for an inclusive date range.
func (h *Handler) APIGetSummaries(c *gin.Context) {
	if h.summaryRepo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Remote store not configured"})
		return
	}

	from := c.Query("from")
	to := c.Query("to")
	if _, err := time.Parse(viral.DateFormat, from); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'from' date, expected YYYY-MM-DD"})
		return
	}
	if _, err := time.Parse(viral.DateFormat, to); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'to' date, expected YYYY-MM-DD"})
		return
	}

	summaries, err := h.summaryRepo.GetSummaries(c.Request.Context(), from, to)
	if err != nil {
		slog.Error("Database error", "operation", "get_summaries", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"summaries": summaries,
		"total":     len(summaries),
	})
}
