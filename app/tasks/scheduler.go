package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/viralcal/viralcal/app/aggregator"
	"github.com/viralcal/viralcal/app/cfg"
	"github.com/viralcal/viralcal/app/database"
	"github.com/viralcal/viralcal/app/storage"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	aggregator       *aggregator.Aggregator
	store            *storage.Store
	eventRepo        database.EventRepository
	jobRepo          database.JobRepository
	sourceConfigRepo database.SourceConfigRepository

	httpClient  *http.Client
	extractor   *SummaryExtractor
	userAgent   string
	minScore    int
	interval    time.Duration
	refreshEach time.Duration
	workerCount int
	lastRefresh time.Time
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

// NewScheduler wires the background workers. The repositories may be nil when
// the remote store is disabled; summary extraction is skipped in that mode and
// job history and fetch timestamps are not recorded.
func NewScheduler(agg *aggregator.Aggregator, store *storage.Store,
	eventRepo database.EventRepository, jobRepo database.JobRepository,
	sourceConfigRepo database.SourceConfigRepository,
	httpClient *http.Client) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		aggregator:       agg,
		store:            store,
		eventRepo:        eventRepo,
		jobRepo:          jobRepo,
		sourceConfigRepo: sourceConfigRepo,

		httpClient:  httpClient,
		extractor:   NewSummaryExtractor(),
		userAgent:   cfg.UserAgent,
		minScore:    cfg.ImportMinScore,
		interval:    time.Duration(cfg.SchedulerInterval) * time.Second,
		refreshEach: time.Duration(cfg.RefreshInterval) * time.Hour,
		workerCount: cfg.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueStartupTasks() {
	s.enqueueRefresh()
}

func (s *Scheduler) enqueueTasks() {
	if time.Since(s.lastRefresh) >= s.refreshEach {
		s.enqueueRefresh()
	}

	if s.eventRepo != nil {
		extractTask := NewExtractSummaryTask(s.httpClient, s.extractor, s.eventRepo, s.userAgent)
		if err := s.EnqueueTask(extractTask); err != nil {
			slog.Warn("Failed to enqueue ExtractSummaryTask", "error", err)
		}
	}
}

func (s *Scheduler) enqueueRefresh() {
	refreshTask := NewRefreshSourcesTask(s.aggregator, s.store, s.jobRepo, s.sourceConfigRepo, s.minScore)
	if err := s.EnqueueTask(refreshTask); err != nil {
		slog.Warn("Failed to enqueue RefreshSourcesTask", "error", err)
		return
	}
	s.lastRefresh = time.Now()
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 30*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "source", task.GetSource(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
