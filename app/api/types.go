package api

import (
	"github.com/viralcal/viralcal/app/aggregator"
	"github.com/viralcal/viralcal/app/database"
	"github.com/viralcal/viralcal/app/sources"
	"github.com/viralcal/viralcal/app/storage"
	"github.com/viralcal/viralcal/app/tasks"
)

type Handler struct {
	chain            *storage.Chain
	store            *storage.Store
	aggregator       *aggregator.Aggregator
	configCache      *sources.ConfigCache
	scheduler        tasks.TaskSchedulerInterface
	jobRepo          database.JobRepository
	summaryRepo      database.SummaryRepository
	sourceConfigRepo database.SourceConfigRepository
	redditClient     sources.Client
	importDelay      int
	minScore         int
	maxPosts         int
}
