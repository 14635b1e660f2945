package jobs

import (
	"time"

	"github.com/avjpriceboard/priceboard-backend/services"
	"github.com/avjpriceboard/priceboard-backend/shared"
	"github.com/sirupsen/logrus"
)

// FreshnessJob periodically reports per-source cache ages. It only reads
// entry ages and never triggers a refresh.
type FreshnessJob struct {
	boardService *services.BoardService
	logger       *logrus.Logger
	isRunning    bool
}

// NewFreshnessJob creates a new cache freshness job
func NewFreshnessJob(boardService *services.BoardService) *FreshnessJob {
	return &FreshnessJob{
		boardService: boardService,
		logger:       logrus.New(),
		isRunning:    false,
	}
}

// Run executes one freshness sweep
func (j *FreshnessJob) Run() error {
	if j.isRunning {
		j.logger.Warn("Freshness job already running, skipping")
		return nil
	}

	j.isRunning = true
	defer func() {
		j.isRunning = false
	}()

	ages := j.boardService.CacheAges()
	shared.UpdateCacheAges(ages)

	fields := logrus.Fields{"sources": len(ages)}
	for source, age := range ages {
		fields[source] = age.Truncate(time.Millisecond)
	}
	j.logger.WithFields(fields).Info("Cache freshness sweep")

	return nil
}

// StartPeriodicUpdates starts periodic freshness sweeps
func (j *FreshnessJob) StartPeriodicUpdates(interval time.Duration) {
	j.logger.WithField("interval", interval).Info("Starting periodic freshness sweeps")

	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			if err := j.Run(); err != nil {
				j.logger.WithError(err).Error("Freshness sweep failed")
			}
		}
	}()
}

// IsRunning returns whether the job is currently running
func (j *FreshnessJob) IsRunning() bool {
	return j.isRunning
}
