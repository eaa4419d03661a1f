package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"designlab-backend/internal/domains/design/model"
	"designlab-backend/internal/shared"
	"designlab-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddress, redisPassword string, redisDB int) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     redisAddress,
			Password: redisPassword,
			DB:       redisDB,
		},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{scheduler: scheduler}
}

func (s *Scheduler) RegisterMaintenanceJobs() error {
	return s.registerRefreshPreviewURLsJob()
}

// ================================================
// JOB 1: Refresh Preview URLs (Hourly)
// ================================================
// Presigned URLs carry a short TTL, so records still being polled or
// shared need periodic re-signing. Hourly keeps the furthest-expired
// URL well inside a day-old window.
func (s *Scheduler) registerRefreshPreviewURLsJob() error {
	payload, err := json.Marshal(model.RefreshPreviewURLsPayload{
		WindowHours: 24,
		Limit:       200,
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeRefreshPreviewURLs, payload)

	_, err = s.scheduler.Register(
		"0 * * * *", // Hourly at minute 0
		task,
		asynq.Queue(shared.QueueMaintenance),
		asynq.MaxRetry(1),
		asynq.Timeout(10*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register RefreshPreviewURLs job", err)
		return err
	}

	logger.Info("✓ Registered RefreshPreviewURLs: hourly", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Run() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
