package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"repairdesk/config"
	"repairdesk/services/tasks"
	"repairdesk/services/warranty"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// WarrantyWorker owns the asynq server, scheduler and client behind the warranty sweep.
type WarrantyWorker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	client    *asynq.Client
	logger    *zap.Logger
}

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// StartWarrantyWorker runs the sweep on WARRANTY_SWEEP_CRON and once shortly after start.
func StartWarrantyWorker(svc warranty.WarrantyService, logger *zap.Logger) (*WarrantyWorker, error) {
	opts := redisOpts()
	w := &WarrantyWorker{
		server: asynq.NewServer(opts, asynq.Config{
			Concurrency: 1,
			Queues:      map[string]int{"default": 1},
		}),
		scheduler: asynq.NewScheduler(opts, &asynq.SchedulerOpts{Location: time.Local}),
		client:    asynq.NewClient(opts),
		logger:    logger,
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeWarrantySweep, HandleWarrantySweep(svc, logger))

	periodic, err := tasks.NewWarrantySweepTask("schedule", time.Now())
	if err != nil {
		return nil, err
	}
	if _, err := w.scheduler.Register(config.AppConfig.WarrantySweepCron, periodic); err != nil {
		return nil, fmt.Errorf("registering warranty sweep %q: %w", config.AppConfig.WarrantySweepCron, err)
	}

	go func() {
		logger.Info("[WarrantyWorker] Starting async worker")
		const maxAttempts = 5
		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := w.server.Run(mux)
			if err == nil {
				return
			}
			logger.Error("[WarrantyWorker] Failed to start worker",
				zap.Int("attempt", attempts), zap.Int("max", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("[WarrantyWorker] Max retry attempts reached, sweeps disabled")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()

	go func() {
		if err := w.scheduler.Run(); err != nil {
			logger.Error("[WarrantyWorker] Scheduler stopped", zap.Error(err))
		}
	}()

	startup, err := tasks.NewWarrantySweepTask("startup", time.Now())
	if err != nil {
		return nil, err
	}
	if _, err := w.client.Enqueue(startup, asynq.ProcessIn(config.AppConfig.WarrantyInitialDelay)); err != nil {
		logger.Warn("[WarrantyWorker] Could not queue startup sweep", zap.Error(err))
	}
	return w, nil
}

// Stop shuts the scheduler and server down.
func (w *WarrantyWorker) Stop() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
	if err := w.client.Close(); err != nil {
		w.logger.Warn("[WarrantyWorker] Closing client", zap.Error(err))
	}
}

// HandleWarrantySweep runs one sweep per task.
func HandleWarrantySweep(svc warranty.WarrantyService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.WarrantySweepPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("[WarrantySweep] Invalid payload", zap.Error(err))
			return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
		}

		res, err := svc.Sweep(ctx)
		if err != nil {
			logger.Error("[WarrantySweep] Sweep failed", zap.String("trigger", p.Trigger), zap.Error(err))
			return err
		}
		logger.Info("[WarrantySweep] Done",
			zap.String("trigger", p.Trigger),
			zap.Int("checked", res.Checked),
			zap.Int("sent", res.Sent))
		return nil
	}
}
