package main

import (
	"context"
	"fmt"

	"subdesk/internal/jobs"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Process queued reminder deliveries and exports",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := bootstrap(ctx, "worker")
		if err != nil {
			return err
		}
		defer a.close()

		srv := asynq.NewServer(redisConnOpt(a.cfg), asynq.Config{
			Concurrency: a.cfg.Worker.Concurrency,
			Queues: map[string]int{
				jobs.ReminderQueue: 6,
				"default":          3,
			},
			Logger: asynqLogger{logger: log.With().Str("subsystem", "asynq").Logger()},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				log.Warn().Err(err).
					Str("task", task.Type()).
					Int("retry", retried).
					Int("max_retry", maxRetry).
					Msg("task failed")
			}),
		})

		log.Info().Int("concurrency", a.cfg.Worker.Concurrency).Msg("starting worker")
		// Run blocks until SIGINT or SIGTERM.
		return srv.Run(jobs.NewServeMux(a.reminderJobs, a.exportJobs))
	},
}

// asynqLogger routes asynq's logs through zerolog.
type asynqLogger struct {
	logger zerolog.Logger
}

func (l asynqLogger) Debug(args ...any) { l.logger.Debug().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...any)  { l.logger.Info().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...any)  { l.logger.Warn().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...any) { l.logger.Error().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...any) { l.logger.Fatal().Msg(fmt.Sprint(args...)) }
