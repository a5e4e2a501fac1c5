package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"subdesk/internal/metrics"
	"subdesk/internal/models"
	"subdesk/internal/repositories"
	"subdesk/internal/services"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// ExportSubscriptionsPayload defines the payload for subscription export tasks
type ExportSubscriptionsPayload struct {
	Status     models.SubscriptionStatus `json:"status,omitempty"`
	CustomerID *uuid.UUID                `json:"customer_id,omitempty"`
	ProductID  *uuid.UUID                `json:"product_id,omitempty"`
}

// NewExportSubscriptionsTask creates a background export task
func NewExportSubscriptionsTask(filter repositories.SubscriptionFilter) (*asynq.Task, error) {
	data, err := json.Marshal(ExportSubscriptionsPayload{
		Status:     filter.Status,
		CustomerID: filter.CustomerID,
		ProductID:  filter.ProductID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeExportSubs, data, asynq.MaxRetry(3), asynq.Timeout(10*time.Minute)), nil
}

type ExportJobs struct {
	exportSvc services.ExportService
}

func NewExportJobs(exportSvc services.ExportService) *ExportJobs {
	return &ExportJobs{exportSvc: exportSvc}
}

// HandleExportSubscriptions handles subscription export tasks
func (e *ExportJobs) HandleExportSubscriptions(ctx context.Context, t *asynq.Task) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveJob("export-subscriptions", start, err) }()

	var payload ExportSubscriptionsPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal export payload: %v: %w", err, asynq.SkipRetry)
	}

	result, err := e.exportSvc.ExportSubscriptions(ctx, repositories.SubscriptionFilter{
		Status:     payload.Status,
		CustomerID: payload.CustomerID,
		ProductID:  payload.ProductID,
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("object", result.Object).
		Int("rows", result.Rows).
		Msg("subscription export completed")
	if w := t.ResultWriter(); w != nil {
		if data, err := json.Marshal(result); err == nil {
			if _, err := w.Write(data); err != nil {
				log.Warn().Err(err).Msg("failed to store export result")
			}
		}
	}
	return nil
}
