package handlers

import (
	"net/http"

	"subdesk/internal/common"
	"subdesk/internal/jobs"
	"subdesk/internal/jobs/background"
	"subdesk/internal/services"

	"github.com/labstack/echo/v4"
)

// JobStatusProvider reports scheduled jobs.
type JobStatusProvider interface {
	GetJobStatus() []background.JobStatus
}

// JobHandlers exposes exports and scheduler state. Either collaborator may be
// nil when the feature is not configured.
type JobHandlers struct {
	exportService services.ExportService
	enqueuer      jobs.TaskEnqueuer
	scheduler     JobStatusProvider
}

func NewJobHandlers(exportService services.ExportService, enqueuer jobs.TaskEnqueuer, scheduler JobStatusProvider) *JobHandlers {
	return &JobHandlers{
		exportService: exportService,
		enqueuer:      enqueuer,
		scheduler:     scheduler,
	}
}

// ExportSubscriptions handles POST /exports/subscriptions?status=&customer_id=&product_id=.
// With ?async=true the export runs on the worker and 202 carries the task id.
func (h *JobHandlers) ExportSubscriptions(c echo.Context) error {
	if h.exportService == nil {
		return c.JSON(http.StatusNotImplemented, common.CreateErrorResponse("NOT_CONFIGURED", "Exports require object storage", nil))
	}
	filter, err := subscriptionFilter(c)
	if err != nil {
		return common.SendError(c, err)
	}
	ctx := c.Request().Context()

	if c.QueryParam("async") == "true" && h.enqueuer != nil {
		task, err := jobs.NewExportSubscriptionsTask(filter)
		if err != nil {
			return common.SendError(c, err)
		}
		info, err := h.enqueuer.EnqueueContext(ctx, task)
		if err != nil {
			return common.SendError(c, common.DependencyFailure("enqueue export", err))
		}
		return c.JSON(http.StatusAccepted, map[string]any{
			"task_id": info.ID,
			"queue":   info.Queue,
		})
	}

	result, err := h.exportService.ExportSubscriptions(ctx, filter)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// JobStatus handles GET /jobs
func (h *JobHandlers) JobStatus(c echo.Context) error {
	statuses := []background.JobStatus{}
	if h.scheduler != nil {
		statuses = append(statuses, h.scheduler.GetJobStatus()...)
	}
	return c.JSON(http.StatusOK, map[string]any{"jobs": statuses})
}
