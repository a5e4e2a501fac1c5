package handlers

import (
	"net/http"
	"strings"
	"time"

	"subdesk/internal/common"
	"subdesk/internal/models"
	"subdesk/internal/repositories"
	"subdesk/internal/services"

	"github.com/labstack/echo/v4"
)

// ReminderHandlers handles reminder HTTP requests
type ReminderHandlers struct {
	reminderService services.ReminderService
	now             func() time.Time
}

// NewReminderHandlers creates a new reminder handlers instance
func NewReminderHandlers(reminderService services.ReminderService) *ReminderHandlers {
	return &ReminderHandlers{reminderService: reminderService, now: time.Now}
}

// ReminderRequest is the payload of manual reminders
type ReminderRequest struct {
	SubscriptionID string `json:"subscription_id"`
	ReminderDate   string `json:"reminder_date"`
	Type           string `json:"type"`
}

func (r ReminderRequest) toModel() (*models.Reminder, error) {
	verr := &common.ValidationError{}
	reminder := &models.Reminder{
		SubscriptionID: parseOptionalID(r.SubscriptionID, "subscription_id", verr),
		ReminderDate:   parseOptionalDate(r.ReminderDate, "reminder_date", verr),
		Type:           models.ReminderType(strings.ToLower(strings.TrimSpace(r.Type))),
	}
	return reminder, verr.OrNil()
}

// referenceDate reads ?date=YYYY-MM-DD, defaulting to today.
func (h *ReminderHandlers) referenceDate(c echo.Context) (time.Time, error) {
	raw := c.QueryParam("date")
	if strings.TrimSpace(raw) == "" {
		return h.now(), nil
	}
	return common.ParseDate(raw, "date")
}

// GenerateReminders handles POST /reminders/generate?date=
func (h *ReminderHandlers) GenerateReminders(c echo.Context) error {
	reference, err := h.referenceDate(c)
	if err != nil {
		return common.SendError(c, err)
	}
	result, err := h.reminderService.Generate(c.Request().Context(), reference)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// ListPending handles GET /reminders/pending?date=, oldest first
func (h *ReminderHandlers) ListPending(c echo.Context) error {
	reference, err := h.referenceDate(c)
	if err != nil {
		return common.SendError(c, err)
	}
	pending, err := h.reminderService.ListPending(c.Request().Context(), reference)
	if err != nil {
		return common.SendError(c, err)
	}
	if pending == nil {
		pending = []*models.ReminderDetail{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"date":      reference.UTC().Format(common.DateLayout),
		"reminders": pending,
	})
}

// MarkSent handles POST /reminders/:id/sent
func (h *ReminderHandlers) MarkSent(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}
	reminder, err := h.reminderService.MarkSent(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, reminder)
}

// MarkFailed handles POST /reminders/:id/failed
func (h *ReminderHandlers) MarkFailed(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}
	reminder, err := h.reminderService.MarkFailed(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, reminder)
}

// SendReminder handles POST /reminders/:id/send. The attempt is final: a
// failed send leaves the reminder failed.
func (h *ReminderHandlers) SendReminder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}
	ctx := c.Request().Context()
	if err := h.reminderService.Deliver(ctx, id, true); err != nil {
		if common.KindOf(err) == "SERVER_ERROR" {
			err = common.DependencyFailure("send reminder", err)
		}
		return common.SendError(c, err)
	}
	detail, err := h.reminderService.GetByID(ctx, id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// CreateReminder handles POST /reminders
func (h *ReminderHandlers) CreateReminder(c echo.Context) error {
	var req ReminderRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	reminder, err := req.toModel()
	if err != nil {
		return common.SendError(c, err)
	}
	if err := h.reminderService.Create(c.Request().Context(), reminder); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, reminder)
}

func (h *ReminderHandlers) GetReminder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}
	reminder, err := h.reminderService.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, reminder)
}

// UpdateReminder handles PUT /reminders/:id; only pending reminders change.
func (h *ReminderHandlers) UpdateReminder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}
	var req ReminderRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	reminder, err := req.toModel()
	if err != nil {
		return common.SendError(c, err)
	}
	reminder.ID = id
	if err := h.reminderService.Update(c.Request().Context(), reminder); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, reminder)
}

func (h *ReminderHandlers) DeleteReminder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}
	if err := h.reminderService.Delete(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListReminders handles GET /reminders?status=&type=&subscription_id=
func (h *ReminderHandlers) ListReminders(c echo.Context) error {
	opts, err := listOptions(c)
	if err != nil {
		return common.SendError(c, err)
	}
	subscriptionID, err := queryUUID(c, "subscription_id")
	if err != nil {
		return common.SendError(c, err)
	}
	filter := repositories.ReminderFilter{
		Status:         models.ReminderStatus(strings.ToLower(c.QueryParam("status"))),
		Type:           models.ReminderType(strings.ToLower(c.QueryParam("type"))),
		SubscriptionID: subscriptionID,
	}
	list, err := h.reminderService.List(c.Request().Context(), filter, opts)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, listResponse(list, opts))
}
