package handlers

import (
	"net/http"
	"strings"
	"time"

	"subdesk/internal/common"
	"subdesk/internal/models"
	"subdesk/internal/repositories"
	"subdesk/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const defaultExpiringDays = 30

// SubscriptionHandlers handles HTTP requests for subscriptions and their
// reminder settings
type SubscriptionHandlers struct {
	subscriptionService services.SubscriptionService
	reminderService     services.ReminderService
}

// NewSubscriptionHandlers creates a new subscription handlers instance
func NewSubscriptionHandlers(subscriptionService services.SubscriptionService, reminderService services.ReminderService) *SubscriptionHandlers {
	return &SubscriptionHandlers{
		subscriptionService: subscriptionService,
		reminderService:     reminderService,
	}
}

// SubscriptionRequest is the subscription payload. end_date is ignored on
// create, where it follows from the product's billing cycle.
type SubscriptionRequest struct {
	CustomerID string  `json:"customer_id"`
	ProductID  string  `json:"product_id"`
	StartDate  string  `json:"start_date"`
	EndDate    *string `json:"end_date"`
	Status     string  `json:"status"`
	AutoRenew  *bool   `json:"auto_renew"`
}

// toInput converts the payload, leaving missing values zero so the service
// reports them as required.
func (r SubscriptionRequest) toInput() (services.SubscriptionInput, error) {
	verr := &common.ValidationError{}
	in := services.SubscriptionInput{
		Status:    models.SubscriptionStatus(strings.ToLower(strings.TrimSpace(r.Status))),
		AutoRenew: r.AutoRenew,
	}
	in.CustomerID = parseOptionalID(r.CustomerID, "customer_id", verr)
	in.ProductID = parseOptionalID(r.ProductID, "product_id", verr)
	in.StartDate = parseOptionalDate(r.StartDate, "start_date", verr)
	if r.EndDate != nil {
		if end := parseOptionalDate(*r.EndDate, "end_date", verr); !end.IsZero() {
			in.EndDate = &end
		}
	}
	return in, verr.OrNil()
}

func parseOptionalID(raw, field string, verr *common.ValidationError) uuid.UUID {
	if strings.TrimSpace(raw) == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		verr.Add(field, field+" must be a valid UUID")
	}
	return id
}

func parseOptionalDate(raw, field string, verr *common.ValidationError) time.Time {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}
	}
	date, err := common.ParseDate(raw, field)
	if err != nil {
		verr.Add(field, field+" must be in YYYY-MM-DD format")
	}
	return date
}

// CreateSubscription handles POST /subscriptions
func (h *SubscriptionHandlers) CreateSubscription(c echo.Context) error {
	var req SubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	in, err := req.toInput()
	if err != nil {
		return common.SendError(c, err)
	}
	sub, err := h.subscriptionService.Create(c.Request().Context(), in)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, sub)
}

// GetSubscription handles GET /subscriptions/:id
func (h *SubscriptionHandlers) GetSubscription(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}
	sub, err := h.subscriptionService.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, sub)
}

// UpdateSubscription handles PUT /subscriptions/:id
func (h *SubscriptionHandlers) UpdateSubscription(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}
	var req SubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	in, err := req.toInput()
	if err != nil {
		return common.SendError(c, err)
	}
	sub, err := h.subscriptionService.Update(c.Request().Context(), id, in)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, sub)
}

// DeleteSubscription handles DELETE /subscriptions/:id. Reminders and
// settings of the subscription go with it.
func (h *SubscriptionHandlers) DeleteSubscription(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}
	if err := h.subscriptionService.Delete(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListSubscriptions handles GET /subscriptions?status=&customer_id=&product_id=
func (h *SubscriptionHandlers) ListSubscriptions(c echo.Context) error {
	opts, err := listOptions(c)
	if err != nil {
		return common.SendError(c, err)
	}
	filter, err := subscriptionFilter(c)
	if err != nil {
		return common.SendError(c, err)
	}
	subs, err := h.subscriptionService.List(c.Request().Context(), filter, opts)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, listResponse(subs, opts))
}

func subscriptionFilter(c echo.Context) (repositories.SubscriptionFilter, error) {
	filter := repositories.SubscriptionFilter{
		Status: models.SubscriptionStatus(strings.ToLower(strings.TrimSpace(c.QueryParam("status")))),
	}
	var err error
	if filter.CustomerID, err = queryUUID(c, "customer_id"); err != nil {
		return filter, err
	}
	if filter.ProductID, err = queryUUID(c, "product_id"); err != nil {
		return filter, err
	}
	return filter, nil
}

// ListExpiring handles GET /subscriptions/expiring?days=
func (h *SubscriptionHandlers) ListExpiring(c echo.Context) error {
	days := defaultExpiringDays
	if c.QueryParam("days") != "" {
		v, ok := queryInt(c, "days")
		if !ok {
			return common.SendValidationError(c, "days", "days must be an integer")
		}
		days = v
	}
	subs, err := h.subscriptionService.ListExpiring(c.Request().Context(), days)
	if err != nil {
		return common.SendError(c, err)
	}
	if subs == nil {
		subs = []*models.SubscriptionDetail{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"days":          days,
		"subscriptions": subs,
	})
}

// ReminderSettingsRequest overrides the reminder policy of one subscription
type ReminderSettingsRequest struct {
	ReminderDays    []int   `json:"reminder_days"`
	EmailEnabled    *bool   `json:"email_enabled"`
	WhatsAppEnabled *bool   `json:"whatsapp_enabled"`
	CustomMessage   *string `json:"custom_message"`
}

// GetReminderSettings handles GET /subscriptions/:id/reminder-settings
func (h *SubscriptionHandlers) GetReminderSettings(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}
	settings, err := h.reminderService.GetSettings(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, settings)
}

// SaveReminderSettings handles PUT /subscriptions/:id/reminder-settings.
// Channels default to enabled when omitted.
func (h *SubscriptionHandlers) SaveReminderSettings(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}
	var req ReminderSettingsRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	settings := &models.ReminderSettings{
		SubscriptionID:  id,
		ReminderDays:    req.ReminderDays,
		EmailEnabled:    req.EmailEnabled == nil || *req.EmailEnabled,
		WhatsAppEnabled: req.WhatsAppEnabled == nil || *req.WhatsAppEnabled,
		CustomMessage:   req.CustomMessage,
	}
	if err := h.reminderService.SaveSettings(c.Request().Context(), settings); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, settings)
}

// DeleteReminderSettings handles DELETE /subscriptions/:id/reminder-settings;
// the subscription falls back to the global policy.
func (h *SubscriptionHandlers) DeleteReminderSettings(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}
	if err := h.reminderService.DeleteSettings(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
