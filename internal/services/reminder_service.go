package services

import (
	"context"
	"errors"
	"slices"
	"time"

	"subdesk/internal/billing"
	"subdesk/internal/common"
	"subdesk/internal/metrics"
	"subdesk/internal/models"
	"subdesk/internal/reminders"
	"subdesk/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReminderDispatcher delivers one reminder over its channel.
type ReminderDispatcher interface {
	Dispatch(ctx context.Context, reminder *models.ReminderDetail, customMessage string) error
}

// GenerateResult reports one generator run.
type GenerateResult struct {
	Created []*models.Reminder `json:"created"`
	Skipped int                `json:"skipped"`
}

type ReminderService interface {
	Generate(ctx context.Context, reference time.Time) (*GenerateResult, error)
	ListPending(ctx context.Context, reference time.Time) ([]*models.ReminderDetail, error)
	MarkSent(ctx context.Context, id uuid.UUID) (*models.Reminder, error)
	MarkFailed(ctx context.Context, id uuid.UUID) (*models.Reminder, error)
	Deliver(ctx context.Context, id uuid.UUID, final bool) error

	Create(ctx context.Context, reminder *models.Reminder) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ReminderDetail, error)
	Update(ctx context.Context, reminder *models.Reminder) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter repositories.ReminderFilter, opts repositories.ListOptions) ([]*models.ReminderDetail, error)

	GetSettings(ctx context.Context, subscriptionID uuid.UUID) (*models.ReminderSettings, error)
	SaveSettings(ctx context.Context, settings *models.ReminderSettings) error
	DeleteSettings(ctx context.Context, subscriptionID uuid.UUID) error
}

const maxReminderDays = 365

type reminderService struct {
	reminderRepo     repositories.ReminderRepository
	settingsRepo     repositories.ReminderSettingsRepository
	subscriptionRepo repositories.SubscriptionRepository
	dispatcher       ReminderDispatcher
	policy           reminders.Policy
	now              func() time.Time
}

func NewReminderService(
	reminderRepo repositories.ReminderRepository,
	settingsRepo repositories.ReminderSettingsRepository,
	subscriptionRepo repositories.SubscriptionRepository,
	dispatcher ReminderDispatcher,
	policy reminders.Policy,
) ReminderService {
	return &reminderService{
		reminderRepo:     reminderRepo,
		settingsRepo:     settingsRepo,
		subscriptionRepo: subscriptionRepo,
		dispatcher:       dispatcher,
		policy:           policy,
		now:              time.Now,
	}
}

// Generate creates the reminders due at reference. Drafts the store rejects
// as duplicates, e.g. from a concurrent run, are counted as skipped.
func (s *reminderService) Generate(ctx context.Context, reference time.Time) (*GenerateResult, error) {
	active, err := s.subscriptionRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(active))
	for i := range active {
		ids[i] = active[i].ID
	}
	existing, err := s.reminderRepo.ListBySubscriptions(ctx, ids)
	if err != nil {
		return nil, err
	}
	settings, err := s.settingsRepo.ListBySubscriptions(ctx, ids)
	if err != nil {
		return nil, err
	}

	drafts := reminders.ComputePlanned(active, existing, settings, s.policy, reference)

	result := &GenerateResult{Created: make([]*models.Reminder, 0, len(drafts))}
	for _, draft := range drafts {
		reminder, err := s.reminderRepo.InsertIfAbsent(ctx, draft)
		if err != nil {
			return result, err
		}
		if reminder == nil {
			result.Skipped++
			metrics.RemindersSkippedTotal.Inc()
			continue
		}
		metrics.RecordGenerated(reminder.Type)
		result.Created = append(result.Created, reminder)
	}

	log.Info().
		Time("reference", billing.DateOf(reference)).
		Int("created", len(result.Created)).
		Int("skipped", result.Skipped).
		Msg("reminders generated")
	return result, nil
}

// ListPending returns pending reminders due on or before reference, oldest
// first.
func (s *reminderService) ListPending(ctx context.Context, reference time.Time) ([]*models.ReminderDetail, error) {
	due, err := s.reminderRepo.ListDue(ctx, billing.DateOf(reference), 0)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.ReminderDetail, len(due))
	plain := make([]models.Reminder, len(due))
	for i, d := range due {
		byID[d.ID] = d
		plain[i] = d.Reminder
	}

	out := make([]*models.ReminderDetail, 0, len(due))
	for r := range reminders.ListPending(plain, reference) {
		out = append(out, byID[r.ID])
	}
	return out, nil
}

func (s *reminderService) MarkSent(ctx context.Context, id uuid.UUID) (*models.Reminder, error) {
	current, err := s.reminderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sent, err := reminders.MarkSent(*current, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.reminderRepo.MarkSent(ctx, id, *sent.SentAt); err != nil {
		return nil, err
	}
	metrics.RecordSent(sent.Type)
	return &sent, nil
}

func (s *reminderService) MarkFailed(ctx context.Context, id uuid.UUID) (*models.Reminder, error) {
	current, err := s.reminderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	failed, err := reminders.MarkFailed(*current)
	if err != nil {
		return nil, err
	}
	if err := s.reminderRepo.MarkFailed(ctx, id); err != nil {
		return nil, err
	}
	metrics.RecordFailed(failed.Type)
	return &failed, nil
}

// Deliver sends a pending reminder and marks it sent. A reminder that is no
// longer pending is left alone. When the send fails on the final attempt the
// reminder is marked failed; otherwise the error is returned for a retry.
func (s *reminderService) Deliver(ctx context.Context, id uuid.UUID, final bool) error {
	detail, err := s.reminderRepo.GetDetail(ctx, id)
	if err != nil {
		return err
	}
	logger := log.With().Str("reminder_id", id.String()).Str("type", string(detail.Type)).Logger()
	if detail.Status != models.ReminderStatusPending {
		logger.Debug().Str("status", string(detail.Status)).Msg("reminder no longer pending, skipping delivery")
		return nil
	}

	var customMessage string
	settings, err := s.settingsRepo.GetBySubscription(ctx, detail.SubscriptionID)
	switch {
	case err == nil && settings.CustomMessage != nil:
		customMessage = *settings.CustomMessage
	case err != nil && !errors.Is(err, common.ErrNotFound):
		return err
	}

	if sendErr := s.dispatcher.Dispatch(ctx, detail, customMessage); sendErr != nil {
		logger.Warn().Err(sendErr).Bool("final", final).Msg("reminder delivery failed")
		if final {
			if _, err := s.MarkFailed(ctx, id); err != nil && !errors.Is(err, common.ErrInvalidTransition) {
				return errors.Join(sendErr, err)
			}
		}
		return sendErr
	}

	if _, err := s.MarkSent(ctx, id); err != nil {
		if errors.Is(err, common.ErrInvalidTransition) {
			return nil
		}
		return err
	}
	logger.Info().Msg("reminder delivered")
	return nil
}

func (s *reminderService) validate(ctx context.Context, reminder *models.Reminder) error {
	verr := &common.ValidationError{}
	if reminder.SubscriptionID == uuid.Nil {
		verr.Add("subscription_id", "Subscription is required")
	}
	if reminder.ReminderDate.IsZero() {
		verr.Add("reminder_date", "Reminder date is required")
	}
	if !reminder.Type.Valid() {
		verr.Add("type", "Type must be email or whatsapp")
	}
	if !verr.Empty() {
		return verr
	}
	reminder.ReminderDate = billing.DateOf(reminder.ReminderDate)

	if _, err := s.subscriptionRepo.GetByID(ctx, reminder.SubscriptionID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewValidationError("subscription_id", "Subscription does not exist")
		}
		return err
	}
	return nil
}

// Create stores a manual reminder. Its date may lie in the past; it is then
// immediately due.
func (s *reminderService) Create(ctx context.Context, reminder *models.Reminder) error {
	if err := s.validate(ctx, reminder); err != nil {
		return err
	}
	reminder.ID = uuid.New()
	reminder.Status = models.ReminderStatusPending
	reminder.SentAt = nil
	return s.reminderRepo.Insert(ctx, reminder)
}

func (s *reminderService) GetByID(ctx context.Context, id uuid.UUID) (*models.ReminderDetail, error) {
	return s.reminderRepo.GetDetail(ctx, id)
}

// Update changes the date or type of a pending reminder.
func (s *reminderService) Update(ctx context.Context, reminder *models.Reminder) error {
	current, err := s.reminderRepo.GetByID(ctx, reminder.ID)
	if err != nil {
		return err
	}
	if current.Status != models.ReminderStatusPending {
		return common.InvalidTransition("reminder", current.ID, string(current.Status), "updated")
	}
	// the owning subscription cannot change
	reminder.SubscriptionID = current.SubscriptionID
	if err := s.validate(ctx, reminder); err != nil {
		return err
	}
	if err := s.reminderRepo.Update(ctx, reminder); err != nil {
		return err
	}
	reminder.Status = current.Status
	reminder.CreatedAt = current.CreatedAt
	return nil
}

func (s *reminderService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.reminderRepo.Delete(ctx, id)
}

func (s *reminderService) List(ctx context.Context, filter repositories.ReminderFilter, opts repositories.ListOptions) ([]*models.ReminderDetail, error) {
	verr := &common.ValidationError{}
	if filter.Type != "" && !filter.Type.Valid() {
		verr.Add("type", "Type must be email or whatsapp")
	}
	switch filter.Status {
	case "", models.ReminderStatusPending, models.ReminderStatusSent, models.ReminderStatusFailed:
	default:
		verr.Add("status", "Status must be pending, sent or failed")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return s.reminderRepo.List(ctx, filter, opts)
}

func (s *reminderService) GetSettings(ctx context.Context, subscriptionID uuid.UUID) (*models.ReminderSettings, error) {
	return s.settingsRepo.GetBySubscription(ctx, subscriptionID)
}

func (s *reminderService) SaveSettings(ctx context.Context, settings *models.ReminderSettings) error {
	verr := &common.ValidationError{}
	if len(settings.ReminderDays) == 0 {
		verr.Add("reminder_days", "At least one reminder day is required")
	}
	for _, d := range settings.ReminderDays {
		if d < 0 || d > maxReminderDays {
			verr.Add("reminder_days", "Reminder days must be between 0 and 365")
		}
	}
	if err := verr.OrNil(); err != nil {
		return err
	}
	slices.Sort(settings.ReminderDays)
	settings.ReminderDays = slices.Compact(settings.ReminderDays)

	if _, err := s.subscriptionRepo.GetByID(ctx, settings.SubscriptionID); err != nil {
		return err
	}
	if settings.ID == uuid.Nil {
		settings.ID = uuid.New()
	}
	return s.settingsRepo.Upsert(ctx, settings)
}

func (s *reminderService) DeleteSettings(ctx context.Context, subscriptionID uuid.UUID) error {
	return s.settingsRepo.Delete(ctx, subscriptionID)
}
