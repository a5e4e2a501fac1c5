package reminders

import (
	"testing"
	"time"

	"subdesk/internal/billing"
	"subdesk/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func activeSub(id uuid.UUID, end time.Time) models.Subscription {
	return models.Subscription{
		ID:        id,
		StartDate: end.AddDate(0, -1, 0),
		EndDate:   end,
		Status:    models.SubscriptionStatusActive,
		AutoRenew: true,
	}
}

var emailOnly = []models.ReminderType{models.ReminderTypeEmail}
var bothTypes = []models.ReminderType{models.ReminderTypeWhatsApp, models.ReminderTypeEmail}

type GeneratorTestSuite struct {
	suite.Suite
	subA uuid.UUID
	subB uuid.UUID
}

func (suite *GeneratorTestSuite) SetupTest() {
	suite.subA = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	suite.subB = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
}

func TestGeneratorTestSuite(t *testing.T) {
	suite.Run(t, new(GeneratorTestSuite))
}

func (suite *GeneratorTestSuite) TestEndToEndMonthlyScenario() {
	start := date(2025, 1, 15)
	sub := models.Subscription{
		ID:        suite.subA,
		StartDate: start,
		EndDate:   billing.Advance(start, models.BillingCycleMonthly),
		Status:    models.SubscriptionStatusActive,
	}
	require.Equal(suite.T(), date(2025, 2, 15), sub.EndDate)

	drafts := ComputeDueReminders([]models.Subscription{sub}, nil, date(2025, 2, 8), 7, emailOnly)

	require.Len(suite.T(), drafts, 1)
	assert.Equal(suite.T(), models.ReminderDraft{
		SubscriptionID: suite.subA,
		Type:           models.ReminderTypeEmail,
		ReminderDate:   date(2025, 2, 8),
	}, drafts[0])
}

func (suite *GeneratorTestSuite) TestIdempotentAfterMerge() {
	subs := []models.Subscription{
		activeSub(suite.subA, date(2025, 2, 15)),
		activeSub(suite.subB, date(2025, 2, 12)),
	}
	ref := date(2025, 2, 8)

	first := ComputeDueReminders(subs, nil, ref, 7, bothTypes)
	require.Len(suite.T(), first, 4)

	second := ComputeDueReminders(subs, AsReminders(first), ref, 7, bothTypes)
	assert.Empty(suite.T(), second)
}

func (suite *GeneratorTestSuite) TestSameInputsSameOutput() {
	subs := []models.Subscription{
		activeSub(suite.subB, date(2025, 2, 12)),
		activeSub(suite.subA, date(2025, 2, 15)),
	}
	ref := date(2025, 2, 8)

	assert.Equal(suite.T(),
		ComputeDueReminders(subs, nil, ref, 7, bothTypes),
		ComputeDueReminders(subs, nil, ref, 7, bothTypes))
}

func (suite *GeneratorTestSuite) TestSkipsExistingKeysOnly() {
	end := date(2025, 2, 15)
	subs := []models.Subscription{activeSub(suite.subA, end), activeSub(suite.subB, end)}
	existing := []models.Reminder{
		{ID: uuid.New(), SubscriptionID: suite.subA, Type: models.ReminderTypeEmail, ReminderDate: date(2025, 2, 8), Status: models.ReminderStatusSent},
		{ID: uuid.New(), SubscriptionID: suite.subB, Type: models.ReminderTypeWhatsApp, ReminderDate: date(2025, 2, 8), Status: models.ReminderStatusFailed},
		// different date, so it does not cover today's candidate
		{ID: uuid.New(), SubscriptionID: suite.subB, Type: models.ReminderTypeEmail, ReminderDate: date(2025, 2, 1), Status: models.ReminderStatusPending},
	}

	drafts := ComputeDueReminders(subs, existing, date(2025, 2, 8), 7, bothTypes)

	assert.Equal(suite.T(), []models.ReminderDraft{
		{SubscriptionID: suite.subA, Type: models.ReminderTypeWhatsApp, ReminderDate: date(2025, 2, 8)},
		{SubscriptionID: suite.subB, Type: models.ReminderTypeEmail, ReminderDate: date(2025, 2, 8)},
	}, drafts)
}

func (suite *GeneratorTestSuite) TestNoDuplicateKeysWithinOneCall() {
	sub := activeSub(suite.subA, date(2025, 2, 15))
	subs := []models.Subscription{sub, sub}
	types := []models.ReminderType{models.ReminderTypeEmail, models.ReminderTypeEmail}

	drafts := ComputeDueReminders(subs, nil, date(2025, 2, 8), 7, types)
	assert.Len(suite.T(), drafts, 1)
}

func (suite *GeneratorTestSuite) TestOrdering() {
	subs := []models.Subscription{
		activeSub(suite.subA, date(2025, 2, 15)), // reminder 2025-02-08
		activeSub(suite.subB, date(2025, 2, 12)), // reminder 2025-02-05
	}

	drafts := ComputeDueReminders(subs, nil, date(2025, 2, 10), 7, bothTypes)

	require.Len(suite.T(), drafts, 4)
	assert.Equal(suite.T(), date(2025, 2, 5), drafts[0].ReminderDate)
	assert.Equal(suite.T(), models.ReminderTypeEmail, drafts[0].Type)
	assert.Equal(suite.T(), models.ReminderTypeWhatsApp, drafts[1].Type)
	assert.Equal(suite.T(), date(2025, 2, 8), drafts[2].ReminderDate)
}

func (suite *GeneratorTestSuite) TestSortDrafts() {
	drafts := []models.ReminderDraft{
		{SubscriptionID: suite.subA, Type: models.ReminderTypeEmail, ReminderDate: date(2025, 3, 1)},
		{SubscriptionID: suite.subB, Type: models.ReminderTypeWhatsApp, ReminderDate: date(2025, 2, 20)},
		{SubscriptionID: suite.subB, Type: models.ReminderTypeEmail, ReminderDate: date(2025, 2, 20)},
	}

	SortDrafts(drafts)

	assert.Equal(suite.T(), date(2025, 2, 20), drafts[0].ReminderDate)
	assert.Equal(suite.T(), models.ReminderTypeEmail, drafts[0].Type)
	assert.Equal(suite.T(), models.ReminderTypeWhatsApp, drafts[1].Type)
	assert.Equal(suite.T(), date(2025, 3, 1), drafts[2].ReminderDate)
}

func (suite *GeneratorTestSuite) TestTieBreaksOnSubscriptionID() {
	end := date(2025, 2, 15)
	subs := []models.Subscription{activeSub(suite.subB, end), activeSub(suite.subA, end)}

	drafts := ComputeDueReminders(subs, nil, date(2025, 2, 10), 7, emailOnly)

	require.Len(suite.T(), drafts, 2)
	assert.Equal(suite.T(), suite.subA, drafts[0].SubscriptionID)
	assert.Equal(suite.T(), suite.subB, drafts[1].SubscriptionID)
}

func (suite *GeneratorTestSuite) TestIgnoresInactiveAndOutOfWindow() {
	cancelled := activeSub(uuid.New(), date(2025, 2, 10))
	cancelled.Status = models.SubscriptionStatusCancelled
	subs := []models.Subscription{
		cancelled,
		activeSub(uuid.New(), date(2025, 2, 20)), // beyond horizon
		activeSub(uuid.New(), date(2025, 2, 7)),  // already ended
	}

	assert.Empty(suite.T(), ComputeDueReminders(subs, nil, date(2025, 2, 8), 7, bothTypes))
}

func (suite *GeneratorTestSuite) TestLateGenerationKeepsLeadDate() {
	// generated two days after the ideal reminder date
	sub := activeSub(suite.subA, date(2025, 2, 15))
	drafts := ComputeDueReminders([]models.Subscription{sub}, nil, date(2025, 2, 10), 7, emailOnly)

	require.Len(suite.T(), drafts, 1)
	assert.Equal(suite.T(), date(2025, 2, 8), drafts[0].ReminderDate)
}

func (suite *GeneratorTestSuite) TestNoTypesNoDrafts() {
	sub := activeSub(suite.subA, date(2025, 2, 15))
	assert.Empty(suite.T(), ComputeDueReminders([]models.Subscription{sub}, nil, date(2025, 2, 8), 7, nil))
}
