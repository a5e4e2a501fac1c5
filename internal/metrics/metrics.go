package metrics

import (
	"time"

	"subdesk/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Reminder lifecycle metrics
	RemindersGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subdesk_reminders_generated_total",
			Help: "Total number of reminders created by the generator by type",
		},
		[]string{"type"},
	)

	RemindersSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "subdesk_reminders_skipped_total",
			Help: "Total number of generated reminders rejected by the store as duplicates",
		},
	)

	RemindersSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subdesk_reminders_sent_total",
			Help: "Total number of reminders marked sent by type",
		},
		[]string{"type"},
	)

	RemindersFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subdesk_reminders_failed_total",
			Help: "Total number of reminders marked failed by type",
		},
		[]string{"type"},
	)

	DeliveryAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subdesk_reminder_delivery_attempts_total",
			Help: "Reminder delivery attempts by channel and outcome",
		},
		[]string{"type", "outcome"}, // ok, error
	)

	// Subscription lifecycle metrics
	SubscriptionsRenewedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "subdesk_subscriptions_renewed_total",
			Help: "Total number of lapsed subscriptions renewed automatically",
		},
	)

	SubscriptionsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "subdesk_subscriptions_expired_total",
			Help: "Total number of lapsed subscriptions marked expired",
		},
	)

	JobDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "subdesk_job_duration_seconds",
			Help:    "Duration of background job runs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job", "status"},
	)
)

func RecordGenerated(t models.ReminderType) {
	RemindersGeneratedTotal.WithLabelValues(string(t)).Inc()
}

func RecordSent(t models.ReminderType) {
	RemindersSentTotal.WithLabelValues(string(t)).Inc()
}

func RecordFailed(t models.ReminderType) {
	RemindersFailedTotal.WithLabelValues(string(t)).Inc()
}

// RecordDelivery counts one send attempt through a channel.
func RecordDelivery(t models.ReminderType, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	DeliveryAttemptsTotal.WithLabelValues(string(t), outcome).Inc()
}

// ObserveJob records how long a job run took since start.
func ObserveJob(job string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	JobDurationSeconds.WithLabelValues(job, status).Observe(time.Since(start).Seconds())
}
