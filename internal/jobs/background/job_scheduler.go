package background

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"subdesk/internal/jobs"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

// Schedule sets how often each recurring job runs. A zero interval disables
// the job.
type Schedule struct {
	GenerateEvery  time.Duration
	DispatchEvery  time.Duration
	LapsedEvery    time.Duration
	DashboardEvery time.Duration
	// QueueDelivery hands due reminders to the worker queue instead of
	// sending them from the scheduler process.
	QueueDelivery bool
}

// JobScheduler runs the recurring reminder and subscription jobs
type JobScheduler struct {
	scheduler    gocron.Scheduler
	reminderJobs *jobs.ReminderJobs
	dashboard    *jobs.DashboardRefreshService
	schedule     Schedule
	jobJobs      map[string]gocron.Job
	mu           sync.RWMutex
	// ctx is handed to every job run and cancelled on Stop
	ctx    context.Context
	cancel context.CancelFunc
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(reminderJobs *jobs.ReminderJobs, dashboard *jobs.DashboardRefreshService, schedule Schedule) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	js := &JobScheduler{
		ctx:          ctx,
		cancel:       cancel,
		scheduler:    scheduler,
		reminderJobs: reminderJobs,
		dashboard:    dashboard,
		schedule:     schedule,
		jobJobs:      make(map[string]gocron.Job),
	}
	if err := js.registerJobs(); err != nil {
		cancel()
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	log.Info().Int("jobs", len(js.jobJobs)).Msg("starting background job scheduler")
	js.scheduler.Start()
}

// Stop stops the job scheduler, waiting for running jobs
func (js *JobScheduler) Stop() error {
	log.Info().Msg("stopping background job scheduler")
	js.cancel()
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	dispatch := js.deliverDue
	if js.schedule.QueueDelivery {
		dispatch = js.enqueueDue
	}

	specs := []struct {
		name     string
		interval time.Duration
		fn       func(context.Context) error
	}{
		{"generate-reminders", js.schedule.GenerateEvery, js.reminderJobs.GenerateReminders},
		{"dispatch-reminders", js.schedule.DispatchEvery, dispatch},
		{"process-lapsed-subscriptions", js.schedule.LapsedEvery, js.reminderJobs.ProcessLapsed},
	}
	if js.dashboard != nil {
		specs = append(specs, struct {
			name     string
			interval time.Duration
			fn       func(context.Context) error
		}{"dashboard-refresh", js.schedule.DashboardEvery, js.dashboard.Refresh})
	}

	for _, spec := range specs {
		if spec.interval <= 0 {
			log.Info().Str("job", spec.name).Msg("job disabled")
			continue
		}
		if err := js.AddJob(spec.name, spec.interval, spec.fn); err != nil {
			return fmt.Errorf("failed to create %s job: %w", spec.name, err)
		}
	}
	return nil
}

func (js *JobScheduler) enqueueDue(ctx context.Context) error {
	_, err := js.reminderJobs.EnqueueDue(ctx)
	return err
}

func (js *JobScheduler) deliverDue(ctx context.Context) error {
	_, err := js.reminderJobs.DeliverDue(ctx)
	return err
}

// AddJob schedules fn every interval. Runs never overlap; a run that is still
// going when the next is due pushes the next one back.
func (js *JobScheduler) AddJob(name string, interval time.Duration, fn func(context.Context) error) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	if _, exists := js.jobJobs[name]; exists {
		return fmt.Errorf("job %q already registered", name)
	}

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func(ctx context.Context) {
			if err := fn(ctx); err != nil {
				log.Error().Err(err).Str("job", name).Msg("background job failed")
			}
		}, js.ctx),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}

	js.jobJobs[name] = job
	log.Debug().Str("job", name).Dur("interval", interval).Msg("registered background job")
	return nil
}

// RemoveJob removes a job from the scheduler
func (js *JobScheduler) RemoveJob(name string) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, exists := js.jobJobs[name]; exists {
		err := js.scheduler.RemoveJob(job.ID())
		delete(js.jobJobs, name)
		return err
	}
	return nil
}

// JobStatus describes one scheduled job.
type JobStatus struct {
	Name    string    `json:"name"`
	LastRun time.Time `json:"last_run,omitzero"`
	NextRun time.Time `json:"next_run,omitzero"`
}

// GetJobStatus returns information about scheduled jobs, sorted by name
func (js *JobScheduler) GetJobStatus() []JobStatus {
	js.mu.RLock()
	defer js.mu.RUnlock()

	status := make([]JobStatus, 0, len(js.jobJobs))
	for name, job := range js.jobJobs {
		s := JobStatus{Name: name}
		if last, err := job.LastRun(); err == nil {
			s.LastRun = last
		}
		if next, err := job.NextRun(); err == nil {
			s.NextRun = next
		}
		status = append(status, s)
	}
	slices.SortFunc(status, func(a, b JobStatus) int { return cmp.Compare(a.Name, b.Name) })
	return status
}
