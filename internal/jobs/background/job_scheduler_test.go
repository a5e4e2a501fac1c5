package background

import (
	"context"
	"testing"
	"time"

	"subdesk/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobScheduler_RegistersEnabledJobs(t *testing.T) {
	reminderJobs := jobs.NewReminderJobs(nil, nil, nil, 3)
	js, err := NewJobScheduler(reminderJobs, nil, Schedule{
		GenerateEvery: time.Hour,
		DispatchEvery: 5 * time.Minute,
	})
	require.NoError(t, err)
	defer func() { assert.NoError(t, js.Stop()) }()

	status := js.GetJobStatus()
	require.Len(t, status, 2)
	assert.Equal(t, "dispatch-reminders", status[0].Name)
	assert.Equal(t, "generate-reminders", status[1].Name)
}

func TestJobScheduler_AddAndRemoveJob(t *testing.T) {
	js, err := NewJobScheduler(jobs.NewReminderJobs(nil, nil, nil, 3), nil, Schedule{})
	require.NoError(t, err)
	defer func() { assert.NoError(t, js.Stop()) }()

	noop := func(context.Context) error { return nil }
	require.NoError(t, js.AddJob("cleanup", time.Minute, noop))
	assert.Error(t, js.AddJob("cleanup", time.Minute, noop))
	assert.Len(t, js.GetJobStatus(), 1)

	require.NoError(t, js.RemoveJob("cleanup"))
	assert.Empty(t, js.GetJobStatus())
	assert.NoError(t, js.RemoveJob("missing"))
}

func TestJobScheduler_RunsJob(t *testing.T) {
	js, err := NewJobScheduler(jobs.NewReminderJobs(nil, nil, nil, 3), nil, Schedule{})
	require.NoError(t, err)

	ran := make(chan struct{}, 1)
	require.NoError(t, js.AddJob("probe", time.Hour, func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}))
	js.Start()
	defer func() { assert.NoError(t, js.Stop()) }()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}
}
