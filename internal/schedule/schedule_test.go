package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rrpe/internal/config"
)

func TestSchedulerRegistersJobs(t *testing.T) {
	sched, err := New(config.Default(), nil)
	require.NoError(t, err)

	require.NoError(t, sched.At(config.TimeOfDay{Hour: 15, Minute: 54}, Job{
		Name: "commit",
		Run:  func() error { return nil },
	}))
	require.NoError(t, sched.At(config.TimeOfDay{Hour: 16, Minute: 4}, Job{
		Name: "reveal",
		Run:  func() error { return nil },
	}))
	require.NoError(t, sched.At(config.TimeOfDay{Hour: 16, Minute: 15}, Job{
		Name: "extract",
		Run:  func() error { return nil },
	}))

	assert.Equal(t, 3, sched.Entries())
}

func TestSchedulerBadTimeZone(t *testing.T) {
	cfg := config.Default()
	cfg.TimeZone = "Mars/Olympus"
	_, err := New(cfg, nil)
	require.Error(t, err)
}

func TestSchedulerStartStop(t *testing.T) {
	sched, err := New(config.Default(), nil)
	require.NoError(t, err)
	require.NoError(t, sched.At(config.TimeOfDay{Hour: 3, Minute: 0}, Job{
		Name: "noop",
		Run:  func() error { return nil },
	}))

	sched.Start()
	sched.Stop()
}
