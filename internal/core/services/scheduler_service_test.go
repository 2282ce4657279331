package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"residency-api/internal/config"
	"residency-api/internal/pkg/logger"
)

func TestSchedulerLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	disabled := NewSchedulerService(config.SchedulerConfig{}, time.UTC, f.maintenance, f.auth, logger.Nop())
	require.NoError(t, disabled.Start())
	disabled.Stop(ctx)

	bad := NewSchedulerService(config.SchedulerConfig{Enabled: true, ReminderSpec: "every tuesday", TokenCleanupSpec: "@daily"}, time.UTC, f.maintenance, f.auth, logger.Nop())
	assert.Error(t, bad.Start())

	s := NewSchedulerService(config.SchedulerConfig{
		Enabled:          true,
		ReminderSpec:     "0 9 * * *",
		ReminderInterval: 7 * 24 * time.Hour,
		TokenCleanupSpec: "@daily",
	}, time.UTC, f.maintenance, f.auth, logger.Nop())
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 2)
	s.Stop(ctx)
}

func TestSchedulerJobs(t *testing.T) {
	f := newFixture(t)
	f.seedBuildings(t, 1)
	_, err := f.maintenance.Generate(context.Background(), admin, &GenerateInput{Month: "May", Year: 2024, Amount: decimal.NewFromInt(2000)})
	require.NoError(t, err)

	s := NewSchedulerService(config.SchedulerConfig{ReminderInterval: 7 * 24 * time.Hour}, time.UTC, f.maintenance, f.auth, logger.Nop())
	s.runReminders()
	require.Equal(t, 1, f.notifier.count())
	assert.Len(t, f.notifier.sent[0].Targets, 20, "one target per overdue flat")

	s.runReminders()
	assert.Equal(t, 1, f.notifier.count(), "stamped records wait for the interval")

	s.runTokenCleanup()
}
