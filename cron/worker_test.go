package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"repairdesk/services/tasks"
	"repairdesk/services/warranty"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockSweeper struct {
	calls int
	err   error
}

func (m *MockSweeper) Sweep(ctx context.Context) (warranty.SweepResult, error) {
	m.calls++
	return warranty.SweepResult{Checked: 2, Sent: 1}, m.err
}

func TestHandleWarrantySweepRunsSweep(t *testing.T) {
	sweeper := &MockSweeper{}
	task, err := tasks.NewWarrantySweepTask("startup", time.Now())
	require.NoError(t, err)

	err = HandleWarrantySweep(sweeper, zap.NewNop())(context.Background(), task)
	require.NoError(t, err)
	assert.Equal(t, 1, sweeper.calls)
}

func TestHandleWarrantySweepPropagatesFailure(t *testing.T) {
	sweeper := &MockSweeper{err: errors.New("mongo down")}
	task, err := tasks.NewWarrantySweepTask("schedule", time.Now())
	require.NoError(t, err)

	err = HandleWarrantySweep(sweeper, zap.NewNop())(context.Background(), task)
	assert.Error(t, err)
}

func TestHandleWarrantySweepSkipsRetryOnBadPayload(t *testing.T) {
	sweeper := &MockSweeper{}
	task := asynq.NewTask(tasks.TypeWarrantySweep, []byte("{not json"))

	err := HandleWarrantySweep(sweeper, zap.NewNop())(context.Background(), task)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
	assert.Equal(t, 0, sweeper.calls)
}
