package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusops/ta-proctor-api/internal/models"
)

type elapsedListerStub struct {
	elapsed      []models.Assignment
	completeErrs map[string]error
	completed    []string
}

func (s *elapsedListerStub) ListElapsedActive(ctx context.Context, now time.Time) ([]models.Assignment, error) {
	return s.elapsed, nil
}

func (s *elapsedListerStub) Complete(ctx context.Context, id string) error {
	if err, ok := s.completeErrs[id]; ok {
		return err
	}
	s.completed = append(s.completed, id)
	return nil
}

func TestSweepCompletesElapsedDuties(t *testing.T) {
	store := &elapsedListerStub{elapsed: []models.Assignment{
		{ID: "as-1", ExamID: "exam-1", TAID: "ta-a", Status: models.AssignmentConfirmed},
		{ID: "as-2", ExamID: "exam-1", TAID: "ta-b", Status: models.AssignmentAssigned},
	}}
	emitter := &emitterStub{}
	sweep := NewCompletionSweep(store, emitter, nil, time.Minute, zap.NewNop())

	completed, skipped := sweep.Sweep(context.Background())
	assert.Equal(t, 2, completed)
	assert.Equal(t, 0, skipped)
	assert.Equal(t, []string{"as-1", "as-2"}, store.completed)
	require.Len(t, emitter.events, 2)
	assert.Equal(t, models.NotifyAssignmentCompleted, emitter.events[0].Type)
	assert.Equal(t, []string{"ta-a"}, emitter.events[0].Recipients)
}

func TestSweepSkipsRowsAlreadyFinalised(t *testing.T) {
	store := &elapsedListerStub{
		elapsed: []models.Assignment{
			{ID: "as-1", TAID: "ta-a", Status: models.AssignmentConfirmed},
			{ID: "as-2", TAID: "ta-b", Status: models.AssignmentConfirmed},
		},
		completeErrs: map[string]error{"as-1": sql.ErrNoRows},
	}
	emitter := &emitterStub{}
	sweep := NewCompletionSweep(store, emitter, nil, time.Minute, zap.NewNop())

	completed, skipped := sweep.Sweep(context.Background())
	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, skipped)
	require.Len(t, emitter.events, 1)
	assert.Equal(t, "as-2", emitter.events[0].AssignmentID)
}

func TestSweepOneBadRowDoesNotBlockRest(t *testing.T) {
	store := &elapsedListerStub{
		elapsed: []models.Assignment{
			{ID: "as-1", TAID: "ta-a", Status: models.AssignmentConfirmed},
			{ID: "as-2", TAID: "ta-b", Status: models.AssignmentConfirmed},
			{ID: "as-3", TAID: "ta-c", Status: models.AssignmentConfirmed},
		},
		completeErrs: map[string]error{"as-2": errors.New("connection reset")},
	}
	sweep := NewCompletionSweep(store, &emitterStub{}, nil, time.Minute, zap.NewNop())

	completed, skipped := sweep.Sweep(context.Background())
	assert.Equal(t, 2, completed)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, []string{"as-1", "as-3"}, store.completed)
}

func TestSweepRerunIsIdempotent(t *testing.T) {
	store := &elapsedListerStub{elapsed: []models.Assignment{
		{ID: "as-1", TAID: "ta-a", Status: models.AssignmentConfirmed},
	}}
	emitter := &emitterStub{}
	sweep := NewCompletionSweep(store, emitter, nil, time.Minute, zap.NewNop())

	sweep.Sweep(context.Background())
	// The row is now terminal; the conditional update matches nothing.
	store.completeErrs = map[string]error{"as-1": sql.ErrNoRows}
	completed, skipped := sweep.Sweep(context.Background())
	assert.Equal(t, 0, completed)
	assert.Equal(t, 1, skipped)
	require.Len(t, emitter.events, 1)
}

func TestSweepStartStop(t *testing.T) {
	store := &elapsedListerStub{}
	sweep := NewCompletionSweep(store, &emitterStub{}, nil, time.Hour, zap.NewNop())
	sweep.Start()
	sweep.Stop()
}
