package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusops/ta-proctor-api/internal/models"
	appErrors "github.com/campusops/ta-proctor-api/pkg/errors"
)

func TestWorkloadCreditTargets(t *testing.T) {
	tas := &taStoreStub{tas: map[string]*models.TA{
		"ta-ft": {ID: "ta-ft", Employment: models.EmploymentFullTime, WorkloadCredit: 4},
		"ta-pt": {ID: "ta-pt", Employment: models.EmploymentPartTime, WorkloadCredit: 1},
	}}
	svc := newTestWorkload(tas)

	fullTime, err := svc.Credit(context.Background(), "ta-ft")
	require.NoError(t, err)
	assert.Equal(t, 8.0, fullTime.Target)
	assert.Equal(t, 0.5, fullTime.Utilization)

	partTime, err := svc.Credit(context.Background(), "ta-pt")
	require.NoError(t, err)
	assert.Equal(t, 4.0, partTime.Target)
	assert.Equal(t, 0.25, partTime.Utilization)
}

func TestWorkloadCreditUnknownTA(t *testing.T) {
	svc := newTestWorkload(&taStoreStub{tas: map[string]*models.TA{}})

	_, err := svc.Credit(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestWorkloadReportFillsTargets(t *testing.T) {
	tas := &taStoreStub{tas: map[string]*models.TA{
		"ta-ft": {ID: "ta-ft", Employment: models.EmploymentFullTime, WorkloadCredit: 2},
	}}
	svc := newTestWorkload(tas)

	rows, err := svc.Report(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 8.0, rows[0].Target)
	assert.Equal(t, 0.25, rows[0].Utilization)
}

func TestRankOrdersByCreditThenID(t *testing.T) {
	ranked := Rank([]models.TA{
		{ID: "ta-c", WorkloadCredit: 2},
		{ID: "ta-a", WorkloadCredit: 2},
		{ID: "ta-b", WorkloadCredit: 1},
	})
	require.Len(t, ranked, 3)
	assert.Equal(t, "ta-b", ranked[0].ID)
	assert.Equal(t, "ta-a", ranked[1].ID)
	assert.Equal(t, "ta-c", ranked[2].ID)
}

func TestRankDoesNotMutateInput(t *testing.T) {
	input := []models.TA{
		{ID: "ta-b", WorkloadCredit: 5},
		{ID: "ta-a", WorkloadCredit: 1},
	}
	_ = Rank(input)
	assert.Equal(t, "ta-b", input[0].ID)
}

func TestWorkloadServiceDefaults(t *testing.T) {
	svc := NewWorkloadService(&taStoreStub{tas: map[string]*models.TA{
		"ta-pt": {ID: "ta-pt", Employment: models.EmploymentPartTime},
	}}, NewCacheService(nil, nil, 0, zap.NewNop(), false), 0, nil)

	result, err := svc.Credit(context.Background(), "ta-pt")
	require.NoError(t, err)
	assert.Equal(t, 4.0, result.Target)
}
