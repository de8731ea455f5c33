package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar-sizer/calculator"
	"solar-sizer/domain"
)

func newRecommendationService(t *testing.T, apps *ApplicationService) *RecommendationService {
	t.Helper()
	engine, err := calculator.New(calculator.DefaultTables())
	require.NoError(t, err)
	return NewRecommendationService(engine, apps, discardLogger())
}

func lagosRequest() domain.CalculationRequest {
	return domain.CalculationRequest{
		Location:    "Lagos",
		UserType:    "household",
		GridHours:   "10",
		DailyEnergy: "10",
	}
}

func TestCalculate_SavesSummary(t *testing.T) {
	repo := NewMockApplicationRepository()
	apps := newApplicationService(repo, &MockPublisher{})
	s := newRecommendationService(t, apps)

	out, err := s.Calculate(context.Background(), "SOL-0000000A", lagosRequest())
	require.NoError(t, err)
	assert.Equal(t, calculator.SystemHybrid, out.Recommendation.SystemType.Type)
	assert.Contains(t, out.HTML, "₦2,962,500")
	assert.True(t, repo.SaveCalled)

	app, err := apps.Get(context.Background(), "SOL-0000000A")
	require.NoError(t, err)
	assert.Equal(t, "hybrid", app.SystemType)
	require.NotNil(t, app.SolarKW)
	assert.Equal(t, 2.5, *app.SolarKW)
	assert.Equal(t, "household", app.UsageType)
}

func TestCalculate_SaveFailureIsNotFatal(t *testing.T) {
	repo := NewMockApplicationRepository()
	repo.ForceError = true
	s := newRecommendationService(t, newApplicationService(repo, &MockPublisher{}))

	_, err := s.Calculate(context.Background(), "SOL-0000000B", lagosRequest())
	assert.NoError(t, err)
	assert.True(t, repo.SaveCalled)
}

func TestCalculate_InvalidInput(t *testing.T) {
	repo := NewMockApplicationRepository()
	s := newRecommendationService(t, newApplicationService(repo, &MockPublisher{}))

	req := lagosRequest()
	req.GridHours = "lots"
	_, err := s.Calculate(context.Background(), "SOL-0000000C", req)

	var inErr *domain.InputError
	require.True(t, errors.As(err, &inErr))
	assert.Equal(t, "grid_hours", inErr.Field)
	assert.ErrorIs(t, err, domain.ErrNotNumeric)
	assert.False(t, repo.SaveCalled)
}

func TestCalculate_TooManyAppliances(t *testing.T) {
	s := newRecommendationService(t, nil)

	req := lagosRequest()
	req.Appliances = make([]domain.Appliance, MaxAppliances+1)
	_, err := s.Calculate(context.Background(), "", req)
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
}

func TestCalculate_WithoutApplication(t *testing.T) {
	s := newRecommendationService(t, nil)

	out, err := s.Calculate(context.Background(), "", lagosRequest())
	require.NoError(t, err)
	assert.Equal(t, 7, out.Recommendation.Solar.NumPanels)
}
