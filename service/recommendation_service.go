package service

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"solar-sizer/calculator"
	"solar-sizer/domain"
	"solar-sizer/report"
)

var tracer = otel.Tracer("solar-sizer/service")

// Outcome is a recommendation and its rendered HTML.
type Outcome struct {
	Recommendation calculator.Recommendation
	HTML           string
}

type RecommendationService struct {
	engine *calculator.Engine
	apps   *ApplicationService
	log    *slog.Logger
}

// NewRecommendationService creates a RecommendationService. apps may be nil,
// in which case nothing is recorded.
func NewRecommendationService(
	engine *calculator.Engine,
	apps *ApplicationService,
	log *slog.Logger,
) *RecommendationService {
	return &RecommendationService{engine: engine, apps: apps, log: log}
}

// Engine exposes the calculator for read-only lookups.
func (s *RecommendationService) Engine() *calculator.Engine { return s.engine }

// Calculate validates the request, runs the engine and renders the result.
// When number is set the inputs and summary are stored against it.
func (s *RecommendationService) Calculate(
	ctx context.Context,
	number string,
	req domain.CalculationRequest,
) (Outcome, error) {
	ctx, span := tracer.Start(ctx, "RecommendationService.Calculate")
	defer span.End()

	if len(req.Appliances) > MaxAppliances {
		err := domain.NewInputError("appliances", "", domain.ErrOutOfRange)
		span.SetStatus(codes.Error, err.Error())
		return Outcome{}, err
	}
	profile, err := req.Profile()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Outcome{}, err
	}
	span.SetAttributes(
		attribute.String("solar.location", profile.Location),
		attribute.String("solar.usage_type", string(profile.UsageType)),
		attribute.Float64("solar.daily_energy_kwh", profile.DailyEnergyKWh),
	)

	rec, err := s.engine.Recommend(profile)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Outcome{}, fmt.Errorf("recommend: %w", err)
	}
	span.SetAttributes(attribute.String("solar.system_type", string(rec.SystemType.Type)))
	if len(rec.Fallbacks) > 0 {
		s.log.Info("price list lookup fell back to defaults", "fallbacks", rec.Fallbacks)
	}

	html, err := report.HTML(rec)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Outcome{}, err
	}

	// Saving is not critical, a failure is only logged.
	if s.apps != nil && number != "" {
		summary := rec.Summary()
		data := domain.CalculatorData{Profile: profile, Summary: &summary}
		if _, err := s.apps.SaveCalculatorData(ctx, number, data); err != nil {
			s.log.Warn("failed to save calculator data", "application", number, "error", err)
		}
	}

	return Outcome{Recommendation: rec, HTML: html}, nil
}
