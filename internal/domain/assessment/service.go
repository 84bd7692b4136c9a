package assessment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cardionova/cardionova/internal/platform/explain"
	"github.com/cardionova/cardionova/internal/platform/insights"
	"github.com/cardionova/cardionova/internal/platform/ml"
)

const topFeatureCount = 5

// Insights is the narrative-text generator consumed by the predict flow.
// All methods are best effort and never fail.
type Insights interface {
	Explanation(ctx context.Context, a insights.Assessment) string
	LifestyleSuggestions(ctx context.Context, a insights.Assessment) []string
	FollowupPlan(ctx context.Context, a insights.Assessment) string
	PrescriptionSummary(ctx context.Context, a insights.Assessment) string
}

type Service struct {
	repo     Repository
	registry *ml.Registry
	insights Insights
}

func NewService(repo Repository, registry *ml.Registry, ins Insights) *Service {
	return &Service{repo: repo, registry: registry, insights: ins}
}

// PredictInput is a single assessment submission. Features carries the raw
// clinical fields; Lifestyle is free-form context stored alongside.
type PredictInput struct {
	PatientName string
	Features    map[string]interface{}
	Lifestyle   map[string]interface{}
}

// Outcome is a completed prediction. ShapError is set when attribution
// failed; the prediction itself is still valid.
type Outcome struct {
	Record    *Record
	ShapError string
}

// Predict runs the full assessment flow and persists the result. A
// persistence failure fails the call: a result the doctor can see but
// history cannot replay is worse than an error.
func (s *Service) Predict(ctx context.Context, userEmail string, in PredictInput) (*Outcome, error) {
	normalized, err := ml.Normalize(in.Features)
	if err != nil {
		return nil, err
	}

	pre := s.registry.Preprocessor()
	x, err := pre.Transform(normalized)
	if err != nil {
		return nil, err
	}

	score, level, err := s.registry.Score(x)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}

	attribution := explain.TopFeatures(s.registry.Forest(), x, pre.FeatureNames(), topFeatureCount)
	shapError := ""
	if attribution.Err != nil {
		shapError = attribution.Err.Error()
		log.Warn().Err(attribution.Err).Msg("feature attribution failed")
	}
	top := make([]FeatureContribution, 0, len(attribution.Top))
	for _, c := range attribution.Top {
		top = append(top, FeatureContribution{Feature: c.Feature, Value: c.Value})
	}

	ins := insights.Assessment{
		Inputs:      in.Features,
		RiskScore:   score,
		RiskLevel:   level,
		TopFeatures: attribution.Top,
	}

	rec := &Record{
		UserID:      userEmail,
		DoctorID:    userEmail,
		PatientID:   DerivePatientID(userEmail, in.PatientName),
		PatientName: in.PatientName,
		Input:       in.Features,
		Lifestyle:   in.Lifestyle,

		Trestbps: numericField(in.Features, "trestbps"),
		Chol:     numericField(in.Features, "chol"),
		Thalach:  numericField(in.Features, "thalach"),
		Oldpeak:  numericField(in.Features, "oldpeak"),
		Restecg:  numericField(in.Features, "restecg"),

		SmokingStatus:         stringField(in.Lifestyle, "smoking_status"),
		DiabetesStatus:        stringField(in.Lifestyle, "diabetes_status"),
		FamilyHistoryDiabetes: stringField(in.Lifestyle, "family_history_diabetes"),
		PregnancyStatus:       stringField(in.Lifestyle, "pregnancy_status"),

		RiskScore: score,
		RiskLevel: level,

		TopFeatures:          top,
		ExplanationText:      s.insights.Explanation(ctx, ins),
		LifestyleSuggestions: s.insights.LifestyleSuggestions(ctx, ins),
		FollowupPlan:         s.insights.FollowupPlan(ctx, ins),
		PrescriptionSummary:  s.insights.PrescriptionSummary(ctx, ins),
	}

	if err := s.repo.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist assessment: %w", err)
	}

	return &Outcome{Record: rec, ShapError: shapError}, nil
}

// History returns the caller's assessments, newest first.
func (s *Service) History(ctx context.Context, userEmail string) ([]*Record, error) {
	return s.repo.ListByUser(ctx, userEmail)
}

// DeleteItem removes one of the caller's assessments.
func (s *Service) DeleteItem(ctx context.Context, id uuid.UUID, userEmail string) error {
	return s.repo.Delete(ctx, id, userEmail)
}

func numericField(m map[string]interface{}, key string) *float64 {
	raw, ok := m[key]
	if !ok || raw == nil {
		return nil
	}
	var v float64
	switch t := raw.(type) {
	case float64:
		v = t
	case float32:
		v = float64(t)
	case int:
		v = float64(t)
	case int64:
		v = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return nil
		}
		v = parsed
	default:
		return nil
	}
	return &v
}

func stringField(m map[string]interface{}, key string) *string {
	raw, ok := m[key]
	if !ok || raw == nil {
		return nil
	}
	s := fmt.Sprintf("%v", raw)
	if s == "" {
		return nil
	}
	return &s
}
