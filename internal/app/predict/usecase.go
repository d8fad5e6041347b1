package predict

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"loopplanner/internal/app/ports"
	"loopplanner/internal/domain/familiarity"
	"loopplanner/internal/domain/survival"
)

const DefaultMaxActions = 5000

var ErrInvalidRequest = errors.New("invalid predict request")

type UseCase struct {
	Catalog      ports.CatalogProvider
	LearningRepo ports.LearningRepository
	Metrics      ports.PredictionMetrics
	Logger       survival.Logger
	MaxActions   int
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	req.ProfileID = strings.TrimSpace(req.ProfileID)
	maxActions := u.MaxActions
	if maxActions <= 0 {
		maxActions = DefaultMaxActions
	}
	if len(req.Actions) > maxActions {
		return Response{}, fmt.Errorf("%w: %d actions exceeds limit %d", ErrInvalidRequest, len(req.Actions), maxActions)
	}
	actions := make([]string, 0, len(req.Actions))
	for i, name := range req.Actions {
		name = strings.TrimSpace(name)
		if name == "" {
			return Response{}, fmt.Errorf("%w: action %d is blank", ErrInvalidRequest, i+1)
		}
		actions = append(actions, name)
	}

	out, err := u.run(ctx, req.ProfileID, actions, req.Learning)
	if err != nil {
		u.recordFailure()
		return Response{}, err
	}
	if u.Metrics != nil {
		u.Metrics.RecordPrediction(out.Summary, out.Rejected)
	}
	return out, nil
}

func (u UseCase) run(ctx context.Context, profileID string, actions []string, inline familiarity.State) (Response, error) {
	catalog, err := u.Catalog.Catalog(ctx)
	if err != nil {
		return Response{}, fmt.Errorf("load catalog: %w", err)
	}
	tuning, err := u.Catalog.Tuning(ctx)
	if err != nil {
		return Response{}, fmt.Errorf("load tuning: %w", err)
	}
	learning, source, err := u.resolveLearning(ctx, profileID, inline)
	if err != nil {
		return Response{}, err
	}

	result := survival.NewEngine(catalog, tuning, u.Logger).Evaluate(actions, learning)
	out := Response{
		Timeline:       result.Timeline,
		Summary:        result.Summary,
		Learning:       result.Learning,
		LearningSource: source,
	}
	for _, step := range result.Timeline {
		if step.Rejected {
			out.Rejected++
		}
		if step.Warning != "" {
			out.Warnings++
		}
	}
	return out, nil
}

func (u UseCase) resolveLearning(ctx context.Context, profileID string, inline familiarity.State) (familiarity.State, LearningSource, error) {
	if inline != nil {
		return inline, LearningInline, nil
	}
	if profileID == "" || u.LearningRepo == nil {
		return familiarity.State{}, LearningEmpty, nil
	}
	stored, err := u.LearningRepo.Get(ctx, profileID)
	if errors.Is(err, ports.ErrNotFound) {
		return familiarity.State{}, LearningEmpty, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("load learning for %s: %w", profileID, err)
	}
	return stored, LearningProfile, nil
}

func (u UseCase) recordFailure() {
	if u.Metrics != nil {
		u.Metrics.RecordFailure()
	}
}
