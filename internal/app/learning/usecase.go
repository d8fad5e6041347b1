package learning

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"loopplanner/internal/app/ports"
	"loopplanner/internal/domain/familiarity"
	"loopplanner/internal/domain/survival"
)

var ErrInvalidRequest = errors.New("invalid learning request")

// UnknownActionsError lists imported identifiers the catalog does not know.
type UnknownActionsError struct {
	Names []string
}

func (e *UnknownActionsError) Error() string {
	return fmt.Sprintf("unknown actions in learning import: %s", strings.Join(e.Names, ", "))
}

func (e *UnknownActionsError) Unwrap() error { return ErrInvalidRequest }

type UseCase struct {
	TxManager    ports.TxManager
	LearningRepo ports.LearningRepository
	Catalog      ports.CatalogProvider
	Codec        ports.LearningCodec
	Logger       survival.Logger
}

func (u UseCase) Import(ctx context.Context, req ImportRequest) (ImportResponse, error) {
	req.ProfileID = strings.TrimSpace(req.ProfileID)
	if req.ProfileID == "" || req.CSV == nil {
		return ImportResponse{}, ErrInvalidRequest
	}
	parsed, err := u.Codec.Decode(req.CSV)
	if err != nil {
		return ImportResponse{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	catalog, err := u.Catalog.Catalog(ctx)
	if err != nil {
		return ImportResponse{}, fmt.Errorf("load catalog: %w", err)
	}
	kept, unknown := parsed.State.Restrict(catalog.HasAction)
	if req.Strict && len(unknown) > 0 {
		return ImportResponse{}, &UnknownActionsError{Names: unknown}
	}

	err = u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		return u.LearningRepo.Save(txCtx, req.ProfileID, kept)
	})
	if err != nil {
		return ImportResponse{}, err
	}
	return ImportResponse{
		ProfileID:    req.ProfileID,
		Imported:     len(kept),
		Unknown:      unknown,
		SkippedLines: parsed.Skipped,
		Stats:        kept.Stats(),
	}, nil
}

func (u UseCase) Export(ctx context.Context, profileID string) (string, error) {
	state, err := u.load(ctx, profileID)
	if err != nil {
		return "", err
	}
	return u.Codec.Encode(state)
}

func (u UseCase) Get(ctx context.Context, profileID string) (GetResponse, error) {
	state, err := u.load(ctx, profileID)
	if err != nil {
		return GetResponse{}, err
	}
	return GetResponse{ProfileID: strings.TrimSpace(profileID), Learning: state, Stats: state.Stats()}, nil
}

func (u UseCase) load(ctx context.Context, profileID string) (familiarity.State, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return nil, ErrInvalidRequest
	}
	return u.LearningRepo.Get(ctx, profileID)
}

// CommitRun replays actions against the stored learning and keeps the
// resulting learning, so the next loop starts with the new familiarity.
func (u UseCase) CommitRun(ctx context.Context, req CommitRequest) (CommitResponse, error) {
	req.ProfileID = strings.TrimSpace(req.ProfileID)
	if req.ProfileID == "" || len(req.Actions) == 0 {
		return CommitResponse{}, ErrInvalidRequest
	}
	catalog, err := u.Catalog.Catalog(ctx)
	if err != nil {
		return CommitResponse{}, fmt.Errorf("load catalog: %w", err)
	}
	tuning, err := u.Catalog.Tuning(ctx)
	if err != nil {
		return CommitResponse{}, fmt.Errorf("load tuning: %w", err)
	}

	var out CommitResponse
	err = u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		stored, err := u.LearningRepo.Get(txCtx, req.ProfileID)
		if err != nil && !errors.Is(err, ports.ErrNotFound) {
			return err
		}
		result := survival.NewEngine(catalog, tuning, u.Logger).Evaluate(req.Actions, stored)
		if err := u.LearningRepo.Save(txCtx, req.ProfileID, result.Learning); err != nil {
			return err
		}
		out = CommitResponse{
			ProfileID: req.ProfileID,
			Summary:   result.Summary,
			Learning:  result.Learning,
			Stats:     result.Learning.Stats(),
		}
		return nil
	})
	if err != nil {
		return CommitResponse{}, err
	}
	return out, nil
}
