package plan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"loopplanner/internal/app/ports"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
	MaxNameLength    = 120
)

var ErrInvalidRequest = errors.New("invalid plan request")

type UseCase struct {
	TxManager  ports.TxManager
	PlanRepo   ports.PlanRepository
	MaxActions int
	Now        func() time.Time
	NewID      func() string
}

func (u UseCase) Save(ctx context.Context, req SaveRequest) (Plan, error) {
	req.ID = strings.TrimSpace(req.ID)
	req.ProfileID = strings.TrimSpace(req.ProfileID)
	req.Name = strings.TrimSpace(req.Name)
	if err := u.validate(req); err != nil {
		return Plan{}, err
	}
	now := u.now()

	var out ports.PlanRecord
	err := u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		if req.ID == "" {
			out = ports.PlanRecord{
				ID:        u.newID(),
				ProfileID: req.ProfileID,
				Name:      req.Name,
				Actions:   append([]string(nil), req.Actions...),
				Version:   1,
				CreatedAt: now,
				UpdatedAt: now,
			}
			return u.PlanRepo.SaveWithVersion(txCtx, out, 0)
		}

		current, err := u.PlanRepo.GetByID(txCtx, req.ID)
		if err != nil {
			return err
		}
		if current.ProfileID != req.ProfileID {
			return fmt.Errorf("%w: plan belongs to another profile", ErrInvalidRequest)
		}
		if current.Version != req.Version {
			return ports.ErrConflict
		}
		out = current
		out.Name = req.Name
		out.Actions = append([]string(nil), req.Actions...)
		out.Version = req.Version + 1
		out.UpdatedAt = now
		return u.PlanRepo.SaveWithVersion(txCtx, out, req.Version)
	})
	if err != nil {
		return Plan{}, err
	}
	return fromRecord(out), nil
}

func (u UseCase) validate(req SaveRequest) error {
	if req.ProfileID == "" || req.Name == "" {
		return ErrInvalidRequest
	}
	if len(req.Name) > MaxNameLength {
		return fmt.Errorf("%w: name longer than %d", ErrInvalidRequest, MaxNameLength)
	}
	if u.MaxActions > 0 && len(req.Actions) > u.MaxActions {
		return fmt.Errorf("%w: %d actions exceeds limit %d", ErrInvalidRequest, len(req.Actions), u.MaxActions)
	}
	for i, a := range req.Actions {
		if strings.TrimSpace(a) == "" {
			return fmt.Errorf("%w: action %d is blank", ErrInvalidRequest, i+1)
		}
	}
	return nil
}

func (u UseCase) Get(ctx context.Context, id string) (Plan, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Plan{}, ErrInvalidRequest
	}
	rec, err := u.PlanRepo.GetByID(ctx, id)
	if err != nil {
		return Plan{}, err
	}
	return fromRecord(rec), nil
}

func (u UseCase) List(ctx context.Context, req ListRequest) ([]Plan, error) {
	req.ProfileID = strings.TrimSpace(req.ProfileID)
	if req.ProfileID == "" {
		return nil, ErrInvalidRequest
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	records, err := u.PlanRepo.ListByProfile(ctx, req.ProfileID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Plan, 0, len(records))
	for _, r := range records {
		out = append(out, fromRecord(r))
	}
	return out, nil
}

func (u UseCase) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidRequest
	}
	return u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		return u.PlanRepo.Delete(txCtx, id)
	})
}

func (u UseCase) now() time.Time {
	if u.Now != nil {
		return u.Now().UTC()
	}
	return time.Now().UTC()
}

func (u UseCase) newID() string {
	if u.NewID != nil {
		return u.NewID()
	}
	return uuid.NewString()
}
