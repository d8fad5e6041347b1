package gormrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"loopplanner/internal/adapter/repo/gorm/model"
	"loopplanner/internal/app/ports"

	"gorm.io/gorm"
)

type PlanRepo struct {
	db *gorm.DB
}

func NewPlanRepo(db *gorm.DB) PlanRepo {
	return PlanRepo{db: db}
}

func (r PlanRepo) GetByID(ctx context.Context, id string) (ports.PlanRecord, error) {
	var m model.Plan
	if err := getDBFromCtx(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.PlanRecord{}, ports.ErrNotFound
		}
		return ports.PlanRecord{}, err
	}
	return toPlanRecord(m)
}

func (r PlanRepo) ListByProfile(ctx context.Context, profileID string, limit int) ([]ports.PlanRecord, error) {
	var rows []model.Plan
	q := getDBFromCtx(ctx, r.db).WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("updated_at DESC").Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ports.PlanRecord, 0, len(rows))
	for _, m := range rows {
		rec, err := toPlanRecord(m)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r PlanRepo) SaveWithVersion(ctx context.Context, plan ports.PlanRecord, expectedVersion int64) error {
	db := getDBFromCtx(ctx, r.db).WithContext(ctx)
	actions, err := json.Marshal(nonNilActions(plan.Actions))
	if err != nil {
		return fmt.Errorf("encode plan actions: %w", err)
	}
	if expectedVersion == 0 {
		m := model.Plan{
			ID:        plan.ID,
			ProfileID: plan.ProfileID,
			Name:      plan.Name,
			Actions:   string(actions),
			Version:   plan.Version,
			CreatedAt: plan.CreatedAt,
			UpdatedAt: plan.UpdatedAt,
		}
		if err := db.Create(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ports.ErrConflict
			}
			return err
		}
		return nil
	}

	res := db.Model(&model.Plan{}).
		Where("id = ? AND version = ?", plan.ID, expectedVersion).
		Updates(map[string]any{
			"name":       plan.Name,
			"actions":    string(actions),
			"version":    plan.Version,
			"updated_at": plan.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrConflict
	}
	return nil
}

func (r PlanRepo) Delete(ctx context.Context, id string) error {
	res := getDBFromCtx(ctx, r.db).WithContext(ctx).Where("id = ?", id).Delete(&model.Plan{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func toPlanRecord(m model.Plan) (ports.PlanRecord, error) {
	var actions []string
	if m.Actions != "" {
		if err := json.Unmarshal([]byte(m.Actions), &actions); err != nil {
			return ports.PlanRecord{}, fmt.Errorf("decode plan %s actions: %w", m.ID, err)
		}
	}
	return ports.PlanRecord{
		ID:        m.ID,
		ProfileID: m.ProfileID,
		Name:      m.Name,
		Actions:   actions,
		Version:   m.Version,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

func nonNilActions(actions []string) []string {
	if actions == nil {
		return []string{}
	}
	return actions
}
