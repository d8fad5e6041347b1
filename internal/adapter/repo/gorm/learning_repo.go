package gormrepo

import (
	"context"
	"errors"
	"time"

	"loopplanner/internal/adapter/repo/gorm/model"
	"loopplanner/internal/app/ports"
	"loopplanner/internal/domain/familiarity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LearningRepo struct {
	db  *gorm.DB
	now func() time.Time
}

func NewLearningRepo(db *gorm.DB) LearningRepo {
	return LearningRepo{db: db, now: time.Now}
}

func (r LearningRepo) Get(ctx context.Context, profileID string) (familiarity.State, error) {
	db := getDBFromCtx(ctx, r.db).WithContext(ctx)
	var profile model.LearningProfile
	if err := db.Where("profile_id = ?", profileID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}

	var rows []model.LearningRecord
	if err := db.Where("profile_id = ?", profileID).Order("action_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	state := make(familiarity.State, len(rows))
	for _, row := range rows {
		state[row.ActionID] = familiarity.Record{Type: familiarity.RecordKind(row.Kind), Value: row.Value}
	}
	return state, nil
}

// Save replaces the profile's learning state.
func (r LearningRepo) Save(ctx context.Context, profileID string, state familiarity.State) error {
	return getDBFromCtx(ctx, r.db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile := model.LearningProfile{ProfileID: profileID, UpdatedAt: r.now().UTC()}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
		}).Create(&profile).Error
		if err != nil {
			return err
		}
		if err := tx.Where("profile_id = ?", profileID).Delete(&model.LearningRecord{}).Error; err != nil {
			return err
		}
		if len(state) == 0 {
			return nil
		}
		rows := make([]model.LearningRecord, 0, len(state))
		for _, name := range state.Names() {
			rec := state[name]
			rows = append(rows, model.LearningRecord{
				ProfileID: profileID,
				ActionID:  name,
				Kind:      string(rec.Type),
				Value:     rec.Value,
			})
		}
		return tx.CreateInBatches(rows, 200).Error
	})
}
