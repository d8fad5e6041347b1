package sqliterepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"loopplanner/internal/app/ports"
)

const planColumns = `id, profile_id, name, actions, version, created_at, updated_at`

type PlanRepo struct {
	db *sql.DB
}

func NewPlanRepo(db *sql.DB) PlanRepo {
	return PlanRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (ports.PlanRecord, error) {
	var p ports.PlanRecord
	var actions, created, updated string
	if err := row.Scan(&p.ID, &p.ProfileID, &p.Name, &actions, &p.Version, &created, &updated); err != nil {
		return ports.PlanRecord{}, err
	}
	if err := json.Unmarshal([]byte(actions), &p.Actions); err != nil {
		return ports.PlanRecord{}, fmt.Errorf("decode plan %s actions: %w", p.ID, err)
	}
	var err error
	if p.CreatedAt, err = parseTime(created); err != nil {
		return ports.PlanRecord{}, fmt.Errorf("decode plan %s created_at: %w", p.ID, err)
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return ports.PlanRecord{}, fmt.Errorf("decode plan %s updated_at: %w", p.ID, err)
	}
	return p, nil
}

func (r PlanRepo) GetByID(ctx context.Context, id string) (ports.PlanRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+planColumns+` FROM plans WHERE id = ?`, id)
	p, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.PlanRecord{}, ports.ErrNotFound
	}
	return p, err
}

func (r PlanRepo) ListByProfile(ctx context.Context, profileID string, limit int) ([]ports.PlanRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT `+planColumns+` FROM plans WHERE profile_id = ? ORDER BY updated_at DESC, id LIMIT ?`,
		profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	out := make([]ports.PlanRecord, 0)
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r PlanRepo) SaveWithVersion(ctx context.Context, plan ports.PlanRecord, expectedVersion int64) error {
	actions := plan.Actions
	if actions == nil {
		actions = []string{}
	}
	encoded, err := json.Marshal(actions)
	if err != nil {
		return fmt.Errorf("encode plan actions: %w", err)
	}
	q := conn(ctx, r.db)

	if expectedVersion == 0 {
		_, err := q.ExecContext(ctx,
			`INSERT INTO plans (`+planColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			plan.ID, plan.ProfileID, plan.Name, string(encoded), plan.Version,
			formatTime(plan.CreatedAt), formatTime(plan.UpdatedAt))
		if err != nil {
			if isUniqueViolation(err) {
				return ports.ErrConflict
			}
			return fmt.Errorf("insert plan: %w", err)
		}
		return nil
	}

	res, err := q.ExecContext(ctx,
		`UPDATE plans SET name = ?, actions = ?, version = ?, updated_at = ? WHERE id = ? AND version = ?`,
		plan.Name, string(encoded), plan.Version, formatTime(plan.UpdatedAt), plan.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ports.ErrConflict
	}
	return nil
}

func (r PlanRepo) Delete(ctx context.Context, id string) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
