package sqliterepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"loopplanner/internal/app/ports"
	"loopplanner/internal/domain/familiarity"
)

type LearningRepo struct {
	db  *sql.DB
	tx  TxManager
	now func() time.Time
}

func NewLearningRepo(db *sql.DB) LearningRepo {
	return LearningRepo{db: db, tx: NewTxManager(db), now: time.Now}
}

func (r LearningRepo) Get(ctx context.Context, profileID string) (familiarity.State, error) {
	q := conn(ctx, r.db)
	var updated string
	err := q.QueryRowContext(ctx, `SELECT updated_at FROM learning_profiles WHERE profile_id = ?`, profileID).Scan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load learning profile: %w", err)
	}

	rows, err := q.QueryContext(ctx, `SELECT action_id, kind, value FROM learning_records WHERE profile_id = ? ORDER BY action_id`, profileID)
	if err != nil {
		return nil, fmt.Errorf("load learning records: %w", err)
	}
	defer rows.Close()

	state := familiarity.State{}
	for rows.Next() {
		var name, kind string
		var value float64
		if err := rows.Scan(&name, &kind, &value); err != nil {
			return nil, err
		}
		state[name] = familiarity.Record{Type: familiarity.RecordKind(kind), Value: value}
	}
	return state, rows.Err()
}

// Save replaces the profile's learning state.
func (r LearningRepo) Save(ctx context.Context, profileID string, state familiarity.State) error {
	return r.tx.RunInTx(ctx, func(txCtx context.Context) error {
		q := conn(txCtx, r.db)
		_, err := q.ExecContext(txCtx, `
			INSERT INTO learning_profiles (profile_id, updated_at) VALUES (?, ?)
			ON CONFLICT(profile_id) DO UPDATE SET updated_at = excluded.updated_at`,
			profileID, formatTime(r.now()))
		if err != nil {
			return fmt.Errorf("upsert learning profile: %w", err)
		}
		if _, err := q.ExecContext(txCtx, `DELETE FROM learning_records WHERE profile_id = ?`, profileID); err != nil {
			return fmt.Errorf("clear learning records: %w", err)
		}
		for _, name := range state.Names() {
			rec := state[name]
			_, err := q.ExecContext(txCtx,
				`INSERT INTO learning_records (profile_id, action_id, kind, value) VALUES (?, ?, ?, ?)`,
				profileID, name, string(rec.Type), rec.Value)
			if err != nil {
				return fmt.Errorf("insert learning record %q: %w", name, err)
			}
		}
		return nil
	})
}

// Fixed width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
