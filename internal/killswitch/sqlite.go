package killswitch

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteStore keeps the record in the gate database, so the switch
// survives restarts and the operator CLI sees the same state as the
// running service. The record is a single row; the version column backs
// the optimistic write check.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wires the store and makes sure the singleton row exists.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	_, err := db.Exec(`
		INSERT OR IGNORE INTO kill_switch (id, state, version, updated_at)
		VALUES (1, 'ACTIVE', 0, CURRENT_TIMESTAMP)
	`)
	if err != nil {
		return nil, fmt.Errorf("seed kill switch row: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT state, COALESCE(trigger_reason, ''), COALESCE(triggered_by, ''),
		       triggered_at, recovery_requested_at, COALESCE(approved_by, ''),
		       COALESCE(cooldown_seconds, 0), version, updated_at
		FROM kill_switch WHERE id = 1
	`)

	var rec Record
	var state string
	var triggeredAt, recoveryAt, updatedAt sql.NullTime
	if err := row.Scan(&state, &rec.TriggerReason, &rec.TriggeredBy,
		&triggeredAt, &recoveryAt, &rec.ApprovedBy,
		&rec.CooldownSeconds, &rec.Version, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return Record{State: StateActive}, nil
		}
		return Record{}, err
	}

	rec.State = State(state)
	rec.TriggeredAt = timeOrZero(triggeredAt)
	rec.RecoveryRequestedAt = timeOrZero(recoveryAt)
	rec.UpdatedAt = timeOrZero(updatedAt)
	return rec, nil
}

func (s *SQLiteStore) Save(ctx context.Context, rec Record, expect int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE kill_switch
		SET state = ?, trigger_reason = ?, triggered_by = ?, triggered_at = ?,
		    recovery_requested_at = ?, approved_by = ?, cooldown_seconds = ?,
		    version = ?, updated_at = ?
		WHERE id = 1 AND version = ?
	`,
		string(rec.State), rec.TriggerReason, rec.TriggeredBy, nullTime(rec.TriggeredAt),
		nullTime(rec.RecoveryRequestedAt), rec.ApprovedBy, rec.CooldownSeconds,
		rec.Version, nullTime(rec.UpdatedAt), expect,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (s *SQLiteStore) AppendHistory(ctx context.Context, tr Transition) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kill_switch_history (from_state, to_state, reason, actor, at)
		VALUES (?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))
	`, string(tr.From), string(tr.To), tr.Reason, tr.Actor, nullTime(tr.At))
	return err
}

func (s *SQLiteStore) History(ctx context.Context, limit int) ([]Transition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, from_state, to_state, COALESCE(reason, ''), COALESCE(actor, ''), at
		FROM kill_switch_history
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transition
	for rows.Next() {
		var tr Transition
		var from, to string
		var at sql.NullTime
		if err := rows.Scan(&tr.ID, &from, &to, &tr.Reason, &tr.Actor, &at); err != nil {
			return nil, err
		}
		tr.From = State(from)
		tr.To = State(to)
		tr.At = timeOrZero(at)
		out = append(out, tr)
	}
	return out, rows.Err()
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func timeOrZero(t sql.NullTime) time.Time {
	if t.Valid {
		return t.Time
	}
	return time.Time{}
}
