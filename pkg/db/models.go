package db

import (
	"context"
	"strings"
	"time"
)

// Execution is one audit row: the flattened outcome of a gate submission.
// RiskChecks holds the violation details as JSON, written by the caller.
type Execution struct {
	RunID         string
	ClientOrderID string
	Symbol        string
	Side          string
	OrderType     string
	Qty           float64
	Price         float64
	TimeInForce   string
	Strategy      string
	Environment   string
	Status        string

	BlockedByGovernance bool
	BlockedByRisk       bool
	BlockedBySafety     bool
	ExecutorCalled      bool

	ValidationError string
	Reason          string
	RiskChecks      string

	VenueOrderID string
	FilledQty    float64
	AvgPrice     float64
	CreatedAt    time.Time
}

// User represents an operator account.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// InsertExecution appends an audit row. Every submission writes exactly one.
func (d *Database) InsertExecution(ctx context.Context, e Execution) error {
	_, err := d.DB.ExecContext(ctx, `
		INSERT INTO executions (
			run_id, client_order_id, symbol, side, order_type, qty, price,
			time_in_force, strategy, environment, status,
			blocked_by_governance, blocked_by_risk, blocked_by_safety, executor_called,
			validation_error, reason, risk_checks,
			venue_order_id, filled_qty, avg_price, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))
	`,
		e.RunID, e.ClientOrderID, e.Symbol, e.Side, e.OrderType, e.Qty, e.Price,
		e.TimeInForce, e.Strategy, e.Environment, e.Status,
		boolToInt(e.BlockedByGovernance), boolToInt(e.BlockedByRisk), boolToInt(e.BlockedBySafety), boolToInt(e.ExecutorCalled),
		e.ValidationError, e.Reason, e.RiskChecks,
		e.VenueOrderID, e.FilledQty, e.AvgPrice, nullableTime(e.CreatedAt),
	)
	return err
}

// GetExecution returns one audit row by run id.
func (d *Database) GetExecution(ctx context.Context, runID string) (*Execution, error) {
	row := d.DB.QueryRowContext(ctx, `
		SELECT `+executionColumns+`
		FROM executions WHERE run_id = ?
	`, runID)
	e, err := scanExecution(row)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ExecutionFilter narrows ListExecutions. Zero values mean no filter.
type ExecutionFilter struct {
	Symbol      string
	Status      string
	Environment string
	Limit       int
}

// ListExecutions returns audit rows, newest first.
func (d *Database) ListExecutions(ctx context.Context, f ExecutionFilter) ([]Execution, error) {
	var conds []string
	var args []any
	if f.Symbol != "" {
		conds = append(conds, "symbol = ?")
		args = append(args, f.Symbol)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.Environment != "" {
		conds = append(conds, "environment = ?")
		args = append(args, f.Environment)
	}

	query := `SELECT ` + executionColumns + ` FROM executions`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, run_id DESC LIMIT ?"
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)

	rows, err := d.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Execution
	for rows.Next() {
		e, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

// CountExecutionsByStatus aggregates the audit trail for the ops surface.
func (d *Database) CountExecutionsByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := d.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM executions GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

const executionColumns = `
	run_id, COALESCE(client_order_id, ''), symbol, side, order_type, qty, price,
	COALESCE(time_in_force, ''), COALESCE(strategy, ''), environment, status,
	blocked_by_governance, blocked_by_risk, blocked_by_safety, executor_called,
	COALESCE(validation_error, ''), COALESCE(reason, ''), COALESCE(risk_checks, ''),
	COALESCE(venue_order_id, ''), filled_qty, avg_price, created_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExecution(row rowScanner) (Execution, error) {
	var e Execution
	var gov, risk, safety, called int
	err := row.Scan(
		&e.RunID, &e.ClientOrderID, &e.Symbol, &e.Side, &e.OrderType, &e.Qty, &e.Price,
		&e.TimeInForce, &e.Strategy, &e.Environment, &e.Status,
		&gov, &risk, &safety, &called,
		&e.ValidationError, &e.Reason, &e.RiskChecks,
		&e.VenueOrderID, &e.FilledQty, &e.AvgPrice, &e.CreatedAt,
	)
	if err != nil {
		return Execution{}, err
	}
	e.BlockedByGovernance = gov == 1
	e.BlockedByRisk = risk == 1
	e.BlockedBySafety = safety == 1
	e.ExecutorCalled = called == 1
	return e, nil
}

// CreateUser inserts an operator account.
func (d *Database) CreateUser(ctx context.Context, u User) error {
	_, err := d.DB.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash) VALUES (?, ?, ?)
	`, u.ID, u.Email, u.PasswordHash)
	return err
}

// GetUserByEmail fetches a user or returns sql.ErrNoRows.
func (d *Database) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	row := d.DB.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users WHERE email = ?
	`, email)

	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
