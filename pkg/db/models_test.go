package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
)

func testDB(t *testing.T) *Database {
	t.Helper()
	d, err := New(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if err := ApplyMigrations(d); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return d
}

// Ensures an execution row survives a round trip with its flags and risk
// detail JSON intact, and the filters narrow correctly.
func TestExecutionAudit(t *testing.T) {
	ctx := context.Background()
	d := testDB(t)

	rows := []Execution{
		{
			RunID: "run-1", Symbol: "BTCUSDT", Side: "BUY", OrderType: "LIMIT",
			Qty: 0.5, Price: 50000, Environment: "paper", Status: "SUCCESS",
			ExecutorCalled: true, VenueOrderID: "paper-1", FilledQty: 0.5, AvgPrice: 50000,
		},
		{
			RunID: "run-2", Symbol: "BTCUSDT", Side: "BUY", OrderType: "LIMIT",
			Qty: 10, Price: 50000, Environment: "paper", Status: "BLOCKED_BY_RISK",
			BlockedByRisk: true, Reason: "max_order_notional breached",
			RiskChecks: `[{"name":"max_order_notional","ratio":50}]`,
		},
		{
			RunID: "run-3", Symbol: "ETHUSDT", Side: "SELL", OrderType: "MARKET",
			Qty: 2, Environment: "live", Status: "BLOCKED_BY_ENVIRONMENT",
			Reason: "kill switch KILLED",
		},
	}
	for _, e := range rows {
		if err := d.InsertExecution(ctx, e); err != nil {
			t.Fatalf("insert %s: %v", e.RunID, err)
		}
	}

	got, err := d.GetExecution(ctx, "run-2")
	if err != nil {
		t.Fatalf("GetExecution: %v", err)
	}
	if !got.BlockedByRisk || got.ExecutorCalled {
		t.Fatalf("flags lost: %+v", got)
	}
	if got.RiskChecks != rows[1].RiskChecks {
		t.Fatalf("risk checks=%q, expected %q", got.RiskChecks, rows[1].RiskChecks)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("created_at not defaulted")
	}

	bySymbol, err := d.ListExecutions(ctx, ExecutionFilter{Symbol: "BTCUSDT"})
	if err != nil {
		t.Fatalf("ListExecutions: %v", err)
	}
	if len(bySymbol) != 2 {
		t.Fatalf("symbol filter=%d rows, expected 2", len(bySymbol))
	}

	byStatus, _ := d.ListExecutions(ctx, ExecutionFilter{Status: "BLOCKED_BY_ENVIRONMENT"})
	if len(byStatus) != 1 || byStatus[0].RunID != "run-3" {
		t.Fatalf("status filter wrong: %+v", byStatus)
	}

	limited, _ := d.ListExecutions(ctx, ExecutionFilter{Limit: 1})
	if len(limited) != 1 {
		t.Fatalf("limit ignored: %d rows", len(limited))
	}

	counts, err := d.CountExecutionsByStatus(ctx)
	if err != nil {
		t.Fatalf("CountExecutionsByStatus: %v", err)
	}
	if counts["SUCCESS"] != 1 || counts["BLOCKED_BY_RISK"] != 1 || counts["BLOCKED_BY_ENVIRONMENT"] != 1 {
		t.Fatalf("counts wrong: %v", counts)
	}
}

// Ensures user rows round trip and emails stay unique.
func TestUsers(t *testing.T) {
	ctx := context.Background()
	d := testDB(t)

	u := User{ID: "u-1", Email: "ops@example.com", PasswordHash: "$2a$10$hash"}
	if err := d.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := d.GetUserByEmail(ctx, "ops@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != u.ID || got.PasswordHash != u.PasswordHash {
		t.Fatalf("user mismatch: %+v", got)
	}

	if err := d.CreateUser(ctx, User{ID: "u-2", Email: "ops@example.com", PasswordHash: "x"}); err == nil {
		t.Fatalf("duplicate email accepted")
	}

	if _, err := d.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("missing user err=%v, expected sql.ErrNoRows", err)
	}

	// Migrations are idempotent across restarts.
	if err := ApplyMigrations(d); err != nil {
		t.Fatalf("second migration pass: %v", err)
	}
}
