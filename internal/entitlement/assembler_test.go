package entitlement

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func newMockAssembler(t *testing.T) (*Assembler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewAssembler(db), mock
}

func TestSnapshotWithoutSubscription(t *testing.T) {
	asm, mock := newMockAssembler(t)

	mock.ExpectQuery(`from subscriptions`).
		WithArgs("acc-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "plan_id", "is_active", "start_date", "end_date"}))

	snap, err := asm.Snapshot(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.HasSubscription() {
		t.Error("expected no subscription")
	}
	if snap.Resources == nil {
		t.Error("resources must be an empty slice, not nil")
	}
	if len(snap.Resources) != 0 {
		t.Errorf("resources = %v", snap.Resources)
	}
}

func TestSnapshotLoadsPlanResources(t *testing.T) {
	asm, mock := newMockAssembler(t)

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 30)

	mock.ExpectQuery(`from subscriptions`).
		WithArgs("acc-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "plan_id", "is_active", "start_date", "end_date"}).
			AddRow("sub-1", "plan-1", true, start, end))
	mock.ExpectQuery(`select id, name, max from resources where plan_id=\$1 order by name`).
		WithArgs("plan-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "max"}).
			AddRow("res-1", "projects", int64(10)).
			AddRow("res-2", "seats", int64(5)))

	snap, err := asm.Snapshot(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if !snap.HasSubscription() {
		t.Fatal("expected a subscription")
	}
	if snap.Subscription.PlanID != "plan-1" || !snap.Subscription.Active {
		t.Errorf("subscription = %+v", snap.Subscription)
	}
	if len(snap.Resources) != 2 {
		t.Fatalf("resources = %v", snap.Resources)
	}
	if snap.Resources[0].Name != "projects" || snap.Resources[1].Max != 5 {
		t.Errorf("resources = %v", snap.Resources)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
