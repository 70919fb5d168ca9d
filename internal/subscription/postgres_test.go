package subscription

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func newMockStore(t *testing.T) (*PGStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPGStore(db), mock
}

func parentSub() *Subscription {
	return &Subscription{
		ID:        "sub-p",
		AccountID: "acc-p",
		PlanID:    "plan-1",
		Active:    true,
		StartDate: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestDelegateCopiesWhenChildHasNoSubscription(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`select is_active from subscriptions where account_id=\$1 for update`).
		WithArgs("acc-c").
		WillReturnRows(sqlmock.NewRows([]string{"is_active"}))
	mock.ExpectExec(`insert into subscriptions`).
		WithArgs(sqlmock.AnyArg(), "acc-c", "plan-1", true,
			parentSub().StartDate, parentSub().EndDate).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`insert into account_groups`).
		WithArgs(sqlmock.AnyArg(), "acc-p", "acc-c").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := store.Delegate(context.Background(), parentSub(), "acc-p", "acc-c"); err != nil {
		t.Fatalf("Delegate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDelegateReplacesInactiveChildSubscription(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`select is_active from subscriptions where account_id=\$1 for update`).
		WithArgs("acc-c").
		WillReturnRows(sqlmock.NewRows([]string{"is_active"}).AddRow(false))
	mock.ExpectExec(`delete from subscriptions where account_id=\$1`).
		WithArgs("acc-c").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`insert into subscriptions`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`insert into account_groups`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := store.Delegate(context.Background(), parentSub(), "acc-p", "acc-c"); err != nil {
		t.Fatalf("Delegate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDelegateAbortsOnActiveChildSubscription(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`select is_active from subscriptions where account_id=\$1 for update`).
		WithArgs("acc-c").
		WillReturnRows(sqlmock.NewRows([]string{"is_active"}).AddRow(true))
	mock.ExpectRollback()

	err := store.Delegate(context.Background(), parentSub(), "acc-p", "acc-c")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDelegateSeesActiveRowBehindInactiveOnes(t *testing.T) {
	store, mock := newMockStore(t)

	// An account can hold several rows: creating a subscription does not
	// replace the existing one. The active row must abort the delegation no
	// matter where it sits in the result set.
	mock.ExpectBegin()
	mock.ExpectQuery(`select is_active from subscriptions where account_id=\$1 for update`).
		WithArgs("acc-c").
		WillReturnRows(sqlmock.NewRows([]string{"is_active"}).
			AddRow(false).
			AddRow(true))
	mock.ExpectRollback()

	err := store.Delegate(context.Background(), parentSub(), "acc-p", "acc-c")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDelegateDeletesAllInactiveChildRows(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`select is_active from subscriptions where account_id=\$1 for update`).
		WithArgs("acc-c").
		WillReturnRows(sqlmock.NewRows([]string{"is_active"}).
			AddRow(false).
			AddRow(false))
	mock.ExpectExec(`delete from subscriptions where account_id=\$1`).
		WithArgs("acc-c").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`insert into subscriptions`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`insert into account_groups`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := store.Delegate(context.Background(), parentSub(), "acc-p", "acc-c"); err != nil {
		t.Fatalf("Delegate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestFindByAccountPrefersActive(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`order by is_active desc, start_date desc limit 1`).
		WithArgs("acc-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "account_id", "plan_id", "is_active", "start_date", "end_date", "created_at",
		}).AddRow("sub-1", "acc-1", "plan-1", true,
			time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)))

	sub, err := store.FindByAccount(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("FindByAccount: %v", err)
	}
	if sub.ID != "sub-1" || !sub.Active {
		t.Errorf("sub = %+v", sub)
	}
}

func TestSetActiveNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`update subscriptions set is_active=\$1 where id=\$2`).
		WithArgs(true, "sub-x").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.SetActive(context.Background(), "sub-x", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
