package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// fakeDriver counts transaction outcomes and fails the first failCommits
// commits with failCode.
type fakeDriver struct {
	commits     int64
	rollbacks   int64
	failCommits int64
	failCode    string
}

func (d *fakeDriver) Open(string) (driver.Conn, error) {
	return fakeConn{d}, nil
}

type fakeConn struct{ d *fakeDriver }

func (c fakeConn) Prepare(string) (driver.Stmt, error) {
	return fakeStmt{}, nil
}

func (c fakeConn) Close() error {
	return nil
}

func (c fakeConn) Begin() (driver.Tx, error) {
	return fakeTx{c.d}, nil
}

func (c fakeConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return fakeTx{c.d}, nil
}

type fakeTx struct{ d *fakeDriver }

func (t fakeTx) Commit() error {
	call := atomic.AddInt64(&t.d.commits, 1)
	if call <= t.d.failCommits {
		return &pq.Error{Code: pq.ErrorCode(t.d.failCode)}
	}
	return nil
}

func (t fakeTx) Rollback() error {
	atomic.AddInt64(&t.d.rollbacks, 1)
	return nil
}

type fakeStmt struct{}

func (fakeStmt) Close() error {
	return nil
}

func (fakeStmt) NumInput() int {
	return -1
}

func (fakeStmt) Exec([]driver.Value) (driver.Result, error) {
	return driver.RowsAffected(0), nil
}

func (fakeStmt) Query([]driver.Value) (driver.Rows, error) {
	return nil, errors.New("not supported")
}

var driverCounter uint64

func openFake(t *testing.T, d *fakeDriver) *sqlx.DB {
	t.Helper()
	name := fmt.Sprintf("fake-%d", atomic.AddUint64(&driverCounter, 1))
	sql.Register(name, d)
	sqlDB, err := sql.Open(name, "")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlx.NewDb(sqlDB, name)
}

func TestWithTxCommits(t *testing.T) {
	d := &fakeDriver{}
	if err := WithTx(context.Background(), openFake(t, d), func(*sqlx.Tx) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.commits != 1 || d.rollbacks != 0 {
		t.Fatalf("expected commit=1 rollback=0, got %d/%d", d.commits, d.rollbacks)
	}
}

func TestWithTxRollsBackVoucherUpdateWhenHistoryFails(t *testing.T) {
	d := &fakeDriver{}
	historyErr := errors.New("history insert failed")
	steps := 0
	err := WithTx(context.Background(), openFake(t, d), func(tx *sqlx.Tx) error {
		steps++
		if _, err := tx.Exec(`UPDATE coupons SET rest_value = 0 WHERE id = 'EF1'`); err != nil {
			return err
		}
		return historyErr
	})
	if !errors.Is(err, historyErr) {
		t.Fatalf("expected history error, got %v", err)
	}
	if d.rollbacks != 1 || d.commits != 0 {
		t.Fatalf("expected rollback=1 commit=0, got %d/%d", d.rollbacks, d.commits)
	}
	if steps != 1 {
		t.Fatalf("non-retryable error must not be retried, ran %d times", steps)
	}
}

func TestWithTxRetriesSerializationFailureFromFn(t *testing.T) {
	d := &fakeDriver{}
	calls := 0
	err := WithTx(context.Background(), openFake(t, d), func(*sqlx.Tx) error {
		calls++
		if calls == 1 {
			return fmt.Errorf("lock voucher: %w", &pq.Error{Code: codeSerializationFailure})
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 || d.commits != 1 {
		t.Fatalf("expected 2 calls and 1 commit, got %d/%d", calls, d.commits)
	}
}

func TestWithTxRetriesOnCommitConflict(t *testing.T) {
	d := &fakeDriver{failCommits: 1, failCode: codeSerializationFailure}
	if err := WithTx(context.Background(), openFake(t, d), func(*sqlx.Tx) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.commits != 2 {
		t.Fatalf("expected 2 commits, got %d", d.commits)
	}
}

func TestWithTxRetryCapExceeded(t *testing.T) {
	d := &fakeDriver{failCommits: 10, failCode: codeDeadlockDetected}
	if err := WithTx(context.Background(), openFake(t, d), func(*sqlx.Tx) error { return nil }); err == nil {
		t.Fatalf("expected retry limit error")
	}
	if d.commits != 5 {
		t.Fatalf("expected 5 commits, got %d", d.commits)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(fmt.Errorf("insert coupon: %w", &pq.Error{Code: codeUniqueViolation})) {
		t.Fatal("expected wrapped 23505 to be detected")
	}
	if IsUniqueViolation(&pq.Error{Code: codeSerializationFailure}) {
		t.Fatal("serialization failure is not a unique violation")
	}
	if IsUniqueViolation(errors.New("plain")) {
		t.Fatal("plain errors are not unique violations")
	}
}
