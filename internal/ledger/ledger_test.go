package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sbenjam1n/assetgen/internal/assets"
	"github.com/sbenjam1n/assetgen/internal/rule"
)

func TestEntryFor(t *testing.T) {
	res := &assets.Result{
		Task:      "Orochi",
		Output:    "tasks/Orochi/assets.py",
		Digest:    "abc",
		Files:     3,
		Fragments: 2,
		Kinds:     map[rule.Kind]int{rule.KindImage: 1, rule.KindClick: 1},
	}
	e := EntryFor("run-1", res, nil)
	if e.Status != StatusWritten || e.Task != "Orochi" || e.Kinds["image"] != 1 || e.Kinds["click"] != 1 {
		t.Errorf("EntryFor(written) = %+v", e)
	}

	e = EntryFor("run-1", &assets.Result{Task: "Empty", Kinds: map[rule.Kind]int{}}, nil)
	if e.Status != StatusEmpty {
		t.Errorf("status = %q, want %q", e.Status, StatusEmpty)
	}

	e = EntryFor("run-1", &assets.Result{Task: "Grid"}, errors.New("malformed list input"))
	if e.Status != StatusFailed || e.Error != "malformed list input" {
		t.Errorf("EntryFor(failed) = %+v", e)
	}
}

func TestRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := New(db)
	res := &assets.Result{
		Task:      "Orochi",
		Output:    "tasks/Orochi/assets.py",
		Digest:    "abc",
		Files:     1,
		Fragments: 1,
		Kinds:     map[rule.Kind]int{rule.KindClick: 1},
	}

	mock.ExpectExec("INSERT INTO asset_runs").
		WithArgs("run-1", "Orochi", "tasks/Orochi/assets.py", "abc", 1, 1, sqlmock.AnyArg(), StatusWritten, "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := store.Record(context.Background(), "run-1", res, nil); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestRecordError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("INSERT INTO asset_runs").WillReturnError(errors.New("connection reset"))

	err = New(db).Record(context.Background(), "run-1", &assets.Result{Task: "T"}, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestHistory(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"run_id", "task", "output", "digest", "files", "fragments", "kinds", "status", "error", "created_at"}).
		AddRow("run-2", "Orochi", "tasks/Orochi/assets.py", "def", 2, 2, []byte(`{"image":2}`), StatusWritten, "", now).
		AddRow("run-1", "Orochi", "tasks/Orochi/assets.py", "", 1, 0, []byte(`{}`), StatusFailed, "boom", now.Add(-time.Hour))

	mock.ExpectQuery("SELECT run_id, task").
		WithArgs("Orochi", 10).
		WillReturnRows(rows)

	entries, err := New(db).History(context.Background(), "Orochi", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].RunID != "run-2" || entries[0].Kinds["image"] != 2 {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].Status != StatusFailed || entries[1].Error != "boom" {
		t.Errorf("entries[1] = %+v", entries[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
