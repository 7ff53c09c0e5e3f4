package migrations_test

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/msomdec/vecino-digital/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRun(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The kv_entries table must exist after the first run.
	if _, err := db.ExecContext(ctx, "INSERT INTO kv_entries (key, value) VALUES (?, ?)", "k", "v"); err != nil {
		t.Fatalf("insert into kv_entries: %v", err)
	}

	applied, err := migrations.Applied(ctx, db)
	if err != nil {
		t.Fatalf("Applied: %v", err)
	}
	if len(applied) == 0 || applied[0] != "001_kv_entries.sql" {
		t.Fatalf("expected 001_kv_entries.sql to be recorded, got %v", applied)
	}
}

func TestRunIdempotent(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	first, _ := migrations.Applied(ctx, db)

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	second, _ := migrations.Applied(ctx, db)

	if len(first) != len(second) {
		t.Fatalf("expected %d migrations after second run, got %d", len(first), len(second))
	}
}

func TestRunFS_OrderAndFailure(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"002_second.sql": {Data: []byte("INSERT INTO things (name) VALUES ('b');")},
		"001_first.sql":  {Data: []byte("CREATE TABLE things (name TEXT);")},
		"notes.txt":      {Data: []byte("ignored")},
	}
	if err := migrations.RunFS(ctx, db, fsys); err != nil {
		t.Fatalf("RunFS: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM things").Scan(&count); err != nil {
		t.Fatalf("count things: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row, got %d", count)
	}

	broken := fstest.MapFS{"003_broken.sql": {Data: []byte("NOT SQL AT ALL")}}
	if err := migrations.RunFS(ctx, db, broken); err == nil {
		t.Fatal("expected broken migration to fail")
	}
	applied, _ := migrations.Applied(ctx, db)
	for _, f := range applied {
		if f == "003_broken.sql" {
			t.Fatal("failed migration must not be recorded")
		}
	}
}
