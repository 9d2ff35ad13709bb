package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/lanscope/lanscope/pkg/plugin"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(':memory:') error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrateAppliesOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var applied int
	migs := []plugin.Migration{
		{
			Version:     1,
			Description: "create perf_samples",
			Up: func(tx *sql.Tx) error {
				applied++
				_, err := tx.Exec(`CREATE TABLE perf_samples (id INTEGER PRIMARY KEY)`)
				return err
			},
		},
	}

	if err := s.Migrate(ctx, "perf", migs); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := s.Migrate(ctx, "perf", migs); err != nil {
		t.Fatalf("Migrate() second run error = %v", err)
	}
	if applied != 1 {
		t.Errorf("migration applied %d times, want 1", applied)
	}
}

func TestMigrateScopedPerModule(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mig := func(table string) []plugin.Migration {
		return []plugin.Migration{{
			Version:     1,
			Description: "create " + table,
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec(`CREATE TABLE ` + table + ` (id INTEGER PRIMARY KEY)`)
				return err
			},
		}}
	}

	if err := s.Migrate(ctx, "perf", mig("perf_samples")); err != nil {
		t.Fatalf("Migrate(perf) error = %v", err)
	}
	// Same version number under a different module name must still run.
	if err := s.Migrate(ctx, "vault", mig("vault_users")); err != nil {
		t.Fatalf("Migrate(vault) error = %v", err)
	}

	for _, table := range []string{"perf_samples", "vault_users"} {
		var name string
		err := s.DB().QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s not created: %v", table, err)
		}
	}
}

func TestMigrateFailureRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	migs := []plugin.Migration{{
		Version:     1,
		Description: "failing",
		Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`CREATE TABLE half_done (id INTEGER)`); err != nil {
				return err
			}
			return boom
		},
	}}

	if err := s.Migrate(ctx, "sweep", migs); !errors.Is(err, boom) {
		t.Fatalf("Migrate() error = %v, want wrapped boom", err)
	}

	var name string
	err := s.DB().QueryRow(
		`SELECT name FROM sqlite_master WHERE type='table' AND name='half_done'`,
	).Scan(&name)
	if err != sql.ErrNoRows {
		t.Errorf("expected half_done table rolled back, got err %v", err)
	}
}

func TestTxCommitAndRollback(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.DB().Exec(`CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)`); err != nil {
		t.Fatal(err)
	}

	if err := s.Tx(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO kv (k, v) VALUES ('a', '1')`)
		return err
	}); err != nil {
		t.Fatalf("Tx() commit error = %v", err)
	}

	boom := errors.New("boom")
	if err := s.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO kv (k, v) VALUES ('b', '2')`); err != nil {
			return err
		}
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("Tx() error = %v, want boom", err)
	}

	var count int
	if err := s.DB().QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("row count = %d, want 1 (rollback discarded second insert)", count)
	}
}
