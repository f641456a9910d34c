// Package testutil provisions throwaway Postgres schemas for store tests.
package testutil

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"cc-live/internal/config"
	"cc-live/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const migrationsDir = "migrations"

// OpenTestStore returns a store bound to a fresh schema of TEST_POSTGRES_DSN
// with every up migration applied. The schema is dropped when the test ends.
// The test is skipped when TEST_POSTGRES_DSN is unset.
func OpenTestStore(t *testing.T) *store.Store {
	t.Helper()
	cfg, err := config.LoadTest()
	if err != nil {
		t.Skipf("skip test db: %v", err)
	}
	dsn := cfg.TestPostgresDSN
	schema := pgx.Identifier{fmt.Sprintf("viewer_test_%d", time.Now().UnixNano())}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := execOnce(ctx, dsn, "CREATE SCHEMA "+schema.Sanitize()); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = execOnce(ctx, dsn, "DROP SCHEMA "+schema.Sanitize()+" CASCADE")
	})

	st, err := store.New(withSearchPath(dsn, schema[0]))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(st.Close)

	files, err := upMigrations()
	if err != nil {
		t.Fatalf("find migrations: %v", err)
	}
	for _, path := range files {
		sql, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", filepath.Base(path), err)
		}
		if _, err := st.Pool.Exec(ctx, string(sql)); err != nil {
			t.Fatalf("apply %s: %v", filepath.Base(path), err)
		}
	}
	return st
}

func execOnce(ctx context.Context, dsn, sql string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()
	_, err = pool.Exec(ctx, sql)
	return err
}

// upMigrations walks up from the working directory to the repository's
// migrations directory and returns its *.up.sql files in order.
func upMigrations() ([]string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	for {
		files, _ := filepath.Glob(filepath.Join(dir, migrationsDir, "*.up.sql"))
		if len(files) > 0 {
			sort.Strings(files)
			return files, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, fmt.Errorf("no %s/*.up.sql above the working directory", migrationsDir)
		}
		dir = parent
	}
}

func withSearchPath(dsn, schema string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "search_path=" + url.QueryEscape(schema)
}
