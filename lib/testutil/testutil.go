package testutil

import (
	"database/sql"
	"dealcrawl-backend/lib/sqliteutil"
	"log/slog"
	"strings"
	"testing"
)

// OpenDB opens an in-memory database that is closed with the test.
// `schema` is executed on it when not empty.
func OpenDB(t testing.TB, schema string) *sql.DB {
	t.Helper()

	database, err := sqliteutil.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close() })

	if schema != "" {
		_, err = database.Exec(schema)
		if err != nil {
			t.Fatal(err)
		}
	}
	return database
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

// Logger writes debug logs to the test's output, they are only shown for
// failing tests or with -v.
func Logger(t testing.TB) *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{t: t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}
