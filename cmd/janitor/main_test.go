package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

type fakeExec struct {
	queries []string
	args    [][]any
	tags    []string
	failAt  int
}

func (f *fakeExec) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.queries = append(f.queries, sql)
	f.args = append(f.args, args)
	i := len(f.queries)
	if i == f.failAt {
		return pgconn.CommandTag{}, errors.New("boom")
	}
	return pgconn.NewCommandTag(f.tags[i-1]), nil
}

func TestPrune(t *testing.T) {
	db := &fakeExec{tags: []string{"DELETE 12", "DELETE 3"}}
	res, err := prune(context.Background(), db, 30, 180)
	if err != nil {
		t.Fatal(err)
	}
	if res.Activity != 12 || res.Players != 3 {
		t.Fatalf("res = %+v", res)
	}
	if !strings.Contains(db.queries[0], "activity_logs") || db.args[0][0] != 30 {
		t.Fatalf("first query %q %v", db.queries[0], db.args[0])
	}
	if !strings.Contains(db.queries[1], "players") || db.args[1][0] != 180 {
		t.Fatalf("second query %q %v", db.queries[1], db.args[1])
	}
}

func TestPruneStopsOnError(t *testing.T) {
	db := &fakeExec{tags: []string{"DELETE 0", "DELETE 0"}, failAt: 1}
	if _, err := prune(context.Background(), db, 30, 180); err == nil || !strings.Contains(err.Error(), "activity_logs") {
		t.Fatalf("err = %v", err)
	}
	if len(db.queries) != 1 {
		t.Fatalf("kept going after error: %d queries", len(db.queries))
	}
}

func TestEnvDays(t *testing.T) {
	t.Setenv("X_DAYS", "")
	if envDays("X_DAYS", 7) != 7 {
		t.Fatal("default")
	}
	t.Setenv("X_DAYS", "-1")
	if envDays("X_DAYS", 7) != 7 {
		t.Fatal("negative")
	}
	t.Setenv("X_DAYS", "90")
	if envDays("X_DAYS", 7) != 90 {
		t.Fatal("override")
	}
}

func TestHandlerWithoutDSN(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	out, err := handler(context.Background())
	if err != nil || out != "no DATABASE_URL" {
		t.Fatalf("out=%q err=%v", out, err)
	}
}
