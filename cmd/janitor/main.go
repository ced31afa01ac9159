package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultActivityDays = 30
	defaultPlayerDays   = 180
)

// execer es lo que usamos de pgxpool.Pool.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type pruneResult struct {
	Activity int64
	Players  int64
}

func prune(ctx context.Context, db execer, activityDays, playerDays int) (pruneResult, error) {
	var res pruneResult
	tag, err := db.Exec(ctx, `DELETE FROM activity_logs WHERE created_at < now() - make_interval(days => $1);`, activityDays)
	if err != nil {
		return res, fmt.Errorf("prune activity_logs: %w", err)
	}
	res.Activity = tag.RowsAffected()

	tag, err = db.Exec(ctx, `DELETE FROM players WHERE last_seen < now() - make_interval(days => $1);`, playerDays)
	if err != nil {
		return res, fmt.Errorf("prune players: %w", err)
	}
	res.Players = tag.RowsAffected()
	return res, nil
}

func envDays(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func handler(ctx context.Context) (string, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return "no DATABASE_URL", nil
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Sprintf("parse: %v", err), nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Sprintf("pool: %v", err), nil
	}
	defer pool.Close()

	cctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	res, err := prune(cctx, pool,
		envDays("ACTIVITY_RETENTION_DAYS", defaultActivityDays),
		envDays("PLAYER_RETENTION_DAYS", defaultPlayerDays))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ok: activity=%d players=%d", res.Activity, res.Players), nil
}

func main() { lambda.Start(handler) }
