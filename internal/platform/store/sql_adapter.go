package store

import (
	"context"
	"errors"
	"time"

	"bangcheong/internal/platform/logger"
	"bangcheong/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// openPG builds the pg client and wraps it in the adapter
func openPG(ctx context.Context, cfg Config, s *Store) (*pgAdapter, error) {
	client, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
	}, nil)
	if err != nil {
		return nil, err
	}
	return &pgAdapter{p: client, log: s.Log}, nil
}

// pgAdapter wraps pg.PG and implements RowQuerier + TxRunner
type pgAdapter struct {
	p   *pg.PG
	log logger.Logger
}

func (a *pgAdapter) Ping(ctx context.Context) error {
	if a == nil {
		return errors.New("pg: nil adapter")
	}
	var one int
	return a.QueryRow(ctx, "SELECT 1").Scan(&one)
}

func (a *pgAdapter) Close() error { a.p.Close(); return nil }

func (a *pgAdapter) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	start := time.Now()
	ct, err := a.p.Pool.Exec(ctx, sql, args...)
	a.slowLog(sql, start)
	return tag{ct}, err
}

func (a *pgAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := a.p.Pool.Query(ctx, sql, args...)
	a.slowLog(sql, start)
	if err != nil {
		return nil, err
	}
	return rows{r: rs}, nil
}

func (a *pgAdapter) QueryRow(ctx context.Context, sql string, args ...any) Row {
	start := time.Now()
	r := a.p.Pool.QueryRow(ctx, sql, args...)
	a.slowLog(sql, start)
	return r
}

func (a *pgAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.p.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(txQuerier{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (a *pgAdapter) slowLog(sql string, start time.Time) {
	if a.p.SlowMs <= 0 {
		return
	}
	if elapsed := time.Since(start); elapsed >= time.Duration(a.p.SlowMs)*time.Millisecond {
		// the sql text is ours, never user input, so logging it verbatim is fine
		a.log.Warn().Dur("elapsed", elapsed).Str("sql", sql).Msg("slow query")
	}
}

// txQuerier adapts a pgx.Tx to RowQuerier
type txQuerier struct {
	tx pgx.Tx
}

func (t txQuerier) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	ct, err := t.tx.Exec(ctx, sql, args...)
	return tag{ct}, err
}

func (t txQuerier) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rs, err := t.tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return rows{r: rs}, nil
}

func (t txQuerier) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return t.tx.QueryRow(ctx, sql, args...)
}

// tag adapts pgconn.CommandTag to CommandTag
type tag struct{ t pgconn.CommandTag }

func (x tag) String() string      { return x.t.String() }
func (x tag) RowsAffected() int64 { return x.t.RowsAffected() }

// rows adapts pgx.Rows to Rows
type rows struct{ r pgx.Rows }

func (x rows) Next() bool             { return x.r.Next() }
func (x rows) Scan(dest ...any) error { return x.r.Scan(dest...) }
func (x rows) Err() error             { return x.r.Err() }
func (x rows) Close()                 { x.r.Close() }
