package db

import (
	"context"
	"time"

	"github.com/jmehdipour/overdue-notifier/internal/config"
	"github.com/jmoiron/sqlx"
)

// PoolOpts tunes a database/sql pool. Zero values keep driver defaults.
type PoolOpts struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// PoolOptsFrom copies the pool knobs out of a database config block.
func PoolOptsFrom(c config.DatabaseConfig) PoolOpts {
	return PoolOpts{
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		ConnMaxIdleTime: c.ConnMaxIdleTime,
		PingTimeout:     c.PingTimeout,
	}
}

// open opens the pool, applies opts and pings within opts.PingTimeout (or fallback).
func open(driver, dsn string, opts PoolOpts, fallback time.Duration) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
