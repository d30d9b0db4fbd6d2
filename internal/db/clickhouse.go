package db

import (
	"fmt"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jmoiron/sqlx"
)

// NewClickHouseConnection opens the diagnostics store, e.g.
// clickhouse://default:@localhost:9000/onotify?dial_timeout=5s&compress=true
func NewClickHouseConnection(dsn string, opts PoolOpts) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty ClickHouse DSN")
	}
	return open("clickhouse", dsn, opts, 3*time.Second)
}
