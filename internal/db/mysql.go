package db

import (
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// NewMySQLConnection opens the MySQL pool holding customers, employees,
// notifications and the outbox. The DSN must set parseTime=true.
func NewMySQLConnection(dsn string, opts PoolOpts) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty MySQL DSN")
	}
	return open("mysql", dsn, opts, 5*time.Second)
}
