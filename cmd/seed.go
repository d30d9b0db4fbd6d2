package cmd

import (
	"fmt"

	"github.com/jmehdipour/overdue-notifier/internal/db"
	"github.com/jmehdipour/overdue-notifier/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with demo customers and employees",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadRuntime()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		sqlDB, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.PoolOptsFrom(cfg.MySQL))
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer sqlDB.Close()

		log.Info("seeding demo data")

		// employees first; customers reference them
		nEmp, err := seedEmployees(sqlDB)
		if err != nil {
			return err
		}
		nCust, err := seedCustomers(sqlDB)
		if err != nil {
			return err
		}

		log.Info("seed completed", zap.Int("employees", nEmp), zap.Int("customers", nCust))
		return nil
	},
}

// seedEmployees inserts a small reporting chain (idempotent).
// E42 reports to E10; E43's supervisor has no email; E44 has no supervisor.
func seedEmployees(dbx *sqlx.DB) (int, error) {
	employees := []model.Employee{
		{ID: "E10", Name: "Mina Rahimi", Email: strptr("m@x.com")},
		{ID: "E11", Name: "Omid Karimi"},
		{ID: "E42", Name: "Sara Ahmadi", Email: strptr("sara@x.com"), SupervisorID: strptr("E10")},
		{ID: "E43", Name: "Reza Tehrani", Email: strptr("reza@x.com"), SupervisorID: strptr("E11")},
		{ID: "E44", Name: "Leila Nouri", Email: strptr("leila@x.com")},
	}

	const q = `
INSERT INTO employees (id, name, email, supervisor_id, created_at, updated_at)
VALUES (?, ?, ?, ?, NOW(), NOW())
ON DUPLICATE KEY UPDATE
  name = VALUES(name),
  email = VALUES(email),
  supervisor_id = VALUES(supervisor_id),
  updated_at = NOW()
`
	for _, e := range employees {
		if _, err := dbx.Exec(q, e.ID, e.Name, e.Email, e.SupervisorID); err != nil {
			return 0, fmt.Errorf("insert employee %s: %w", e.ID, err)
		}
	}
	return len(employees), nil
}

// seedCustomers inserts deterministic demo customers covering each branch of the rule.
func seedCustomers(dbx *sqlx.DB) (int, error) {
	customers := []model.Customer{
		{ID: "C001", Name: "Acme Corp", OverdueBalance: decimal.RequireFromString("150.00"), SalesRepID: strptr("E42")},
		{ID: "C002", Name: "Foobar LLC", OverdueBalance: decimal.Zero, SalesRepID: strptr("E42")},
		{ID: "C003", Name: "Beta Testers", OverdueBalance: decimal.RequireFromString("12.50"), SalesRepID: strptr("E43")},
		{ID: "C004", Name: "Lone Wolf Ltd", OverdueBalance: decimal.RequireFromString("99.99"), SalesRepID: strptr("E44")},
		{ID: "C005", Name: "Walk-in Retail", OverdueBalance: decimal.RequireFromString("40.00")},
	}

	const q = `
INSERT INTO customers (id, name, overdue_balance, sales_rep_id, created_at, updated_at)
VALUES (?, ?, ?, ?, NOW(), NOW())
ON DUPLICATE KEY UPDATE
  name = VALUES(name),
  overdue_balance = VALUES(overdue_balance),
  sales_rep_id = VALUES(sales_rep_id),
  updated_at = NOW()
`
	for _, c := range customers {
		if _, err := dbx.Exec(q, c.ID, c.Name, c.OverdueBalance, c.SalesRepID); err != nil {
			return 0, fmt.Errorf("insert customer %s: %w", c.ID, err)
		}
	}
	return len(customers), nil
}

func strptr(s string) *string { return &s }
