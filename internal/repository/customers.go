package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmehdipour/overdue-notifier/internal/model"
	"github.com/jmoiron/sqlx"
)

type CustomersRepository interface {
	// GetByID returns (nil, nil) when no customer has the id.
	GetByID(ctx context.Context, id string) (*model.Customer, error)
}

type CustomersRepositoryImpl struct {
	db *sqlx.DB
}

func NewCustomersRepository(db *sqlx.DB) *CustomersRepositoryImpl {
	return &CustomersRepositoryImpl{db: db}
}

var _ CustomersRepository = (*CustomersRepositoryImpl)(nil)

func (r *CustomersRepositoryImpl) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	var c model.Customer
	err := r.db.GetContext(ctx, &c, `
		SELECT id, name, overdue_balance, sales_rep_id, created_at, updated_at
		  FROM customers
		 WHERE id = ? LIMIT 1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
