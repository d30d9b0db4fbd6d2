package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmehdipour/overdue-notifier/internal/model"
	"github.com/jmoiron/sqlx"
)

// EmployeesRepository resolves sales reps to their supervisors.
type EmployeesRepository interface {
	// FindSupervisor returns the first employee row matching salesRepID with
	// its supervisor id and the supervisor's email joined in, or (nil, nil)
	// when there is no such employee. Lookup is by primary key, so at most one
	// row can match and the result is deterministic.
	FindSupervisor(ctx context.Context, salesRepID string) (*model.Supervisor, error)
}

type EmployeesRepositoryImpl struct {
	db *sqlx.DB
}

func NewEmployeesRepository(db *sqlx.DB) *EmployeesRepositoryImpl {
	return &EmployeesRepositoryImpl{db: db}
}

var _ EmployeesRepository = (*EmployeesRepositoryImpl)(nil)

func (r *EmployeesRepositoryImpl) FindSupervisor(ctx context.Context, salesRepID string) (*model.Supervisor, error) {
	var s model.Supervisor
	err := r.db.GetContext(ctx, &s, `
		SELECT e.supervisor_id, sup.email AS supervisor_email
		  FROM employees e
		  LEFT JOIN employees sup ON sup.id = e.supervisor_id
		 WHERE e.id = ?
		 ORDER BY e.id
		 LIMIT 1
	`, salesRepID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
