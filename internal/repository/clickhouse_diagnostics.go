package repository

import (
	"context"
	"fmt"

	"github.com/jmehdipour/overdue-notifier/internal/model"
	"github.com/jmoiron/sqlx"
)

// DiagnosticsRepository stores and lists hook diagnostics in ClickHouse.
type DiagnosticsRepository interface {
	InsertBatch(ctx context.Context, rows []model.Diagnostic) error
	List(ctx context.Context, level model.DiagnosticLevel, limit, offset int) ([]model.Diagnostic, error)
}

type chDiagnosticsRepository struct {
	ch *sqlx.DB // ClickHouse connection
}

func NewDiagnosticsRepository(ch *sqlx.DB) DiagnosticsRepository {
	return &chDiagnosticsRepository{ch: ch}
}

// InsertBatch sends rows as one ClickHouse block (prepare inside a tx, commit flushes).
func (r *chDiagnosticsRepository) InsertBatch(ctx context.Context, rows []model.Diagnostic) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.ch.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO onotify.diagnostics (id, at, level, title, detail, event_id)
	`)
	if err != nil {
		return fmt.Errorf("prepare diagnostics insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range rows {
		if _, err := stmt.ExecContext(ctx, d.ID, d.At, d.Level.String(), d.Title, d.Detail, d.EventID); err != nil {
			return fmt.Errorf("append diagnostic %s: %w", d.ID, err)
		}
	}

	return tx.Commit()
}

func (r *chDiagnosticsRepository) List(ctx context.Context, level model.DiagnosticLevel, limit, offset int) ([]model.Diagnostic, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	q := `
		SELECT id, at, level, title, detail, event_id
		FROM onotify.diagnostics
		WHERE 1 = 1
	`
	args := []any{}

	if level != "" {
		q += " AND level = ?"
		args = append(args, level.String())
	}

	q += " ORDER BY at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	var rows []model.Diagnostic
	if err := r.ch.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
