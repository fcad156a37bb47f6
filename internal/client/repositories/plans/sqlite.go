package plans

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tripplanner/internal/client/models"
	"github.com/dmitrijs2005/tripplanner/internal/dbx"
)

// SQLiteRepository implements Repository on the "plans" table. Request and
// plan bodies are stored as JSON.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a repository bound to a database or transaction.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, p *models.SavedPlan) error {
	req, err := json.Marshal(p.Request)
	if err != nil {
		return fmt.Errorf("failed to encode plan request: %w", err)
	}
	body, err := json.Marshal(p.Plan)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	query := `INSERT INTO plans (id, user_id, destination, start_date, end_date, title, request, plan, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			request = excluded.request,
			plan = excluded.plan,
			updated_at = excluded.updated_at`
	_, err = r.db.ExecContext(ctx, query,
		p.ID, p.UserID, p.Request.Destination, p.Request.StartDate, p.Request.EndDate,
		p.Plan.TripTitle, req, body, p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save plan %s: %w", p.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.SavedPlan, error) {
	query := `SELECT id, user_id, request, plan, created_at, updated_at FROM plans WHERE id = ?`
	p, err := scanPlan(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan %s: %w", id, err)
	}
	return p, nil
}

func (r *SQLiteRepository) List(ctx context.Context, userID string) ([]models.SavedPlan, error) {
	query := `SELECT id, user_id, request, plan, created_at, updated_at FROM plans
		WHERE user_id = ? ORDER BY created_at DESC, id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var result []models.SavedPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan row: %w", err)
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plan rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete plan %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlan(s scanner) (*models.SavedPlan, error) {
	var (
		p                models.SavedPlan
		req, body        []byte
		created, updated time.Time
	)
	if err := s.Scan(&p.ID, &p.UserID, &req, &body, &created, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(req, &p.Request); err != nil {
		return nil, fmt.Errorf("decode request of plan %s: %w", p.ID, err)
	}
	if err := json.Unmarshal(body, &p.Plan); err != nil {
		return nil, fmt.Errorf("decode plan %s: %w", p.ID, err)
	}
	p.CreatedAt = created
	p.UpdatedAt = updated
	return &p, nil
}
