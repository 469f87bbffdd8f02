package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-research-portal/internal/models"
	"github.com/noah-isme/sma-research-portal/internal/schema"
)

// ActivityRepository appends to and reads the activity log.
type ActivityRepository struct {
	db   *sqlx.DB
	caps schema.Source
}

// NewActivityRepository constructs the repository.
func NewActivityRepository(db *sqlx.DB, caps schema.Source) *ActivityRepository {
	return &ActivityRepository{db: db, caps: caps}
}

// Append writes an entry. Databases without activity_logs silently skip it.
func (r *ActivityRepository) Append(ctx context.Context, entry *models.ActivityLog) error {
	if !r.caps.Current().Activity {
		return nil
	}
	var details interface{}
	if len(entry.Details) > 0 {
		details = string(entry.Details)
	}
	const query = `
INSERT INTO activity_logs (actor_type, actor_id, action, details)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at`
	if err := r.db.QueryRowxContext(ctx, query, entry.ActorType, entry.ActorID, entry.Action, details).
		Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

// List returns entries newest first with the total match count.
func (r *ActivityRepository) List(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityLog, int, error) {
	if !r.caps.Current().Activity {
		return []models.ActivityLog{}, 0, nil
	}
	args := &schema.Args{}
	var preds []string
	if filter.ActorType != "" {
		preds = append(preds, "actor_type = "+args.Add(filter.ActorType))
	}
	if filter.Action != "" {
		preds = append(preds, "action = "+args.Add(filter.Action))
	}
	where := schema.Where(preds...)

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM activity_logs"+where, args.Values()...); err != nil {
		return nil, 0, fmt.Errorf("count activity: %w", err)
	}

	page, size := models.Normalize(filter.Page, filter.PageSize, 200)
	query := fmt.Sprintf("SELECT id, actor_type, actor_id, action, details, created_at FROM activity_logs%s ORDER BY created_at DESC, id DESC LIMIT %s OFFSET %s",
		where, args.Add(size), args.Add((page-1)*size))
	var items []models.ActivityLog
	if err := r.db.SelectContext(ctx, &items, query, args.Values()...); err != nil {
		return nil, 0, fmt.Errorf("list activity: %w", err)
	}
	return items, total, nil
}
