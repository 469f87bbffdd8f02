package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-research-portal/internal/models"
	"github.com/noah-isme/sma-research-portal/internal/schema"
)

// StrandRepository persists strands (the courses table).
type StrandRepository struct {
	db   *sqlx.DB
	caps schema.Source
}

// NewStrandRepository constructs the repository.
func NewStrandRepository(db *sqlx.DB, caps schema.Source) *StrandRepository {
	return &StrandRepository{db: db, caps: caps}
}

func (r *StrandRepository) columns() string {
	c := r.caps.Current().Courses
	return "id, course_name, " + schema.OptionalColumn(c.DepartmentID, "", "department_id", "integer") + " AS department_id"
}

// List returns all strands ordered by name.
func (r *StrandRepository) List(ctx context.Context) ([]models.Strand, error) {
	if !r.caps.Current().Courses.Exists {
		return []models.Strand{}, nil
	}
	var items []models.Strand
	if err := r.db.SelectContext(ctx, &items, "SELECT "+r.columns()+" FROM courses ORDER BY course_name ASC"); err != nil {
		return nil, fmt.Errorf("list strands: %w", err)
	}
	return items, nil
}

// FindByID fetches a strand.
func (r *StrandRepository) FindByID(ctx context.Context, id int64) (*models.Strand, error) {
	if !r.caps.Current().Courses.Exists {
		return nil, sql.ErrNoRows
	}
	var strand models.Strand
	if err := r.db.GetContext(ctx, &strand, "SELECT "+r.columns()+" FROM courses WHERE id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find strand: %w", err)
	}
	return &strand, nil
}

// NameTaken reports whether another strand already uses an equivalent name.
func (r *StrandRepository) NameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	query := "SELECT EXISTS (SELECT 1 FROM courses WHERE id <> $2 AND " +
		schema.Normalized("course_name") + " = " + schema.Normalized("$1") + ")"
	var taken bool
	if err := r.db.GetContext(ctx, &taken, query, name, excludeID); err != nil {
		return false, fmt.Errorf("check strand name: %w", err)
	}
	return taken, nil
}

// Rename updates a strand's name.
func (r *StrandRepository) Rename(ctx context.Context, id int64, name string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE courses SET course_name = $1 WHERE id = $2", name, id)
	if err != nil {
		return fmt.Errorf("rename strand: %w", err)
	}
	return affected(res, "rename strand")
}
