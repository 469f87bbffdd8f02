package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-research-portal/internal/models"
	"github.com/noah-isme/sma-research-portal/internal/schema"
)

// DepartmentRepository persists departments.
type DepartmentRepository struct {
	db   *sqlx.DB
	caps schema.Source
}

// NewDepartmentRepository constructs the repository.
func NewDepartmentRepository(db *sqlx.DB, caps schema.Source) *DepartmentRepository {
	return &DepartmentRepository{db: db, caps: caps}
}

// Tracked reports whether the database has a departments table. Without it
// departments exist only as free-text labels.
func (r *DepartmentRepository) Tracked() bool {
	return r.caps.Current().Departments.Exists
}

func (r *DepartmentRepository) columns() string {
	c := r.caps.Current().Departments
	active := "TRUE"
	if c.Active {
		active = "(COALESCE(is_active, 1) = 1)"
	}
	return fmt.Sprintf("id, name, %s AS code, %s AS is_active",
		schema.OptionalColumn(c.Code, "", "code", "varchar"), active)
}

// List returns every department ordered by name. A database without the
// departments table yields an empty list.
func (r *DepartmentRepository) List(ctx context.Context) ([]models.Department, error) {
	if !r.caps.Current().Departments.Exists {
		return []models.Department{}, nil
	}
	query := "SELECT " + r.columns() + " FROM departments ORDER BY name ASC"
	var items []models.Department
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return items, nil
}

// FindByID fetches a department by id.
func (r *DepartmentRepository) FindByID(ctx context.Context, id int64) (*models.Department, error) {
	if !r.caps.Current().Departments.Exists {
		return nil, sql.ErrNoRows
	}
	query := "SELECT " + r.columns() + " FROM departments WHERE id = $1"
	var dept models.Department
	if err := r.db.GetContext(ctx, &dept, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find department: %w", err)
	}
	return &dept, nil
}

// FindByName looks a department up by normalised name.
func (r *DepartmentRepository) FindByName(ctx context.Context, name string) (*models.Department, error) {
	if !r.caps.Current().Departments.Exists {
		return nil, sql.ErrNoRows
	}
	query := "SELECT " + r.columns() + " FROM departments WHERE " +
		schema.Normalized("name") + " = " + schema.Normalized("$1") + " LIMIT 1"
	var dept models.Department
	if err := r.db.GetContext(ctx, &dept, query, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find department by name: %w", err)
	}
	return &dept, nil
}

// NameExists reports whether a department with an equivalent name exists.
func (r *DepartmentRepository) NameExists(ctx context.Context, name string) (bool, error) {
	if !r.caps.Current().Departments.Exists {
		return false, nil
	}
	query := "SELECT EXISTS (SELECT 1 FROM departments WHERE " +
		schema.Normalized("name") + " = " + schema.Normalized("$1") + ")"
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, name); err != nil {
		return false, fmt.Errorf("check department name: %w", err)
	}
	return exists, nil
}

// Create inserts a department and returns its id.
func (r *DepartmentRepository) Create(ctx context.Context, name string, code *string) (int64, error) {
	c := r.caps.Current().Departments
	if !c.Exists {
		return 0, fmt.Errorf("create department: departments table missing")
	}
	args := &schema.Args{}
	cols := []string{"name"}
	vals := []string{args.Add(name)}
	if c.Code && code != nil {
		cols = append(cols, "code")
		vals = append(vals, args.Add(*code))
	}
	if c.Active {
		cols = append(cols, "is_active")
		vals = append(vals, "1")
	}
	query := fmt.Sprintf("INSERT INTO departments (%s) VALUES (%s) RETURNING id", join(cols), join(vals))
	var id int64
	if err := r.db.QueryRowxContext(ctx, query, args.Values()...).Scan(&id); err != nil {
		return 0, fmt.Errorf("create department: %w", err)
	}
	return id, nil
}

// Delete hard-deletes a department.
func (r *DepartmentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM departments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete department: %w", err)
	}
	return affected(res, "delete department")
}

// Backfill links free-text department labels to department ids and role
// labels to role ids. Each step runs only when its columns exist.
func (r *DepartmentRepository) Backfill(ctx context.Context) (*models.BackfillReport, error) {
	caps := r.caps.Current()
	report := &models.BackfillReport{}
	if !caps.Departments.Exists {
		return report, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin backfill: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	step := func(query string) (int64, error) {
		res, execErr := tx.ExecContext(ctx, query)
		if execErr != nil {
			return 0, execErr
		}
		return res.RowsAffected()
	}

	if caps.Employees.DepartmentID && caps.Employees.Department {
		if report.EmployeesUpdated, err = step(backfillEmployeesQuery); err != nil {
			return nil, fmt.Errorf("backfill employee departments: %w", err)
		}
	}
	if caps.Students.DepartmentID && caps.Students.Department {
		if report.StudentsUpdated, err = step(backfillStudentsQuery); err != nil {
			return nil, fmt.Errorf("backfill student departments: %w", err)
		}
	}
	if caps.Employees.RoleID && caps.Employees.Role != "" {
		if report.RolesUpdated, err = step(fmt.Sprintf(backfillRolesQuery, caps.Employees.Role, caps.Employees.Role)); err != nil {
			return nil, fmt.Errorf("backfill employee roles: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit backfill: %w", err)
	}
	return report, nil
}

const backfillEmployeesQuery = `
UPDATE employees e
SET department_id = d.id
FROM departments d
WHERE e.department_id IS NULL
  AND e.department IS NOT NULL
  AND LOWER(TRIM(e.department)) = LOWER(TRIM(d.name))`

const backfillStudentsQuery = `
UPDATE students s
SET department_id = d.id
FROM departments d
WHERE s.department_id IS NULL
  AND s.department IS NOT NULL
  AND LOWER(TRIM(s.department)) = LOWER(TRIM(d.name))`

const backfillRolesQuery = `
UPDATE employees
SET role_id = CASE %s WHEN 'ADMIN' THEN 1 WHEN 'RESEARCH_ADVISER' THEN 2 END
WHERE role_id IS NULL AND %s IN ('ADMIN', 'RESEARCH_ADVISER')`
