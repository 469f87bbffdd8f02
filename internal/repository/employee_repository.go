package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-research-portal/internal/models"
	"github.com/noah-isme/sma-research-portal/internal/schema"
)

// EmployeeRepository persists admins and research advisers in the unified
// employees table.
type EmployeeRepository struct {
	db   *sqlx.DB
	caps schema.Source
}

// NewEmployeeRepository constructs the repository.
func NewEmployeeRepository(db *sqlx.DB, caps schema.Source) *EmployeeRepository {
	return &EmployeeRepository{db: db, caps: caps}
}

// selectAdvisers builds the adviser projection with its department join.
func (r *EmployeeRepository) selectAdvisers() (string, schema.EmployeeColumns) {
	c := r.caps.Current().Employees
	dept, join := schema.DepartmentLabel(c.DepartmentID, c.Department, "e", "d")
	query := fmt.Sprintf(`
SELECT
	e.id,
	%s AS first_name,
	%s AS last_name,
	%s AS display_name,
	e.email,
	%s AS department,
	%s AS profile_picture,
	%s AS is_archived,
	%s AS archived_at
FROM employees e%s`,
		schema.EmployeeFirstName(c, "e"),
		schema.EmployeeLastName(c, "e"),
		schema.EmployeeName(c, "e"),
		dept,
		schema.OptionalColumn(c.ProfilePicture, "e", "profile_picture", "text"),
		schema.ArchivedExpr(c, "e"),
		schema.OptionalColumn(c.ArchivedAt, "e", "archived_at", "timestamptz"),
		join,
	)
	return query, c
}

// ListAdvisers returns active or archived research advisers.
func (r *EmployeeRepository) ListAdvisers(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, error) {
	base, c := r.selectAdvisers()
	args := &schema.Args{}
	preds := []string{
		schema.AdviserFilter(c, "e"),
		schema.ArchivedFilter(c, "e", filter.Archived),
	}
	if filter.Department != "" {
		preds = append(preds, schema.DepartmentFilter(c.DepartmentID, c.Department, "e", "d", args, filter.Department))
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		preds = append(preds, schema.Search(args, term, schema.EmployeeName(c, "e"), "e.email"))
	}
	query := base + schema.Where(preds...) + "\nORDER BY display_name ASC"

	var items []models.Employee
	if err := r.db.SelectContext(ctx, &items, query, args.Values()...); err != nil {
		return nil, fmt.Errorf("list advisers: %w", err)
	}
	return items, nil
}

// FindAdviser fetches a research adviser regardless of archive state.
func (r *EmployeeRepository) FindAdviser(ctx context.Context, id int64) (*models.Employee, error) {
	base, c := r.selectAdvisers()
	args := &schema.Args{}
	query := base + schema.Where(schema.AdviserFilter(c, "e"), "e.id = "+args.Add(id))

	var emp models.Employee
	if err := r.db.GetContext(ctx, &emp, query, args.Values()...); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find adviser: %w", err)
	}
	return &emp, nil
}

// FindByID fetches any employee (admin or adviser).
func (r *EmployeeRepository) FindByID(ctx context.Context, id int64) (*models.Employee, error) {
	base, _ := r.selectAdvisers()
	var emp models.Employee
	if err := r.db.GetContext(ctx, &emp, base+" WHERE e.id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find employee: %w", err)
	}
	return &emp, nil
}

// EmailTaken reports whether another employee uses the email.
func (r *EmployeeRepository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var taken bool
	query := "SELECT EXISTS (SELECT 1 FROM employees WHERE LOWER(email) = LOWER($1) AND id <> $2)"
	if err := r.db.GetContext(ctx, &taken, query, email, excludeID); err != nil {
		return false, fmt.Errorf("check employee email: %w", err)
	}
	return taken, nil
}

// FindCredentials loads login data for an employee by email.
func (r *EmployeeRepository) FindCredentials(ctx context.Context, email string) (*models.EmployeeCredentials, error) {
	c := r.caps.Current().Employees
	perms := "NULL::jsonb"
	if c.Permissions {
		perms = "e.permissions"
	}
	query := fmt.Sprintf(`
SELECT e.id, %s AS display_name, e.password, %s AS role, %s AS is_archived, %s AS permissions
FROM employees e
WHERE LOWER(e.email) = LOWER($1)
LIMIT 1`,
		schema.EmployeeName(c, "e"), schema.RoleExpr(c, "e"), schema.ArchivedExpr(c, "e"), perms)

	var creds models.EmployeeCredentials
	if err := r.db.GetContext(ctx, &creds, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find employee credentials: %w", err)
	}
	return &creds, nil
}

// CreateAdviser inserts a research adviser and returns the new id.
func (r *EmployeeRepository) CreateAdviser(ctx context.Context, emp models.NewEmployee) (int64, error) {
	c := r.caps.Current().Employees
	args := &schema.Args{}
	cols := []string{"email", "password"}
	vals := []string{args.Add(emp.Email), args.Add(emp.PasswordHash)}
	add := func(col string, v interface{}) {
		cols = append(cols, col)
		vals = append(vals, args.Add(v))
	}
	if c.FirstName != "" {
		add(c.FirstName, emp.FirstName)
	}
	if c.LastName != "" {
		add(c.LastName, emp.LastName)
	}
	if c.Role != "" {
		add(c.Role, models.RoleResearchAdviser)
	}
	if c.RoleID {
		add("role_id", models.RoleIDResearchAdviser)
	}
	if c.Department {
		add("department", emp.Department)
	}
	if c.DepartmentID && emp.DepartmentID != nil {
		add("department_id", *emp.DepartmentID)
	}
	if c.Permissions {
		perms := emp.Permissions
		if perms == nil {
			perms = []string{}
		}
		raw, err := json.Marshal(perms)
		if err != nil {
			return 0, fmt.Errorf("encode permissions: %w", err)
		}
		add("permissions", string(raw))
	}
	if c.Archived {
		cols = append(cols, "is_archived")
		vals = append(vals, "0")
	}
	query := fmt.Sprintf("INSERT INTO employees (%s) VALUES (%s) RETURNING id", join(cols), join(vals))

	var id int64
	if err := r.db.QueryRowxContext(ctx, query, args.Values()...).Scan(&id); err != nil {
		return 0, fmt.Errorf("create adviser: %w", err)
	}
	return id, nil
}

// Archive flags an active adviser as archived.
func (r *EmployeeRepository) Archive(ctx context.Context, id int64) error {
	return r.setArchived(ctx, id, true)
}

// Restore clears the archive flag of an archived adviser. sql.ErrNoRows means
// the id is unknown, not an adviser, or not archived; nothing changes then.
func (r *EmployeeRepository) Restore(ctx context.Context, id int64) error {
	return r.setArchived(ctx, id, false)
}

func (r *EmployeeRepository) setArchived(ctx context.Context, id int64, archive bool) error {
	c := r.caps.Current().Employees
	if !c.Archived {
		return sql.ErrNoRows
	}
	args := &schema.Args{}
	set := newAssignments(args)
	if archive {
		set.raw("is_archived = 1")
		if c.ArchivedAt {
			set.raw("archived_at = NOW()")
		}
	} else {
		set.raw("is_archived = 0")
		if c.ArchivedAt {
			set.raw("archived_at = NULL")
		}
	}
	if c.UpdatedAt {
		set.raw("updated_at = NOW()")
	}
	query := "UPDATE employees e SET " + set.String() + schema.Where(
		"e.id = "+args.Add(id),
		schema.AdviserFilter(c, "e"),
		schema.ArchivedFilter(c, "e", !archive),
	)
	res, err := r.db.ExecContext(ctx, query, args.Values()...)
	if err != nil {
		return fmt.Errorf("set employee archived: %w", err)
	}
	return affected(res, "set employee archived")
}

// UpdateProfile updates profile fields and, when change is non-nil, the
// password hash in the same transaction. Any error rolls back both.
func (r *EmployeeRepository) UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate, change PasswordChange) (err error) {
	c := r.caps.Current().Employees
	args := &schema.Args{}
	set := newAssignments(args)
	if c.FirstName != "" {
		set.set(c.FirstName, upd.FirstName)
	}
	if c.LastName != "" {
		set.set(c.LastName, upd.LastName)
	}
	set.set("email", upd.Email)
	if c.Department && upd.Department != "" {
		set.set("department", upd.Department)
	}
	if c.DepartmentID && upd.DepartmentID != nil {
		set.set("department_id", *upd.DepartmentID)
	}
	if c.ProfilePicture && upd.ProfilePicture != nil {
		set.set("profile_picture", *upd.ProfilePicture)
	}
	if c.UpdatedAt {
		set.raw("updated_at = NOW()")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin profile update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := fmt.Sprintf("UPDATE employees SET %s WHERE id = %s", set.String(), args.Add(id))
	res, err := tx.ExecContext(ctx, query, args.Values()...)
	if err != nil {
		return fmt.Errorf("update employee profile: %w", err)
	}
	if err = affected(res, "update employee profile"); err != nil {
		return err
	}

	if change != nil {
		if err = applyPasswordChange(ctx, tx, "employees", "id", id, change); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit profile update: %w", err)
	}
	return nil
}

// CountAdvisers returns active and archived adviser counts.
func (r *EmployeeRepository) CountAdvisers(ctx context.Context) (active, archived int64, err error) {
	c := r.caps.Current().Employees
	query := fmt.Sprintf(`
SELECT
	COUNT(*) FILTER (WHERE %s) AS active,
	COUNT(*) FILTER (WHERE %s) AS archived
FROM employees e
WHERE %s`,
		orTrue(schema.ArchivedFilter(c, "e", false)),
		schema.ArchivedFilter(c, "e", true),
		schema.AdviserFilter(c, "e"))

	row := struct {
		Active   int64 `db:"active"`
		Archived int64 `db:"archived"`
	}{}
	if err = r.db.GetContext(ctx, &row, query); err != nil {
		return 0, 0, fmt.Errorf("count advisers: %w", err)
	}
	return row.Active, row.Archived, nil
}

func orTrue(pred string) string {
	if pred == "" {
		return "TRUE"
	}
	return pred
}

// applyPasswordChange locks the row's hash, asks change for the new one and
// stores it.
func applyPasswordChange(ctx context.Context, tx *sqlx.Tx, table, keyColumn string, key interface{}, change PasswordChange) error {
	var current string
	lock := fmt.Sprintf("SELECT password FROM %s WHERE %s = $1 FOR UPDATE", table, keyColumn)
	if err := tx.GetContext(ctx, &current, lock, key); err != nil {
		return fmt.Errorf("lock password: %w", err)
	}
	hash, err := change(current)
	if err != nil {
		return err
	}
	update := fmt.Sprintf("UPDATE %s SET password = $1 WHERE %s = $2", table, keyColumn)
	if _, err := tx.ExecContext(ctx, update, hash, key); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
