package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-research-portal/internal/models"
	"github.com/noah-isme/sma-research-portal/internal/schema"
)

// StudentRepository persists students.
type StudentRepository struct {
	db   *sqlx.DB
	caps schema.Source
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB, caps schema.Source) *StudentRepository {
	return &StudentRepository{db: db, caps: caps}
}

func (r *StudentRepository) selectStudents() string {
	c := r.caps.Current().Students
	dept, join := schema.DepartmentLabel(c.DepartmentID, c.Department, "s", "d")
	verified := "FALSE"
	if c.Verified {
		verified = "(COALESCE(s.is_verified, 0) = 1)"
	}
	return fmt.Sprintf(`
SELECT
	s.student_id,
	%s AS first_name,
	%s AS last_name,
	s.email,
	%s AS department,
	%s AS strand,
	%s AS profile_picture,
	%s AS is_verified
FROM students s%s`,
		orEmptyCol(c.FirstName, "s"),
		orEmptyCol(c.LastName, "s"),
		dept,
		schema.OptionalText(c.Strand, "s", "strand"),
		schema.OptionalColumn(c.ProfilePicture, "s", "profile_picture", "text"),
		verified,
		join,
	)
}

func orEmptyCol(name, alias string) string {
	if name == "" {
		return "''"
	}
	return fmt.Sprintf("COALESCE(%s.%s, '')", alias, name)
}

// FindByID fetches a student by student id.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	var student models.Student
	if err := r.db.GetContext(ctx, &student, r.selectStudents()+" WHERE s.student_id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// EmailTaken reports whether another student uses the email.
func (r *StudentRepository) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	var taken bool
	query := "SELECT EXISTS (SELECT 1 FROM students WHERE LOWER(email) = LOWER($1) AND student_id <> $2)"
	if err := r.db.GetContext(ctx, &taken, query, email, excludeID); err != nil {
		return false, fmt.Errorf("check student email: %w", err)
	}
	return taken, nil
}

// FindCredentials loads login and reset data by email.
func (r *StudentRepository) FindCredentials(ctx context.Context, email string) (*models.StudentCredentials, error) {
	return r.findCredentials(ctx, "LOWER(s.email) = LOWER($1)", email)
}

// FindByResetToken loads the student holding the reset token.
func (r *StudentRepository) FindByResetToken(ctx context.Context, token string) (*models.StudentCredentials, error) {
	if !r.caps.Current().Students.ResetToken {
		return nil, sql.ErrNoRows
	}
	return r.findCredentials(ctx, "s.reset_token = $1", token)
}

func (r *StudentRepository) findCredentials(ctx context.Context, where string, arg interface{}) (*models.StudentCredentials, error) {
	c := r.caps.Current().Students
	query := fmt.Sprintf(`
SELECT s.student_id, %s AS display_name, s.email, s.password, %s AS reset_token, %s AS reset_token_expires
FROM students s
WHERE %s
LIMIT 1`,
		schema.StudentName(c, "s"),
		schema.OptionalColumn(c.ResetToken, "s", "reset_token", "text"),
		schema.OptionalColumn(c.ResetToken, "s", "reset_token_expires", "timestamptz"),
		where)

	var creds models.StudentCredentials
	if err := r.db.GetContext(ctx, &creds, query, arg); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student credentials: %w", err)
	}
	return &creds, nil
}

// SetResetToken stores a password reset token and its expiry.
func (r *StudentRepository) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	if !r.caps.Current().Students.ResetToken {
		return fmt.Errorf("set reset token: reset columns missing")
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE students SET reset_token = $1, reset_token_expires = $2 WHERE student_id = $3",
		token, expires, id)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	return affected(res, "set reset token")
}

// ResetPassword stores the new hash and clears the reset token in one
// statement, so a token can only be redeemed once.
func (r *StudentRepository) ResetPassword(ctx context.Context, id, token, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE students
SET password = $1, reset_token = NULL, reset_token_expires = NULL
WHERE student_id = $2 AND reset_token = $3`, passwordHash, id, token)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return affected(res, "reset password")
}

// UpdateProfile updates profile fields and, when change is non-nil, the
// password in the same transaction.
func (r *StudentRepository) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate, change PasswordChange) (err error) {
	c := r.caps.Current().Students
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

	query := fmt.Sprintf("UPDATE students SET %s WHERE student_id = %s", set.String(), args.Add(id))
	res, err := tx.ExecContext(ctx, query, args.Values()...)
	if err != nil {
		return fmt.Errorf("update student profile: %w", err)
	}
	if err = affected(res, "update student profile"); err != nil {
		return err
	}

	if change != nil {
		if err = applyPasswordChange(ctx, tx, "students", "student_id", id, change); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit profile update: %w", err)
	}
	return nil
}

// Count returns the number of students.
func (r *StudentRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM students"); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return n, nil
}
