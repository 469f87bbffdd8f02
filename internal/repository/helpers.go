package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/noah-isme/sma-research-portal/internal/schema"
)

// assignments accumulates "column = $n" pairs for UPDATE statements.
type assignments struct {
	args  *schema.Args
	parts []string
}

func newAssignments(args *schema.Args) *assignments {
	return &assignments{args: args}
}

func (a *assignments) set(column string, value interface{}) {
	a.parts = append(a.parts, fmt.Sprintf("%s = %s", column, a.args.Add(value)))
}

func (a *assignments) raw(expr string) {
	a.parts = append(a.parts, expr)
}

func (a *assignments) String() string {
	return strings.Join(a.parts, ", ")
}

// affected returns sql.ErrNoRows when an UPDATE/DELETE matched nothing.
func affected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// PasswordChange runs inside a profile transaction once the stored hash is
// locked. It returns the hash to store, or an error that aborts the whole
// update.
type PasswordChange func(currentHash string) (string, error)

// ProfileUpdate is the set of editable profile fields.
type ProfileUpdate struct {
	FirstName      string
	LastName       string
	Email          string
	Department     string
	DepartmentID   *int64
	ProfilePicture *string
}

func join(parts []string) string {
	return strings.Join(parts, ", ")
}
