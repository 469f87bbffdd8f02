package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-research-portal/internal/schema"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

// migratedCaps mirrors a fully migrated database.
func migratedCaps() *schema.Registry {
	return schema.Static(&schema.Capabilities{
		Employees: schema.EmployeeColumns{
			FirstName: "first_name", LastName: "last_name", Role: "role", RoleID: true,
			DepartmentID: true, Department: true, Archived: true, ArchivedAt: true,
			ProfilePicture: true, Permissions: true, UpdatedAt: true,
		},
		Students: schema.StudentColumns{
			FirstName: "first_name", LastName: "last_name", DepartmentID: true, Department: true,
			Strand: true, ProfilePicture: true, Verified: true, ResetToken: true, UpdatedAt: true,
		},
		Departments: schema.DepartmentColumns{Exists: true, Code: true, Active: true},
		Courses:     schema.CourseColumns{Exists: true, DepartmentID: true},
		Submissions: schema.SubmissionColumns{
			Views: true, Strand: true, Keywords: true, StudentID: true, AdviserID: true,
			ImagePath: true, DocumentPath: true,
		},
		Bookmarks: true,
		Activity:  true,
		Roles:     true,
	})
}
