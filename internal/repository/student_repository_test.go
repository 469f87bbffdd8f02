package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentRepositoryUpdateProfileCommitsPasswordTogether(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db, migratedCaps())
	picture := "images/abc.png"

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE students SET first_name = $1, last_name = $2, email = $3, department = $4, profile_picture = $5, updated_at = NOW() WHERE student_id = $6")).
		WithArgs("Ben", "Reyes", "ben@school.edu", "CCS", picture, "2024-001").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT password FROM students WHERE student_id = $1 FOR UPDATE")).
		WithArgs("2024-001").
		WillReturnRows(sqlmock.NewRows([]string{"password"}).AddRow("old-hash"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET password = $1 WHERE student_id = $2")).
		WithArgs("new-hash", "2024-001").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateProfile(context.Background(), "2024-001", ProfileUpdate{
		FirstName: "Ben", LastName: "Reyes", Email: "ben@school.edu", Department: "CCS", ProfilePicture: &picture,
	}, func(current string) (string, error) { return "new-hash", nil })
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateProfileUnknownStudent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db, migratedCaps())

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE students SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.UpdateProfile(context.Background(), "missing", ProfileUpdate{Email: "x@y.z"}, nil)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryResetPasswordClearsToken(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db, migratedCaps())

	mock.ExpectExec("SET password = \\$1, reset_token = NULL, reset_token_expires = NULL").
		WithArgs("hash", "2024-001", "tok").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ResetPassword(context.Background(), "2024-001", "tok", "hash"))
}

func TestStudentRepositorySetResetToken(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db, migratedCaps())
	expires := time.Now().Add(time.Hour)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET reset_token = $1, reset_token_expires = $2 WHERE student_id = $3")).
		WithArgs("tok", expires, "2024-001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetResetToken(context.Background(), "2024-001", "tok", expires))
}

func TestStudentRepositoryFindByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db, migratedCaps())

	rows := sqlmock.NewRows([]string{"student_id", "first_name", "last_name", "email", "department", "strand", "profile_picture", "is_verified"}).
		AddRow("2024-001", "Ben", "Reyes", "ben@school.edu", "CCS", "STEM", nil, true)
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN departments d ON d.id = s.department_id WHERE s.student_id = $1")).
		WithArgs("2024-001").
		WillReturnRows(rows)

	student, err := repo.FindByID(context.Background(), "2024-001")
	require.NoError(t, err)
	assert.Equal(t, "STEM", student.Strand)
	assert.True(t, student.Verified)
}
