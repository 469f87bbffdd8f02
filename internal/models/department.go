package models

import "time"

// Department is an academic department.
type Department struct {
	ID        int64      `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Code      *string    `db:"code" json:"code,omitempty"`
	Active    bool       `db:"is_active" json:"is_active"`
	CreatedAt *time.Time `db:"created_at" json:"created_at,omitempty"`
}

// Strand is a Senior High School track stored in the courses table.
type Strand struct {
	ID           int64  `db:"id" json:"id"`
	Name         string `db:"course_name" json:"name"`
	DepartmentID *int64 `db:"department_id" json:"department_id,omitempty"`
}

// BackfillReport summarises a department label to id backfill run.
type BackfillReport struct {
	EmployeesUpdated int64 `json:"employees_updated"`
	StudentsUpdated  int64 `json:"students_updated"`
	RolesUpdated     int64 `json:"roles_updated"`
}
