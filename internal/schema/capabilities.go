package schema

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// EmployeeColumns describes which employee column variants exist. String
// fields hold the concrete column name, or "" when absent.
type EmployeeColumns struct {
	FirstName      string
	LastName       string
	Role           string
	RoleID         bool
	DepartmentID   bool
	Department     bool
	Archived       bool
	ArchivedAt     bool
	ProfilePicture bool
	Permissions    bool
	UpdatedAt      bool
}

// StudentColumns describes optional student columns.
type StudentColumns struct {
	FirstName      string
	LastName       string
	DepartmentID   bool
	Department     bool
	Strand         bool
	ProfilePicture bool
	Verified       bool
	ResetToken     bool
	UpdatedAt      bool
}

// DepartmentColumns describes the departments table.
type DepartmentColumns struct {
	Exists bool
	Code   bool
	Active bool
}

// CourseColumns describes the courses (strand) table.
type CourseColumns struct {
	Exists       bool
	DepartmentID bool
}

// SubmissionColumns describes optional cap_books columns.
type SubmissionColumns struct {
	Views        bool
	Strand       bool
	Keywords     bool
	StudentID    bool
	AdviserID    bool
	ImagePath    bool
	DocumentPath bool
}

// Capabilities is the capability map consumed by the query builder.
type Capabilities struct {
	Employees   EmployeeColumns
	Students    StudentColumns
	Departments DepartmentColumns
	Courses     CourseColumns
	Submissions SubmissionColumns
	Bookmarks   bool
	Activity    bool
	Roles       bool
}

// Resolve probes every table the portal touches and assembles the map.
func (i *Introspector) Resolve(ctx context.Context) *Capabilities {
	emp := i.Columns(ctx, "employees")
	stu := i.Columns(ctx, "students")
	dep := i.Columns(ctx, "departments")
	crs := i.Columns(ctx, "courses")
	books := i.Columns(ctx, "cap_books")

	caps := &Capabilities{
		Employees: EmployeeColumns{
			FirstName:      emp.First("first_name", "firstname"),
			LastName:       emp.First("last_name", "lastname"),
			Role:           emp.First("role", "employee_type"),
			RoleID:         emp.Has("role_id"),
			DepartmentID:   emp.Has("department_id"),
			Department:     emp.Has("department"),
			Archived:       emp.Has("is_archived"),
			ArchivedAt:     emp.Has("archived_at"),
			ProfilePicture: emp.Has("profile_picture"),
			Permissions:    emp.Has("permissions"),
			UpdatedAt:      emp.Has("updated_at"),
		},
		Students: StudentColumns{
			FirstName:      stu.First("first_name", "firstname"),
			LastName:       stu.First("last_name", "lastname"),
			DepartmentID:   stu.Has("department_id"),
			Department:     stu.Has("department"),
			Strand:         stu.Has("strand"),
			ProfilePicture: stu.Has("profile_picture"),
			Verified:       stu.Has("is_verified"),
			ResetToken:     stu.Has("reset_token", "reset_token_expires"),
			UpdatedAt:      stu.Has("updated_at"),
		},
		Departments: DepartmentColumns{
			Exists: dep.Has("id", "name"),
			Code:   dep.Has("code"),
			Active: dep.Has("is_active"),
		},
		Courses: CourseColumns{
			Exists:       crs.Has("id", "course_name"),
			DepartmentID: crs.Has("department_id"),
		},
		Submissions: SubmissionColumns{
			Views:        books.Has("views"),
			Strand:       books.Has("strand"),
			Keywords:     books.Has("keywords"),
			StudentID:    books.Has("student_id"),
			AdviserID:    books.Has("adviser_id"),
			ImagePath:    books.Has("image_path"),
			DocumentPath: books.Has("document_path"),
		},
		Bookmarks: i.TableExists(ctx, "cap_bookmarks"),
		Activity:  i.TableExists(ctx, "activity_logs"),
		Roles:     i.TableExists(ctx, "roles"),
	}
	// The department join is only usable when both sides exist.
	if !caps.Departments.Exists {
		caps.Employees.DepartmentID = false
		caps.Students.DepartmentID = false
		caps.Courses.DepartmentID = false
	}
	return caps
}

// Source hands out the current capability map.
type Source interface {
	Current() *Capabilities
}

// Registry holds the capability map resolved at startup. It is only
// re-resolved on demand, never per request.
type Registry struct {
	mu           sync.RWMutex
	caps         *Capabilities
	introspector *Introspector
	logger       *zap.Logger
}

// NewRegistry resolves the map once and returns a registry serving it.
func NewRegistry(ctx context.Context, introspector *Introspector, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{introspector: introspector, logger: logger}
	r.Refresh(ctx)
	return r
}

// Static wraps a fixed map, used by tests and the CLI.
func Static(caps *Capabilities) *Registry {
	if caps == nil {
		caps = &Capabilities{}
	}
	return &Registry{caps: caps, logger: zap.NewNop()}
}

// Current returns the active map.
func (r *Registry) Current() *Capabilities {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.caps == nil {
		return &Capabilities{}
	}
	return r.caps
}

// Refresh re-reads the catalog, typically after a migration or backfill.
func (r *Registry) Refresh(ctx context.Context) *Capabilities {
	if r.introspector == nil {
		return r.Current()
	}
	caps := r.introspector.Resolve(ctx)
	r.mu.Lock()
	r.caps = caps
	r.mu.Unlock()
	r.logger.Info("schema capabilities resolved",
		zap.String("employee_name", caps.Employees.FirstName),
		zap.String("employee_role", caps.Employees.Role),
		zap.Bool("employee_role_id", caps.Employees.RoleID),
		zap.Bool("employee_department_id", caps.Employees.DepartmentID),
		zap.Bool("employee_archived", caps.Employees.Archived),
		zap.Bool("submission_views", caps.Submissions.Views),
		zap.Bool("bookmarks", caps.Bookmarks),
	)
	return caps
}
