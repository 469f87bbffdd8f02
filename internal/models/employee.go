package models

import (
	"encoding/json"
	"time"
)

// Employee role discriminators.
const (
	RoleAdmin           = "ADMIN"
	RoleResearchAdviser = "RESEARCH_ADVISER"
)

// RoleIDResearchAdviser is the roles.id of research advisers on databases
// that associate roles by id.
const RoleIDResearchAdviser = 2

// Employee is an admin or research adviser row projected through the
// capability-aware query builder.
type Employee struct {
	ID             int64      `db:"id" json:"id"`
	FirstName      string     `db:"first_name" json:"first_name"`
	LastName       string     `db:"last_name" json:"last_name"`
	DisplayName    string     `db:"display_name" json:"name"`
	Email          string     `db:"email" json:"email"`
	Department     string     `db:"department" json:"department"`
	ProfilePicture *string    `db:"profile_picture" json:"profile_picture,omitempty"`
	Archived       bool       `db:"is_archived" json:"is_archived"`
	ArchivedAt     *time.Time `db:"archived_at" json:"archived_at,omitempty"`
}

// EmployeeCredentials carries what login needs from an employee row.
type EmployeeCredentials struct {
	ID           int64           `db:"id"`
	DisplayName  string          `db:"display_name"`
	PasswordHash string          `db:"password"`
	Role         string          `db:"role"`
	Archived     bool            `db:"is_archived"`
	Permissions  json.RawMessage `db:"permissions"`
}

// PermissionList decodes the JSON permissions column, tolerating garbage.
func (c *EmployeeCredentials) PermissionList() []string {
	if c == nil || len(c.Permissions) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(c.Permissions, &out); err != nil {
		return nil
	}
	return out
}

// NewEmployee holds the values needed to insert a research adviser.
type NewEmployee struct {
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	DepartmentID *int64
	Department   string
	Permissions  []string
}

// EmployeeFilter narrows employee listings.
type EmployeeFilter struct {
	Archived   bool
	Department string
	Search     string
}
