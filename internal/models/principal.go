package models

import (
	"strconv"
	"time"
)

// UserType identifies which table an authenticated principal comes from.
type UserType string

const (
	UserTypeAdmin    UserType = "admin"
	UserTypeSubAdmin UserType = "subadmin"
	UserTypeStudent  UserType = "student"
)

// Valid reports whether the type is one of the known principal kinds.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeAdmin, UserTypeSubAdmin, UserTypeStudent:
		return true
	}
	return false
}

// Permission strings granted to sub-admins.
const (
	PermissionManageDepartments = "manage_departments"
	PermissionUploadResearch    = "upload_research"
	PermissionManageStrands     = "manage_strands"
)

// Principal is the authenticated caller reconstructed from the session.
type Principal struct {
	Type        UserType  `json:"user_type"`
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	Permissions []string  `json:"permissions,omitempty"`
	IssuedAt    time.Time `json:"issued_at"`
}

// IsAdmin reports whether the principal is a full administrator.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Type == UserTypeAdmin
}

// IsStudent reports whether the principal is a student.
func (p *Principal) IsStudent() bool {
	return p != nil && p.Type == UserTypeStudent
}

// IsSubAdmin reports whether the principal is a research adviser.
func (p *Principal) IsSubAdmin() bool {
	return p != nil && p.Type == UserTypeSubAdmin
}

// Can reports whether the principal holds the permission. Admins hold all.
func (p *Principal) Can(permission string) bool {
	if p == nil {
		return false
	}
	if p.Type == UserTypeAdmin {
		return true
	}
	for _, granted := range p.Permissions {
		if granted == permission {
			return true
		}
	}
	return false
}

// EmployeeID parses the numeric identifier of an admin or sub-admin.
func (p *Principal) EmployeeID() (int64, bool) {
	if p == nil || p.Type == UserTypeStudent {
		return 0, false
	}
	id, err := strconv.ParseInt(p.ID, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
