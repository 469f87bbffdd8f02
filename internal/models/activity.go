package models

import (
	"encoding/json"
	"time"
)

// Activity actions appended to activity_logs.
const (
	ActionLogin              = "LOGIN"
	ActionLogout             = "LOGOUT"
	ActionDepartmentCreate   = "DEPARTMENT_CREATE"
	ActionDepartmentDelete   = "DEPARTMENT_DELETE"
	ActionStrandUpdate       = "STRAND_UPDATE"
	ActionSubAdminCreate     = "SUBADMIN_CREATE"
	ActionSubAdminArchive    = "SUBADMIN_ARCHIVE"
	ActionSubAdminRestore    = "SUBADMIN_RESTORE"
	ActionResearchUpload     = "RESEARCH_UPLOAD"
	ActionProfileUpdate      = "PROFILE_UPDATE"
	ActionPasswordChange     = "PASSWORD_CHANGE"
	ActionPasswordReset      = "PASSWORD_RESET"
	ActionDepartmentBackfill = "DEPARTMENT_BACKFILL"
)

// ActivityLog is an append-only audit record.
type ActivityLog struct {
	ID        int64           `db:"id" json:"id"`
	ActorType string          `db:"actor_type" json:"actor_type"`
	ActorID   string          `db:"actor_id" json:"actor_id"`
	Action    string          `db:"action" json:"action"`
	Details   json.RawMessage `db:"details" json:"details,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// ActivityFilter narrows activity listings.
type ActivityFilter struct {
	ActorType string `form:"actor_type"`
	Action    string `form:"action"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
}
