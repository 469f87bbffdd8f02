package models

// DashboardCounts are the headline numbers on the admin dashboard.
type DashboardCounts struct {
	Departments      int64 `db:"departments" json:"departments"`
	Students         int64 `db:"students" json:"students"`
	ActiveAdvisers   int64 `db:"active_advisers" json:"active_advisers"`
	ArchivedAdvisers int64 `db:"archived_advisers" json:"archived_advisers"`
	Submissions      int64 `db:"submissions" json:"submissions"`
	TotalViews       int64 `db:"total_views" json:"total_views"`
}
