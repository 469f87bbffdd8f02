package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployeeNameFallsBackToEmail(t *testing.T) {
	assert.Equal(t, "e.email", EmployeeName(EmployeeColumns{}, "e"))
	assert.Contains(t, EmployeeName(EmployeeColumns{FirstName: "firstname", LastName: "lastname"}, "e"),
		"CONCAT_WS(' ', e.firstname, e.lastname)")
	assert.Contains(t, EmployeeName(EmployeeColumns{FirstName: "first_name"}, ""), "first_name")
}

func TestAdviserFilterVariants(t *testing.T) {
	cases := []struct {
		name string
		cols EmployeeColumns
		want string
	}{
		{"role column", EmployeeColumns{Role: "role"}, "e.role = 'RESEARCH_ADVISER'"},
		{"legacy employee_type", EmployeeColumns{Role: "employee_type"}, "e.employee_type = 'RESEARCH_ADVISER'"},
		{"role id", EmployeeColumns{RoleID: true}, "e.role_id = 2"},
		{"nothing", EmployeeColumns{}, ExcludeAll},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AdviserFilter(tc.cols, "e"))
		})
	}
}

func TestArchivedFilterDegradation(t *testing.T) {
	with := EmployeeColumns{Archived: true}
	without := EmployeeColumns{}

	assert.Equal(t, "e.is_archived = 1", ArchivedFilter(with, "e", true))
	assert.Equal(t, "COALESCE(e.is_archived, 0) = 0", ArchivedFilter(with, "e", false))
	assert.Equal(t, ExcludeAll, ArchivedFilter(without, "e", true))
	assert.Empty(t, ArchivedFilter(without, "e", false))
}

func TestDepartmentLabelAndFilter(t *testing.T) {
	expr, join := DepartmentLabel(true, true, "e", "d")
	assert.Equal(t, "COALESCE(d.name, e.department, '')", expr)
	assert.Contains(t, join, "LEFT JOIN departments d ON d.id = e.department_id")

	expr, join = DepartmentLabel(false, false, "e", "d")
	assert.Equal(t, "''", expr)
	assert.Empty(t, join)

	args := &Args{}
	assert.Equal(t, ExcludeAll, DepartmentFilter(false, false, "e", "d", args, "CCS"))
	assert.Zero(t, args.Len())

	pred := DepartmentFilter(true, true, "e", "d", args, "CCS")
	assert.Equal(t, "(d.name = $1 OR e.department = $1)", pred)
	assert.Equal(t, []interface{}{"CCS"}, args.Values())
}

func TestWhereSkipsEmptyPredicates(t *testing.T) {
	assert.Empty(t, Where("", "  "))
	assert.Equal(t, " WHERE a = 1 AND b = 2", Where("a = 1", "", "b = 2"))
}

func TestSearchAndEquals(t *testing.T) {
	args := &Args{}
	assert.Equal(t, ExcludeAll, Equals(false, "b", "strand", args, "STEM"))
	pred := Search(args, "Solar", "b.title", "b.keywords")
	require.Equal(t, 1, args.Len())
	assert.Equal(t, `(LOWER(COALESCE(b.title, '')) LIKE $1 ESCAPE '\' OR LOWER(COALESCE(b.keywords, '')) LIKE $1 ESCAPE '\')`, pred)
	assert.Equal(t, "%solar%", args.Values()[0])
	assert.Equal(t, ExcludeAll, Search(args, "x"))
}

func TestSearchEscapesWildcards(t *testing.T) {
	args := &Args{}
	Search(args, "100%", "b.title")
	Search(args, "a_b", "b.title")
	Search(args, `c:\x`, "b.title")
	assert.Equal(t, []interface{}{`%100\%%`, `%a\_b%`, `%c:\\x%`}, args.Values())
}

func TestSubmissionViewsLiteralWithoutColumn(t *testing.T) {
	assert.Equal(t, "0", SubmissionViews(SubmissionColumns{}, "b"))
	assert.Equal(t, "COALESCE(b.views, 0)", SubmissionViews(SubmissionColumns{Views: true}, "b"))
}

func TestNormalized(t *testing.T) {
	assert.Equal(t, `REGEXP_REPLACE(LOWER(title), '\s+', '', 'g')`, Normalized("title"))
}
