package schema

import (
	"fmt"
	"strings"
)

// ExcludeAll is the predicate used when a filter column is missing. An
// unsupported filter hides everything instead of showing unfiltered rows.
const ExcludeAll = "1=0"

// Args collects positional parameters and hands out their placeholders.
type Args struct {
	values []interface{}
}

// Add appends a value and returns its $n placeholder.
func (a *Args) Add(value interface{}) string {
	a.values = append(a.values, value)
	return fmt.Sprintf("$%d", len(a.values))
}

// Values returns the collected parameters in placeholder order.
func (a *Args) Values() []interface{} {
	return a.values
}

// Len reports how many parameters have been added.
func (a *Args) Len() int {
	return len(a.values)
}

// Where joins non-empty predicates with AND. It returns "" when none remain.
func Where(predicates ...string) string {
	kept := make([]string, 0, len(predicates))
	for _, p := range predicates {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(kept, " AND ")
}

// Normalized folds case and strips all whitespace, the comparison used for
// department names and submission titles.
func Normalized(expr string) string {
	return fmt.Sprintf(`REGEXP_REPLACE(LOWER(%s), '\s+', '', 'g')`, expr)
}

func col(alias, name string) string {
	if alias == "" {
		return name
	}
	return alias + "." + name
}

func orEmpty(alias, name string) string {
	if name == "" {
		return "''"
	}
	return fmt.Sprintf("COALESCE(%s, '')", col(alias, name))
}

// EmployeeFirstName projects the first-name column or an empty literal.
func EmployeeFirstName(c EmployeeColumns, alias string) string {
	return orEmpty(alias, c.FirstName)
}

// EmployeeLastName projects the last-name column or an empty literal.
func EmployeeLastName(c EmployeeColumns, alias string) string {
	return orEmpty(alias, c.LastName)
}

// EmployeeName is the display name: the composed full name when name columns
// exist, otherwise the email address.
func EmployeeName(c EmployeeColumns, alias string) string {
	return displayName(c.FirstName, c.LastName, alias)
}

// StudentName mirrors EmployeeName for students.
func StudentName(c StudentColumns, alias string) string {
	return displayName(c.FirstName, c.LastName, alias)
}

func displayName(first, last, alias string) string {
	switch {
	case first != "" && last != "":
		return fmt.Sprintf("COALESCE(NULLIF(TRIM(CONCAT_WS(' ', %s, %s)), ''), %s)", col(alias, first), col(alias, last), col(alias, "email"))
	case first != "":
		return fmt.Sprintf("COALESCE(NULLIF(TRIM(%s), ''), %s)", col(alias, first), col(alias, "email"))
	default:
		return col(alias, "email")
	}
}

// AdviserFilter restricts employees to research advisers using whichever
// role representation exists.
func AdviserFilter(c EmployeeColumns, alias string) string {
	switch {
	case c.Role != "":
		return fmt.Sprintf("%s = 'RESEARCH_ADVISER'", col(alias, c.Role))
	case c.RoleID:
		return fmt.Sprintf("%s = 2", col(alias, "role_id"))
	default:
		return ExcludeAll
	}
}

// AdminFilter restricts employees to administrators.
func AdminFilter(c EmployeeColumns, alias string) string {
	switch {
	case c.Role != "":
		return fmt.Sprintf("%s = 'ADMIN'", col(alias, c.Role))
	case c.RoleID:
		return fmt.Sprintf("%s = 1", col(alias, "role_id"))
	default:
		return ExcludeAll
	}
}

// RoleExpr projects the role discriminator as text.
func RoleExpr(c EmployeeColumns, alias string) string {
	switch {
	case c.Role != "":
		return fmt.Sprintf("COALESCE(%s, '')", col(alias, c.Role))
	case c.RoleID:
		return fmt.Sprintf("CASE %s WHEN 1 THEN 'ADMIN' WHEN 2 THEN 'RESEARCH_ADVISER' ELSE '' END", col(alias, "role_id"))
	default:
		return "''"
	}
}

// ArchivedFilter selects archived (archived=true) or active rows. Without
// the flag column an archived listing is empty and an active listing is
// unrestricted, since nothing can have been archived.
func ArchivedFilter(c EmployeeColumns, alias string, archived bool) string {
	if !c.Archived {
		if archived {
			return ExcludeAll
		}
		return ""
	}
	if archived {
		return fmt.Sprintf("%s = 1", col(alias, "is_archived"))
	}
	return fmt.Sprintf("COALESCE(%s, 0) = 0", col(alias, "is_archived"))
}

// ArchivedExpr projects the archive flag as a boolean.
func ArchivedExpr(c EmployeeColumns, alias string) string {
	if !c.Archived {
		return "FALSE"
	}
	return fmt.Sprintf("(COALESCE(%s, 0) = 1)", col(alias, "is_archived"))
}

// DepartmentLabel returns the department label projection for an employee
// or student alias together with the join it needs (possibly "").
func DepartmentLabel(hasID, hasLabel bool, alias, deptAlias string) (expr, join string) {
	switch {
	case hasID && hasLabel:
		return fmt.Sprintf("COALESCE(%s, %s, '')", col(deptAlias, "name"), col(alias, "department")),
			fmt.Sprintf(" LEFT JOIN departments %s ON %s = %s", deptAlias, col(deptAlias, "id"), col(alias, "department_id"))
	case hasID:
		return fmt.Sprintf("COALESCE(%s, '')", col(deptAlias, "name")),
			fmt.Sprintf(" LEFT JOIN departments %s ON %s = %s", deptAlias, col(deptAlias, "id"), col(alias, "department_id"))
	case hasLabel:
		return fmt.Sprintf("COALESCE(%s, '')", col(alias, "department")), ""
	default:
		return "''", ""
	}
}

// DepartmentFilter matches a department name against whatever representation
// exists. It assumes the join from DepartmentLabel is present when hasID.
func DepartmentFilter(hasID, hasLabel bool, alias, deptAlias string, args *Args, name string) string {
	switch {
	case hasID && hasLabel:
		ph := args.Add(name)
		return fmt.Sprintf("(%s = %s OR %s = %s)", col(deptAlias, "name"), ph, col(alias, "department"), ph)
	case hasID:
		return fmt.Sprintf("%s = %s", col(deptAlias, "name"), args.Add(name))
	case hasLabel:
		return fmt.Sprintf("%s = %s", col(alias, "department"), args.Add(name))
	default:
		return ExcludeAll
	}
}

// OptionalColumn projects an optional column or a typed NULL.
func OptionalColumn(present bool, alias, name, sqlType string) string {
	if !present {
		return fmt.Sprintf("NULL::%s", sqlType)
	}
	return col(alias, name)
}

// OptionalText projects an optional text column or an empty literal.
func OptionalText(present bool, alias, name string) string {
	if !present {
		return "''"
	}
	return fmt.Sprintf("COALESCE(%s, '')", col(alias, name))
}

// SubmissionViews projects the view counter, or 0 when it is not tracked.
func SubmissionViews(c SubmissionColumns, alias string) string {
	if !c.Views {
		return "0"
	}
	return fmt.Sprintf("COALESCE(%s, 0)", col(alias, "views"))
}

// Equals builds a column = $n predicate, or ExcludeAll when the column is
// missing.
func Equals(present bool, alias, name string, args *Args, value interface{}) string {
	if !present {
		return ExcludeAll
	}
	return fmt.Sprintf("%s = %s", col(alias, name), args.Add(value))
}

// Search builds a case-insensitive substring match across the present
// columns. With no columns to search, nothing matches.
func Search(args *Args, term string, columns ...string) string {
	if len(columns) == 0 {
		return ExcludeAll
	}
	ph := args.Add("%" + likeEscaper.Replace(strings.ToLower(term)) + "%")
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = fmt.Sprintf(`LOWER(COALESCE(%s, '')) LIKE %s ESCAPE '\'`, c, ph)
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

// likeEscaper makes the user term match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
