package schema

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ColumnSet is the set of column names present on a table.
type ColumnSet map[string]struct{}

// Has reports whether every named column is present.
func (s ColumnSet) Has(names ...string) bool {
	for _, name := range names {
		if _, ok := s[name]; !ok {
			return false
		}
	}
	return len(names) > 0
}

// First returns the first present column among the candidates, or "".
func (s ColumnSet) First(candidates ...string) string {
	for _, name := range candidates {
		if _, ok := s[name]; ok {
			return name
		}
	}
	return ""
}

// Introspector reads the database catalog to discover optional columns.
// Catalog failures degrade to "nothing present" and are only logged.
type Introspector struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewIntrospector constructs an introspector over the shared handle.
func NewIntrospector(db *sqlx.DB, logger *zap.Logger) *Introspector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Introspector{db: db, logger: logger}
}

const columnsQuery = `
SELECT column_name
FROM information_schema.columns
WHERE table_schema = current_schema() AND table_name = $1`

const tableExistsQuery = `
SELECT EXISTS (
	SELECT 1 FROM information_schema.tables
	WHERE table_schema = current_schema() AND table_name = $1
)`

// Columns returns the columns of table. The empty set is returned when the
// table is missing or the catalog cannot be read.
func (i *Introspector) Columns(ctx context.Context, table string) ColumnSet {
	set := ColumnSet{}
	if i == nil || i.db == nil {
		return set
	}
	var names []string
	if err := i.db.SelectContext(ctx, &names, columnsQuery, table); err != nil {
		i.logger.Warn("schema introspection failed", zap.String("table", table), zap.Error(err))
		return set
	}
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// TableExists reports whether the table (or view) is visible. Failures read
// as absent.
func (i *Introspector) TableExists(ctx context.Context, table string) bool {
	if i == nil || i.db == nil {
		return false
	}
	var exists bool
	if err := i.db.GetContext(ctx, &exists, tableExistsQuery, table); err != nil {
		i.logger.Warn("table lookup failed", zap.String("table", table), zap.Error(err))
		return false
	}
	return exists
}
