// Package query provides a small SQL query builder with field-to-column
// projections and automatic parameter numbering for PostgreSQL.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps exported field names to table columns for a single table.
// Field names are the stable identifiers used by callers (filters, sorting);
// columns are the qualified SQL identifiers they resolve to.
type ProjectionMap struct {
	schema string
	table  string
	alias  string
	fields []string
	cols   map[string]string
}

// NewProjectionMap creates a projection for the given schema, table, and alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema: schema,
		table:  table,
		alias:  alias,
		cols:   make(map[string]string),
	}
}

// Project registers a column under the given field name. Registration order
// determines column order in generated SELECT lists.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	p.fields = append(p.fields, field)
	p.cols[field] = fmt.Sprintf("%s.%s", p.alias, column)
	return p
}

// Table returns the aliased table reference for FROM clauses.
func (p *ProjectionMap) Table() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// Columns returns the full projected column list.
func (p *ProjectionMap) Columns() string {
	cols := make([]string, len(p.fields))
	for i, f := range p.fields {
		cols[i] = p.cols[f]
	}
	return strings.Join(cols, ", ")
}

// Column resolves a field name to its qualified column. Unknown fields
// resolve to the empty string, which generated SQL will surface loudly.
func (p *ProjectionMap) Column(field string) string {
	return p.cols[field]
}

// Has reports whether the field is registered in the projection.
func (p *ProjectionMap) Has(field string) bool {
	_, ok := p.cols[field]
	return ok
}
