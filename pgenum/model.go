package pgenum

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"ariga.io/atlas/sql/schema"
	"github.com/lib/pq"
)

// DefaultSchema is the PostgreSQL schema used when none is given.
const DefaultSchema = "public"

// ModelBuilder declares the PostgreSQL enum types a data model relies on.
// The declarations are kept as atlas schema objects.
type ModelBuilder struct {
	schema     *schema.Schema
	translator NameTranslator
	enums      map[string]*schema.EnumType
}

// NewModelBuilder returns a builder declaring enums in schemaName.
func NewModelBuilder(schemaName string) *ModelBuilder {
	if schemaName == "" {
		schemaName = DefaultSchema
	}

	return &ModelBuilder{
		schema: &schema.Schema{Name: schemaName},
		enums:  make(map[string]*schema.EnumType),
	}
}

// WithNameTranslator sets the translator used by later HasPostgresEnum calls.
func (mb *ModelBuilder) WithNameTranslator(t NameTranslator) *ModelBuilder {
	mb.translator = t
	return mb
}

// HasPostgresEnum declares the PostgreSQL enum type backing E. Declaring the
// same PostgreSQL name again replaces its labels.
func HasPostgresEnum[E Enum](mb *ModelBuilder, members []E, opts ...Option) {
	m := newMapping(members, buildOptions(mb.translator, opts))

	if e, ok := mb.enums[m.PGName]; ok {
		e.Values = m.Labels
		return
	}

	e := &schema.EnumType{
		T:      m.PGName,
		Values: m.Labels,
		Schema: mb.schema,
	}
	mb.enums[m.PGName] = e
	mb.schema.Objects = append(mb.schema.Objects, e)
}

// Schema returns the atlas schema holding the declared enum types.
func (mb *ModelBuilder) Schema() *schema.Schema {
	return mb.schema
}

// Enums returns the declared enum types in declaration order.
func (mb *ModelBuilder) Enums() []*schema.EnumType {
	var enums []*schema.EnumType

	for _, o := range mb.schema.Objects {
		if e, ok := o.(*schema.EnumType); ok {
			enums = append(enums, e)
		}
	}

	return enums
}

// Plan returns the statements that bring a database holding existing enum
// types (name to labels) up to date with the declarations. Labels that exist
// only in the database are left alone; PostgreSQL cannot drop them.
func (mb *ModelBuilder) Plan(existing map[string][]string) []string {
	var stmts []string

	for _, e := range mb.Enums() {
		name := pq.QuoteIdentifier(mb.schema.Name) + "." + pq.QuoteIdentifier(e.T)

		labels, ok := existing[e.T]
		if !ok {
			quoted := make([]string, len(e.Values))
			for i, v := range e.Values {
				quoted[i] = pq.QuoteLiteral(v)
			}

			stmts = append(stmts, fmt.Sprintf("CREATE TYPE %s AS ENUM (%s)", name, strings.Join(quoted, ", ")))

			continue
		}

		have := make(map[string]struct{}, len(labels))
		for _, l := range labels {
			have[l] = struct{}{}
		}

		for _, v := range e.Values {
			if _, ok := have[v]; !ok {
				stmts = append(stmts, fmt.Sprintf("ALTER TYPE %s ADD VALUE IF NOT EXISTS %s", name, pq.QuoteLiteral(v)))
			}
		}
	}

	return stmts
}

// ExecQuerier is the subset of *sql.DB and *sql.Conn used by Apply.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

const existingEnumsQuery = `SELECT t.typname, e.enumlabel
FROM pg_catalog.pg_type t
JOIN pg_catalog.pg_namespace n ON n.oid = t.typnamespace
LEFT JOIN pg_catalog.pg_enum e ON e.enumtypid = t.oid
WHERE t.typtype = 'e' AND n.nspname = $1
ORDER BY t.typname, e.enumsortorder`

// Apply creates missing enum types and adds missing labels. Statements are
// not wrapped in a transaction: ALTER TYPE ... ADD VALUE cannot run inside
// one on older servers.
func (mb *ModelBuilder) Apply(ctx context.Context, db ExecQuerier) error {
	existing, err := mb.existing(ctx, db)
	if err != nil {
		return err
	}

	for _, stmt := range mb.Plan(existing) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying %q: %w", stmt, err)
		}
	}

	return nil
}

func (mb *ModelBuilder) existing(ctx context.Context, db ExecQuerier) (map[string][]string, error) {
	rows, err := db.QueryContext(ctx, existingEnumsQuery, mb.schema.Name)
	if err != nil {
		return nil, fmt.Errorf("querying enum types: %w", err)
	}
	defer rows.Close()

	existing := make(map[string][]string)

	for rows.Next() {
		var (
			name  string
			label sql.NullString
		)
		if err := rows.Scan(&name, &label); err != nil {
			return nil, fmt.Errorf("scanning enum type: %w", err)
		}

		labels := existing[name]
		if label.Valid {
			labels = append(labels, label.String)
		}

		existing[name] = labels
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading enum types: %w", err)
	}

	return existing, nil
}
