package pgenum

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"reflect"

	"github.com/lib/pq"
)

// DataSourceBuilder collects enum mappings and builds a PostgreSQL data
// source that sends mapped enum values as their labels.
type DataSourceBuilder struct {
	connString string
	translator NameTranslator
	mappings   []*Mapping
	byType     map[reflect.Type]int
}

// NewDataSourceBuilder returns a builder for the given lib/pq connection
// string. An empty string uses the libpq environment defaults.
func NewDataSourceBuilder(connString string) *DataSourceBuilder {
	return &DataSourceBuilder{
		connString: connString,
		byType:     make(map[reflect.Type]int),
	}
}

// WithNameTranslator sets the translator used by later MapEnum calls.
func (b *DataSourceBuilder) WithNameTranslator(t NameTranslator) *DataSourceBuilder {
	b.translator = t
	return b
}

// MapEnum maps E to a PostgreSQL enum type. Mapping the same Go type again
// replaces the earlier mapping.
func MapEnum[E Enum](b *DataSourceBuilder, members []E, opts ...Option) *DataSourceBuilder {
	m := newMapping(members, buildOptions(b.translator, opts))

	if i, ok := b.byType[m.GoType]; ok {
		b.mappings[i] = m
		return b
	}

	b.byType[m.GoType] = len(b.mappings)
	b.mappings = append(b.mappings, m)

	return b
}

// Mappings returns the mappings in registration order.
func (b *DataSourceBuilder) Mappings() []*Mapping {
	return append([]*Mapping(nil), b.mappings...)
}

// Mapping returns the mapping registered for t.
func (b *DataSourceBuilder) Mapping(t reflect.Type) (*Mapping, bool) {
	i, ok := b.byType[t]
	if !ok {
		return nil, false
	}

	return b.mappings[i], true
}

// Connector returns a driver.Connector over lib/pq that encodes mapped enum
// arguments. Mappings added after this call do not affect the connector.
func (b *DataSourceBuilder) Connector() (driver.Connector, error) {
	base, err := pq.NewConnector(b.connString)
	if err != nil {
		return nil, fmt.Errorf("creating postgres connector: %w", err)
	}

	return b.wrap(base), nil
}

// Build opens a *sql.DB over Connector. No connection is made until the
// database is first used.
func (b *DataSourceBuilder) Build() (*sql.DB, error) {
	c, err := b.Connector()
	if err != nil {
		return nil, err
	}

	return sql.OpenDB(c), nil
}

func (b *DataSourceBuilder) wrap(base driver.Connector) driver.Connector {
	byType := make(map[reflect.Type]*Mapping, len(b.mappings))
	for t, i := range b.byType {
		byType[t] = b.mappings[i]
	}

	return &enumConnector{base: base, mappings: byType}
}
