// Package pgenum is the runtime side of pgenum-generator.
//
// Enum types are marked for registration with a directive comment placed
// directly above the type declaration:
//
//	//pgenum:enum name=DoW
//	type DaysOfWeek int
//
// The generator emits two functions per package, MapPostgresEnums and
// RegisterPostgresEnums, which call MapEnum and HasPostgresEnum for every
// marked type. MapEnum teaches a DataSourceBuilder how to send enum values to
// PostgreSQL; HasPostgresEnum declares the enum type on a ModelBuilder so it
// can be created or migrated.
//
// # Naming
//
// Without a name argument the PostgreSQL type name is derived from the Go
// type name by the builder's NameTranslator (snake case by default). Labels
// of string enums are their values. Labels of integer enums come from their
// String method passed through the translator, or from the decimal value when
// the type has no String method.
package pgenum
