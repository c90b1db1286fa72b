// Package gen provides deterministic Go code generation for enum
// registration helpers.
//
// Generation approach uses text/template + go/format, so the same
// registrations always render to the same bytes.
//
// Every generated file holds two functions:
//   - MapPostgresEnums: one pgenum.MapEnum call per enum, returns the builder
//   - RegisterPostgresEnums: one pgenum.HasPostgresEnum call per enum
//
// Both are emitted even when there is nothing to register.
package gen
