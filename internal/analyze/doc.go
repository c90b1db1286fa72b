// Package analyze provides package loading and discovery of marked enums.
//
// It uses golang.org/x/tools/go/packages with AST and go/types to find type
// declarations carrying the pgenum:enum directive and to collect their member
// constants in declaration order.
//
// Key types:
//   - TypeID: package import path + type name
//   - EnumInfo: one marked enum (kind, marker arguments, members, position)
//   - Catalog: every scanned package with its enums and diagnostics
package analyze
