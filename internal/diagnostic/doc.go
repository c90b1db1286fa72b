// Package diagnostic provides structured warnings and errors found while
// scanning and normalizing marked enum declarations.
//
// Key capabilities:
//   - Marker attached to a non-enum declaration
//   - Marked types that generated code cannot reference
//   - Integer enums whose labels fall back to numbers
//   - Marker arguments that were not understood
package diagnostic
