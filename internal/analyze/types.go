package analyze

import (
	"go/token"

	"pgenum-generator/pgenum"
)

//go:generate go tool stringer -type=EnumKind -linecomment

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "pgenum-generator/examples/days"
	Name    string // e.g., "DaysOfWeek"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// EnumKind is the underlying kind of a marked enum.
type EnumKind int

const (
	EnumKindInvalid  EnumKind = iota // invalid
	EnumKindString                   // string
	EnumKindSigned                   // signed
	EnumKindUnsigned                 // unsigned
)

// EnumInfo describes one type declaration carrying the marker.
type EnumInfo struct {
	ID          TypeID         // Package path and type name
	PkgName     string         // Declaring package name
	Kind        EnumKind       // Underlying kind
	Marker      pgenum.Marker  // Parsed directive
	Members     []string       // Member constants in declaration order
	HasStringer bool           // Whether the value type has a String() string method
	Position    token.Position // Position of the type name
}

// Exported reports whether the type can be referenced from other packages.
func (e *EnumInfo) Exported() bool {
	return token.IsExported(e.ID.Name)
}

// PGName returns the PostgreSQL type name the runtime will use with the
// given translator, honouring the marker's override.
func (e *EnumInfo) PGName(translator pgenum.NameTranslator) string {
	if e.Marker.HasName() {
		return e.Marker.Name
	}

	if translator == nil {
		translator = pgenum.DefaultNameTranslator
	}

	return translator.TranslateTypeName(e.ID.Name)
}

// PackageInfo holds information about a loaded package.
type PackageInfo struct {
	Path  string      // Import path
	Name  string      // Package name
	Dir   string      // Directory holding the package sources
	Enums []*EnumInfo // Marked enums in discovery order
}
