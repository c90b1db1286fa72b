// Package registration turns scanned enum declarations into the ordered,
// de-duplicated list the emitter renders.
package registration

import (
	"fmt"
	"go/token"

	"pgenum-generator/internal/analyze"
	"pgenum-generator/internal/diagnostic"
)

// GlobalScope is the scope of an enum declared in the package that receives
// the generated code. Such enums are referenced by their bare identifier.
const GlobalScope = ""

// Registration is one enum to register with both builders.
type Registration struct {
	// Name is the type's identifier.
	Name string
	// Scope is the declaring package's import path, or GlobalScope.
	Scope string
	// PkgName is the declaring package's name when it is imported. It can
	// differ from the last element of Scope (e.g. "example.com/lib/v2").
	PkgName string
	// Override is the explicit PostgreSQL type name; empty means the
	// default naming convention.
	Override string
	// Members are the member constant identifiers in declaration order.
	Members []string
}

// IsGlobal reports whether the enum lives in the generated file's package.
func (r Registration) IsGlobal() bool {
	return r.Scope == GlobalScope
}

// HasOverride reports whether an explicit PostgreSQL name was given.
func (r Registration) HasOverride() bool {
	return r.Override != ""
}

// Ref returns the Go expression naming ident from the generated file.
// qualify maps an import path to the alias it is imported under.
func (r Registration) Ref(ident string, qualify func(scope string) string) string {
	if r.IsGlobal() {
		return ident
	}

	return qualify(r.Scope) + "." + ident
}

// TypeRef returns the qualified reference to the enum type.
func (r Registration) TypeRef(qualify func(scope string) string) string {
	return r.Ref(r.Name, qualify)
}

// Normalize converts scanned enums into registrations for a file generated
// into the package targetPkgPath (empty when the target is not one of the
// scanned packages). Order is preserved; repeated declarations are dropped.
func Normalize(enums []*analyze.EnumInfo, targetPkgPath string) ([]Registration, diagnostic.Diagnostics) {
	var (
		diags diagnostic.Diagnostics
		regs  = make([]Registration, 0, len(enums))
		seen  = make(map[analyze.TypeID]struct{}, len(enums))
	)

	for _, e := range enums {
		if _, dup := seen[e.ID]; dup {
			diags.AddInfo(diagnostic.CodeDuplicate, "declaration seen more than once", e.ID.String(), e.Position.String())
			continue
		}

		seen[e.ID] = struct{}{}

		reg := Registration{
			Name:     e.ID.Name,
			Scope:    e.ID.PkgPath,
			Override: e.Marker.Name,
		}

		if e.ID.PkgPath == targetPkgPath {
			reg.Scope = GlobalScope
			reg.Members = append([]string(nil), e.Members...)
			regs = append(regs, reg)

			continue
		}

		if !e.Exported() {
			diags.AddError(diagnostic.CodeUnexportedReference,
				fmt.Sprintf("unexported type cannot be referenced from another package; generate into %s instead", e.ID.PkgPath),
				e.ID.String(), e.Position.String())

			continue
		}

		reg.PkgName = e.PkgName

		for _, m := range e.Members {
			if !token.IsExported(m) {
				diags.AddWarning(diagnostic.CodeUnexportedMember,
					fmt.Sprintf("skipping unexported member %s", m), e.ID.String(), e.Position.String())

				continue
			}

			reg.Members = append(reg.Members, m)
		}

		regs = append(regs, reg)
	}

	return regs, diags
}
