package analyze

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/tools/go/packages"

	"pgenum-generator/internal/diagnostic"
	"pgenum-generator/internal/match"
	"pgenum-generator/pgenum"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// Config controls how packages are loaded.
type Config struct {
	// Context cancels loading; nil means context.Background.
	Context context.Context
	// Dir is the directory patterns are resolved against. Empty means the
	// current directory.
	Dir string
	// Tags are build tags passed to the go command.
	Tags []string
	// GeneratedFilename is the base name of the generator's output file.
	// The file is skipped while scanning and type errors inside it are
	// ignored: it is rewritten anyway.
	GeneratedFilename string
}

// Catalog is the result of scanning a set of packages.
type Catalog struct {
	// Packages in import path order.
	Packages []*PackageInfo
	// Diagnostics found while scanning.
	Diagnostics diagnostic.Diagnostics
}

// Enums returns every marked enum in discovery order.
func (c *Catalog) Enums() []*EnumInfo {
	var enums []*EnumInfo
	for _, pkg := range c.Packages {
		enums = append(enums, pkg.Enums...)
	}

	return enums
}

// PackageInDir returns the scanned package whose sources live in dir.
func (c *Catalog) PackageInDir(dir string) *PackageInfo {
	for _, pkg := range c.Packages {
		if pkg.Dir != "" && filepath.Clean(pkg.Dir) == filepath.Clean(dir) {
			return pkg
		}
	}

	return nil
}

// Analyzer loads Go packages and discovers marked enums.
type Analyzer struct {
	config Config
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(config Config) *Analyzer {
	return &Analyzer{config: config}
}

// LoadPackages loads the specified packages and scans them for marked enums.
// Patterns are standard Go package patterns (e.g., ".", "./...",
// "pgenum-generator/examples/days").
func (a *Analyzer) LoadPackages(patterns ...string) (*Catalog, error) {
	cfg := &packages.Config{
		Context: a.config.Context,
		Mode:    LoadMode,
		Dir:     a.config.Dir,
	}
	if len(a.config.Tags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(a.config.Tags, ",")}
	}

	overlay, err := a.generatedOverlay(cfg, patterns)
	if err != nil {
		return nil, err
	}

	cfg.Overlay = overlay

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	// Check for package errors
	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			if a.inGeneratedFile(e.Pos) {
				continue
			}

			errs = append(errs, e)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %v", errs)
	}

	slices.SortFunc(pkgs, func(x, y *packages.Package) int {
		return strings.Compare(x.PkgPath, y.PkgPath)
	})

	catalog := &Catalog{}
	for _, pkg := range pkgs {
		catalog.Packages = append(catalog.Packages, a.processPackage(pkg, &catalog.Diagnostics))
	}

	return catalog, nil
}

// generatedOverlay reduces every existing copy of the generator's output to
// its package clause. A stale file may reference members or runtime symbols
// that no longer exist; it must not keep the package from compiling.
func (a *Analyzer) generatedOverlay(base *packages.Config, patterns []string) (map[string][]byte, error) {
	if a.config.GeneratedFilename == "" {
		return nil, nil
	}

	cfg := *base
	cfg.Mode = packages.NeedName | packages.NeedFiles

	pkgs, err := packages.Load(&cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}

	var overlay map[string][]byte

	for _, pkg := range pkgs {
		for _, file := range pkg.GoFiles {
			if filepath.Base(file) != a.config.GeneratedFilename || pkg.Name == "" {
				continue
			}

			if overlay == nil {
				overlay = make(map[string][]byte)
			}

			overlay[file] = []byte("package " + pkg.Name + "\n")
		}
	}

	return overlay, nil
}

// inGeneratedFile reports whether an error position ("file:line:col") points
// into the generator's own output.
func (a *Analyzer) inGeneratedFile(pos string) bool {
	if a.config.GeneratedFilename == "" || pos == "" {
		return false
	}

	file := pos
	if i := strings.LastIndex(file, ".go:"); i >= 0 {
		file = file[:i+len(".go")]
	}

	return filepath.Base(file) == a.config.GeneratedFilename
}

// processPackage extracts marked enums from a loaded package.
func (a *Analyzer) processPackage(pkg *packages.Package, diags *diagnostic.Diagnostics) *PackageInfo {
	info := &PackageInfo{
		Path: pkg.PkgPath,
		Name: pkg.Name,
		Dir:  packageDir(pkg),
	}

	members := collectMembers(pkg)

	for _, file := range pkg.Syntax {
		if a.isGenerated(pkg.Fset, file) {
			continue
		}

		for _, decl := range file.Decls {
			switch d := decl.(type) {
			case *ast.GenDecl:
				if d.Tok != token.TYPE {
					continue
				}

				for _, spec := range d.Specs {
					ts, ok := spec.(*ast.TypeSpec)
					if !ok {
						continue
					}

					marker, ok := findMarker(d, ts)
					if !ok {
						reportNearMiss(pkg, d, ts, diags)
						continue
					}

					if enum := analyzeEnum(pkg, ts, marker, members, diags); enum != nil {
						info.Enums = append(info.Enums, enum)
					}
				}

			case *ast.FuncDecl:
				reportLocalMarkers(pkg, d, diags)
			}
		}
	}

	return info
}

func (a *Analyzer) isGenerated(fset *token.FileSet, file *ast.File) bool {
	if a.config.GeneratedFilename == "" {
		return false
	}

	return filepath.Base(fset.Position(file.Package).Filename) == a.config.GeneratedFilename
}

// analyzeEnum validates a marked type spec and builds its EnumInfo. It
// returns nil when the declaration cannot be registered.
func analyzeEnum(
	pkg *packages.Package,
	ts *ast.TypeSpec,
	marker pgenum.Marker,
	members map[*types.TypeName][]string,
	diags *diagnostic.Diagnostics,
) *EnumInfo {
	id := TypeID{PkgPath: pkg.PkgPath, Name: ts.Name.Name}
	position := pkg.Fset.Position(ts.Name.Pos())
	pos := position.String()

	obj, ok := pkg.TypesInfo.Defs[ts.Name].(*types.TypeName)
	if !ok || obj == nil {
		diags.AddError(diagnostic.CodeNotEnum, "declaration has no type information", id.String(), pos)
		return nil
	}

	if ts.Assign.IsValid() {
		diags.AddError(diagnostic.CodeNotEnum,
			"pgenum:enum cannot be placed on an alias; mark the aliased type instead", id.String(), pos)

		return nil
	}

	if ts.TypeParams != nil && ts.TypeParams.NumFields() > 0 {
		diags.AddError(diagnostic.CodeNotEnum, "pgenum:enum cannot be placed on a generic type", id.String(), pos)
		return nil
	}

	named, ok := obj.Type().(*types.Named)
	if !ok {
		diags.AddError(diagnostic.CodeNotEnum, "declaration is not a defined type", id.String(), pos)
		return nil
	}

	kind := enumKind(named.Underlying())
	if kind == EnumKindInvalid {
		diags.AddError(diagnostic.CodeNotEnum,
			fmt.Sprintf("pgenum:enum applies only to string or integer types, not %s", named.Underlying()),
			id.String(), pos)

		return nil
	}

	for _, arg := range marker.Ignored {
		msg := fmt.Sprintf("ignoring marker argument %q", arg)

		key, _, _ := strings.Cut(arg, "=")
		if s, ok := match.Closest(key, markerKeys, 2); ok {
			msg += fmt.Sprintf("; did you mean %s?", s)
		}

		diags.AddWarning(diagnostic.CodeMarkerArgs, msg, id.String(), pos)
	}

	enum := &EnumInfo{
		ID:          id,
		PkgName:     pkg.Name,
		Kind:        kind,
		Marker:      marker,
		Members:     members[obj],
		HasStringer: hasStringMethod(named),
		Position:    position,
	}

	if kind != EnumKindString && !enum.HasStringer {
		diags.AddWarning(diagnostic.CodeNumericLabels,
			"integer enum has no String method; labels will be decimal values", id.String(), pos)
	}

	return enum
}

// findMarker looks for the directive in the type spec's doc comment, or in
// the declaration's doc comment when the declaration is not grouped.
func findMarker(decl *ast.GenDecl, spec *ast.TypeSpec) (pgenum.Marker, bool) {
	if m, ok := markerIn(spec.Doc); ok {
		return m, true
	}

	if decl.Lparen.IsValid() {
		return pgenum.Marker{}, false
	}

	return markerIn(decl.Doc)
}

// markerKeys are the argument keys the directive understands.
var markerKeys = []string{"name"}

// reportNearMiss warns about doc comments that look like a misspelled
// directive, such as "// pgenum:enum" or "//pgenum:enums".
func reportNearMiss(pkg *packages.Package, decl *ast.GenDecl, spec *ast.TypeSpec, diags *diagnostic.Diagnostics) {
	docs := []*ast.CommentGroup{spec.Doc}
	if !decl.Lparen.IsValid() {
		docs = append(docs, decl.Doc)
	}

	for _, doc := range docs {
		if doc == nil {
			continue
		}

		for _, c := range doc.List {
			fields := strings.Fields(strings.TrimPrefix(c.Text, "//"))
			if len(fields) == 0 {
				continue
			}

			if match.Levenshtein(strings.ToLower(fields[0]), pgenum.Directive) > 2 {
				continue
			}

			diags.AddWarning(diagnostic.CodeMarkerTypo,
				fmt.Sprintf("%q is not a marker; write //%s with no space after the slashes", c.Text, pgenum.Directive),
				TypeID{PkgPath: pkg.PkgPath, Name: spec.Name.Name}.String(),
				pkg.Fset.Position(c.Pos()).String())

			return
		}
	}
}

func markerIn(doc *ast.CommentGroup) (pgenum.Marker, bool) {
	if doc == nil {
		return pgenum.Marker{}, false
	}

	for _, c := range doc.List {
		if m, ok := pgenum.ParseMarker(c.Text); ok {
			return m, true
		}
	}

	return pgenum.Marker{}, false
}

// reportLocalMarkers warns about marked types declared inside a function
// body; generated code cannot name them.
func reportLocalMarkers(pkg *packages.Package, fn *ast.FuncDecl, diags *diagnostic.Diagnostics) {
	if fn.Body == nil {
		return
	}

	ast.Inspect(fn.Body, func(n ast.Node) bool {
		decl, ok := n.(*ast.GenDecl)
		if !ok || decl.Tok != token.TYPE {
			return true
		}

		for _, spec := range decl.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}

			if _, marked := findMarker(decl, ts); marked {
				diags.AddWarning(diagnostic.CodeLocalType,
					fmt.Sprintf("%s is declared inside %s and cannot be registered", ts.Name.Name, fn.Name.Name),
					TypeID{PkgPath: pkg.PkgPath, Name: ts.Name.Name}.String(),
					pkg.Fset.Position(ts.Name.Pos()).String())
			}
		}

		return true
	})
}

// collectMembers maps every package-level type to its typed constants, in
// declaration order.
func collectMembers(pkg *packages.Package) map[*types.TypeName][]string {
	members := make(map[*types.TypeName][]string)

	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.CONST {
				continue
			}

			for _, spec := range gd.Specs {
				vs, ok := spec.(*ast.ValueSpec)
				if !ok {
					continue
				}

				for _, name := range vs.Names {
					if name.Name == "_" {
						continue
					}

					c, ok := pkg.TypesInfo.Defs[name].(*types.Const)
					if !ok {
						continue
					}

					named, ok := c.Type().(*types.Named)
					if !ok || named.Obj().Pkg() != pkg.Types {
						continue
					}

					members[named.Obj()] = append(members[named.Obj()], name.Name)
				}
			}
		}
	}

	return members
}

func enumKind(t types.Type) EnumKind {
	basic, ok := t.(*types.Basic)
	if !ok {
		return EnumKindInvalid
	}

	info := basic.Info()

	switch {
	case info&types.IsString != 0:
		return EnumKindString
	case basic.Kind() == types.Uintptr:
		return EnumKindInvalid
	case info&types.IsUnsigned != 0:
		return EnumKindUnsigned
	case info&types.IsInteger != 0:
		return EnumKindSigned
	default:
		return EnumKindInvalid
	}
}

// hasStringMethod reports whether values of named implement fmt.Stringer.
func hasStringMethod(named *types.Named) bool {
	obj, _, _ := types.LookupFieldOrMethod(named, false, named.Obj().Pkg(), "String")

	fn, ok := obj.(*types.Func)
	if !ok {
		return false
	}

	sig, ok := fn.Type().(*types.Signature)
	if !ok || sig.Params().Len() != 0 || sig.Results().Len() != 1 {
		return false
	}

	return types.Identical(sig.Results().At(0).Type(), types.Typ[types.String])
}

func packageDir(pkg *packages.Package) string {
	for _, files := range [][]string{pkg.GoFiles, pkg.CompiledGoFiles, pkg.OtherFiles} {
		if len(files) > 0 {
			return filepath.Dir(files[0])
		}
	}

	return ""
}
