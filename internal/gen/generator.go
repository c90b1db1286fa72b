package gen

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	"pgenum-generator/internal/common"
	"pgenum-generator/internal/registration"
)

// Defaults for GeneratorConfig.
const (
	DefaultFilename   = "pgenum_gen.go"
	DefaultRuntimePkg = "pgenum-generator/pgenum"
)

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// PackageName is the name of the generated package.
	PackageName string
	// OutputDir is the directory where the generated file is written.
	OutputDir string
	// Filename is the generated file's base name.
	Filename string
	// RuntimePkg is the import path of the runtime library.
	RuntimePkg string
	// GenerateComments enables doc comments on the generated functions.
	GenerateComments bool
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Filename:         DefaultFilename,
		RuntimePkg:       DefaultRuntimePkg,
		GenerateComments: true,
	}
}

// Generator renders registration helpers for a list of registrations.
type Generator struct {
	config GeneratorConfig
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig) *Generator {
	if config.Filename == "" {
		config.Filename = DefaultFilename
	}

	if config.RuntimePkg == "" {
		config.RuntimePkg = DefaultRuntimePkg
	}

	return &Generator{config: config}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Dir is the directory the file belongs in.
	Dir string
	// Filename is the name of the file (e.g., "pgenum_gen.go").
	Filename string
	// Content is the formatted Go source code.
	Content []byte
}

// Path returns the file's location on disk.
func (f GeneratedFile) Path() string {
	return filepath.Join(f.Dir, f.Filename)
}

type importSpec struct {
	Alias string
	Path  string
}

type callData struct {
	Type     string
	Members  []string
	Override string
}

type templateData struct {
	PackageName      string
	Runtime          string
	Imports          []importSpec
	GenerateComments bool
	Calls            []callData
}

// Generate renders the registration file. The result depends only on regs
// and the configuration.
func (g *Generator) Generate(regs []registration.Registration) (*GeneratedFile, error) {
	if g.config.PackageName == "" {
		return nil, errors.New("package name is required")
	}

	aliases, imports := g.imports(regs)
	qualify := func(scope string) string { return aliases[scope] }

	data := &templateData{
		PackageName:      g.config.PackageName,
		Runtime:          aliases[g.config.RuntimePkg],
		Imports:          imports,
		GenerateComments: g.config.GenerateComments,
		Calls:            make([]callData, 0, len(regs)),
	}

	for _, reg := range regs {
		call := callData{
			Type:     reg.TypeRef(qualify),
			Override: reg.Override,
			Members:  make([]string, 0, len(reg.Members)),
		}
		for _, m := range reg.Members {
			call.Members = append(call.Members, reg.Ref(m, qualify))
		}

		data.Calls = append(data.Calls, call)
	}

	var buf bytes.Buffer
	if err := registrationTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		if g.config.OutputDir != "" {
			_ = writeDebugUnformatted(g.config.OutputDir, g.config.Filename, buf.Bytes())
		}

		return &GeneratedFile{
			Dir:      g.config.OutputDir,
			Filename: g.config.Filename,
			Content:  buf.Bytes(),
		}, fmt.Errorf("formatting code: %w", err)
	}

	return &GeneratedFile{
		Dir:      g.config.OutputDir,
		Filename: g.config.Filename,
		Content:  formatted,
	}, nil
}

// imports assigns an alias to the runtime package and to every non-global
// scope. Aliases derive from the package name (the last path element when the
// name is unknown) and are allocated in import path order so they are stable.
// They never collide with each other, with "builder", or with identifiers the
// file references unqualified. An import is written with an explicit alias
// whenever the alias is not what the compiler would infer from the path.
func (g *Generator) imports(regs []registration.Registration) (map[string]string, []importSpec) {
	used := map[string]bool{"builder": true}
	names := make(map[string]string)

	var scopes []string

	for _, reg := range regs {
		if reg.IsGlobal() {
			used[reg.Name] = true
			for _, m := range reg.Members {
				used[m] = true
			}

			continue
		}

		if reg.Scope != g.config.RuntimePkg && !slices.Contains(scopes, reg.Scope) {
			scopes = append(scopes, reg.Scope)
		}

		if names[reg.Scope] == "" {
			names[reg.Scope] = reg.PkgName
		}
	}

	slices.Sort(scopes)

	aliases := make(map[string]string, len(scopes)+1)
	imports := make([]importSpec, 0, len(scopes)+1)

	for _, p := range append([]string{g.config.RuntimePkg}, scopes...) {
		name := names[p]
		if name == "" {
			name = path.Base(p)
		}

		base := common.PkgAlias(name)

		alias := base
		for i := 2; used[alias]; i++ {
			alias = fmt.Sprintf("%s%d", base, i)
		}

		used[alias] = true
		aliases[p] = alias

		spec := importSpec{Path: p}
		if alias != name || name != path.Base(p) {
			spec.Alias = alias
		}

		imports = append(imports, spec)
	}

	slices.SortFunc(imports, func(a, b importSpec) int {
		return strings.Compare(a.Path, b.Path)
	})

	return aliases, imports
}

// Template for the registration file

var registrationTemplate = template.Must(template.New("registration").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(`// Code generated by pgenum-generator. DO NOT EDIT.

package {{.PackageName}}

import (
{{range .Imports}}	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{end}})
{{if .GenerateComments}}
// MapPostgresEnums maps every enum marked with the pgenum:enum directive on builder.
{{- end}}
func MapPostgresEnums(builder *{{.Runtime}}.DataSourceBuilder) *{{.Runtime}}.DataSourceBuilder {
{{- range .Calls}}
	{{$.Runtime}}.MapEnum[{{.Type}}](builder, []{{.Type}}{ {{- join .Members ", " -}} }
	{{- if .Override}}, {{$.Runtime}}.WithName({{printf "%q" .Override}}){{end}})
{{- end}}
	return builder
}
{{if .GenerateComments}}
// RegisterPostgresEnums declares every enum marked with the pgenum:enum directive on builder.
{{- end}}
func RegisterPostgresEnums(builder *{{.Runtime}}.ModelBuilder) {
{{- range .Calls}}
	{{$.Runtime}}.HasPostgresEnum[{{.Type}}](builder, []{{.Type}}{ {{- join .Members ", " -}} }
	{{- if .Override}}, {{$.Runtime}}.WithName({{printf "%q" .Override}}){{end}})
{{- end}}
}
`))
