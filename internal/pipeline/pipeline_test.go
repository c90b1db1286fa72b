package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgenum-generator/internal/analyze"
	"pgenum-generator/internal/config"
	"pgenum-generator/internal/diagnostic"
)

const colorsSrc = `package colors

//pgenum:enum
type Color string

const (
	Red   Color = "red"
	Green Color = "green"
)
`

const dbSrc = `package db

//pgenum:enum name=order_status
type status int

const (
	pending status = iota
	shipped
)
`

// rtSrc is a stand-in runtime with the signatures generated code calls.
const rtSrc = `package rt

type DataSourceBuilder struct{}

type ModelBuilder struct{}

type Option func()

func WithName(string) Option { return nil }

func MapEnum[E any](b *DataSourceBuilder, _ []E, _ ...Option) *DataSourceBuilder { return b }

func HasPostgresEnum[E any](*ModelBuilder, []E, ...Option) {}
`

const modelsSrc = `package model

//pgenum:enum
type Color string

const Red Color = "red"
`

// writeModule lays out a throwaway module and returns its root.
func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	files["go.mod"] = "module example.com/app\n\ngo 1.24\n"
	files["rt/rt.go"] = rtSrc

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	return root
}

func testOptions(root string) Options {
	return Options{
		Dir:      root,
		Patterns: []string{"./..."},
		Runtime:  "example.com/app/rt",
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(content)
}

func TestRun_PerPackage(t *testing.T) {
	root := writeModule(t, map[string]string{
		"colors/colors.go": colorsSrc,
		"plain/plain.go":   "package plain\n\nconst X = 1\n",
	})
	opts := testOptions(root)
	want := filepath.Join(root, "colors", "pgenum_gen.go")

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)

	require.Len(t, res.Files, 1)
	assert.Equal(t, want, res.Files[0].Path())
	assert.Equal(t, []string{want}, res.Written)
	assert.Len(t, res.Registrations[want], 1)

	content := readFile(t, want)
	assert.Contains(t, content, "package colors\n")
	assert.Contains(t, content, "rt.MapEnum[Color](builder, []Color{Red, Green})")
	assert.Contains(t, content, "rt.HasPostgresEnum[Color](builder, []Color{Red, Green})")
	assert.NoFileExists(t, filepath.Join(root, "plain", "pgenum_gen.go"))

	res, err = Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Empty(t, res.Written)
}

func TestRun_PerPackageEmptiesFileWhenMarkerRemoved(t *testing.T) {
	root := writeModule(t, map[string]string{"colors/colors.go": colorsSrc})
	opts := testOptions(root)

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	unmarked := "package colors\n\ntype Color string\n\nconst Red Color = \"red\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "colors", "colors.go"), []byte(unmarked), 0o644))

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, res.Written, 1)

	content := readFile(t, res.Written[0])
	assert.Contains(t, content, "func MapPostgresEnums(builder *rt.DataSourceBuilder) *rt.DataSourceBuilder {\n\treturn builder\n}")
	assert.NotContains(t, content, "MapEnum[")
}

func TestRun_Consolidated(t *testing.T) {
	root := writeModule(t, map[string]string{
		"colors/colors.go": colorsSrc,
		"db/db.go":         dbSrc,
	})
	opts := testOptions(root)
	opts.Output = config.Output{Dir: "db"}

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, res.Files, 1)

	path := filepath.Join(root, "db", config.DefaultFilename)
	assert.Equal(t, path, res.Files[0].Path())

	content := readFile(t, path)
	assert.Contains(t, content, "package db\n")
	assert.Contains(t, content, "\t\"example.com/app/colors\"\n")
	assert.Contains(t, content, "rt.MapEnum[colors.Color](builder, []colors.Color{colors.Red, colors.Green})\n"+
		"\trt.MapEnum[status](builder, []status{pending, shipped}, rt.WithName(\"order_status\"))\n")

	require.Len(t, res.Diagnostics.Warnings, 1)
	assert.Equal(t, diagnostic.CodeNumericLabels, res.Diagnostics.Warnings[0].Code)
}

func TestRun_ConsolidatedOutputCompiles(t *testing.T) {
	root := writeModule(t, map[string]string{
		"models/colors.go": modelsSrc,
		"colors/colors.go": colorsSrc,
	})
	opts := testOptions(root)
	opts.Output = config.Output{Dir: "out", Package: "out"}

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	content := readFile(t, filepath.Join(root, "out", config.DefaultFilename))
	assert.Contains(t, content, "\tmodel \"example.com/app/models\"\n")
	assert.Contains(t, content, "rt.MapEnum[model.Color](builder, []model.Color{model.Red})")

	_, err = analyze.NewAnalyzer(analyze.Config{Dir: root}).LoadPackages("./out")
	require.NoError(t, err, "generated package must compile")
}

func TestRun_ConsolidatedUsesExistingPackageClause(t *testing.T) {
	root := writeModule(t, map[string]string{
		"colors/colors.go": colorsSrc,
		"out/storage.go":   "package storage\n",
	})
	opts := testOptions(root)
	opts.Patterns = []string{"./colors"}
	opts.Output = config.Output{Dir: "out"}

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	content := readFile(t, filepath.Join(root, "out", config.DefaultFilename))
	assert.Contains(t, content, "package storage\n")

	opts.Output.Package = "out"

	_, err = Run(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `output package "out" does not match package "storage"`)
}

func TestRun_ConsolidatedUnexportedAborts(t *testing.T) {
	root := writeModule(t, map[string]string{
		"colors/colors.go": colorsSrc,
		"db/db.go":         dbSrc,
	})
	opts := testOptions(root)
	opts.Output = config.Output{Dir: "out", Package: "out"}

	res, err := Run(context.Background(), opts)
	require.ErrorIs(t, err, ErrInvalidEnums)
	assert.Contains(t, err.Error(), diagnostic.CodeUnexportedReference)
	assert.Empty(t, res.Files)
	assert.NoDirExists(t, filepath.Join(root, "out"))
}

func TestRun_ConsolidatedPackageMismatch(t *testing.T) {
	root := writeModule(t, map[string]string{"db/db.go": dbSrc})
	opts := testOptions(root)
	opts.Output = config.Output{Dir: "db", Package: "storage"}

	_, err := Run(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `output package "storage" does not match package "db"`)
}

func TestRun_ConsolidatedEmpty(t *testing.T) {
	root := writeModule(t, map[string]string{"plain/plain.go": "package plain\n"})
	opts := testOptions(root)
	opts.Output = config.Output{Dir: "internal/enums"}

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, res.Files, 1)

	content := readFile(t, filepath.Join(root, "internal", "enums", config.DefaultFilename))
	assert.Contains(t, content, "package enums\n")
	assert.Contains(t, content, "func RegisterPostgresEnums(builder *rt.ModelBuilder) {\n}\n")
}

func TestCheck(t *testing.T) {
	root := writeModule(t, map[string]string{"colors/colors.go": colorsSrc})
	opts := testOptions(root)

	stale, err := Check(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "colors", "pgenum_gen.go")}, stale)

	_, err = Run(context.Background(), opts)
	require.NoError(t, err)

	stale, err = Check(context.Background(), opts)
	require.NoError(t, err)
	assert.Empty(t, stale)
}

func TestCheck_ExampleIsUpToDate(t *testing.T) {
	stale, err := Check(context.Background(), Options{
		Dir:      filepath.Join("..", ".."),
		Patterns: []string{"./examples/days"},
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	assert.Empty(t, stale, "examples/days/pgenum_gen.go is out of date; run pgenum-generator gen ./examples/days")
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Tags = config.StringOrArray{"integration"}

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, []string{"."}, opts.Patterns)
	assert.Equal(t, []string{"integration"}, opts.Tags)
	assert.Equal(t, config.DefaultRuntime, opts.Runtime)
	assert.Equal(t, config.DefaultFilename, opts.Output.Filename)
}
