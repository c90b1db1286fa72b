package pipeline

import (
	"context"
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"pgenum-generator/internal/analyze"
	"pgenum-generator/internal/common"
	"pgenum-generator/internal/config"
	"pgenum-generator/internal/diagnostic"
	"pgenum-generator/internal/gen"
	"pgenum-generator/internal/registration"
)

// ErrInvalidEnums is returned when scanning or normalizing reported errors.
var ErrInvalidEnums = errors.New("invalid enum declarations")

// Options configures a generation pass.
type Options struct {
	// Dir is the directory patterns and Output.Dir are resolved against.
	Dir string
	// Patterns are Go package patterns; empty means ".".
	Patterns []string
	// Tags are build tags used while loading.
	Tags []string
	// Runtime is the import path of the runtime library.
	Runtime string
	// Output selects the output mode and file name.
	Output config.Output
	// Logger receives progress and diagnostics; nil means slog.Default().
	Logger *slog.Logger
}

// OptionsFromConfig builds Options from a loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Patterns: cfg.Patterns,
		Tags:     cfg.Tags,
		Runtime:  cfg.Runtime,
		Output:   cfg.Output,
	}
}

// Result is the outcome of a pass.
type Result struct {
	// Catalog holds everything the scanner found.
	Catalog *analyze.Catalog
	// Diagnostics from scanning and normalizing.
	Diagnostics diagnostic.Diagnostics
	// Registrations per generated file path.
	Registrations map[string][]registration.Registration
	// Files are the rendered files, in package order.
	Files []*gen.GeneratedFile
	// Written lists the files that changed on disk (Run only).
	Written []string
}

// Run renders registration files and writes the ones that changed.
func Run(ctx context.Context, opts Options) (*Result, error) {
	res, err := Render(ctx, opts)
	if err != nil {
		return res, err
	}

	res.Written, err = gen.WriteFiles(res.Files)
	if err != nil {
		return res, err
	}

	logger := opts.logger()
	for _, p := range res.Written {
		logger.Info("wrote file", slog.String("path", p))
	}

	logger.Info("generation complete",
		slog.Int("enums", len(res.Catalog.Enums())),
		slog.Int("files", len(res.Files)),
		slog.Int("written", len(res.Written)))

	return res, nil
}

// Check renders registration files without writing them and returns the
// paths that are missing or out of date.
func Check(ctx context.Context, opts Options) ([]string, error) {
	res, err := Render(ctx, opts)
	if err != nil {
		return nil, err
	}

	return gen.StaleFiles(res.Files)
}

// Render scans, normalizes and renders without touching the file system.
func Render(ctx context.Context, opts Options) (*Result, error) {
	logger := opts.logger()
	filename := opts.filename()

	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = []string{config.DefaultPattern}
	}

	logger.Debug("loading packages", slog.Any("patterns", patterns), slog.Any("tags", opts.Tags))

	analyzer := analyze.NewAnalyzer(analyze.Config{
		Context:           ctx,
		Dir:               opts.Dir,
		Tags:              opts.Tags,
		GeneratedFilename: filename,
	})

	catalog, err := analyzer.LoadPackages(patterns...)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Catalog:       catalog,
		Registrations: make(map[string][]registration.Registration),
	}
	res.Diagnostics.Merge(catalog.Diagnostics)

	var jobs []job
	if opts.Output.Consolidated() {
		j, err := opts.consolidatedJob(catalog, &res.Diagnostics)
		if err != nil {
			return res, err
		}

		jobs = append(jobs, j)
	} else {
		jobs = opts.perPackageJobs(catalog, &res.Diagnostics)
	}

	logDiagnostics(logger, res.Diagnostics)

	if res.Diagnostics.HasErrors() {
		return res, fmt.Errorf("%w: %w", ErrInvalidEnums, res.Diagnostics.Error())
	}

	for _, j := range jobs {
		file, err := gen.NewGenerator(gen.GeneratorConfig{
			PackageName:      j.pkgName,
			OutputDir:        j.dir,
			Filename:         filename,
			RuntimePkg:       opts.Runtime,
			GenerateComments: true,
		}).Generate(j.regs)
		if err != nil {
			return res, fmt.Errorf("generating %s: %w", filepath.Join(j.dir, filename), err)
		}

		res.Files = append(res.Files, file)
		res.Registrations[file.Path()] = j.regs

		logger.Debug("rendered file", slog.String("path", file.Path()), slog.Int("enums", len(j.regs)))
	}

	return res, nil
}

// job is one file to render.
type job struct {
	dir     string
	pkgName string
	regs    []registration.Registration
}

// perPackageJobs renders into every package that declares enums, and into
// packages that still hold a generated file so it is emptied once the last
// marker is removed.
func (o Options) perPackageJobs(catalog *analyze.Catalog, diags *diagnostic.Diagnostics) []job {
	var jobs []job

	for _, pkg := range catalog.Packages {
		if pkg.Dir == "" {
			continue
		}

		if len(pkg.Enums) == 0 && !exists(filepath.Join(pkg.Dir, o.filename())) {
			continue
		}

		regs, d := registration.Normalize(pkg.Enums, pkg.Path)
		diags.Merge(d)

		jobs = append(jobs, job{dir: pkg.Dir, pkgName: pkg.Name, regs: regs})
	}

	return jobs
}

// consolidatedJob renders every enum into Output.Dir. Enums declared in the
// package living there are referenced unqualified.
func (o Options) consolidatedJob(catalog *analyze.Catalog, diags *diagnostic.Diagnostics) (job, error) {
	dir := o.Output.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(o.Dir, dir)
	}

	dir, err := filepath.Abs(dir)
	if err != nil {
		return job{}, fmt.Errorf("resolving output dir: %w", err)
	}

	var targetPath string

	pkgName := o.Output.Package
	if target := catalog.PackageInDir(dir); target != nil {
		if pkgName != "" && pkgName != target.Name {
			return job{}, fmt.Errorf("output package %q does not match package %q in %s", pkgName, target.Name, dir)
		}

		targetPath = target.Path
		pkgName = target.Name
	} else {
		existing, err := packageClause(dir, o.filename())
		if err != nil {
			return job{}, err
		}

		if existing != "" && pkgName != "" && pkgName != existing {
			return job{}, fmt.Errorf("output package %q does not match package %q in %s", pkgName, existing, dir)
		}

		if existing != "" {
			pkgName = existing
		}
	}

	if pkgName == "" {
		pkgName = common.PkgAlias(filepath.Base(dir))
	}

	regs, d := registration.Normalize(catalog.Enums(), targetPath)
	diags.Merge(d)

	return job{dir: dir, pkgName: pkgName, regs: regs}, nil
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}

	return o.Logger
}

func (o Options) filename() string {
	if o.Output.Filename == "" {
		return config.DefaultFilename
	}

	return o.Output.Filename
}

func logDiagnostics(logger *slog.Logger, diags diagnostic.Diagnostics) {
	for _, d := range diags.All() {
		attrs := []any{
			slog.String("code", d.Code),
			slog.String("type", d.Type),
			slog.String("pos", d.Position),
		}

		switch d.Severity {
		case diagnostic.DiagnosticError:
			logger.Error(d.Message, attrs...)
		case diagnostic.DiagnosticWarning:
			logger.Warn(d.Message, attrs...)
		default:
			logger.Debug(d.Message, attrs...)
		}
	}
}

// packageClause returns the package declared by the non-test Go files already
// in dir, ignoring the generator's own output. Empty means there are none.
func packageClause(dir, generated string) (string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("reading output dir: %w", err)
	}

	fset := token.NewFileSet()

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".go" || strings.HasSuffix(name, "_test.go") || name == generated {
			continue
		}

		f, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.PackageClauseOnly)
		if err != nil {
			return "", fmt.Errorf("reading package clause: %w", err)
		}

		return f.Name.Name, nil
	}

	return "", nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
