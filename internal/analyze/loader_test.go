package analyze

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"

	"pgenum-generator/internal/diagnostic"
)

const (
	enumsPkg   = "pgenum-generator/internal/analyze/testdata/enums"
	invalidPkg = "pgenum-generator/internal/analyze/testdata/invalid"
	typosPkg   = "pgenum-generator/internal/analyze/testdata/typos"
)

func loadEnums(t *testing.T) *Catalog {
	t.Helper()

	analyzer := NewAnalyzer(Config{GeneratedFilename: "pgenum_gen.go"})
	catalog, err := analyzer.LoadPackages("./testdata/enums")
	require.NoError(t, err)
	require.Len(t, catalog.Packages, 1)

	return catalog
}

func TestAnalyzer_LoadPackages(t *testing.T) {
	catalog := loadEnums(t)

	pkg := catalog.Packages[0]
	assert.Equal(t, enumsPkg, pkg.Path)
	assert.Equal(t, "enums", pkg.Name)
	assert.Equal(t, "enums", filepath.Base(pkg.Dir))

	var names []string
	for _, e := range catalog.Enums() {
		names = append(names, e.ID.Name)
	}

	assert.Equal(t, []string{"Directions", "DaysOfWeek", "orderStatus", "Priority", "Empty"}, names,
		"enums are reported in discovery order")
}

func TestAnalyzer_EnumDetails(t *testing.T) {
	enums := loadEnums(t).Enums()
	require.Len(t, enums, 5)

	directions := enums[0]
	assert.Equal(t, TypeID{PkgPath: enumsPkg, Name: "Directions"}, directions.ID)
	assert.Equal(t, EnumKindString, directions.Kind)
	assert.False(t, directions.Marker.HasName())
	assert.Equal(t, []string{"North", "East", "South", "West"}, directions.Members)
	assert.True(t, directions.Exported())
	assert.Equal(t, "directions", directions.PGName(nil))

	days := enums[1]
	assert.Equal(t, EnumKindSigned, days.Kind)
	assert.Equal(t, "DoW", days.Marker.Name)
	assert.Equal(t, "DoW", days.PGName(nil))
	assert.True(t, days.HasStringer)
	assert.Equal(t, []string{"Monday", "Tuesday", "Wednesday", "Friday", "Sunday"}, days.Members,
		"members follow file order and skip blank identifiers")

	status := enums[2]
	assert.Equal(t, EnumKindUnsigned, status.Kind)
	assert.Equal(t, "order_status", status.Marker.Name)
	assert.Equal(t, []string{"schema=app"}, status.Marker.Ignored)
	assert.False(t, status.Exported())
	assert.Equal(t, []string{"orderPending", "orderShipped"}, status.Members)

	priority := enums[3]
	assert.False(t, priority.HasStringer)
	assert.Equal(t, []string{"Low", "High", "Urgent"}, priority.Members)
	assert.Equal(t, "enums.go", filepath.Base(priority.Position.Filename))

	empty := enums[4]
	assert.Empty(t, empty.Members)
	assert.Equal(t, "more.go", filepath.Base(empty.Position.Filename))
}

func TestAnalyzer_Warnings(t *testing.T) {
	catalog := loadEnums(t)

	assert.True(t, catalog.Diagnostics.IsValid())

	var codes []string
	for _, w := range catalog.Diagnostics.Warnings {
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []string{
		diagnostic.CodeMarkerArgs,
		diagnostic.CodeNumericLabels,
		diagnostic.CodeNumericLabels,
		diagnostic.CodeLocalType,
	}, codes)
	assert.Equal(t, enumsPkg+".scratch", catalog.Diagnostics.Warnings[3].Type)
}

func TestAnalyzer_GeneratedFileReducedToPackageClause(t *testing.T) {
	a := NewAnalyzer(Config{GeneratedFilename: "pgenum_gen.go"})

	overlay, err := a.generatedOverlay(&packages.Config{}, []string{"./testdata/enums", "./testdata/invalid"})
	require.NoError(t, err)
	require.Len(t, overlay, 1)

	for file, content := range overlay {
		assert.True(t, filepath.IsAbs(file))
		assert.Equal(t, "pgenum_gen.go", filepath.Base(file))
		assert.Equal(t, "package enums\n", string(content))
	}

	overlay, err = NewAnalyzer(Config{}).generatedOverlay(&packages.Config{}, []string{"./testdata/enums"})
	require.NoError(t, err)
	assert.Nil(t, overlay)
}

func TestAnalyzer_StaleGeneratedFileFailsWhenUnnamed(t *testing.T) {
	analyzer := NewAnalyzer(Config{})
	_, err := analyzer.LoadPackages("./testdata/enums")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Removed")
}

func TestAnalyzer_InvalidTargets(t *testing.T) {
	analyzer := NewAnalyzer(Config{})
	catalog, err := analyzer.LoadPackages("./testdata/invalid")
	require.NoError(t, err)

	enums := catalog.Enums()
	require.Len(t, enums, 1)
	assert.Equal(t, "Valid", enums[0].ID.Name)

	require.Len(t, catalog.Diagnostics.Errors, 5)

	var types []string
	for _, e := range catalog.Diagnostics.Errors {
		assert.Equal(t, diagnostic.CodeNotEnum, e.Code)
		types = append(types, e.Type)
	}

	assert.Equal(t, []string{
		invalidPkg + ".Point",
		invalidPkg + ".Alias",
		invalidPkg + ".Set",
		invalidPkg + ".Ratio",
		invalidPkg + ".Handle",
	}, types)
}

func TestAnalyzer_NearMisses(t *testing.T) {
	analyzer := NewAnalyzer(Config{})
	catalog, err := analyzer.LoadPackages("./testdata/typos")
	require.NoError(t, err)

	enums := catalog.Enums()
	require.Len(t, enums, 1)
	assert.Equal(t, "Misspelled", enums[0].ID.Name)
	assert.False(t, enums[0].Marker.HasName())

	warnings := catalog.Diagnostics.Warnings
	require.Len(t, warnings, 3)

	assert.Equal(t, diagnostic.CodeMarkerTypo, warnings[0].Code)
	assert.Equal(t, typosPkg+".Spaced", warnings[0].Type)
	assert.Equal(t, diagnostic.CodeMarkerTypo, warnings[1].Code)
	assert.Equal(t, typosPkg+".Plural", warnings[1].Type)
	assert.Equal(t, diagnostic.CodeMarkerArgs, warnings[2].Code)
	assert.Contains(t, warnings[2].Message, "did you mean name?")
}

func TestAnalyzer_MissingPackage(t *testing.T) {
	analyzer := NewAnalyzer(Config{})
	_, err := analyzer.LoadPackages("./testdata/missing")
	require.Error(t, err)
}

func TestCatalog_PackageInDir(t *testing.T) {
	catalog := loadEnums(t)

	dir := catalog.Packages[0].Dir
	assert.Same(t, catalog.Packages[0], catalog.PackageInDir(dir+string(filepath.Separator)))
	assert.Nil(t, catalog.PackageInDir(filepath.Dir(dir)))
}

func TestInGeneratedFile(t *testing.T) {
	a := NewAnalyzer(Config{GeneratedFilename: "pgenum_gen.go"})

	assert.True(t, a.inGeneratedFile("/src/app/pgenum_gen.go:6:9"))
	assert.False(t, a.inGeneratedFile("/src/app/days.go:6:9"))
	assert.False(t, a.inGeneratedFile(""))
	assert.False(t, NewAnalyzer(Config{}).inGeneratedFile("/src/app/pgenum_gen.go:6:9"))
}

func TestTypeID_String(t *testing.T) {
	id := TypeID{PkgPath: "pgenum-generator/examples/days", Name: "DaysOfWeek"}
	assert.Equal(t, "pgenum-generator/examples/days.DaysOfWeek", id.String())

	// Empty package path
	idNoPkg := TypeID{Name: "DaysOfWeek"}
	assert.Equal(t, "DaysOfWeek", idNoPkg.String())
}

func TestEnumKind_String(t *testing.T) {
	assert.Equal(t, "string", EnumKindString.String())
	assert.Equal(t, "signed", EnumKindSigned.String())
	assert.Equal(t, "unsigned", EnumKindUnsigned.String())
	assert.Equal(t, "invalid", EnumKindInvalid.String())
	assert.Equal(t, "EnumKind(7)", EnumKind(7).String())
}
