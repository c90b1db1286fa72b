package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostics(t *testing.T) {
	var d Diagnostics
	assert.True(t, d.IsValid())
	assert.NoError(t, d.Error())

	d.AddWarning(CodeNumericLabels, "labels fall back to numbers", "app/days.Level", "days.go:10:6")
	assert.True(t, d.IsValid())

	var other Diagnostics
	other.AddError(CodeNotEnum, "not an enum", "app/days.Point", "days.go:20:6")
	other.AddInfo(CodeDuplicate, "seen twice", "", "")
	d.Merge(other)

	assert.True(t, d.HasErrors())
	require.Len(t, d.All(), 3)
	assert.Equal(t, DiagnosticError, d.All()[0].Severity)

	err := d.Error()
	require.Error(t, err)
	assert.Equal(t, "days.go:20:6 [app/days.Point]: [not-enum] not an enum", err.Error())
}

func TestDiagnostic_String(t *testing.T) {
	assert.Equal(t, "[duplicate] seen twice", Diagnostic{Code: CodeDuplicate, Message: "seen twice"}.String())
	assert.Equal(t, "plain", Diagnostic{Message: "plain"}.String())
}

func TestDiagnosticSeverity_String(t *testing.T) {
	assert.Equal(t, "info", DiagnosticInfo.String())
	assert.Equal(t, "warning", DiagnosticWarning.String())
	assert.Equal(t, "error", DiagnosticError.String())
	assert.Equal(t, "unknown", DiagnosticSeverity(9).String())
}
