package gen

import (
	"os"
	"path/filepath"
	"strings"
)

// writeDebugUnformatted writes unformatted code to a sidecar file next to the
// intended output. This is best-effort and should never make generation fail
// harder.
func writeDebugUnformatted(outDir, filename string, content []byte) error {
	if outDir == "" || filename == "" {
		return nil
	}

	if err := os.MkdirAll(outDir, dirPerm); err != nil {
		return err
	}

	return os.WriteFile(debugUnformattedPath(outDir, filename), content, filePerm)
}

// removeDebugUnformatted drops a sidecar left by an earlier failed run.
func removeDebugUnformatted(outDir, filename string) {
	_ = os.Remove(debugUnformattedPath(outDir, filename))
}

// The sidecar stays a .go file so editors can syntax highlight it, with a
// name that never collides with real output.
func debugUnformattedPath(outDir, filename string) string {
	return filepath.Join(outDir, strings.TrimSuffix(filename, ".go")+".unformatted.go")
}
