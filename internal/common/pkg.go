package common

import (
	"path"
	"strings"
	"unicode"
)

// UnknownStr is returned by String methods for values outside their enum.
const UnknownStr = "unknown"

// PkgAlias returns the package alias (last element of path) for a given package path.
// Returns empty string if pkgPath is empty. Characters that cannot appear in
// an identifier are dropped, and a leading digit is prefixed with "_".
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	base := path.Base(pkgPath)
	base = strings.TrimPrefix(base, "go-")
	base = strings.TrimSuffix(base, "-go")
	base = strings.TrimSuffix(base, ".go")

	alias := strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}

		return -1
	}, base)

	if alias == "" {
		return "pkg"
	}

	if unicode.IsDigit(rune(alias[0])) {
		alias = "_" + alias
	}

	return alias
}
