package pgenum

import (
	"strconv"
	"strings"
)

// Directive marks an enum type declaration for registration.
// It is written as a line comment with no space after the slashes.
const Directive = "pgenum:enum"

// Marker is a parsed Directive comment.
type Marker struct {
	// Name overrides the PostgreSQL type name. Empty means the default
	// naming convention applies.
	Name string
	// Ignored lists arguments that were not understood.
	Ignored []string
}

// HasName reports whether the marker carries a name override.
func (m Marker) HasName() bool {
	return m.Name != ""
}

// ParseMarker parses a single comment line. It reports false when the
// comment is not the directive. Malformed arguments never fail parsing; they
// are recorded in Ignored and the marker falls back to the default name.
func ParseMarker(comment string) (Marker, bool) {
	text, ok := strings.CutPrefix(comment, "//")
	if !ok {
		return Marker{}, false
	}

	rest, ok := strings.CutPrefix(text, Directive)
	if !ok {
		return Marker{}, false
	}

	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		// e.g. //pgenum:enumeration
		return Marker{}, false
	}

	var m Marker

	for key, value := range parseArgs(rest, &m.Ignored) {
		switch key {
		case "name":
			m.Name = value
		default:
			m.Ignored = append(m.Ignored, key+"="+value)
		}
	}

	return m, true
}

// parseArgs splits "k=v k2=\"quoted v\"" into key/value pairs, in order.
// Tokens that are not key=value pairs are appended to ignored.
func parseArgs(s string, ignored *[]string) func(yield func(string, string) bool) {
	return func(yield func(string, string) bool) {
		for s = strings.TrimSpace(s); s != ""; s = strings.TrimSpace(s) {
			end := strings.IndexAny(s, " \t=")
			if end < 0 || s[end] != '=' {
				if end < 0 {
					end = len(s)
				}

				*ignored = append(*ignored, s[:end])
				s = s[end:]

				continue
			}

			key := s[:end]
			s = s[end+1:]

			var value string

			if strings.HasPrefix(s, `"`) || strings.HasPrefix(s, "`") {
				quoted, err := strconv.QuotedPrefix(s)
				if err != nil {
					*ignored = append(*ignored, key+"="+s)
					return
				}

				value, _ = strconv.Unquote(quoted)
				s = s[len(quoted):]
			} else {
				stop := strings.IndexAny(s, " \t")
				if stop < 0 {
					stop = len(s)
				}

				value = s[:stop]
				s = s[stop:]
			}

			if !yield(key, value) {
				return
			}
		}
	}
}
