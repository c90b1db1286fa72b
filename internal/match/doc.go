// Package match provides edit-distance helpers used to suggest the intended
// spelling of directives and marker arguments.
package match
