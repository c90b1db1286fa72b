// Package config loads the optional .pgenum.yaml project file.
//
// Example:
//
//	version: "1"
//	patterns: ["./..."]
//	tags: integration
//	runtime: pgenum-generator/pgenum
//	output:
//	  dir: ./internal/db
//	  package: db
//	  filename: pgenum_gen.go
//
// patterns and tags accept either a single string or a list.
package config
