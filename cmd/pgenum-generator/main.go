// Package main provides the CLI entrypoint for pgenum-generator.
//
// pgenum-generator scans Go packages for types marked with the
// //pgenum:enum directive and emits registration helpers that map them on
// the pgenum data source builder and declare them on the model builder.
//
// Commands: gen | check | list | watch
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "pgenum-generator:", err)
		os.Exit(1)
	}
}
