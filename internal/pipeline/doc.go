// Package pipeline wires the scanner, the normalizer and the emitter into a
// single generation pass.
//
// Two output modes are supported:
//   - per-package (default): a file next to the sources of every package that
//     declares marked enums, each enum referenced by its bare name
//   - consolidated: one file in Output.Dir for everything that was scanned
//
// Any error diagnostic aborts the pass before a single file is written.
package pipeline
