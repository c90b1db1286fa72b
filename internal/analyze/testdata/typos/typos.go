// Package typos holds near-miss markers.
package typos

// Spaced has a space after the slashes, which makes it a plain comment.
//
// pgenum:enum
type Spaced string

//pgenum:enums
type Plural int

//pgenum:enum nme=colour
type Misspelled string

// Plain mentions pgenum:enum in passing.
type Plain string
