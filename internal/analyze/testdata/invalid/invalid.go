// Package invalid holds markers the analyzer must reject.
package invalid

//pgenum:enum
type Point struct {
	X, Y int
}

//pgenum:enum
type Alias = int

//pgenum:enum
type Set[T comparable] map[T]struct{}

//pgenum:enum
type Ratio float64

//pgenum:enum
type Handle uintptr

//pgenum:enum
type Valid string
