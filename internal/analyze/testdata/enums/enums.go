// Package enums holds marked enums used by the analyzer tests.
package enums

import "strconv"

//pgenum:enum
type Directions string

const (
	North Directions = "north"
	East  Directions = "east"
	South Directions = "south"
	West  Directions = "west"
)

// DaysOfWeek is a stringer-backed integer enum.
//
//pgenum:enum name=DoW
type DaysOfWeek int

const (
	Monday DaysOfWeek = iota
	Tuesday
	Wednesday
	_
	Friday
)

func (d DaysOfWeek) String() string {
	return "day" + strconv.Itoa(int(d))
}

type (
	// Unmarked is not registered.
	Unmarked int

	//pgenum:enum name="order_status" schema=app
	orderStatus uint8
)

const (
	orderPending orderStatus = iota + 1
	orderShipped
)

// Priority has no String method.
//
//pgenum:enum
type Priority int16

const (
	Low  Priority = 1
	High Priority = 9
	// Urgent is an alias of High.
	Urgent = High
)

const untyped = 3

func local() {
	//pgenum:enum
	type scratch int

	_ = scratch(untyped)
}
