package enums

// Sunday is declared away from the other members.
const Sunday DaysOfWeek = 6

//pgenum:enum
type Empty string
