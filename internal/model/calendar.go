package model

// DayCell is one slot of a calendar grid. Padding cells from adjacent
// months carry InMonth=false.
type DayCell struct {
	Date    ISODate `json:"date"`
	InMonth bool    `json:"in_month"`
}

// CalendarDay is a day cell with the appointments that fall on it.
type CalendarDay struct {
	DayCell
	Appointments []*Appointment `json:"appointments"`
}

// HourSlot is one row of the day view.
type HourSlot struct {
	Hour         HourMinute     `json:"hour"`
	Appointments []*Appointment `json:"appointments"`
}
