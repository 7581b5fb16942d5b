package calendar

import (
	"time"

	"github.com/praxisdesk/practice-api/internal/model"
)

// Working hours shown in the day view, inclusive on both ends.
const (
	DayStartHour = 8
	DayEndHour   = 22
)

// Service derives calendar grids from a reference date. It holds no
// state and never reads the wall clock; callers supply the reference.
type Service struct {
	weekStart time.Weekday
}

// NewService returns a calendar service whose month grids begin weeks
// on weekStart. Week grids take their own start day per call, since
// the month and week views historically disagreed on it.
func NewService(weekStart time.Weekday) *Service {
	return &Service{weekStart: weekStart}
}

func (s *Service) WeekStart() time.Weekday {
	return s.weekStart
}

// daysBack returns how many days before d the most recent occurrence
// of start falls, in [0,6].
func daysBack(d time.Time, start time.Weekday) int {
	return (int(d.Weekday()) - int(start) + 7) % 7
}

// MonthGrid returns the cells of a month calendar for the month
// containing ref. The grid starts on the week day configured at
// construction, covers every day of the month, and is padded with
// leading and trailing days from the adjacent months so its length is
// always a multiple of seven.
func (s *Service) MonthGrid(ref model.ISODate) []model.DayCell {
	t := ref.Time()
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	gridStart := first.AddDate(0, 0, -daysBack(first, s.weekStart))
	gridEnd := last.AddDate(0, 0, 6-daysBack(last, s.weekStart))

	cells := make([]model.DayCell, 0, 42)
	for d := gridStart; !d.After(gridEnd); d = d.AddDate(0, 0, 1) {
		cells = append(cells, model.DayCell{
			Date:    model.NewISODate(d),
			InMonth: d.Month() == t.Month(),
		})
	}
	return cells
}

// WeekGrid returns the seven days of the week containing ref, starting
// on weekStart.
func (s *Service) WeekGrid(ref model.ISODate, weekStart time.Weekday) []model.DayCell {
	t := ref.Time()
	start := t.AddDate(0, 0, -daysBack(t, weekStart))

	cells := make([]model.DayCell, 7)
	for i := range cells {
		d := start.AddDate(0, 0, i)
		cells[i] = model.DayCell{Date: model.NewISODate(d), InMonth: true}
	}
	return cells
}

// DayHours returns the hour labels of the day view, "08:00" through
// "22:00".
func (s *Service) DayHours() []model.HourMinute {
	hours := make([]model.HourMinute, 0, DayEndHour-DayStartHour+1)
	for h := DayStartHour; h <= DayEndHour; h++ {
		hours = append(hours, model.HourOnTheHour(h))
	}
	return hours
}

// AppointmentsOn filters appointments to those falling on date,
// preserving input order.
func AppointmentsOn(appointments []*model.Appointment, date model.ISODate) []*model.Appointment {
	var out []*model.Appointment
	for _, a := range appointments {
		if a.Date == date {
			out = append(out, a)
		}
	}
	return out
}

// AppointmentsAt filters appointments to those starting within the
// given hour on date. An appointment at 09:30 belongs to the 09:00
// slot.
func AppointmentsAt(appointments []*model.Appointment, date model.ISODate, hour model.HourMinute) []*model.Appointment {
	var out []*model.Appointment
	for _, a := range appointments {
		if a.Date == date && a.Time.Hour() == hour.Hour() {
			out = append(out, a)
		}
	}
	return out
}

// MonthView buckets appointments into a month grid.
func (s *Service) MonthView(ref model.ISODate, appointments []*model.Appointment) []model.CalendarDay {
	cells := s.MonthGrid(ref)
	days := make([]model.CalendarDay, len(cells))
	for i, c := range cells {
		days[i] = model.CalendarDay{
			DayCell:      c,
			Appointments: AppointmentsOn(appointments, c.Date),
		}
	}
	return days
}

// WeekView buckets appointments into a week grid.
func (s *Service) WeekView(ref model.ISODate, weekStart time.Weekday, appointments []*model.Appointment) []model.CalendarDay {
	cells := s.WeekGrid(ref, weekStart)
	days := make([]model.CalendarDay, len(cells))
	for i, c := range cells {
		days[i] = model.CalendarDay{
			DayCell:      c,
			Appointments: AppointmentsOn(appointments, c.Date),
		}
	}
	return days
}

// DayView buckets appointments on ref into hour slots.
func (s *Service) DayView(ref model.ISODate, appointments []*model.Appointment) []model.HourSlot {
	hours := s.DayHours()
	slots := make([]model.HourSlot, len(hours))
	for i, h := range hours {
		slots[i] = model.HourSlot{
			Hour:         h,
			Appointments: AppointmentsAt(appointments, ref, h),
		}
	}
	return slots
}
