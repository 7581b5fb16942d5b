package calendar

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxisdesk/practice-api/internal/model"
)

func appt(date model.ISODate, at model.HourMinute) *model.Appointment {
	return &model.Appointment{
		Base: model.Base{ID: uuid.New()},
		Date: date,
		Time: at,
	}
}

func TestMonthGrid_LengthMultipleOfSeven(t *testing.T) {
	svc := NewService(time.Monday)

	months := []model.ISODate{
		"2025-01-15", "2025-02-10", "2025-06-01", "2025-12-31",
		"2024-02-29", // leap February
	}
	for _, ref := range months {
		cells := svc.MonthGrid(ref)
		assert.Equal(t, 0, len(cells)%7, "month grid for %s must be whole weeks", ref)
		assert.GreaterOrEqual(t, len(cells), 28)
		assert.LessOrEqual(t, len(cells), 42)
	}
}

func TestMonthGrid_EveryDayOfMonthOnce(t *testing.T) {
	svc := NewService(time.Monday)
	cells := svc.MonthGrid("2025-06-15")

	seen := map[model.ISODate]int{}
	inMonth := 0
	for _, c := range cells {
		if c.InMonth {
			inMonth++
			seen[c.Date]++
		}
	}
	assert.Equal(t, 30, inMonth)
	for d := model.ISODate("2025-06-01"); !d.OnOrAfter("2025-07-01"); d = d.AddDays(1) {
		assert.Equal(t, 1, seen[d], "day %s", d)
	}
}

func TestMonthGrid_StartsOnConfiguredWeekday(t *testing.T) {
	svc := NewService(time.Monday)
	cells := svc.MonthGrid("2025-06-15")

	require.NotEmpty(t, cells)
	assert.Equal(t, time.Monday, cells[0].Date.Time().Weekday())
	assert.Equal(t, time.Sunday, cells[len(cells)-1].Date.Time().Weekday())

	// June 2025 starts on a Sunday, so the grid leads with May days.
	assert.Equal(t, model.ISODate("2025-05-26"), cells[0].Date)
	assert.False(t, cells[0].InMonth)
}

func TestMonthGrid_MonthStartingOnWeekStart(t *testing.T) {
	// September 2025 starts on a Monday: no leading padding.
	svc := NewService(time.Monday)
	cells := svc.MonthGrid("2025-09-10")

	require.NotEmpty(t, cells)
	assert.Equal(t, model.ISODate("2025-09-01"), cells[0].Date)
	assert.True(t, cells[0].InMonth)
}

func TestMonthGrid_Contiguous(t *testing.T) {
	svc := NewService(time.Sunday)
	cells := svc.MonthGrid("2025-03-01")

	for i := 1; i < len(cells); i++ {
		assert.Equal(t, cells[i-1].Date.AddDays(1), cells[i].Date)
	}
}

func TestWeekGrid_SevenDaysContainingRef(t *testing.T) {
	svc := NewService(time.Monday)

	// 2025-06-18 is a Wednesday.
	cells := svc.WeekGrid("2025-06-18", time.Sunday)
	require.Len(t, cells, 7)
	assert.Equal(t, model.ISODate("2025-06-15"), cells[0].Date)
	assert.Equal(t, model.ISODate("2025-06-21"), cells[6].Date)

	found := false
	for _, c := range cells {
		if c.Date == "2025-06-18" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestWeekGrid_RefOnWeekStart(t *testing.T) {
	svc := NewService(time.Monday)

	// 2025-06-15 is a Sunday.
	cells := svc.WeekGrid("2025-06-15", time.Sunday)
	assert.Equal(t, model.ISODate("2025-06-15"), cells[0].Date)

	// With Monday starts the same Sunday is the last day of the
	// previous week.
	cells = svc.WeekGrid("2025-06-15", time.Monday)
	assert.Equal(t, model.ISODate("2025-06-09"), cells[0].Date)
	assert.Equal(t, model.ISODate("2025-06-15"), cells[6].Date)
}

func TestWeekGrid_CrossesMonthBoundary(t *testing.T) {
	svc := NewService(time.Monday)

	// 2025-07-01 is a Tuesday; a Sunday-start week reaches back into June.
	cells := svc.WeekGrid("2025-07-01", time.Sunday)
	assert.Equal(t, model.ISODate("2025-06-29"), cells[0].Date)
	assert.Equal(t, model.ISODate("2025-07-05"), cells[6].Date)
}

func TestDayHours(t *testing.T) {
	svc := NewService(time.Monday)
	hours := svc.DayHours()

	require.Len(t, hours, 15)
	assert.Equal(t, model.HourMinute("08:00"), hours[0])
	assert.Equal(t, model.HourMinute("22:00"), hours[len(hours)-1])
}

func TestAppointmentsOn(t *testing.T) {
	a := appt("2025-06-18", "09:00")
	b := appt("2025-06-18", "14:30")
	c := appt("2025-06-19", "09:00")
	all := []*model.Appointment{a, b, c}

	on := AppointmentsOn(all, "2025-06-18")
	require.Len(t, on, 2)
	assert.Equal(t, a.ID, on[0].ID)
	assert.Equal(t, b.ID, on[1].ID)

	assert.Empty(t, AppointmentsOn(all, "2025-06-20"))
}

func TestAppointmentsAt_BucketsByHour(t *testing.T) {
	a := appt("2025-06-18", "09:00")
	b := appt("2025-06-18", "09:30")
	c := appt("2025-06-18", "10:00")
	all := []*model.Appointment{a, b, c}

	at := AppointmentsAt(all, "2025-06-18", "09:00")
	require.Len(t, at, 2)
	assert.Equal(t, a.ID, at[0].ID)
	assert.Equal(t, b.ID, at[1].ID)
}

func TestDayView_EveryAppointmentInExactlyOneSlot(t *testing.T) {
	svc := NewService(time.Monday)
	day := model.ISODate("2025-06-18")
	all := []*model.Appointment{
		appt(day, "08:00"),
		appt(day, "09:15"),
		appt(day, "09:45"),
		appt(day, "22:00"),
		appt("2025-06-19", "09:00"),
	}

	slots := svc.DayView(day, all)
	require.Len(t, slots, 15)

	counts := map[uuid.UUID]int{}
	for _, slot := range slots {
		for _, a := range slot.Appointments {
			counts[a.ID]++
		}
	}
	assert.Len(t, counts, 4)
	for id, n := range counts {
		assert.Equal(t, 1, n, "appointment %s", id)
	}
}

func TestMonthView_BucketingMatchesFilter(t *testing.T) {
	svc := NewService(time.Monday)
	all := []*model.Appointment{
		appt("2025-06-02", "09:00"),
		appt("2025-06-02", "11:00"),
		appt("2025-06-30", "16:00"),
		appt("2025-05-31", "10:00"), // leading padding day
	}

	days := svc.MonthView("2025-06-15", all)
	for _, d := range days {
		want := AppointmentsOn(all, d.Date)
		assert.Equal(t, len(want), len(d.Appointments), "day %s", d.Date)
	}
}
