// Package fiscal converts between calendar dates and fiscal periods for
// clients whose fiscal year starts in an arbitrary calendar month. Fiscal
// month 1 always corresponds to the configured start month; fiscal year Y
// begins on the first day of the start month in calendar year Y.
package fiscal

import (
	"time"

	"hoaledger/internal/core"
)

// DefaultStartMonth is used when a client has no fiscal configuration:
// the fiscal year coincides with the calendar year.
const DefaultStartMonth = 1

// normalizeStart falls back to January for out-of-range start months.
// Unlike penalty settings, the start month is safely defaultable.
func normalizeStart(startMonth int) int {
	if startMonth < 1 || startMonth > 12 {
		return DefaultStartMonth
	}
	return startMonth
}

// Year returns the fiscal year containing date. Months before the start
// month belong to the tail of the previous fiscal year.
func Year(date time.Time, startMonth int) int {
	startMonth = normalizeStart(startMonth)
	if int(date.Month()) >= startMonth {
		return date.Year()
	}
	return date.Year() - 1
}

// YearBounds returns the first and last calendar day of a fiscal year.
func YearBounds(fiscalYear, startMonth int) (start, end time.Time) {
	startMonth = normalizeStart(startMonth)
	start = time.Date(fiscalYear, time.Month(startMonth), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(1, 0, -1)
	return start, end
}

// ToCalendarMonth maps a fiscal month (1-12) to its calendar month (1-12).
func ToCalendarMonth(fiscalMonth, startMonth int) int {
	startMonth = normalizeStart(startMonth)
	return (fiscalMonth-1+startMonth-1)%12 + 1
}

// ToFiscalMonth is the inverse of ToCalendarMonth:
// ToFiscalMonth(ToCalendarMonth(m, s), s) == m for all m, s in 1..12.
func ToFiscalMonth(calendarMonth, startMonth int) int {
	startMonth = normalizeStart(startMonth)
	return (calendarMonth-startMonth+12)%12 + 1
}

// Quarter returns the fiscal quarter (1-4) of a fiscal month, grouping
// months 1-3, 4-6, 7-9 and 10-12.
func Quarter(fiscalMonth int) int {
	return (fiscalMonth + 2) / 3
}

// QuarterFirstMonth returns the first fiscal month of a fiscal quarter.
func QuarterFirstMonth(quarter int) int {
	return (quarter-1)*3 + 1
}

// CalendarYearOf returns the calendar year a fiscal month of a fiscal year
// falls in. Fiscal months that map to calendar months before the start
// month belong to the following calendar year.
func CalendarYearOf(fiscalYear, fiscalMonth, startMonth int) int {
	startMonth = normalizeStart(startMonth)
	if startMonth > 1 && ToCalendarMonth(fiscalMonth, startMonth) < startMonth {
		return fiscalYear + 1
	}
	return fiscalYear
}

// MonthDueDate is the default due date of a fiscal month: the first
// calendar day of the month it maps to. Stored due dates, when present,
// take precedence over this rule.
func MonthDueDate(fiscalYear, fiscalMonth, startMonth int) time.Time {
	calMonth := ToCalendarMonth(fiscalMonth, startMonth)
	calYear := CalendarYearOf(fiscalYear, fiscalMonth, startMonth)
	return time.Date(calYear, time.Month(calMonth), 1, 0, 0, 0, 0, time.UTC)
}

// YearsInRange lists, in ascending order, the fiscal years overlapping the
// inclusive date range. Collectors fan out one store read per listed year.
func YearsInRange(from, to time.Time, startMonth int) []int {
	from, to = core.DateOnly(from), core.DateOnly(to)
	if to.Before(from) {
		return nil
	}
	first := Year(from, startMonth)
	last := Year(to, startMonth)
	years := make([]int, 0, last-first+1)
	for y := first; y <= last; y++ {
		years = append(years, y)
	}
	return years
}
