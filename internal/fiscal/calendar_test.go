package fiscal

import (
	"testing"
	"time"
)

func TestYear(t *testing.T) {
	tests := []struct {
		name       string
		date       time.Time
		startMonth int
		want       int
	}{
		{
			name:       "january start is calendar year",
			date:       time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
			startMonth: 1,
			want:       2025,
		},
		{
			name:       "month at start belongs to new fiscal year",
			date:       time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			startMonth: 7,
			want:       2025,
		},
		{
			name:       "month before start is previous fiscal year tail",
			date:       time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
			startMonth: 7,
			want:       2024,
		},
		{
			name:       "december with february start",
			date:       time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
			startMonth: 2,
			want:       2025,
		},
		{
			name:       "january with february start",
			date:       time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
			startMonth: 2,
			want:       2024,
		},
		{
			name:       "invalid start month falls back to january",
			date:       time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
			startMonth: 0,
			want:       2025,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Year(tt.date, tt.startMonth); got != tt.want {
				t.Errorf("Year(%v, %d) = %d, want %d", tt.date, tt.startMonth, got, tt.want)
			}
		})
	}
}

func TestYearBounds(t *testing.T) {
	start, end := YearBounds(2025, 7)
	wantStart := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}
	if !end.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", end, wantEnd)
	}

	start, end = YearBounds(2025, 1)
	if !start.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("calendar-year start = %v", start)
	}
	if !end.Equal(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("calendar-year end = %v", end)
	}
}

// The month conversion must round-trip for every combination of fiscal
// month and start month.
func TestMonthConversionRoundTrip(t *testing.T) {
	for s := 1; s <= 12; s++ {
		for m := 1; m <= 12; m++ {
			cal := ToCalendarMonth(m, s)
			if cal < 1 || cal > 12 {
				t.Fatalf("ToCalendarMonth(%d, %d) = %d out of range", m, s, cal)
			}
			if got := ToFiscalMonth(cal, s); got != m {
				t.Errorf("ToFiscalMonth(ToCalendarMonth(%d, %d)=%d, %d) = %d, want %d",
					m, s, cal, s, got, m)
			}
		}
	}
}

func TestToCalendarMonth(t *testing.T) {
	tests := []struct {
		fiscalMonth, startMonth, want int
	}{
		{1, 1, 1},
		{12, 1, 12},
		{1, 7, 7},
		{6, 7, 12},
		{7, 7, 1},
		{12, 7, 6},
	}
	for _, tt := range tests {
		if got := ToCalendarMonth(tt.fiscalMonth, tt.startMonth); got != tt.want {
			t.Errorf("ToCalendarMonth(%d, %d) = %d, want %d",
				tt.fiscalMonth, tt.startMonth, got, tt.want)
		}
	}
}

func TestQuarter(t *testing.T) {
	wantByMonth := map[int]int{
		1: 1, 2: 1, 3: 1,
		4: 2, 5: 2, 6: 2,
		7: 3, 8: 3, 9: 3,
		10: 4, 11: 4, 12: 4,
	}
	for m, want := range wantByMonth {
		if got := Quarter(m); got != want {
			t.Errorf("Quarter(%d) = %d, want %d", m, got, want)
		}
	}
	for q := 1; q <= 4; q++ {
		if got := Quarter(QuarterFirstMonth(q)); got != q {
			t.Errorf("Quarter(QuarterFirstMonth(%d)) = %d", q, got)
		}
	}
}

func TestMonthDueDate(t *testing.T) {
	tests := []struct {
		name        string
		fiscalYear  int
		fiscalMonth int
		startMonth  int
		want        time.Time
	}{
		{
			name: "calendar fiscal year", fiscalYear: 2025, fiscalMonth: 3, startMonth: 1,
			want: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "first fiscal month of july start", fiscalYear: 2025, fiscalMonth: 1, startMonth: 7,
			want: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "fiscal month wrapping into next calendar year", fiscalYear: 2025, fiscalMonth: 8, startMonth: 7,
			want: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthDueDate(tt.fiscalYear, tt.fiscalMonth, tt.startMonth)
			if !got.Equal(tt.want) {
				t.Errorf("MonthDueDate(%d, %d, %d) = %v, want %v",
					tt.fiscalYear, tt.fiscalMonth, tt.startMonth, got, tt.want)
			}
		})
	}
}

func TestYearsInRange(t *testing.T) {
	tests := []struct {
		name       string
		from, to   time.Time
		startMonth int
		want       []int
	}{
		{
			name:       "single calendar year",
			from:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			to:         time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
			startMonth: 1,
			want:       []int{2025},
		},
		{
			name:       "calendar range spans two fiscal years with july start",
			from:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			to:         time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
			startMonth: 7,
			want:       []int{2024, 2025},
		},
		{
			name:       "inverted range yields nothing",
			from:       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			to:         time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			startMonth: 1,
			want:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := YearsInRange(tt.from, tt.to, tt.startMonth)
			if len(got) != len(tt.want) {
				t.Fatalf("YearsInRange() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("YearsInRange()[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}
