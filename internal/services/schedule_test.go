package services

import (
	"reflect"
	"testing"
	"time"

	"marketplace-app/subscription-service/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsDateActive_OneOff(t *testing.T) {
	rule := models.RecurrenceRule{
		RepeatUnit: 0,
		StartDates: []string{"2021-07-26"},
	}

	start := day(2021, 7, 26)
	for offset := -30; offset <= 30; offset++ {
		candidate := start.AddDate(0, 0, offset)
		got := IsDateActive(rule, candidate)
		want := offset == 0
		if got != want {
			t.Errorf("IsDateActive(one-off, %s) = %v, want %v", candidate.Format("2006-01-02"), got, want)
		}
	}
}

func TestIsDateActive_BiWeekly(t *testing.T) {
	// Якорь — понедельник 26 июля 2021, каждые 2 недели.
	rule := models.RecurrenceRule{
		RepeatType: RepeatWeek,
		RepeatUnit: 2,
		StartDates: []string{"2021-07-26"},
		Schedule:   BuildWeekdaySchedule([]string{"2021-07-26"}),
	}

	active := []time.Time{day(2021, 7, 26), day(2021, 8, 9), day(2021, 8, 23)}
	for _, d := range active {
		if !IsDateActive(rule, d) {
			t.Errorf("IsDateActive(biweekly, %s) = false, want true", d.Format("2006-01-02"))
		}
	}

	inactive := []time.Time{
		day(2021, 8, 2),
		day(2021, 8, 16),
		day(2021, 7, 19), // до якоря
		day(2021, 8, 10), // вторник
	}
	for _, d := range inactive {
		if IsDateActive(rule, d) {
			t.Errorf("IsDateActive(biweekly, %s) = true, want false", d.Format("2006-01-02"))
		}
	}
}

func TestIsDateActive_SecondWednesday(t *testing.T) {
	rule := models.RecurrenceRule{
		RepeatType: "2-wed",
		RepeatUnit: 1,
		StartDates: []string{"2024-01-01"},
	}

	var got []string
	for d := day(2024, 1, 1); d.Month() == time.January; d = d.AddDate(0, 0, 1) {
		if IsDateActive(rule, d) {
			got = append(got, d.Format("2006-01-02"))
		}
	}

	want := []string{"2024-01-10"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("active dates for 2-wed over January 2024 = %v, want %v", got, want)
	}
}

func TestIsDateActive_Monthly(t *testing.T) {
	// Каждый месяц в ту же неделю-день: среда 2021-09-01.
	rule := models.RecurrenceRule{
		RepeatType: RepeatMonth,
		RepeatUnit: 1,
		StartDates: []string{"2021-09-01"},
		Schedule:   BuildWeekdaySchedule([]string{"2021-09-01"}),
	}

	if !IsDateActive(rule, day(2021, 10, 6)) { // среда, +1 месяц
		t.Error("expected 2021-10-06 active for monthly rule")
	}
	if IsDateActive(rule, day(2021, 10, 7)) { // четверг
		t.Error("expected 2021-10-07 inactive for monthly rule")
	}
}

func TestIsDateActive_DegradesToInactive(t *testing.T) {
	cases := []struct {
		name string
		rule models.RecurrenceRule
	}{
		{"negative unit", models.RecurrenceRule{RepeatType: RepeatWeek, RepeatUnit: -1, StartDates: []string{"2021-07-26"}, Schedule: BuildWeekdaySchedule([]string{"2021-07-26"})}},
		{"malformed token", models.RecurrenceRule{RepeatType: "2-xyz", RepeatUnit: 1, StartDates: []string{"2021-07-26"}}},
		{"nth out of range", models.RecurrenceRule{RepeatType: "9-wed", RepeatUnit: 1, StartDates: []string{"2021-07-26"}}},
		{"no start dates", models.RecurrenceRule{RepeatType: RepeatWeek, RepeatUnit: 1}},
		{"broken anchor", models.RecurrenceRule{RepeatType: RepeatWeek, RepeatUnit: 1, StartDates: []string{"not-a-date"}}},
	}

	for _, tc := range cases {
		for offset := 0; offset <= 30; offset++ {
			d := day(2021, 7, 26).AddDate(0, 0, offset)
			if IsDateActive(tc.rule, d) {
				t.Errorf("%s: IsDateActive(%s) = true, want false", tc.name, d.Format("2006-01-02"))
			}
		}
	}
}

func TestDatesBetween_Weekly(t *testing.T) {
	// Понедельник и среда каждую неделю.
	starts := []string{"2025-06-02", "2025-06-04"}
	rule := models.RecurrenceRule{
		RepeatType: RepeatWeek,
		RepeatUnit: 1,
		StartDates: starts,
		Schedule:   BuildWeekdaySchedule(starts),
	}

	got := DatesBetween(rule, day(2025, 6, 1), day(2025, 6, 10))
	want := []string{
		"2025-06-02", // понедельник
		"2025-06-04", // среда
		"2025-06-09", // понедельник
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DatesBetween = %v, want %v", got, want)
	}
}

func TestUpcomingDates_ResolvesOverrides(t *testing.T) {
	rule := models.RecurrenceRule{
		RepeatType: RepeatWeek,
		RepeatUnit: 1,
		StartDates: []string{"2021-09-22"},
		Schedule:   BuildWeekdaySchedule([]string{"2021-09-22"}),
		OverrideDates: map[string]string{
			"2021-09-22": "2021-09-23",
		},
	}

	got := UpcomingDates(rule, day(2021, 9, 22), 14)
	want := []ScheduledDate{
		{DateString: "2021-09-23", Original: "2021-09-22"},
		{DateString: "2021-09-29", Original: "2021-09-29"},
		{DateString: "2021-10-06", Original: "2021-10-06"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("UpcomingDates = %v, want %v", got, want)
	}
}

func TestUpcomingDates_SkipsUnresolvedMarker(t *testing.T) {
	rule := models.RecurrenceRule{
		RepeatType: RepeatWeek,
		RepeatUnit: 1,
		StartDates: []string{"2021-09-22"},
		Schedule:   BuildWeekdaySchedule([]string{"2021-09-22"}),
		OverrideDates: map[string]string{
			"2021-09-29": UnresolvedOverride,
		},
	}

	got := UpcomingDates(rule, day(2021, 9, 22), 14)
	want := []ScheduledDate{
		{DateString: "2021-09-22", Original: "2021-09-22"},
		{DateString: "2021-10-06", Original: "2021-10-06"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("UpcomingDates = %v, want %v", got, want)
	}
}
