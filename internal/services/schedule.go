package services

import (
	"strconv"
	"strings"
	"time"

	"marketplace-app/subscription-service/internal/models"
)

const dateLayout = "2006-01-02"

// UnresolvedOverride — маркер переноса, для которого не нашлось свободной даты.
const UnresolvedOverride = "--"

const (
	// Окно материализации инстансов вперёд от "сегодня".
	MaterializeWindowDays = 14
	// Окно сверки с календарём доступности магазина/продукта.
	ConflictWindowDays = 45
)

const (
	RepeatDay   = "day"
	RepeatWeek  = "week"
	RepeatMonth = "month"
)

var weekdayTokens = map[string]time.Weekday{
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
	"sun": time.Sunday,
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}

// dateOnly срезает время суток: все сравнения делаются по календарным дням.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(dateOnly(to).Sub(dateOnly(from)).Hours() / 24)
}

func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

// parseNthWeekday разбирает составной токен "<n>-<wk>", например "2-wed".
func parseNthWeekday(token string) (int, time.Weekday, bool) {
	parts := strings.SplitN(token, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil || n < 1 || n > 5 {
		return 0, 0, false
	}
	wd, ok := weekdayTokens[parts[1]]
	if !ok {
		return 0, 0, false
	}
	return n, wd, true
}

// BuildWeekdaySchedule раскладывает стартовые даты по дням недели.
// Вызывается один раз при создании плана; кривые даты пропускаются.
func BuildWeekdaySchedule(startDates []string) models.WeekdaySchedule {
	var ws models.WeekdaySchedule
	for _, s := range startDates {
		d, err := parseDate(s)
		if err != nil {
			continue
		}
		if ws.Day(d.Weekday()) == nil {
			ws.SetDay(d.Weekday(), &models.ScheduleDay{StartDate: s})
		}
	}
	return ws
}

// IsDateActive решает, активна ли дата под правилом. Чистая функция, без I/O.
// Любая кривизна данных (битая дата, нулевой/отрицательный множитель,
// неразборчивый токен) трактуется как "не активна", а не как ошибка:
// пакетные джобы не должны падать из-за одного плана.
func IsDateActive(rule models.RecurrenceRule, candidate time.Time) bool {
	day := dateOnly(candidate)

	// Разовое расписание: активны только сами стартовые даты.
	if rule.RepeatUnit == 0 {
		ds := day.Format(dateLayout)
		for _, s := range rule.StartDates {
			if s == ds {
				return true
			}
		}
		return false
	}
	if rule.RepeatUnit < 0 || len(rule.StartDates) == 0 {
		return false
	}

	anchor, err := parseDate(rule.StartDates[0])
	if err != nil || day.Before(anchor) {
		return false
	}

	switch rule.RepeatType {
	case RepeatDay, RepeatWeek, RepeatMonth:
		entry := rule.Schedule.Day(day.Weekday())
		if entry == nil {
			return false
		}
		start, err := parseDate(entry.StartDate)
		if err != nil || day.Before(start) {
			return false
		}
		switch rule.RepeatType {
		case RepeatDay:
			return daysBetween(start, day)%rule.RepeatUnit == 0
		case RepeatWeek:
			d := daysBetween(start, day)
			if d%7 != 0 {
				return false
			}
			return (d/7)%rule.RepeatUnit == 0
		default: // month: разница в календарных месяцах, не в днях
			return monthsBetween(start, day)%rule.RepeatUnit == 0
		}
	default:
		// "<n>-<wk>": n-е вхождение дня недели в своём календарном месяце.
		n, wd, ok := parseNthWeekday(rule.RepeatType)
		if !ok || day.Weekday() != wd {
			return false
		}
		return (day.Day()-1)/7+1 == n
	}
}

// DatesBetween возвращает все активные даты в [start, end] включительно,
// в хронологическом порядке, строками YYYY-MM-DD.
func DatesBetween(rule models.RecurrenceRule, start, end time.Time) []string {
	var dates []string
	for d := dateOnly(start); !d.After(dateOnly(end)); d = d.AddDate(0, 0, 1) {
		if IsDateActive(rule, d) {
			dates = append(dates, d.Format(dateLayout))
		}
	}
	return dates
}

// ScheduledDate — эффективная дата плюс исходная (до переноса) дата.
type ScheduledDate struct {
	DateString string
	Original   string
}

// UpcomingDates — вариант генератора для материализатора: идёт на days дней
// вперёд от from и подставляет перенесённые даты из override_dates.
// Даты с маркером "--" (перенос не удался) не материализуются вовсе.
func UpcomingDates(rule models.RecurrenceRule, from time.Time, days int) []ScheduledDate {
	start := dateOnly(from)
	end := start.AddDate(0, 0, days)

	var out []ScheduledDate
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if !IsDateActive(rule, d) {
			continue
		}
		ds := d.Format(dateLayout)
		if target, ok := rule.OverrideDates[ds]; ok && target != "" {
			if target == UnresolvedOverride {
				continue
			}
			out = append(out, ScheduledDate{DateString: target, Original: ds})
			continue
		}
		out = append(out, ScheduledDate{DateString: ds, Original: ds})
	}
	return out
}
