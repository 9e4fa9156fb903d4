package plan

import (
	"fmt"
	"sort"
	"time"
)

const daysPerWeek = 7

// DateFor maps a plan-relative (weekNumber, dayOfWeek) position to a calendar
// date. Weeks always align to Monday: the anchor is the plan start advanced by
// weekNumber whole weeks and then snapped back to the Monday of that calendar
// week, so day 1 of any week is a Monday regardless of which weekday the plan
// started on. dayOfWeek uses Monday=1 ... Sunday=7.
func DateFor(start time.Time, weekNumber, dayOfWeek int) time.Time {
	anchor := start.AddDate(0, 0, weekNumber*daysPerWeek)
	offset := int(time.Monday - anchor.Weekday())
	if offset > 0 {
		// Sunday is weekday 0, snap back six days instead of forward one.
		offset = -6
	}
	monday := anchor.AddDate(0, 0, offset)
	return monday.AddDate(0, 0, dayOfWeek-1)
}

// CurrentWeek returns the 1-based week the plan is in at the given time,
// measured in whole weeks elapsed since the start date. Times before the
// start clamp to week 1.
func CurrentWeek(start, now time.Time) int {
	days := int(now.Sub(start).Hours() / 24)
	week := days/daysPerWeek + 1
	if week < 1 {
		return 1
	}
	return week
}

// ScheduledWorkout is a planned workout annotated with its calendar position.
type ScheduledWorkout struct {
	Workout
	Date    time.Time `json:"date"`
	IsToday bool      `json:"is_today"`
}

// WeekSchedule groups one plan week's workouts in day order. StartDate is the
// week's Monday and EndDate the Sunday six days later.
type WeekSchedule struct {
	WeekNumber int                `json:"week_number"`
	StartDate  time.Time          `json:"start_date"`
	EndDate    time.Time          `json:"end_date"`
	IsCurrent  bool               `json:"is_current"`
	Workouts   []ScheduledWorkout `json:"workouts"`
}

// Schedule lays out the whole plan on the calendar, grouped by week and
// ordered by day within each week.
func Schedule(p Plan, now time.Time) []WeekSchedule {
	byWeek := make(map[int][]ScheduledWorkout)
	for _, w := range p.Workouts {
		date := DateFor(p.StartDate, w.WeekNumber, w.DayOfWeek)
		byWeek[w.WeekNumber] = append(byWeek[w.WeekNumber], ScheduledWorkout{
			Workout: w,
			Date:    date,
			IsToday: sameDate(date, now),
		})
	}

	current := CurrentWeek(p.StartDate, now)
	weeks := make([]WeekSchedule, 0, len(byWeek))
	for weekNumber, workouts := range byWeek {
		sort.Slice(workouts, func(i, j int) bool {
			return workouts[i].DayOfWeek < workouts[j].DayOfWeek
		})
		monday := DateFor(p.StartDate, weekNumber, 1)
		weeks = append(weeks, WeekSchedule{
			WeekNumber: weekNumber,
			StartDate:  monday,
			EndDate:    monday.AddDate(0, 0, daysPerWeek-1),
			IsCurrent:  weekNumber == current,
			Workouts:   workouts,
		})
	}
	sort.Slice(weeks, func(i, j int) bool {
		return weeks[i].WeekNumber < weeks[j].WeekNumber
	})
	return weeks
}

// Upcoming returns the workouts scheduled within the next horizonDays days,
// today included, soonest first.
func Upcoming(p Plan, now time.Time, horizonDays int) []ScheduledWorkout {
	today := truncateToDate(now)
	horizon := today.AddDate(0, 0, horizonDays)
	var upcoming []ScheduledWorkout
	for _, w := range p.Workouts {
		date := DateFor(p.StartDate, w.WeekNumber, w.DayOfWeek)
		if date.Before(today) || date.After(horizon) {
			continue
		}
		upcoming = append(upcoming, ScheduledWorkout{
			Workout: w,
			Date:    date,
			IsToday: sameDate(date, now),
		})
	}
	sort.Slice(upcoming, func(i, j int) bool {
		if !upcoming[i].Date.Equal(upcoming[j].Date) {
			return upcoming[i].Date.Before(upcoming[j].Date)
		}
		return upcoming[i].WeekNumber < upcoming[j].WeekNumber
	})
	return upcoming
}

// Reschedule moves a workout to a new calendar date by recomputing both its
// week number and weekday from the target date. The date must land inside
// the plan's calendar span.
func Reschedule(p Plan, w Workout, target time.Time) (Workout, error) {
	target = truncateToDate(target)
	firstMonday := DateFor(p.StartDate, 1, 1)
	lastSunday := DateFor(p.StartDate, p.TotalWeeks, daysPerWeek)
	if target.Before(firstMonday) || target.After(lastSunday) {
		return Workout{}, fmt.Errorf("date %s outside plan weeks %s to %s",
			target.Format(time.DateOnly), firstMonday.Format(time.DateOnly), lastSunday.Format(time.DateOnly))
	}

	days := int(target.Sub(firstMonday).Hours() / 24)
	w.WeekNumber = days/daysPerWeek + 1
	w.DayOfWeek = days%daysPerWeek + 1
	return w, nil
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
