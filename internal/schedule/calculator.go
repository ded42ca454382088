// Package schedule turns a task's due date, time-of-day, recurrence and
// snooze settings into the set of reminder occurrences it implies. It is
// pure: no clock reads, no I/O, deterministic for a given reference time.
package schedule

import (
	"sort"
	"time"

	"github.com/taskmint/reminder-api/internal/constants"
	"github.com/taskmint/reminder-api/internal/models"
)

// ComputeOccurrences derives every candidate occurrence for the task
// relative to ref. The result is ordered: each base occurrence is followed
// immediately by its snooze occurrences in descending offset order, so a
// caller creating records in sequence gets the largest lead time first.
//
// Rules:
//   - The initial occurrence (due date + time) is always present.
//   - daily_reminder emits one occurrence per calendar date from ref's date
//     through the due date at the task's time-of-day, skipping the one equal
//     to the initial occurrence and any not strictly after ref.
//   - Otherwise a recurring task steps forward from the due instant by the
//     pattern's fixed interval (monthly is a 30-day approximation) for
//     exactly RecurringOccurrenceCount iterations, keeping steps strictly
//     after ref. An unknown pattern contributes nothing; it is not an error.
//   - Every snooze offset produces one occurrence per base at base minus the
//     offset, kept only when strictly after ref.
func ComputeOccurrences(task *models.Task, ref time.Time) []Occurrence {
	ref = ref.UTC()
	dueAt := task.DueAt()

	bases := []Occurrence{{At: dueAt, Kind: KindInitial}}

	switch {
	case task.DailyReminder:
		bases = append(bases, dailyOccurrences(task, dueAt, ref)...)
	case task.IsRecurring && task.RecurrencePattern.Step() > 0:
		bases = append(bases, recurringOccurrences(task, dueAt, ref)...)
	}

	offsets := descendingOffsets(task.SnoozeTimes)

	out := make([]Occurrence, 0, len(bases)*(1+len(offsets)))
	for _, base := range bases {
		out = append(out, base)
		for _, minutes := range offsets {
			at := base.At.Add(-time.Duration(minutes) * time.Minute)
			if !at.After(ref) {
				continue
			}
			out = append(out, Occurrence{At: at, Kind: KindSnooze, SnoozeMinutes: minutes})
		}
	}
	return out
}

// dailyOccurrences walks each calendar date from ref's date through the due
// date inclusive. Dates before ref's date are silently skipped; dedup against
// reminders created on earlier days is the repository's job, not ours.
func dailyOccurrences(task *models.Task, dueAt, ref time.Time) []Occurrence {
	var out []Occurrence

	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	last := task.DueDate.UTC()
	last = time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC)

	for !day.After(last) {
		at := time.Date(day.Year(), day.Month(), day.Day(), dueAt.Hour(), dueAt.Minute(), 0, 0, time.UTC)
		day = day.AddDate(0, 0, 1)

		if at.Equal(dueAt) {
			continue
		}
		if !at.After(ref) {
			continue
		}
		out = append(out, Occurrence{At: at, Kind: KindDaily})
	}
	return out
}

func recurringOccurrences(task *models.Task, dueAt, ref time.Time) []Occurrence {
	step := task.RecurrencePattern.Step()

	var out []Occurrence
	at := dueAt
	for i := 0; i < constants.RecurringOccurrenceCount; i++ {
		at = at.Add(step)
		if !at.After(ref) {
			continue
		}
		out = append(out, Occurrence{At: at, Kind: KindRecurring})
	}
	return out
}

// descendingOffsets returns the positive snooze offsets sorted largest-first
// with duplicates removed.
func descendingOffsets(offsets models.IntList) []int {
	seen := make(map[int]struct{}, len(offsets))
	out := make([]int, 0, len(offsets))
	for _, m := range offsets {
		if m <= 0 {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}
