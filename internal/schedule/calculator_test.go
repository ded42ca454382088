package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskmint/reminder-api/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func baseTask() *models.Task {
	return &models.Task{
		Title:    "Write report",
		DueDate:  date(2025, 6, 10),
		Time:     "09:00",
		Priority: models.PriorityMedium,
	}
}

func TestComputeOccurrences_InitialOnly(t *testing.T) {
	task := baseTask()
	ref := time.Date(2025, 6, 7, 12, 0, 0, 0, time.UTC)

	occs := ComputeOccurrences(task, ref)

	require.Len(t, occs, 1)
	assert.Equal(t, KindInitial, occs[0].Kind)
	assert.Equal(t, time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC), occs[0].At)
}

func TestComputeOccurrences_InitialIncludedEvenWhenPast(t *testing.T) {
	task := baseTask()
	ref := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)

	occs := ComputeOccurrences(task, ref)

	require.Len(t, occs, 1)
	assert.Equal(t, KindInitial, occs[0].Kind)
}

func TestComputeOccurrences_SnoozeOrderAndTimes(t *testing.T) {
	// Task due in 3 days with snooze offsets [30,10]: main plus two snoozes,
	// largest lead time first.
	ref := time.Date(2025, 6, 7, 9, 0, 0, 0, time.UTC)
	task := baseTask()
	task.SnoozeTimes = models.IntList{30, 10}

	occs := ComputeOccurrences(task, ref)

	require.Len(t, occs, 3)
	due := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, KindInitial, occs[0].Kind)
	assert.Equal(t, due, occs[0].At)

	assert.Equal(t, KindSnooze, occs[1].Kind)
	assert.Equal(t, 30, occs[1].SnoozeMinutes)
	assert.Equal(t, due.Add(-30*time.Minute), occs[1].At)

	assert.Equal(t, KindSnooze, occs[2].Kind)
	assert.Equal(t, 10, occs[2].SnoozeMinutes)
	assert.Equal(t, due.Add(-10*time.Minute), occs[2].At)
}

func TestComputeOccurrences_SnoozeOffsetsSortedAndDeduped(t *testing.T) {
	ref := time.Date(2025, 6, 7, 9, 0, 0, 0, time.UTC)
	task := baseTask()
	task.SnoozeTimes = models.IntList{10, 90, 10, 30, -5}

	occs := ComputeOccurrences(task, ref)

	require.Len(t, occs, 4)
	assert.Equal(t, 90, occs[1].SnoozeMinutes)
	assert.Equal(t, 30, occs[2].SnoozeMinutes)
	assert.Equal(t, 10, occs[3].SnoozeMinutes)
}

func TestComputeOccurrences_SnoozeInPastDropped(t *testing.T) {
	// 20 minutes before the due instant: the 30m snooze already passed,
	// the 10m one has not.
	task := baseTask()
	task.SnoozeTimes = models.IntList{30, 10}
	ref := time.Date(2025, 6, 10, 8, 40, 0, 0, time.UTC)

	occs := ComputeOccurrences(task, ref)

	require.Len(t, occs, 2)
	assert.Equal(t, KindInitial, occs[0].Kind)
	assert.Equal(t, 10, occs[1].SnoozeMinutes)
}

func TestComputeOccurrences_DailyReminder(t *testing.T) {
	// Due 2025-06-10, today 2025-06-07 at 00:00: dates 7..10 at 09:00, minus
	// the initial timestamp, leaves three daily occurrences.
	task := baseTask()
	task.DailyReminder = true
	ref := time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)

	occs := ComputeOccurrences(task, ref)

	require.Len(t, occs, 4)
	assert.Equal(t, KindInitial, occs[0].Kind)

	var dailies []Occurrence
	for _, o := range occs[1:] {
		assert.Equal(t, KindDaily, o.Kind)
		dailies = append(dailies, o)
	}
	require.Len(t, dailies, 3)
	assert.Equal(t, time.Date(2025, 6, 7, 9, 0, 0, 0, time.UTC), dailies[0].At)
	assert.Equal(t, time.Date(2025, 6, 8, 9, 0, 0, 0, time.UTC), dailies[1].At)
	assert.Equal(t, time.Date(2025, 6, 9, 9, 0, 0, 0, time.UTC), dailies[2].At)
}

func TestComputeOccurrences_DailySkipsTodayWhenTimePassed(t *testing.T) {
	task := baseTask()
	task.DailyReminder = true
	// 10:00 today: today's 09:00 slot is already past.
	ref := time.Date(2025, 6, 7, 10, 0, 0, 0, time.UTC)

	occs := ComputeOccurrences(task, ref)

	require.Len(t, occs, 3)
	assert.Equal(t, time.Date(2025, 6, 8, 9, 0, 0, 0, time.UTC), occs[1].At)
	assert.Equal(t, time.Date(2025, 6, 9, 9, 0, 0, 0, time.UTC), occs[2].At)
}

func TestComputeOccurrences_DailyCountProperty(t *testing.T) {
	// Dates from today through due_date inclusive, minus one for the initial
	// occurrence falling inside the range.
	task := baseTask()
	task.DailyReminder = true
	ref := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	occs := ComputeOccurrences(task, ref)

	nonSnooze := 0
	for _, o := range occs {
		if !o.IsSnooze() {
			nonSnooze++
		}
	}
	// 10 dates (June 1..10), one of which coincides with the initial.
	assert.Equal(t, 10, nonSnooze)
}

func TestComputeOccurrences_WeeklyRecurring(t *testing.T) {
	// Due D: exactly five occurrences at D+7..D+35 in addition to the
	// initial one.
	task := baseTask()
	task.IsRecurring = true
	task.RecurrencePattern = models.RecurrenceWeekly
	ref := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	occs := ComputeOccurrences(task, ref)

	require.Len(t, occs, 6)
	due := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	for i := 1; i <= 5; i++ {
		assert.Equal(t, KindRecurring, occs[i].Kind)
		assert.Equal(t, due.Add(time.Duration(i)*7*24*time.Hour), occs[i].At)
	}
}

func TestComputeOccurrences_MonthlyUsesFixedThirtyDayStep(t *testing.T) {
	task := baseTask()
	task.IsRecurring = true
	task.RecurrencePattern = models.RecurrenceMonthly
	ref := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	occs := ComputeOccurrences(task, ref)

	require.Len(t, occs, 6)
	due := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, due.Add(30*24*time.Hour), occs[1].At)
}

func TestComputeOccurrences_UnknownPatternIgnored(t *testing.T) {
	task := baseTask()
	task.IsRecurring = true
	task.RecurrencePattern = "fortnightly"
	ref := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	occs := ComputeOccurrences(task, ref)

	require.Len(t, occs, 1)
	assert.Equal(t, KindInitial, occs[0].Kind)
}

func TestComputeOccurrences_DailyTakesPrecedenceOverRecurring(t *testing.T) {
	task := baseTask()
	task.DailyReminder = true
	task.IsRecurring = true
	task.RecurrencePattern = models.RecurrenceWeekly
	ref := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

	occs := ComputeOccurrences(task, ref)

	for _, o := range occs {
		assert.NotEqual(t, KindRecurring, o.Kind)
	}
}

func TestComputeOccurrences_RecurringStepsStrictlyIncrease(t *testing.T) {
	task := baseTask()
	task.IsRecurring = true
	task.RecurrencePattern = models.RecurrenceDaily
	ref := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	occs := ComputeOccurrences(task, ref)

	require.Len(t, occs, 6)
	for i := 2; i < len(occs); i++ {
		assert.Equal(t, 24*time.Hour, occs[i].At.Sub(occs[i-1].At))
	}
}

func TestComputeOccurrences_Deterministic(t *testing.T) {
	task := baseTask()
	task.DailyReminder = true
	task.SnoozeTimes = models.IntList{15, 5}
	ref := time.Date(2025, 6, 5, 3, 0, 0, 0, time.UTC)

	first := ComputeOccurrences(task, ref)
	second := ComputeOccurrences(task, ref)

	assert.Equal(t, first, second)
}
