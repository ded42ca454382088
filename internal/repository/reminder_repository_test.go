package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockRepository wires the repository to a sqlmock-backed postgres
// dialector so the guarded UPDATE statements can be asserted at the SQL
// level.
func newMockRepository(t *testing.T) (ReminderRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err)

	return NewReminderRepository(gormDB), mock
}

func TestMarkSentGuardsOnUnsentState(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`UPDATE "reminders" SET .*"sent".* WHERE .*id = .* AND sent = .*"deleted_at" IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	changed, err := repo.MarkSent("2b1f9c3e-5f27-4d2a-9f10-6f3a1c2d4e5f")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkSentReportsNoopWhenAlreadySent(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`UPDATE "reminders" SET .*"sent".*`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err := repo.MarkSent("2b1f9c3e-5f27-4d2a-9f10-6f3a1c2d4e5f")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelGuardsOnSentAndCompleted(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`UPDATE "reminders" SET .*"is_active".* WHERE .*sent = .* AND is_completed = .*`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err := repo.Cancel("2b1f9c3e-5f27-4d2a-9f10-6f3a1c2d4e5f")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteSetsSentAndCompleted(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`UPDATE "reminders" SET .* WHERE .*is_completed = .* AND is_active = .*`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	changed, err := repo.Complete("2b1f9c3e-5f27-4d2a-9f10-6f3a1c2d4e5f")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteGuardsOnCancelledState(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`UPDATE "reminders" SET .* WHERE .*is_completed = .* AND is_active = .*`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err := repo.Complete("2b1f9c3e-5f27-4d2a-9f10-6f3a1c2d4e5f")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDuePendingExcludesCancelled(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT .* FROM "reminders" WHERE .*is_active = .* AND is_completed = .* AND \(reminder_datetime <= .* OR sent = .*\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	due, err := repo.DuePending(time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC), 100)
	require.NoError(t, err)
	assert.Empty(t, due)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTimeGuardsOnScheduledState(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`UPDATE "reminders" SET .*"reminder_datetime".* WHERE .*sent = .* AND is_completed = .* AND is_active = .*`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err := repo.UpdateTime("2b1f9c3e-5f27-4d2a-9f10-6f3a1c2d4e5f", time.Date(2025, 6, 12, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindMainMatchesExactInstant(t *testing.T) {
	repo, mock := newMockRepository(t)

	at := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "task_id", "reminder_datetime", "is_snooze"}).
		AddRow("2b1f9c3e-5f27-4d2a-9f10-6f3a1c2d4e5f", "7c4d8e2a-1b3f-4a5c-8d9e-0f1a2b3c4d5e", at, false)

	mock.ExpectQuery(`SELECT .* FROM "reminders" WHERE .*task_id = .* AND reminder_datetime = .* AND is_snooze = .*`).
		WillReturnRows(rows)

	reminder, err := repo.FindMain("7c4d8e2a-1b3f-4a5c-8d9e-0f1a2b3c4d5e", at)
	require.NoError(t, err)
	assert.False(t, reminder.IsSnooze)
	assert.True(t, reminder.ReminderDatetime.Equal(at))
	assert.NoError(t, mock.ExpectationsWereMet())
}
