package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskmint/reminder-api/internal/models"
	"go.uber.org/zap"
)

type fakeAppender struct {
	args *redis.XAddArgs
	err  error
}

func (f *fakeAppender) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.args = a
	cmd := redis.NewStringCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal("1-0")
	}
	return cmd
}

type fakeIssuer struct {
	token string
	err   error
}

func (f *fakeIssuer) IssueToken(userID, email string) (string, error) {
	return f.token, f.err
}

func testReminder() *models.Reminder {
	return &models.Reminder{
		ID:               "d2f0b1a6-0000-0000-0000-000000000001",
		UserID:           "d2f0b1a6-0000-0000-0000-0000000000aa",
		TaskID:           "d2f0b1a6-0000-0000-0000-0000000000bb",
		Title:            "Reminder: Write report",
		ReminderDatetime: time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC),
		User:             models.User{Email: "user@example.com"},
		Task: models.Task{
			Priority:    models.PriorityHigh,
			SnoozeTimes: models.IntList{30, 10},
		},
	}
}

func TestPublish_BuildsFlatMessage(t *testing.T) {
	appender := &fakeAppender{}
	p := newPublisherWithAppender(appender, &fakeIssuer{token: "tok"}, zap.NewNop(), "reminders")

	ok := p.Publish(context.Background(), testReminder(), models.ActionCreated)

	require.True(t, ok)
	require.NotNil(t, appender.args)
	assert.Equal(t, "reminders", appender.args.Stream)

	values, ok := appender.args.Values.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Reminder: Write report", values["title"])
	assert.Equal(t, "2025-06-10T09:00:00Z", values["reminder_datetime"])
	assert.Equal(t, "1749546000", values["schedule_time"])
	assert.Equal(t, "created", values["action"])
	assert.Equal(t, "user@example.com", values["email"])
	assert.Equal(t, "false", values["sent"])
	assert.Equal(t, "false", values["is_snooze"])
	assert.Equal(t, "", values["snooze_minutes"])
	assert.Equal(t, "", values["snooze_display"])
	assert.Equal(t, "[30,10]", values["snooze_times"])
	assert.Equal(t, "high", values["priority"])
	assert.Equal(t, "tok", values["access_token"])
	assert.Equal(t, "false", values["is_completed"])
}

func TestPublish_SnoozeFields(t *testing.T) {
	appender := &fakeAppender{}
	p := newPublisherWithAppender(appender, &fakeIssuer{token: "tok"}, zap.NewNop(), "reminders")

	r := testReminder()
	r.IsSnooze = true
	r.SnoozeMinutes = 90

	require.True(t, p.Publish(context.Background(), r, models.ActionCreated))

	values := appender.args.Values.(map[string]interface{})
	assert.Equal(t, "true", values["is_snooze"])
	assert.Equal(t, "90", values["snooze_minutes"])
	assert.Equal(t, "1h 30m", values["snooze_display"])
}

func TestPublish_MissingDatetimeReturnsFalse(t *testing.T) {
	appender := &fakeAppender{}
	p := newPublisherWithAppender(appender, &fakeIssuer{token: "tok"}, zap.NewNop(), "reminders")

	r := testReminder()
	r.ReminderDatetime = time.Time{}

	assert.False(t, p.Publish(context.Background(), r, models.ActionCreated))
	assert.Nil(t, appender.args)
}

func TestPublish_NilReminderReturnsFalse(t *testing.T) {
	p := newPublisherWithAppender(&fakeAppender{}, &fakeIssuer{token: "tok"}, zap.NewNop(), "reminders")

	assert.False(t, p.Publish(context.Background(), nil, models.ActionCreated))
}

func TestPublish_TransportFailureReturnsFalse(t *testing.T) {
	appender := &fakeAppender{err: errors.New("connection refused")}
	p := newPublisherWithAppender(appender, &fakeIssuer{token: "tok"}, zap.NewNop(), "reminders")

	assert.False(t, p.Publish(context.Background(), testReminder(), models.ActionSent))
}

func TestPublish_TokenFailureReturnsFalse(t *testing.T) {
	appender := &fakeAppender{}
	p := newPublisherWithAppender(appender, &fakeIssuer{err: errors.New("no signer")}, zap.NewNop(), "reminders")

	assert.False(t, p.Publish(context.Background(), testReminder(), models.ActionCreated))
	assert.Nil(t, appender.args)
}
