// Package publisher emits reminder state transitions to the downstream
// dispatch stream. It is intentionally forgiving: a failed publish is logged
// and reported as false, never raised, because the reminder record in the
// database is the source of truth and can be re-published later.
package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/taskmint/reminder-api/internal/models"
	"github.com/taskmint/reminder-api/internal/utils"
	"go.uber.org/zap"
)

// Publisher emits one event per reminder state transition.
type Publisher interface {
	Publish(ctx context.Context, reminder *models.Reminder, action models.ReminderAction) bool
}

// streamAppender is the slice of the redis client the publisher needs.
type streamAppender interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisPublisher appends flat key-value messages to a redis stream.
type RedisPublisher struct {
	client streamAppender
	issuer utils.TokenIssuer
	logger *zap.Logger
	stream string
}

// NewRedisPublisher creates a publisher appending to the given stream.
func NewRedisPublisher(client *redis.Client, issuer utils.TokenIssuer, logger *zap.Logger, stream string) *RedisPublisher {
	return &RedisPublisher{client: client, issuer: issuer, logger: logger, stream: stream}
}

// newPublisherWithAppender exists for tests that stub the transport.
func newPublisherWithAppender(client streamAppender, issuer utils.TokenIssuer, logger *zap.Logger, stream string) *RedisPublisher {
	return &RedisPublisher{client: client, issuer: issuer, logger: logger, stream: stream}
}

// Publish builds the outbound message for the reminder and appends it to the
// stream. The reminder must carry its Task and User relations. Returns false
// on any failure; callers log and continue, retry is not the publisher's
// concern.
func (p *RedisPublisher) Publish(ctx context.Context, reminder *models.Reminder, action models.ReminderAction) bool {
	if reminder == nil {
		p.logger.Error("publish called with nil reminder")
		return false
	}

	msg, err := p.buildMessage(reminder, action)
	if err != nil {
		p.logger.Error("failed to build reminder message",
			zap.String("reminder_id", reminder.ID),
			zap.String("action", string(action)),
			zap.Error(err))
		return false
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: msg,
	}).Err(); err != nil {
		p.logger.Error("failed to publish reminder event",
			zap.String("reminder_id", reminder.ID),
			zap.String("action", string(action)),
			zap.Error(err))
		return false
	}

	p.logger.Info("published reminder event",
		zap.String("reminder_id", reminder.ID),
		zap.String("action", string(action)),
		zap.Time("reminder_datetime", reminder.ReminderDatetime))
	return true
}

func (p *RedisPublisher) buildMessage(reminder *models.Reminder, action models.ReminderAction) (map[string]interface{}, error) {
	if reminder.ReminderDatetime.IsZero() {
		return nil, errMissingDatetime
	}

	token, err := p.issuer.IssueToken(reminder.UserID, reminder.User.Email)
	if err != nil {
		return nil, err
	}

	snoozeTimes, err := json.Marshal([]int(reminder.Task.SnoozeTimes))
	if err != nil {
		return nil, err
	}

	at := reminder.ReminderDatetime.UTC()

	snoozeMinutes := ""
	snoozeDisplay := ""
	if reminder.IsSnooze {
		snoozeMinutes = strconv.Itoa(reminder.SnoozeMinutes)
		snoozeDisplay = utils.FormatMinutes(reminder.SnoozeMinutes)
	}

	return map[string]interface{}{
		"reminder_id":       reminder.ID,
		"title":             reminder.Title,
		"user_id":           reminder.UserID,
		"reminder_datetime": at.Format("2006-01-02T15:04:05Z07:00"),
		"email":             reminder.User.Email,
		"sent":              strconv.FormatBool(reminder.Sent),
		"action":            string(action),
		"schedule_time":     strconv.FormatInt(at.Unix(), 10),
		"access_token":      token,
		"is_snooze":         strconv.FormatBool(reminder.IsSnooze),
		"snooze_minutes":    snoozeMinutes,
		"snooze_display":    snoozeDisplay,
		"snooze_times":      string(snoozeTimes),
		"task_id":           reminder.TaskID,
		"priority":          string(reminder.Task.Priority),
		"is_completed":      strconv.FormatBool(reminder.IsCompleted),
	}, nil
}

var errMissingDatetime = errors.New("reminder has no reminder_datetime")
