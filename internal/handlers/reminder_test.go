package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/taskmint/reminder-api/internal/constants"
	"github.com/taskmint/reminder-api/internal/models"
	"github.com/taskmint/reminder-api/internal/repository"
	"github.com/taskmint/reminder-api/internal/services"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// stubPublisher counts events without touching redis.
type stubPublisher struct {
	actions []models.ReminderAction
}

func (s *stubPublisher) Publish(_ context.Context, _ *models.Reminder, action models.ReminderAction) bool {
	s.actions = append(s.actions, action)
	return true
}

// authAs returns a middleware that injects the user id the way the session
// middleware would.
func authAs(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

type ReminderHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	pub     *stubPublisher
	handler *ReminderHandler
	user    *models.User
	task    *models.Task
}

func (suite *ReminderHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Category{},
		&models.Task{},
		&models.Reminder{},
	)
	suite.Require().NoError(err)

	suite.pub = &stubPublisher{}
	reminderService := services.NewReminderService(
		repository.NewReminderRepository(suite.db),
		repository.NewTaskRepository(suite.db),
		suite.pub,
		nil,
		zap.NewNop(),
	)
	suite.handler = NewReminderHandler(reminderService)

	gin.SetMode(gin.TestMode)

	suite.user = &models.User{
		Email:        "hana@example.com",
		Username:     "hana",
		PasswordHash: "hashedpassword",
	}
	suite.Require().NoError(suite.db.Create(suite.user).Error)

	suite.task = &models.Task{
		UserID:   suite.user.ID,
		Title:    "Dentist appointment",
		Priority: models.PriorityMedium,
		DueDate:  time.Now().UTC().AddDate(0, 0, 7),
		Time:     "10:00",
	}
	suite.Require().NoError(suite.db.Create(suite.task).Error)
}

func (suite *ReminderHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *ReminderHandlerTestSuite) router(userID string) *gin.Engine {
	r := gin.New()
	group := r.Group("/api/reminders", authAs(userID))
	group.GET("", suite.handler.ListReminders)
	group.POST("", suite.handler.CreateReminder)
	group.GET("/:id", suite.handler.GetReminder)
	group.POST("/:id/sent", suite.handler.MarkSent)
	group.POST("/:id/cancel", suite.handler.Cancel)
	group.POST("/:id/reschedule", suite.handler.Reschedule)
	group.POST("/:id/complete", suite.handler.Complete)
	return r
}

func (suite *ReminderHandlerTestSuite) createReminder(at time.Time) *models.Reminder {
	reminder := &models.Reminder{
		UserID:           suite.user.ID,
		TaskID:           suite.task.ID,
		Title:            "Reminder: Dentist appointment",
		ReminderDatetime: at,
		IsActive:         true,
	}
	suite.Require().NoError(suite.db.Create(reminder).Error)
	return reminder
}

func (suite *ReminderHandlerTestSuite) do(router *gin.Engine, method, url string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func (suite *ReminderHandlerTestSuite) TestListReminders() {
	suite.createReminder(time.Now().UTC().Add(24 * time.Hour))
	suite.createReminder(time.Now().UTC().Add(48 * time.Hour))

	w := suite.do(suite.router(suite.user.ID), http.MethodGet, "/api/reminders", nil)
	suite.Equal(http.StatusOK, w.Code)

	var resp struct {
		Reminders  []json.RawMessage `json:"reminders"`
		TotalCount int64             `json:"total_count"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Reminders, 2)
	suite.EqualValues(2, resp.TotalCount)
}

func (suite *ReminderHandlerTestSuite) TestListRemindersScopedToUser() {
	suite.createReminder(time.Now().UTC().Add(24 * time.Hour))

	other := &models.User{Email: "yuki@example.com", Username: "yuki", PasswordHash: "hashedpassword"}
	suite.Require().NoError(suite.db.Create(other).Error)

	w := suite.do(suite.router(other.ID), http.MethodGet, "/api/reminders", nil)
	suite.Equal(http.StatusOK, w.Code)

	var resp struct {
		Reminders []json.RawMessage `json:"reminders"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Empty(resp.Reminders)
}

func (suite *ReminderHandlerTestSuite) TestMarkSentIsIdempotent() {
	reminder := suite.createReminder(time.Now().UTC().Add(time.Hour))
	router := suite.router(suite.user.ID)

	w := suite.do(router, http.MethodPost, "/api/reminders/"+reminder.ID+"/sent", nil)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(router, http.MethodPost, "/api/reminders/"+reminder.ID+"/sent", nil)
	suite.Equal(http.StatusOK, w.Code)

	suite.Equal([]models.ReminderAction{models.ActionSent}, suite.pub.actions)
}

func (suite *ReminderHandlerTestSuite) TestCancelSentReminderConflicts() {
	reminder := suite.createReminder(time.Now().UTC().Add(time.Hour))
	suite.Require().NoError(suite.db.Model(reminder).Update("sent", true).Error)

	w := suite.do(suite.router(suite.user.ID), http.MethodPost, "/api/reminders/"+reminder.ID+"/cancel", nil)
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *ReminderHandlerTestSuite) TestRescheduleReminder() {
	reminder := suite.createReminder(time.Now().UTC().Add(time.Hour))
	newAt := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Second)

	w := suite.do(suite.router(suite.user.ID), http.MethodPost, "/api/reminders/"+reminder.ID+"/reschedule", gin.H{
		"reminder_datetime": newAt.Format(time.RFC3339),
	})
	suite.Equal(http.StatusOK, w.Code)

	var resp struct {
		ReminderDatetime time.Time `json:"reminder_datetime"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(newAt.Equal(resp.ReminderDatetime))
}

func (suite *ReminderHandlerTestSuite) TestReschedulePastDatetimeRejected() {
	reminder := suite.createReminder(time.Now().UTC().Add(time.Hour))

	w := suite.do(suite.router(suite.user.ID), http.MethodPost, "/api/reminders/"+reminder.ID+"/reschedule", gin.H{
		"reminder_datetime": time.Now().UTC().Add(-time.Hour).Format(time.RFC3339),
	})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *ReminderHandlerTestSuite) TestCreateReminder() {
	at := time.Now().UTC().Add(6 * time.Hour).Truncate(time.Second)

	w := suite.do(suite.router(suite.user.ID), http.MethodPost, "/api/reminders", gin.H{
		"task_id":           suite.task.ID,
		"title":             "Bring insurance card",
		"reminder_datetime": at.Format(time.RFC3339),
	})
	suite.Equal(http.StatusCreated, w.Code)
	suite.Equal([]models.ReminderAction{models.ActionScheduled}, suite.pub.actions)
}

func (suite *ReminderHandlerTestSuite) TestCreateReminderForForeignTaskNotFound() {
	other := &models.User{Email: "yuki@example.com", Username: "yuki", PasswordHash: "hashedpassword"}
	suite.Require().NoError(suite.db.Create(other).Error)

	w := suite.do(suite.router(other.ID), http.MethodPost, "/api/reminders", gin.H{
		"task_id":           suite.task.ID,
		"title":             "Should not exist",
		"reminder_datetime": time.Now().UTC().Add(time.Hour).Format(time.RFC3339),
	})
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *ReminderHandlerTestSuite) TestGetReminderCrossUserNotFound() {
	reminder := suite.createReminder(time.Now().UTC().Add(time.Hour))

	other := &models.User{Email: "yuki@example.com", Username: "yuki", PasswordHash: "hashedpassword"}
	suite.Require().NoError(suite.db.Create(other).Error)

	w := suite.do(suite.router(other.ID), http.MethodGet, "/api/reminders/"+reminder.ID, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func TestReminderHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ReminderHandlerTestSuite))
}
