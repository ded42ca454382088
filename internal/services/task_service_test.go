package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/taskmint/reminder-api/internal/models"
	"github.com/taskmint/reminder-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type TaskServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	pub     *fakePublisher
	service *TaskService
	now     time.Time
	user    *models.User
}

func (suite *TaskServiceTestSuite) SetupTest() {
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

	suite.pub = &fakePublisher{}
	suite.now = time.Date(2025, 6, 7, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return suite.now }

	reminderRepo := repository.NewReminderRepository(suite.db)
	lifecycle := NewReminderLifecycle(reminderRepo, suite.pub, nil, zap.NewNop())
	lifecycle.SetClock(clock)

	suite.service = NewTaskService(
		repository.NewTaskRepository(suite.db),
		repository.NewCategoryRepository(suite.db),
		lifecycle,
		zap.NewNop(),
	)
	suite.service.SetClock(clock)

	suite.user = &models.User{
		Email:        "sora@example.com",
		Username:     "sora",
		PasswordHash: "hashedpassword",
	}
	suite.Require().NoError(suite.db.Create(suite.user).Error)
}

func (suite *TaskServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskServiceTestSuite) validInput() CreateTaskInput {
	return CreateTaskInput{
		UserID:  suite.user.ID,
		Title:   "Prepare slides",
		DueDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		Time:    "09:00",
	}
}

func (suite *TaskServiceTestSuite) reminderCount(taskID string) int64 {
	var count int64
	suite.Require().NoError(suite.db.Model(&models.Reminder{}).Where("task_id = ?", taskID).Count(&count).Error)
	return count
}

func (suite *TaskServiceTestSuite) TestCreateTaskSchedulesReminders() {
	input := suite.validInput()
	input.SnoozeTimes = []int{30, 10}

	task, err := suite.service.CreateTask(context.Background(), input)
	suite.Require().NoError(err)
	suite.NotEmpty(task.ID)
	suite.Equal(models.PriorityMedium, task.Priority)

	suite.EqualValues(3, suite.reminderCount(task.ID))
	suite.Len(suite.pub.events, 3)
	for _, event := range suite.pub.events {
		suite.Equal(models.ActionCreated, event.Action)
	}
}

func (suite *TaskServiceTestSuite) TestCreateTaskValidation() {
	tests := []struct {
		name    string
		mutate  func(*CreateTaskInput)
		wantErr error
	}{
		{"empty title", func(i *CreateTaskInput) { i.Title = "" }, ErrTitleRequired},
		{"bad priority", func(i *CreateTaskInput) { i.Priority = "urgent" }, ErrInvalidPriority},
		{"bad time", func(i *CreateTaskInput) { i.Time = "9 o'clock" }, ErrInvalidTime},
		{"past due date", func(i *CreateTaskInput) { i.DueDate = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }, ErrPastDueDate},
		{"recurring without pattern", func(i *CreateTaskInput) { i.IsRecurring = true }, ErrRecurrenceRequired},
		{"pattern without flag", func(i *CreateTaskInput) { i.RecurrencePattern = models.RecurrenceWeekly }, ErrRecurrenceWithoutFlag},
		{"negative snooze", func(i *CreateTaskInput) { i.SnoozeTimes = []int{30, -5} }, ErrInvalidSnooze},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			input := suite.validInput()
			tt.mutate(&input)
			_, err := suite.service.CreateTask(context.Background(), input)
			suite.ErrorIs(err, tt.wantErr)
		})
	}
}

func (suite *TaskServiceTestSuite) TestCreateTaskDedupesSnoozes() {
	input := suite.validInput()
	input.SnoozeTimes = []int{15, 30, 15}

	task, err := suite.service.CreateTask(context.Background(), input)
	suite.Require().NoError(err)
	suite.Equal(models.IntList{15, 30}, task.SnoozeTimes)
}

func (suite *TaskServiceTestSuite) TestCreateTaskRejectsForeignCategory() {
	other := &models.User{Email: "rin@example.com", Username: "rin", PasswordHash: "hashedpassword"}
	suite.Require().NoError(suite.db.Create(other).Error)
	category := &models.Category{Name: "Work", UserID: other.ID}
	suite.Require().NoError(suite.db.Create(category).Error)

	input := suite.validInput()
	input.CategoryID = &category.ID

	_, err := suite.service.CreateTask(context.Background(), input)
	suite.ErrorIs(err, ErrCategoryNotFound)
}

func (suite *TaskServiceTestSuite) TestUpdateTaskRebuildsScheduleOnDueDateChange() {
	task, err := suite.service.CreateTask(context.Background(), suite.validInput())
	suite.Require().NoError(err)
	suite.pub.events = nil

	newDue := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	updated, err := suite.service.UpdateTask(context.Background(), task.ID, suite.user.ID, UpdateTaskInput{
		DueDate: &newDue,
	})
	suite.Require().NoError(err)
	suite.Equal(newDue, updated.DueDate.UTC())

	var reminders []models.Reminder
	suite.Require().NoError(suite.db.Where("task_id = ?", task.ID).Find(&reminders).Error)
	suite.Require().Len(reminders, 1)
	suite.Equal(time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC), reminders[0].ReminderDatetime.UTC())

	suite.Require().Len(suite.pub.events, 1)
	suite.Equal(models.ActionRescheduled, suite.pub.events[0].Action)
}

func (suite *TaskServiceTestSuite) TestUpdateTaskTitleLeavesScheduleAlone() {
	task, err := suite.service.CreateTask(context.Background(), suite.validInput())
	suite.Require().NoError(err)
	suite.pub.events = nil

	title := "Prepare slides v2"
	_, err = suite.service.UpdateTask(context.Background(), task.ID, suite.user.ID, UpdateTaskInput{
		Title: &title,
	})
	suite.Require().NoError(err)
	suite.Empty(suite.pub.events)
}

func (suite *TaskServiceTestSuite) TestUpdateTaskAddedSnoozeCreatesReminder() {
	task, err := suite.service.CreateTask(context.Background(), suite.validInput())
	suite.Require().NoError(err)
	suite.pub.events = nil

	_, err = suite.service.UpdateTask(context.Background(), task.ID, suite.user.ID, UpdateTaskInput{
		SnoozeTimes: []int{20},
	})
	suite.Require().NoError(err)

	// The main reminder already exists; only the snooze is added.
	suite.EqualValues(2, suite.reminderCount(task.ID))
	suite.Require().Len(suite.pub.events, 1)
	suite.Equal(models.ActionUpdated, suite.pub.events[0].Action)
	suite.True(suite.pub.events[0].IsSnooze)
}

func (suite *TaskServiceTestSuite) TestCompleteTaskClosesReminders() {
	task, err := suite.service.CreateTask(context.Background(), suite.validInput())
	suite.Require().NoError(err)
	suite.pub.events = nil

	completed, err := suite.service.CompleteTask(context.Background(), task.ID, suite.user.ID)
	suite.Require().NoError(err)
	suite.True(completed.Completed)

	var reminders []models.Reminder
	suite.Require().NoError(suite.db.Where("task_id = ?", task.ID).Find(&reminders).Error)
	for _, reminder := range reminders {
		suite.True(reminder.IsCompleted)
		suite.True(reminder.Sent)
	}

	suite.Require().Len(suite.pub.events, 1)
	suite.Equal(models.ActionCompleted, suite.pub.events[0].Action)

	// Completing an already completed task publishes nothing further.
	suite.pub.events = nil
	_, err = suite.service.CompleteTask(context.Background(), task.ID, suite.user.ID)
	suite.Require().NoError(err)
	suite.Empty(suite.pub.events)
}

func (suite *TaskServiceTestSuite) TestDeleteTaskCancelsPendingReminders() {
	task, err := suite.service.CreateTask(context.Background(), suite.validInput())
	suite.Require().NoError(err)
	suite.pub.events = nil

	suite.Require().NoError(suite.service.DeleteTask(context.Background(), task.ID, suite.user.ID))

	suite.Require().Len(suite.pub.events, 1)
	suite.Equal(models.ActionCancelled, suite.pub.events[0].Action)

	suite.Zero(suite.reminderCount(task.ID))
	_, err = suite.service.GetTask(task.ID, suite.user.ID)
	suite.ErrorIs(err, ErrTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestGetTaskScopedToOwner() {
	task, err := suite.service.CreateTask(context.Background(), suite.validInput())
	suite.Require().NoError(err)

	other := &models.User{Email: "nao@example.com", Username: "nao", PasswordHash: "hashedpassword"}
	suite.Require().NoError(suite.db.Create(other).Error)

	_, err = suite.service.GetTask(task.ID, other.ID)
	suite.ErrorIs(err, ErrTaskNotFound)
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
