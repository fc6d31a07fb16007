package tasks_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eventure/internal/errs"
	"eventure/internal/models"
	"eventure/internal/tasks"
)

// Mock implementations
type MockTaskStore struct {
	mock.Mock
}

func (m *MockTaskStore) CreateTask(ctx context.Context, task models.Task) (primitive.ObjectID, error) {
	args := m.Called(ctx, task)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockTaskStore) GetTaskByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Task), args.Error(1)
}

func (m *MockTaskStore) ListTasksByManager(ctx context.Context, managerID primitive.ObjectID) ([]models.Task, error) {
	args := m.Called(ctx, managerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Task), args.Error(1)
}

func (m *MockTaskStore) CountTasks(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskStore) UpdateTask(ctx context.Context, task models.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskStore) DeleteTask(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockEventStore struct {
	mock.Mock
}

func (m *MockEventStore) GetEventByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventStore) FindEventsByName(ctx context.Context, name string) ([]models.Event, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) FindUsersByName(ctx context.Context, name string, role models.Role) ([]models.User, error) {
	args := m.Called(ctx, name, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func newTestService() (*tasks.Service, *MockTaskStore, *MockEventStore, *MockUserStore) {
	taskStore := new(MockTaskStore)
	eventStore := new(MockEventStore)
	userStore := new(MockUserStore)
	return tasks.NewService(taskStore, eventStore, userStore), taskStore, eventStore, userStore
}

func fixtures() (models.User, models.Event) {
	owner := models.User{ID: primitive.NewObjectID(), Name: "Owner", Role: models.RoleEventManager}
	event := models.Event{
		ID:           primitive.NewObjectID(),
		Name:         "Launch",
		Date:         time.Now().Add(72 * time.Hour),
		EventManager: owner.ID,
	}
	return owner, event
}

func TestCreateTaskSuccess(t *testing.T) {
	svc, taskStore, eventStore, userStore := newTestService()

	owner, event := fixtures()
	eventStore.On("GetEventByID", mock.Anything, event.ID).Return(&event, nil)
	userStore.On("GetUserByID", mock.Anything, owner.ID).Return(&owner, nil)

	newID := primitive.NewObjectID()
	taskStore.On("CreateTask", mock.Anything, mock.MatchedBy(func(task models.Task) bool {
		return task.Event == event.ID && task.EventManager == owner.ID
	})).Return(newID, nil)

	task, err := svc.Create(context.Background(), &owner, models.CreateTaskRequest{
		Title:          "Book venue",
		Description:    "Reserve the main hall",
		Deadline:       event.Date.Add(-24 * time.Hour),
		EventID:        event.ID.Hex(),
		EventManagerID: owner.ID.Hex(),
	})
	require.NoError(t, err)
	assert.Equal(t, newID, task.ID)
	assert.Equal(t, "Book venue", task.Title)
	taskStore.AssertExpectations(t)
}

func TestCreateTaskDeadlineAtOrAfterEventDate(t *testing.T) {
	svc, taskStore, eventStore, userStore := newTestService()

	owner, event := fixtures()
	eventStore.On("GetEventByID", mock.Anything, event.ID).Return(&event, nil)
	userStore.On("GetUserByID", mock.Anything, owner.ID).Return(&owner, nil)

	for _, deadline := range []time.Time{event.Date, event.Date.Add(time.Hour)} {
		_, err := svc.Create(context.Background(), &owner, models.CreateTaskRequest{
			Title:          "Book venue",
			Deadline:       deadline,
			EventID:        event.ID.Hex(),
			EventManagerID: owner.ID.Hex(),
		})
		assert.True(t, errors.Is(err, errs.ErrValidation))
	}
	taskStore.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything)
}

func TestCreateTaskNonOwnerForbidden(t *testing.T) {
	svc, taskStore, eventStore, _ := newTestService()

	_, event := fixtures()
	other := models.User{ID: primitive.NewObjectID(), Role: models.RoleEventManager}
	eventStore.On("GetEventByID", mock.Anything, event.ID).Return(&event, nil)

	_, err := svc.Create(context.Background(), &other, models.CreateTaskRequest{
		Title:    "Book venue",
		Deadline: event.Date.Add(-24 * time.Hour),
		EventID:  event.ID.Hex(),
	})
	assert.True(t, errors.Is(err, errs.ErrForbidden))
	taskStore.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything)
}

func TestCreateTaskAdminBypassesOwnership(t *testing.T) {
	svc, taskStore, eventStore, userStore := newTestService()

	owner, event := fixtures()
	admin := models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	eventStore.On("GetEventByID", mock.Anything, event.ID).Return(&event, nil)
	userStore.On("GetUserByID", mock.Anything, owner.ID).Return(&owner, nil)
	taskStore.On("CreateTask", mock.Anything, mock.Anything).Return(primitive.NewObjectID(), nil)

	_, err := svc.Create(context.Background(), &admin, models.CreateTaskRequest{
		Title:          "Book venue",
		Deadline:       event.Date.Add(-24 * time.Hour),
		EventID:        event.ID.Hex(),
		EventManagerID: owner.ID.Hex(),
	})
	assert.NoError(t, err)
}

func TestCreateTaskEventByNameAmbiguous(t *testing.T) {
	svc, taskStore, eventStore, _ := newTestService()

	owner, event := fixtures()
	eventStore.On("FindEventsByName", mock.Anything, "Launch").
		Return([]models.Event{event, {ID: primitive.NewObjectID(), Name: "Launch"}}, nil)

	_, err := svc.Create(context.Background(), &owner, models.CreateTaskRequest{
		Title:     "Book venue",
		Deadline:  event.Date.Add(-24 * time.Hour),
		EventName: "Launch",
	})
	assert.True(t, errors.Is(err, errs.ErrAmbiguousReference))
	taskStore.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything)
}

func TestCreateTaskMissingEvent(t *testing.T) {
	svc, _, eventStore, _ := newTestService()

	owner, _ := fixtures()
	id := primitive.NewObjectID()
	eventStore.On("GetEventByID", mock.Anything, id).Return(nil, nil)

	_, err := svc.Create(context.Background(), &owner, models.CreateTaskRequest{
		Title:    "Book venue",
		Deadline: time.Now().Add(time.Hour),
		EventID:  id.Hex(),
	})
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestCreateTaskManagerWrongRole(t *testing.T) {
	svc, taskStore, eventStore, userStore := newTestService()

	owner, event := fixtures()
	imposter := models.User{ID: primitive.NewObjectID(), Role: models.RoleParticipant}
	eventStore.On("GetEventByID", mock.Anything, event.ID).Return(&event, nil)
	userStore.On("GetUserByID", mock.Anything, imposter.ID).Return(&imposter, nil)

	_, err := svc.Create(context.Background(), &owner, models.CreateTaskRequest{
		Title:          "Book venue",
		Deadline:       event.Date.Add(-24 * time.Hour),
		EventID:        event.ID.Hex(),
		EventManagerID: imposter.ID.Hex(),
	})
	assert.True(t, errors.Is(err, errs.ErrNotFound))
	taskStore.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything)
}

func TestListTasksWithCount(t *testing.T) {
	svc, taskStore, eventStore, userStore := newTestService()

	owner, event := fixtures()
	task := models.Task{
		ID:           primitive.NewObjectID(),
		Title:        "Book venue",
		Deadline:     event.Date.Add(-24 * time.Hour),
		Event:        event.ID,
		EventManager: owner.ID,
	}

	taskStore.On("ListTasks", mock.Anything).Return([]models.Task{task}, nil)
	taskStore.On("CountTasks", mock.Anything).Return(int64(1), nil)
	eventStore.On("GetEventByID", mock.Anything, event.ID).Return(&event, nil)
	userStore.On("GetUserByID", mock.Anything, owner.ID).Return(&owner, nil)

	resp, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Count)
	require.Len(t, resp.Tasks, 1)
	require.NotNil(t, resp.Tasks[0].Event)
	assert.Equal(t, event.Name, resp.Tasks[0].Event.Name)
}

func TestAssignedEmptyIsNotAnError(t *testing.T) {
	svc, taskStore, _, _ := newTestService()

	owner, _ := fixtures()
	taskStore.On("ListTasksByManager", mock.Anything, owner.ID).Return([]models.Task{}, nil)

	found, err := svc.Assigned(context.Background(), &owner)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestUpdateTaskReResolvesEventAndOwnership(t *testing.T) {
	owner, event := fixtures()
	task := models.Task{
		ID:           primitive.NewObjectID(),
		Title:        "Book venue",
		Deadline:     event.Date.Add(-24 * time.Hour),
		Event:        event.ID,
		EventManager: owner.ID,
	}

	t.Run("moving to an event owned by someone else is forbidden", func(t *testing.T) {
		svc, taskStore, eventStore, _ := newTestService()
		foreign := models.Event{
			ID:           primitive.NewObjectID(),
			Name:         "Gala",
			Date:         time.Now().Add(96 * time.Hour),
			EventManager: primitive.NewObjectID(),
		}
		fresh := task
		taskStore.On("GetTaskByID", mock.Anything, task.ID).Return(&fresh, nil)
		eventStore.On("GetEventByID", mock.Anything, foreign.ID).Return(&foreign, nil)

		_, err := svc.Update(context.Background(), &owner, task.ID, models.UpdateTaskRequest{
			EventID: foreign.ID.Hex(),
		})
		assert.True(t, errors.Is(err, errs.ErrForbidden))
		taskStore.AssertNotCalled(t, "UpdateTask", mock.Anything, mock.Anything)
	})

	t.Run("patched deadline is checked against the event date", func(t *testing.T) {
		svc, taskStore, eventStore, _ := newTestService()
		fresh := task
		taskStore.On("GetTaskByID", mock.Anything, task.ID).Return(&fresh, nil)
		eventStore.On("GetEventByID", mock.Anything, event.ID).Return(&event, nil)

		_, err := svc.Update(context.Background(), &owner, task.ID, models.UpdateTaskRequest{
			Deadline: event.Date.Add(time.Hour),
		})
		assert.True(t, errors.Is(err, errs.ErrValidation))
		taskStore.AssertNotCalled(t, "UpdateTask", mock.Anything, mock.Anything)
	})

	t.Run("partial update keeps unset fields and reports the event name", func(t *testing.T) {
		svc, taskStore, eventStore, _ := newTestService()
		fresh := task
		taskStore.On("GetTaskByID", mock.Anything, task.ID).Return(&fresh, nil)
		eventStore.On("GetEventByID", mock.Anything, event.ID).Return(&event, nil)
		taskStore.On("UpdateTask", mock.Anything, mock.MatchedBy(func(updated models.Task) bool {
			return updated.Title == "Book venue" && updated.Description == "Call the caterer"
		})).Return(nil)

		resp, err := svc.Update(context.Background(), &owner, task.ID, models.UpdateTaskRequest{
			Description: "Call the caterer",
		})
		require.NoError(t, err)
		assert.Equal(t, event.Name, resp.EventName)
		assert.Equal(t, "Book venue", resp.Task.Title)
	})
}

func TestUpdateTaskNotFound(t *testing.T) {
	svc, taskStore, _, _ := newTestService()

	owner, _ := fixtures()
	id := primitive.NewObjectID()
	taskStore.On("GetTaskByID", mock.Anything, id).Return(nil, nil)

	_, err := svc.Update(context.Background(), &owner, id, models.UpdateTaskRequest{})
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestDeleteTask(t *testing.T) {
	owner, event := fixtures()
	task := models.Task{ID: primitive.NewObjectID(), Event: event.ID, EventManager: owner.ID}

	t.Run("owner can delete", func(t *testing.T) {
		svc, taskStore, eventStore, _ := newTestService()
		taskStore.On("GetTaskByID", mock.Anything, task.ID).Return(&task, nil)
		eventStore.On("GetEventByID", mock.Anything, event.ID).Return(&event, nil)
		taskStore.On("DeleteTask", mock.Anything, task.ID).Return(nil)

		err := svc.Delete(context.Background(), &owner, task.ID)
		assert.NoError(t, err)
		taskStore.AssertExpectations(t)
	})

	t.Run("non-owner manager is forbidden", func(t *testing.T) {
		svc, taskStore, eventStore, _ := newTestService()
		other := models.User{ID: primitive.NewObjectID(), Role: models.RoleEventManager}
		taskStore.On("GetTaskByID", mock.Anything, task.ID).Return(&task, nil)
		eventStore.On("GetEventByID", mock.Anything, event.ID).Return(&event, nil)

		err := svc.Delete(context.Background(), &other, task.ID)
		assert.True(t, errors.Is(err, errs.ErrForbidden))
		taskStore.AssertNotCalled(t, "DeleteTask", mock.Anything, mock.Anything)
	})

	t.Run("missing task is not found", func(t *testing.T) {
		svc, taskStore, _, _ := newTestService()
		id := primitive.NewObjectID()
		taskStore.On("GetTaskByID", mock.Anything, id).Return(nil, nil)

		err := svc.Delete(context.Background(), &owner, id)
		assert.True(t, errors.Is(err, errs.ErrNotFound))
	})
}
