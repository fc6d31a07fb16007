package tasks

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"eventure/internal/errs"
	"eventure/internal/models"
)

type TaskStore interface {
	CreateTask(ctx context.Context, task models.Task) (primitive.ObjectID, error)
	GetTaskByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	ListTasks(ctx context.Context) ([]models.Task, error)
	ListTasksByManager(ctx context.Context, managerID primitive.ObjectID) ([]models.Task, error)
	CountTasks(ctx context.Context) (int64, error)
	UpdateTask(ctx context.Context, task models.Task) error
	DeleteTask(ctx context.Context, id primitive.ObjectID) error
}

type EventStore interface {
	GetEventByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	FindEventsByName(ctx context.Context, name string) ([]models.Event, error)
}

type UserStore interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindUsersByName(ctx context.Context, name string, role models.Role) ([]models.User, error)
}

type Service struct {
	Tasks  TaskStore
	Events EventStore
	Users  UserStore
}

func NewService(tasks TaskStore, events EventStore, users UserStore) *Service {
	return &Service{Tasks: tasks, Events: events, Users: users}
}

// resolveEvent resolves an id-or-name event reference; ids win. An
// absent event is NotFound, an ambiguous name is rejected.
func (s *Service) resolveEvent(ctx context.Context, id, name string) (*models.Event, error) {
	if id != "" {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid event id %q", errs.ErrValidation, id)
		}
		event, err := s.Events.GetEventByID(ctx, oid)
		if err != nil {
			return nil, fmt.Errorf("failed to look up event: %w", err)
		}
		if event == nil {
			return nil, fmt.Errorf("%w: event not found", errs.ErrNotFound)
		}
		return event, nil
	}

	if name == "" {
		return nil, fmt.Errorf("%w: event reference required", errs.ErrValidation)
	}

	matches, err := s.Events.FindEventsByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up event: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: event not found", errs.ErrNotFound)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("%w: event name %q", errs.ErrAmbiguousReference, name)
	}
}

func (s *Service) resolveManager(ctx context.Context, id, name string) (*models.User, error) {
	if id != "" {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid event manager id %q", errs.ErrValidation, id)
		}
		user, err := s.Users.GetUserByID(ctx, oid)
		if err != nil {
			return nil, fmt.Errorf("failed to look up event manager: %w", err)
		}
		if user == nil || user.Role != models.RoleEventManager {
			return nil, fmt.Errorf("%w: event manager not found or invalid role", errs.ErrNotFound)
		}
		return user, nil
	}

	if name == "" {
		return nil, fmt.Errorf("%w: event manager reference required", errs.ErrValidation)
	}

	matches, err := s.Users.FindUsersByName(ctx, name, models.RoleEventManager)
	if err != nil {
		return nil, fmt.Errorf("failed to look up event manager: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: event manager not found or invalid role", errs.ErrNotFound)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("%w: event manager name %q", errs.ErrAmbiguousReference, name)
	}
}

// ownerOrAdmin authorizes ADMINs and the manager who owns the
// referenced event.
func ownerOrAdmin(identity *models.User, event *models.Event) bool {
	return identity.Role == models.RoleAdmin || identity.ID == event.EventManager
}

// Create persists a new task against an event. The task's own manager
// may differ from the event's.
func (s *Service) Create(ctx context.Context, identity *models.User, req models.CreateTaskRequest) (*models.Task, error) {
	event, err := s.resolveEvent(ctx, req.EventID, req.EventName)
	if err != nil {
		return nil, err
	}
	if !ownerOrAdmin(identity, event) {
		return nil, fmt.Errorf("%w: not authorized to create tasks for this event", errs.ErrForbidden)
	}

	manager, err := s.resolveManager(ctx, req.EventManagerID, req.EventManagerName)
	if err != nil {
		return nil, err
	}

	if !req.Deadline.Before(event.Date) {
		return nil, fmt.Errorf("%w: deadline must be before the event date", errs.ErrValidation)
	}

	task := models.Task{
		Title:        req.Title,
		Description:  req.Description,
		Deadline:     req.Deadline,
		Event:        event.ID,
		EventManager: manager.ID,
	}
	id, err := s.Tasks.CreateTask(ctx, task)
	if err != nil {
		return nil, err
	}
	task.ID = id
	return &task, nil
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.PopulatedTask, error) {
	task, err := s.Tasks.GetTaskByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task: %w", err)
	}
	if task == nil {
		return nil, fmt.Errorf("%w: task not found", errs.ErrNotFound)
	}
	return s.populate(ctx, *task)
}

// List returns all tasks together with the total count.
func (s *Service) List(ctx context.Context) (*models.TaskListResponse, error) {
	found, err := s.Tasks.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	count, err := s.Tasks.CountTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	populated, err := s.populateAll(ctx, found)
	if err != nil {
		return nil, err
	}
	return &models.TaskListResponse{Tasks: populated, Count: count}, nil
}

// Assigned lists the tasks whose manager is the acting user. Zero
// tasks is a normal empty result, not an error.
func (s *Service) Assigned(ctx context.Context, identity *models.User) ([]models.PopulatedTask, error) {
	found, err := s.Tasks.ListTasksByManager(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assigned tasks: %w", err)
	}
	return s.populateAll(ctx, found)
}

// Update re-resolves the task's event (patched reference or the
// existing one) and re-evaluates ownership against that event's
// current manager.
func (s *Service) Update(ctx context.Context, identity *models.User, id primitive.ObjectID, req models.UpdateTaskRequest) (*models.UpdateTaskResponse, error) {
	task, err := s.Tasks.GetTaskByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task: %w", err)
	}
	if task == nil {
		return nil, fmt.Errorf("%w: task not found", errs.ErrNotFound)
	}

	var event *models.Event
	if req.EventID != "" || req.EventName != "" {
		event, err = s.resolveEvent(ctx, req.EventID, req.EventName)
	} else {
		event, err = s.resolveEvent(ctx, task.Event.Hex(), "")
	}
	if err != nil {
		return nil, err
	}

	if !ownerOrAdmin(identity, event) {
		return nil, fmt.Errorf("%w: not authorized to update tasks for this event", errs.ErrForbidden)
	}

	deadline := task.Deadline
	if !req.Deadline.IsZero() {
		deadline = req.Deadline
	}
	if !deadline.Before(event.Date) {
		return nil, fmt.Errorf("%w: deadline must be before the event date", errs.ErrValidation)
	}

	if req.EventManagerID != "" || req.EventManagerName != "" {
		manager, err := s.resolveManager(ctx, req.EventManagerID, req.EventManagerName)
		if err != nil {
			return nil, err
		}
		task.EventManager = manager.ID
	}

	if req.Title != "" {
		task.Title = req.Title
	}
	if req.Description != "" {
		task.Description = req.Description
	}
	task.Deadline = deadline
	task.Event = event.ID

	if err := s.Tasks.UpdateTask(ctx, *task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return &models.UpdateTaskResponse{Task: *task, EventName: event.Name}, nil
}

func (s *Service) Delete(ctx context.Context, identity *models.User, id primitive.ObjectID) error {
	task, err := s.Tasks.GetTaskByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch task: %w", err)
	}
	if task == nil {
		return fmt.Errorf("%w: task not found", errs.ErrNotFound)
	}

	event, err := s.Events.GetEventByID(ctx, task.Event)
	if err != nil {
		return fmt.Errorf("failed to fetch event: %w", err)
	}
	if event == nil {
		return fmt.Errorf("%w: event not found", errs.ErrNotFound)
	}
	if !ownerOrAdmin(identity, event) {
		return fmt.Errorf("%w: not authorized to delete tasks for this event", errs.ErrForbidden)
	}

	if err := s.Tasks.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func (s *Service) populate(ctx context.Context, task models.Task) (*models.PopulatedTask, error) {
	event, err := s.Events.GetEventByID(ctx, task.Event)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve event: %w", err)
	}
	manager, err := s.Users.GetUserByID(ctx, task.EventManager)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve event manager: %w", err)
	}

	return &models.PopulatedTask{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		Deadline:     task.Deadline,
		Event:        event,
		EventManager: manager,
		CreatedAt:    task.CreatedAt,
	}, nil
}

func (s *Service) populateAll(ctx context.Context, found []models.Task) ([]models.PopulatedTask, error) {
	populated := make([]models.PopulatedTask, 0, len(found))
	for _, task := range found {
		p, err := s.populate(ctx, task)
		if err != nil {
			return nil, err
		}
		populated = append(populated, *p)
	}
	return populated, nil
}
