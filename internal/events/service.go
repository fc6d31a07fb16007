package events

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"eventure/internal/errs"
	"eventure/internal/models"
)

type EventStore interface {
	CreateEvent(ctx context.Context, event models.Event) (primitive.ObjectID, error)
	GetEventByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	GetEventByNameDescription(ctx context.Context, name, description string) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	ListUpcomingEvents(ctx context.Context, now time.Time) ([]models.Event, error)
	ListEventsByParticipant(ctx context.Context, userID primitive.ObjectID) ([]models.Event, error)
	CountEvents(ctx context.Context) (int64, error)
	UpdateEvent(ctx context.Context, event models.Event) error
	DeleteEvent(ctx context.Context, id primitive.ObjectID) error
}

type UserStore interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindUsersByName(ctx context.Context, name string, role models.Role) ([]models.User, error)
	FindUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	ListUsersByRole(ctx context.Context, role models.Role) ([]models.User, error)
	CountUsersByRole(ctx context.Context, role models.Role) (int64, error)
}

// TaskCounter reports how many tasks still reference an event, so
// deletion can refuse to leave dangling references behind.
type TaskCounter interface {
	CountTasksByEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error)
}

type Service struct {
	Events EventStore
	Users  UserStore
	Tasks  TaskCounter
}

func NewService(events EventStore, users UserStore, tasks TaskCounter) *Service {
	return &Service{Events: events, Users: users, Tasks: tasks}
}

// resolveUserRef resolves an id-or-name reference to a user of the
// required role. Ids win when both are given. A name matching more
// than one user fails instead of silently picking one.
func (s *Service) resolveUserRef(ctx context.Context, id, name string, role models.Role) (*models.User, error) {
	if id != "" {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid %s id %q", errs.ErrValidation, role, id)
		}
		user, err := s.Users.GetUserByID(ctx, oid)
		if err != nil {
			return nil, fmt.Errorf("failed to look up %s: %w", role, err)
		}
		if user == nil || user.Role != role {
			return nil, fmt.Errorf("%w: no %s with id %q", errs.ErrValidation, role, id)
		}
		return user, nil
	}

	if name == "" {
		return nil, fmt.Errorf("%w: %s reference required", errs.ErrValidation, role)
	}

	matches, err := s.Users.FindUsersByName(ctx, name, role)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", role, err)
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: no %s named %q", errs.ErrValidation, role, name)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %s name %q", errs.ErrAmbiguousReference, role, name)
	}
}

// resolveParticipants resolves the whole batch; any unresolved or
// wrong-role entry aborts the operation.
func (s *Service) resolveParticipants(ctx context.Context, ids, names []string) ([]primitive.ObjectID, error) {
	if len(ids) > 0 {
		resolved := make([]primitive.ObjectID, 0, len(ids))
		for _, id := range ids {
			user, err := s.resolveUserRef(ctx, id, "", models.RoleParticipant)
			if err != nil {
				return nil, err
			}
			resolved = append(resolved, user.ID)
		}
		return resolved, nil
	}

	resolved := make([]primitive.ObjectID, 0, len(names))
	for _, name := range names {
		user, err := s.resolveUserRef(ctx, "", name, models.RoleParticipant)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, user.ID)
	}
	return resolved, nil
}

// Create persists a new event. The response carries the full current
// manager and participant listings for client convenience.
func (s *Service) Create(ctx context.Context, identity *models.User, req models.CreateEventRequest) (*models.CreateEventResponse, error) {
	existing, err := s.Events.GetEventByNameDescription(ctx, req.Name, req.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing event: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: event with the same name and description already exists", errs.ErrConflict)
	}

	manager, err := s.resolveUserRef(ctx, req.EventManagerID, req.EventManagerName, models.RoleEventManager)
	if err != nil {
		return nil, err
	}

	participants, err := s.resolveParticipants(ctx, req.ParticipantIDs, req.ParticipantNames)
	if err != nil {
		return nil, err
	}

	if identity.Role != models.RoleAdmin && identity.Role != models.RoleEventManager {
		return nil, fmt.Errorf("%w: you do not have permission to create an event", errs.ErrForbidden)
	}

	event := models.Event{
		Name:         req.Name,
		Date:         req.Date,
		Location:     req.Location,
		Description:  req.Description,
		EventManager: manager.ID,
		Participants: participants,
	}
	id, err := s.Events.CreateEvent(ctx, event)
	if err != nil {
		return nil, err
	}
	event.ID = id

	allManagers, err := s.Users.ListUsersByRole(ctx, models.RoleEventManager)
	if err != nil {
		return nil, fmt.Errorf("failed to list event managers: %w", err)
	}
	allParticipants, err := s.Users.ListUsersByRole(ctx, models.RoleParticipant)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	return &models.CreateEventResponse{
		Event:            event,
		AllEventManagers: summaries(allManagers),
		AllParticipants:  summaries(allParticipants),
	}, nil
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.PopulatedEvent, error) {
	event, err := s.Events.GetEventByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}
	if event == nil {
		return nil, fmt.Errorf("%w: event not found", errs.ErrNotFound)
	}
	return s.populate(ctx, *event)
}

func (s *Service) List(ctx context.Context) ([]models.PopulatedEvent, error) {
	found, err := s.Events.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	return s.populateAll(ctx, found)
}

func (s *Service) ListUpcoming(ctx context.Context, now time.Time) ([]models.PopulatedEvent, error) {
	found, err := s.Events.ListUpcomingEvents(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch upcoming events: %w", err)
	}
	return s.populateAll(ctx, found)
}

// ListForParticipant returns the events the acting user is enrolled in.
func (s *Service) ListForParticipant(ctx context.Context, identity *models.User) ([]models.PopulatedEvent, error) {
	found, err := s.Events.ListEventsByParticipant(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	return s.populateAll(ctx, found)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.Events.CountEvents(ctx)
}

func (s *Service) ListManagers(ctx context.Context) ([]models.UserSummary, error) {
	found, err := s.Users.ListUsersByRole(ctx, models.RoleEventManager)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event managers: %w", err)
	}
	return summaries(found), nil
}

func (s *Service) CountManagers(ctx context.Context) (int64, error) {
	return s.Users.CountUsersByRole(ctx, models.RoleEventManager)
}

func (s *Service) ListParticipants(ctx context.Context) ([]models.UserSummary, error) {
	found, err := s.Users.ListUsersByRole(ctx, models.RoleParticipant)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch participants: %w", err)
	}
	return summaries(found), nil
}

func (s *Service) CountParticipants(ctx context.Context) (int64, error) {
	return s.Users.CountUsersByRole(ctx, models.RoleParticipant)
}

// Update applies the owner-restricted policy: the event's own manager
// or an ADMIN.
func (s *Service) Update(ctx context.Context, identity *models.User, id primitive.ObjectID, req models.UpdateEventRequest) (*models.Event, error) {
	return s.update(ctx, identity, id, req, ownerOrAdmin)
}

// UpdateUnrestricted applies the role-only policy: any EVENTMANAGER
// or ADMIN, ownership ignored.
func (s *Service) UpdateUnrestricted(ctx context.Context, identity *models.User, id primitive.ObjectID, req models.UpdateEventRequest) (*models.Event, error) {
	return s.update(ctx, identity, id, req, roleOnly)
}

func (s *Service) Delete(ctx context.Context, identity *models.User, id primitive.ObjectID) error {
	return s.delete(ctx, identity, id, ownerOrAdmin)
}

func (s *Service) DeleteUnrestricted(ctx context.Context, identity *models.User, id primitive.ObjectID) error {
	return s.delete(ctx, identity, id, roleOnly)
}

// ownerOrAdmin authorizes ADMINs and the event's own manager.
func ownerOrAdmin(identity *models.User, event *models.Event) bool {
	return identity.Role == models.RoleAdmin || identity.ID == event.EventManager
}

// roleOnly authorizes any ADMIN or EVENTMANAGER regardless of
// ownership. Exposed through the separate /w/ endpoints.
func roleOnly(identity *models.User, event *models.Event) bool {
	return identity.Role == models.RoleAdmin || identity.Role == models.RoleEventManager
}

func (s *Service) update(ctx context.Context, identity *models.User, id primitive.ObjectID, req models.UpdateEventRequest, authorized func(*models.User, *models.Event) bool) (*models.Event, error) {
	event, err := s.Events.GetEventByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}
	if event == nil {
		return nil, fmt.Errorf("%w: event not found", errs.ErrNotFound)
	}
	if !authorized(identity, event) {
		return nil, fmt.Errorf("%w: not authorized to update this event", errs.ErrForbidden)
	}

	if req.Name != "" {
		event.Name = req.Name
	}
	if !req.Date.IsZero() {
		event.Date = req.Date
	}
	if req.Location != "" {
		event.Location = req.Location
	}
	if req.Description != "" {
		event.Description = req.Description
	}
	if req.EventManagerID != "" || req.EventManagerName != "" {
		manager, err := s.resolveUserRef(ctx, req.EventManagerID, req.EventManagerName, models.RoleEventManager)
		if err != nil {
			return nil, err
		}
		event.EventManager = manager.ID
	}
	if len(req.ParticipantIDs) > 0 || len(req.ParticipantNames) > 0 {
		participants, err := s.resolveParticipants(ctx, req.ParticipantIDs, req.ParticipantNames)
		if err != nil {
			return nil, err
		}
		event.Participants = participants
	}

	if err := s.Events.UpdateEvent(ctx, *event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

func (s *Service) delete(ctx context.Context, identity *models.User, id primitive.ObjectID, authorized func(*models.User, *models.Event) bool) error {
	event, err := s.Events.GetEventByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch event: %w", err)
	}
	if event == nil {
		return fmt.Errorf("%w: event not found", errs.ErrNotFound)
	}
	if !authorized(identity, event) {
		return fmt.Errorf("%w: not authorized to delete this event", errs.ErrForbidden)
	}

	dependents, err := s.Tasks.CountTasksByEvent(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count dependent tasks: %w", err)
	}
	if dependents > 0 {
		return fmt.Errorf("%w: event has %d dependent tasks, delete them first", errs.ErrConflict, dependents)
	}

	if err := s.Events.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

func (s *Service) populate(ctx context.Context, event models.Event) (*models.PopulatedEvent, error) {
	manager, err := s.Users.GetUserByID(ctx, event.EventManager)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve event manager: %w", err)
	}
	participants, err := s.Users.FindUsersByIDs(ctx, event.Participants)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve participants: %w", err)
	}

	return &models.PopulatedEvent{
		ID:           event.ID,
		Name:         event.Name,
		Date:         event.Date,
		Location:     event.Location,
		Description:  event.Description,
		EventManager: manager,
		Participants: participants,
		CreatedAt:    event.CreatedAt,
	}, nil
}

func (s *Service) populateAll(ctx context.Context, found []models.Event) ([]models.PopulatedEvent, error) {
	populated := make([]models.PopulatedEvent, 0, len(found))
	for _, event := range found {
		p, err := s.populate(ctx, event)
		if err != nil {
			return nil, err
		}
		populated = append(populated, *p)
	}
	return populated, nil
}

func summaries(found []models.User) []models.UserSummary {
	out := make([]models.UserSummary, 0, len(found))
	for _, u := range found {
		out = append(out, u.Summary())
	}
	return out
}
