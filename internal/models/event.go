package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Event struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name         string               `bson:"name" json:"name"`
	Date         time.Time            `bson:"date" json:"date"`
	Location     string               `bson:"location" json:"location"`
	Description  string               `bson:"description" json:"description"`
	EventManager primitive.ObjectID   `bson:"event_manager" json:"event_manager"`
	Participants []primitive.ObjectID `bson:"participants" json:"participants"`
	CreatedAt    time.Time            `bson:"created_at" json:"created_at"`
}

// PopulatedEvent is an Event with its user references resolved to
// full records, the shape read endpoints return.
type PopulatedEvent struct {
	ID           primitive.ObjectID `json:"id"`
	Name         string             `json:"name"`
	Date         time.Time          `json:"date"`
	Location     string             `json:"location"`
	Description  string             `json:"description"`
	EventManager *User              `json:"event_manager"`
	Participants []User             `json:"participants"`
	CreatedAt    time.Time          `json:"created_at"`
}

// CreateEventRequest carries either explicit ids or name references
// for the manager and participants; ids win when both are present.
type CreateEventRequest struct {
	Name             string    `json:"name" validate:"required"`
	Date             time.Time `json:"date" validate:"required"`
	Location         string    `json:"location"`
	Description      string    `json:"description"`
	EventManagerID   string    `json:"event_manager_id"`
	EventManagerName string    `json:"event_manager_name"`
	ParticipantIDs   []string  `json:"participant_ids"`
	ParticipantNames []string  `json:"participant_names"`
}

// UpdateEventRequest has partial semantics: zero-valued fields are
// left untouched, not cleared.
type UpdateEventRequest struct {
	Name             string    `json:"name"`
	Date             time.Time `json:"date"`
	Location         string    `json:"location"`
	Description      string    `json:"description"`
	EventManagerID   string    `json:"event_manager_id"`
	EventManagerName string    `json:"event_manager_name"`
	ParticipantIDs   []string  `json:"participant_ids"`
	ParticipantNames []string  `json:"participant_names"`
}

type CreateEventResponse struct {
	Event            Event         `json:"event"`
	AllEventManagers []UserSummary `json:"all_event_managers"`
	AllParticipants  []UserSummary `json:"all_participants"`
}
