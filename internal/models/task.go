package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Task struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description" json:"description"`
	Deadline     time.Time          `bson:"deadline" json:"deadline"`
	Event        primitive.ObjectID `bson:"event" json:"event"`
	EventManager primitive.ObjectID `bson:"event_manager" json:"event_manager"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

type PopulatedTask struct {
	ID           primitive.ObjectID `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Deadline     time.Time          `json:"deadline"`
	Event        *Event             `json:"event"`
	EventManager *User              `json:"event_manager"`
	CreatedAt    time.Time          `json:"created_at"`
}

type CreateTaskRequest struct {
	Title            string    `json:"title" validate:"required"`
	Description      string    `json:"description" validate:"required"`
	Deadline         time.Time `json:"deadline" validate:"required"`
	EventID          string    `json:"event_id"`
	EventName        string    `json:"event_name"`
	EventManagerID   string    `json:"event_manager_id"`
	EventManagerName string    `json:"event_manager_name"`
}

// UpdateTaskRequest has partial semantics like UpdateEventRequest.
type UpdateTaskRequest struct {
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Deadline         time.Time `json:"deadline"`
	EventID          string    `json:"event_id"`
	EventName        string    `json:"event_name"`
	EventManagerID   string    `json:"event_manager_id"`
	EventManagerName string    `json:"event_manager_name"`
}

// UpdateTaskResponse echoes the resolved event's name alongside the task.
type UpdateTaskResponse struct {
	Task      Task   `json:"task"`
	EventName string `json:"event_name"`
}

type TaskListResponse struct {
	Tasks []PopulatedTask `json:"tasks"`
	Count int64           `json:"count"`
}
