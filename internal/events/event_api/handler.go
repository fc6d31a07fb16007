package event_api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eventure/internal/auth"
	"eventure/internal/errs"
	"eventure/internal/events"
	"eventure/internal/logger"
	"eventure/internal/models"
	"eventure/internal/utils"
)

type Handler struct {
	Events *events.Service
	Logger *logger.Logger
}

func NewHandler(service *events.Service, log *logger.Logger) *Handler {
	return &Handler{Events: service, Logger: log}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Error creating event", err.Error()))
		return
	}

	resp, err := h.Events.Create(r.Context(), auth.Identity(r.Context()), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateEvent: %v", err))
		utils.WriteJSON(w, errs.Status(err), utils.ErrorResponse("Error creating event", err.Error()))
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CreateEvent: created %s", resp.Event.ID.Hex()))
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Event created successfully", resp))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Error fetching event", "invalid event id"))
		return
	}

	event, err := h.Events.Get(r.Context(), id)
	if err != nil {
		utils.WriteJSON(w, errs.Status(err), utils.ErrorResponse("Error fetching event", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event fetched successfully", event))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	found, err := h.Events.List(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListEvents: %v", err))
		utils.WriteJSON(w, errs.Status(err), utils.ErrorResponse("Error fetching events", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Events fetched successfully", found))
}

func (h *Handler) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	found, err := h.Events.ListUpcoming(r.Context(), time.Now())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListUpcomingEvents: %v", err))
		utils.WriteJSON(w, errs.Status(err), utils.ErrorResponse("Error fetching upcoming events", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Upcoming events fetched successfully", found))
}

func (h *Handler) ListForParticipant(w http.ResponseWriter, r *http.Request) {
	found, err := h.Events.ListForParticipant(r.Context(), auth.Identity(r.Context()))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListForParticipant: %v", err))
		utils.WriteJSON(w, errs.Status(err), utils.ErrorResponse("Error fetching events", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Events fetched successfully", found))
}

func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	h.count(w, r, h.Events.Count, "Error fetching event count")
}

func (h *Handler) CountManagers(w http.ResponseWriter, r *http.Request) {
	h.count(w, r, h.Events.CountManagers, "Error fetching event manager count")
}

func (h *Handler) CountParticipants(w http.ResponseWriter, r *http.Request) {
	h.count(w, r, h.Events.CountParticipants, "Error fetching participant count")
}

func (h *Handler) ListManagers(w http.ResponseWriter, r *http.Request) {
	found, err := h.Events.ListManagers(r.Context())
	if err != nil {
		utils.WriteJSON(w, errs.Status(err), utils.ErrorResponse("Error fetching event managers", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event managers fetched successfully", found))
}

func (h *Handler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	found, err := h.Events.ListParticipants(r.Context())
	if err != nil {
		utils.WriteJSON(w, errs.Status(err), utils.ErrorResponse("Error fetching participants", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Participants fetched successfully", found))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.Events.Update)
}

func (h *Handler) UpdateUnrestricted(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.Events.UpdateUnrestricted)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, h.Events.Delete)
}

func (h *Handler) DeleteUnrestricted(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, h.Events.DeleteUnrestricted)
}

type updateFunc func(ctx context.Context, identity *models.User, id primitive.ObjectID, req models.UpdateEventRequest) (*models.Event, error)

func (h *Handler) update(w http.ResponseWriter, r *http.Request, apply updateFunc) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Error updating event", "invalid event id"))
		return
	}

	var req models.UpdateEventRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Error updating event", err.Error()))
		return
	}

	event, err := apply(r.Context(), auth.Identity(r.Context()), id, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateEvent: %v", err))
		utils.WriteJSON(w, errs.Status(err), utils.ErrorResponse("Error updating event", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event updated successfully", event))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, identity *models.User, id primitive.ObjectID) error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Error deleting event", "invalid event id"))
		return
	}

	if err := apply(r.Context(), auth.Identity(r.Context()), id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteEvent: %v", err))
		utils.WriteJSON(w, errs.Status(err), utils.ErrorResponse("Error deleting event", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event deleted successfully", nil))
}

func (h *Handler) count(w http.ResponseWriter, r *http.Request, fetch func(ctx context.Context) (int64, error), failMsg string) {
	count, err := fetch(r.Context())
	if err != nil {
		utils.WriteJSON(w, errs.Status(err), utils.ErrorResponse(failMsg, err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Count fetched successfully", map[string]int64{"count": count}))
}
