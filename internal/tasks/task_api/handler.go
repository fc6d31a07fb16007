package task_api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eventure/internal/auth"
	"eventure/internal/errs"
	"eventure/internal/logger"
	"eventure/internal/models"
	"eventure/internal/tasks"
	"eventure/internal/utils"
)

type Handler struct {
	Tasks  *tasks.Service
	Logger *logger.Logger
}

func NewHandler(service *tasks.Service, log *logger.Logger) *Handler {
	return &Handler{Tasks: service, Logger: log}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTaskRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Error creating task", err.Error()))
		return
	}

	task, err := h.Tasks.Create(r.Context(), auth.Identity(r.Context()), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateTask: %v", err))
		utils.WriteJSON(w, errs.Status(err), utils.ErrorResponse("Error creating task", err.Error()))
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CreateTask: created %s", task.ID.Hex()))
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Task created successfully", task))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Error fetching task", "invalid task id"))
		return
	}

	task, err := h.Tasks.Get(r.Context(), id)
	if err != nil {
		utils.WriteJSON(w, errs.Status(err), utils.ErrorResponse("Error fetching task", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Task fetched successfully", task))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Tasks.List(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListTasks: %v", err))
		utils.WriteJSON(w, errs.Status(err), utils.ErrorResponse("Error fetching tasks", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Tasks fetched successfully", resp))
}

func (h *Handler) Assigned(w http.ResponseWriter, r *http.Request) {
	found, err := h.Tasks.Assigned(r.Context(), auth.Identity(r.Context()))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("AssignedTasks: %v", err))
		utils.WriteJSON(w, errs.Status(err), utils.ErrorResponse("Error fetching assigned tasks", err.Error()))
		return
	}
	if len(found) == 0 {
		utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("No tasks assigned yet!", []models.PopulatedTask{}))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Assigned tasks fetched successfully", found))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Error updating task", "invalid task id"))
		return
	}

	var req models.UpdateTaskRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Error updating task", err.Error()))
		return
	}

	resp, err := h.Tasks.Update(r.Context(), auth.Identity(r.Context()), id, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateTask: %v", err))
		utils.WriteJSON(w, errs.Status(err), utils.ErrorResponse("Error updating task", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Task updated successfully", resp))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Error deleting task", "invalid task id"))
		return
	}

	if err := h.Tasks.Delete(r.Context(), auth.Identity(r.Context()), id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteTask: %v", err))
		utils.WriteJSON(w, errs.Status(err), utils.ErrorResponse("Error deleting task", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Task deleted", nil))
}
