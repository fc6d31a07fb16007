package user_api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eventure/internal/auth"
	"eventure/internal/errs"
	"eventure/internal/logger"
	"eventure/internal/models"
	"eventure/internal/users"
	"eventure/internal/utils"
)

type Handler struct {
	Users  *users.Service
	Logger *logger.Logger
}

func NewHandler(service *users.Service, log *logger.Logger) *Handler {
	return &Handler{Users: service, Logger: log}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Error creating user", err.Error()))
		return
	}

	resp, err := h.Users.Register(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Register: %v", err))
		utils.WriteJSON(w, errs.Status(err), utils.ErrorResponse("Error creating user", err.Error()))
		return
	}

	h.Logger.Info("API", fmt.Sprintf("Register: created %s %s", resp.User.Role, resp.User.ID.Hex()))
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("User created successfully", resp))
}

func (h *Handler) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	var req models.AdminRegisterRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Error creating admin user", err.Error()))
		return
	}

	user, err := h.Users.RegisterAdmin(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("RegisterAdmin: %v", err))
		utils.WriteJSON(w, errs.Status(err), utils.ErrorResponse("Error creating admin user", err.Error()))
		return
	}

	h.Logger.Info("API", fmt.Sprintf("RegisterAdmin: created admin %s", user.ID.Hex()))
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Admin created successfully", nil))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, h.Users.Login)
}

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, h.Users.AdminLogin)
}

func (h *Handler) ParticipantLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, h.Users.ParticipantLogin)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request, attempt func(ctx context.Context, req models.LoginRequest) (string, error)) {
	var req models.LoginRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Error logging in", err.Error()))
		return
	}

	token, err := attempt(r.Context(), req)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("Login failed for %s: %v", req.Email, err))
		utils.WriteJSON(w, errs.Status(err), utils.ErrorResponse("Invalid credentials", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Login successful", models.AuthResponse{Token: token}))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	found, err := h.Users.List(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListUsers: %v", err))
		utils.WriteJSON(w, errs.Status(err), utils.ErrorResponse("Error fetching users", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Users fetched successfully", found))
}

func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.Users.Count(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CountUsers: %v", err))
		utils.WriteJSON(w, errs.Status(err), utils.ErrorResponse("Error fetching user count", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("User count fetched successfully", map[string]int64{"count": count}))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Error deleting user", "invalid user id"))
		return
	}

	user, err := h.Users.Delete(r.Context(), id)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteUser: %v", err))
		utils.WriteJSON(w, errs.Status(err), utils.ErrorResponse("Error deleting user", err.Error()))
		return
	}

	h.Logger.Info("API", fmt.Sprintf("DeleteUser: deleted %s %s", user.Role, user.ID.Hex()))
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse(fmt.Sprintf("%s deleted successfully", user.Role), nil))
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	identity := auth.Identity(r.Context())
	user, err := h.Users.Profile(r.Context(), identity)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Profile: %v", err))
		utils.WriteJSON(w, errs.Status(err), utils.ErrorResponse("Error fetching profile", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Profile fetched successfully", user))
}
