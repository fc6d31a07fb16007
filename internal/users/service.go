package users

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"eventure/internal/auth"
	"eventure/internal/errs"
	"eventure/internal/models"
)

type DBLayer interface {
	CreateUser(ctx context.Context, user models.User) (primitive.ObjectID, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByEmailAndRole(ctx context.Context, email string, role models.Role) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type Service struct {
	DB     DBLayer
	Tokens TokenIssuer
}

func NewService(db DBLayer, tokens TokenIssuer) *Service {
	return &Service{DB: db, Tokens: tokens}
}

// Register creates an EVENTMANAGER or PARTICIPANT account and issues
// a token bound to it. The plaintext password never reaches the store.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	role, err := models.ParseRole(req.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}
	if role == models.RoleAdmin {
		return nil, fmt.Errorf("%w: admin accounts are created through the admin signup", errs.ErrValidation)
	}

	existing, err := s.DB.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: user already exists", errs.ErrConflict)
	}

	digest, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: digest,
		Role:     role,
	}
	id, err := s.DB.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id

	token, err := s.Tokens.Issue(id.Hex())
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{User: &user, Token: token}, nil
}

// RegisterAdmin creates an ADMIN account. No token is issued; admins
// log in separately.
func (s *Service) RegisterAdmin(ctx context.Context, req models.AdminRegisterRequest) (*models.User, error) {
	existing, err := s.DB.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: admin already exists", errs.ErrConflict)
	}

	digest, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: digest,
		Role:     models.RoleAdmin,
	}
	id, err := s.DB.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id
	return &user, nil
}

// Login issues a token iff the email exists and the password verifies
// against the stored digest.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (string, error) {
	user, err := s.DB.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	return s.issueFor(user, req.Password)
}

// AdminLogin is Login restricted to ADMIN accounts.
func (s *Service) AdminLogin(ctx context.Context, req models.LoginRequest) (string, error) {
	user, err := s.DB.GetUserByEmailAndRole(ctx, req.Email, models.RoleAdmin)
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	return s.issueFor(user, req.Password)
}

// ParticipantLogin is Login restricted to PARTICIPANT accounts.
func (s *Service) ParticipantLogin(ctx context.Context, req models.LoginRequest) (string, error) {
	user, err := s.DB.GetUserByEmailAndRole(ctx, req.Email, models.RoleParticipant)
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	return s.issueFor(user, req.Password)
}

func (s *Service) issueFor(user *models.User, password string) (string, error) {
	if user == nil || !auth.CheckPassword(password, user.Password) {
		return "", fmt.Errorf("%w: invalid credentials", errs.ErrUnauthorized)
	}
	return s.Tokens.Issue(user.ID.Hex())
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	return s.DB.ListUsers(ctx)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.DB.CountUsers(ctx)
}

// Delete removes a user. ADMIN accounts are never deletable through
// this path, regardless of who asks.
func (s *Service) Delete(ctx context.Context, targetID primitive.ObjectID) (*models.User, error) {
	user, err := s.DB.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user not found", errs.ErrNotFound)
	}
	if user.Role == models.RoleAdmin {
		return nil, fmt.Errorf("%w: admin accounts cannot be deleted", errs.ErrForbidden)
	}
	if err := s.DB.DeleteUser(ctx, targetID); err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	return user, nil
}

// Profile returns the acting user's own record.
func (s *Service) Profile(ctx context.Context, identity *models.User) (*models.User, error) {
	user, err := s.DB.GetUserByID(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user not found", errs.ErrNotFound)
	}
	return user, nil
}
