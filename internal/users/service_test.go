package users_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eventure/internal/auth"
	"eventure/internal/errs"
	"eventure/internal/models"
	"eventure/internal/users"
)

// Mock implementations
type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateUser(ctx context.Context, user models.User) (primitive.ObjectID, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockDBLayer) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockDBLayer) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockDBLayer) GetUserByEmailAndRole(ctx context.Context, email string, role models.Role) (*models.User, error) {
	args := m.Called(ctx, email, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockDBLayer) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockDBLayer) CountUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDBLayer) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockTokens struct {
	mock.Mock
}

func (m *MockTokens) Issue(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func TestRegisterSuccess(t *testing.T) {
	db := new(MockDBLayer)
	tokens := new(MockTokens)
	svc := users.NewService(db, tokens)

	newID := primitive.NewObjectID()
	db.On("GetUserByEmail", mock.Anything, "p1@example.com").Return(nil, nil)
	db.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		// the store must receive a digest, never the plaintext
		return u.Email == "p1@example.com" && u.Role == models.RoleParticipant &&
			u.Password != "password1" && auth.CheckPassword("password1", u.Password)
	})).Return(newID, nil)
	tokens.On("Issue", newID.Hex()).Return("signed-token", nil)

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Name: "P One", Email: "p1@example.com", Password: "password1", Role: "PARTICIPANT",
	})
	require.NoError(t, err)
	assert.Equal(t, "signed-token", resp.Token)
	assert.Equal(t, newID, resp.User.ID)
	db.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := new(MockDBLayer)
	tokens := new(MockTokens)
	svc := users.NewService(db, tokens)

	existing := &models.User{ID: primitive.NewObjectID(), Email: "p1@example.com"}
	db.On("GetUserByEmail", mock.Anything, "p1@example.com").Return(existing, nil)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Name: "P One", Email: "p1@example.com", Password: "password1", Role: "PARTICIPANT",
	})
	assert.True(t, errors.Is(err, errs.ErrConflict))
	db.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	db := new(MockDBLayer)
	svc := users.NewService(db, new(MockTokens))

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Name: "A", Email: "a@example.com", Password: "password1", Role: "ADMIN",
	})
	assert.True(t, errors.Is(err, errs.ErrValidation))
	db.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc := users.NewService(new(MockDBLayer), new(MockTokens))

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Name: "A", Email: "a@example.com", Password: "password1", Role: "eventmanager",
	})
	assert.True(t, errors.Is(err, errs.ErrValidation), "role match is exact and case-sensitive")
}

func TestLoginSuccess(t *testing.T) {
	db := new(MockDBLayer)
	tokens := new(MockTokens)
	svc := users.NewService(db, tokens)

	digest, err := auth.HashPassword("password1")
	require.NoError(t, err)
	user := &models.User{ID: primitive.NewObjectID(), Email: "p1@example.com", Password: digest, Role: models.RoleParticipant}

	db.On("GetUserByEmail", mock.Anything, "p1@example.com").Return(user, nil)
	tokens.On("Issue", user.ID.Hex()).Return("signed-token", nil)

	token, err := svc.Login(context.Background(), models.LoginRequest{Email: "p1@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "signed-token", token)
}

func TestLoginWrongPassword(t *testing.T) {
	db := new(MockDBLayer)
	tokens := new(MockTokens)
	svc := users.NewService(db, tokens)

	digest, err := auth.HashPassword("password1")
	require.NoError(t, err)
	user := &models.User{ID: primitive.NewObjectID(), Email: "p1@example.com", Password: digest}

	db.On("GetUserByEmail", mock.Anything, "p1@example.com").Return(user, nil)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "p1@example.com", Password: "wrong"})
	assert.True(t, errors.Is(err, errs.ErrUnauthorized))
	tokens.AssertNotCalled(t, "Issue", mock.Anything)
}

func TestLoginUnknownEmail(t *testing.T) {
	db := new(MockDBLayer)
	svc := users.NewService(db, new(MockTokens))

	db.On("GetUserByEmail", mock.Anything, "nobody@example.com").Return(nil, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "password1"})
	assert.True(t, errors.Is(err, errs.ErrUnauthorized))
}

func TestAdminLoginScopedToRole(t *testing.T) {
	db := new(MockDBLayer)
	tokens := new(MockTokens)
	svc := users.NewService(db, tokens)

	// A non-admin with this email exists, but the role-scoped lookup misses.
	db.On("GetUserByEmailAndRole", mock.Anything, "m1@example.com", models.RoleAdmin).Return(nil, nil)

	_, err := svc.AdminLogin(context.Background(), models.LoginRequest{Email: "m1@example.com", Password: "password1"})
	assert.True(t, errors.Is(err, errs.ErrUnauthorized))
}

func TestParticipantLoginSuccess(t *testing.T) {
	db := new(MockDBLayer)
	tokens := new(MockTokens)
	svc := users.NewService(db, tokens)

	digest, err := auth.HashPassword("password1")
	require.NoError(t, err)
	user := &models.User{ID: primitive.NewObjectID(), Email: "p1@example.com", Password: digest, Role: models.RoleParticipant}

	db.On("GetUserByEmailAndRole", mock.Anything, "p1@example.com", models.RoleParticipant).Return(user, nil)
	tokens.On("Issue", user.ID.Hex()).Return("signed-token", nil)

	token, err := svc.ParticipantLogin(context.Background(), models.LoginRequest{Email: "p1@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "signed-token", token)
}

func TestDeleteUser(t *testing.T) {
	db := new(MockDBLayer)
	svc := users.NewService(db, new(MockTokens))

	target := &models.User{ID: primitive.NewObjectID(), Role: models.RoleParticipant}
	db.On("GetUserByID", mock.Anything, target.ID).Return(target, nil)
	db.On("DeleteUser", mock.Anything, target.ID).Return(nil)

	deleted, err := svc.Delete(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Equal(t, target.ID, deleted.ID)
	db.AssertExpectations(t)
}

func TestDeleteAdminAlwaysForbidden(t *testing.T) {
	db := new(MockDBLayer)
	svc := users.NewService(db, new(MockTokens))

	target := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	db.On("GetUserByID", mock.Anything, target.ID).Return(target, nil)

	_, err := svc.Delete(context.Background(), target.ID)
	assert.True(t, errors.Is(err, errs.ErrForbidden))
	db.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
}

func TestDeleteMissingUser(t *testing.T) {
	db := new(MockDBLayer)
	svc := users.NewService(db, new(MockTokens))

	id := primitive.NewObjectID()
	db.On("GetUserByID", mock.Anything, id).Return(nil, nil)

	_, err := svc.Delete(context.Background(), id)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}
