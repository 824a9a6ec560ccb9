package services_test

import (
	"fmt"
	"testing"
	"time"

	"kasuwa/internal/models"
	"kasuwa/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of repositories.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateRole(email, role string) error {
	args := m.Called(email, role)
	return args.Error(0)
}

const (
	testJWTSecret       = "test_jwt_secret"
	testBootstrapSecret = "bootstrap-secret"
)

func TestAuthService_RegisterUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, testBootstrapSecret)

	user := &models.User{
		Username: "testuser",
		Email:    "test@example.com",
		Password: "password123",
	}

	mockRepo.On("GetByUsername", user.Username).Return(nil, nil).Once()
	mockRepo.On("GetByEmail", user.Email).Return(nil, nil).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()

	err := authService.RegisterUser(user)
	assert.NoError(t, err)
	// New accounts never start privileged.
	assert.Equal(t, models.RoleCustomer, user.Role)
	mockRepo.AssertExpectations(t)

	// Username already taken
	mockRepo.On("GetByUsername", user.Username).Return(&models.User{ID: "1"}, nil).Once()
	err = authService.RegisterUser(user)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "username 'testuser' already taken")
	mockRepo.AssertExpectations(t)

	// Email already registered
	mockRepo.On("GetByUsername", user.Username).Return(nil, nil).Once()
	mockRepo.On("GetByEmail", user.Email).Return(&models.User{ID: "1"}, nil).Once()
	err = authService.RegisterUser(user)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "email 'test@example.com' already registered")
	mockRepo.AssertExpectations(t)
}

func TestAuthService_LoginUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, testBootstrapSecret)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:       "user-123",
		Username: "testuser",
		Email:    "test@example.com",
		Password: string(hashedPassword),
		Role:     models.RoleCustomer,
	}

	// Successful login
	mockRepo.On("GetByUsername", user.Username).Return(user, nil).Once()
	token, err := authService.LoginUser("testuser", "password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	assert.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, user.Username, claims["username"])
	assert.Equal(t, models.RoleCustomer, claims["role"])
	mockRepo.AssertExpectations(t)

	// Wrong password
	mockRepo.On("GetByUsername", user.Username).Return(user, nil).Once()
	_, err = authService.LoginUser("testuser", "wrongpassword")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)

	// Unknown user gets the same generic error
	mockRepo.On("GetByUsername", "nonexistentuser").
		Return(nil, fmt.Errorf("user nonexistentuser: %w", models.ErrNotFound)).Once()
	_, err = authService.LoginUser("nonexistentuser", "password123")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, testBootstrapSecret)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  "user-123",
		"username": "testuser",
		"role":     models.RoleAdmin,
		"exp":      jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	validTokenString, _ := token.SignedString([]byte(testJWTSecret))

	claims, err := authService.ValidateToken(validTokenString)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", claims["user_id"])
	assert.Equal(t, models.RoleAdmin, claims["role"])

	// Garbage token
	_, err = authService.ValidateToken("invalid.token.string")
	assert.Error(t, err)

	// Expired token never resolves to a principal
	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     jwt.TimeFunc().Add(-time.Hour).Unix(),
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.Error(t, err)

	// Token signed with a different secret
	foreignToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	foreignTokenString, _ := foreignToken.SignedString([]byte("other_secret"))
	_, err = authService.ValidateToken(foreignTokenString)
	assert.Error(t, err)
}

func TestAuthService_PromoteToAdmin(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, testBootstrapSecret)

	// Correct secret on an existing account
	mockRepo.On("UpdateRole", "user@example.com", models.RoleAdmin).Return(nil).Once()
	err := authService.PromoteToAdmin("user@example.com", testBootstrapSecret)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)

	// Wrong secret: no repository call, no row mutated
	freshRepo := new(MockUserRepository)
	freshService := services.NewAuthService(freshRepo, testJWTSecret, testBootstrapSecret)
	err = freshService.PromoteToAdmin("user@example.com", "wrong-secret")
	assert.ErrorIs(t, err, models.ErrSecretMismatch)
	freshRepo.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything)

	// Unknown email surfaces the lookup miss
	mockRepo.On("UpdateRole", "ghost@example.com", models.RoleAdmin).
		Return(fmt.Errorf("user ghost@example.com: %w", models.ErrNotFound)).Once()
	err = authService.PromoteToAdmin("ghost@example.com", testBootstrapSecret)
	assert.ErrorIs(t, err, models.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_PromoteWithUnconfiguredSecret(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, "")

	// An empty configured secret disables the pathway entirely.
	err := authService.PromoteToAdmin("user@example.com", "")
	assert.ErrorIs(t, err, models.ErrSecretMismatch)
	mockRepo.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything)
}
