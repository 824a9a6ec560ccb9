package services

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"kasuwa/internal/models"
	"kasuwa/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles business logic for authentication and authorization.
// It is the single source of truth for the request principal: every
// protected route resolves its caller through ValidateToken.
type AuthService struct {
	userRepo        repositories.UserRepository
	jwtSecret       []byte
	bootstrapSecret []byte
	tokenDuration   time.Duration
}

// NewAuthService creates a new AuthService. bootstrapSecret is the
// out-of-band secret for the one-time admin promotion path; it should be
// rotated or cleared once initial setup is done.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret, bootstrapSecret string) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		jwtSecret:       []byte(jwtSecret),
		bootstrapSecret: []byte(bootstrapSecret),
		tokenDuration:   24 * time.Hour,
	}
}

// RegisterUser registers a new user, hashes their password, and saves them
// to the database. New accounts always start as customers.
func (s *AuthService) RegisterUser(user *models.User) error {
	if existingUser, err := s.userRepo.GetByUsername(user.Username); err == nil && existingUser != nil {
		return fmt.Errorf("username '%s' already taken", user.Username)
	}
	if existingUser, err := s.userRepo.GetByEmail(user.Email); err == nil && existingUser != nil {
		return fmt.Errorf("email '%s' already registered", user.Email)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)
	user.Role = models.RoleCustomer

	if err := s.userRepo.Create(user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// LoginUser authenticates a user and returns a JWT token if successful.
func (s *AuthService) LoginUser(username, password string) (string, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		// Do not reveal whether the username exists.
		return "", models.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", models.ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
		"exp":      time.Now().Add(s.tokenDuration).Unix(),
		"iat":      time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if
// valid. Expired or malformed tokens never resolve to a principal.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// PromoteToAdmin elevates an existing account to the admin role when the
// caller presents the exact bootstrap secret. This is a setup mechanism,
// not a general authorization primitive: a wrong secret mutates nothing,
// and an unknown email reports a lookup miss.
func (s *AuthService) PromoteToAdmin(email, secret string) error {
	if len(s.bootstrapSecret) == 0 {
		log.Warn("admin promotion attempted but no bootstrap secret is configured")
		return models.ErrSecretMismatch
	}
	if subtle.ConstantTimeCompare(s.bootstrapSecret, []byte(secret)) != 1 {
		return models.ErrSecretMismatch
	}

	if err := s.userRepo.UpdateRole(email, models.RoleAdmin); err != nil {
		return err
	}
	log.WithField("email", email).Info("account promoted to admin")
	return nil
}
