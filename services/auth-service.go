package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/LepeyevaEmiliya/projects/logging"
	"github.com/LepeyevaEmiliya/projects/models"
	"github.com/LepeyevaEmiliya/projects/utils"
)

const MinPasswordLength = 8

const msgInvalidCredentials = "Invalid email or password"

// dummyHash is compared against when the email is unknown so both login
// failure paths cost one bcrypt comparison.
var dummyHash, _ = utils.HashPassword("taskflow-dummy-password")

type AuthService struct {
	users UserStore
	jwt   *utils.JWTManager
}

func NewAuthService(users UserStore, jwt *utils.JWTManager) *AuthService {
	return &AuthService{users: users, jwt: jwt}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return models.ValidationError("Invalid email address")
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (models.PublicUser, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)

	if email == "" || password == "" || name == "" {
		return models.PublicUser{}, models.ValidationError("Email, password and name are required")
	}
	if err := validateEmail(email); err != nil {
		return models.PublicUser{}, err
	}
	if len(password) < MinPasswordLength {
		return models.PublicUser{}, models.ValidationError("Password must be at least %d characters", MinPasswordLength)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return models.PublicUser{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		IsActive:     true,
		CreatedAt:    nowUTC(),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return models.PublicUser{}, models.ConflictError("User with this email already exists")
		}
		return models.PublicUser{}, fmt.Errorf("create user: %w", err)
	}

	logging.Logger.Infof("Event ID: USER_REGISTERED, Description: User %s registered", user.ID)
	return user.Public(), nil
}

// Login checks the password before the active flag, so a deactivated account
// is only revealed to someone who knows its password.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return models.LoginResult{}, models.ValidationError("Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			utils.CheckPassword(dummyHash, password)
			logging.Logger.Warnf("Event ID: LOGIN_FAILED, Description: Login attempt for unknown email")
			return models.LoginResult{}, models.AuthError(msgInvalidCredentials)
		}
		return models.LoginResult{}, fmt.Errorf("get user: %w", err)
	}

	if !utils.CheckPassword(user.PasswordHash, password) {
		logging.Logger.Warnf("Event ID: LOGIN_FAILED, Description: Wrong password for user %s", user.ID)
		return models.LoginResult{}, models.AuthError(msgInvalidCredentials)
	}
	if !user.IsActive {
		return models.LoginResult{}, models.ForbiddenError("Account is deactivated")
	}

	at := nowUTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, at); err != nil {
		return models.LoginResult{}, fmt.Errorf("update last login: %w", err)
	}
	user.LastLoginAt = &at

	token, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return models.LoginResult{}, err
	}

	logging.Logger.Infof("Event ID: LOGIN_SUCCESS, Description: User %s logged in", user.ID)
	return models.LoginResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwt.TTL().Seconds()),
		User:        user.Public(),
	}, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (models.PublicUser, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.PublicUser{}, models.NotFoundError("User not found")
		}
		return models.PublicUser{}, fmt.Errorf("get user: %w", err)
	}
	return user.Public(), nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return models.ValidationError("Old and new password are required")
	}
	if len(newPassword) < MinPasswordLength {
		return models.ValidationError("Password must be at least %d characters", MinPasswordLength)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NotFoundError("User not found")
		}
		return fmt.Errorf("get user: %w", err)
	}
	if !utils.CheckPassword(user.PasswordHash, oldPassword) {
		return models.AuthError("Current password is incorrect")
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	logging.Logger.Infof("Event ID: PASSWORD_CHANGED, Description: User %s changed password", userID)
	return nil
}

// UpdateProfile changes the display name and/or email. Empty values keep the current one.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, name, email string) (models.PublicUser, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" && email == "" {
		return models.PublicUser{}, models.ValidationError("Name or email is required")
	}
	if email != "" {
		if err := validateEmail(email); err != nil {
			return models.PublicUser{}, err
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.PublicUser{}, models.NotFoundError("User not found")
		}
		return models.PublicUser{}, fmt.Errorf("get user: %w", err)
	}
	if name != "" {
		user.Name = name
	}
	if email != "" {
		user.Email = email
	}

	if err := s.users.UpdateProfile(ctx, userID, user.Name, user.Email); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return models.PublicUser{}, models.ConflictError("User with this email already exists")
		}
		return models.PublicUser{}, fmt.Errorf("update profile: %w", err)
	}
	return user.Public(), nil
}

// SetActive is the administrator switch used by the CLI.
func (s *AuthService) SetActive(ctx context.Context, email string, active bool) error {
	email = normalizeEmail(email)
	if err := s.users.SetActive(ctx, email, active); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NotFoundError("User %s not found", email)
		}
		return fmt.Errorf("set active: %w", err)
	}
	logging.Logger.Infof("Event ID: USER_ACTIVE_CHANGED, Description: User %s active=%t", email, active)
	return nil
}
