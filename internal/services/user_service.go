package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"roommate-service/internal/apperrors"
	"roommate-service/internal/auth"
	"roommate-service/internal/models"
	"roommate-service/internal/repositories"
)

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(userID int64) (string, time.Time, error)
}

// Session is the result of a successful login.
type Session struct {
	Access    string      `json:"access"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

// UserService covers registration, login and profile management.
type UserService struct {
	userRepo  repositories.UserRepository
	prefsRepo repositories.PreferencesRepository
	tokens    TokenIssuer
}

func NewUserService(userRepo repositories.UserRepository, prefsRepo repositories.PreferencesRepository, tokens TokenIssuer) *UserService {
	return &UserService{userRepo: userRepo, prefsRepo: prefsRepo, tokens: tokens}
}

func (s *UserService) Register(ctx context.Context, in models.RegisterInput) (models.User, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, apperrors.InvalidInput("password cannot be used", err)
	}
	user := models.User{
		FullName:     strings.TrimSpace(in.FullName),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		Role:         in.Role,
		Gender:       in.Gender,
		PasswordHash: hash,
	}
	if user.Role == "" {
		user.Role = models.RoleSeeker
	}
	if user.Gender == "" {
		user.Gender = models.GenderPreferNotToSay
	}
	if user.FullName == "" {
		return models.User{}, apperrors.InvalidInput("full_name is required", nil)
	}

	created, err := s.userRepo.CreateUser(ctx, user)
	if errors.Is(err, repositories.ErrEmailTaken) {
		return models.User{}, apperrors.Conflict("email already registered", err)
	}
	if err != nil {
		return models.User{}, apperrors.Internal("failed to register user", err)
	}
	return created, nil
}

// Login checks credentials and issues an access token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, in models.LoginInput) (Session, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return Session{}, apperrors.Internal("failed to load user", err)
	}
	if err != nil || !auth.CheckPassword(user.PasswordHash, in.Password) {
		return Session{}, apperrors.Unauthorized("invalid email or password")
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return Session{}, apperrors.Internal("failed to issue token", err)
	}
	return Session{Access: token, ExpiresAt: expiresAt, User: user}, nil
}

// Me returns the caller's full account.
func (s *UserService) Me(ctx context.Context, userID int64) (models.User, error) {
	user, err := s.userRepo.GetUser(ctx, userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return models.User{}, apperrors.NotFound("user", err)
	}
	if err != nil {
		return models.User{}, apperrors.Internal("failed to load user", err)
	}
	return user, nil
}

// Detail returns another user's public profile with their preferences.
func (s *UserService) Detail(ctx context.Context, userID int64) (models.UserDetail, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return models.UserDetail{}, err
	}
	detail := models.UserDetail{PublicUser: user.Public()}
	prefs, err := s.prefsRepo.GetPreferences(ctx, userID)
	switch {
	case err == nil:
		view := prefs.View()
		detail.Preferences = &view
	case !errors.Is(err, repositories.ErrPreferencesNotFound):
		return models.UserDetail{}, apperrors.Internal("failed to load preferences", err)
	}
	return detail, nil
}

// Update changes targetID's profile. Only the owner may do so.
func (s *UserService) Update(ctx context.Context, actorID, targetID int64, update models.UserUpdate) (models.User, error) {
	if actorID != targetID {
		return models.User{}, apperrors.Forbidden("you can only update your own profile")
	}
	if update.FullName != nil {
		trimmed := strings.TrimSpace(*update.FullName)
		if trimmed == "" {
			return models.User{}, apperrors.InvalidInput("full_name must not be blank", nil)
		}
		update.FullName = &trimmed
	}
	user, err := s.userRepo.UpdateUser(ctx, targetID, update)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return models.User{}, apperrors.NotFound("user", err)
	}
	if err != nil {
		return models.User{}, apperrors.Internal("failed to update user", err)
	}
	return user, nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, in models.ChangePasswordInput) error {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, in.OldPassword) {
		return apperrors.Unauthorized("current password is incorrect")
	}
	if in.NewPassword == in.OldPassword {
		return apperrors.InvalidInput("new_password must differ from old_password", nil)
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return apperrors.InvalidInput("password cannot be used", err)
	}
	err = s.userRepo.UpdatePassword(ctx, userID, hash)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return apperrors.NotFound("user", err)
	}
	if err != nil {
		return apperrors.Internal("failed to change password", err)
	}
	return nil
}

// Deactivate soft-deletes the caller's account.
func (s *UserService) Deactivate(ctx context.Context, userID int64) error {
	err := s.userRepo.DeactivateUser(ctx, userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return apperrors.NotFound("user", err)
	}
	if err != nil {
		return apperrors.Internal("failed to deactivate user", err)
	}
	return nil
}
