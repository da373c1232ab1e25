package services

import (
	"context"
	"errors"

	"roommate-service/internal/apperrors"
	"roommate-service/internal/models"
	"roommate-service/internal/observability"
	"roommate-service/internal/repositories"
)

// PreferencesService manages a user's matching preferences.
type PreferencesService struct {
	prefsRepo repositories.PreferencesRepository
}

func NewPreferencesService(prefsRepo repositories.PreferencesRepository) *PreferencesService {
	return &PreferencesService{prefsRepo: prefsRepo}
}

func (s *PreferencesService) Get(ctx context.Context, userID int64) (models.Preferences, error) {
	prefs, err := s.prefsRepo.GetPreferences(ctx, userID)
	if errors.Is(err, repositories.ErrPreferencesNotFound) {
		return models.Preferences{}, apperrors.NotFound("preferences", err)
	}
	if err != nil {
		return models.Preferences{}, apperrors.Internal("failed to load preferences", err)
	}
	return prefs, nil
}

// Replace stores exactly the given fields; anything omitted is cleared.
func (s *PreferencesService) Replace(ctx context.Context, userID int64, in models.PreferencesInput) (models.Preferences, error) {
	prefs := models.Preferences{UserID: userID}
	prefs.Apply(in)
	return s.save(ctx, prefs)
}

// Patch merges the given fields into the stored record, creating it if needed.
func (s *PreferencesService) Patch(ctx context.Context, userID int64, in models.PreferencesInput) (models.Preferences, error) {
	prefs, err := s.prefsRepo.GetPreferences(ctx, userID)
	switch {
	case errors.Is(err, repositories.ErrPreferencesNotFound):
		prefs = models.Preferences{UserID: userID}
	case err != nil:
		return models.Preferences{}, apperrors.Internal("failed to load preferences", err)
	}
	prefs.Apply(in)
	return s.save(ctx, prefs)
}

func (s *PreferencesService) save(ctx context.Context, prefs models.Preferences) (models.Preferences, error) {
	if err := prefs.Validate(); err != nil {
		return models.Preferences{}, apperrors.InvalidInput(err.Error(), err)
	}
	saved, err := s.prefsRepo.UpsertPreferences(ctx, prefs)
	if err != nil {
		return models.Preferences{}, apperrors.Internal("failed to save preferences", err)
	}
	publish(ctx, observability.RoutePreferencesUpdated, PreferencesUpdatedEvent{UserID: saved.UserID, UpdatedAt: saved.UpdatedAt})
	return saved, nil
}
