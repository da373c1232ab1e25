package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"roommate-service/internal/models"
	"roommate-service/internal/repositories"
)

func TestPreferencesLifecycle(t *testing.T) {
	d := setupRouter(t)
	saved := models.Preferences{ID: 1, UserID: 1, City: "Nairobi", SleepSchedule: models.SleepEarlyBird, OtherInterests: []string{"chess", "music"}}

	d.prefs.On("GetPreferences", mock.Anything, int64(1)).Return(nil, repositories.ErrPreferencesNotFound).Once()
	d.prefs.On("UpsertPreferences", mock.Anything, mock.MatchedBy(func(p models.Preferences) bool {
		return p.UserID == 1 && p.SleepSchedule == models.SleepEarlyBird && len(p.OtherInterests) == 2
	})).Return(saved, nil).Once()
	d.prefs.On("GetPreferences", mock.Anything, int64(1)).Return(saved, nil)

	rec := d.do(http.MethodGet, "/preferences/", 1, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = d.do(http.MethodPost, "/preferences/", 1, `{"city":"Nairobi","sleep_schedule":"Early Bird","other_interests":"music, Chess"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "chess,music", body["other_interests"])
	assert.Equal(t, "early_bird", body["sleep_schedule"])

	rec = d.do(http.MethodGet, "/preferences/", 1, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Nairobi", decode[map[string]any](t, rec)["city"])
}

func TestPreferencesRejectsInvalid(t *testing.T) {
	d := setupRouter(t)
	d.prefs.On("GetPreferences", mock.Anything, int64(1)).Return(models.Preferences{UserID: 1}, nil)

	rec := d.do(http.MethodPatch, "/preferences/", 1, `{"budget_min":5000,"budget_max":100}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", errorKey(t, rec))

	rec = d.do(http.MethodPost, "/preferences/", 1, `{"noise_tolerance":"deafening"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = d.do(http.MethodPost, "/preferences/", 1, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	d.prefs.AssertNotCalled(t, "UpsertPreferences", mock.Anything, mock.Anything)
}
