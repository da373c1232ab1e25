package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"roommate-service/internal/models"
)

var ErrPreferencesNotFound = errors.New("preferences not found")

const preferenceColumns = `id, user_id, budget_min, budget_max, city, cleanliness_level, noise_tolerance,
        sleep_schedule, smoking, pets, guests_allowed, preferred_gender, other_interests, updated_at`

// PreferencesRepository abstracts preference persistence and the match pool query.
type PreferencesRepository interface {
	GetPreferences(ctx context.Context, userID int64) (models.Preferences, error)
	UpsertPreferences(ctx context.Context, prefs models.Preferences) (models.Preferences, error)
	ListMatchPool(ctx context.Context, subjectID int64) ([]models.Profile, error)
}

// PreferencesRepo is a sqlx implementation of PreferencesRepository.
type PreferencesRepo struct {
	db *sqlx.DB
}

// NewPreferencesRepo constructs a PreferencesRepo.
func NewPreferencesRepo(db *sqlx.DB) *PreferencesRepo {
	return &PreferencesRepo{db: db}
}

// GetPreferences fetches the preferences owned by userID.
func (r *PreferencesRepo) GetPreferences(ctx context.Context, userID int64) (models.Preferences, error) {
	var prefs models.Preferences
	err := r.db.GetContext(ctx, &prefs, `SELECT `+preferenceColumns+` FROM preferences WHERE user_id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Preferences{}, ErrPreferencesNotFound
	}
	return prefs, err
}

// UpsertPreferences creates the row on first save and overwrites it afterwards.
func (r *PreferencesRepo) UpsertPreferences(ctx context.Context, prefs models.Preferences) (models.Preferences, error) {
	var saved models.Preferences
	err := r.db.GetContext(ctx, &saved, `INSERT INTO preferences (user_id, budget_min, budget_max, city, cleanliness_level,
            noise_tolerance, sleep_schedule, smoking, pets, guests_allowed, preferred_gender, other_interests)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        ON CONFLICT (user_id) DO UPDATE SET
            budget_min = EXCLUDED.budget_min,
            budget_max = EXCLUDED.budget_max,
            city = EXCLUDED.city,
            cleanliness_level = EXCLUDED.cleanliness_level,
            noise_tolerance = EXCLUDED.noise_tolerance,
            sleep_schedule = EXCLUDED.sleep_schedule,
            smoking = EXCLUDED.smoking,
            pets = EXCLUDED.pets,
            guests_allowed = EXCLUDED.guests_allowed,
            preferred_gender = EXCLUDED.preferred_gender,
            other_interests = EXCLUDED.other_interests,
            updated_at = NOW()
        RETURNING `+preferenceColumns,
		prefs.UserID, prefs.BudgetMin, prefs.BudgetMax, prefs.City, prefs.CleanlinessLevel,
		prefs.NoiseTolerance, prefs.SleepSchedule, prefs.Smoking, prefs.Pets, prefs.GuestsAllowed,
		prefs.PreferredGender, prefs.OtherInterests)
	return saved, err
}

type poolRow struct {
	models.User
	PrefID           sql.NullInt64  `db:"pref_id"`
	BudgetMin        *int64         `db:"budget_min"`
	BudgetMax        *int64         `db:"budget_max"`
	City             sql.NullString `db:"city"`
	CleanlinessLevel sql.NullString `db:"cleanliness_level"`
	NoiseTolerance   sql.NullString `db:"noise_tolerance"`
	SleepSchedule    sql.NullString `db:"sleep_schedule"`
	Smoking          *bool          `db:"smoking"`
	Pets             *bool          `db:"pets"`
	GuestsAllowed    *bool          `db:"guests_allowed"`
	PreferredGender  sql.NullString `db:"preferred_gender"`
	OtherInterests   pq.StringArray `db:"other_interests"`
	PrefUpdatedAt    sql.NullTime   `db:"pref_updated_at"`
}

func (row poolRow) profile() models.Profile {
	p := models.Profile{User: row.User}
	if !row.PrefID.Valid {
		return p
	}
	p.Preferences = &models.Preferences{
		ID:               row.PrefID.Int64,
		UserID:           row.User.ID,
		BudgetMin:        row.BudgetMin,
		BudgetMax:        row.BudgetMax,
		City:             row.City.String,
		CleanlinessLevel: row.CleanlinessLevel.String,
		NoiseTolerance:   row.NoiseTolerance.String,
		SleepSchedule:    row.SleepSchedule.String,
		Smoking:          row.Smoking,
		Pets:             row.Pets,
		GuestsAllowed:    row.GuestsAllowed,
		PreferredGender:  row.PreferredGender.String,
		OtherInterests:   row.OtherInterests,
		UpdatedAt:        nullTime(row.PrefUpdatedAt),
	}
	return p
}

func nullTime(t sql.NullTime) time.Time {
	if t.Valid {
		return t.Time
	}
	return time.Time{}
}

// ListMatchPool returns every active user other than subjectID with their
// preferences, if any.
func (r *PreferencesRepo) ListMatchPool(ctx context.Context, subjectID int64) ([]models.Profile, error) {
	query := `SELECT u.id, u.full_name, u.email, u.phone_number, u.role, u.gender, u.is_verified, u.is_active,
            u.password_hash, u.created_at,
            p.id AS pref_id, p.budget_min, p.budget_max, p.city, p.cleanliness_level, p.noise_tolerance,
            p.sleep_schedule, p.smoking, p.pets, p.guests_allowed, p.preferred_gender, p.other_interests,
            p.updated_at AS pref_updated_at
        FROM users u
        LEFT JOIN preferences p ON p.user_id = u.id
        WHERE u.is_active AND u.id <> $1
        ORDER BY u.id`
	rows, err := r.db.QueryxContext(ctx, query, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pool []models.Profile
	for rows.Next() {
		var row poolRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		pool = append(pool, row.profile())
	}
	return pool, rows.Err()
}
