package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Ordinal levels shared by cleanliness and noise tolerance.
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// Sleep schedules.
const (
	SleepEarlyBird = "early_bird"
	SleepNightOwl  = "night_owl"
	SleepFlexible  = "flexible"
)

// Preferences is the lifestyle and budget record a user is matched on.
// Nullable columns map to pointers; an empty string enum means "not set".
type Preferences struct {
	ID               int64          `db:"id" json:"preference_id"`
	UserID           int64          `db:"user_id" json:"user_id"`
	BudgetMin        *int64         `db:"budget_min" json:"budget_min"`
	BudgetMax        *int64         `db:"budget_max" json:"budget_max"`
	City             string         `db:"city" json:"city"`
	CleanlinessLevel string         `db:"cleanliness_level" json:"cleanliness_level"`
	NoiseTolerance   string         `db:"noise_tolerance" json:"noise_tolerance"`
	SleepSchedule    string         `db:"sleep_schedule" json:"sleep_schedule"`
	Smoking          *bool          `db:"smoking" json:"smoking"`
	Pets             *bool          `db:"pets" json:"pets"`
	GuestsAllowed    *bool          `db:"guests_allowed" json:"guests_allowed"`
	PreferredGender  string         `db:"preferred_gender" json:"preferred_gender"`
	OtherInterests   pq.StringArray `db:"other_interests" json:"-"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// PreferencesInput is the wire form accepted by POST and PATCH /preferences/.
// Enum values are accepted case-insensitively; other_interests is comma-joined.
type PreferencesInput struct {
	BudgetMin        *int64  `json:"budget_min"`
	BudgetMax        *int64  `json:"budget_max"`
	City             *string `json:"city"`
	CleanlinessLevel *string `json:"cleanliness_level"`
	NoiseTolerance   *string `json:"noise_tolerance"`
	SleepSchedule    *string `json:"sleep_schedule"`
	Smoking          *bool   `json:"smoking"`
	Pets             *bool   `json:"pets"`
	GuestsAllowed    *bool   `json:"guests_allowed"`
	PreferredGender  *string `json:"preferred_gender"`
	OtherInterests   *string `json:"other_interests"`
}

// PreferencesView is the wire form returned to clients.
type PreferencesView struct {
	Preferences
	OtherInterests string `json:"other_interests"`
}

// View renders tags comma-joined.
func (p Preferences) View() PreferencesView {
	return PreferencesView{Preferences: p, OtherInterests: strings.Join(p.OtherInterests, ",")}
}

// ParseInterests splits a comma-joined tag list, trims each tag, drops
// empties and case-insensitive duplicates, and returns the tags sorted.
func ParseInterests(raw string) []string {
	seen := map[string]struct{}{}
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// NormalizeEnum lower-cases and trims an enum value and maps the client's
// display forms ("Early Bird", "Night-Owl") onto the stored keys.
func NormalizeEnum(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	v = strings.ReplaceAll(v, "-", "_")
	return strings.ReplaceAll(v, " ", "_")
}

// ValidLevel reports whether v is one of low, medium, high.
func ValidLevel(v string) bool {
	return v == LevelLow || v == LevelMedium || v == LevelHigh
}

// ValidSleepSchedule reports whether v is a known sleep schedule.
func ValidSleepSchedule(v string) bool {
	return v == SleepEarlyBird || v == SleepNightOwl || v == SleepFlexible
}

// ValidPreferredGender reports whether v is male, female or any.
func ValidPreferredGender(v string) bool {
	return v == PreferredGenderMale || v == PreferredGenderFemale || v == PreferredGenderAny
}

// ValidGender reports whether v is a known user gender.
func ValidGender(v string) bool {
	return v == GenderMale || v == GenderFemale || v == GenderPreferNotToSay
}

// Validate checks enum membership, non-negative budgets and budget ordering.
// Empty enums and nil pointers are "not set" and always valid.
func (p Preferences) Validate() error {
	if p.BudgetMin != nil && *p.BudgetMin < 0 {
		return errors.New("budget_min must not be negative")
	}
	if p.BudgetMax != nil && *p.BudgetMax < 0 {
		return errors.New("budget_max must not be negative")
	}
	if p.BudgetMin != nil && p.BudgetMax != nil && *p.BudgetMin > *p.BudgetMax {
		return errors.New("budget_min must not exceed budget_max")
	}
	if p.CleanlinessLevel != "" && !ValidLevel(p.CleanlinessLevel) {
		return fmt.Errorf("cleanliness_level %q must be one of low, medium, high", p.CleanlinessLevel)
	}
	if p.NoiseTolerance != "" && !ValidLevel(p.NoiseTolerance) {
		return fmt.Errorf("noise_tolerance %q must be one of low, medium, high", p.NoiseTolerance)
	}
	if p.SleepSchedule != "" && !ValidSleepSchedule(p.SleepSchedule) {
		return fmt.Errorf("sleep_schedule %q must be one of early_bird, night_owl, flexible", p.SleepSchedule)
	}
	if p.PreferredGender != "" && !ValidPreferredGender(p.PreferredGender) {
		return fmt.Errorf("preferred_gender %q must be one of male, female, any", p.PreferredGender)
	}
	return nil
}

// Apply merges the non-nil input fields into p, normalizing enums and tags.
func (p *Preferences) Apply(in PreferencesInput) {
	if in.BudgetMin != nil {
		p.BudgetMin = in.BudgetMin
	}
	if in.BudgetMax != nil {
		p.BudgetMax = in.BudgetMax
	}
	if in.City != nil {
		p.City = strings.TrimSpace(*in.City)
	}
	if in.CleanlinessLevel != nil {
		p.CleanlinessLevel = NormalizeEnum(*in.CleanlinessLevel)
	}
	if in.NoiseTolerance != nil {
		p.NoiseTolerance = NormalizeEnum(*in.NoiseTolerance)
	}
	if in.SleepSchedule != nil {
		p.SleepSchedule = NormalizeEnum(*in.SleepSchedule)
	}
	if in.Smoking != nil {
		p.Smoking = in.Smoking
	}
	if in.Pets != nil {
		p.Pets = in.Pets
	}
	if in.GuestsAllowed != nil {
		p.GuestsAllowed = in.GuestsAllowed
	}
	if in.PreferredGender != nil {
		p.PreferredGender = NormalizeEnum(*in.PreferredGender)
	}
	if in.OtherInterests != nil {
		p.OtherInterests = ParseInterests(*in.OtherInterests)
	}
}

// Profile pairs a user with their preferences, which are nil until first saved.
type Profile struct {
	User        User
	Preferences *Preferences
}
