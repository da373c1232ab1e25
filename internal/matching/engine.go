package matching

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"roommate-service/internal/apperrors"
	"roommate-service/internal/models"
)

// ErrNoPreferences is wrapped when a strict ranking has no subject preferences.
var ErrNoPreferences = errors.New("subject has no preferences")

// Skipped records a candidate that could not be scored.
type Skipped struct {
	UserID int64
	Reason string
}

// Result is the outcome of one ranking call.
type Result struct {
	Matches []models.Match
	Skipped []Skipped
}

// Options configures an Engine.
type Options struct {
	Weights Weights
	Strict  bool
	Now     func() time.Time
}

// Engine scores candidates against a subject. It holds no per-call state
// and is safe for concurrent use.
type Engine struct {
	weights Weights
	strict  bool
	now     func() time.Time
}

// NewEngine validates the weight table and builds an Engine.
func NewEngine(opts Options) (*Engine, error) {
	if err := opts.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid match weights: %w", err)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{weights: opts.Weights, strict: opts.Strict, now: now}, nil
}

// Weights returns the configured weight table.
func (e *Engine) Weights() Weights {
	return e.weights
}

// Rank scores every eligible candidate and orders them by descending score,
// breaking ties by ascending user id. The subject and gender-incompatible
// candidates are left out; malformed candidates are reported in Skipped.
func (e *Engine) Rank(subject models.Profile, candidates []models.Profile) (Result, error) {
	if subject.Preferences == nil && e.strict {
		return Result{}, apperrors.InvalidInput("set your preferences before requesting matches", ErrNoPreferences)
	}
	if subject.Preferences != nil {
		if err := subject.Preferences.Validate(); err != nil {
			return Result{}, apperrors.InvalidInput(err.Error(), err)
		}
	}

	computedAt := e.now().UTC()
	result := Result{Matches: make([]models.Match, 0, len(candidates))}
	for _, candidate := range candidates {
		if candidate.User.ID == subject.User.ID {
			continue
		}
		if reason := malformed(candidate); reason != "" {
			result.Skipped = append(result.Skipped, Skipped{UserID: candidate.User.ID, Reason: reason})
			continue
		}
		if !genderCompatible(subject, candidate) {
			continue
		}

		score, shared := e.Score(subject.Preferences, candidate.Preferences)
		result.Matches = append(result.Matches, models.Match{
			SubjectID:       subject.User.ID,
			CandidateID:     candidate.User.ID,
			Score:           score,
			SharedInterests: shared,
			ComputedAt:      computedAt,
		})
	}

	sort.SliceStable(result.Matches, func(i, j int) bool {
		a, b := result.Matches[i], result.Matches[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.CandidateID < b.CandidateID
	})
	return result, nil
}

// Score computes the weighted compatibility of two preference records and
// the interest tags they share. Either side may be nil. The result is
// rounded to two decimals and lies in [0,100].
func (e *Engine) Score(a, b *models.Preferences) (float64, []string) {
	if a == nil {
		a = &models.Preferences{}
	}
	if b == nil {
		b = &models.Preferences{}
	}
	w := e.weights

	interests, shared := interestCredit(a.OtherInterests, b.OtherInterests)
	total := w.Budget*budgetCredit(a, b) +
		w.Cleanliness*ordinalCredit(levelRank, a.CleanlinessLevel, b.CleanlinessLevel) +
		w.Noise*ordinalCredit(levelRank, a.NoiseTolerance, b.NoiseTolerance) +
		w.Sleep*ordinalCredit(sleepRank, a.SleepSchedule, b.SleepSchedule) +
		w.Smoking*boolCredit(a.Smoking, b.Smoking) +
		w.Pets*boolCredit(a.Pets, b.Pets) +
		w.Guests*boolCredit(a.GuestsAllowed, b.GuestsAllowed) +
		w.City*cityCredit(a.City, b.City) +
		w.Interests*interests

	total = math.Round(total*100) / 100
	return math.Max(0, math.Min(100, total)), shared
}

func malformed(p models.Profile) string {
	if p.User.ID <= 0 {
		return "missing user id"
	}
	if p.Preferences == nil {
		return ""
	}
	if err := p.Preferences.Validate(); err != nil {
		return err.Error()
	}
	return ""
}

// genderCompatible applies the hard filter: unless either party accepts
// any gender, each party's preferred gender must equal the other's gender.
func genderCompatible(subject, candidate models.Profile) bool {
	sp := preferredGender(subject.Preferences)
	cp := preferredGender(candidate.Preferences)
	if sp == models.PreferredGenderAny || cp == models.PreferredGenderAny {
		return true
	}
	return sp == candidate.User.Gender && cp == subject.User.Gender
}

func preferredGender(p *models.Preferences) string {
	if p == nil || p.PreferredGender == "" {
		return models.PreferredGenderAny
	}
	return p.PreferredGender
}
