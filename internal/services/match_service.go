package services

import (
	"context"
	"errors"
	"log"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"roommate-service/internal/apperrors"
	"roommate-service/internal/matching"
	"roommate-service/internal/models"
	"roommate-service/internal/observability"
	"roommate-service/internal/repositories"
)

const (
	DefaultMatchLimit = 20
	MaxMatchLimit     = 100
)

// Page selects a window of a ranked list.
type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultMatchLimit
	}
	if p.Limit > MaxMatchLimit {
		p.Limit = MaxMatchLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// MatchPage is one window of a ranking plus the size of the whole ranking.
type MatchPage struct {
	Matches []models.MatchView
	Total   int
}

// MatchService ranks the active user pool for a subject on every request.
type MatchService struct {
	userRepo  repositories.UserRepository
	prefsRepo repositories.PreferencesRepository
	engine    *matching.Engine
}

func NewMatchService(userRepo repositories.UserRepository, prefsRepo repositories.PreferencesRepository, engine *matching.Engine) *MatchService {
	return &MatchService{userRepo: userRepo, prefsRepo: prefsRepo, engine: engine}
}

// Matches ranks every other active user against userID and returns the requested page.
func (s *MatchService) Matches(ctx context.Context, userID int64, page Page) (MatchPage, error) {
	ctx, span := tracer.Start(ctx, "matches.rank")
	defer span.End()
	page = page.Normalize()

	user, err := s.userRepo.GetUser(ctx, userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return MatchPage{}, apperrors.NotFound("user", err)
	}
	if err != nil {
		return MatchPage{}, apperrors.Internal("failed to load user", err)
	}

	subject := models.Profile{User: user}
	prefs, err := s.prefsRepo.GetPreferences(ctx, userID)
	switch {
	case err == nil:
		subject.Preferences = &prefs
	case errors.Is(err, repositories.ErrPreferencesNotFound):
	default:
		return MatchPage{}, apperrors.Internal("failed to load preferences", err)
	}

	pool, err := s.prefsRepo.ListMatchPool(ctx, userID)
	if err != nil {
		return MatchPage{}, apperrors.Internal("failed to load candidates", err)
	}

	start := time.Now()
	result, err := s.engine.Rank(subject, pool)
	if err != nil {
		return MatchPage{}, err
	}
	filtered := len(pool) - len(result.Matches) - len(result.Skipped)
	observability.ObserveRanking(time.Since(start), len(result.Matches), len(result.Skipped), filtered)
	for _, skipped := range result.Skipped {
		log.Printf("match candidate skipped: subject_id=%d candidate_id=%d reason=%q", userID, skipped.UserID, skipped.Reason)
	}
	span.SetAttributes(
		attribute.Int("match.pool", len(pool)),
		attribute.Int("match.scored", len(result.Matches)),
		attribute.Int("match.skipped", len(result.Skipped)),
	)

	profiles := make(map[int64]models.Profile, len(pool))
	for _, p := range pool {
		profiles[p.User.ID] = p
	}

	out := MatchPage{Matches: []models.MatchView{}, Total: len(result.Matches)}
	if page.Offset >= len(result.Matches) {
		return out, nil
	}
	end := min(page.Offset+page.Limit, len(result.Matches))
	for _, m := range result.Matches[page.Offset:end] {
		candidate := profiles[m.CandidateID]
		view := models.MatchView{Match: m, User: candidate.User.Public()}
		if p := candidate.Preferences; p != nil {
			view.City = p.City
			view.BudgetMin = p.BudgetMin
			view.BudgetMax = p.BudgetMax
		}
		out.Matches = append(out.Matches, view)
	}
	return out, nil
}
