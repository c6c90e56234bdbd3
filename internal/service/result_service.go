package service

import (
	"context"
	"errors"

	"fest-backend/internal/domain"
	"fest-backend/internal/repository"
	"fest-backend/pkg/metrics"

	"go.uber.org/zap"
)

// ResultService records round evaluations and prize awards. Batches are not
// atomic: each item is validated and persisted on its own.
type ResultService struct {
	store   repository.Store
	cache   *CacheService
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewResultService(store repository.Store, cache *CacheService, m *metrics.Metrics, logger *zap.Logger) *ResultService {
	return &ResultService{
		store:   store,
		cache:   cache,
		metrics: m,
		logger:  logger,
	}
}

// ResultsPage is one page of a round's standings.
type ResultsPage struct {
	EventID  string                     `json:"event_id"`
	RoundID  string                     `json:"round_id"`
	RoundNo  int                        `json:"round_no"`
	Page     int                        `json:"page"`
	PageSize int                        `json:"page_size"`
	Total    int                        `json:"total"`
	Results  []*domain.RoundResultEntry `json:"results"`
}

// AssignRoundResults upserts each evaluation whose target exists and checked
// in to the round. Items carry UserID or TeamID, Points and Status.
func (s *ResultService) AssignRoundResults(ctx context.Context, actor domain.Identity, eventID string, roundNo int, items []*domain.RoundResult) (*BatchOutcome[*domain.RoundResult], error) {
	if err := requireOperator(actor); err != nil {
		return nil, err
	}
	repos := s.store.Repos()
	out := NewBatchOutcome[*domain.RoundResult]()

	round, err := repos.Events.GetRound(ctx, eventID, roundNo)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, internalErr("load round", err)
		}
		for _, it := range items {
			out.Fail(it.UserID, it.TeamID, ItemRoundNotFound)
		}
		s.metrics.BatchItems("round_results", 0, out.Failed())
		return out, nil
	}

	for _, it := range items {
		if msg := s.checkTarget(ctx, repos, round.ID, it.UserID, it.TeamID, ItemNotCheckedIn); msg != "" {
			out.Fail(it.UserID, it.TeamID, msg)
			continue
		}
		res := &domain.RoundResult{
			RoundID:     round.ID,
			UserID:      it.UserID,
			TeamID:      it.TeamID,
			Points:      it.Points,
			Status:      it.Status,
			EvaluatedBy: actor.UserID,
		}
		if err := repos.Results.Upsert(ctx, res); err != nil {
			s.logger.Error("Failed to record round result",
				zap.String("round_id", round.ID),
				zap.Error(err))
			out.Fail(it.UserID, it.TeamID, ItemInternalError)
			continue
		}
		out.Record(res)
	}

	if out.RecordedCount > 0 {
		s.cache.InvalidateRoundResults(ctx, round.ID)
	}
	s.metrics.BatchItems("round_results", out.RecordedCount, out.Failed())
	s.logger.Info("Round results recorded",
		zap.String("round_id", round.ID),
		zap.Int("recorded", out.RecordedCount),
		zap.Int("failed", out.Failed()))
	return out, nil
}

// AssignEventPrizes awards prizes by placement to targets checked in to the final round.
func (s *ResultService) AssignEventPrizes(ctx context.Context, actor domain.Identity, eventID string, items []*domain.PrizeAward) (*BatchOutcome[*domain.PrizeAward], error) {
	if err := requireEventManager(actor); err != nil {
		return nil, err
	}
	repos := s.store.Repos()
	out := NewBatchOutcome[*domain.PrizeAward]()

	failAll := func(msg string) (*BatchOutcome[*domain.PrizeAward], error) {
		for _, it := range items {
			out.Fail(it.UserID, it.TeamID, msg)
		}
		s.metrics.BatchItems("prize_awards", 0, out.Failed())
		return out, nil
	}

	if _, err := repos.Events.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return failAll(ItemEventNotFound)
		}
		return nil, internalErr("load event", err)
	}
	final, err := repos.Events.GetFinalRound(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return failAll(ItemNoRounds)
		}
		return nil, internalErr("load final round", err)
	}

	for _, it := range items {
		prize, err := repos.Events.GetPrizeByPosition(ctx, eventID, it.Position)
		if err != nil {
			msg := ItemPrizeNotFound
			if !errors.Is(err, repository.ErrNotFound) {
				s.logger.Error("Failed to load prize", zap.Int("position", it.Position), zap.Error(err))
				msg = ItemInternalError
			}
			out.Fail(it.UserID, it.TeamID, msg)
			continue
		}
		if msg := s.checkTarget(ctx, repos, final.ID, it.UserID, it.TeamID, ItemNotCheckedInFinal); msg != "" {
			out.Fail(it.UserID, it.TeamID, msg)
			continue
		}
		award := &domain.PrizeAward{
			PrizeID:   prize.ID,
			Position:  prize.Position,
			UserID:    it.UserID,
			TeamID:    it.TeamID,
			AwardedBy: actor.UserID,
		}
		if err := repos.Prizes.CreateAward(ctx, award); err != nil {
			if ce, ok := repository.AsConflict(err); ok && ce.Reason == repository.ReasonAlreadyAwarded {
				out.Fail(it.UserID, it.TeamID, ItemAlreadyAwarded)
				continue
			}
			s.logger.Error("Failed to award prize", zap.String("prize_id", prize.ID), zap.Error(err))
			out.Fail(it.UserID, it.TeamID, ItemInternalError)
			continue
		}
		out.Record(award)
	}

	s.metrics.BatchItems("prize_awards", out.RecordedCount, out.Failed())
	s.logger.Info("Prizes awarded",
		zap.String("event_id", eventID),
		zap.Int("recorded", out.RecordedCount),
		zap.Int("failed", out.Failed()))
	return out, nil
}

// checkTarget returns the per-item failure for a user or team target, or "".
func (s *ResultService) checkTarget(ctx context.Context, repos *repository.Repositories, roundID string, userID, teamID *string, notCheckedIn string) string {
	var (
		checkedIn bool
		err       error
	)
	switch {
	case userID != nil:
		if _, err = repos.Users.GetByID(ctx, *userID); err == nil {
			checkedIn, err = repos.CheckIns.UserCheckedIn(ctx, roundID, *userID)
		}
	case teamID != nil:
		if _, err = repos.Teams.GetByID(ctx, *teamID); err == nil {
			checkedIn, err = repos.CheckIns.TeamCheckedIn(ctx, roundID, *teamID)
		}
	default:
		return ItemNotFound
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ItemNotFound
	case err != nil:
		s.logger.Error("Failed to validate batch target", zap.String("round_id", roundID), zap.Error(err))
		return ItemInternalError
	case !checkedIn:
		return notCheckedIn
	}
	return ""
}

// GetRoundResults returns one page of standings. A team result appears once
// with its members attached.
func (s *ResultService) GetRoundResults(ctx context.Context, eventID string, roundNo, page, pageSize int) (*ResultsPage, error) {
	repos := s.store.Repos()
	_, round, err := loadRound(ctx, repos, eventID, roundNo)
	if err != nil {
		return nil, err
	}

	return s.cache.GetRoundResultsPage(ctx, round.ID, page, pageSize, func(ctx context.Context) (*ResultsPage, error) {
		entries, total, err := repos.Results.ListPage(ctx, round.ID, pageSize, (page-1)*pageSize)
		if err != nil {
			return nil, internalErr("list round results", err)
		}

		var teamIDs []string
		for _, e := range entries {
			if e.TeamID != nil {
				teamIDs = append(teamIDs, *e.TeamID)
			}
		}
		if len(teamIDs) > 0 {
			members, err := repos.Teams.ListMembers(ctx, teamIDs)
			if err != nil {
				return nil, internalErr("list team members", err)
			}
			byTeam := GroupBy(members, func(m *domain.TeamMember) string { return m.TeamID })
			for _, e := range entries {
				if e.TeamID != nil {
					e.Members = orEmpty(byTeam[*e.TeamID])
				}
			}
		}

		return &ResultsPage{
			EventID:  eventID,
			RoundID:  round.ID,
			RoundNo:  round.Number,
			Page:     page,
			PageSize: pageSize,
			Total:    total,
			Results:  orEmpty(entries),
		}, nil
	})
}
