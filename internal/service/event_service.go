package service

import (
	"context"
	"errors"

	"fest-backend/internal/domain"
	"fest-backend/internal/repository"
	apperrors "fest-backend/pkg/errors"

	"go.uber.org/zap"
)

// EventService owns the event catalogue.
type EventService struct {
	store  repository.Store
	cache  *CacheService
	logger *zap.Logger
}

func NewEventService(store repository.Store, cache *CacheService, logger *zap.Logger) *EventService {
	return &EventService{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// CreateEvent persists the event with its rounds, rules, prizes and crew in one transaction.
func (s *EventService) CreateEvent(ctx context.Context, actor domain.Identity, agg *domain.EventAggregate) (*domain.EventAggregate, error) {
	if err := requireEventManager(actor); err != nil {
		return nil, err
	}

	err := s.store.WithinTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.Events.Create(ctx, &agg.Event); err != nil {
			return err
		}
		for _, r := range agg.Rounds {
			r.EventID = agg.ID
			if err := tx.Events.AddRound(ctx, r); err != nil {
				return err
			}
		}
		for i, r := range agg.Rules {
			r.EventID, r.Position = agg.ID, i+1
			if err := tx.Events.AddRule(ctx, r); err != nil {
				return err
			}
		}
		for _, p := range agg.Prizes {
			p.EventID = agg.ID
			if err := tx.Events.AddPrize(ctx, p); err != nil {
				return err
			}
		}
		for _, c := range agg.Crew {
			c.EventID = agg.ID
			if err := tx.Events.AddCrew(ctx, c); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return apperrors.NewNotFoundError(ReasonUserNotFound, "Crew member not found").WithDetail("user_id", c.UserID)
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		if ce, ok := repository.AsConflict(err); ok {
			return nil, apperrors.NewConflictError(ce.Reason, "Event definition contains duplicates")
		}
		return nil, internalErr("create event", err)
	}

	s.cache.InvalidateEvents(ctx, "")
	s.logger.Info("Event created",
		zap.String("event_id", agg.ID),
		zap.String("created_by", actor.UserID),
		zap.Int("rounds", len(agg.Rounds)))

	agg.Rounds = orEmpty(agg.Rounds)
	agg.Rules = orEmpty(agg.Rules)
	agg.Prizes = orEmpty(agg.Prizes)
	agg.Crew = orEmpty(agg.Crew)
	return agg, nil
}

// ListEventsVerbose returns every event with its children.
func (s *EventService) ListEventsVerbose(ctx context.Context) ([]*domain.EventAggregate, error) {
	return s.cache.GetEventsVerbose(ctx, func(ctx context.Context) ([]*domain.EventAggregate, error) {
		events, err := s.store.Repos().Events.List(ctx)
		if err != nil {
			return nil, internalErr("list events", err)
		}
		return s.assemble(ctx, events)
	})
}

// GetEventVerbose returns one event with its children.
func (s *EventService) GetEventVerbose(ctx context.Context, eventID string) (*domain.EventAggregate, error) {
	return s.cache.GetEventVerbose(ctx, eventID, func(ctx context.Context) (*domain.EventAggregate, error) {
		ev, err := s.store.Repos().Events.GetByID(ctx, eventID)
		if err != nil {
			return nil, notFound(err, ReasonEventNotFound, "Event not found", "load event")
		}
		aggs, err := s.assemble(ctx, []*domain.Event{ev})
		if err != nil {
			return nil, err
		}
		return aggs[0], nil
	})
}

// assemble fetches each child type once for all events and groups it in memory.
func (s *EventService) assemble(ctx context.Context, events []*domain.Event) ([]*domain.EventAggregate, error) {
	repos := s.store.Repos()
	ids := Pluck(events, func(e *domain.Event) string { return e.ID })

	rounds, err := repos.Events.ListRounds(ctx, ids)
	if err != nil {
		return nil, internalErr("list rounds", err)
	}
	rules, err := repos.Events.ListRules(ctx, ids)
	if err != nil {
		return nil, internalErr("list rules", err)
	}
	prizes, err := repos.Events.ListPrizes(ctx, ids)
	if err != nil {
		return nil, internalErr("list prizes", err)
	}
	crew, err := repos.Events.ListCrew(ctx, ids)
	if err != nil {
		return nil, internalErr("list crew", err)
	}

	roundsBy := GroupBy(rounds, func(r *domain.Round) string { return r.EventID })
	rulesBy := GroupBy(rules, func(r *domain.Rule) string { return r.EventID })
	prizesBy := GroupBy(prizes, func(p *domain.Prize) string { return p.EventID })
	crewBy := GroupBy(crew, func(c *domain.CrewMember) string { return c.EventID })

	out := make([]*domain.EventAggregate, 0, len(events))
	for _, ev := range events {
		out = append(out, &domain.EventAggregate{
			Event:  *ev,
			Rounds: orEmpty(roundsBy[ev.ID]),
			Rules:  orEmpty(rulesBy[ev.ID]),
			Prizes: orEmpty(prizesBy[ev.ID]),
			Crew:   orEmpty(crewBy[ev.ID]),
		})
	}
	return out, nil
}
