package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"fest-backend/internal/domain"
	"fest-backend/internal/repository"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// fakeStore is an in-memory repository.Store that enforces the same
// uniqueness rules as the Postgres schema and rolls back failed transactions.
type fakeStore struct {
	txMu  sync.Mutex
	mu    sync.Mutex
	st    *fakeState
	repos *repository.Repositories
	fail  map[string]error
	clock time.Time
}

type fakeState struct {
	users         map[string]*domain.User
	teams         map[string]*domain.Team
	members       map[string]map[string]time.Time
	invitations   map[string]*domain.Invitation
	events        map[string]*domain.Event
	rounds        map[string]*domain.Round
	rules         map[string]*domain.Rule
	prizes        map[string]*domain.Prize
	crew          map[string]*domain.CrewMember
	registrations map[string]*domain.Registration
	checkIns      map[string]*domain.CheckIn
	results       map[string]*domain.RoundResult
	awards        map[string]*domain.PrizeAward
}

func newFakeState() *fakeState {
	return &fakeState{
		users:         map[string]*domain.User{},
		teams:         map[string]*domain.Team{},
		members:       map[string]map[string]time.Time{},
		invitations:   map[string]*domain.Invitation{},
		events:        map[string]*domain.Event{},
		rounds:        map[string]*domain.Round{},
		rules:         map[string]*domain.Rule{},
		prizes:        map[string]*domain.Prize{},
		crew:          map[string]*domain.CrewMember{},
		registrations: map[string]*domain.Registration{},
		checkIns:      map[string]*domain.CheckIn{},
		results:       map[string]*domain.RoundResult{},
		awards:        map[string]*domain.PrizeAward{},
	}
}

func cloneMap[V any](m map[string]*V) map[string]*V {
	out := make(map[string]*V, len(m))
	for k, v := range m {
		cp := *v
		out[k] = &cp
	}
	return out
}

func (s *fakeState) clone() *fakeState {
	members := make(map[string]map[string]time.Time, len(s.members))
	for team, m := range s.members {
		inner := make(map[string]time.Time, len(m))
		for u, at := range m {
			inner[u] = at
		}
		members[team] = inner
	}
	return &fakeState{
		users:         cloneMap(s.users),
		teams:         cloneMap(s.teams),
		members:       members,
		invitations:   cloneMap(s.invitations),
		events:        cloneMap(s.events),
		rounds:        cloneMap(s.rounds),
		rules:         cloneMap(s.rules),
		prizes:        cloneMap(s.prizes),
		crew:          cloneMap(s.crew),
		registrations: cloneMap(s.registrations),
		checkIns:      cloneMap(s.checkIns),
		results:       cloneMap(s.results),
		awards:        cloneMap(s.awards),
	}
}

func newFakeStore() *fakeStore {
	s := &fakeStore{
		st:    newFakeState(),
		fail:  map[string]error{},
		clock: time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
	}
	s.repos = &repository.Repositories{
		Users:         &fakeUsers{s},
		Teams:         &fakeTeams{s},
		Invitations:   &fakeInvitations{s},
		Events:        &fakeEvents{s},
		Registrations: &fakeRegistrations{s},
		CheckIns:      &fakeCheckIns{s},
		Results:       &fakeResults{s},
		Prizes:        &fakePrizes{s},
	}
	return s
}

func (s *fakeStore) Repos() *repository.Repositories { return s.repos }

func (s *fakeStore) WithinTx(ctx context.Context, fn func(tx *repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := fn(s.repos); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// lock takes the data lock and returns the injected error for op, if any.
func (s *fakeStore) lock(op string) error {
	s.mu.Lock()
	return s.fail[op]
}

func (s *fakeStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func conflict(reason, constraint, key string) error {
	return &repository.ConflictError{Reason: reason, Constraint: constraint, Key: key}
}

func copyOf[T any](v *T) *T {
	cp := *v
	return &cp
}

type fakeUsers struct{ s *fakeStore }

func (r *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	if err := r.s.lock("users.get"); err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	defer r.s.mu.Unlock()
	u, ok := r.s.st.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyOf(u), nil
}

func (r *fakeUsers) GetByIDs(_ context.Context, ids []string) ([]*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.User
	for _, id := range ids {
		if u, ok := r.s.st.users[id]; ok {
			out = append(out, copyOf(u))
		}
	}
	return out, nil
}

func (r *fakeUsers) GetByEmails(_ context.Context, emails []string) ([]*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := map[string]bool{}
	for _, e := range emails {
		want[strings.ToLower(e)] = true
	}
	var out []*domain.User
	for _, u := range r.s.st.users {
		if want[strings.ToLower(u.Email)] {
			out = append(out, copyOf(u))
		}
	}
	return out, nil
}

type fakeTeams struct{ s *fakeStore }

func (r *fakeTeams) Create(_ context.Context, team *domain.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.st.teams {
		if t.Name == team.Name {
			return conflict(repository.ReasonDuplicateTeamName, "teams_name_key", team.Name)
		}
	}
	team.ID = uuid.NewString()
	team.CreatedAt = r.s.tick()
	r.s.st.teams[team.ID] = copyOf(team)
	return nil
}

func (r *fakeTeams) GetByID(_ context.Context, id string) (*domain.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.st.teams[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyOf(t), nil
}

func (r *fakeTeams) LockByID(ctx context.Context, id string) (*domain.Team, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeTeams) NameTaken(_ context.Context, name string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.st.teams {
		if t.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTeams) Rename(_ context.Context, id, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.st.teams[id]
	if !ok || t.Locked() {
		return repository.ErrStateChanged
	}
	for _, other := range r.s.st.teams {
		if other.ID != id && other.Name == name {
			return conflict(repository.ReasonDuplicateTeamName, "teams_name_key", name)
		}
	}
	t.Name = name
	return nil
}

func (r *fakeTeams) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.st.teams[id]
	if !ok || t.Locked() {
		return repository.ErrStateChanged
	}
	delete(r.s.st.teams, id)
	delete(r.s.st.members, id)
	for invID, inv := range r.s.st.invitations {
		if inv.TeamID == id {
			delete(r.s.st.invitations, invID)
		}
	}
	return nil
}

func (r *fakeTeams) BindEvent(_ context.Context, id, eventID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.st.teams[id]
	if !ok || t.Locked() {
		return repository.ErrStateChanged
	}
	t.EventID = &eventID
	return nil
}

func (r *fakeTeams) AddMember(_ context.Context, teamID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.st.teams[teamID]; !ok || t.Locked() {
		return repository.ErrStateChanged
	}
	m := r.s.st.members[teamID]
	if m == nil {
		m = map[string]time.Time{}
		r.s.st.members[teamID] = m
	}
	if _, dup := m[userID]; dup {
		return conflict(repository.ReasonAlreadyMember, "team_members_pkey", userID)
	}
	m[userID] = r.s.tick()
	return nil
}

func (r *fakeTeams) RemoveMember(_ context.Context, teamID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.st.teams[teamID]; ok && t.Locked() {
		return repository.ErrStateChanged
	}
	if _, ok := r.s.st.members[teamID][userID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.st.members[teamID], userID)
	return nil
}

func (r *fakeTeams) IsMember(_ context.Context, teamID, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.st.members[teamID][userID]
	return ok, nil
}

func (r *fakeTeams) ListMembers(_ context.Context, teamIDs []string) ([]*domain.TeamMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.TeamMember
	for _, teamID := range teamIDs {
		for userID, at := range r.s.st.members[teamID] {
			u := r.s.st.users[userID]
			out = append(out, &domain.TeamMember{TeamID: teamID, UserID: userID, Name: u.Name, Email: u.Email, JoinedAt: at})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *fakeTeams) FindByEventMember(_ context.Context, eventID, userID string) (*domain.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.st.teams {
		if t.EventID == nil || *t.EventID != eventID {
			continue
		}
		if _, ok := r.s.st.members[t.ID][userID]; ok {
			return copyOf(t), nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeInvitations struct{ s *fakeStore }

func (r *fakeInvitations) Create(_ context.Context, inv *domain.Invitation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.teams[inv.TeamID]; !ok {
		return fmt.Errorf("create invitation: %w", repository.ErrNotFound)
	}
	for _, other := range r.s.st.invitations {
		if other.TeamID == inv.TeamID && other.InviteeID == inv.InviteeID && other.Status == domain.InvitationPending {
			return conflict(repository.ReasonDuplicateInvite, "invitations_pending_uniq", inv.InviteeID)
		}
	}
	inv.ID = uuid.NewString()
	inv.Status = domain.InvitationPending
	inv.CreatedAt = r.s.tick()
	r.s.st.invitations[inv.ID] = copyOf(inv)
	return nil
}

func (r *fakeInvitations) decorate(inv *domain.Invitation) *domain.Invitation {
	out := copyOf(inv)
	if t, ok := r.s.st.teams[inv.TeamID]; ok {
		out.TeamName = t.Name
	}
	if u, ok := r.s.st.users[inv.InviteeID]; ok {
		out.InviteeMail = u.Email
	}
	return out
}

func (r *fakeInvitations) GetByID(_ context.Context, id string) (*domain.Invitation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.st.invitations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.decorate(inv), nil
}

func (r *fakeInvitations) HasPending(_ context.Context, teamID, inviteeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.st.invitations {
		if inv.TeamID == teamID && inv.InviteeID == inviteeID && inv.Status == domain.InvitationPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeInvitations) Resolve(_ context.Context, id string, status domain.InvitationStatus, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.st.invitations[id]
	if !ok || inv.Status != domain.InvitationPending {
		return repository.ErrStateChanged
	}
	inv.Status = status
	inv.RespondedAt = &at
	return nil
}

func (r *fakeInvitations) DeletePending(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.st.invitations[id]
	if !ok || inv.Status != domain.InvitationPending {
		return repository.ErrStateChanged
	}
	delete(r.s.st.invitations, id)
	return nil
}

func (r *fakeInvitations) listPending(match func(*domain.Invitation) bool) []*domain.Invitation {
	var out []*domain.Invitation
	for _, inv := range r.s.st.invitations {
		if inv.Status == domain.InvitationPending && match(inv) {
			out = append(out, r.decorate(inv))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *fakeInvitations) ListPendingForInvitee(_ context.Context, userID string) ([]*domain.Invitation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.listPending(func(inv *domain.Invitation) bool { return inv.InviteeID == userID }), nil
}

func (r *fakeInvitations) ListPendingForTeam(_ context.Context, teamID string) ([]*domain.Invitation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.listPending(func(inv *domain.Invitation) bool { return inv.TeamID == teamID }), nil
}

type fakeEvents struct{ s *fakeStore }

func (r *fakeEvents) Create(_ context.Context, ev *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ev.ID = uuid.NewString()
	ev.CreatedAt = r.s.tick()
	r.s.st.events[ev.ID] = copyOf(ev)
	return nil
}

func (r *fakeEvents) AddRound(_ context.Context, round *domain.Round) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.st.rounds {
		if other.EventID == round.EventID && other.Number == round.Number {
			return conflict(repository.ReasonDuplicateRound, "rounds_event_number_key", "")
		}
	}
	round.ID = uuid.NewString()
	r.s.st.rounds[round.ID] = copyOf(round)
	return nil
}

func (r *fakeEvents) AddRule(_ context.Context, rule *domain.Rule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rule.ID = uuid.NewString()
	r.s.st.rules[rule.ID] = copyOf(rule)
	return nil
}

func (r *fakeEvents) AddPrize(_ context.Context, prize *domain.Prize) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.st.prizes {
		if other.EventID == prize.EventID && other.Position == prize.Position {
			return conflict(repository.ReasonDuplicatePrize, "prizes_event_position_key", "")
		}
	}
	prize.ID = uuid.NewString()
	r.s.st.prizes[prize.ID] = copyOf(prize)
	return nil
}

func (r *fakeEvents) AddCrew(_ context.Context, c *domain.CrewMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.st.users[c.UserID]
	if !ok {
		return fmt.Errorf("add crew: %w", repository.ErrNotFound)
	}
	key := c.EventID + "|" + c.UserID
	if _, dup := r.s.st.crew[key]; dup {
		return conflict(repository.ReasonDuplicateCrew, "event_crew_pkey", c.UserID)
	}
	c.Name = u.Name
	r.s.st.crew[key] = copyOf(c)
	return nil
}

func (r *fakeEvents) GetByID(_ context.Context, id string) (*domain.Event, error) {
	if err := r.s.lock("events.get"); err != nil {
		r.s.mu.Unlock()
		return nil, err
	}
	defer r.s.mu.Unlock()
	ev, ok := r.s.st.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyOf(ev), nil
}

func (r *fakeEvents) LockByID(ctx context.Context, id string) (*domain.Event, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeEvents) List(_ context.Context) ([]*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Event
	for _, ev := range r.s.st.events {
		out = append(out, copyOf(ev))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeEvents) GetRound(_ context.Context, eventID string, number int) (*domain.Round, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rd := range r.s.st.rounds {
		if rd.EventID == eventID && rd.Number == number {
			return copyOf(rd), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeEvents) GetFinalRound(_ context.Context, eventID string) (*domain.Round, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var final *domain.Round
	for _, rd := range r.s.st.rounds {
		if rd.EventID == eventID && (final == nil || rd.Number > final.Number) {
			final = rd
		}
	}
	if final == nil {
		return nil, repository.ErrNotFound
	}
	return copyOf(final), nil
}

func (r *fakeEvents) GetPrizeByPosition(_ context.Context, eventID string, position int) (*domain.Prize, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.st.prizes {
		if p.EventID == eventID && p.Position == position {
			return copyOf(p), nil
		}
	}
	return nil, repository.ErrNotFound
}

// listFor returns copies of the rows whose event id is in ids, ordered by less.
func listFor[T any](m map[string]*T, ids []string, eventID func(*T) string, less func(a, b *T) bool) []*T {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []*T
	for _, v := range m {
		if want[eventID(v)] {
			out = append(out, copyOf(v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (r *fakeEvents) ListRounds(_ context.Context, ids []string) ([]*domain.Round, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return listFor(r.s.st.rounds, ids, func(v *domain.Round) string { return v.EventID },
		func(a, b *domain.Round) bool { return a.Number < b.Number }), nil
}

func (r *fakeEvents) ListRules(_ context.Context, ids []string) ([]*domain.Rule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return listFor(r.s.st.rules, ids, func(v *domain.Rule) string { return v.EventID },
		func(a, b *domain.Rule) bool { return a.Position < b.Position }), nil
}

func (r *fakeEvents) ListPrizes(_ context.Context, ids []string) ([]*domain.Prize, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return listFor(r.s.st.prizes, ids, func(v *domain.Prize) string { return v.EventID },
		func(a, b *domain.Prize) bool { return a.Position < b.Position }), nil
}

func (r *fakeEvents) ListCrew(_ context.Context, ids []string) ([]*domain.CrewMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return listFor(r.s.st.crew, ids, func(v *domain.CrewMember) string { return v.EventID },
		func(a, b *domain.CrewMember) bool { return a.Name < b.Name }), nil
}

type fakeRegistrations struct{ s *fakeStore }

func (r *fakeRegistrations) Create(_ context.Context, reg *domain.Registration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.st.registrations {
		if other.EventID != reg.EventID {
			continue
		}
		if reg.UserID != nil && other.UserID != nil && *other.UserID == *reg.UserID {
			return conflict(repository.ReasonAlreadyRegistered, "registrations_event_user_key", *reg.UserID)
		}
		if reg.TeamID != nil && other.TeamID != nil && *other.TeamID == *reg.TeamID {
			return conflict(repository.ReasonAlreadyRegistered, "registrations_event_team_key", *reg.TeamID)
		}
	}
	reg.ID = uuid.NewString()
	reg.CreatedAt = r.s.tick()
	r.s.st.registrations[reg.ID] = copyOf(reg)
	return nil
}

func (r *fakeRegistrations) CountForEvent(_ context.Context, eventID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, reg := range r.s.st.registrations {
		if reg.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (r *fakeRegistrations) exists(eventID string, match func(*domain.Registration) bool) bool {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, reg := range r.s.st.registrations {
		if reg.EventID == eventID && match(reg) {
			return true
		}
	}
	return false
}

func (r *fakeRegistrations) ExistsForUser(_ context.Context, eventID, userID string) (bool, error) {
	return r.exists(eventID, func(reg *domain.Registration) bool { return reg.UserID != nil && *reg.UserID == userID }), nil
}

func (r *fakeRegistrations) ExistsForTeam(_ context.Context, eventID, teamID string) (bool, error) {
	return r.exists(eventID, func(reg *domain.Registration) bool { return reg.TeamID != nil && *reg.TeamID == teamID }), nil
}

type fakeCheckIns struct{ s *fakeStore }

func (r *fakeCheckIns) Create(_ context.Context, c *domain.CheckIn) error {
	if err := r.s.lock("checkins.create"); err != nil {
		r.s.mu.Unlock()
		return err
	}
	defer r.s.mu.Unlock()
	key := c.RoundID + "|" + c.UserID
	if _, dup := r.s.st.checkIns[key]; dup {
		return conflict(repository.ReasonAlreadyCheckedIn, "check_ins_user_round_key", c.UserID)
	}
	c.ID = uuid.NewString()
	c.CheckedInAt = r.s.tick()
	r.s.st.checkIns[key] = copyOf(c)
	return nil
}

func (r *fakeCheckIns) ListForRound(_ context.Context, roundID string, userIDs []string) ([]*domain.CheckIn, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.CheckIn
	for _, id := range userIDs {
		if c, ok := r.s.st.checkIns[roundID+"|"+id]; ok {
			out = append(out, copyOf(c))
		}
	}
	return out, nil
}

func (r *fakeCheckIns) UserCheckedIn(_ context.Context, roundID, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.st.checkIns[roundID+"|"+userID]
	return ok, nil
}

func (r *fakeCheckIns) TeamCheckedIn(_ context.Context, roundID, teamID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.st.checkIns {
		if c.RoundID == roundID && c.TeamID != nil && *c.TeamID == teamID {
			return true, nil
		}
	}
	return false, nil
}

type fakeResults struct{ s *fakeStore }

func resultKey(roundID string, userID, teamID *string) string {
	if teamID != nil {
		return roundID + "|t|" + *teamID
	}
	return roundID + "|u|" + *userID
}

func (r *fakeResults) Upsert(_ context.Context, res *domain.RoundResult) error {
	if err := r.s.lock("results.upsert"); err != nil {
		r.s.mu.Unlock()
		return err
	}
	defer r.s.mu.Unlock()
	key := resultKey(res.RoundID, res.UserID, res.TeamID)
	if existing, ok := r.s.st.results[key]; ok {
		res.ID = existing.ID
	} else {
		res.ID = uuid.NewString()
	}
	res.EvaluatedAt = r.s.tick()
	r.s.st.results[key] = copyOf(res)
	return nil
}

func (r *fakeResults) get(key string) (*domain.RoundResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.st.results[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyOf(res), nil
}

func (r *fakeResults) GetForUser(_ context.Context, roundID, userID string) (*domain.RoundResult, error) {
	return r.get(resultKey(roundID, &userID, nil))
}

func (r *fakeResults) GetForTeam(_ context.Context, roundID, teamID string) (*domain.RoundResult, error) {
	return r.get(resultKey(roundID, nil, &teamID))
}

func (r *fakeResults) ListPage(_ context.Context, roundID string, limit, offset int) ([]*domain.RoundResultEntry, int, error) {
	if err := r.s.lock("results.list"); err != nil {
		r.s.mu.Unlock()
		return nil, 0, err
	}
	defer r.s.mu.Unlock()
	var all []*domain.RoundResultEntry
	for _, res := range r.s.st.results {
		if res.RoundID != roundID {
			continue
		}
		e := &domain.RoundResultEntry{RoundResult: *res}
		if res.UserID != nil {
			e.UserName = r.s.st.users[*res.UserID].Name
		}
		if res.TeamID != nil {
			e.TeamName = r.s.st.teams[*res.TeamID].Name
		}
		all = append(all, e)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Points != all[j].Points {
			return all[i].Points > all[j].Points
		}
		return all[i].EvaluatedAt.Before(all[j].EvaluatedAt)
	})
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

type fakePrizes struct{ s *fakeStore }

func (r *fakePrizes) CreateAward(_ context.Context, a *domain.PrizeAward) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := a.PrizeID + "|" + resultKey("", a.UserID, a.TeamID)
	if _, dup := r.s.st.awards[key]; dup {
		return conflict(repository.ReasonAlreadyAwarded, "prize_awards_prize_user_key", "")
	}
	a.ID = uuid.NewString()
	a.AwardedAt = r.s.tick()
	r.s.st.awards[key] = copyOf(a)
	return nil
}

// Fixture helpers. They write straight into state and bypass service rules.

type userOpt func(*domain.User)

func withInstitution(id string) userOpt { return func(u *domain.User) { u.InstitutionID = id } }
func withPayment(p domain.PaymentStatus) userOpt {
	return func(u *domain.User) { u.PaymentStatus = p }
}
func withEmail(e string) userOpt { return func(u *domain.User) { u.Email = e } }
func withRole(r domain.Role) userOpt { return func(u *domain.User) { u.Role = r } }
func withIncompleteProfile() userOpt { return func(u *domain.User) { u.ProfileCompleted = false } }

func (s *fakeStore) addUser(opts ...userOpt) *domain.User {
	u := &domain.User{
		ID:               uuid.NewString(),
		Email:            strings.ToLower(gofakeit.Email()),
		Name:             gofakeit.Name(),
		Role:             domain.RoleParticipant,
		PaymentStatus:    domain.PaymentPaid,
		ProfileCompleted: true,
		InstitutionID:    "inst2",
		CreatedAt:        s.clock,
	}
	for _, o := range opts {
		o(u)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.users[u.ID] = copyOf(u)
	return u
}

// addEvent creates an open event with rounds numbered 1..rounds and prizes at positions 1..prizes.
func (s *fakeStore) addEvent(mode domain.ParticipationMode, rounds, prizes int) (*domain.Event, []*domain.Round) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev := &domain.Event{
		ID:          uuid.NewString(),
		Name:        gofakeit.AppName(),
		Mode:        mode,
		Capacity:    100,
		MinTeamSize: 1,
		MaxTeamSize: 4,
		OpensAt:     s.clock.Add(-24 * time.Hour),
		ClosesAt:    s.clock.Add(24 * time.Hour),
		CreatedAt:   s.clock,
	}
	if mode == domain.ModeSolo {
		ev.MaxTeamSize = 1
	}
	s.st.events[ev.ID] = copyOf(ev)
	var rs []*domain.Round
	for n := 1; n <= rounds; n++ {
		rd := &domain.Round{ID: uuid.NewString(), EventID: ev.ID, Number: n}
		s.st.rounds[rd.ID] = copyOf(rd)
		rs = append(rs, rd)
	}
	for p := 1; p <= prizes; p++ {
		pz := &domain.Prize{ID: uuid.NewString(), EventID: ev.ID, Position: p, Reward: fmt.Sprintf("Prize %d", p)}
		s.st.prizes[pz.ID] = pz
	}
	return ev, rs
}

// addTeam creates a team led by leader with the given extra members.
func (s *fakeStore) addTeam(name string, leader *domain.User, members ...*domain.User) *domain.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &domain.Team{ID: uuid.NewString(), Name: name, LeaderID: leader.ID, CreatedAt: s.tick()}
	s.st.teams[t.ID] = copyOf(t)
	m := map[string]time.Time{leader.ID: s.tick()}
	for _, u := range members {
		m[u.ID] = s.tick()
	}
	s.st.members[t.ID] = m
	return t
}

// registerTeam binds and registers the team for the event.
func (s *fakeStore) registerTeam(t *domain.Team, ev *domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	eventID, teamID := ev.ID, t.ID
	s.st.teams[t.ID].EventID = &eventID
	t.EventID = &eventID
	reg := &domain.Registration{ID: uuid.NewString(), EventID: eventID, TeamID: &teamID, CreatedAt: s.tick()}
	s.st.registrations[reg.ID] = reg
}

func (s *fakeStore) registerSolo(u *domain.User, ev *domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID := u.ID
	reg := &domain.Registration{ID: uuid.NewString(), EventID: ev.ID, UserID: &userID, CreatedAt: s.tick()}
	s.st.registrations[reg.ID] = reg
}

func (s *fakeStore) markCheckedIn(rd *domain.Round, u *domain.User, teamID *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &domain.CheckIn{ID: uuid.NewString(), RoundID: rd.ID, UserID: u.ID, TeamID: teamID, CheckedInAt: s.tick()}
	s.st.checkIns[rd.ID+"|"+u.ID] = c
}

func (s *fakeStore) putResult(rd *domain.Round, userID, teamID *string, status domain.ResultStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := &domain.RoundResult{ID: uuid.NewString(), RoundID: rd.ID, UserID: userID, TeamID: teamID, Status: status, EvaluatedAt: s.tick()}
	s.st.results[resultKey(rd.ID, userID, teamID)] = res
}

// counts reports row totals used by all-or-nothing assertions.
func (s *fakeStore) counts() (teams, invitations, members, checkIns int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.st.members {
		members += len(m)
	}
	return len(s.st.teams), len(s.st.invitations), members, len(s.st.checkIns)
}

func (s *fakeStore) isCheckedIn(rd *domain.Round, u *domain.User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.st.checkIns[rd.ID+"|"+u.ID]
	return ok
}

func ptr[T any](v T) *T { return &v }

var (
	crewActor      = domain.Identity{UserID: "crew-1", Role: domain.RoleCrew}
	organizerActor = domain.Identity{UserID: "org-1", Role: domain.RoleOrganizer}
	participant    = domain.Identity{UserID: "someone", Role: domain.RoleParticipant}
)

func testLogger(t *testing.T) *zap.Logger {
	t.Helper()
	return zap.NewNop()
}
