package service

import (
	"context"
	"net/http"
	"testing"

	"fest-backend/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestResultService(store *fakeStore, cache *CacheService) *ResultService {
	return NewResultService(store, cache, nil, zap.NewNop())
}

func userResult(userID string, points float64, status domain.ResultStatus) *domain.RoundResult {
	return &domain.RoundResult{UserID: ptr(userID), Points: points, Status: status}
}

func TestAssignRoundResults_PartialBatch(t *testing.T) {
	store := newFakeStore()
	svc := newTestResultService(store, nil)
	ev, rounds := store.addEvent(domain.ModeSolo, 3, 0)
	final := rounds[2]

	var items []*domain.RoundResult
	for i := 0; i < 4; i++ {
		u := store.addUser()
		store.registerSolo(u, ev)
		store.markCheckedIn(final, u, nil)
		items = append(items, userResult(u.ID, float64(10*(i+1)), domain.ResultQualified))
	}
	items = append(items, userResult("ghost-user", 5, domain.ResultEliminated))

	out, err := svc.AssignRoundResults(context.Background(), crewActor, ev.ID, 3, items)
	require.NoError(t, err)
	assert.Equal(t, 4, out.RecordedCount)
	assert.Len(t, out.Results, 4)
	assert.Equal(t, []ItemError{{UserID: "ghost-user", Error: ItemNotFound}}, out.UserErrors)
	assert.Empty(t, out.TeamErrors)
	assert.Equal(t, BatchPartial, out.Status())
	assert.Equal(t, http.StatusMultiStatus, out.HTTPStatus())

	for _, r := range out.Results {
		assert.Equal(t, final.ID, r.RoundID)
		assert.Equal(t, crewActor.UserID, r.EvaluatedBy)
	}
}

func TestAssignRoundResults_ItemFailures(t *testing.T) {
	store := newFakeStore()
	svc := newTestResultService(store, nil)
	ctx := context.Background()
	ev, rounds := store.addEvent(domain.ModeTeam, 2, 0)

	present := store.addUser()
	absent := store.addUser()
	team := store.addTeam("Echo", present)
	store.registerTeam(team, ev)
	store.markCheckedIn(rounds[0], present, &team.ID)
	idle := store.addTeam("Idle", absent)
	store.registerTeam(idle, ev)

	items := []*domain.RoundResult{
		{TeamID: &team.ID, Points: 80, Status: domain.ResultQualified},
		{TeamID: &idle.ID, Points: 10, Status: domain.ResultEliminated},
		{TeamID: ptr("ghost-team"), Points: 1, Status: domain.ResultEliminated},
		userResult(absent.ID, 3, domain.ResultEliminated),
	}

	out, err := svc.AssignRoundResults(ctx, crewActor, ev.ID, 1, items)
	require.NoError(t, err)
	assert.Equal(t, 1, out.RecordedCount)
	want := []ItemError{
		{TeamID: idle.ID, Error: ItemNotCheckedIn},
		{TeamID: "ghost-team", Error: ItemNotFound},
	}
	if diff := cmp.Diff(want, out.TeamErrors); diff != "" {
		t.Errorf("team errors mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []ItemError{{UserID: absent.ID, Error: ItemNotCheckedIn}}, out.UserErrors)
	assert.Equal(t, out.RecordedCount+out.Failed(), len(items))
}

func TestAssignRoundResults_WholeBatchFailures(t *testing.T) {
	store := newFakeStore()
	svc := newTestResultService(store, nil)
	ctx := context.Background()
	ev, rounds := store.addEvent(domain.ModeSolo, 1, 0)
	u := store.addUser()
	store.markCheckedIn(rounds[0], u, nil)
	items := []*domain.RoundResult{userResult(u.ID, 1, domain.ResultQualified), userResult("x", 1, domain.ResultQualified)}

	out, err := svc.AssignRoundResults(ctx, crewActor, ev.ID, 7, items)
	require.NoError(t, err)
	assert.Zero(t, out.RecordedCount)
	assert.Equal(t, []ItemError{{UserID: u.ID, Error: ItemRoundNotFound}, {UserID: "x", Error: ItemRoundNotFound}}, out.UserErrors)
	assert.Equal(t, http.StatusBadRequest, out.HTTPStatus())

	store.fail["results.upsert"] = assert.AnError
	out, err = svc.AssignRoundResults(ctx, crewActor, ev.ID, 1, items[:1])
	require.NoError(t, err)
	assert.Equal(t, []ItemError{{UserID: u.ID, Error: ItemInternalError}}, out.UserErrors)

	_, err = svc.AssignRoundResults(ctx, participant, ev.ID, 1, items)
	requireAppErr(t, err, http.StatusForbidden, ReasonForbiddenRole)
}

func TestAssignRoundResults_CorrectionReplacesResult(t *testing.T) {
	store := newFakeStore()
	svc := newTestResultService(store, nil)
	ctx := context.Background()
	ev, rounds := store.addEvent(domain.ModeSolo, 1, 0)
	u := store.addUser()
	store.markCheckedIn(rounds[0], u, nil)

	_, err := svc.AssignRoundResults(ctx, crewActor, ev.ID, 1, []*domain.RoundResult{userResult(u.ID, 40, domain.ResultEliminated)})
	require.NoError(t, err)
	_, err = svc.AssignRoundResults(ctx, crewActor, ev.ID, 1, []*domain.RoundResult{userResult(u.ID, 75, domain.ResultQualified)})
	require.NoError(t, err)

	page, err := svc.GetRoundResults(ctx, ev.ID, 1, 1, 20)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, 75.0, page.Results[0].Points)
	assert.Equal(t, domain.ResultQualified, page.Results[0].Status)
}

func TestGetRoundResults_PagesAndAttachesMembers(t *testing.T) {
	store := newFakeStore()
	svc := newTestResultService(store, nil)
	ctx := context.Background()
	ev, rounds := store.addEvent(domain.ModeTeam, 1, 0)

	var items []*domain.RoundResult
	var teams []*domain.Team
	for i := 0; i < 5; i++ {
		leader := store.addUser()
		mate := store.addUser()
		team := store.addTeam(string(rune('A'+i))+" team", leader, mate)
		store.registerTeam(team, ev)
		store.markCheckedIn(rounds[0], leader, &team.ID)
		teams = append(teams, team)
		items = append(items, &domain.RoundResult{TeamID: &team.ID, Points: float64(i * 10), Status: domain.ResultQualified})
	}
	out, err := svc.AssignRoundResults(ctx, crewActor, ev.ID, 1, items)
	require.NoError(t, err)
	require.Equal(t, 5, out.RecordedCount)

	page, err := svc.GetRoundResults(ctx, ev.ID, 1, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Results, 2)
	assert.Equal(t, teams[2].ID, *page.Results[0].TeamID, "ordered by points descending")
	assert.Equal(t, teams[1].ID, *page.Results[1].TeamID)
	for _, e := range page.Results {
		assert.Len(t, e.Members, 2)
		assert.NotEmpty(t, e.TeamName)
	}

	empty, err := svc.GetRoundResults(ctx, ev.ID, 1, 9, 2)
	require.NoError(t, err)
	assert.NotNil(t, empty.Results)
	assert.Empty(t, empty.Results)

	_, err = svc.GetRoundResults(ctx, ev.ID, 4, 1, 2)
	requireAppErr(t, err, http.StatusNotFound, ReasonRoundNotFound)
}

func TestGetRoundResults_CacheInvalidatedOnWrite(t *testing.T) {
	_, _, cache, _ := setupTestCache(t)
	store := newFakeStore()
	svc := newTestResultService(store, cache)
	ctx := context.Background()
	ev, rounds := store.addEvent(domain.ModeSolo, 1, 0)
	first := store.addUser()
	second := store.addUser()
	store.markCheckedIn(rounds[0], first, nil)
	store.markCheckedIn(rounds[0], second, nil)

	_, err := svc.AssignRoundResults(ctx, crewActor, ev.ID, 1, []*domain.RoundResult{userResult(first.ID, 10, domain.ResultQualified)})
	require.NoError(t, err)
	page, err := svc.GetRoundResults(ctx, ev.ID, 1, 1, 20)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)

	// Served from cache while the store is unavailable.
	store.fail["results.list"] = assert.AnError
	page, err = svc.GetRoundResults(ctx, ev.ID, 1, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	delete(store.fail, "results.list")

	_, err = svc.AssignRoundResults(ctx, crewActor, ev.ID, 1, []*domain.RoundResult{userResult(second.ID, 20, domain.ResultQualified)})
	require.NoError(t, err)
	page, err = svc.GetRoundResults(ctx, ev.ID, 1, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, second.ID, *page.Results[0].UserID)
}

func TestAssignEventPrizes(t *testing.T) {
	store := newFakeStore()
	svc := newTestResultService(store, nil)
	ctx := context.Background()
	ev, rounds := store.addEvent(domain.ModeSolo, 2, 2)
	final := rounds[1]
	winner := store.addUser()
	early := store.addUser()
	store.markCheckedIn(final, winner, nil)
	store.markCheckedIn(rounds[0], early, nil)

	items := []*domain.PrizeAward{
		{Position: 1, UserID: &winner.ID},
		{Position: 2, UserID: &early.ID},
		{Position: 9, UserID: &winner.ID},
		{Position: 1, UserID: &winner.ID},
		{Position: 2, TeamID: ptr("ghost-team")},
	}
	out, err := svc.AssignEventPrizes(ctx, organizerActor, ev.ID, items)
	require.NoError(t, err)
	assert.Equal(t, 1, out.RecordedCount)
	assert.Equal(t, 1, out.Results[0].Position)
	assert.Equal(t, organizerActor.UserID, out.Results[0].AwardedBy)

	want := []ItemError{
		{UserID: early.ID, Error: ItemNotCheckedInFinal},
		{UserID: winner.ID, Error: ItemPrizeNotFound},
		{UserID: winner.ID, Error: ItemAlreadyAwarded},
	}
	if diff := cmp.Diff(want, out.UserErrors); diff != "" {
		t.Errorf("user errors mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []ItemError{{TeamID: "ghost-team", Error: ItemNotFound}}, out.TeamErrors)
	assert.Equal(t, http.StatusMultiStatus, out.HTTPStatus())
}

func TestAssignEventPrizes_EventLevelFailures(t *testing.T) {
	store := newFakeStore()
	svc := newTestResultService(store, nil)
	ctx := context.Background()
	bare, _ := store.addEvent(domain.ModeSolo, 0, 1)
	u := store.addUser()
	items := []*domain.PrizeAward{{Position: 1, UserID: &u.ID}}

	out, err := svc.AssignEventPrizes(ctx, organizerActor, "missing", items)
	require.NoError(t, err)
	assert.Equal(t, []ItemError{{UserID: u.ID, Error: ItemEventNotFound}}, out.UserErrors)

	out, err = svc.AssignEventPrizes(ctx, organizerActor, bare.ID, items)
	require.NoError(t, err)
	assert.Equal(t, []ItemError{{UserID: u.ID, Error: ItemNoRounds}}, out.UserErrors)
	assert.Equal(t, BatchFailure, out.Status())

	_, err = svc.AssignEventPrizes(ctx, crewActor, bare.ID, items)
	requireAppErr(t, err, http.StatusForbidden, ReasonForbiddenRole)
}
