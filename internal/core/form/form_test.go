package form

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/xi-predictor/internal/core/catalog"
	"github.com/charleschow/xi-predictor/internal/core/lineup"
	"github.com/charleschow/xi-predictor/internal/core/match"
)

type mockPredictor struct {
	mock.Mock
}

func (m *mockPredictor) Predict(ctx context.Context, cfg match.Config) (match.Result, error) {
	args := m.Called(ctx, cfg)
	return args.Get(0).(match.Result), args.Error(1)
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	players := make([]string, 30)
	for i := range players {
		players[i] = fmt.Sprintf("Player %02d", i)
	}
	c, err := catalog.New(
		[]string{"Chennai Super Kings", "Mumbai Indians", "Punjab Kings"},
		[]string{"Wankhede Stadium, Mumbai"},
		players,
	)
	require.NoError(t, err)
	return c
}

func fill(t *testing.T, s *lineup.Selector, offset int) {
	t.Helper()
	for i := range lineup.Size {
		require.NoError(t, s.Assign(i, fmt.Sprintf("Player %02d", offset+i)))
	}
}

// completeForm returns a form that passes validation.
func completeForm(t *testing.T) *Form {
	t.Helper()
	f := New(testCatalog(t))
	require.NoError(t, f.SetTeam(Team1, "Chennai Super Kings"))
	require.NoError(t, f.SetTeam(Team2, "Mumbai Indians"))
	require.NoError(t, f.SetVenue("Wankhede Stadium, Mumbai"))
	require.NoError(t, f.SetTossWinner("Mumbai Indians"))
	require.NoError(t, f.SetTossDecision(match.DecisionField))
	fill(t, f.Lineup(Team1), 0)
	fill(t, f.Lineup(Team2), 11)
	return f
}

func validationCode(t *testing.T, err error) ValidationCode {
	t.Helper()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	return ve.Code
}

func TestValidateOrder(t *testing.T) {
	f := New(testCatalog(t))
	_, err := f.Validate()
	assert.Equal(t, CodeTeamsMissing, validationCode(t, err))

	require.NoError(t, f.SetTeam(Team1, "Mumbai Indians"))
	_, err = f.Validate()
	assert.Equal(t, CodeTeamsMissing, validationCode(t, err))

	require.NoError(t, f.SetTeam(Team2, "Mumbai Indians"))
	_, err = f.Validate()
	assert.Equal(t, CodeTeamsIdentical, validationCode(t, err))
	assert.Equal(t, "Teams must be different", err.Error())

	require.NoError(t, f.SetTeam(Team2, "Punjab Kings"))
	_, err = f.Validate()
	assert.Equal(t, CodeVenueMissing, validationCode(t, err))

	require.NoError(t, f.SetVenue("Wankhede Stadium, Mumbai"))
	_, err = f.Validate()
	assert.Equal(t, CodeTossWinnerMissing, validationCode(t, err))

	require.NoError(t, f.SetTossWinner("Punjab Kings"))
	_, err = f.Validate()
	assert.Equal(t, CodeLineupIncomplete, validationCode(t, err))

	fill(t, f.Lineup(Team1), 0)
	_, err = f.Validate()
	assert.Equal(t, CodeLineupIncomplete, validationCode(t, err), "second lineup still empty")

	fill(t, f.Lineup(Team2), 11)
	cfg, err := f.Validate()
	require.NoError(t, err)
	assert.Equal(t, "Mumbai Indians", cfg.Team1)
	assert.Equal(t, "Punjab Kings", cfg.Team2)
	assert.Len(t, cfg.XI1, 11)
	assert.Len(t, cfg.XI2, 11)
	assert.Equal(t, match.Toss{Winner: "Punjab Kings", Decision: match.DecisionBat}, cfg.Toss)
}

func TestSubmitRejectsIdenticalTeamsWithoutCallingPredictor(t *testing.T) {
	f := completeForm(t)
	require.NoError(t, f.SetTeam(Team2, "Chennai Super Kings"))

	p := new(mockPredictor)
	_, err := f.Submit(context.Background(), p)
	assert.Equal(t, CodeTeamsIdentical, validationCode(t, err))
	p.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything)
	assert.False(t, f.Submitting())
}

func TestSubmitRejectsIncompleteLineupWithoutCallingPredictor(t *testing.T) {
	f := completeForm(t)
	require.NoError(t, f.Lineup(Team2).Clear(10))

	p := new(mockPredictor)
	_, err := f.Submit(context.Background(), p)
	assert.Equal(t, CodeLineupIncomplete, validationCode(t, err))
	p.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything)
}

func TestSubmitSuccessStoresResult(t *testing.T) {
	f := completeForm(t)
	want := match.Result{Team1: "Chennai Super Kings", Team2: "Mumbai Indians",
		Team1WinProb: match.Prob(0.62), Team2WinProb: match.Prob(0.38)}

	p := new(mockPredictor)
	p.On("Predict", mock.Anything, mock.MatchedBy(func(cfg match.Config) bool {
		return cfg.Team1 == "Chennai Super Kings" && cfg.Toss.Decision == match.DecisionField && len(cfg.XI2) == 11
	})).Return(want, nil).Once()

	got, err := f.Submit(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	require.NotNil(t, f.Result())
	assert.Equal(t, want, *f.Result())
	assert.Empty(t, f.Notice())
	p.AssertExpectations(t)
}

func TestSubmitFailureClearsPreviousResult(t *testing.T) {
	f := completeForm(t)
	p := new(mockPredictor)
	p.On("Predict", mock.Anything, mock.Anything).
		Return(match.Result{Team1WinProb: match.Prob(0.5), Team2WinProb: match.Prob(0.5)}, nil).Once()
	p.On("Predict", mock.Anything, mock.Anything).
		Return(match.Result{}, errors.New("502 bad gateway")).Once()

	_, err := f.Submit(context.Background(), p)
	require.NoError(t, err)
	require.NotNil(t, f.Result())

	_, err = f.Submit(context.Background(), p)
	require.Error(t, err)
	assert.Nil(t, f.Result())
	assert.Equal(t, FailureNotice, f.Notice())
	assert.False(t, f.Submitting(), "form is editable again")
}

func TestBeginSubmitBlocksSecondSubmit(t *testing.T) {
	f := completeForm(t)
	_, err := f.BeginSubmit()
	require.NoError(t, err)
	assert.True(t, f.Submitting())

	_, err = f.BeginSubmit()
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	f.CompleteSubmit(match.Result{}, nil)
	assert.False(t, f.Submitting())
	_, err = f.BeginSubmit()
	assert.NoError(t, err)
}

func TestValidationFailureLeavesStateUntouched(t *testing.T) {
	f := completeForm(t)
	f.CompleteSubmit(match.Result{Team1WinProb: match.Prob(0.7), Team2WinProb: match.Prob(0.3)}, nil)
	require.NoError(t, f.SetVenue(""))

	_, err := f.BeginSubmit()
	require.Error(t, err)
	assert.NotNil(t, f.Result())
	assert.False(t, f.Submitting())
}

func TestChangingTeamResetsLineup(t *testing.T) {
	f := completeForm(t)
	require.NoError(t, f.Lineup(Team1).Clear(3))
	require.Equal(t, 10, f.Lineup(Team1).CompletionCount())

	require.NoError(t, f.SetTeam(Team1, "Punjab Kings"))
	assert.Equal(t, 0, f.Lineup(Team1).CompletionCount())
	assert.Equal(t, "Punjab Kings", f.Lineup(Team1).Team())
	assert.Equal(t, 11, f.Lineup(Team2).CompletionCount(), "other side untouched")
}

func TestChangingTeamClearsStaleTossWinner(t *testing.T) {
	f := completeForm(t)
	require.Equal(t, "Mumbai Indians", f.TossWinner())

	require.NoError(t, f.SetTeam(Team1, "Punjab Kings"))
	assert.Equal(t, "Mumbai Indians", f.TossWinner(), "toss winner was the other team")

	require.NoError(t, f.SetTeam(Team2, "Chennai Super Kings"))
	assert.Equal(t, "", f.TossWinner())
}

func TestSettingSameTeamKeepsLineup(t *testing.T) {
	f := completeForm(t)
	require.NoError(t, f.SetTeam(Team1, "Chennai Super Kings"))
	assert.True(t, f.Lineup(Team1).Ready())
}

func TestSettersValidateAgainstCatalog(t *testing.T) {
	f := New(testCatalog(t))
	assert.ErrorIs(t, f.SetTeam(Team1, "Nowhere FC"), ErrUnknownTeam)
	assert.ErrorIs(t, f.SetTeam(Side(3), "Mumbai Indians"), ErrUnknownSide)
	assert.ErrorIs(t, f.SetVenue("Lord's"), ErrUnknownVenue)
	assert.ErrorIs(t, f.SetTossWinner("Mumbai Indians"), ErrTossWinnerNotPlaying)
	assert.Error(t, f.SetTossDecision("bowl"))
}

func TestLineupsExcludeEachOther(t *testing.T) {
	f := completeForm(t)
	require.NoError(t, f.Lineup(Team2).Clear(0))

	var dup *lineup.DuplicatePlayerError
	require.ErrorAs(t, f.Lineup(Team2).Assign(0, "Player 00"), &dup)
	assert.True(t, dup.Opponent)
	assert.Equal(t, "Chennai Super Kings", dup.Team)
}

func TestFocusBlursOtherSide(t *testing.T) {
	f := New(testCatalog(t))
	require.NoError(t, f.Focus(Team1, 2))
	require.NoError(t, f.Focus(Team2, 5))

	_, ok := f.Lineup(Team1).Focused()
	assert.False(t, ok)
	slot, ok := f.Lineup(Team2).Focused()
	assert.True(t, ok)
	assert.Equal(t, 5, slot)

	require.NoError(t, f.SetSearch(Team1, 0, "pl"))
	_, ok = f.Lineup(Team2).Focused()
	assert.False(t, ok)

	f.BlurAll()
	_, ok = f.Lineup(Team1).Focused()
	assert.False(t, ok)
}

func TestParseSide(t *testing.T) {
	s, err := ParseSide("team2")
	require.NoError(t, err)
	assert.Equal(t, Team2, s)
	assert.Equal(t, "team2", s.String())

	_, err = ParseSide("3")
	assert.ErrorIs(t, err, ErrUnknownSide)
}

func TestViewCopiesResult(t *testing.T) {
	f := completeForm(t)
	f.CompleteSubmit(match.Result{Team1: "A", Team1WinProb: match.Prob(0.6), Team2WinProb: match.Prob(0.4)}, nil)

	v := f.View()
	require.NotNil(t, v.Result)
	v.Result.Team1 = "mutated"
	assert.Equal(t, "A", f.Result().Team1)
	assert.Equal(t, 11, v.XI1.Selected)
	assert.Equal(t, match.DecisionField, v.TossDecision)
}
