package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithTeamsFillsOnlyMissingNames(t *testing.T) {
	cfg := Config{Team1: "Gujarat Titans", Team2: "Lucknow Super Giants"}

	got := Result{Team1WinProb: Prob(0.4)}.WithTeams(cfg)
	assert.Equal(t, "Gujarat Titans", got.Team1)
	assert.Equal(t, "Lucknow Super Giants", got.Team2)
	assert.InDelta(t, 0.4, *got.Team1WinProb, 1e-9)

	got = Result{Team1: "GT", Team2: ""}.WithTeams(cfg)
	assert.Equal(t, "GT", got.Team1)
	assert.Equal(t, "Lucknow Super Giants", got.Team2)
}

func TestParseDecision(t *testing.T) {
	d, err := ParseDecision("bat")
	assert.NoError(t, err)
	assert.Equal(t, DecisionBat, d)

	_, err = ParseDecision("bowl")
	assert.ErrorContains(t, err, "bat or field")
}
