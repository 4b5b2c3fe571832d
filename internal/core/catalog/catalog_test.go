package catalog

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New(
		[]string{"Mumbai Indians", "Chennai Super Kings"},
		[]string{"Wankhede Stadium, Mumbai"},
		[]string{"RG Sharma", "MS Dhoni", "José Butler", "RA Jadeja"},
	)
	require.NoError(t, err)
	return c
}

func TestNewRejectsEmptyAndDuplicateEntries(t *testing.T) {
	_, err := New([]string{"A", "  "}, []string{"V"}, []string{"P"})
	assert.ErrorIs(t, err, ErrInvalidCatalog)

	_, err = New([]string{"A"}, []string{"V", "V "}, []string{"P"})
	assert.ErrorIs(t, err, ErrInvalidCatalog)

	_, err = New([]string{"A"}, []string{"V"}, nil)
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}

func TestNewCanonicalisesNames(t *testing.T) {
	c, err := New([]string{"  Mumbai   Indians "}, []string{"V"}, []string{"José"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Mumbai Indians"}, c.Teams())
	assert.True(t, c.HasTeam("Mumbai Indians"))
	assert.True(t, c.HasPlayer("José"), "decomposed input is stored composed")
}

func TestAccessorsReturnCopies(t *testing.T) {
	c := testCatalog(t)
	teams := c.Teams()
	teams[0] = "mutated"
	assert.Equal(t, "Mumbai Indians", c.Teams()[0])
}

func TestMatchPlayersIsCaseInsensitiveAndOrdered(t *testing.T) {
	c := testCatalog(t)

	assert.Equal(t, []string{"RG Sharma", "MS Dhoni", "José Butler", "RA Jadeja"}, slices.Collect(c.MatchPlayers("")))
	assert.Equal(t, []string{"MS Dhoni"}, slices.Collect(c.MatchPlayers("DHO")))
	assert.Equal(t, []string{"José Butler"}, slices.Collect(c.MatchPlayers("JOSÉ")))
	assert.Empty(t, slices.Collect(c.MatchPlayers("zzz")))
}

func TestMatchPlayersIsRestartable(t *testing.T) {
	c := testCatalog(t)
	seq := c.MatchPlayers("a")
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestSourceReloadKeepsPreviousCatalogOnError(t *testing.T) {
	good := testCatalog(t)
	fail := false
	src, err := NewSource(context.Background(), func(context.Context) (*Catalog, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return good, nil
	})
	require.NoError(t, err)

	fail = true
	_, err = src.Reload(context.Background())
	require.Error(t, err)
	assert.Same(t, good, src.Current())
}

func TestSourceReloadConcurrentCallersSucceed(t *testing.T) {
	var calls atomic.Int32
	built := testCatalog(t)
	src, err := NewSource(context.Background(), func(context.Context) (*Catalog, error) {
		calls.Add(1)
		return built, nil
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := src.Reload(context.Background())
			assert.NoError(t, err)
			assert.NotNil(t, c)
		}()
	}
	wg.Wait()
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
	assert.Same(t, built, src.Current())
}
