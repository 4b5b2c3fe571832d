package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishInvokesHandlersInOrder(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.Subscribe(EventNotice, func(e Event) error {
		got = append(got, "first:"+e.SessionID)
		return errors.New("ignored")
	})
	bus.Subscribe(EventNotice, func(e Event) error {
		got = append(got, "second:"+e.SessionID)
		return nil
	})
	bus.Subscribe(EventFormUpdated, func(Event) error {
		got = append(got, "wrong type")
		return nil
	})

	bus.Publish(New(EventNotice, "s1", NoticeEvent{Reason: "duplicate_player"}))
	assert.Equal(t, []string{"first:s1", "second:s1"}, got)
}

func TestSubscribeAllSeesEveryType(t *testing.T) {
	bus := NewBus()
	seen := map[EventType]int{}
	bus.SubscribeAll(func(e Event) error {
		seen[e.Type]++
		return nil
	})
	for _, typ := range Types {
		bus.Publish(New(typ, "s", nil))
	}
	assert.Len(t, seen, len(Types))
}

func TestNewStampsEvent(t *testing.T) {
	a := New(EventPredictionReady, "s", nil)
	b := New(EventPredictionReady, "s", nil)
	require.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.Timestamp.IsZero())
}
