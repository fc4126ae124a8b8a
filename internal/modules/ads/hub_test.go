package ads

import (
	"testing"

	"trustmrr/internal/domain"

	"github.com/stretchr/testify/assert"
)

type gaugeStub struct{ value float64 }

func (g *gaugeStub) Set(v float64) { g.value = v }

func TestHub_BroadcastReachesSubscribers(t *testing.T) {
	g := &gaugeStub{}
	h := NewHub(g)

	id1, ch1 := h.Subscribe()
	_, ch2 := h.Subscribe()
	assert.Equal(t, 2.0, g.value)

	evt := SlotEvent{Type: EventAdBooked, SlotID: domain.SlotLeft1, AdID: 9}
	h.Broadcast(evt)

	assert.Equal(t, evt, <-ch1)
	assert.Equal(t, evt, <-ch2)

	h.Unsubscribe(id1)
	_, open := <-ch1
	assert.False(t, open)
	assert.Equal(t, 1, h.Count())
	assert.Equal(t, 1.0, g.value)
}

func TestHub_DropsSlowSubscriber(t *testing.T) {
	h := NewHub(nil)
	_, ch := h.Subscribe()

	for i := 0; i <= subscriberBuffer; i++ {
		h.Broadcast(SlotEvent{Type: EventAdCancelled, AdID: int64(i)})
	}

	assert.Equal(t, 0, h.Count())
	received := 0
	for range ch {
		received++
	}
	assert.Equal(t, subscriberBuffer, received)
}

func TestHub_Close(t *testing.T) {
	h := NewHub(nil)
	id, ch := h.Subscribe()

	h.Close()
	_, open := <-ch
	assert.False(t, open)

	h.Unsubscribe(id)
	assert.Equal(t, 0, h.Count())
}
