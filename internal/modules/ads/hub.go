package ads

import (
	"sync"

	"trustmrr/internal/domain"
)

const (
	EventAdBooked    = "ad.booked"
	EventAdCancelled = "ad.cancelled"
)

// SlotEvent tells live clients that a slot's calendar changed.
type SlotEvent struct {
	Type      string        `json:"type"`
	SlotID    domain.SlotID `json:"slot_id"`
	AdID      int64         `json:"ad_id"`
	StartDate string        `json:"start_date"`
	EndDate   string        `json:"end_date"`
}

func newSlotEvent(kind string, ad *domain.Advertisement) SlotEvent {
	return SlotEvent{
		Type:      kind,
		SlotID:    ad.SlotID,
		AdID:      ad.ID,
		StartDate: domain.FormatDate(ad.StartDate),
		EndDate:   domain.FormatDate(ad.EndDate),
	}
}

// subscriberBuffer is how many events a slow client may fall behind before
// it is dropped.
const subscriberBuffer = 16

// SubscriberGauge tracks the number of connected clients.
type SubscriberGauge interface {
	Set(float64)
}

// Hub fans slot events out to every subscriber.
type Hub struct {
	subscribers map[int64]chan SlotEvent
	nextID      int64
	mutex       sync.RWMutex
	gauge       SubscriberGauge
}

func NewHub(gauge SubscriberGauge) *Hub {
	return &Hub{
		subscribers: make(map[int64]chan SlotEvent),
		gauge:       gauge,
	}
}

// Subscribe registers a new client and returns its id and event channel.
func (h *Hub) Subscribe() (int64, <-chan SlotEvent) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.nextID++
	ch := make(chan SlotEvent, subscriberBuffer)
	h.subscribers[h.nextID] = ch
	h.updateGauge()
	return h.nextID, ch
}

func (h *Hub) Unsubscribe(id int64) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if ch, ok := h.subscribers[id]; ok {
		close(ch)
		delete(h.subscribers, id)
		h.updateGauge()
	}
}

// Broadcast never blocks: clients whose buffer is full are disconnected.
func (h *Hub) Broadcast(evt SlotEvent) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for id, ch := range h.subscribers {
		select {
		case ch <- evt:
		default:
			close(ch)
			delete(h.subscribers, id)
		}
	}
	h.updateGauge()
}

func (h *Hub) Count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.subscribers)
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for id, ch := range h.subscribers {
		close(ch)
		delete(h.subscribers, id)
	}
	h.updateGauge()
}

// updateGauge must be called with the mutex held.
func (h *Hub) updateGauge() {
	if h.gauge != nil {
		h.gauge.Set(float64(len(h.subscribers)))
	}
}
