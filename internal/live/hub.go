// Package live re-delivers an owner's full result set whenever the
// underlying records change. Subscribers register on a topic; writers call
// Notify after their write has committed.
package live

import (
	"sync"

	"github.com/google/uuid"
)

// ResponseTopic carries changes to an owner's questionnaire responses.
func ResponseTopic(owner string) string {
	return "responses/" + owner
}

// NoticeTopic carries changes to an owner's transient notices.
func NoticeTopic(owner string) string {
	return "notices/" + owner
}

// Subscription is one registered listener. C receives a value whenever the
// topic changed since the last receive; signals are coalesced.
type Subscription struct {
	ID    string
	Topic string
	C     <-chan struct{}
	ch    chan struct{}
}

// Hub tracks subscriptions per topic. All operations are safe for
// concurrent use.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[*Subscription]struct{})}
}

// Subscribe registers a listener on topic.
func (h *Hub) Subscribe(topic string) *Subscription {
	ch := make(chan struct{}, 1)
	sub := &Subscription{ID: uuid.New().String(), Topic: topic, C: ch, ch: ch}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Subscription]struct{})
	}
	h.topics[topic][sub] = struct{}{}
	return sub
}

// Unsubscribe removes the listener. It is safe to call more than once.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subscribers, ok := h.topics[sub.Topic]
	if !ok {
		return
	}
	delete(subscribers, sub)
	if len(subscribers) == 0 {
		delete(h.topics, sub.Topic)
	}
}

// Notify signals every subscriber of topic. A subscriber that has not yet
// consumed its previous signal keeps a single pending one.
func (h *Hub) Notify(topic string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.topics[topic] {
		select {
		case sub.ch <- struct{}{}:
		default:
		}
	}
}

// SubscriberCount returns the number of listeners on topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// TopicNotifier adapts the hub to a per-owner change callback.
type TopicNotifier struct {
	Hub   *Hub
	Topic func(owner string) string
}

// Changed notifies the owner's topic.
func (n TopicNotifier) Changed(owner string) {
	n.Hub.Notify(n.Topic(owner))
}
