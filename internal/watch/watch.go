// Package watch implements the publish-on-write notification hub behind the
// stores' live list views.
package watch

import (
	"context"
	"sync"
)

type Topic string

const (
	Rooms           Topic = "rooms"
	Containers      Topic = "containers"
	SubContainers   Topic = "subContainers"
	ThirdContainers Topic = "thirdContainers"
	Categories      Topic = "categories"
	Items           Topic = "items"
)

// AllTopics lists every table that publishes changes.
var AllTopics = []Topic{Rooms, Containers, SubContainers, ThirdContainers, Categories, Items}

type subscriber struct {
	topics  map[Topic]bool
	pending map[Topic]bool
	wake    chan struct{}
}

// Hub fans out change notifications to subscribers. Publish never blocks;
// repeated writes to a topic that the subscriber has not consumed yet collapse
// into a single notification.
type Hub struct {
	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*subscriber]struct{})}
}

// Subscribe returns a channel receiving the topic of every write to one of
// topics (all topics when none are given). The channel is closed when ctx is
// done.
func (h *Hub) Subscribe(ctx context.Context, topics ...Topic) <-chan Topic {
	if len(topics) == 0 {
		topics = AllTopics
	}
	sub := &subscriber{
		topics:  make(map[Topic]bool, len(topics)),
		pending: make(map[Topic]bool, len(topics)),
		wake:    make(chan struct{}, 1),
	}
	for _, t := range topics {
		sub.topics[t] = true
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	out := make(chan Topic)
	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.subs, sub)
			h.mu.Unlock()
			close(out)
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.wake:
			}
			for _, t := range h.drain(sub) {
				select {
				case out <- t:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

func (h *Hub) drain(sub *subscriber) []Topic {
	h.mu.Lock()
	defer h.mu.Unlock()
	var ready []Topic
	for _, t := range AllTopics {
		if sub.pending[t] {
			ready = append(ready, t)
			delete(sub.pending, t)
		}
	}
	return ready
}

// Publish notifies subscribers of topic. A nil hub is a no-op so stores can be
// used without observation.
func (h *Hub) Publish(topic Topic) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		if !sub.topics[topic] {
			continue
		}
		sub.pending[topic] = true
		select {
		case sub.wake <- struct{}{}:
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
