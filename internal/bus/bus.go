// Package bus implements the in-process notification bus that lets the
// navigator, the editor, and the bin view signal each other without a
// shared owner.
package bus

import (
	"log/slog"
	"sync"
)

// Topic names shared across components. The payload shapes documented
// here are the only contract between publisher and subscriber.
const (
	// TopicTreeRefresh asks tree consumers to re-fetch. Payload: nil.
	TopicTreeRefresh = "tree:refresh-requested"
	// TopicDocumentRenamed announces a title change. Payload: Renamed.
	TopicDocumentRenamed = "document:renamed"
	// TopicDocumentCreateRequested asks the service to create a note.
	// Payload: CreateRequest.
	TopicDocumentCreateRequested = "document:create-requested"

	TopicDocumentCreated = "document:created"
	TopicDocumentDeleted = "document:deleted"
	TopicFolderChanged   = "folder:changed"
	TopicConfigReloaded  = "config:reloaded"
)

// Renamed is the payload for TopicDocumentRenamed.
type Renamed struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// CreateRequest is the payload for TopicDocumentCreateRequested.
type CreateRequest struct {
	Title    string `json:"title"`
	FolderID *int64 `json:"folderId,omitempty"`
}

// Handler receives a published payload.
type Handler func(payload any)

type subscriber struct {
	id int64
	fn Handler
}

// Bus is a topic-keyed publish/subscribe registry. Publish delivers
// synchronously, in registration order, with each handler isolated so
// one failing subscriber cannot starve the rest.
type Bus struct {
	mu     sync.RWMutex
	nextID int64
	topics map[string][]subscriber
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{topics: make(map[string][]subscriber)}
}

// Subscribe registers a handler for the topic and returns a disposer.
// Components must call the disposer on teardown so handlers are not
// invoked for dead state.
func (b *Bus) Subscribe(topic string, fn Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.topics[topic] = append(b.topics[topic], subscriber{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.topics[topic]
		for i, s := range subs {
			if s.id == id {
				b.topics[topic] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Publish invokes all handlers currently registered for the topic, in
// registration order. Handlers registered or removed during delivery
// take effect on the next publish.
func (b *Bus) Publish(topic string, payload any) {
	b.mu.RLock()
	subs := make([]subscriber, len(b.topics[topic]))
	copy(subs, b.topics[topic])
	b.mu.RUnlock()

	for _, s := range subs {
		invoke(topic, s.fn, payload)
	}
}

func invoke(topic string, fn Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("bus: subscriber panicked",
				slog.String("topic", topic),
				slog.Any("panic", r))
		}
	}()
	fn(payload)
}
