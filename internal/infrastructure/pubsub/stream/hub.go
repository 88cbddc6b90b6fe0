// Package streampubsub fans out published events to in-process listeners,
// like the websocket clients of the http interface.
package streampubsub

import (
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/futarchy-daemon/internal/core/ports"
)

// DefaultBufferSize is the number of events buffered for every listener.
const DefaultBufferSize = 256

type listener struct {
	topic string
	ch    chan ports.Event
}

func (l *listener) accepts(topic string) bool {
	return l.topic == ports.AnyTopic || l.topic == ports.UnspecifiedTopic ||
		l.topic == topic
}

// Hub is a ports.EventStream. Events are never blocked by slow listeners:
// once a listener buffer is full further events are dropped for it.
type Hub struct {
	lock       *sync.RWMutex
	listeners  map[*listener]struct{}
	bufferSize int
	closed     bool
}

func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Hub{
		lock:       &sync.RWMutex{},
		listeners:  make(map[*listener]struct{}),
		bufferSize: bufferSize,
	}
}

func (h *Hub) Listen(topic string) (<-chan ports.Event, func()) {
	l := &listener{topic, make(chan ports.Event, h.bufferSize)}

	h.lock.Lock()
	defer h.lock.Unlock()

	if h.closed {
		close(l.ch)
		return l.ch, func() {}
	}
	h.listeners[l] = struct{}{}

	var once sync.Once
	return l.ch, func() {
		once.Do(func() { h.remove(l) })
	}
}

// Broadcast sends the event to every listener of its topic.
func (h *Hub) Broadcast(topic, payload string) {
	h.lock.RLock()
	defer h.lock.RUnlock()

	event := ports.Event{Topic: topic, Payload: payload}
	for l := range h.listeners {
		if !l.accepts(topic) {
			continue
		}
		select {
		case l.ch <- event:
		default:
			log.Warnf("dropping %s event for slow listener", topic)
		}
	}
}

// NumListeners returns the number of active listeners.
func (h *Hub) NumListeners() int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return len(h.listeners)
}

// Close closes the channels of all listeners.
func (h *Hub) Close() {
	h.lock.Lock()
	defer h.lock.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for l := range h.listeners {
		close(l.ch)
		delete(h.listeners, l)
	}
}

func (h *Hub) remove(l *listener) {
	h.lock.Lock()
	defer h.lock.Unlock()

	if _, ok := h.listeners[l]; !ok {
		return
	}
	delete(h.listeners, l)
	close(l.ch)
}
