// Package events allows for the registering and receiving of node events.
// Every subscriber gets its own buffered channel and a slow subscriber
// misses events instead of slowing down the node.
package events

import (
	"fmt"
	"sync"
)

// messageBuffer is the number of events a subscriber can fall behind before
// events are dropped for it. Websocket sends can take long.
const messageBuffer = 100

// subscriber represents a registered receiver of events.
type subscriber struct {
	ch      chan string
	dropped uint64
}

// Events maintains a mapping of unique id and subscribers so goroutines
// can register and receive events.
type Events struct {
	mu       sync.RWMutex
	subs     map[string]*subscriber
	shutdown bool
}

// New constructs an events for registering and receiving events.
func New() *Events {
	return &Events{
		subs: make(map[string]*subscriber),
	}
}

// Shutdown closes and removes all channels that were provided by
// the call to Acquire. Later calls to Acquire return a closed channel.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, sub := range evt.subs {
		delete(evt.subs, id)
		close(sub.ch)
	}
	evt.shutdown = true
}

// Acquire takes a unique id and returns a channel that can be used
// to receive events.
func (evt *Events) Acquire(id string) <-chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if evt.shutdown {
		ch := make(chan string)
		close(ch)
		return ch
	}

	if sub, exists := evt.subs[id]; exists {
		return sub.ch
	}

	sub := subscriber{ch: make(chan string, messageBuffer)}
	evt.subs[id] = &sub

	return sub.ch
}

// Release closes and removes the channel that was provided by
// the call to Acquire. It returns the number of events the subscriber
// missed because it fell behind.
func (evt *Events) Release(id string) (uint64, error) {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	sub, exists := evt.subs[id]
	if !exists {
		return 0, fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.subs, id)
	close(sub.ch)

	return sub.dropped, nil
}

// Count returns the number of registered subscribers.
func (evt *Events) Count() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.subs)
}

// Send signals a message to every registered channel. Send will not block
// waiting for a receiver on any given channel.
func (evt *Events) Send(s string) {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for _, sub := range evt.subs {
		select {
		case sub.ch <- s:
		default:
			sub.dropped++
		}
	}
}
