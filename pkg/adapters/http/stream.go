package http

import (
	"log/slog"
	"sync"
)

// allTopics receives every broadcast.
const allTopics = "*"

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // Topic -> Set of Channels
}

// NewStreamManager creates an empty StreamManager.
func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

// Subscribe registers a channel for topic and returns it with its cancel func.
func (sm *StreamManager) Subscribe(topic string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[topic]; !ok {
		sm.subscribers[topic] = make(map[chan<- string]struct{})
	}
	sm.subscribers[topic][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[topic]; ok {
			if _, live := subs[ch]; !live {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, topic)
			}
		}
	}
}

// Broadcast sends msg to the subscribers of topic and to those of every topic.
func (sm *StreamManager) Broadcast(topic string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	targets := []string{allTopics}
	if topic != "" && topic != allTopics {
		targets = append(targets, topic)
	}
	for _, t := range targets {
		for ch := range sm.subscribers[t] {
			select {
			case ch <- msg:
			default:
				// Drop message if channel is full (slow client)
				slog.Warn("SSE: Client buffer full, dropping message", "topic", t)
			}
		}
	}
}
