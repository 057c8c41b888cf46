// Package query coordinates question submission: the lifecycle state machine,
// the gateway round trip and recording successful answers into history.
package query

import (
	"strings"
	"sync"

	"github.com/doeshing/budgetq/internal/domain"
)

// EventKind names a lifecycle transition.
type EventKind string

const (
	EventTextChanged EventKind = "text_changed"
	EventSubmitted   EventKind = "submitted"
	EventSucceeded   EventKind = "succeeded"
	EventFailed      EventKind = "failed"
	EventCleared     EventKind = "cleared"
	EventModeChanged EventKind = "mode_changed"
)

// Event is delivered to subscribers after every transition.
type Event struct {
	Kind  EventKind
	Seq   uint64
	State domain.QueryState
}

// Lifecycle is the query state machine: Idle, Pending, Succeeded, Failed.
// Each Begin is tagged with a sequence number and only the completion carrying
// the current number is applied.
type Lifecycle struct {
	mu          sync.Mutex
	state       domain.QueryState
	seq         uint64
	subscribers map[int]chan Event
	nextSub     int
}

// NewLifecycle returns an idle lifecycle using mode for visualization.
func NewLifecycle(mode domain.VisualizationMode) *Lifecycle {
	return &Lifecycle{
		state:       domain.QueryState{Visualization: mode.Resolve()},
		subscribers: map[int]chan Event{},
	}
}

// State returns a snapshot that shares nothing with the lifecycle.
func (l *Lifecycle) State() domain.QueryState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// SetQueryText replaces the question text without touching the status.
func (l *Lifecycle) SetQueryText(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Text = text
	l.emitLocked(EventTextChanged)
}

// Begin moves to Pending and returns the sequence number of the new request.
// Any earlier request still in flight is superseded.
func (l *Lifecycle) Begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	l.state.Seq = l.seq
	l.state.Loading = true
	l.state.Error = ""
	l.emitLocked(EventSubmitted)
	return l.seq
}

// Succeed stores payload if seq is the request in flight. It reports whether
// the completion was applied.
func (l *Lifecycle) Succeed(seq uint64, payload domain.ResultPayload) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.currentLocked(seq) {
		return false
	}
	stored := payload.Clone()
	l.state.Results = &stored
	l.state.Error = ""
	l.finishLocked()
	l.emitLocked(EventSucceeded)
	return true
}

// Fail records message if seq is the request in flight. The previous result
// is discarded. An empty message is replaced by the generic fallback.
func (l *Lifecycle) Fail(seq uint64, message string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.currentLocked(seq) {
		return false
	}
	if strings.TrimSpace(message) == "" {
		message = domain.FallbackErrorMessage
	}
	l.state.Error = message
	l.state.Results = nil
	l.finishLocked()
	l.emitLocked(EventFailed)
	return true
}

// Clear drops the result and error. Text, mode and any pending request are
// kept; a request still in flight will land afterwards.
func (l *Lifecycle) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Results = nil
	l.state.Error = ""
	l.emitLocked(EventCleared)
}

// SetVisualizationMode changes the chart mode. Unknown modes fall back to bar.
func (l *Lifecycle) SetVisualizationMode(mode domain.VisualizationMode) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Visualization = mode.Resolve()
	l.emitLocked(EventModeChanged)
}

// Subscribe registers an observer. Events are dropped rather than blocking
// when the buffer is full; State always has the latest snapshot. The returned
// func unsubscribes and closes the channel.
func (l *Lifecycle) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subscribers[id] = ch
	l.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subscribers, id)
			l.mu.Unlock()
			close(ch)
		})
	}
}

func (l *Lifecycle) currentLocked(seq uint64) bool {
	return l.state.Loading && seq == l.seq
}

func (l *Lifecycle) finishLocked() {
	l.state.Loading = false
	l.state.Seq = 0
}

func (l *Lifecycle) snapshotLocked() domain.QueryState {
	out := l.state
	if l.state.Results != nil {
		results := l.state.Results.Clone()
		out.Results = &results
	}
	return out
}

func (l *Lifecycle) emitLocked(kind EventKind) {
	if len(l.subscribers) == 0 {
		return
	}
	event := Event{Kind: kind, Seq: l.seq, State: l.snapshotLocked()}
	for _, ch := range l.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
