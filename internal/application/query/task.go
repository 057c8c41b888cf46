package query

import (
	"context"
	"sync"

	"github.com/doeshing/budgetq/internal/domain"
)

// Outcome is the terminal result of a submitted query.
type Outcome string

const (
	OutcomePending   Outcome = "pending"
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	// OutcomeDiscarded means the response arrived after the request was
	// superseded and did not change any state.
	OutcomeDiscarded Outcome = "discarded"
)

// Task tracks one submission from Begin to its completion.
type Task struct {
	seq  uint64
	text string
	done chan struct{}

	mu      sync.Mutex
	outcome Outcome
	err     error
	entry   *domain.HistoryEntry
}

func newTask(seq uint64, text string) *Task {
	return &Task{seq: seq, text: text, done: make(chan struct{}), outcome: OutcomePending}
}

// Seq is the lifecycle sequence number assigned at submit.
func (t *Task) Seq() uint64 { return t.seq }

// Text is the submitted question.
func (t *Task) Text() string { return t.text }

// Done is closed once the outcome is known.
func (t *Task) Done() <-chan struct{} { return t.done }

// Outcome returns the current outcome, OutcomePending until Done is closed.
func (t *Task) Outcome() Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.outcome
}

// Err is the gateway error of a failed or discarded request.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Entry returns the history entry recorded for a successful request.
func (t *Task) Entry() (domain.HistoryEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.entry == nil {
		return domain.HistoryEntry{}, false
	}
	return t.entry.Clone(), true
}

// Wait blocks until the task completes or ctx ends.
func (t *Task) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-t.done:
		return t.Outcome(), nil
	case <-ctx.Done():
		return OutcomePending, ctx.Err()
	}
}

func (t *Task) finish(outcome Outcome, err error, entry *domain.HistoryEntry) {
	t.mu.Lock()
	t.outcome = outcome
	t.err = err
	t.entry = entry
	t.mu.Unlock()
	close(t.done)
}
