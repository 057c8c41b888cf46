package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doeshing/budgetq/internal/application/history"
	"github.com/doeshing/budgetq/internal/domain"
	"github.com/doeshing/budgetq/internal/ports"
)

// Session composes the lifecycle, the history store and the gateway.
type Session struct {
	Gateway   ports.QueryGateway
	Lifecycle *Lifecycle
	History   *history.Store
	// Repository is optional; when set, recorded entries are persisted.
	Repository ports.HistoryRepository
	Logger     ports.Logger
	// Timeout bounds each gateway call; zero means the caller's context only.
	Timeout time.Duration
}

func (s *Session) validate() error {
	if s.Gateway == nil || s.Lifecycle == nil || s.History == nil || s.Logger == nil {
		return errors.New("query.Session dependencies not satisfied")
	}
	return nil
}

// Submit sends the lifecycle's current text. Blank text returns
// domain.ErrEmptyQuery and a pending request returns domain.ErrQueryInFlight,
// both without any transition. The network call runs on its own goroutine.
func (s *Session) Submit(ctx context.Context) (*Task, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	state := s.Lifecycle.State()
	if !state.CanSubmit() {
		if state.Loading {
			return nil, domain.ErrQueryInFlight
		}
		return nil, domain.ErrEmptyQuery
	}

	text := state.Text
	seq := s.Lifecycle.Begin()
	task := newTask(seq, text)
	s.Logger.Debug("query submitted", map[string]interface{}{"seq": seq})

	go s.run(ctx, task)
	return task, nil
}

func (s *Session) run(ctx context.Context, task *Task) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	payload, err := s.Gateway.SubmitQuery(ctx, task.text)
	if err != nil {
		if !s.Lifecycle.Fail(task.seq, domain.UserMessage(err)) {
			s.Logger.Debug("stale failure discarded", map[string]interface{}{"seq": task.seq})
			task.finish(OutcomeDiscarded, err, nil)
			return
		}
		s.Logger.Warn("query failed", map[string]interface{}{"seq": task.seq, "error": err.Error()})
		task.finish(OutcomeFailed, err, nil)
		return
	}

	if !s.Lifecycle.Succeed(task.seq, payload) {
		s.Logger.Debug("stale response discarded", map[string]interface{}{"seq": task.seq})
		task.finish(OutcomeDiscarded, nil, nil)
		return
	}

	entry, err := s.History.Record(task.text, &payload)
	if err != nil {
		s.Logger.Error("record history", err, nil)
		task.finish(OutcomeSucceeded, nil, nil)
		return
	}
	s.persist(entry)
	task.finish(OutcomeSucceeded, nil, &entry)
}

func (s *Session) persist(entry domain.HistoryEntry) {
	if s.Repository == nil {
		return
	}
	if err := s.Repository.Save(entry); err != nil {
		s.Logger.Warn("persist history entry failed", map[string]interface{}{
			"id":    entry.ID,
			"error": err.Error(),
		})
	}
}

// Ask sets text, submits it and waits for the outcome.
func (s *Session) Ask(ctx context.Context, text string) (*Task, error) {
	if s.Lifecycle == nil {
		return nil, errors.New("query.Session dependencies not satisfied")
	}
	s.Lifecycle.SetQueryText(text)
	task, err := s.Submit(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := task.Wait(ctx); err != nil {
		return task, err
	}
	return task, nil
}

// Rerun selects the entry, copies its text into the lifecycle and submits it
// again. Stored results are not reused.
func (s *Session) Rerun(ctx context.Context, id string) (*Task, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	entry, ok := s.History.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrHistoryEntryNotFound, id)
	}
	if s.Lifecycle.State().Loading {
		return nil, domain.ErrQueryInFlight
	}
	s.History.Select(id)
	s.Lifecycle.SetQueryText(entry.Text)
	return s.Submit(ctx)
}

// LoadHistory seeds the store from the repository.
func (s *Session) LoadHistory(limit int) error {
	if s.Repository == nil || s.History == nil {
		return nil
	}
	entries, err := s.Repository.Entries(limit)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	s.History.Restore(entries)
	return nil
}

// ClearHistory empties the store and the repository.
func (s *Session) ClearHistory() error {
	if s.History != nil {
		s.History.Clear()
	}
	if s.Repository == nil {
		return nil
	}
	if err := s.Repository.Clear(); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
