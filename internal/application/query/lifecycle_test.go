package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/budgetq/internal/domain"
)

func samplePayload(insights string) domain.ResultPayload {
	return domain.ResultPayload{
		Data:     []domain.Fields{{{Key: "department", Value: "DoD"}, {Key: "amount", Value: 816000000000.0}}},
		Insights: insights,
	}
}

func TestLifecycleInitialState(t *testing.T) {
	l := NewLifecycle(domain.DefaultVisualization)
	state := l.State()
	assert.Equal(t, domain.StatusIdle, state.Status())
	assert.Empty(t, state.Text)
	assert.Equal(t, domain.VisualizationBar, state.Visualization)
}

func TestLifecycleSetQueryTextKeepsStatus(t *testing.T) {
	l := NewLifecycle(domain.VisualizationBar)
	seq := l.Begin()
	l.SetQueryText("new text")
	assert.Equal(t, domain.StatusPending, l.State().Status())

	require.True(t, l.Succeed(seq, samplePayload("x")))
	l.SetQueryText("another")
	state := l.State()
	assert.Equal(t, domain.StatusSucceeded, state.Status())
	assert.Equal(t, "another", state.Text)
}

func TestLifecycleBeginClearsError(t *testing.T) {
	l := NewLifecycle(domain.VisualizationBar)
	require.True(t, l.Fail(l.Begin(), "bad"))
	assert.Equal(t, "bad", l.State().Error)

	l.Begin()
	state := l.State()
	assert.Empty(t, state.Error)
	assert.True(t, state.Loading)
}

func TestLifecycleFailDiscardsPriorResult(t *testing.T) {
	l := NewLifecycle(domain.VisualizationBar)
	require.True(t, l.Succeed(l.Begin(), samplePayload("first")))
	require.True(t, l.Fail(l.Begin(), ""))

	state := l.State()
	assert.Equal(t, domain.StatusFailed, state.Status())
	assert.Nil(t, state.Results)
	assert.Equal(t, domain.FallbackErrorMessage, state.Error)
}

func TestLifecycleBeginKeepsPreviousResultWhilePending(t *testing.T) {
	l := NewLifecycle(domain.VisualizationBar)
	require.True(t, l.Succeed(l.Begin(), samplePayload("first")))
	l.Begin()
	state := l.State()
	require.NotNil(t, state.Results)
	assert.Equal(t, domain.StatusPending, state.Status())
}

func TestLifecycleDiscardsStaleCompletion(t *testing.T) {
	l := NewLifecycle(domain.VisualizationBar)
	first := l.Begin()
	second := l.Begin()

	assert.False(t, l.Succeed(first, samplePayload("stale")))
	assert.True(t, l.State().Loading)

	assert.True(t, l.Succeed(second, samplePayload("fresh")))
	assert.False(t, l.Fail(first, "late failure"))

	state := l.State()
	assert.Equal(t, "fresh", state.Results.Insights)
	assert.Empty(t, state.Error)
}

func TestLifecycleCompletionAfterFinishIsDiscarded(t *testing.T) {
	l := NewLifecycle(domain.VisualizationBar)
	seq := l.Begin()
	require.True(t, l.Succeed(seq, samplePayload("once")))
	assert.False(t, l.Succeed(seq, samplePayload("twice")))
	assert.Equal(t, "once", l.State().Results.Insights)
}

func TestLifecycleClearLeavesPendingAndText(t *testing.T) {
	l := NewLifecycle(domain.VisualizationPie)
	l.SetQueryText("keep me")
	require.True(t, l.Succeed(l.Begin(), samplePayload("x")))
	seq := l.Begin()

	l.Clear()
	state := l.State()
	assert.Nil(t, state.Results)
	assert.True(t, state.Loading)
	assert.Equal(t, "keep me", state.Text)
	assert.Equal(t, domain.VisualizationPie, state.Visualization)

	assert.True(t, l.Succeed(seq, samplePayload("landed after clear")))
	assert.Equal(t, "landed after clear", l.State().Results.Insights)
}

func TestLifecycleModePersistsAcrossResults(t *testing.T) {
	l := NewLifecycle(domain.VisualizationBar)
	l.SetVisualizationMode(domain.VisualizationDoughnut)
	require.True(t, l.Succeed(l.Begin(), samplePayload("a")))
	require.True(t, l.Succeed(l.Begin(), samplePayload("b")))
	assert.Equal(t, domain.VisualizationDoughnut, l.State().Visualization)

	l.SetVisualizationMode("scatter")
	assert.Equal(t, domain.VisualizationBar, l.State().Visualization)
}

func TestLifecycleStateIsSnapshot(t *testing.T) {
	l := NewLifecycle(domain.VisualizationBar)
	require.True(t, l.Succeed(l.Begin(), samplePayload("orig")))
	state := l.State()
	state.Results.Insights = "mutated"
	assert.Equal(t, "orig", l.State().Results.Insights)
}

func TestLifecycleSubscribeReceivesTransitions(t *testing.T) {
	l := NewLifecycle(domain.VisualizationBar)
	events, unsubscribe := l.Subscribe(8)
	defer unsubscribe()

	l.SetQueryText("q")
	seq := l.Begin()
	l.Succeed(seq, samplePayload("x"))

	var kinds []EventKind
	for i := 0; i < 3; i++ {
		ev := <-events
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []EventKind{EventTextChanged, EventSubmitted, EventSucceeded}, kinds)
}

func TestLifecycleSlowSubscriberDoesNotBlock(t *testing.T) {
	l := NewLifecycle(domain.VisualizationBar)
	_, unsubscribe := l.Subscribe(1)
	defer unsubscribe()

	for i := 0; i < 10; i++ {
		l.SetQueryText("spam")
	}
	assert.Equal(t, "spam", l.State().Text)
}

func TestLifecycleUnsubscribeClosesChannel(t *testing.T) {
	l := NewLifecycle(domain.VisualizationBar)
	events, unsubscribe := l.Subscribe(1)
	unsubscribe()
	unsubscribe()

	_, open := <-events
	assert.False(t, open)
	l.SetQueryText("no panic after unsubscribe")
}
