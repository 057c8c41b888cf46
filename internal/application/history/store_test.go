package history

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/budgetq/internal/domain"
)

func payload(insights string) *domain.ResultPayload {
	return &domain.ResultPayload{
		Data:     []domain.Fields{{{Key: "label", Value: "A"}, {Key: "value", Value: 1}}},
		Insights: insights,
	}
}

func TestRecordPrependsNewestFirst(t *testing.T) {
	store := NewStore(0)
	first, err := store.Record("first", payload("one"))
	require.NoError(t, err)
	second, err := store.Record("second", payload("two"))
	require.NoError(t, err)

	entries := store.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, first.ID, entries[1].ID)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestRecordDoesNotDeduplicate(t *testing.T) {
	store := NewStore(0)
	for i := 0; i < 3; i++ {
		_, err := store.Record("same question", payload("x"))
		require.NoError(t, err)
	}
	assert.Equal(t, 3, store.Len())
}

func TestRecordedIDsSortInCreationOrder(t *testing.T) {
	store := NewStore(0)
	var ids []string
	for i := 0; i < 20; i++ {
		entry, err := store.Record(fmt.Sprintf("q%d", i), nil)
		require.NoError(t, err)
		ids = append(ids, entry.ID)
	}
	assert.True(t, sort.StringsAreSorted(ids), "uuid v7 ids should be lexically ordered: %v", ids)
}

func TestRecordCopiesResults(t *testing.T) {
	store := NewStore(0)
	results := payload("original")
	entry, err := store.Record("q", results)
	require.NoError(t, err)

	results.Insights = "mutated"
	results.Data[0][0].Value = "Z"

	stored, ok := store.Get(entry.ID)
	require.True(t, ok)
	assert.Equal(t, "original", stored.Results.Insights)
	assert.Equal(t, "A", stored.Results.Data[0][0].Value)
}

func TestEntriesReturnsCopies(t *testing.T) {
	store := NewStore(0)
	_, err := store.Record("q", payload("kept"))
	require.NoError(t, err)

	entries := store.Entries()
	entries[0].Results.Insights = "changed"
	entries[0].Text = "changed"

	again := store.Entries()
	assert.Equal(t, "kept", again[0].Results.Insights)
	assert.Equal(t, "q", again[0].Text)
}

func TestSelectUnknownIDIsNoop(t *testing.T) {
	store := NewStore(0)
	entry, err := store.Record("q", nil)
	require.NoError(t, err)

	require.True(t, store.Select(entry.ID))
	assert.False(t, store.Select("missing"))
	assert.Equal(t, entry.ID, store.SelectedID())

	selected, ok := store.Selected()
	require.True(t, ok)
	assert.Equal(t, "q", selected.Text)
}

func TestClearRemovesEntriesAndSelection(t *testing.T) {
	store := NewStore(0)
	entry, err := store.Record("q", nil)
	require.NoError(t, err)
	store.Select(entry.ID)

	store.Clear()
	assert.Zero(t, store.Len())
	assert.Empty(t, store.SelectedID())
	_, ok := store.Selected()
	assert.False(t, ok)
}

func TestCapacityEvictsOldest(t *testing.T) {
	store := NewStore(2)
	oldest, err := store.Record("one", nil)
	require.NoError(t, err)
	store.Select(oldest.ID)
	_, err = store.Record("two", nil)
	require.NoError(t, err)
	_, err = store.Record("three", nil)
	require.NoError(t, err)

	entries := store.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "three", entries[0].Text)
	assert.Equal(t, "two", entries[1].Text)
	assert.Empty(t, store.SelectedID(), "evicted entry cannot stay selected")
}

func TestRecordUsesClock(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 15, 4, 0, 0, time.UTC)
	store := NewStore(0, WithClock(func() time.Time { return fixed }))
	entry, err := store.Record("q", nil)
	require.NoError(t, err)
	assert.Equal(t, fixed, entry.Timestamp)
}

func TestRecordPropagatesIDError(t *testing.T) {
	store := NewStore(0, WithIDGenerator(func() (string, error) { return "", fmt.Errorf("entropy") }))
	_, err := store.Record("q", nil)
	require.Error(t, err)
	assert.Zero(t, store.Len())
}

func TestRestoreSeedsEntries(t *testing.T) {
	store := NewStore(0)
	store.Restore([]domain.HistoryEntry{
		{ID: "b", Text: "newer"},
		{ID: "a", Text: "older"},
	})
	entries := store.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "newer", entries[0].Text)
	_, ok := store.Get("a")
	assert.True(t, ok)
}
