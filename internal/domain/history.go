package domain

import "time"

// HistoryEntry records one successfully completed query.
type HistoryEntry struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Timestamp time.Time      `json:"timestamp"`
	Results   *ResultPayload `json:"results,omitempty"`
}

// Summary returns the leading insight text shown in history listings.
func (e HistoryEntry) Summary() string {
	if e.Results == nil {
		return ""
	}
	return Truncate(e.Results.Insights, HistorySummaryLength)
}

// Clone returns a copy that shares nothing with the receiver.
func (e HistoryEntry) Clone() HistoryEntry {
	out := e
	if e.Results != nil {
		results := e.Results.Clone()
		out.Results = &results
	}
	return out
}

// Truncate cuts s to n characters, appending "..." when something was cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
