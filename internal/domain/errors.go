package domain

import (
	"errors"
	"fmt"
)

// FallbackErrorMessage is shown when the service gave no usable message.
const FallbackErrorMessage = "An error occurred while processing your query"

var (
	// ErrEmptyQuery rejects blank query text before it reaches the gateway.
	ErrEmptyQuery = errors.New("query text is empty")
	// ErrHistoryEntryNotFound is returned when an id is not in the history store.
	ErrHistoryEntryNotFound = errors.New("history entry not found")
	// ErrNoChartData is returned when asked to draw a chart without records.
	ErrNoChartData = errors.New("no data available for visualization")
	// ErrQueryInFlight rejects a submit while another request is pending.
	ErrQueryInFlight = errors.New("a query is already in progress")
	// ErrNotAuthenticated is returned when an operation needs a stored token.
	ErrNotAuthenticated = errors.New("not logged in")
)

// ServiceError is a non-success response from the query service.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("query service returned status %d", e.Status)
	}
	return fmt.Sprintf("query service returned status %d: %s", e.Status, e.Message)
}

// TransportError means no usable response arrived.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UserMessage maps a submission failure to the text stored in the Failed state.
func UserMessage(err error) string {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Message != "" {
		return svcErr.Message
	}
	return FallbackErrorMessage
}
