package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Service defaults
const (
	// DefaultBaseURL matches the query service's development address
	DefaultBaseURL = "http://localhost:5000/api"
	// DefaultServiceTimeout bounds a single gateway call
	DefaultServiceTimeout = 60 * time.Second
)

// History constants
const (
	// DefaultHistoryLimit is the default number of history records to display
	DefaultHistoryLimit = 20
	// DefaultHistoryCapacity is the default number of entries kept before eviction
	DefaultHistoryCapacity = 200
	// HistorySummaryLength is the number of insight characters shown per entry
	HistorySummaryLength = 100
)

// Chart constants
const (
	DefaultChartWidth  = 1024
	DefaultChartHeight = 600
)

// Time formats
const (
	// TimestampFormat is the machine readable timestamp format
	TimestampFormat = time.RFC3339
	// DisplayTimestampFormat renders history timestamps for people
	DisplayTimestampFormat = "Jan 2, 2006 03:04 PM"
)

// ExampleQueries are offered to first-time users.
var ExampleQueries = []string{
	"What was the Department of Defense budget for fiscal year 2023?",
	"Compare education spending between 2020 and 2022",
	"Show me the top 5 departments by budget allocation in 2023",
	"What percentage of the federal budget went to healthcare in 2022?",
	"How has infrastructure spending changed over the last 5 years?",
}
