package entities

import "time"

// ClosureEntry is one delivered order in the daily closure report.
type ClosureEntry struct {
	ExternalOrderID string
	TrackingCode    string
	OriginService   string
	// Customer is rendered as "name (address)".
	Customer     string
	ProductCount int
	OnTime       string
	Status       string
}

// ClosureReport is recomputed from the closure flags on every request,
// nothing about it is persisted.
type ClosureReport struct {
	Date    time.Time
	Total   int
	Entries []ClosureEntry
}
