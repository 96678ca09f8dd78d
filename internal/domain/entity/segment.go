package entity

import "time"

// RawSegment is the per-leg extraction result before normalization. Empty
// string means the extractor found nothing for that field; that is a valid
// outcome, not an error.
type RawSegment struct {
	FlightNumber     string
	Origin           string
	Destination      string
	DepartureRaw     string
	ArrivalRaw       string
	AirlineRaw       string
	DurationRaw      string
	Provider         ProviderFormat
	SourceEmailID    string
	SourceReceivedAt time.Time
}

// IsEmpty reports whether extraction found nothing identifying at all.
// Windows that yield neither a flight number nor a route are discarded.
func (s RawSegment) IsEmpty() bool {
	return s.FlightNumber == "" && s.Origin == "" && s.Destination == ""
}
