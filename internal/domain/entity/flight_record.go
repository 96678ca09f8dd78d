// internal/domain/entity/flight_record.go
package entity

import (
	"fmt"
	"regexp"
	"sort"
	"time"
)

// FlightNumberPattern is the canonical flight designator shape: airline code
// followed by up to four digits and an optional operational suffix.
var FlightNumberPattern = regexp.MustCompile(`^[A-Z]{1,3}\d{1,4}[A-Z]?$`)

// AirportCodePattern is the 3-letter IATA airport code shape.
var AirportCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// FlightRecord is a fully normalized flight. Arrival may be the zero time
// when the source email never stated it; DurationMinutes is 0 when unknown.
type FlightRecord struct {
	ID              string    `bson:"_id,omitempty"`
	DedupKey        string    `bson:"dedupKey"`
	FlightNumber    string    `bson:"flightNumber"`
	Origin          string    `bson:"origin"`
	Destination     string    `bson:"destination"`
	Departure       time.Time `bson:"departure"`
	Arrival         time.Time `bson:"arrival,omitempty"`
	Airline         string    `bson:"airline,omitempty"`
	DurationMinutes int       `bson:"durationMinutes,omitempty"`
	SourceEmailIDs  []string  `bson:"sourceEmailIds"`
	LastSourceAt    time.Time `bson:"lastSourceAt"`
	CreatedAt       time.Time `bson:"createdAt,omitempty"`
	UpdatedAt       time.Time `bson:"updatedAt,omitempty"`
}

// MakeDedupKey builds the identity key for a real-world flight: designator,
// route and departure truncated to the minute in UTC.
func MakeDedupKey(flightNumber, origin, destination string, departure time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s",
		flightNumber, origin, destination,
		departure.UTC().Truncate(time.Minute).Format("2006-01-02T15:04"))
}

// FilledFieldCount counts the optional fields this record actually carries.
// Used by the merger to decide which duplicate is more complete.
func (r *FlightRecord) FilledFieldCount() int {
	count := 0
	if !r.Arrival.IsZero() {
		count++
	}
	if r.Airline != "" {
		count++
	}
	if r.DurationMinutes > 0 {
		count++
	}
	return count
}

// AddSourceEmailID records provenance, keeping the id set sorted and unique.
func (r *FlightRecord) AddSourceEmailID(id string) {
	for _, existing := range r.SourceEmailIDs {
		if existing == id {
			return
		}
	}
	r.SourceEmailIDs = append(r.SourceEmailIDs, id)
	sort.Strings(r.SourceEmailIDs)
}

// TravelHistory is the pipeline's output: flight records sorted by departure
// ascending, unique by dedup key. Records without a parseable departure sort
// last, among themselves by flight number.
type TravelHistory []FlightRecord

// Sort orders the history by its canonical ordering.
func (h TravelHistory) Sort() {
	sort.SliceStable(h, func(i, j int) bool {
		di, dj := h[i].Departure, h[j].Departure
		switch {
		case di.IsZero() && dj.IsZero():
			if h[i].FlightNumber != h[j].FlightNumber {
				return h[i].FlightNumber < h[j].FlightNumber
			}
			return h[i].DedupKey < h[j].DedupKey
		case di.IsZero():
			return false
		case dj.IsZero():
			return true
		case !di.Equal(dj):
			return di.Before(dj)
		default:
			return h[i].DedupKey < h[j].DedupKey
		}
	})
}
