package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMakeDedupKeyNormalizesToUTCMinute(t *testing.T) {
	saigon := time.FixedZone("ICT", 7*60*60)
	local := time.Date(2024, 6, 15, 8, 30, 45, 123, saigon)
	utc := local.UTC()

	keyLocal := MakeDedupKey("VJ123", "SGN", "HAN", local)
	keyUTC := MakeDedupKey("VJ123", "SGN", "HAN", utc)

	assert.Equal(t, keyLocal, keyUTC)
	assert.Equal(t, "VJ123:SGN:HAN:2024-06-15T01:30", keyLocal)

	// Seconds never split a flight into two identities
	sameMinute := MakeDedupKey("VJ123", "SGN", "HAN", local.Add(10*time.Second))
	assert.Equal(t, keyLocal, sameMinute)

	nextMinute := MakeDedupKey("VJ123", "SGN", "HAN", local.Add(time.Minute))
	assert.NotEqual(t, keyLocal, nextMinute)
}

func TestFilledFieldCount(t *testing.T) {
	record := FlightRecord{}
	assert.Equal(t, 0, record.FilledFieldCount())

	record.Airline = "VietJet Air"
	assert.Equal(t, 1, record.FilledFieldCount())

	record.Arrival = time.Date(2024, 6, 15, 10, 35, 0, 0, time.UTC)
	record.DurationMinutes = 125
	assert.Equal(t, 3, record.FilledFieldCount())
}

func TestAddSourceEmailIDKeepsSetSortedAndUnique(t *testing.T) {
	record := FlightRecord{}
	record.AddSourceEmailID("zeta")
	record.AddSourceEmailID("alpha")
	record.AddSourceEmailID("zeta")
	record.AddSourceEmailID("mid")

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, record.SourceEmailIDs)
}

func TestTravelHistorySort(t *testing.T) {
	early := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	late := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)

	history := TravelHistory{
		{FlightNumber: "ZZ900", DedupKey: "z"},
		{FlightNumber: "CC300", Departure: late, DedupKey: "c"},
		{FlightNumber: "AA100", DedupKey: "a"},
		{FlightNumber: "BB200", Departure: early, DedupKey: "b"},
	}
	history.Sort()

	got := make([]string, len(history))
	for i, record := range history {
		got[i] = record.FlightNumber
	}
	assert.Equal(t, []string{"BB200", "CC300", "AA100", "ZZ900"}, got)
}
