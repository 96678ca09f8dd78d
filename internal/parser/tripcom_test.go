package parser

import (
	"testing"

	"flightlog-service/internal/domain/entity"
	"flightlog-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tripcomTwoLegBody = `Your booking on Trip.com is confirmed.

Flight 1: AA100 - American Airlines
San Francisco (SFO) to New York (JFK)
Depart: 2024-06-15 09:00
Arrive: 2024-06-15 17:30
Duration: 5h 30m

Flight 2: AA205 - American Airlines
New York (JFK) to London (LHR)
Depart: 2024-06-16 21:00
Arrive: 2024-06-17 09:10
Duration: 7h 10m

Safe travels!
`

func TestTripComParseMultiLegItinerary(t *testing.T) {
	p := NewTripComParser(logger.NewNopLogger())

	segments := p.Parse(&entity.Email{EmailID: "trip-1", Body: tripcomTwoLegBody})
	require.Len(t, segments, 2)

	first := segments[0]
	assert.Equal(t, "AA100", first.FlightNumber)
	assert.Equal(t, "SFO", first.Origin)
	assert.Equal(t, "JFK", first.Destination)
	assert.Equal(t, "2024-06-15 09:00", first.DepartureRaw)
	assert.Equal(t, "2024-06-15 17:30", first.ArrivalRaw)
	assert.Equal(t, "American Airlines", first.AirlineRaw)
	assert.Equal(t, "5h 30m", first.DurationRaw)
	assert.Equal(t, entity.FormatTripCom, first.Provider)

	second := segments[1]
	assert.Equal(t, "AA205", second.FlightNumber)
	assert.Equal(t, "JFK", second.Origin)
	assert.Equal(t, "LHR", second.Destination)
	assert.Equal(t, "2024-06-16 21:00", second.DepartureRaw)
	assert.Equal(t, "7h 10m", second.DurationRaw)
}

func TestTripComParsePreambleIsNotASegment(t *testing.T) {
	// The text before the first "Flight N" header belongs to no leg window.
	body := `Dear traveler, your Trip.com itinerary (SGN) to (HAN) summary follows.

Flight 1: VJ321 - VietJet Air
Ho Chi Minh City (SGN) to Hanoi (HAN)
Depart: 2024-03-10 07:45
`

	p := NewTripComParser(logger.NewNopLogger())
	segments := p.Parse(&entity.Email{EmailID: "trip-2", Body: body})
	require.Len(t, segments, 1)
	assert.Equal(t, "VJ321", segments[0].FlightNumber)
}

func TestTripComParseMissingOptionalFields(t *testing.T) {
	body := `Flight 1: QH202 - Bamboo Airways
Hanoi (HAN) to Da Nang (DAD)
Depart: 2024-09-02 16:20
`

	p := NewTripComParser(logger.NewNopLogger())
	segments := p.Parse(&entity.Email{EmailID: "trip-3", Body: body})
	require.Len(t, segments, 1)

	seg := segments[0]
	assert.Equal(t, "QH202", seg.FlightNumber)
	assert.Empty(t, seg.ArrivalRaw)
	assert.Empty(t, seg.DurationRaw)
}
