package normalize

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"flightlog-service/internal/domain/entity"
	"flightlog-service/internal/domain/repository"
	"flightlog-service/pkg/logger"
)

// dateLayout is one candidate datetime shape. Layouts without a year get the
// run's hint year substituted after parsing.
type dateLayout struct {
	layout  string
	hasYear bool
}

// Candidate layouts per provider, tried in order; the first match wins.
// The generic list runs after the provider's own.
var providerLayouts = map[entity.ProviderFormat][]dateLayout{
	entity.FormatVietJetAir: {
		{"2 Jan 2006, 15:04", true},
		{"2 Jan, 15:04", false},
	},
	entity.FormatTripCom: {
		{"2006-01-02 15:04", true},
	},
	entity.FormatBookingCom: {
		{"Mon, Jan 2, 2006 3:04 PM", true},
		{"2 Jan 2006 15:04", true},
	},
}

var genericLayouts = []dateLayout{
	{"2 Jan 2006 15:04", true},
	{"2006-01-02T15:04", true},
	{"2006-01-02 15:04", true},
	{"2 Jan, 15:04", false},
}

var (
	durationHoursMinutes = regexp.MustCompile(`(?i)^(\d+)\s*h(?:ours?)?(?:\s*(\d+)\s*m(?:in(?:ute)?s?)?)?$`)
	durationMinutesOnly  = regexp.MustCompile(`(?i)^(\d+)\s*m(?:in(?:ute)?s?)?$`)
	airlinePrefixPattern = regexp.MustCompile(`^[A-Z]{1,3}`)
)

// Normalizer converts raw segments into canonical flight records. Timezones
// come from the airport reference table; airline names missing from the email
// are backfilled from the airline reference table.
type Normalizer struct {
	timezoneRepo repository.TimezoneRepository
	airlineRepo  repository.AirlineRepository
	hintYear     int
	logger       logger.Logger
}

// NewNormalizer creates a new normalizer. hintYear resolves year-less dates.
func NewNormalizer(
	timezoneRepo repository.TimezoneRepository,
	airlineRepo repository.AirlineRepository,
	hintYear int,
	log logger.Logger,
) *Normalizer {
	return &Normalizer{
		timezoneRepo: timezoneRepo,
		airlineRepo:  airlineRepo,
		hintYear:     hintYear,
		logger:       log,
	}
}

// Normalize turns one raw segment into a flight record, or explains why it
// cannot. A failure is local to the segment and never aborts the batch.
func (n *Normalizer) Normalize(ctx context.Context, seg entity.RawSegment) (*entity.FlightRecord, *entity.NormalizationFailure) {
	flightNumber := strings.ToUpper(strings.ReplaceAll(seg.FlightNumber, " ", ""))
	if flightNumber == "" {
		return nil, n.failure(entity.FailureMissingField, "flight_number", "", seg)
	}
	if !entity.FlightNumberPattern.MatchString(flightNumber) {
		return nil, n.failure(entity.FailureInvalidFormat, "flight_number", seg.FlightNumber, seg)
	}

	origin := strings.ToUpper(strings.TrimSpace(seg.Origin))
	if origin == "" {
		return nil, n.failure(entity.FailureMissingField, "origin", "", seg)
	}
	if !entity.AirportCodePattern.MatchString(origin) {
		return nil, n.failure(entity.FailureInvalidFormat, "origin", seg.Origin, seg)
	}

	destination := strings.ToUpper(strings.TrimSpace(seg.Destination))
	if destination == "" {
		return nil, n.failure(entity.FailureMissingField, "destination", "", seg)
	}
	if !entity.AirportCodePattern.MatchString(destination) {
		return nil, n.failure(entity.FailureInvalidFormat, "destination", seg.Destination, seg)
	}
	if origin == destination {
		return nil, n.failure(entity.FailureInvalidFormat, "destination", seg.Destination, seg)
	}

	if seg.DepartureRaw == "" {
		return nil, n.failure(entity.FailureMissingField, "departure", "", seg)
	}
	departure, ok := n.parseWhen(ctx, seg.DepartureRaw, origin, seg.Provider)
	if !ok {
		return nil, n.failure(entity.FailureInvalidFormat, "departure", seg.DepartureRaw, seg)
	}

	var arrival time.Time
	if seg.ArrivalRaw != "" {
		parsed, ok := n.parseWhen(ctx, seg.ArrivalRaw, destination, seg.Provider)
		if ok {
			arrival = parsed
			// Overnight legs state the arrival on the clock of the next day
			if arrival.Before(departure) {
				arrival = arrival.AddDate(0, 0, 1)
			}
			if !arrival.After(departure) {
				return nil, n.failure(entity.FailureInvalidFormat, "arrival", seg.ArrivalRaw, seg)
			}
		} else {
			n.logger.Debug("Unparseable arrival left absent",
				"emailID", seg.SourceEmailID,
				"raw", seg.ArrivalRaw)
		}
	}

	record := &entity.FlightRecord{
		FlightNumber:    flightNumber,
		Origin:          origin,
		Destination:     destination,
		Departure:       departure,
		Arrival:         arrival,
		Airline:         n.resolveAirline(ctx, seg.AirlineRaw, flightNumber),
		DurationMinutes: parseDurationMinutes(seg.DurationRaw),
		SourceEmailIDs:  []string{seg.SourceEmailID},
		LastSourceAt:    seg.SourceReceivedAt,
	}
	record.DedupKey = entity.MakeDedupKey(flightNumber, origin, destination, departure)

	return record, nil
}

func (n *Normalizer) failure(reason entity.FailureReason, field, raw string, seg entity.RawSegment) *entity.NormalizationFailure {
	f := &entity.NormalizationFailure{
		Reason:        reason,
		Field:         field,
		RawValue:      raw,
		SourceEmailID: seg.SourceEmailID,
	}
	n.logger.Warn("Segment dropped during normalization",
		"reason", reason,
		"field", field,
		"raw", raw,
		"emailID", seg.SourceEmailID)
	return f
}

// parseWhen parses a raw datetime in the airport's local timezone, trying the
// provider's candidate layouts first and the generic list after. Airports
// missing from the reference table fall back to UTC.
func (n *Normalizer) parseWhen(ctx context.Context, raw, airportCode string, format entity.ProviderFormat) (time.Time, bool) {
	location := n.airportLocation(ctx, airportCode)
	raw = strings.TrimSpace(raw)

	layouts := append([]dateLayout{}, providerLayouts[format]...)
	layouts = append(layouts, genericLayouts...)

	for _, candidate := range layouts {
		parsed, err := time.ParseInLocation(candidate.layout, raw, location)
		if err != nil {
			continue
		}
		if !candidate.hasYear {
			parsed = time.Date(n.hintYear, parsed.Month(), parsed.Day(),
				parsed.Hour(), parsed.Minute(), 0, 0, location)
		}
		return parsed, true
	}

	return time.Time{}, false
}

func (n *Normalizer) airportLocation(ctx context.Context, airportCode string) *time.Location {
	tz, err := n.timezoneRepo.GetByAirportCode(ctx, airportCode)
	if err != nil {
		n.logger.Debug("No timezone for airport, using UTC", "airport", airportCode, "error", err)
		return time.UTC
	}

	location, err := time.LoadLocation(tz.TzName)
	if err != nil {
		n.logger.Warn("Invalid timezone name, using UTC", "airport", airportCode, "tzName", tz.TzName, "error", err)
		return time.UTC
	}
	return location
}

// resolveAirline prefers the name stated in the email and falls back to the
// airline reference table keyed by the flight designator prefix.
func (n *Normalizer) resolveAirline(ctx context.Context, raw, flightNumber string) string {
	if name := strings.TrimSpace(raw); name != "" {
		return name
	}

	code := airlinePrefixPattern.FindString(flightNumber)
	if code == "" || n.airlineRepo == nil {
		return ""
	}

	airline, err := n.airlineRepo.GetByCode(ctx, code)
	if err != nil {
		n.logger.Debug("No airline for code", "code", code, "error", err)
		return ""
	}
	return airline.Name
}

// parseDurationMinutes interprets raw duration strings like "5h 30m" or
// "150 minutes". Unknown shapes yield 0 (duration is optional).
func parseDurationMinutes(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}

	if m := durationHoursMinutes.FindStringSubmatch(raw); m != nil {
		hours, _ := strconv.Atoi(m[1])
		minutes := 0
		if m[2] != "" {
			minutes, _ = strconv.Atoi(m[2])
		}
		return hours*60 + minutes
	}

	if m := durationMinutesOnly.FindStringSubmatch(raw); m != nil {
		minutes, _ := strconv.Atoi(m[1])
		return minutes
	}

	return 0
}
