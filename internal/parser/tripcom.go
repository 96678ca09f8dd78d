package parser

import (
	"regexp"

	"flightlog-service/internal/domain/entity"
	"flightlog-service/pkg/logger"
)

// Trip.com itineraries enumerate legs under repeated "Flight N" headers, one
// block per leg, with ISO-style dates ("2024-06-15 09:00") and an explicit
// duration line.
var tripcomWindowMarker = regexp.MustCompile(`(?m)^\s*Flight\s+\d+\s*[:.]`)

var tripcomRules = ruleSet{
	flightNumber: fieldRule{
		regexp.MustCompile(`(?m)^\s*Flight\s+\d+\s*[:.]\s*([A-Z]{1,3}\s?\d{1,4}[A-Z]?)\b`),
		regexp.MustCompile(`(?m)^\s*Flight\s*(?:No\.?|Number)?\s*[:#]\s*([A-Z]{1,3}\s?\d{1,4}[A-Z]?)\b`),
	},
	origin: fieldRule{
		regexp.MustCompile(`\(([A-Z]{3})\)\s*(?:to|→|->)`),
		regexp.MustCompile(`(?m)^\s*From\s*[:\-]\s*[^\n(]*\(([A-Z]{3})\)`),
	},
	destination: fieldRule{
		regexp.MustCompile(`(?:to|→|->)[^\n(]*\(([A-Z]{3})\)`),
		regexp.MustCompile(`(?m)^\s*To\s*[:\-]\s*[^\n(]*\(([A-Z]{3})\)`),
	},
	route: routeRule{
		regexp.MustCompile(`\b([A-Z]{3})\s*(?:→|->)\s*([A-Z]{3})\b`),
	},
	departure: fieldRule{
		regexp.MustCompile(`(?m)^\s*Depart(?:ure)?\s*[:\-]\s*(\d{4}-\d{2}-\d{2}\s+\d{1,2}:\d{2})`),
	},
	arrival: fieldRule{
		regexp.MustCompile(`(?m)^\s*Arriv(?:e|al)\s*[:\-]\s*(\d{4}-\d{2}-\d{2}\s+\d{1,2}:\d{2})`),
	},
	airline: fieldRule{
		regexp.MustCompile(`(?m)^\s*Flight\s+\d+\s*[:.]\s*[A-Z]{1,3}\s?\d{1,4}[A-Z]?\s+-\s+([^\n]+)`),
		regexp.MustCompile(`(?m)^\s*Airline\s*[:\-]\s*([^\n]+)`),
	},
	duration: fieldRule{
		regexp.MustCompile(`(?im)^\s*Duration\s*[:\-]\s*(\d+\s*h(?:\s*\d+\s*m)?|\d+\s*m(?:in(?:ute)?s?)?)\b`),
	},
}

// NewTripComParser creates the parser for Trip.com booking confirmations
func NewTripComParser(log logger.Logger) ProviderParser {
	return &templateParser{
		format: entity.FormatTripCom,
		window: tripcomWindowMarker,
		rules:  tripcomRules,
		logger: log,
	}
}
