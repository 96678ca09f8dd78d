package parser

import (
	"regexp"

	"flightlog-service/internal/domain/entity"
	"flightlog-service/pkg/logger"
)

// Booking.com flight emails list each leg under a "Flight to <city>" row.
// Departure and arrival lines carry both the local time ("Sat, Jun 15, 2024
// 9:00 AM") and the airport in parentheses.
var bookingcomWindowMarker = regexp.MustCompile(`(?m)^\s*Flight to\s+\S`)

var bookingcomRules = ruleSet{
	flightNumber: fieldRule{
		regexp.MustCompile(`(?m)^\s*([A-Z]{1,3}\s?\d{1,4}[A-Z]?)\s+operated by\b`),
		regexp.MustCompile(`(?m)^\s*Flight\s*(?:No\.?|number)?\s*[:#]\s*([A-Z]{1,3}\s?\d{1,4}[A-Z]?)\b`),
	},
	origin: fieldRule{
		regexp.MustCompile(`(?m)^\s*Departure\s*[:\-][^\n(]*\(([A-Z]{3})\)`),
		regexp.MustCompile(`(?m)^\s*From\s*[:\-]\s*[^\n(]*\(([A-Z]{3})\)`),
	},
	destination: fieldRule{
		regexp.MustCompile(`(?m)^\s*Arrival\s*[:\-][^\n(]*\(([A-Z]{3})\)`),
		regexp.MustCompile(`(?m)^\s*To\s*[:\-]\s*[^\n(]*\(([A-Z]{3})\)`),
	},
	route: routeRule{
		regexp.MustCompile(`\b([A-Z]{3})\s*(?:→|->)\s*([A-Z]{3})\b`),
	},
	departure: fieldRule{
		regexp.MustCompile(`(?m)^\s*Departure\s*[:\-]\s*([A-Za-z]{3}, [A-Za-z]{3} \d{1,2}, \d{4} \d{1,2}:\d{2} (?:AM|PM))`),
		regexp.MustCompile(`(?m)^\s*Departure\s*[:\-]\s*(\d{1,2} [A-Za-z]{3} \d{4} \d{1,2}:\d{2})`),
	},
	arrival: fieldRule{
		regexp.MustCompile(`(?m)^\s*Arrival\s*[:\-]\s*([A-Za-z]{3}, [A-Za-z]{3} \d{1,2}, \d{4} \d{1,2}:\d{2} (?:AM|PM))`),
		regexp.MustCompile(`(?m)^\s*Arrival\s*[:\-]\s*(\d{1,2} [A-Za-z]{3} \d{4} \d{1,2}:\d{2})`),
	},
	airline: fieldRule{
		regexp.MustCompile(`(?m)\boperated by\s+([^\n]+?)\s*$`),
	},
	duration: fieldRule{
		regexp.MustCompile(`(?im)^\s*Flight duration\s*[:\-]\s*(\d+\s*h(?:\s*\d+\s*m)?|\d+\s*m(?:in(?:ute)?s?)?)\b`),
	},
}

// NewBookingComParser creates the parser for Booking.com flight reminders
func NewBookingComParser(log logger.Logger) ProviderParser {
	return &templateParser{
		format: entity.FormatBookingCom,
		window: bookingcomWindowMarker,
		rules:  bookingcomRules,
		logger: log,
	}
}
