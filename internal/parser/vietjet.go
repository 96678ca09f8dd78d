package parser

import (
	"regexp"

	"flightlog-service/internal/domain/entity"
	"flightlog-service/pkg/logger"
)

// VietJet confirmations follow a single fixed template with labeled lines
// ("Flight:", "From:", "Departure:") and usually carry one leg per email.
// Round trips repeat the "Flight:" block, so that label doubles as the
// window marker. Dates come without a year ("15 Jun, 08:30").
var vietjetWindowMarker = regexp.MustCompile(`(?m)^\s*Flight(?:\s*(?:No\.?|Number))?\s*[:#]`)

var vietjetRules = ruleSet{
	flightNumber: fieldRule{
		regexp.MustCompile(`(?m)^\s*Flight(?:\s*(?:No\.?|Number))?\s*[:#]\s*([A-Z]{1,3}\s?\d{1,4}[A-Z]?)\b`),
		regexp.MustCompile(`\b(VJ\s?\d{1,4})\b`),
	},
	origin: fieldRule{
		regexp.MustCompile(`(?m)^\s*From\s*[:\-]\s*[^\n(]*\(([A-Z]{3})\)`),
		regexp.MustCompile(`(?m)^\s*From\s*[:\-]\s*([A-Z]{3})\b`),
	},
	destination: fieldRule{
		regexp.MustCompile(`(?m)^\s*To\s*[:\-]\s*[^\n(]*\(([A-Z]{3})\)`),
		regexp.MustCompile(`(?m)^\s*To\s*[:\-]\s*([A-Z]{3})\b`),
	},
	route: routeRule{
		regexp.MustCompile(`\b([A-Z]{3})\s*(?:→|->|–|-|to)\s*([A-Z]{3})\b`),
	},
	departure: fieldRule{
		regexp.MustCompile(`(?m)^\s*Departure\s*[:\-]\s*(\d{1,2}\s+[A-Za-z]{3}(?:\s+\d{4})?,\s*\d{1,2}:\d{2})`),
		regexp.MustCompile(`(?m)^\s*Date\s*[:\-]\s*(\d{1,2}\s+[A-Za-z]{3}(?:\s+\d{4})?,\s*\d{1,2}:\d{2})`),
	},
	arrival: fieldRule{
		regexp.MustCompile(`(?m)^\s*Arrival\s*[:\-]\s*(\d{1,2}\s+[A-Za-z]{3}(?:\s+\d{4})?,\s*\d{1,2}:\d{2})`),
	},
	airline: fieldRule{
		regexp.MustCompile(`(?i)\b(VietJet Air)\b`),
	},
	duration: fieldRule{
		regexp.MustCompile(`(?im)^\s*Duration\s*[:\-]\s*([0-9hm ]+)\b`),
	},
}

// NewVietJetParser creates the parser for VietJet Air confirmation emails
func NewVietJetParser(log logger.Logger) ProviderParser {
	return &templateParser{
		format: entity.FormatVietJetAir,
		window: vietjetWindowMarker,
		rules:  vietjetRules,
		logger: log,
	}
}
