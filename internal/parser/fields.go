package parser

import (
	"regexp"
	"strings"

	"flightlog-service/internal/domain/entity"
	"flightlog-service/pkg/logger"
	"flightlog-service/pkg/textutil"
)

// fieldRule is an ordered list of candidate anchor patterns for one field.
// Each pattern captures exactly one group; the first match wins. No match is
// a valid outcome and returns the empty string.
type fieldRule []*regexp.Regexp

func (r fieldRule) extract(window string) string {
	for _, re := range r {
		if m := re.FindStringSubmatch(window); len(m) > 1 {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// routeRule captures origin and destination in one pattern, for bodies that
// state the route as a pair ("SGN -> HAN") rather than labeled fields.
type routeRule []*regexp.Regexp

// ruleSet is the declarative extraction table for one provider format.
type ruleSet struct {
	flightNumber fieldRule
	origin       fieldRule
	destination  fieldRule
	route        routeRule
	departure    fieldRule
	arrival      fieldRule
	airline      fieldRule
	duration     fieldRule
}

// apply runs every rule over one segment window. Extraction only isolates
// substrings; interpretation is the normalizer's job.
func (s ruleSet) apply(window string) entity.RawSegment {
	seg := entity.RawSegment{
		FlightNumber: s.flightNumber.extract(window),
		Origin:       s.origin.extract(window),
		Destination:  s.destination.extract(window),
		DepartureRaw: s.departure.extract(window),
		ArrivalRaw:   s.arrival.extract(window),
		AirlineRaw:   s.airline.extract(window),
		DurationRaw:  s.duration.extract(window),
	}

	if seg.Origin == "" || seg.Destination == "" {
		for _, re := range s.route {
			if m := re.FindStringSubmatch(window); len(m) > 2 {
				if seg.Origin == "" {
					seg.Origin = strings.TrimSpace(m[1])
				}
				if seg.Destination == "" {
					seg.Destination = strings.TrimSpace(m[2])
				}
				break
			}
		}
	}

	return seg
}

// splitWindows partitions a body into one window per flight leg. Every match
// of the marker starts a new window; a body without markers is one window.
func splitWindows(body string, marker *regexp.Regexp) []string {
	if marker == nil {
		return []string{body}
	}

	starts := marker.FindAllStringIndex(body, -1)
	if len(starts) == 0 {
		return []string{body}
	}

	windows := make([]string, 0, len(starts))
	for i, loc := range starts {
		end := len(body)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		windows = append(windows, body[loc[0]:end])
	}
	return windows
}

// templateParser is the shared parsing engine: pick the best body, partition
// it into leg windows, run the provider's rule table per window.
type templateParser struct {
	format entity.ProviderFormat
	window *regexp.Regexp
	rules  ruleSet
	logger logger.Logger
}

func (p *templateParser) Format() entity.ProviderFormat {
	return p.format
}

func (p *templateParser) Parse(email *entity.Email) []entity.RawSegment {
	body := email.Body
	if body == "" {
		body = textutil.CleanHTML(email.HTMLBody)
	}
	body = textutil.NormalizeLines(body)

	var segments []entity.RawSegment
	for _, window := range splitWindows(body, p.window) {
		seg := p.rules.apply(window)
		seg.Provider = p.format
		seg.SourceEmailID = email.EmailID
		seg.SourceReceivedAt = email.ReceivedAt

		if seg.IsEmpty() {
			p.logger.Debug("Window yielded no identifying fields",
				"emailID", email.EmailID,
				"format", p.format)
			continue
		}
		segments = append(segments, seg)
	}

	p.logger.Info("Extracted segments",
		"emailID", email.EmailID,
		"format", p.format,
		"count", len(segments))
	return segments
}
