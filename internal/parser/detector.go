package parser

import (
	"strings"

	"flightlog-service/internal/domain/entity"
	"flightlog-service/pkg/logger"
)

// signature is the detection fingerprint for one provider: a sender domain,
// subject keywords, and body markers. Signatures are disjoint across
// providers by construction; the table order is only a defensive tie-break.
type signature struct {
	format         entity.ProviderFormat
	senderDomains  []string
	subjectMarkers []string
	bodyMarkers    []string
}

func (s signature) matches(email *entity.Email) bool {
	sender := strings.ToLower(email.From)
	for _, domain := range s.senderDomains {
		if strings.Contains(sender, domain) {
			return true
		}
	}

	subject := strings.ToLower(email.Subject)
	for _, marker := range s.subjectMarkers {
		if strings.Contains(subject, marker) {
			return true
		}
	}

	body := strings.ToLower(email.Body)
	if body == "" {
		body = strings.ToLower(email.HTMLBody)
	}
	for _, marker := range s.bodyMarkers {
		if strings.Contains(body, marker) {
			return true
		}
	}

	return false
}

// FormatDetector classifies an email into exactly one known provider format.
type FormatDetector struct {
	signatures []signature
	logger     logger.Logger
}

// NewFormatDetector creates a detector with the built-in provider signatures
func NewFormatDetector(log logger.Logger) *FormatDetector {
	return &FormatDetector{
		signatures: []signature{
			{
				format:         entity.FormatVietJetAir,
				senderDomains:  []string{"@vietjetair.com", ".vietjetair.com"},
				subjectMarkers: []string{"vietjet"},
				bodyMarkers:    []string{"vietjet air"},
			},
			{
				format:         entity.FormatTripCom,
				senderDomains:  []string{"@trip.com", ".trip.com"},
				subjectMarkers: []string{"trip.com"},
				bodyMarkers:    []string{"trip.com"},
			},
			{
				format:         entity.FormatBookingCom,
				senderDomains:  []string{"@booking.com", ".booking.com"},
				subjectMarkers: []string{"booking.com"},
				bodyMarkers:    []string{"booking.com"},
			},
		},
		logger: log,
	}
}

// Detect returns the first matching provider format, or FormatUnrecognized.
// It never fails; unrecognized emails are a zero-yield case for the caller.
func (d *FormatDetector) Detect(email *entity.Email) entity.ProviderFormat {
	for _, sig := range d.signatures {
		if sig.matches(email) {
			d.logger.Debug("Detected provider format",
				"emailID", email.EmailID,
				"format", sig.format)
			return sig.format
		}
	}

	d.logger.Debug("No provider signature matched",
		"emailID", email.EmailID,
		"from", email.From,
		"subject", email.Subject)
	return entity.FormatUnrecognized
}
