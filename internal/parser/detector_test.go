package parser

import (
	"testing"

	"flightlog-service/internal/domain/entity"
	"flightlog-service/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestDetectBySenderDomain(t *testing.T) {
	detector := NewFormatDetector(logger.NewNopLogger())

	email := &entity.Email{
		EmailID: "msg-1",
		From:    "VietJet Air <noreply@vietjetair.com>",
		Subject: "Booking confirmation",
	}

	assert.Equal(t, entity.FormatVietJetAir, detector.Detect(email))
}

func TestDetectBySubjectMarker(t *testing.T) {
	detector := NewFormatDetector(logger.NewNopLogger())

	email := &entity.Email{
		EmailID: "msg-2",
		From:    "notifications@example.com",
		Subject: "Your Trip.com itinerary is confirmed",
	}

	assert.Equal(t, entity.FormatTripCom, detector.Detect(email))
}

func TestDetectByBodyMarker(t *testing.T) {
	detector := NewFormatDetector(logger.NewNopLogger())

	email := &entity.Email{
		EmailID: "msg-3",
		From:    "mailer@relay.example.com",
		Subject: "Flight reminder",
		Body:    "This reminder was sent by Booking.com on behalf of the airline.",
	}

	assert.Equal(t, entity.FormatBookingCom, detector.Detect(email))
}

func TestDetectFallsBackToHTMLBody(t *testing.T) {
	detector := NewFormatDetector(logger.NewNopLogger())

	email := &entity.Email{
		EmailID:  "msg-4",
		From:     "mailer@relay.example.com",
		Subject:  "Flight reminder",
		HTMLBody: "<p>Sent via Booking.com</p>",
	}

	assert.Equal(t, entity.FormatBookingCom, detector.Detect(email))
}

func TestDetectUnrecognized(t *testing.T) {
	detector := NewFormatDetector(logger.NewNopLogger())

	email := &entity.Email{
		EmailID: "msg-5",
		From:    "newsletter@shopping.example.com",
		Subject: "Weekly deals just for you",
		Body:    "Check out this week's offers.",
	}

	assert.Equal(t, entity.FormatUnrecognized, detector.Detect(email))
}
