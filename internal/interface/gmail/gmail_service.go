package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"time"

	"flightlog-service/internal/domain/entity"
	"flightlog-service/internal/domain/repository"
	"flightlog-service/pkg/logger"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Airline and OTA domains whose mail is worth fetching, plus subject
// indicators and a flight-designator token for everything else.
var (
	flightSenderDomains = []string{
		"vietjetair.com",
		"trip.com",
		"booking.com",
	}
	flightSubjectIndicators = []string{
		"flight confirmation",
		"booking confirmation",
		"e-ticket",
		"check-in",
		"boarding pass",
		"flight itinerary",
		"flight reminder",
		"travel confirmation",
	}
	flightNumberToken = regexp.MustCompile(`\b[A-Z]{2}\d{3,4}\b`)
)

// GmailService fetches raw emails for the target year and persists them for
// the extraction pipeline. It owns all mail-transport concerns; the pipeline
// itself never does I/O.
type GmailService struct {
	gmailService *gmail.Service
	emailRepo    repository.EmailRepository
	logger       logger.Logger
	pollInterval time.Duration
	targetYear   int
}

// NewGmailService creates a new Gmail service
func NewGmailService(ctx context.Context, tokenSource oauth2.TokenSource, emailRepo repository.EmailRepository, log logger.Logger, pollInterval time.Duration, targetYear int) (*GmailService, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &GmailService{
		gmailService: service,
		emailRepo:    emailRepo,
		logger:       log,
		pollInterval: pollInterval,
		targetYear:   targetYear,
	}, nil
}

// FetchEmails fetches emails received within the target year. The query
// starts at the last stored email (minus a lookback for late-arriving mail)
// so repeated polls only walk the tail of the mailbox.
func (s *GmailService) FetchEmails(ctx context.Context) error {
	fetchFrom := time.Date(s.targetYear, 1, 1, 0, 0, 0, 0, time.UTC)
	if last, err := s.emailRepo.GetLastEmail(ctx); err == nil && last != nil && !last.ReceivedAt.IsZero() {
		// Go back 3 days to catch any emails we might have missed
		candidate := last.ReceivedAt.AddDate(0, 0, -3)
		if candidate.After(fetchFrom) {
			fetchFrom = candidate
		}
	}

	query := fmt.Sprintf("after:%s before:%d/01/01", fetchFrom.Format("2006/01/02"), s.targetYear+1)
	s.logger.Info("Querying Gmail", "query", query)

	messages, err := s.listAllMessages(query)
	if err != nil {
		s.logger.Error("Failed to list messages", "error", err)
		return err
	}

	if len(messages) == 0 {
		s.logger.Info("No messages found for target year", "year", s.targetYear)
		return nil
	}

	emailIDs := make([]string, len(messages))
	for i, msg := range messages {
		emailIDs[i] = msg.Id
	}

	existingEmails, err := s.emailRepo.FindByEmailIDs(ctx, emailIDs)
	if err != nil {
		s.logger.Error("Failed to batch check existing emails", "error", err)
		existingEmails = make(map[string]*entity.Email)
	}

	newEmailsCount := 0
	skippedExistingCount := 0
	filteredCount := 0

	for _, msg := range messages {
		if _, exists := existingEmails[msg.Id]; exists {
			skippedExistingCount++
			continue
		}

		fullMsg, err := s.gmailService.Users.Messages.Get("me", msg.Id).Do()
		if err != nil {
			s.logger.Error("Failed to get message", "emailID", msg.Id, "error", err)
			continue
		}

		email, err := s.convertToEmail(fullMsg)
		if err != nil {
			s.logger.Error("Failed to convert message", "emailID", msg.Id, "error", err)
			continue
		}

		if !looksLikeFlightEmail(email) {
			s.logger.Debug("Email doesn't look flight-related", "subject", email.Subject)
			filteredCount++
			continue
		}

		s.logger.Info("Storing new email",
			"subject", email.Subject,
			"emailID", email.EmailID,
			"receivedAt", email.ReceivedAt.Format("2006-01-02 15:04:05 UTC"))

		if err := s.emailRepo.Save(ctx, email); err != nil {
			s.logger.Error("Failed to save email", "emailID", msg.Id, "error", err)
			continue
		}
		newEmailsCount++
	}

	s.logger.Info("Email fetch completed",
		"totalFromGmail", len(messages),
		"alreadyInDB", skippedExistingCount,
		"filteredOut", filteredCount,
		"newEmails", newEmailsCount)

	return nil
}

// listAllMessages walks every result page for the query. A busy year spans
// many pages and Gmail caps each List response at roughly a hundred ids.
func (s *GmailService) listAllMessages(query string) ([]*gmail.Message, error) {
	var messages []*gmail.Message
	pageToken := ""

	for {
		req := s.gmailService.Users.Messages.List("me").Q(query)
		if pageToken != "" {
			req.PageToken(pageToken)
		}

		resp, err := req.Do()
		if err != nil {
			return nil, err
		}
		messages = append(messages, resp.Messages...)

		if resp.NextPageToken == "" {
			return messages, nil
		}
		pageToken = resp.NextPageToken
	}
}

// StartPolling starts polling Gmail for new emails
func (s *GmailService) StartPolling(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Gmail polling stopped")
			return
		case <-ticker.C:
			s.logger.Info("Polling Gmail for new emails")
			if err := s.FetchEmails(ctx); err != nil {
				s.logger.Error("Error polling Gmail", "error", err)
			}
		}
	}
}

// looksLikeFlightEmail is a cheap prefilter so the store doesn't fill with
// newsletters. The real classification is the pipeline's format detector.
func looksLikeFlightEmail(email *entity.Email) bool {
	sender := strings.ToLower(email.From)
	for _, domain := range flightSenderDomains {
		if strings.Contains(sender, domain) {
			return true
		}
	}

	subject := strings.ToLower(email.Subject)
	for _, indicator := range flightSubjectIndicators {
		if strings.Contains(subject, indicator) {
			return true
		}
	}

	return flightNumberToken.MatchString(email.Subject)
}

// convertToEmail converts a Gmail message to our domain entity
func (s *GmailService) convertToEmail(msg *gmail.Message) (*entity.Email, error) {
	email := &entity.Email{
		EmailID: msg.Id,
		Labels:  msg.LabelIds,
	}

	for _, header := range msg.Payload.Headers {
		switch header.Name {
		case "From":
			email.From = header.Value
		case "To":
			email.To = header.Value
		case "Subject":
			email.Subject = header.Value
		}
	}

	if msg.Payload.Body != nil && msg.Payload.Body.Data != "" {
		data, err := base64.URLEncoding.DecodeString(msg.Payload.Body.Data)
		if err != nil {
			return nil, err
		}
		email.Body = string(data)
	}

	// Multipart messages carry the text and HTML renditions as parts
	for _, part := range msg.Payload.Parts {
		if part.Body == nil || part.Body.Data == "" {
			continue
		}
		data, err := base64.URLEncoding.DecodeString(part.Body.Data)
		if err != nil {
			continue
		}
		switch part.MimeType {
		case "text/plain":
			email.Body = string(data)
		case "text/html":
			email.HTMLBody = string(data)
		}
	}

	email.ReceivedAt = time.Unix(0, msg.InternalDate*int64(time.Millisecond))

	return email, nil
}
