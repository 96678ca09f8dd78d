package repository

import (
	"context"
	"time"

	"flightlog-service/internal/domain/entity"
)

// EmailRepository defines the interface for the email log store.
type EmailRepository interface {
	Save(ctx context.Context, email *entity.Email) error
	FindUnprocessed(ctx context.Context, limit int) ([]*entity.Email, error)
	FindAll(ctx context.Context) ([]*entity.Email, error)
	FindByEmailIDs(ctx context.Context, emailIDs []string) (map[string]*entity.Email, error)
	GetLastEmail(ctx context.Context) (*entity.Email, error)
	UpdateStatusByEmailID(ctx context.Context, emailID string, status string, startedAt time.Time) error
	UpdateProcessStepsByEmailID(ctx context.Context, emailID string, steps entity.ProcessSteps) error
	MarkAsProcessedByEmailID(ctx context.Context, emailID, status, provider, errorDetail string, extractedData map[string]interface{}) error
	ResetProcessingEmails(ctx context.Context) error
}
