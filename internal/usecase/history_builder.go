package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"flightlog-service/internal/dedupe"
	"flightlog-service/internal/domain/entity"
	"flightlog-service/internal/domain/repository"
	"flightlog-service/internal/normalize"
	"flightlog-service/internal/parser"
	"flightlog-service/pkg/logger"
	"flightlog-service/pkg/metrics"
)

// HistoryBuilder runs the extraction pipeline over a batch of emails:
// detect format, parse segments, normalize, merge. Per-email and per-segment
// failures are local; only wiring problems surface as errors.
type HistoryBuilder struct {
	detector    *parser.FormatDetector
	registry    *parser.Registry
	normalizer  *normalize.Normalizer
	emailRepo   repository.EmailRepository
	historyRepo repository.TravelHistoryRepository
	metrics     *metrics.Metrics
	logger      logger.Logger
}

// NewHistoryBuilder creates a new history builder. historyRepo and metrics
// may be nil when persistence or observability is not wired (tests).
func NewHistoryBuilder(
	detector *parser.FormatDetector,
	registry *parser.Registry,
	normalizer *normalize.Normalizer,
	emailRepo repository.EmailRepository,
	historyRepo repository.TravelHistoryRepository,
	m *metrics.Metrics,
	log logger.Logger,
) *HistoryBuilder {
	return &HistoryBuilder{
		detector:    detector,
		registry:    registry,
		normalizer:  normalizer,
		emailRepo:   emailRepo,
		historyRepo: historyRepo,
		metrics:     m,
		logger:      log,
	}
}

// BuildHistory processes one finite batch and returns the merged travel
// history plus the normalization-failure side channel. Persisted records are
// reconciled with their stored version first, so an incremental batch never
// loses fields contributed by earlier batches.
func (b *HistoryBuilder) BuildHistory(ctx context.Context, emails []*entity.Email) (entity.TravelHistory, []entity.NormalizationFailure, error) {
	runID := uuid.NewString()
	started := time.Now()
	b.logger.Info("Building travel history", "runID", runID, "emailCount", len(emails))

	history, failures := b.extract(ctx, runID, emails)

	if b.historyRepo != nil {
		for i := range history {
			b.reconcile(ctx, &history[i])
			if err := b.historyRepo.Upsert(ctx, &history[i]); err != nil {
				b.logger.Error("Failed to save flight record",
					"dedupKey", history[i].DedupKey,
					"error", err)
			}
		}
	}

	if b.metrics != nil {
		b.metrics.RecordsMerged.Add(float64(len(history)))
		b.metrics.BatchProcessingTime.Observe(time.Since(started).Seconds())
	}

	b.logger.Info("Travel history built",
		"runID", runID,
		"emails", len(emails),
		"records", len(history),
		"failures", len(failures),
		"elapsed", time.Since(started).String())

	return history, failures, nil
}

// extract runs detect -> parse -> normalize over the batch and merges the
// yield. Pure apart from email-log bookkeeping; persistence is the caller's.
func (b *HistoryBuilder) extract(ctx context.Context, runID string, emails []*entity.Email) (entity.TravelHistory, []entity.NormalizationFailure) {
	var records []entity.FlightRecord
	var failures []entity.NormalizationFailure

	for _, email := range emails {
		emailRecords, emailFailures := b.processEmail(ctx, runID, email)
		records = append(records, emailRecords...)
		failures = append(failures, emailFailures...)

		if b.metrics != nil {
			b.metrics.EmailsProcessed.Inc()
		}
	}

	return dedupe.Merge(records), failures
}

// reconcile folds the stored version of a record into the fresh one. Identity
// fields agree by dedup key; the stored id and creation time survive.
func (b *HistoryBuilder) reconcile(ctx context.Context, record *entity.FlightRecord) {
	stored, err := b.historyRepo.FindByDedupKey(ctx, record.DedupKey)
	if err != nil || stored == nil {
		return
	}

	merged := dedupe.Merge([]entity.FlightRecord{*stored, *record})[0]
	merged.ID = stored.ID
	merged.CreatedAt = stored.CreatedAt
	*record = merged
}

// processEmail runs detect -> parse -> normalize for one email and keeps the
// email log's status in step with the outcome.
func (b *HistoryBuilder) processEmail(ctx context.Context, runID string, email *entity.Email) ([]entity.FlightRecord, []entity.NormalizationFailure) {
	format := b.detector.Detect(email)
	if format == entity.FormatUnrecognized {
		// Not an error: the email just isn't from a supported provider
		b.markProcessed(ctx, email.EmailID, entity.StatusSkipped, format, "no matching provider signature", map[string]interface{}{
			"runId":   runID,
			"subject": email.Subject,
		})
		return nil, nil
	}

	providerParser := b.registry.Get(format)
	if providerParser == nil {
		b.logger.Warn("Detected format has no registered parser", "format", format, "emailID", email.EmailID)
		b.markProcessed(ctx, email.EmailID, entity.StatusSkipped, format, "no parser registered for format", map[string]interface{}{
			"runId": runID,
		})
		return nil, nil
	}

	if err := b.emailRepo.UpdateStatusByEmailID(ctx, email.EmailID, entity.StatusProcessing, time.Now()); err != nil {
		b.logger.Error("Failed to update status to PROCESSING", "emailID", email.EmailID, "error", err)
	}

	segments := providerParser.Parse(email)
	if b.metrics != nil {
		b.metrics.SegmentsExtracted.Add(float64(len(segments)))
	}

	var records []entity.FlightRecord
	var failures []entity.NormalizationFailure

	for _, seg := range segments {
		record, failure := b.normalizer.Normalize(ctx, seg)
		if failure != nil {
			failures = append(failures, *failure)
			if b.metrics != nil {
				b.metrics.NormalizationFailures.WithLabelValues(string(failure.Reason)).Inc()
			}
			continue
		}
		records = append(records, *record)
	}

	steps := entity.ProcessSteps{
		SegmentsExtracted: len(segments),
		RecordsNormalized: len(records),
		FailuresCollected: len(failures),
	}
	if err := b.emailRepo.UpdateProcessStepsByEmailID(ctx, email.EmailID, steps); err != nil {
		b.logger.Error("Failed to update process steps", "emailID", email.EmailID, "error", err)
	}

	extracted := map[string]interface{}{
		"runId":        runID,
		"provider":     format.String(),
		"segmentCount": len(segments),
		"recordCount":  len(records),
		"failureCount": len(failures),
	}

	switch {
	case len(segments) == 0:
		b.markProcessed(ctx, email.EmailID, entity.StatusSkipped, format, "no usable segments", extracted)
	case len(records) == 0:
		b.markProcessed(ctx, email.EmailID, entity.StatusFailed, format, "every segment failed normalization", extracted)
	default:
		b.markProcessed(ctx, email.EmailID, entity.StatusCompleted, format, "", extracted)
	}

	return records, failures
}

func (b *HistoryBuilder) markProcessed(ctx context.Context, emailID, status string, format entity.ProviderFormat, detail string, extracted map[string]interface{}) {
	if err := b.emailRepo.MarkAsProcessedByEmailID(ctx, emailID, status, format.String(), detail, extracted); err != nil {
		b.logger.Error("Failed to mark email as processed",
			"emailID", emailID,
			"status", status,
			"error", err)
	}
}

// ProcessPendingEmails picks up unprocessed emails from the log and runs one
// batch over them. Stale PROCESSING entries from a crashed run are reset
// first so nothing is lost.
func (b *HistoryBuilder) ProcessPendingEmails(ctx context.Context) error {
	if err := b.emailRepo.ResetProcessingEmails(ctx); err != nil {
		b.logger.Error("Failed to reset stale emails", "error", err)
	}

	emails, err := b.emailRepo.FindUnprocessed(ctx, 100)
	if err != nil {
		return err
	}
	if len(emails) == 0 {
		return nil
	}

	history, failures, err := b.BuildHistory(ctx, emails)
	if err != nil {
		return err
	}

	b.logger.Info("Pending batch processed",
		"emails", len(emails),
		"records", len(history),
		"failures", len(failures))
	for _, failure := range failures {
		b.logger.Warn("Normalization failure", "detail", failure.String())
	}

	return nil
}

// RebuildHistory reprocesses the entire stored email log and swaps the
// persisted history for the freshly merged result. Run at startup so the
// stored history always reflects the current extraction rules.
func (b *HistoryBuilder) RebuildHistory(ctx context.Context) error {
	runID := uuid.NewString()

	emails, err := b.emailRepo.FindAll(ctx)
	if err != nil {
		return err
	}
	if len(emails) == 0 {
		return nil
	}

	b.logger.Info("Rebuilding travel history", "runID", runID, "emailCount", len(emails))
	history, failures := b.extract(ctx, runID, emails)

	if b.historyRepo != nil {
		if err := b.historyRepo.ReplaceHistory(ctx, history); err != nil {
			return err
		}
	}

	b.logger.Info("Travel history rebuilt",
		"runID", runID,
		"emails", len(emails),
		"records", len(history),
		"failures", len(failures))
	return nil
}
