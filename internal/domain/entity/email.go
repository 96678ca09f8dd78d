package entity

import (
	"time"
)

// Email Process Status
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
	StatusSkipped    = "SKIPPED"
)

// Email represents a raw email message handed to the extraction pipeline.
// The fetch collaborator owns it; the pipeline only reads it.
type Email struct {
	EmailID       string                 `bson:"emailId"`
	From          string                 `bson:"from"`
	To            string                 `bson:"to"`
	Subject       string                 `bson:"subject"`
	Body          string                 `bson:"body"`
	HTMLBody      string                 `bson:"htmlBody"`
	ReceivedAt    time.Time              `bson:"receivedAt"`
	Labels        []string               `bson:"labels"`
	ProcessedAt   time.Time              `bson:"processedAt"`
	ProcessStatus string                 `bson:"processStatus"`
	Provider      string                 `bson:"provider"`
	StartedAt     time.Time              `bson:"processStartedAt"`
	ProcessSteps  ProcessSteps           `bson:"processSteps"`
	ErrorDetail   string                 `bson:"errorDetail"`
	ExtractedData map[string]interface{} `bson:"extractedData"`
}

// ProcessSteps tracks how far the pipeline got with one email.
type ProcessSteps struct {
	SegmentsExtracted int `bson:"segmentsExtracted"`
	RecordsNormalized int `bson:"recordsNormalized"`
	FailuresCollected int `bson:"failuresCollected"`
}
