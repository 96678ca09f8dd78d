package repository

import (
	"context"

	"flightlog-service/internal/domain/entity"
)

// TravelHistoryRepository defines the interface for the merged flight store.
type TravelHistoryRepository interface {
	FindByDedupKey(ctx context.Context, dedupKey string) (*entity.FlightRecord, error)
	Upsert(ctx context.Context, record *entity.FlightRecord) error
	ReplaceHistory(ctx context.Context, history entity.TravelHistory) error
}
