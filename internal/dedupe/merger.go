// Package dedupe folds normalized flight records into a travel history,
// reconciling records that describe the same real-world flight.
package dedupe

import (
	"flightlog-service/internal/domain/entity"
)

// Merge groups records by dedup key and merges each group into one record.
// The merge is field-by-field: the more complete record wins a contested
// field; on a completeness tie the record from the later source email wins.
// Provenance ids are always unioned. Merge is idempotent: feeding the output
// back in (or the input twice) yields the same history.
func Merge(records []entity.FlightRecord) entity.TravelHistory {
	merged := make(map[string]*entity.FlightRecord, len(records))
	order := make([]string, 0, len(records))

	for i := range records {
		record := records[i]
		existing, ok := merged[record.DedupKey]
		if !ok {
			clone := record
			clone.SourceEmailIDs = nil
			for _, id := range record.SourceEmailIDs {
				clone.AddSourceEmailID(id)
			}
			merged[record.DedupKey] = &clone
			order = append(order, record.DedupKey)
			continue
		}
		mergeInto(existing, &record)
	}

	history := make(entity.TravelHistory, 0, len(order))
	for _, key := range order {
		history = append(history, *merged[key])
	}
	history.Sort()
	return history
}

// mergeInto folds src into dst, which share a dedup key.
func mergeInto(dst, src *entity.FlightRecord) {
	winner, loser := dst, src
	if preferSecond(dst, src) {
		winner, loser = src, dst
	}

	result := *winner
	if result.Arrival.IsZero() {
		result.Arrival = loser.Arrival
	}
	if result.Airline == "" {
		result.Airline = loser.Airline
	}
	if result.DurationMinutes == 0 {
		result.DurationMinutes = loser.DurationMinutes
	}
	if loser.LastSourceAt.After(result.LastSourceAt) {
		result.LastSourceAt = loser.LastSourceAt
	}

	result.SourceEmailIDs = nil
	for _, id := range dst.SourceEmailIDs {
		result.AddSourceEmailID(id)
	}
	for _, id := range src.SourceEmailIDs {
		result.AddSourceEmailID(id)
	}

	*dst = result
}

// preferSecond decides whether b should supply the contested field values:
// more complete data wins, a tie goes to the later source email.
func preferSecond(a, b *entity.FlightRecord) bool {
	fa, fb := a.FilledFieldCount(), b.FilledFieldCount()
	if fa != fb {
		return fb > fa
	}
	return b.LastSourceAt.After(a.LastSourceAt)
}
