package parser

import (
	"flightlog-service/internal/domain/entity"
	"flightlog-service/pkg/logger"
)

// ProviderParser produces raw flight segments from an email of its known
// format. Implementations never fail: malformed input yields fewer fields or
// zero segments, not an error.
type ProviderParser interface {
	Format() entity.ProviderFormat
	Parse(email *entity.Email) []entity.RawSegment
}

// Registry holds the parser for each known provider format.
type Registry struct {
	parsers map[entity.ProviderFormat]ProviderParser
	logger  logger.Logger
}

// NewRegistry creates an empty parser registry
func NewRegistry(log logger.Logger) *Registry {
	return &Registry{
		parsers: make(map[entity.ProviderFormat]ProviderParser),
		logger:  log,
	}
}

// Register adds a parser for its format
func (r *Registry) Register(p ProviderParser) {
	r.parsers[p.Format()] = p
	r.logger.Info("Registered provider parser", "format", p.Format())
}

// Get returns the parser for a format, or nil when the format has no parser.
// A nil result means zero yield for the email, not an error.
func (r *Registry) Get(format entity.ProviderFormat) ProviderParser {
	return r.parsers[format]
}

// DefaultRegistry builds a registry with every supported provider.
func DefaultRegistry(log logger.Logger) *Registry {
	registry := NewRegistry(log)
	registry.Register(NewVietJetParser(log))
	registry.Register(NewTripComParser(log))
	registry.Register(NewBookingComParser(log))
	return registry
}
