package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "fitcoach-api"

// Counter is a named Int64 counter on the global meter. The instrument is
// resolved on each call so it follows the provider installed by Initialize.
type Counter struct {
	name        string
	description string
}

var (
	PersonalRecordsCreated = Counter{name: "fitcoach.personal_records.created", description: "Personal records minted by PR detection"}
	AITokensReserved       = Counter{name: "fitcoach.ai.tokens_reserved", description: "Estimated AI tokens reserved against daily budgets"}
)

// Add records n on the counter. Instrument errors are dropped; metrics never fail a request.
func (c Counter) Add(ctx context.Context, n int64, attrs ...attribute.KeyValue) {
	counter, err := otel.Meter(meterName).Int64Counter(c.name, metric.WithDescription(c.description))
	if err != nil {
		return
	}
	counter.Add(ctx, n, metric.WithAttributes(attrs...))
}
