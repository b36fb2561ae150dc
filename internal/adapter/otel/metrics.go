package otel

import (
	"go.opentelemetry.io/otel/metric"
)

const meterName = "notestream"

// Metrics holds all notestream metric instruments.
type Metrics struct {
	EventsBroadcast  metric.Int64Counter
	Deliveries       metric.Int64Counter
	Evictions        metric.Int64Counter
	EncodeFailures   metric.Int64Counter
	Subscribers      metric.Int64UpDownCounter
	SnapshotNotes    metric.Int64Counter
	SnapshotDuration metric.Float64Histogram
	RelayMessages    metric.Int64Counter
}

// NewMetrics creates all metric instruments on the given provider.
// Pass otel.GetMeterProvider() to use the global provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter(meterName)
	m := &Metrics{}
	var err error

	m.EventsBroadcast, err = meter.Int64Counter("notestream.events.broadcast",
		metric.WithDescription("Number of events broadcast, by kind"))
	if err != nil {
		return nil, err
	}

	m.Deliveries, err = meter.Int64Counter("notestream.deliveries",
		metric.WithDescription("Number of frames written to subscribers"))
	if err != nil {
		return nil, err
	}

	m.Evictions, err = meter.Int64Counter("notestream.evictions",
		metric.WithDescription("Number of subscribers evicted after a failed write"))
	if err != nil {
		return nil, err
	}

	m.EncodeFailures, err = meter.Int64Counter("notestream.encode.failures",
		metric.WithDescription("Number of events that could not be encoded"))
	if err != nil {
		return nil, err
	}

	m.Subscribers, err = meter.Int64UpDownCounter("notestream.subscribers",
		metric.WithDescription("Currently registered subscribers"))
	if err != nil {
		return nil, err
	}

	m.SnapshotNotes, err = meter.Int64Counter("notestream.snapshot.notes",
		metric.WithDescription("Number of notes sent in initial snapshots"))
	if err != nil {
		return nil, err
	}

	m.SnapshotDuration, err = meter.Float64Histogram("notestream.snapshot.duration_seconds",
		metric.WithDescription("Time to send an initial snapshot"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	m.RelayMessages, err = meter.Int64Counter("notestream.relay.messages",
		metric.WithDescription("Number of mutation messages consumed from NATS, by subject"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
