package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "dayplan"

// Metrics holds all DayPlan metric instruments.
type Metrics struct {
	CommandsProcessed metric.Int64Counter
	ParseFallbacks    metric.Int64Counter
	CommandDuration   metric.Float64Histogram
	TasksCreated      metric.Int64Counter
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.CommandsProcessed, err = meter.Int64Counter("dayplan.commands.processed",
		metric.WithDescription("Number of natural language commands processed"))
	if err != nil {
		return nil, err
	}

	m.ParseFallbacks, err = meter.Int64Counter("dayplan.parse.fallbacks",
		metric.WithDescription("Number of commands that fell back to pattern parsing"))
	if err != nil {
		return nil, err
	}

	m.CommandDuration, err = meter.Float64Histogram("dayplan.command.duration_seconds",
		metric.WithDescription("Command processing duration in seconds"))
	if err != nil {
		return nil, err
	}

	m.TasksCreated, err = meter.Int64Counter("dayplan.tasks.created",
		metric.WithDescription("Number of tasks created"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
