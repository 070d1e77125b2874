package domain

import (
	"context"

	"caisse/internal/core/scan"
)

// ServicePort defines the service contract for scanning sessions
type ServicePort interface {
	Open(ctx context.Context, in OpenInput) (Session, error)
	Current(ctx context.Context) (Session, error)
	Status(ctx context.Context, id string) (Session, error)
	Detect(ctx context.Context, id string, in DetectionInput) (DetectionResult, error)
	Frame(ctx context.Context, id string, in FrameInput) (bool, error)
	SetEnabled(ctx context.Context, id string, enabled bool) (Session, error)
	Confirmed(ctx context.Context, id string) ([]ConfirmedScan, error)
	Close(ctx context.Context, id string) error
	Stream(ctx context.Context) (scan.StreamConfig, error)
}

// ConsumerPort receives confirmed values
type ConsumerPort interface {
	Consume(ctx context.Context, ev scan.ConfirmedEvent) (ConsumerResult, error)
}

// ConsumerFunc adapts a function to ConsumerPort
type ConsumerFunc func(ctx context.Context, ev scan.ConfirmedEvent) (ConsumerResult, error)

// Consume calls f
func (f ConsumerFunc) Consume(ctx context.Context, ev scan.ConfirmedEvent) (ConsumerResult, error) {
	return f(ctx, ev)
}
