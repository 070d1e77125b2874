package scan

import "context"

// Decoder is the frame capture and decode engine behind a scanning surface
// implementations deliver detections one at a time and must not hold their own
// locks while invoking the registered callbacks
type Decoder interface {
	Initialize(ctx context.Context, cfg StreamConfig) error
	Start() error
	Stop() error
	Pause() error

	// OnDetected registers the per-frame detection callback, replacing any previous one
	OnDetected(fn func(RawDetection))
	// OnProcessed registers the overlay geometry callback, replacing any previous one
	OnProcessed(fn func(ProcessedFrame))
}
