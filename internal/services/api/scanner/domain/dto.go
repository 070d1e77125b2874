// Package domain holds DTOs for scanner http and service contracts
package domain

import (
	"time"

	"caisse/internal/adapters/decoder/push"
	"caisse/internal/core/scan"
)

// OpenInput opens a scanning session; readers narrow the default symbologies
type OpenInput struct {
	Readers []string `json:"readers,omitempty" validate:"omitempty,max=8,dive,required,max=32" example:"ean_reader"`
}

// DetectionInput is one raw read posted by the client decoder
type DetectionInput struct {
	Value      string   `json:"value" validate:"required,max=64" example:"3017620422003"`
	Confidence *float64 `json:"confidence,omitempty" validate:"omitempty,gte=0,lte=1" example:"0.92"`
}

// Detection converts the input to a raw read
func (in DetectionInput) Detection() scan.RawDetection {
	return scan.RawDetection{Value: in.Value, Confidence: in.Confidence}
}

// FrameInput is overlay geometry for a processed frame
type FrameInput struct {
	Box   []scan.Point   `json:"box,omitempty" validate:"omitempty,max=16"`
	Boxes [][]scan.Point `json:"boxes,omitempty" validate:"omitempty,max=32"`
	Code  string         `json:"code,omitempty" validate:"omitempty,max=64"`
}

// EnabledInput toggles scanning
type EnabledInput struct {
	Enabled bool `json:"enabled"`
}

// ConsumerResult is what the cart did with a confirmed value
type ConsumerResult struct {
	Matched   bool   `json:"matched"`
	ProductID string `json:"product_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ConfirmedScan is a confirmed event and its effect on the cart
type ConfirmedScan struct {
	Seq    uint64              `json:"seq"`
	Event  scan.ConfirmedEvent `json:"event"`
	Result ConsumerResult      `json:"result"`
}

// DetectionResult reports what a posted read did
type DetectionResult struct {
	Delivered bool           `json:"delivered"`
	Confirmed *ConfirmedScan `json:"confirmed,omitempty"`
	State     scan.State     `json:"state"`
}

// Session is the status of a scanning session
type Session struct {
	ID        string               `json:"id"`
	OpenedAt  time.Time            `json:"opened_at"`
	Phase     string               `json:"decoder_phase"`
	Stream    scan.StreamConfig    `json:"stream"`
	State     scan.State           `json:"state"`
	Decoder   push.Counters        `json:"decoder"`
	LastFrame *scan.ProcessedFrame `json:"last_frame,omitempty"`
	LastScan  *ConfirmedScan       `json:"last_scan,omitempty"`
}
