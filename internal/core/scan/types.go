package scan

import "time"

// RawDetection is one decoder read for a single frame, before confirmation
// Confidence is nil for symbologies where the decoder reports none
type RawDetection struct {
	Value      string   `json:"value"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Conf returns a pointer to c, handy for building detections in code
func Conf(c float64) *float64 { return &c }

// ConfirmedEvent is emitted at most once per confirmed, de-duplicated scan
type ConfirmedEvent struct {
	Value     string    `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Point is an overlay coordinate in frame pixels
type Point [2]float64

// ProcessedFrame carries overlay geometry for a processed frame
// it never takes part in confirmation
type ProcessedFrame struct {
	Box   []Point   `json:"box,omitempty"`
	Boxes [][]Point `json:"boxes,omitempty"`
	Code  string    `json:"code,omitempty"`
}

// Range is a min/ideal/max constraint triple
type Range struct {
	Min   int `json:"min"`
	Ideal int `json:"ideal"`
	Max   int `json:"max"`
}

// Area insets the decode region, each side as a percentage of the frame
type Area struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// StreamConfig configures the capture source and the decode engine
type StreamConfig struct {
	Source         string   `json:"source"`
	FacingMode     string   `json:"facing_mode"`
	Width          Range    `json:"width"`
	Height         Range    `json:"height"`
	AspectRatioMin float64  `json:"aspect_ratio_min"`
	AspectRatioMax float64  `json:"aspect_ratio_max"`
	FrameRate      Range    `json:"frame_rate"`
	Area           Area     `json:"area"`
	Readers        []string `json:"readers"`
	PatchSize      string   `json:"patch_size"`
	HalfSample     bool     `json:"half_sample"`
	Workers        int      `json:"workers"`
	Frequency      int      `json:"frequency"`
	Locate         bool     `json:"locate"`
}

// DefaultReaders lists the symbologies attempted by default
var DefaultReaders = []string{"ean_reader", "ean_8_reader", "code_128_reader", "code_39_reader", "upc_reader", "upc_e_reader"}

// DefaultStreamConfig is a rear camera live stream tuned for retail barcodes
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		Source:         "live",
		FacingMode:     "environment",
		Width:          Range{Min: 450, Ideal: 1280, Max: 1920},
		Height:         Range{Min: 300, Ideal: 720, Max: 1080},
		AspectRatioMin: 1,
		AspectRatioMax: 2,
		FrameRate:      Range{Min: 15, Ideal: 30},
		Area:           Area{Top: 30, Right: 15, Bottom: 30, Left: 15},
		Readers:        append([]string(nil), DefaultReaders...),
		PatchSize:      "medium",
		HalfSample:     true,
		Workers:        4,
		Frequency:      10,
		Locate:         true,
	}
}
