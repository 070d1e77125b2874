package replay

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"caisse/internal/core/scan"
	perr "caisse/internal/platform/errors"
)

// Line is one scripted decoder read
// Delay is extra time waited before the frame on top of the frame pacing
type Line struct {
	Detection scan.RawDetection
	Delay     time.Duration
}

// Parse reads a replay script
//
//	# comment
//	value[,confidence[,delay]]
//
// blank lines and comments are skipped; an empty confidence means the decoder
// reported none
func Parse(r io.Reader) ([]Line, error) {
	var out []Line
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		ln, err := parseLine(raw)
		if err != nil {
			return nil, perr.WithField(err, "line "+strconv.Itoa(n))
		}
		out = append(out, ln)
	}
	if err := sc.Err(); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "read replay script")
	}
	return out, nil
}

func parseLine(raw string) (Line, error) {
	parts := strings.Split(raw, ",")
	if len(parts) > 3 {
		return Line{}, perr.InvalidArgf("expected value[,confidence[,delay]], got %d fields", len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	ln := Line{Detection: scan.RawDetection{Value: parts[0]}}
	if len(parts) > 1 && parts[1] != "" {
		c, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return Line{}, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "confidence %q", parts[1])
		}
		if math.IsNaN(c) || c < 0 || c > 1 {
			return Line{}, perr.InvalidArgf("confidence %q is outside [0,1]", parts[1])
		}
		ln.Detection.Confidence = scan.Conf(c)
	}
	if len(parts) > 2 && parts[2] != "" {
		d, err := time.ParseDuration(parts[2])
		if err != nil {
			return Line{}, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "delay %q", parts[2])
		}
		if d < 0 {
			return Line{}, perr.InvalidArgf("delay %q is negative", parts[2])
		}
		ln.Delay = d
	}
	return ln, nil
}
