// Package http provides http transport for scanning sessions
package http

import (
	stdhttp "net/http"
	"time"

	"caisse/internal/modkit/httpkit"
	"caisse/internal/services/api/scanner/domain"
	svc "caisse/internal/services/api/scanner/service"
)

// reads and frames arrive once per camera frame; past this the till is told to back off
const (
	frameInFlight = 8
	frameBacklog  = 32
	frameWait     = 250 * time.Millisecond
)

// Register mounts scanner endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	httpkit.Get(r, "/stream", h.stream)
	httpkit.PostJSON[domain.OpenInput](r, "/sessions", h.open)
	httpkit.Get(r, "/sessions/current", h.current)
	httpkit.Get(r, "/sessions/{id}", h.status)
	r.Group(func(g httpkit.Router) {
		g.Use(httpkit.Throttle(frameInFlight, frameBacklog, frameWait))
		httpkit.PostJSON[domain.DetectionInput](g, "/sessions/{id}/detections", h.detect)
		httpkit.PostJSON[domain.FrameInput](g, "/sessions/{id}/frames", h.frame)
	})
	httpkit.PutJSON[domain.EnabledInput](r, "/sessions/{id}/enabled", h.setEnabled)
	httpkit.Get(r, "/sessions/{id}/confirmed", h.confirmed)
	httpkit.Delete(r, "/sessions/{id}", h.close)
}

type handlers struct{ svc svc.Service }

// @Summary Stream and decoder settings for the client camera
// @Tags Scanner
// @Produce json
// @Success 200 {object} scan.StreamConfig "ok"
// @Router /scanner/stream [get]
func (h *handlers) stream(r *stdhttp.Request) (any, error) {
	return h.svc.Stream(r.Context())
}

// @Summary Open the scanning session
// @Tags Scanner
// @Accept json
// @Produce json
// @Param payload body domain.OpenInput true "Session"
// @Success 201 {object} domain.Session "created"
// @Failure 409 {object} phttp.Envelope "a session is already active"
// @Router /scanner/sessions [post]
func (h *handlers) open(r *stdhttp.Request, in domain.OpenInput) (any, error) {
	s, err := h.svc.Open(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.CreatedAt(r, s.ID, s), nil
}

// @Summary The active scanning session
// @Tags Scanner
// @Produce json
// @Success 200 {object} domain.Session "ok"
// @Failure 404 {object} phttp.Envelope "no active session"
// @Router /scanner/sessions/current [get]
func (h *handlers) current(r *stdhttp.Request) (any, error) {
	return h.svc.Current(r.Context())
}

// @Summary Session status with pipeline counters
// @Tags Scanner
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} domain.Session "ok"
// @Router /scanner/sessions/{id} [get]
func (h *handlers) status(r *stdhttp.Request) (any, error) {
	return h.svc.Status(r.Context(), httpkit.Param(r, "id"))
}

// @Summary Post one raw decoder read
// @Tags Scanner
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param payload body domain.DetectionInput true "Read"
// @Success 200 {object} domain.DetectionResult "ok"
// @Router /scanner/sessions/{id}/detections [post]
func (h *handlers) detect(r *stdhttp.Request, in domain.DetectionInput) (any, error) {
	return h.svc.Detect(r.Context(), httpkit.Param(r, "id"), in)
}

// @Summary Post overlay geometry for a processed frame
// @Tags Scanner
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param payload body domain.FrameInput true "Frame"
// @Success 200 {object} map[string]bool "ok"
// @Router /scanner/sessions/{id}/frames [post]
func (h *handlers) frame(r *stdhttp.Request, in domain.FrameInput) (any, error) {
	ok, err := h.svc.Frame(r.Context(), httpkit.Param(r, "id"), in)
	if err != nil {
		return nil, err
	}
	return map[string]bool{"delivered": ok}, nil
}

// @Summary Turn scanning on or off
// @Tags Scanner
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param payload body domain.EnabledInput true "Toggle"
// @Success 200 {object} domain.Session "ok"
// @Router /scanner/sessions/{id}/enabled [put]
func (h *handlers) setEnabled(r *stdhttp.Request, in domain.EnabledInput) (any, error) {
	return h.svc.SetEnabled(r.Context(), httpkit.Param(r, "id"), in.Enabled)
}

// @Summary Confirmed scans of the session
// @Tags Scanner
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {array} domain.ConfirmedScan "ok"
// @Router /scanner/sessions/{id}/confirmed [get]
func (h *handlers) confirmed(r *stdhttp.Request) (any, error) {
	return h.svc.Confirmed(r.Context(), httpkit.Param(r, "id"))
}

// @Summary Close the scanning session
// @Tags Scanner
// @Param id path string true "Session id"
// @Success 204 "closed"
// @Router /scanner/sessions/{id} [delete]
func (h *handlers) close(r *stdhttp.Request) (any, error) {
	if err := h.svc.Close(r.Context(), httpkit.Param(r, "id")); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}
