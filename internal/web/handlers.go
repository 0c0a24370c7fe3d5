package web

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/mjoubert/blindgo/internal/logic/motion"
)

// MoveRequest is the body of POST /move. Exactly one of Step or
// Percent must be present; out-of-range values are clamped by the
// motor, not rejected.
type MoveRequest struct {
	Step    *int `json:"step,omitempty"`
	Percent *int `json:"percent,omitempty"`
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	Broadcaster *StatusBroadcaster
	Ctrl        *motion.Controller
	staticFS    fs.FS
}

// NewHandlers creates handlers with the given dependencies.
func NewHandlers(broadcaster *StatusBroadcaster, ctrl *motion.Controller, staticFS fs.FS) *Handlers {
	return &Handlers{
		Broadcaster: broadcaster,
		Ctrl:        ctrl,
		staticFS:    staticFS,
	}
}

// ServeIndex serves the main HTML page (root path only).
func (h *Handlers) ServeIndex(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(h.staticFS, "index.html")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// HandleStatus returns the current blind state as JSON.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Ctrl.Status())
}

// HandleMove handles POST /move to start or redirect a move.
func (h *Handlers) HandleMove(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if (req.Step == nil) == (req.Percent == nil) {
		http.Error(w, "exactly one of step or percent is required", http.StatusBadRequest)
		return
	}

	var err error
	if req.Step != nil {
		h.Broadcaster.BroadcastMsg(fmt.Sprintf("Move requested: step %d", *req.Step))
		err = h.Ctrl.MoveToStep(*req.Step)
	} else {
		h.Broadcaster.BroadcastMsg(fmt.Sprintf("Move requested: %d%%", *req.Percent))
		err = h.Ctrl.MoveToPercent(*req.Percent)
	}
	if err != nil {
		h.Broadcaster.Broadcast("error", "Move failed: "+err.Error())
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(h.Ctrl.Status())
}

// HandleStop handles POST /stop to cancel a move in flight.
func (h *Handlers) HandleStop(w http.ResponseWriter, r *http.Request) {
	if err := h.Ctrl.Stop(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.Broadcaster.BroadcastMsg("Stopped")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Ctrl.Status())
}

// HandleStatusStream handles GET /status/stream for SSE.
func (h *Handlers) HandleStatusStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx

	ch, unsub := h.Broadcaster.Subscribe()
	defer unsub()

	// Send initial comment to establish connection
	w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	// Heartbeat while idle
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			w.Write([]byte("data: " + msg + "\n\n"))
			flusher.Flush()

		case <-ticker.C:
			w.Write([]byte(": heartbeat\n\n"))
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
