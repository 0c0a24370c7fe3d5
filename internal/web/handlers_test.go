package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/mjoubert/blindgo/internal/hw/clock"
	"github.com/mjoubert/blindgo/internal/hw/gpio"
	"github.com/mjoubert/blindgo/internal/hw/motor"
	"github.com/mjoubert/blindgo/internal/logic/motion"
	"github.com/mjoubert/blindgo/internal/logic/position"
)

func newTestServer(t *testing.T) (*Server, *motion.Controller, *clock.Manual) {
	t.Helper()

	clk := clock.NewManual()
	m := motor.New(gpio.NewMockDriver(), clk, motor.Config{
		Pins:    [4]int{17, 18, 27, 22},
		MinStep: 0,
		MaxStep: 200,
	})
	ctrl := motion.NewController(m, position.Span{MinStep: 0, MaxStep: 200}, 0)

	staticFS := fstest.MapFS{
		"index.html": &fstest.MapFile{Data: []byte("<html>test</html>")},
	}
	h := NewHandlers(NewStatusBroadcaster(), ctrl, staticFS)
	return NewServer(":0", h), ctrl, clk
}

func TestHandleStatus(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var st motion.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if st.Position != 0 || st.Moving {
		t.Errorf("initial status = %+v, want idle at 0", st)
	}
}

func TestHandleMove_Percent(t *testing.T) {
	srv, ctrl, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/move", strings.NewReader(`{"percent": 50}`))
	rec := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}
	st := ctrl.Status()
	if !st.Moving || st.Target != 100 {
		t.Errorf("controller status = %+v, want moving toward step 100", st)
	}
}

func TestHandleMove_Step(t *testing.T) {
	srv, ctrl, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/move", strings.NewReader(`{"step": 30}`))
	rec := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}
	if st := ctrl.Status(); st.Target != 30 {
		t.Errorf("target = %d, want 30", st.Target)
	}
}

func TestHandleMove_ClampsOutOfRange(t *testing.T) {
	srv, ctrl, _ := newTestServer(t)

	// Clamping is the contract, not an error.
	req := httptest.NewRequest(http.MethodPost, "/move", strings.NewReader(`{"step": 9999}`))
	rec := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	if st := ctrl.Status(); st.Target != 200 {
		t.Errorf("target = %d, want clamp to 200", st.Target)
	}
}

func TestHandleMove_BadRequests(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty_object", `{}`},
		{"both_fields", `{"step": 10, "percent": 50}`},
		{"not_json", `steps please`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _, _ := newTestServer(t)
			req := httptest.NewRequest(http.MethodPost, "/move", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			srv.Mux().ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHandleStop(t *testing.T) {
	srv, ctrl, _ := newTestServer(t)

	if err := ctrl.MoveToStep(100); err != nil {
		t.Fatalf("MoveToStep: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/stop", nil)
	rec := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if st := ctrl.Status(); st.Moving {
		t.Errorf("controller still moving after /stop: %+v", st)
	}
}

func TestServeIndex(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "test") {
		t.Errorf("index body = %q", rec.Body.String())
	}
}

func TestMux_UnknownPath(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
