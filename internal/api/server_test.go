package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/voltmesh/voltmesh-core/internal/infrastructure/config"
	"github.com/voltmesh/voltmesh-core/internal/infrastructure/database"
	"github.com/voltmesh/voltmesh-core/internal/infrastructure/logging"
	"github.com/voltmesh/voltmesh-core/internal/manager"
	"github.com/voltmesh/voltmesh-core/internal/optimizer"
	"github.com/voltmesh/voltmesh-core/internal/orchestrator"
	_ "github.com/voltmesh/voltmesh-core/migrations"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	db, err := database.Open(database.Config{Path: ":memory:", BusyTimeout: 5})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	m := manager.New(db.DB)
	orch := orchestrator.New(m, optimizer.NewGreedy(), optimizer.FlatPrice(0.0003), 24*time.Hour)

	s, err := New(Deps{
		Config: config.APIConfig{
			Host:     "127.0.0.1",
			Timeouts: config.APITimeoutConfig{Read: 5, Write: 5, Idle: 10},
		},
		WS: config.WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logger:       logging.Default(),
		Manager:      m,
		Orchestrator: orch,
		DB:           db,
		Version:      "test",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, s.buildRouter()
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func createBattery(t *testing.T, h http.Handler, name string) int64 {
	t.Helper()
	w := doRequest(t, h, http.MethodPost, "/api/v1/devices", map[string]any{
		"name": name,
		"kind": "battery",
		"battery": map[string]any{
			"capacity_wh":          10000,
			"current_charge_wh":    5000,
			"max_charge_rate_w":    3000,
			"max_discharge_rate_w": 3000,
			"efficiency":           1,
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create battery: status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp deviceResponse
	decodeBody(t, w, &resp)
	return resp.ID
}

func TestHealth(t *testing.T) {
	_, h := newTestServer(t)

	w := doRequest(t, h, http.MethodGet, "/api/v1/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp map[string]any
	decodeBody(t, w, &resp)
	if resp["status"] != "ok" {
		t.Errorf("status = %v, want ok", resp["status"])
	}
	if resp["database"] != "ok" {
		t.Errorf("database = %v, want ok", resp["database"])
	}
}

func TestCreateAndGetBattery(t *testing.T) {
	_, h := newTestServer(t)

	id := createBattery(t, h, "home-battery")
	if id <= 0 {
		t.Fatalf("id = %d, want positive", id)
	}

	w := doRequest(t, h, http.MethodGet, fmt.Sprintf("/api/v1/devices/%d", id), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: status = %d", w.Code)
	}
	var resp deviceResponse
	decodeBody(t, w, &resp)
	if resp.Name != "home-battery" || resp.Kind != "battery" {
		t.Errorf("identity = %q/%q", resp.Name, resp.Kind)
	}
	if resp.Battery == nil {
		t.Fatal("battery payload missing")
	}
	if resp.Battery.CapacityWh != 10000 || resp.Battery.CurrentChargeWh != 5000 {
		t.Errorf("battery = %+v", resp.Battery)
	}
}

func TestCreateDeviceValidation(t *testing.T) {
	_, h := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"unknown kind", map[string]any{"name": "x", "kind": "toaster"}},
		{"missing payload", map[string]any{"name": "x", "kind": "battery"}},
		{"invalid efficiency", map[string]any{
			"name": "x",
			"kind": "battery",
			"battery": map[string]any{
				"capacity_wh":       1000,
				"current_charge_wh": 0,
				"efficiency":        2,
			},
		}},
		{"inverted window", map[string]any{
			"name": "x",
			"kind": "variable_action",
			"variable_action": map[string]any{
				"start":           "2026-01-02T00:00:00Z",
				"end":             "2026-01-01T00:00:00Z",
				"total_energy_wh": 1000,
				"max_power_w":     1000,
			},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, h, http.MethodPost, "/api/v1/devices", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
			}
		})
	}
}

func TestListDevices(t *testing.T) {
	_, h := newTestServer(t)

	createBattery(t, h, "battery-1")
	createBattery(t, h, "battery-2")

	w := doRequest(t, h, http.MethodGet, "/api/v1/devices", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Count int `json:"count"`
	}
	decodeBody(t, w, &resp)
	if resp.Count != 2 {
		t.Errorf("count = %d, want 2", resp.Count)
	}
}

func TestDeleteDevice(t *testing.T) {
	_, h := newTestServer(t)

	id := createBattery(t, h, "doomed")

	w := doRequest(t, h, http.MethodDelete, fmt.Sprintf("/api/v1/devices/%d", id), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d", w.Code)
	}
	w = doRequest(t, h, http.MethodGet, fmt.Sprintf("/api/v1/devices/%d", id), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want 404", w.Code)
	}

	// Removal is idempotent.
	w = doRequest(t, h, http.MethodDelete, "/api/v1/devices/9999", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete unknown: status = %d, want 204", w.Code)
	}
}

func TestGetDeviceState(t *testing.T) {
	_, h := newTestServer(t)

	id := createBattery(t, h, "home-battery")

	w := doRequest(t, h, http.MethodGet, fmt.Sprintf("/api/v1/devices/%d/state", id), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		DeviceID int64          `json:"device_id"`
		State    map[string]any `json:"state"`
	}
	decodeBody(t, w, &resp)
	if resp.DeviceID != id {
		t.Errorf("device_id = %d, want %d", resp.DeviceID, id)
	}
	if resp.State["charge"] != 5000.0 {
		t.Errorf("charge = %v, want 5000", resp.State["charge"])
	}

	w = doRequest(t, h, http.MethodGet, "/api/v1/devices/9999/state", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown device: status = %d, want 404", w.Code)
	}
}

func TestStopAction(t *testing.T) {
	s, h := newTestServer(t)

	now := time.Now()
	w := doRequest(t, h, http.MethodPost, "/api/v1/devices", map[string]any{
		"name": "dishwasher",
		"kind": "constant_action",
		"constant_action": map[string]any{
			"earliest_start":   now.Format(time.RFC3339),
			"latest_end":       now.Add(8 * time.Hour).Format(time.RFC3339),
			"duration_seconds": 5400,
			"power_w":          1800,
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %s", w.Code, w.Body.String())
	}
	var created deviceResponse
	decodeBody(t, w, &created)

	sim, ok := s.manager.Interactors().ConstantAction(created.ID)
	if !ok {
		t.Fatal("interactor not installed")
	}
	sim.Start(now)

	w = doRequest(t, h, http.MethodPost, fmt.Sprintf("/api/v1/devices/%d/stop", created.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stop: status = %d", w.Code)
	}
	var resp struct {
		State string `json:"state"`
	}
	decodeBody(t, w, &resp)
	if resp.State != "idle" {
		t.Errorf("state = %q, want idle", resp.State)
	}

	w = doRequest(t, h, http.MethodPost, "/api/v1/devices/9999/stop", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown device: status = %d, want 404", w.Code)
	}
}

func TestGeneratorOverride(t *testing.T) {
	_, h := newTestServer(t)

	w := doRequest(t, h, http.MethodPost, "/api/v1/devices", map[string]any{
		"name": "rooftop-pv",
		"kind": "generator",
		"generator": map[string]any{
			"max_power_w": 5000,
			"latitude":    52.52,
			"longitude":   13.4,
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %s", w.Code, w.Body.String())
	}
	var created deviceResponse
	decodeBody(t, w, &created)

	path := fmt.Sprintf("/api/v1/devices/%d/override", created.ID)
	w = doRequest(t, h, http.MethodPut, path, map[string]any{"power_w": 1234})
	if w.Code != http.StatusOK {
		t.Fatalf("set override: status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doRequest(t, h, http.MethodDelete, path, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("clear override: status = %d", w.Code)
	}

	w = doRequest(t, h, http.MethodPut, "/api/v1/devices/9999/override", map[string]any{"power_w": 1})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown device: status = %d, want 404", w.Code)
	}
}

func TestRunCycleAndSchedule(t *testing.T) {
	_, h := newTestServer(t)

	// Schedule before any cycle has run.
	w := doRequest(t, h, http.MethodGet, "/api/v1/cycle/schedule", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("schedule before run: status = %d, want 404", w.Code)
	}

	createBattery(t, h, "home-battery")

	w = doRequest(t, h, http.MethodPost, "/api/v1/cycle/run", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("run: status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doRequest(t, h, http.MethodGet, "/api/v1/cycle/schedule", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("schedule: status = %d", w.Code)
	}
	var resp struct {
		Assignments []assignmentPayload `json:"assignments"`
	}
	decodeBody(t, w, &resp)
	if len(resp.Assignments) != 1 {
		t.Fatalf("assignments = %d, want 1", len(resp.Assignments))
	}
	if resp.Assignments[0].Kind != "battery" || resp.Assignments[0].Profile == nil {
		t.Errorf("assignment = %+v", resp.Assignments[0])
	}
}

func TestGetStates(t *testing.T) {
	_, h := newTestServer(t)

	createBattery(t, h, "battery-1")
	createBattery(t, h, "battery-2")

	w := doRequest(t, h, http.MethodGet, "/api/v1/cycle/states", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Count int `json:"count"`
	}
	decodeBody(t, w, &resp)
	if resp.Count != 2 {
		t.Errorf("count = %d, want 2", resp.Count)
	}
}

func TestRequestIDHeader(t *testing.T) {
	_, h := newTestServer(t)

	w := doRequest(t, h, http.MethodGet, "/api/v1/health", nil)
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "caller-supplied")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "caller-supplied" {
		t.Errorf("X-Request-ID = %q, want caller-supplied", got)
	}
}

func TestWebSocketStateStream(t *testing.T) {
	s, h := newTestServer(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	sub := WSMessage{
		Type:    WSTypeSubscribe,
		ID:      "1",
		Payload: WSSubscribePayload{Channels: []string{ChannelDeviceState}},
	}
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	var ack WSMessage
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if ack.Type != WSTypeResponse {
		t.Fatalf("ack type = %q, want response", ack.Type)
	}

	s.Hub().RecordDeviceState(context.Background(), 7,
		map[string]any{"charge": 5000.0}, time.Now())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event WSMessage
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if event.Type != WSTypeEvent || event.EventType != ChannelDeviceState {
		t.Fatalf("event = %+v", event)
	}
	payload, ok := event.Payload.(map[string]any)
	if !ok {
		t.Fatalf("payload type = %T", event.Payload)
	}
	if payload["device_id"] != 7.0 {
		t.Errorf("device_id = %v, want 7", payload["device_id"])
	}
}

func TestHubUnsubscribedClientGetsNothing(t *testing.T) {
	s, h := newTestServer(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Ping round-trip proves the connection is registered before the
	// broadcast below.
	if err := conn.WriteJSON(WSMessage{Type: WSTypePing, ID: "p"}); err != nil {
		t.Fatalf("ping: %v", err)
	}
	var pong WSMessage
	if err := conn.ReadJSON(&pong); err != nil {
		t.Fatalf("read pong: %v", err)
	}

	s.Hub().RecordCycle(context.Background(), 1.5, 3, time.Now())

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var msg WSMessage
	if err := conn.ReadJSON(&msg); err == nil {
		t.Fatalf("unexpected message: %+v", msg)
	}
}
