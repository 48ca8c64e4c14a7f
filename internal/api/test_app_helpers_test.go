package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/terraincognita07/sitr/internal/app"
	"github.com/terraincognita07/sitr/internal/db"
	"github.com/terraincognita07/sitr/internal/metrics"
)

type testClock struct {
	mu      sync.Mutex
	current time.Time
}

func (clock *testClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.current
}

func (clock *testClock) set(value time.Time) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.current = value
}

func newTestApp(t *testing.T) (*fiber.App, *testClock) {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "sitr-api-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = db.CloseSQLite(database)
	})

	registry := prometheus.NewRegistry()
	all := app.NewServices(database, metrics.NewCollector(registry), zerolog.Nop())
	clock := &testClock{}
	clock.set(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	all.Time.WithClock(clock.Now)
	all.Events.WithClock(clock.Now)
	all.Reports.WithClock(clock.Now)

	handler := NewHandler(all, time.UTC, zerolog.Nop()).WithClock(clock.Now)
	return NewServer(handler, registry), clock
}

func doJSON(t *testing.T, server *fiber.App, method string, path string, payload any) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encode payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}
	request := httptest.NewRequest(method, path, body)
	request.Header.Set("Content-Type", "application/json")

	response, err := server.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() {
		_ = response.Body.Close()
	})
	return response
}

func expectStatus(t *testing.T, response *http.Response, expected int) {
	t.Helper()
	if response.StatusCode != expected {
		body, _ := io.ReadAll(response.Body)
		t.Fatalf("expected status %d, got %d: %s", expected, response.StatusCode, body)
	}
}

func decodeBody[T any](t *testing.T, response *http.Response) T {
	t.Helper()
	var payload T
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return payload
}

func readAPIError(t *testing.T, response *http.Response) string {
	t.Helper()
	return decodeBody[map[string]string](t, response)["error"]
}

func readBody(t *testing.T, response *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return string(body)
}
