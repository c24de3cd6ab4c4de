package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"main/dto"
	"main/model"
)

func testReporter(baseURL string) *Reporter {
	collector := NewCollector("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	collector.Screen = model.ScreenInfo{Width: 1920, Height: 1080}
	identity := NewIdentity(NewMemoryStore(), NewMemoryStore())
	return NewReporter(baseURL, identity, collector)
}

func TestReportClickDelivers(t *testing.T) {
	var received dto.TrackClickRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/track/click" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Error("failed to decode payload:", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	reporter := testReporter(server.URL)
	result := reporter.ReportClick(context.Background(), "Save", "Editor", &model.Coordinates{X: 10, Y: 20})

	if !result.Delivered() {
		t.Fatalf("expected delivery, got %+v", result)
	}
	if result.HTTPStatus != http.StatusCreated {
		t.Errorf("expected 201, got %d", result.HTTPStatus)
	}
	if received.Button != "Save" || received.Page != "Editor" {
		t.Errorf("payload lost event fields: %+v", received)
	}
	if received.Coordinates != (model.Coordinates{X: 10, Y: 20}) {
		t.Errorf("payload lost coordinates: %+v", received.Coordinates)
	}
	if received.DeviceID == "" || received.UserAgent == "" {
		t.Error("payload missing required identity fields")
	}
	if received.SessionID == "" {
		t.Error("payload missing session ID")
	}
	if received.Browser.Name != "Chrome" {
		t.Errorf("payload missing parsed browser: %+v", received.Browser)
	}
	if received.Screen.Width != 1920 {
		t.Errorf("payload missing screen info: %+v", received.Screen)
	}
}

func TestReportClickDefaultsCoordinates(t *testing.T) {
	var received dto.TrackClickRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	result := testReporter(server.URL).ReportClick(context.Background(), "Save", "Editor", nil)
	if !result.Delivered() {
		t.Fatalf("expected delivery, got %+v", result)
	}
	if received.Coordinates != (model.Coordinates{}) {
		t.Errorf("expected origin coordinates, got %+v", received.Coordinates)
	}
}

func TestReportClickServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	result := testReporter(server.URL).ReportClick(context.Background(), "Save", "Editor", nil)

	if result.Status != StatusServerError {
		t.Errorf("expected server error status, got %+v", result)
	}
	if result.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", result.HTTPStatus)
	}
}

func TestReportClickNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	result := testReporter(server.URL).ReportClick(context.Background(), "Save", "Editor", nil)

	if result.Status != StatusNetworkError {
		t.Errorf("expected network error status, got %+v", result)
	}
	if result.Err == nil {
		t.Error("expected underlying error to be reported")
	}
}

func TestReportSessionDelivers(t *testing.T) {
	var received dto.TrackSessionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/track/session" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	result := testReporter(server.URL).ReportSession(context.Background())

	if !result.Delivered() {
		t.Fatalf("expected delivery, got %+v", result)
	}
	if received.DeviceID == "" || received.SessionID == "" {
		t.Error("session payload missing identity fields")
	}
}
