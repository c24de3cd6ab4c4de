package client

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"main/dto"
	"main/model"
)

// ReportStatus classifies a delivery attempt. Callers are free to ignore
// it; nothing here ever panics or blocks beyond the request timeout.
type ReportStatus int

const (
	StatusDelivered ReportStatus = iota
	StatusNetworkError
	StatusServerError
)

type ReportResult struct {
	Status     ReportStatus
	HTTPStatus int
	Err        error
}

func (r ReportResult) Delivered() bool {
	return r.Status == StatusDelivered
}

const defaultTimeout = 10 * time.Second

// Reporter delivers tracking events to the ingestion API. One instance is
// constructed at application start and passed to call sites; there is no
// hidden global. Failed deliveries are logged and reported in the result,
// never retried or queued.
type Reporter struct {
	baseURL    string
	httpClient *http.Client
	identity   *Identity
	collector  *Collector

	// Referrer is attached to every payload; kiosk embedders usually
	// leave it empty.
	Referrer string
	// PageURL, when set, maps a page name to the URL reported with it.
	PageURL func(page string) string
}

func NewReporter(baseURL string, identity *Identity, collector *Collector) *Reporter {
	return &Reporter{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		identity:   identity,
		collector:  collector,
	}
}

func (r *Reporter) deviceInfo(snap *Snapshot) dto.DeviceInfo {
	return dto.DeviceInfo{
		DeviceID:  r.identity.DeviceID(snap),
		UserAgent: snap.UserAgent,
		Browser:   snap.Browser,
		Engine:    snap.Engine,
		OS:        snap.OS,
		Device: dto.DeviceClassInfo{
			Vendor: snap.Device.Vendor,
			Model:  snap.Device.Model,
			Type:   snap.Device.Type,
		},
		CPU:          snap.CPU,
		Screen:       snap.Screen,
		Platform:     snap.Platform,
		Language:     snap.Language,
		Timezone:     snap.Timezone,
		Connection:   snap.Connection,
		Capabilities: snap.Capabilities,
	}
}

func (r *Reporter) pageURL(page string) string {
	if r.PageURL != nil {
		return r.PageURL(page)
	}
	return ""
}

// ReportClick sends one click event. Coordinates default to the origin
// when the caller has none.
func (r *Reporter) ReportClick(ctx context.Context, button, page string, coords *model.Coordinates) ReportResult {
	snap := r.collector.Snapshot()

	payload := dto.TrackClickRequest{
		DeviceInfo: r.deviceInfo(snap),
		Button:     button,
		Page:       page,
		SessionID:  r.identity.SessionID(),
		Referrer:   r.Referrer,
		URL:        r.pageURL(page),
	}
	if coords != nil {
		payload.Coordinates = *coords
	}

	return r.post(ctx, r.baseURL+"/api/track/click", payload)
}

// ReportSession marks a session boundary. Call it exactly once per
// session: every delivery increments the server-side session count.
func (r *Reporter) ReportSession(ctx context.Context) ReportResult {
	snap := r.collector.Snapshot()

	payload := dto.TrackSessionRequest{
		DeviceInfo: r.deviceInfo(snap),
		SessionID:  r.identity.SessionID(),
		Referrer:   r.Referrer,
	}

	return r.post(ctx, r.baseURL+"/api/track/session", payload)
}

func (r *Reporter) post(ctx context.Context, url string, payload interface{}) ReportResult {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Warning: failed to encode tracking payload: %v", err)
		return ReportResult{Status: StatusNetworkError, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Printf("Warning: failed to build tracking request: %v", err)
		return ReportResult{Status: StatusNetworkError, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		log.Printf("Warning: tracking delivery failed: %v", err)
		return ReportResult{Status: StatusNetworkError, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("Warning: tracking endpoint returned %d", resp.StatusCode)
		return ReportResult{Status: StatusServerError, HTTPStatus: resp.StatusCode}
	}
	return ReportResult{Status: StatusDelivered, HTTPStatus: resp.StatusCode}
}
