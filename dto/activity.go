package dto

import (
	"main/model"
	"time"
)

// ClickRow is one row of the guest-activity table: the click plus the
// flattened device context the admin table shows.
type ClickRow struct {
	ID          string            `json:"id"`
	DeviceID    string            `json:"device_id"`
	SessionID   string            `json:"session_id"`
	Button      string            `json:"button"`
	Page        string            `json:"page"`
	Coordinates model.Coordinates `json:"coordinates"`
	Referrer    string            `json:"referrer,omitempty"`
	URL         string            `json:"url,omitempty"`
	Country     string            `json:"country,omitempty"`
	Browser     string            `json:"browser"`
	OS          string            `json:"os"`
	DeviceType  string            `json:"device_type"`
	Timestamp   time.Time         `json:"timestamp"`
}

type ActivityPageResponse struct {
	Clicks      []ClickRow `json:"clicks"`
	Total       int64      `json:"total"`
	TotalPages  int64      `json:"total_pages"`
	CurrentPage int64      `json:"current_page"`
}

// ClickDetailResponse backs the admin detail modal: the raw click plus the
// full device record it belongs to (nil when the device was deleted out
// from under the click).
type ClickDetailResponse struct {
	Click  *model.Click  `json:"click"`
	Device *model.Device `json:"device,omitempty"`
}

func ToClickRow(c *model.Click) ClickRow {
	return ClickRow{
		ID:          c.ID,
		DeviceID:    c.DeviceID,
		SessionID:   c.SessionID,
		Button:      c.Button,
		Page:        c.Page,
		Coordinates: c.Coordinates,
		Referrer:    c.Referrer,
		URL:         c.URL,
		Country:     c.Country,
		Browser:     c.Browser,
		OS:          c.OS,
		DeviceType:  c.DeviceType,
		Timestamp:   c.Timestamp,
	}
}

func ToClickRows(clicks []*model.Click) []ClickRow {
	rows := make([]ClickRow, len(clicks))
	for i, c := range clicks {
		rows[i] = ToClickRow(c)
	}
	return rows
}
