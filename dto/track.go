package dto

import (
	"main/model"
	"time"
)

// DeviceInfo is the device snapshot portion of every tracking payload. It is
// embedded so the wire shape stays flat, matching what the tracker client
// sends. UserAgent and DeviceID are the only hard requirements; everything
// else degrades to zero values.
type DeviceInfo struct {
	DeviceID     string               `json:"device_id" binding:"required"`
	UserAgent    string               `json:"user_agent" binding:"required"`
	Browser      model.BrowserInfo    `json:"browser"`
	Engine       model.EngineInfo     `json:"engine"`
	OS           model.OSInfo         `json:"os"`
	Device       DeviceClassInfo      `json:"device"`
	CPU          model.CPUInfo        `json:"cpu"`
	Screen       model.ScreenInfo     `json:"screen"`
	Platform     string               `json:"platform"`
	Language     string               `json:"language"`
	Timezone     string               `json:"timezone"`
	Connection   model.ConnectionInfo `json:"connection"`
	Capabilities model.Capabilities   `json:"capabilities"`
	ConsentGiven bool                 `json:"consent_given"`
	DoNotTrack   bool                 `json:"do_not_track"`
}

type DeviceClassInfo struct {
	Vendor string `json:"vendor"`
	Model  string `json:"model"`
	Type   string `json:"type" binding:"omitempty,devicetype"`
}

type TrackClickRequest struct {
	DeviceInfo
	Button      string            `json:"button" binding:"required"`
	Page        string            `json:"page" binding:"required"`
	Coordinates model.Coordinates `json:"coordinates"`
	SessionID   string            `json:"session_id"`
	Referrer    string            `json:"referrer"`
	URL         string            `json:"url"`
}

type TrackSessionRequest struct {
	DeviceInfo
	SessionID string `json:"session_id"`
	Referrer  string `json:"referrer"`
	URL       string `json:"url"`
}

// ToDevice maps the wire snapshot onto the persisted schema. The device
// type is normalized so the schema enum stays total even when the client
// sent something it made up.
func (d *DeviceInfo) ToDevice() *model.Device {
	return &model.Device{
		DeviceID: d.DeviceID,
		Browser:  d.Browser,
		Engine:   d.Engine,
		OS:       d.OS,
		Device: model.DeviceClass{
			Vendor: d.Device.Vendor,
			Model:  d.Device.Model,
			Type:   model.NormalizeDeviceType(d.Device.Type),
		},
		CPU:          d.CPU,
		Screen:       d.Screen,
		Platform:     d.Platform,
		Language:     d.Language,
		Timezone:     d.Timezone,
		Connection:   d.Connection,
		Capabilities: d.Capabilities,
		ConsentGiven: d.ConsentGiven,
		DoNotTrack:   d.DoNotTrack,
	}
}

type TrackClickResponse struct {
	ClickID   string    `json:"click_id"`
	DeviceID  string    `json:"device_id"`
	Timestamp time.Time `json:"timestamp"`
}

type TrackSessionResponse struct {
	DeviceID     string `json:"device_id"`
	SessionCount int    `json:"session_count"`
	Created      bool   `json:"created"`
}
