package model

// DeviceTypeEntry is the raw per-document projection returned in
// DeviceStats.ByType. It is intentionally unreduced; consumers group and
// count on their side.
type DeviceTypeEntry struct {
	Type    string `bson:"type" json:"type"`
	Browser string `bson:"browser" json:"browser"`
	OS      string `bson:"os" json:"os"`
}

type DeviceStats struct {
	TotalDevices int64             `json:"total_devices"`
	ActiveToday  int64             `json:"active_today"`
	ByType       []DeviceTypeEntry `json:"by_type"`
}

// PopularDevice is one row of the popular-devices ranking, grouped by the
// (device type, browser, os) triple.
type PopularDevice struct {
	DeviceType  string  `bson:"device_type" json:"device_type"`
	Browser     string  `bson:"browser" json:"browser"`
	OS          string  `bson:"os" json:"os"`
	Count       int64   `bson:"count" json:"count"`
	AvgSessions float64 `bson:"avg_sessions" json:"avg_sessions"`
	AvgClicks   float64 `bson:"avg_clicks" json:"avg_clicks"`
}
