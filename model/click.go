package model

import "time"

type Coordinates struct {
	X int `bson:"x" json:"x"`
	Y int `bson:"y" json:"y"`
}

// Click is one tracked interaction event. Immutable once written; the only
// mutation path is admin deletion.
type Click struct {
	ID          string      `bson:"_id" json:"id"`
	DeviceID    string      `bson:"device_id" json:"device_id"`
	SessionID   string      `bson:"session_id" json:"session_id"`
	Button      string      `bson:"button" json:"button"`
	Page        string      `bson:"page" json:"page"`
	Coordinates Coordinates `bson:"coordinates" json:"coordinates"`
	Referrer    string      `bson:"referrer" json:"referrer"`
	URL         string      `bson:"url" json:"url"`
	IPAddress   string      `bson:"ip_address" json:"ip_address"`
	Country     string      `bson:"country" json:"country"`
	Browser     string      `bson:"browser" json:"browser"`
	OS          string      `bson:"os" json:"os"`
	DeviceType  string      `bson:"device_type" json:"device_type"`
	UserAgent   string      `bson:"user_agent" json:"user_agent"`
	Timestamp   time.Time   `bson:"timestamp" json:"timestamp"`
}
