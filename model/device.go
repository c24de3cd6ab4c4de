package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Device type values stored in the schema. The server-side detector only
// ever produces mobile/tablet/desktop; the richer values come from client
// payloads that parsed the user agent themselves.
const (
	DeviceTypeMobile   = "mobile"
	DeviceTypeTablet   = "tablet"
	DeviceTypeDesktop  = "desktop"
	DeviceTypeSmartTV  = "smarttv"
	DeviceTypeWearable = "wearable"
	DeviceTypeUnknown  = "unknown"
)

type BrowserInfo struct {
	Name    string `bson:"name" json:"name"`
	Version string `bson:"version" json:"version"`
	Major   string `bson:"major" json:"major"`
}

type EngineInfo struct {
	Name    string `bson:"name" json:"name"`
	Version string `bson:"version" json:"version"`
}

type OSInfo struct {
	Name     string `bson:"name" json:"name"`
	Version  string `bson:"version" json:"version"`
	Platform string `bson:"platform" json:"platform"`
}

type DeviceClass struct {
	Vendor string `bson:"vendor" json:"vendor"`
	Model  string `bson:"model" json:"model"`
	Type   string `bson:"type" json:"type"`
}

type CPUInfo struct {
	Architecture string `bson:"architecture" json:"architecture"`
}

type ScreenInfo struct {
	Width       int    `bson:"width" json:"width"`
	Height      int    `bson:"height" json:"height"`
	ColorDepth  int    `bson:"color_depth" json:"color_depth"`
	PixelDepth  int    `bson:"pixel_depth" json:"pixel_depth"`
	Orientation string `bson:"orientation" json:"orientation"`
}

type ConnectionInfo struct {
	EffectiveType string  `bson:"effective_type" json:"effective_type"`
	Downlink      float64 `bson:"downlink" json:"downlink"`
	RTT           int     `bson:"rtt" json:"rtt"`
	SaveData      bool    `bson:"save_data" json:"save_data"`
}

type Capabilities struct {
	Cookies        bool `bson:"cookies" json:"cookies"`
	JavaScript     bool `bson:"javascript" json:"javascript"`
	LocalStorage   bool `bson:"local_storage" json:"local_storage"`
	SessionStorage bool `bson:"session_storage" json:"session_storage"`
	TouchSupport   bool `bson:"touch_support" json:"touch_support"`
	WebGL          bool `bson:"webgl" json:"webgl"`
	WebRTC         bool `bson:"webrtc" json:"webrtc"`
	ServiceWorker  bool `bson:"service_worker" json:"service_worker"`
}

type Location struct {
	Country   string  `bson:"country" json:"country"`
	Region    string  `bson:"region" json:"region"`
	City      string  `bson:"city" json:"city"`
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
	Accuracy  float64 `bson:"accuracy" json:"accuracy"`
}

// Device is one distinct browser/machine combination observed by the
// tracker, keyed by the client-resolved device_id. Aggregate counters are
// only ever touched through atomic updates in the repository; the struct
// itself is a read snapshot.
type Device struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	DeviceID     string             `bson:"device_id" json:"device_id"`
	Browser      BrowserInfo        `bson:"browser" json:"browser"`
	Engine       EngineInfo         `bson:"engine" json:"engine"`
	OS           OSInfo             `bson:"os" json:"os"`
	Device       DeviceClass        `bson:"device" json:"device"`
	CPU          CPUInfo            `bson:"cpu" json:"cpu"`
	Screen       ScreenInfo         `bson:"screen" json:"screen"`
	Platform     string             `bson:"platform" json:"platform"`
	Language     string             `bson:"language" json:"language"`
	Timezone     string             `bson:"timezone" json:"timezone"`
	Connection   ConnectionInfo     `bson:"connection" json:"connection"`
	Capabilities Capabilities       `bson:"capabilities" json:"capabilities"`
	Location     *Location          `bson:"location,omitempty" json:"location,omitempty"`
	FirstSeen    time.Time          `bson:"first_seen" json:"first_seen"`
	LastSeen     time.Time          `bson:"last_seen" json:"last_seen"`
	SessionCount int                `bson:"session_count" json:"session_count"`
	TotalClicks  int                `bson:"total_clicks" json:"total_clicks"`
	ConsentGiven bool               `bson:"consent_given" json:"consent_given"`
	DoNotTrack   bool               `bson:"do_not_track" json:"do_not_track"`
}

// NormalizeDeviceType maps any input to exactly one schema value.
func NormalizeDeviceType(t string) string {
	switch t {
	case DeviceTypeMobile, DeviceTypeTablet, DeviceTypeDesktop,
		DeviceTypeSmartTV, DeviceTypeWearable:
		return t
	default:
		return DeviceTypeUnknown
	}
}
