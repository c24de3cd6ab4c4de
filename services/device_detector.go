package services

import (
	"strconv"
	"strings"

	"main/model"

	ua "github.com/mileusna/useragent"
)

// DeviceDetector is the server-side fallback for requests whose payload did
// not carry a client-parsed snapshot. It is deliberately coarser than the
// persisted schema: device type collapses to mobile/tablet/desktop, with
// desktop for anything unclassifiable.
type DeviceDetector struct{}

func NewDeviceDetector() *DeviceDetector {
	return &DeviceDetector{}
}

// Detect parses the User-Agent and Accept-Language headers into a partial
// device snapshot. Fields the headers cannot answer (screen, capabilities,
// connection) stay at their zero values.
func (d *DeviceDetector) Detect(userAgent, acceptLanguage string) *model.Device {
	device := &model.Device{
		Browser: model.BrowserInfo{Name: "Unknown"},
		OS:      model.OSInfo{Name: "Unknown"},
		Device:  model.DeviceClass{Type: model.DeviceTypeDesktop},
		Connection: model.ConnectionInfo{
			EffectiveType: "unknown",
		},
		Language: PrimaryLanguage(acceptLanguage),
	}

	if userAgent == "" {
		return device
	}

	parsed := ua.Parse(userAgent)

	if parsed.Name != "" {
		device.Browser.Name = strings.TrimSpace(parsed.Name)
		device.Browser.Version = parsed.Version
		device.Browser.Major = majorVersion(parsed.Version)
	}
	if parsed.OS != "" {
		device.OS.Name = strings.TrimSpace(parsed.OS)
		device.OS.Version = parsed.OSVersion
	}
	device.Device.Vendor = parsed.Device
	device.Device.Type = d.DeviceType(userAgent)

	return device
}

// DeviceType is the three-way classifier. Bots and anything else that is
// neither mobile nor tablet count as desktop.
func (d *DeviceDetector) DeviceType(userAgent string) string {
	if userAgent == "" {
		return model.DeviceTypeDesktop
	}
	parsed := ua.Parse(userAgent)
	switch {
	case parsed.Mobile:
		return model.DeviceTypeMobile
	case parsed.Tablet:
		return model.DeviceTypeTablet
	default:
		return model.DeviceTypeDesktop
	}
}

// PrimaryLanguage extracts the first tag of an Accept-Language header,
// e.g. "fr-CH, fr;q=0.9" -> "fr-CH".
func PrimaryLanguage(acceptLanguage string) string {
	if acceptLanguage == "" {
		return ""
	}
	first := acceptLanguage
	if idx := strings.IndexAny(first, ",;"); idx >= 0 {
		first = first[:idx]
	}
	return strings.TrimSpace(first)
}

func majorVersion(version string) string {
	if version == "" {
		return ""
	}
	major := version
	if idx := strings.Index(major, "."); idx >= 0 {
		major = major[:idx]
	}
	if _, err := strconv.Atoi(major); err != nil {
		return ""
	}
	return major
}
