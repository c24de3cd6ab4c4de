package client

import (
	"os"
	"runtime"
	"strings"
	"time"

	"main/model"

	ua "github.com/mileusna/useragent"
	"github.com/shirou/gopsutil/v4/host"
)

// Snapshot is one point-in-time view of the embedding environment, the
// client-side half of the device record. Values can differ between calls
// (connection quality, timezone after travel); within one call it is a
// plain value.
type Snapshot struct {
	UserAgent    string
	Browser      model.BrowserInfo
	Engine       model.EngineInfo
	OS           model.OSInfo
	Device       model.DeviceClass
	CPU          model.CPUInfo
	Screen       model.ScreenInfo
	Platform     string
	Language     string
	Timezone     string
	Connection   model.ConnectionInfo
	Capabilities model.Capabilities
}

// Collector assembles snapshots. Kiosk and desktop embedders configure the
// user agent and display properties once; host OS and locale details are
// probed live. Collection never fails — anything unprobeable stays at its
// zero value.
type Collector struct {
	UserAgent    string
	Screen       model.ScreenInfo
	Connection   model.ConnectionInfo
	Capabilities model.Capabilities
	Language     string
	Timezone     string
}

func NewCollector(userAgent string) *Collector {
	return &Collector{
		UserAgent: userAgent,
		Connection: model.ConnectionInfo{
			EffectiveType: "unknown",
		},
	}
}

func (c *Collector) Snapshot() *Snapshot {
	snap := &Snapshot{
		UserAgent:    c.UserAgent,
		Screen:       c.Screen,
		Connection:   c.Connection,
		Capabilities: c.Capabilities,
		Language:     c.Language,
		Timezone:     c.Timezone,
		CPU:          model.CPUInfo{Architecture: runtime.GOARCH},
	}

	if c.UserAgent != "" {
		parsed := ua.Parse(c.UserAgent)
		snap.Browser = model.BrowserInfo{
			Name:    parsed.Name,
			Version: parsed.Version,
			Major:   majorOf(parsed.Version),
		}
		snap.OS = model.OSInfo{
			Name:    parsed.OS,
			Version: parsed.OSVersion,
		}
		switch {
		case parsed.Mobile:
			snap.Device.Type = model.DeviceTypeMobile
		case parsed.Tablet:
			snap.Device.Type = model.DeviceTypeTablet
		default:
			snap.Device.Type = model.DeviceTypeDesktop
		}
	} else {
		snap.Device.Type = model.DeviceTypeDesktop
	}

	if info, err := host.Info(); err == nil {
		snap.Platform = info.Platform
		if snap.OS.Name == "" {
			snap.OS = model.OSInfo{
				Name:     info.OS,
				Version:  info.PlatformVersion,
				Platform: info.Platform,
			}
		} else {
			snap.OS.Platform = info.Platform
		}
	}

	if snap.Language == "" {
		snap.Language = localeFromEnv()
	}
	if snap.Timezone == "" {
		snap.Timezone = localTimezone()
	}
	if snap.Connection.EffectiveType == "" {
		snap.Connection.EffectiveType = "unknown"
	}

	return snap
}

// localeFromEnv reads LANG/LC_ALL, mapping "en_US.UTF-8" to "en-US".
func localeFromEnv() string {
	for _, key := range []string{"LC_ALL", "LANG"} {
		v := os.Getenv(key)
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		if idx := strings.Index(v, "."); idx >= 0 {
			v = v[:idx]
		}
		return strings.ReplaceAll(v, "_", "-")
	}
	return ""
}

func localTimezone() string {
	name := time.Local.String()
	if name == "Local" || name == "" {
		name, _ = time.Now().Zone()
	}
	return name
}

func majorOf(version string) string {
	if idx := strings.Index(version, "."); idx >= 0 {
		return version[:idx]
	}
	return version
}
