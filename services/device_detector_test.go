package services

import (
	"testing"

	"main/model"
)

const (
	chromeWindowsUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	iphoneUA        = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	ipadUA          = "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1"
	botUA           = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

func TestDetectChromeWindows(t *testing.T) {
	d := NewDeviceDetector()

	device := d.Detect(chromeWindowsUA, "en-US,en;q=0.9")

	if device.Browser.Name != "Chrome" {
		t.Errorf("expected Chrome, got %q", device.Browser.Name)
	}
	if device.Browser.Major != "120" {
		t.Errorf("expected major 120, got %q", device.Browser.Major)
	}
	if device.OS.Name != "Windows" {
		t.Errorf("expected Windows, got %q", device.OS.Name)
	}
	if device.Device.Type != model.DeviceTypeDesktop {
		t.Errorf("expected desktop, got %q", device.Device.Type)
	}
	if device.Language != "en-US" {
		t.Errorf("expected en-US, got %q", device.Language)
	}
}

func TestDeviceTypeClassificationIsTotal(t *testing.T) {
	d := NewDeviceDetector()

	cases := map[string]string{
		chromeWindowsUA: model.DeviceTypeDesktop,
		iphoneUA:        model.DeviceTypeMobile,
		ipadUA:          model.DeviceTypeTablet,
		botUA:           model.DeviceTypeDesktop,
		"":              model.DeviceTypeDesktop,
		"garbage":       model.DeviceTypeDesktop,
	}

	for ua, want := range cases {
		got := d.DeviceType(ua)
		if got != want {
			t.Errorf("DeviceType(%.40q) = %q, want %q", ua, got, want)
		}
		switch got {
		case model.DeviceTypeMobile, model.DeviceTypeTablet, model.DeviceTypeDesktop:
		default:
			t.Errorf("detector produced out-of-range type %q", got)
		}
	}
}

func TestDetectEmptyUserAgent(t *testing.T) {
	d := NewDeviceDetector()

	device := d.Detect("", "")

	if device.Browser.Name != "Unknown" {
		t.Errorf("expected Unknown browser, got %q", device.Browser.Name)
	}
	if device.OS.Name != "Unknown" {
		t.Errorf("expected Unknown OS, got %q", device.OS.Name)
	}
	if device.Device.Type != model.DeviceTypeDesktop {
		t.Errorf("expected desktop default, got %q", device.Device.Type)
	}
	if device.Connection.EffectiveType != "unknown" {
		t.Errorf("expected unknown connection, got %q", device.Connection.EffectiveType)
	}
}

func TestPrimaryLanguage(t *testing.T) {
	cases := map[string]string{
		"fr-CH, fr;q=0.9, en;q=0.8": "fr-CH",
		"en-US,en;q=0.9":            "en-US",
		"de":                        "de",
		"":                          "",
		"  es-ES ;q=0.7":            "es-ES",
	}
	for in, want := range cases {
		if got := PrimaryLanguage(in); got != want {
			t.Errorf("PrimaryLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}
