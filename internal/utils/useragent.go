package utils

import (
	"strings"

	ua "github.com/mssola/user_agent"
)

// DeviceInfo is the request log view of a User-Agent header
type DeviceInfo struct {
	DeviceType string // mobile, tablet, desktop, bot or unknown
	OS         string
	Browser    string
	Platform   string // android, ios, windows, mac, linux, chromeos or unknown
}

var tabletMarkers = []string{"ipad", "tablet", "kindle", "playbook", "nexus 7", "nexus 9", "nexus 10", "xoom", "sm-t"}

// platforms is checked in order, so "chrome os" must come before "linux"
var platforms = []struct{ marker, name string }{
	{"android", "android"},
	{"iphone os", "ios"},
	{"ios", "ios"},
	{"windows", "windows"},
	{"mac os x", "mac"},
	{"macos", "mac"},
	{"chrome os", "chromeos"},
	{"cros", "chromeos"},
	{"linux", "linux"},
	{"ubuntu", "linux"},
}

// ParseUserAgent extracts device information from a User-Agent header
func ParseUserAgent(header string) DeviceInfo {
	if strings.TrimSpace(header) == "" {
		return DeviceInfo{DeviceType: "unknown", OS: "Unknown", Browser: "Unknown", Platform: "unknown"}
	}

	parser := ua.New(header)

	info := DeviceInfo{
		DeviceType: "desktop",
		OS:         "Unknown",
		Browser:    "Unknown",
		Platform:   "unknown",
	}

	switch {
	case parser.Bot():
		info.DeviceType = "bot"
	case parser.Mobile() && isTablet(header):
		info.DeviceType = "tablet"
	case parser.Mobile():
		info.DeviceType = "mobile"
	}

	if os := parser.OSInfo(); os.Name != "" {
		info.OS = strings.TrimSpace(os.Name + " " + os.Version)
		lower := strings.ToLower(os.Name)
		for _, p := range platforms {
			if strings.Contains(lower, p.marker) {
				info.Platform = p.name
				break
			}
		}
	}

	if name, version := parser.Browser(); name != "" {
		info.Browser = strings.TrimSpace(name + " " + version)
	}

	return info
}

func isTablet(header string) bool {
	lower := strings.ToLower(header)
	for _, marker := range tabletMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
