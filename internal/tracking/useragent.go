package tracking

import "strings"

// Device types.
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
)

// SniffDevice classifies a user agent as mobile, tablet or desktop.
func SniffDevice(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case containsAny(ua, "ipad", "tablet", "playbook", "silk"):
		return DeviceTablet
	case containsAny(ua, "mobile", "iphone", "ipod", "android", "blackberry", "opera mini", "iemobile"):
		return DeviceMobile
	default:
		return DeviceDesktop
	}
}

// SniffBrowser returns a coarse browser family.
func SniffBrowser(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "edg"):
		return "edge"
	case containsAny(ua, "opr/", "opera"):
		return "opera"
	case containsAny(ua, "chrome", "crios"):
		return "chrome"
	case containsAny(ua, "firefox", "fxios"):
		return "firefox"
	case strings.Contains(ua, "safari"):
		return "safari"
	default:
		return "other"
	}
}

// SniffOS returns a coarse operating system family.
func SniffOS(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "windows"):
		return "windows"
	case containsAny(ua, "iphone", "ipad", "ipod"):
		return "ios"
	case strings.Contains(ua, "android"):
		return "android"
	case containsAny(ua, "mac os", "macintosh"):
		return "macos"
	case strings.Contains(ua, "linux"):
		return "linux"
	default:
		return "other"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
