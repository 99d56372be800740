package tracking

import (
	"net/url"
	"strings"
)

// Traffic sources and mediums recorded on traffic_sources rows.
const (
	SourceDirect    = "direct"
	SourceFacebook  = "facebook"
	SourceInstagram = "instagram"
	SourceGoogle    = "google"
	SourceTwitter   = "twitter"
	SourceLinkedIn  = "linkedin"
	SourceWhatsApp  = "whatsapp"
	SourceEmail     = "email"
	SourceReferral  = "referral"

	MediumNone     = "none"
	MediumSocial   = "social"
	MediumOrganic  = "organic"
	MediumReferral = "referral"
	MediumEmail    = "email"
)

// ClassifyTraffic derives (source, medium) from the document referrer and the
// landing page URL. Known referrer hosts are matched first, in a fixed order,
// so UTM parameters only decide the outcome for unknown hosts. Host patterns
// are plain substrings, so "dropbox.com" counts as x.com.
func ClassifyTraffic(referrer, landingURL string) (source, medium string) {
	referrer = strings.TrimSpace(referrer)
	if referrer == "" {
		return SourceDirect, MediumNone
	}

	host := referrerHost(referrer)
	utm := queryValues(landingURL)

	switch {
	case strings.Contains(host, "facebook") || strings.Contains(host, "fb"):
		return SourceFacebook, MediumSocial
	case strings.Contains(host, "instagram"):
		return SourceInstagram, MediumSocial
	case strings.Contains(host, "google"):
		if len(queryValues(referrer)) > 0 {
			return SourceGoogle, MediumOrganic
		}
		return SourceGoogle, MediumReferral
	case strings.Contains(host, "twitter") || strings.Contains(host, "x.com"):
		return SourceTwitter, MediumSocial
	case strings.Contains(host, "linkedin"):
		return SourceLinkedIn, MediumSocial
	case strings.Contains(host, "whatsapp") || strings.Contains(host, "wa.me"):
		return SourceWhatsApp, MediumSocial
	case strings.Contains(host, "mail.") || strings.Contains(host, "email") ||
		strings.EqualFold(utm.Get("utm_source"), "email"):
		return SourceEmail, MediumEmail
	}

	if src := utm.Get("utm_source"); src != "" {
		if m := utm.Get("utm_medium"); m != "" {
			return src, m
		}
		return src, MediumReferral
	}
	return SourceReferral, MediumReferral
}

// Campaign returns the utm_campaign parameter of the landing URL, if any.
func Campaign(landingURL string) string {
	return queryValues(landingURL).Get("utm_campaign")
}

// LandingPath reduces a landing URL to its path, defaulting to "/".
func LandingPath(landingURL string) string {
	u, err := url.Parse(strings.TrimSpace(landingURL))
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

func referrerHost(referrer string) string {
	u, err := url.Parse(referrer)
	if err != nil || u.Host == "" {
		return strings.ToLower(referrer)
	}
	return strings.ToLower(u.Hostname())
}

func queryValues(raw string) url.Values {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return url.Values{}
	}
	return u.Query()
}
