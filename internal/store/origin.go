package store

import "net/url"

// Origin returns scheme://host of pageURL, or pageURL itself when it has no host
func Origin(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return pageURL
	}
	return u.Scheme + "://" + u.Host
}
