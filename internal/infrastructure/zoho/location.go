package zoho

import "strings"

// locationTLDs maps the data-center code sent back on the OAuth redirect to
// the domain suffix used by the accounts and API hosts.
var locationTLDs = map[string]string{
	"us": "com",
	"au": "com.au",
	"cn": "com.cn",
}

// TLDForLocation normalizes a data-center code ("us", "eu", "in", ...) or an
// already normalized suffix ("com", "eu") to the domain suffix. Empty input
// yields "".
func TLDForLocation(location string) string {
	loc := strings.ToLower(strings.TrimSpace(location))
	if tld, ok := locationTLDs[loc]; ok {
		return tld
	}
	return loc
}
