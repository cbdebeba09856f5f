package scanner

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// NormalizeURL turns a user or provider supplied website into a canonical absolute URL.
// Scheme-less input gets https://, the host is lower-cased and IDNA-encoded, and a bare "/" path is dropped.
// Blank input yields "".
func NormalizeURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return s
	}

	host := strings.ToLower(u.Hostname())
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}
	if port := u.Port(); port != "" {
		host += ":" + port
	}
	u.Host = host

	if u.Path == "/" && u.RawQuery == "" && u.Fragment == "" {
		u.Path = ""
	}
	return u.String()
}
