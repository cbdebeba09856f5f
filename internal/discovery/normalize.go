package discovery

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/octobees/pharmacy-leads/internal/scanner"
)

const phoneRegion = "CH"

var postalCityPattern = regexp.MustCompile(`^\d{4}\s+(.+)$`)

// NormalizePhone formats a Swiss number as E.164. Numbers that cannot be
// parsed are kept trimmed; blank input yields nil.
func NormalizePhone(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	number, err := phonenumbers.Parse(raw, phoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return &raw
	}
	formatted := phonenumbers.Format(number, phonenumbers.E164)
	return &formatted
}

// NormalizeWebsite canonicalises a website for storage and deduplication.
func NormalizeWebsite(raw string) *string {
	normalized := scanner.NormalizeURL(raw)
	if normalized == "" {
		return nil
	}
	return &normalized
}

// CityFromAddress extracts the locality from a formatted Swiss address such
// as "Bahnhofstrasse 1, 8001 Zürich, Switzerland".
func CityFromAddress(address string) *string {
	for _, segment := range strings.Split(address, ",") {
		match := postalCityPattern.FindStringSubmatch(strings.TrimSpace(segment))
		if len(match) == 2 {
			city := strings.TrimSpace(match[1])
			return &city
		}
	}
	return nil
}
