// Package locale derives a default recording location from the system
// timezone.
package locale

import (
	"strings"

	tz "github.com/medama-io/go-timezone-country"
	"github.com/thlib/go-timezone-local/tzlocal"
)

// Country returns the country of the local timezone, or "" if it cannot be
// determined.
func Country() string {
	timezone, err := tzlocal.RuntimeTZ()
	if err != nil {
		return ""
	}
	return CountryForTimezone(timezone)
}

// CountryForTimezone returns the country for an IANA timezone name, or ""
// for zones without a country such as UTC.
func CountryForTimezone(timezone string) string {
	if timezone == "" || timezone == "UTC" || timezone == "GMT" || strings.HasPrefix(timezone, "Etc/") {
		return ""
	}

	tzMap, err := tz.NewTimezoneCountryMap()
	if err != nil {
		return ""
	}

	country, err := tzMap.GetCountry(timezone)
	if err != nil {
		return ""
	}
	return country
}

// Or returns location when it is set and the local country otherwise.
func Or(location string) string {
	if strings.TrimSpace(location) != "" {
		return location
	}
	return Country()
}
