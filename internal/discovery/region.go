package discovery

import (
	"fmt"
	"strings"
)

var countryNames = map[string]struct{}{
	"schweiz":     {},
	"suisse":      {},
	"svizzera":    {},
	"switzerland": {},
}

// Region is the geographic scope of a discovery run.
type Region struct {
	City        string
	CountryWide bool
}

// ParseRegion maps user input to a Region. Blank input and any national name
// of Switzerland select the whole country; everything else is a city.
func ParseRegion(input string) Region {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Region{CountryWide: true}
	}
	if _, ok := countryNames[strings.ToLower(trimmed)]; ok {
		return Region{CountryWide: true}
	}
	return Region{City: titleCase(trimmed)}
}

// String returns the city name, or "Schweiz" for country-wide scope.
func (r Region) String() string {
	if r.CountryWide {
		return "Schweiz"
	}
	return r.City
}

// PlaceQueries returns one search phrase per national language, German first.
func (r Region) PlaceQueries() []string {
	if r.CountryWide {
		return []string{
			"Apotheke in der Schweiz",
			"pharmacie en Suisse",
			"Farmacia in Svizzera",
		}
	}
	return []string{
		fmt.Sprintf("Apotheke in %s, Switzerland", r.City),
		fmt.Sprintf("pharmacie à %s, Suisse", r.City),
		fmt.Sprintf("Farmacia a %s, Svizzera", r.City),
	}
}

// DirectoryQuery returns the single phrase sent to the business directory.
func (r Region) DirectoryQuery() string {
	if r.CountryWide {
		return "Apotheke"
	}
	return "Apotheke " + r.City
}

func titleCase(value string) string {
	parts := strings.Fields(value)
	for i, p := range parts {
		runes := []rune(strings.ToLower(p))
		if len(runes) == 0 {
			continue
		}
		parts[i] = strings.ToUpper(string(runes[0])) + string(runes[1:])
	}
	return strings.Join(parts, " ")
}
