package geoloc

import (
	"regexp"
	"sort"
	"strings"
)

// Entity pattern classes, each with its own precision/recall trade-off.
const (
	EntityCityCountry   = "city_country"    // "Kharkiv, Ukraine"
	EntityCityInCountry = "city_in_country" // "Kharkiv in Ukraine"
	EntityCityOnly      = "city_only"       // bare capitalized token
)

// Pattern confidence weights, multiplied by geocoder relevance downstream.
const (
	weightCityCountry   = 0.8
	weightCityInCountry = 0.7
	weightCityOnly      = 0.4
)

// Candidate is one place-name hypothesis surfaced from message text.
type Candidate struct {
	Type       string
	City       string
	Country    string
	Query      string
	Confidence float64
}

var (
	capitalizedPhrase = `[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*`

	cityCountryRe   = regexp.MustCompile(`(` + capitalizedPhrase + `),\s*(` + capitalizedPhrase + `)`)
	cityInCountryRe = regexp.MustCompile(`(` + capitalizedPhrase + `)\s+in\s+(` + capitalizedPhrase + `)`)
	cityOnlyRe      = regexp.MustCompile(`\b(` + capitalizedPhrase + `)\b`)
)

// stopWords are common capitalized non-location words excluded from the
// city_only class.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "this": {}, "that": {},
}

// ExtractLocationEntities surfaces candidate place-name phrases using
// capitalization heuristics. All three pattern classes are evaluated — the
// result is a superset and may contain the same phrase under different
// classes, each carrying its own provenance and weight.
func ExtractLocationEntities(text string) []Candidate {
	var candidates []Candidate

	for _, m := range cityCountryRe.FindAllStringSubmatch(text, -1) {
		city, country := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		candidates = append(candidates, Candidate{
			Type:       EntityCityCountry,
			City:       city,
			Country:    country,
			Query:      city + ", " + country,
			Confidence: weightCityCountry,
		})
	}

	for _, m := range cityInCountryRe.FindAllStringSubmatch(text, -1) {
		city, country := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		candidates = append(candidates, Candidate{
			Type:       EntityCityInCountry,
			City:       city,
			Country:    country,
			Query:      city + ", " + country,
			Confidence: weightCityInCountry,
		})
	}

	for _, m := range cityOnlyRe.FindAllStringSubmatch(text, -1) {
		city := strings.TrimSpace(m[1])
		if len(city) <= 2 {
			continue
		}
		if _, stop := stopWords[strings.ToLower(city)]; stop {
			continue
		}
		candidates = append(candidates, Candidate{
			Type:       EntityCityOnly,
			City:       city,
			Query:      city,
			Confidence: weightCityOnly,
		})
	}

	return candidates
}

var (
	placeCapitalizedRe = cityOnlyRe
	placeCityCountryRe = regexp.MustCompile(`\b(` + capitalizedPhrase + `),\s*([A-Z][a-z]+)\b`)
)

// ExtractPlaceNames is the lower-precision fallback: any capitalized phrase
// plus "City, Country" pairs, merged and deduplicated. The returned slice is
// sorted so fallback geocoding (which only tries the first name) is
// deterministic across runs.
func ExtractPlaceNames(text string) []string {
	seen := make(map[string]struct{})

	for _, m := range placeCapitalizedRe.FindAllStringSubmatch(text, -1) {
		seen[m[1]] = struct{}{}
	}
	for _, m := range placeCityCountryRe.FindAllStringSubmatch(text, -1) {
		seen[m[1]+", "+m[2]] = struct{}{}
	}

	places := make([]string, 0, len(seen))
	for p := range seen {
		places = append(places, p)
	}
	sort.Strings(places)
	return places
}
