// Package refdata loads the static country reference data consumed by the
// geolocation cascade: flag emoji → country code, and country code →
// centroid coordinate. The data is loaded once per pipeline lifetime and is
// immutable afterwards, so it is safe to share across goroutines.
package refdata

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Centroid is a representative coordinate standing in for an entire country.
type Centroid struct {
	Lat float64 `yaml:"lat" json:"lat"`
	Lon float64 `yaml:"lon" json:"lon"`
}

// CountryData holds the two reference mappings. Empty maps are valid: the
// cascade then degrades to "flags and centroid fallbacks never match".
type CountryData struct {
	FlagToCountry    map[string]string   `yaml:"flag_to_country"`
	CountryCentroids map[string]Centroid `yaml:"country_centroids"`

	// flags caches the sorted flag keys so resolution order is
	// deterministic across runs (Go map iteration is randomized).
	flags []string
}

// New builds CountryData from in-memory mappings. Nil maps become empty.
func New(flagToCountry map[string]string, centroids map[string]Centroid) *CountryData {
	if flagToCountry == nil {
		flagToCountry = map[string]string{}
	}
	if centroids == nil {
		centroids = map[string]Centroid{}
	}
	return &CountryData{
		FlagToCountry:    flagToCountry,
		CountryCentroids: centroids,
		flags:            sortedKeys(flagToCountry),
	}
}

// Load reads reference data from a YAML file. A missing or malformed file is
// not fatal: the condition is logged and empty mappings are returned, per
// the graceful-degradation contract.
func Load(path string, logger *slog.Logger) *CountryData {
	data, err := load(path)
	if err != nil {
		logger.Error("reference data unavailable, flag and fallback strategies disabled",
			"path", path, "error", err)
		return empty()
	}
	logger.Info("reference data loaded",
		"path", path,
		"flags", len(data.FlagToCountry),
		"centroids", len(data.CountryCentroids),
	)
	return data
}

func load(path string) (*CountryData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference data: %w", err)
	}

	var data CountryData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse reference data: %w", err)
	}
	return New(data.FlagToCountry, data.CountryCentroids), nil
}

func empty() *CountryData {
	return New(nil, nil)
}

// Flags returns the flag symbols in a fixed (sorted) order. The first flag
// found in a text by this order is authoritative for flag resolution.
func (d *CountryData) Flags() []string {
	return d.flags
}

// Country returns the country code mapped to a flag symbol.
func (d *CountryData) Country(flag string) (string, bool) {
	code, ok := d.FlagToCountry[flag]
	return code, ok
}

// Centroid returns the centroid registered for a country code.
func (d *CountryData) Centroid(countryCode string) (Centroid, bool) {
	c, ok := d.CountryCentroids[countryCode]
	return c, ok
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
