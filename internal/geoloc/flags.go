package geoloc

import (
	"strings"

	"github.com/conflictmap/telegram-geo-etl/internal/refdata"
)

// FlagResolver maps flag emoji embedded in text to country codes and their
// centroids.
type FlagResolver struct {
	data *refdata.CountryData
}

// NewFlagResolver creates a resolver over immutable reference data.
func NewFlagResolver(data *refdata.CountryData) *FlagResolver {
	return &FlagResolver{data: data}
}

// Resolve scans the text for known flag symbols in the reference data's
// fixed (sorted-key) order, not in text left-to-right order; the first flag
// found by that order is authoritative. When the matched flag's country has
// no registered centroid the strategy yields nothing, even though a flag
// was present.
func (r *FlagResolver) Resolve(text string) (countryCode string, centroid refdata.Centroid, ok bool) {
	for _, flag := range r.data.Flags() {
		if !strings.Contains(text, flag) {
			continue
		}
		code, _ := r.data.Country(flag)
		c, found := r.data.Centroid(code)
		if !found {
			return code, refdata.Centroid{}, false
		}
		return code, c, true
	}
	return "", refdata.Centroid{}, false
}
