package geoloc

import "github.com/conflictmap/telegram-geo-etl/internal/refdata"

// DefaultChannelCountries maps known source channels to the country they
// predominantly report on. Used as the last-resort fallback when a message
// carries no textual location evidence.
var DefaultChannelCountries = map[string]string{
	"militarysummary":  "UKR",
	"ClashReport":      "UKR",
	"ukraine_world":    "UKR",
	"russia_news":      "RUS",
	"middle_east_news": "ISR",
}

// ChannelResolver maps source-channel identifiers to a default country
// centroid.
type ChannelResolver struct {
	channels map[string]string
	data     *refdata.CountryData
}

// NewChannelResolver creates a resolver. Pass nil channels to use
// DefaultChannelCountries.
func NewChannelResolver(channels map[string]string, data *refdata.CountryData) *ChannelResolver {
	if channels == nil {
		channels = DefaultChannelCountries
	}
	return &ChannelResolver{channels: channels, data: data}
}

// Resolve returns the fallback country and centroid for a channel. Unknown
// channels, and known channels whose country lacks a registered centroid,
// yield nothing.
func (r *ChannelResolver) Resolve(channel string) (countryCode string, centroid refdata.Centroid, ok bool) {
	code, known := r.channels[channel]
	if !known {
		return "", refdata.Centroid{}, false
	}
	c, found := r.data.Centroid(code)
	if !found {
		return code, refdata.Centroid{}, false
	}
	return code, c, true
}
