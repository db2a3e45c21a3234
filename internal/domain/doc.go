// Package domain models Telegram channel messages and the geolocation
// results inferred from them.
//
// # Data Source
//
// Messages originate from public Telegram channels covering armed conflicts.
// The upstream collector exports each message as one flat JSON object per
// line (JSONL), either as historical backfill files or as a live Kafka
// stream. The ETL only sees the already-extracted tuple:
//
//	{"channel": "...", "link": "...", "text": "...", "timestamp": "...", "id": 123}
//
// # Geolocation
//
// Each message is run through an ordered cascade of extraction strategies
// (exact coordinates, flag emoji, entity extraction + geocoding, place-name
// fallback, channel fallback; see the geoloc package). The outcome is a
// [GeolocationResult]: an optional coordinate, an optional ISO-3166 alpha-3
// country code, a [0,1] confidence score, a source tag naming the winning
// strategy, and an append-only log of every geocoding attempt made for the
// message. A result is built once per message and never mutated afterwards.
//
// Source tags and their fixed or derived confidences:
//
//	coordinates_regex       0.95  literal coordinates in the text
//	flag_emoji              0.85  flag emoji resolved to a country centroid
//	llm_geocoding_<type>    pattern weight × geocoder relevance, floor 0.7
//	place_name_geocoding    0.4   capitalized-phrase fallback
//	channel_fallback        0.2   channel known to report on one country
//	none                    0.0   no location evidence found
//
// # Output
//
// The processed record preserves every input field and attaches the
// geolocation block, a processing timestamp, and a version tag
// ([ProcessingVersion]) so downstream consumers can detect logic changes.
package domain
