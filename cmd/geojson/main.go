// Command geojson converts processed JSONL files into a GeoJSON
// FeatureCollection for map visualization. Only records carrying a
// coordinate (and clearing the optional confidence floor) become features;
// collection-level properties record the totals.
//
// Usage:
//
//	go run ./cmd/geojson -input data/processed/enhanced_feed.jsonl -output map.geojson
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/conflictmap/telegram-geo-etl/internal/domain"
)

// Feature geometry and collection shapes per RFC 7946. GeoJSON positions
// are [lon, lat] order.
type geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

type feature struct {
	Type       string         `json:"type"`
	Geometry   geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type featureCollection struct {
	Type       string         `json:"type"`
	Features   []feature      `json:"features"`
	Properties map[string]any `json:"properties"`
}

// maxTextLength truncates long message bodies in feature properties.
const maxTextLength = 300

func main() {
	input := flag.String("input", "", "processed JSONL file to convert")
	output := flag.String("output", "", "GeoJSON output path")
	minConfidence := flag.Float64("min-confidence", 0.0, "drop features below this geolocation confidence")
	flag.Parse()

	if *input == "" || *output == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(*input, *output, *minConfidence); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
}

func run(input, output string, minConfidence float64) error {
	in, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	var (
		features   []feature
		total      int
		geolocated int
	)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var pm domain.ProcessedMessage
		if err := json.Unmarshal(line, &pm); err != nil {
			fmt.Fprintf(os.Stderr, "WARN: skipping malformed line: %v\n", err)
			continue
		}
		total++

		geo := pm.Geolocation
		if !geo.HasCoordinates() || geo.Confidence < minConfidence {
			continue
		}
		geolocated++

		features = append(features, feature{
			Type: "Feature",
			Geometry: geometry{
				Type:        "Point",
				Coordinates: [2]float64{*geo.Lon, *geo.Lat},
			},
			Properties: featureProperties(pm),
		})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	collection := featureCollection{
		Type:     "FeatureCollection",
		Features: features,
		Properties: map[string]any{
			"source_file":         input,
			"converted_at":        time.Now().UTC().Format(time.RFC3339),
			"total_messages":      total,
			"geolocated_messages": geolocated,
			"geolocation_rate":    rate(geolocated, total),
			"min_confidence":      minConfidence,
		},
	}

	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(collection); err != nil {
		return fmt.Errorf("write GeoJSON: %w", err)
	}

	fmt.Printf("wrote %d features (%d/%d messages) to %s\n", len(features), geolocated, total, output)
	return nil
}

func featureProperties(pm domain.ProcessedMessage) map[string]any {
	text := pm.Text
	if len(text) > maxTextLength {
		runes := []rune(text)
		if len(runes) > maxTextLength {
			runes = runes[:maxTextLength]
		}
		text = string(runes)
	}
	return map[string]any{
		"id":        pm.ID,
		"channel":   pm.Channel,
		"link":      pm.Link,
		"text":      text,
		"timestamp": pm.Timestamp,
		"geolocation": map[string]any{
			"confidence":         pm.Geolocation.Confidence,
			"source":             pm.Geolocation.Source,
			"place_name":         pm.Geolocation.PlaceName,
			"country_code":       pm.Geolocation.CountryCode,
			"geocoding_attempts": pm.Geolocation.GeocodingAttempts,
		},
		"processed_at":       pm.ProcessedAt,
		"processing_version": pm.ProcessingVersion,
	}
}

func rate(geolocated, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", float64(geolocated)/float64(total)*100)
}
