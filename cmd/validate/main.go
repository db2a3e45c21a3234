// Command validate performs integrity checks over a processed JSONL file:
// schema presence, confidence and coordinate bounds, source-tag vocabulary,
// provenance-trail non-emptiness, and cross-field invariants of the
// geolocation cascade.
//
// Usage:
//
//	go run ./cmd/validate -processed data/processed/enhanced_feed.jsonl
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/conflictmap/telegram-geo-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// knownSources is the closed vocabulary of non-entity source tags.
var knownSources = map[string]bool{
	domain.SourceCoordinates:     true,
	domain.SourceFlag:            true,
	domain.SourcePlaceName:       true,
	domain.SourceChannelFallback: true,
	domain.SourceNone:            true,
}

func main() {
	processed := flag.String("processed", "", "path to processed JSONL file")
	flag.Parse()

	if *processed == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*processed); code != 0 {
		os.Exit(code)
	}
}

func run(path string) int {
	fmt.Println("=== Geolocation Output Integrity Validation ===")
	fmt.Println()

	records, err := loadProcessed(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load processed JSONL: %v\n", err)
		return 1
	}
	fmt.Printf("loaded %d records from %s\n", len(records), path)

	phases := []*phase{
		validateSchema(records),
		validateBounds(records),
		validateSources(records),
		validateProvenance(records),
		validateInvariants(records),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = "FAIL"
			allPassed = false
		}
		fmt.Printf("[%s] %s\n", status, p.name)
		for _, e := range p.errors {
			fmt.Printf("       - %s\n", e)
		}
	}

	if !allPassed {
		return 1
	}
	fmt.Println()
	fmt.Println("all phases passed")
	return 0
}

func loadProcessed(path string) ([]domain.ProcessedMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []domain.ProcessedMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var pm domain.ProcessedMessage
		if err := json.Unmarshal(scanner.Bytes(), &pm); err != nil {
			return nil, fmt.Errorf("malformed record: %w", err)
		}
		records = append(records, pm)
	}
	return records, scanner.Err()
}

func validateSchema(records []domain.ProcessedMessage) *phase {
	p := &phase{name: "schema: required fields present"}
	for _, r := range records {
		if r.Channel == "" {
			p.errorf("record %d: empty channel", r.ID)
		}
		if r.ProcessedAt.IsZero() {
			p.errorf("record %d: missing processed_at", r.ID)
		}
		if r.ProcessingVersion != domain.ProcessingVersion {
			p.errorf("record %d: processing_version %q, want %q", r.ID, r.ProcessingVersion, domain.ProcessingVersion)
		}
	}
	return p
}

func validateBounds(records []domain.ProcessedMessage) *phase {
	p := &phase{name: "bounds: confidence in [0,1], coordinates in WGS-84 range"}
	for _, r := range records {
		geo := r.Geolocation
		if geo.Confidence < 0 || geo.Confidence > 1 {
			p.errorf("record %d: confidence %v out of range", r.ID, geo.Confidence)
		}
		if geo.HasCoordinates() && !domain.ValidCoordinate(*geo.Lat, *geo.Lon) {
			p.errorf("record %d: coordinate (%v, %v) out of bounds", r.ID, *geo.Lat, *geo.Lon)
		}
		if (geo.Lat == nil) != (geo.Lon == nil) {
			p.errorf("record %d: lat/lon presence mismatch", r.ID)
		}
	}
	return p
}

func validateSources(records []domain.ProcessedMessage) *phase {
	p := &phase{name: "sources: tag vocabulary"}
	for _, r := range records {
		source := r.Geolocation.Source
		if !knownSources[source] && !domain.IsEntityGeocodingSource(source) {
			p.errorf("record %d: unknown source tag %q", r.ID, source)
		}
	}
	return p
}

func validateProvenance(records []domain.ProcessedMessage) *phase {
	p := &phase{name: "provenance: attempts log never empty"}
	for _, r := range records {
		if len(r.Geolocation.GeocodingAttempts) == 0 {
			p.errorf("record %d: empty geocoding_attempts", r.ID)
		}
	}
	return p
}

func validateInvariants(records []domain.ProcessedMessage) *phase {
	p := &phase{name: "invariants: cross-field consistency"}
	for _, r := range records {
		geo := r.Geolocation
		if geo.Source == domain.SourceNone {
			if geo.Confidence != 0 {
				p.errorf("record %d: source none with confidence %v", r.ID, geo.Confidence)
			}
			if geo.HasCoordinates() {
				p.errorf("record %d: source none with coordinates", r.ID)
			}
		} else {
			if geo.Confidence == 0 {
				p.errorf("record %d: source %q with zero confidence", r.ID, geo.Source)
			}
			if !geo.HasCoordinates() {
				p.errorf("record %d: source %q without coordinates", r.ID, geo.Source)
			}
		}
		if geo.CountryCode != "" && geo.Source != domain.SourceFlag && geo.Source != domain.SourceChannelFallback {
			p.errorf("record %d: country_code set by source %q", r.ID, geo.Source)
		}
	}
	return p
}
