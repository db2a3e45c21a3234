package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ProcessingVersion tags every output record so downstream consumers can
// detect schema or logic changes between pipeline revisions.
const ProcessingVersion = "enhanced_v1"

// RawEvent represents an unprocessed message from the source (Kafka topic or
// backfill file). For file sources, Offset is the line number.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Message is the collector-extracted view of one Telegram message.
// The pipeline never mutates these fields.
type Message struct {
	Channel   string    `json:"channel"`
	Link      *string   `json:"link"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	ID        int64     `json:"id"`
}

// ProcessedMessage is a Message augmented with the inferred geolocation and
// processing metadata. This is the unit serialized to the sink.
type ProcessedMessage struct {
	Message
	Geolocation       GeolocationResult `json:"geolocation"`
	ProcessedAt       time.Time         `json:"processed_at"`
	ProcessingVersion string            `json:"processing_version"`
}

// OutputEvent is the serialized form destined for the sink.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// ParseMessage deserializes a RawEvent's value into a Message.
// A non-JSON or schema-violating payload yields an error; callers skip the
// record rather than aborting the batch.
func ParseMessage(raw RawEvent) (Message, error) {
	var msg Message
	if err := json.Unmarshal(raw.Value, &msg); err != nil {
		return Message{}, fmt.Errorf("parse message: %w", err)
	}
	return msg, nil
}

// NewProcessedMessage attaches a geolocation result and processing metadata
// to a message. ProcessedAt comes from the package clock so fixtures and
// tests can freeze it.
func NewProcessedMessage(msg Message, geo GeolocationResult) ProcessedMessage {
	return ProcessedMessage{
		Message:           msg,
		Geolocation:       geo,
		ProcessedAt:       clock.Now().UTC(),
		ProcessingVersion: ProcessingVersion,
	}
}

// SerializeProcessed marshals a processed message into an output event.
// The message ID becomes the key; headers carry routing metadata so
// consumers can filter without deserializing the body.
func SerializeProcessed(pm ProcessedMessage) (OutputEvent, error) {
	data, err := json.Marshal(pm)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize processed message: %w", err)
	}
	return OutputEvent{
		Key:   []byte(strconv.FormatInt(pm.ID, 10)),
		Value: data,
		Headers: map[string]string{
			"channel":      pm.Channel,
			"geo_source":   pm.Geolocation.Source,
			"processed_at": pm.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}
