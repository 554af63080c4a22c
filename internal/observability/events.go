package observability

import "time"

const (
	serviceName        = "bleepblorp"
	eventSchemaVersion = 1
)

// EventEnvelope wraps every lifecycle event published to the
// bleepblorp.events exchange: websocket connects, disconnects and write
// failures per feed. Audit records travel separately through
// internal/telemetry with their own envelope.
type EventEnvelope struct {
	SchemaVersion int         `json:"schema_version"`
	EventType     string      `json:"event_type"`
	EventName     string      `json:"event_name"`
	Service       string      `json:"service"`
	OccurredAt    string      `json:"occurred_at"`
	Payload       interface{} `json:"payload"`
}

// NewEventEnvelope stamps the metadata shared by every published event.
func NewEventEnvelope(eventType, eventName string, payload interface{}) EventEnvelope {
	return EventEnvelope{
		SchemaVersion: eventSchemaVersion,
		EventType:     eventType,
		EventName:     eventName,
		Service:       serviceName,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Payload:       payload,
	}
}

// BuildHeaders assembles AMQP headers carrying request correlation, so an
// event can be tied back to the HTTP handshake that opened the feed.
func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
