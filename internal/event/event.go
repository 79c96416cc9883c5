package event

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a normalized Kaiten webhook event
type Event struct {
	DeliveryID string                 `json:"delivery_id"`
	Kind       string                 `json:"kind"`
	Author     map[string]interface{} `json:"author"`
	Data       map[string]interface{} `json:"data"`
	ReceivedAt time.Time              `json:"received_at"`
}

// FromPayload builds an Event from a decoded webhook payload.
// Missing or mistyped fields degrade to empty defaults; this never fails.
// ReceivedAt is always the server clock, never taken from the payload.
func FromPayload(payload map[string]interface{}) *Event {
	kind := ""
	if v, ok := payload["event"].(string); ok {
		kind = v
	}

	data := map[string]interface{}{}
	if v, ok := payload["data"].(map[string]interface{}); ok {
		data = v
	}

	author := map[string]interface{}{}
	if v, ok := data["author"].(map[string]interface{}); ok {
		author = v
	}

	return &Event{
		DeliveryID: uuid.New().String(),
		Kind:       kind,
		Author:     author,
		Data:       data,
		ReceivedAt: time.Now(),
	}
}

// AuthorName returns the author's display name, or "Unknown" if absent
func (e *Event) AuthorName() string {
	if name, ok := e.Author["name"].(string); ok && name != "" {
		return name
	}
	return "Unknown"
}

// DataString retrieves a string value from the event data
func (e *Event) DataString(key string) string {
	if val, ok := e.Data[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
