// Package event defines the event record exchanged with the search agent and
// returned to clients. Every field is optional and nullable.
package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

type Event struct {
	Title       *string `json:"title"`
	Type        *string `json:"type"`
	Venue       *string `json:"venue"`
	Address     *string `json:"address"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Description *string `json:"description"`
	URL         *string `json:"url"`
	Image       *string `json:"image"`
}

// UnmarshalJSON accepts any JSON value per field; non-string values decode as null.
func (e *Event) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*e = Event{
		Title:       stringField(fields, "title"),
		Type:        stringField(fields, "type"),
		Venue:       stringField(fields, "venue"),
		Address:     stringField(fields, "address"),
		Date:        stringField(fields, "date"),
		Time:        stringField(fields, "time"),
		Description: stringField(fields, "description"),
		URL:         stringField(fields, "url"),
		Image:       stringField(fields, "image"),
	}
	return nil
}

func stringField(fields map[string]json.RawMessage, key string) *string {
	raw, ok := fields[key]
	if !ok || string(bytes.TrimSpace(raw)) == "null" {
		return nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil
	}
	return &value
}

var ErrNotArray = errors.New("events payload is not an array")

// DecodeList decodes a JSON array of loosely-typed event records. Entries that
// are null or not objects decode to nil so positions are preserved.
func DecodeList(data []byte) ([]*Event, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotArray
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, err
	}
	events := make([]*Event, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			events = append(events, nil)
			continue
		}
		var ev Event
		if err := json.Unmarshal(item, &ev); err != nil {
			events = append(events, nil)
			continue
		}
		events = append(events, &ev)
	}
	return events, nil
}

// Value dereferences s, returning "" for nil.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func String(s string) *string {
	return &s
}

// Normalize trims and lower-cases a nullable field.
func Normalize(s *string) string {
	return strings.ToLower(strings.TrimSpace(Value(s)))
}
