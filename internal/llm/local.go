package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// LocalProvider answers every search with a fixed set of DC events dated
// relative to Now, for working without upstream credentials.
type LocalProvider struct {
	Now func() time.Time
}

func (LocalProvider) Name() string { return ModeLocal }

func (p LocalProvider) Generate(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	start := now()

	events := make([]map[string]any, 0, len(fixtureEvents))
	for _, fx := range fixtureEvents {
		events = append(events, map[string]any{
			"title":       fx.Title,
			"type":        fx.Type,
			"venue":       fx.Venue,
			"address":     fx.Address,
			"date":        start.AddDate(0, 0, fx.OffsetDays).Format("2006-01-02"),
			"time":        fx.Time,
			"description": fx.Description,
			"url":         fx.URL,
			"image":       fx.Image,
		})
	}
	payload := map[string]any{
		"events": events,
		"meta":   map[string]any{"count": len(events), "source": "local"},
	}
	text, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("encode fixtures: %w", err)
	}
	raw, err := json.Marshal(map[string]any{
		"object":      "response",
		"model":       ModeLocal,
		"output_text": string(text),
	})
	if err != nil {
		return Response{}, fmt.Errorf("encode fixtures: %w", err)
	}
	return Response{Text: string(text), Raw: raw}, nil
}
