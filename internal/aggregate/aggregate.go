// Package aggregate merges repeated reports of the same real-world event into
// one canonical record with unified date and time labels.
package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/event"
)

const (
	UnknownDate = "Unknown"
	TBATime     = "TBA"
)

type Aggregated struct {
	event.Event
	ImageCandidates []string
}

type group struct {
	base   event.Event
	dates  []string
	seen   map[string]struct{}
	times  []string
	timeOK map[string]struct{}
	images []string
}

// GroupKey identifies an event by its normalized title, venue, address and
// description. Date, time, url, image and type never affect grouping.
func GroupKey(ev *event.Event) string {
	return strings.Join([]string{
		event.Normalize(ev.Title),
		event.Normalize(ev.Venue),
		event.Normalize(ev.Address),
		event.Normalize(ev.Description),
	}, "|")
}

func Aggregate(events []*event.Event) []Aggregated {
	groups := map[string]*group{}
	var order []string

	for _, ev := range events {
		if ev == nil {
			continue
		}
		key := GroupKey(ev)
		g, ok := groups[key]
		if !ok {
			g = &group{
				base:   *ev,
				seen:   map[string]struct{}{},
				timeOK: map[string]struct{}{},
			}
			groups[key] = g
			order = append(order, key)
		}

		if date := event.Value(ev.Date); date != "" {
			if _, dup := g.seen[date]; !dup {
				g.seen[date] = struct{}{}
				g.dates = append(g.dates, date)
			}
		}
		if t := strings.TrimSpace(event.Value(ev.Time)); t != "" {
			if _, dup := g.timeOK[t]; !dup {
				g.timeOK[t] = struct{}{}
				g.times = append(g.times, t)
			}
		}
		if image := event.Value(ev.Image); image != "" {
			g.images = append(g.images, image)
		}
	}

	out := make([]Aggregated, 0, len(order))
	for _, key := range order {
		g := groups[key]
		merged := g.base
		merged.Date = event.String(mergeDates(g.dates, g.base.Date))
		merged.Time = event.String(mergeTimes(g.times, g.base.Time))
		out = append(out, Aggregated{Event: merged, ImageCandidates: g.images})
	}
	return out
}

type parsedDate struct {
	raw    string
	parsed time.Time
}

func mergeDates(dates []string, base *string) string {
	if len(dates) == 0 {
		if base != nil {
			return *base
		}
		return UnknownDate
	}

	var parsed []parsedDate
	for _, raw := range dates {
		if t, ok := ParseDate(raw); ok {
			parsed = append(parsed, parsedDate{raw: raw, parsed: t})
		}
	}
	if len(parsed) > 0 {
		sort.SliceStable(parsed, func(i, j int) bool {
			return parsed[i].parsed.Before(parsed[j].parsed)
		})
		start := parsed[0]
		end := parsed[len(parsed)-1]
		if start.parsed.Equal(end.parsed) {
			return start.raw
		}
		return formatISO(start.parsed) + " - " + formatISO(end.parsed)
	}

	sorted := append([]string(nil), dates...)
	sort.Strings(sorted)
	if sorted[0] == sorted[len(sorted)-1] {
		return sorted[0]
	}
	return sorted[0] + " - " + sorted[len(sorted)-1]
}

func mergeTimes(times []string, base *string) string {
	switch len(times) {
	case 0:
		if base != nil {
			return *base
		}
		return TBATime
	case 1:
		return times[0]
	default:
		return strings.Join(times, ", ")
	}
}

func formatISO(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
