// Package catalog holds the static image knowledge used when an event has no
// usable image of its own: keyword-matched curated images, per-category
// images and pools, the global default, and host trust lists.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/event"
)

//go:embed default.yaml
var defaultCatalog []byte

type Entry struct {
	Pattern string `yaml:"pattern"`
	Image   string `yaml:"image"`
}

type File struct {
	Curated      []Entry             `yaml:"curated"`
	Types        map[string]string   `yaml:"types"`
	Pools        map[string][]string `yaml:"pools"`
	Default      string              `yaml:"default"`
	TrustedHosts []string            `yaml:"trusted_hosts"`
	BrokenHosts  []string            `yaml:"broken_hosts"`
}

type curatedImage struct {
	pattern *regexp.Regexp
	image   string
}

type Catalog struct {
	curated  []curatedImage
	types    map[string]string
	pools    map[string][]string
	fallback string
	trusted  map[string]struct{}
	broken   map[string]struct{}
}

var (
	defaultOnce sync.Once
	defaultFile File
	defaultCat  *Catalog
)

func loadDefault() {
	if err := yaml.Unmarshal(defaultCatalog, &defaultFile); err != nil {
		panic(fmt.Sprintf("catalog: parse embedded default: %v", err))
	}
	cat, err := New(defaultFile)
	if err != nil {
		panic(fmt.Sprintf("catalog: build embedded default: %v", err))
	}
	defaultCat = cat
}

// Default returns the built-in catalog.
func Default() *Catalog {
	defaultOnce.Do(loadDefault)
	return defaultCat
}

func New(f File) (*Catalog, error) {
	cat := &Catalog{
		types:    map[string]string{},
		pools:    map[string][]string{},
		fallback: strings.TrimSpace(f.Default),
		trusted:  hostSet(f.TrustedHosts),
		broken:   hostSet(f.BrokenHosts),
	}
	for i, entry := range f.Curated {
		if strings.TrimSpace(entry.Pattern) == "" || strings.TrimSpace(entry.Image) == "" {
			return nil, fmt.Errorf("curated entry %d: pattern and image are required", i)
		}
		re, err := regexp.Compile("(?i)" + entry.Pattern)
		if err != nil {
			return nil, fmt.Errorf("curated entry %d: %w", i, err)
		}
		cat.curated = append(cat.curated, curatedImage{pattern: re, image: entry.Image})
	}
	for label, image := range f.Types {
		if image = strings.TrimSpace(image); image != "" {
			cat.types[normalizeLabel(label)] = image
		}
	}
	for label, pool := range f.Pools {
		var images []string
		for _, image := range pool {
			if image = strings.TrimSpace(image); image != "" {
				images = append(images, image)
			}
		}
		if len(images) > 0 {
			cat.pools[normalizeLabel(label)] = images
		}
	}
	return cat, nil
}

// LoadFile reads a YAML catalog and overlays it on the built-in one. Lists
// present in the file replace the built-in lists; type and pool maps are
// merged per key.
func LoadFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var override File
	if err := yaml.Unmarshal(b, &override); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	Default()
	return New(overlay(defaultFile, override))
}

func overlay(base File, override File) File {
	out := File{
		Curated:      base.Curated,
		Types:        map[string]string{},
		Pools:        map[string][]string{},
		Default:      base.Default,
		TrustedHosts: base.TrustedHosts,
		BrokenHosts:  base.BrokenHosts,
	}
	for k, v := range base.Types {
		out.Types[k] = v
	}
	for k, v := range base.Pools {
		out.Pools[k] = v
	}
	if len(override.Curated) > 0 {
		out.Curated = override.Curated
	}
	for k, v := range override.Types {
		out.Types[k] = v
	}
	for k, v := range override.Pools {
		out.Pools[k] = v
	}
	if strings.TrimSpace(override.Default) != "" {
		out.Default = override.Default
	}
	if override.TrustedHosts != nil {
		out.TrustedHosts = override.TrustedHosts
	}
	if override.BrokenHosts != nil {
		out.BrokenHosts = override.BrokenHosts
	}
	return out
}

// Curated picks a keyword-matched image from the event title and search term,
// falling back to the image registered for the event type. Returns "" when
// nothing applies.
func (c *Catalog) Curated(title *string, eventType *string, term string) string {
	var parts []string
	if title != nil {
		parts = append(parts, *title)
	}
	parts = append(parts, term)
	haystack := strings.ToLower(strings.Join(parts, " "))

	for _, entry := range c.curated {
		if entry.pattern.MatchString(haystack) {
			return entry.image
		}
	}
	if label := event.Normalize(eventType); label != "" {
		return c.types[label]
	}
	return ""
}

// Fallbacks returns the category pool for an event type, or the single type
// image when no pool is registered.
func (c *Catalog) Fallbacks(eventType *string) []string {
	label := event.Normalize(eventType)
	if label == "" {
		return nil
	}
	if pool, ok := c.pools[label]; ok {
		return append([]string(nil), pool...)
	}
	if image, ok := c.types[label]; ok {
		return []string{image}
	}
	return nil
}

func (c *Catalog) DefaultImage() string {
	return c.fallback
}

// IsTrusted reports whether images on host are accepted without probing.
func (c *Catalog) IsTrusted(host string) bool {
	_, ok := c.trusted[strings.ToLower(host)]
	return ok
}

// IsBroken reports whether host is known to never serve images.
func (c *Catalog) IsBroken(host string) bool {
	_, ok := c.broken[strings.ToLower(host)]
	return ok
}

func hostSet(hosts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(hosts))
	for _, host := range hosts {
		if host = strings.ToLower(strings.TrimSpace(host)); host != "" {
			set[host] = struct{}{}
		}
	}
	return set
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
