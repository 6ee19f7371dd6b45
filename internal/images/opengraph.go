package images

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/logging"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/metrics"
)

var metaKeys = []string{"og:image", "og:image:url", "twitter:image", "twitter:image:src"}

var (
	metaTagPatterns = compileMetaPatterns(metaKeys)
	contentPattern  = regexp.MustCompile(`(?i)content=["']([^"']+)["']`)
)

func compileMetaPatterns(keys []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(keys))
	for _, key := range keys {
		patterns = append(patterns, regexp.MustCompile(`(?i)<meta[^>]+(?:property|name)=["']`+regexp.QuoteMeta(key)+`["'][^>]*>`))
	}
	return patterns
}

// ExtractMetaImage returns the first social-preview image declared in html,
// resolved against base. Keys are tried in priority order; a key whose tag has
// no usable content falls through to the next key.
func ExtractMetaImage(html string, base *url.URL) string {
	for _, pattern := range metaTagPatterns {
		tag := pattern.FindString(html)
		if tag == "" {
			continue
		}
		match := contentPattern.FindStringSubmatch(tag)
		if len(match) < 2 {
			continue
		}
		raw := strings.TrimSpace(match[1])
		if raw == "" {
			continue
		}
		ref, err := url.Parse(raw)
		if err != nil {
			continue
		}
		if base != nil {
			ref = base.ResolveReference(ref)
		}
		if isHTTP(ref) {
			return ref.String()
		}
	}
	return ""
}

func (r *Resolver) scrapeOpenGraph(ctx context.Context, pageURL string) string {
	target, ok := parseHTTPURL(pageURL)
	if !ok {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, r.pageTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		metrics.ScrapesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return ""
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := r.client.Do(req)
	if err != nil {
		metrics.ScrapesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		r.logger.Debug("opengraph fetch failed", logging.URL(pageURL), logging.Error(err))
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ScrapesTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		r.logger.Debug("opengraph fetch rejected", logging.URL(pageURL), slog.Int("status", resp.StatusCode))
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, r.maxHTMLBytes))
	if err != nil {
		metrics.ScrapesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		r.logger.Debug("opengraph read failed", logging.URL(pageURL), logging.Error(err))
		return ""
	}

	base := target
	if resp.Request != nil && resp.Request.URL != nil {
		base = resp.Request.URL
	}
	image := ExtractMetaImage(string(body), base)
	if image == "" {
		metrics.ScrapesTotal.WithLabelValues(metrics.OutcomeMiss).Inc()
		return ""
	}
	metrics.ScrapesTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	return image
}

func parseHTTPURL(raw string) (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !isHTTP(u) {
		return nil, false
	}
	return u, true
}

func isHTTP(u *url.URL) bool {
	if u == nil || u.Host == "" {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
