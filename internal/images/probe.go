package images

import (
	"context"
	"net/http"
	"strings"

	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/metrics"
)

// reachable reports whether candidate looks like a servable image. Trusted
// hosts are accepted and known-broken hosts rejected without a request.
func (r *Resolver) reachable(ctx context.Context, candidate string) bool {
	u, ok := parseHTTPURL(candidate)
	if !ok {
		metrics.ProbesTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return false
	}
	host := u.Hostname()
	if r.catalog.IsBroken(host) {
		metrics.ProbesTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return false
	}
	if r.catalog.IsTrusted(host) {
		metrics.ProbesTotal.WithLabelValues(metrics.OutcomeTrusted).Inc()
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.String(), nil)
	if err != nil {
		metrics.ProbesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return false
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := r.client.Do(req)
	if err != nil {
		metrics.ProbesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return false
	}
	resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		contentType := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Type")))
		if contentType == "" || strings.HasPrefix(contentType, "image/") {
			metrics.ProbesTotal.WithLabelValues(metrics.OutcomeOK).Inc()
			return true
		}
	case resp.StatusCode == http.StatusMethodNotAllowed:
		// HEAD refused; the resource may still serve GET.
		metrics.ProbesTotal.WithLabelValues(metrics.OutcomeOK).Inc()
		return true
	}
	metrics.ProbesTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
	return false
}
