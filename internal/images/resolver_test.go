package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/aggregate"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/catalog"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/event"
)

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

func stubResponse(status int, contentType string) *http.Response {
	header := http.Header{}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return &http.Response{StatusCode: status, Header: header, Body: io.NopCloser(strings.NewReader(""))}
}

func emptyCatalog(t *testing.T, trusted ...string) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(catalog.File{TrustedHosts: trusted, BrokenHosts: []string{"image.unsplash.com"}})
	require.NoError(t, err)
	return cat
}

func failingDoer(t *testing.T) Doer {
	return doerFunc(func(req *http.Request) (*http.Response, error) {
		t.Errorf("unexpected request to %s", req.URL)
		return nil, errors.New("unexpected request")
	})
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestExtractMetaImage(t *testing.T) {
	base := mustURL(t, "https://example.com/events/1")

	assert.Equal(t, "https://example.com/img/a.jpg",
		ExtractMetaImage(`<head><meta property="og:image" content="/img/a.jpg"></head>`, base))
	assert.Equal(t, "https://example.com/events/b.jpg",
		ExtractMetaImage(`<meta property="og:image" content=" b.jpg ">`, base))

	priority := `<meta name="twitter:image" content="https://t.example/t.jpg"><meta property="og:image" content="https://o.example/o.jpg">`
	assert.Equal(t, "https://o.example/o.jpg", ExtractMetaImage(priority, base))

	assert.Equal(t, "https://t.example/t.jpg",
		ExtractMetaImage(`<META NAME="Twitter:Image" CONTENT='https://t.example/t.jpg'>`, base))

	fallback := `<meta property="og:image" content="mailto:someone@example.com"><meta name="twitter:image:src" content="https://t.example/src.jpg">`
	assert.Equal(t, "https://t.example/src.jpg", ExtractMetaImage(fallback, base))

	assert.Equal(t, "https://o.example/url.jpg",
		ExtractMetaImage(`<meta property="og:image:url" content="https://o.example/url.jpg">`, base))

	assert.Equal(t, "", ExtractMetaImage(`<meta property="og:title" content="Jazz">`, base))
	assert.Equal(t, "", ExtractMetaImage(`<meta property="og:image">`, base))
	assert.Equal(t, "", ExtractMetaImage("", base))
}

func TestScrapeOpenGraph_FollowsRedirectsAndSendsHeaders(t *testing.T) {
	var gotUA, gotAccept string
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final/page", http.StatusFound)
	})
	mux.HandleFunc("/final/page", func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><meta property="og:image" content="img.jpg"></head></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	r := NewResolver(WithHTTPClient(srv.Client()), WithCatalog(emptyCatalog(t)))
	got := r.scrapeOpenGraph(context.Background(), srv.URL+"/start")

	assert.Equal(t, srv.URL+"/final/img.jpg", got)
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, "text/html,application/xhtml+xml", gotAccept)
}

func TestScrapeOpenGraph_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(strings.Repeat("x", 300) + `<meta property="og:image" content="https://o.example/late.jpg">`))
	}))
	defer srv.Close()

	r := NewResolver(WithHTTPClient(srv.Client()), WithCatalog(emptyCatalog(t)), WithMaxHTMLBytes(100))
	assert.Equal(t, "", r.scrapeOpenGraph(context.Background(), srv.URL+"/missing"))
	assert.Equal(t, "", r.scrapeOpenGraph(context.Background(), srv.URL+"/late"))
	assert.Equal(t, "", r.scrapeOpenGraph(context.Background(), "ftp://example.com/page"))
	assert.Equal(t, "", r.scrapeOpenGraph(context.Background(), ""))
}

func TestScrapeOpenGraph_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	r := NewResolver(WithHTTPClient(srv.Client()), WithCatalog(emptyCatalog(t)), WithTimeouts(50*time.Millisecond, 0))
	start := time.Now()
	assert.Equal(t, "", r.scrapeOpenGraph(context.Background(), srv.URL))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestReachable(t *testing.T) {
	var mu sync.Mutex
	var methods []string
	var accepts []string
	responses := map[string]*http.Response{
		"/png":      stubResponse(http.StatusOK, "image/png"),
		"/html":     stubResponse(http.StatusOK, "text/html; charset=utf-8"),
		"/untyped":  stubResponse(http.StatusOK, ""),
		"/nohead":   stubResponse(http.StatusMethodNotAllowed, "text/plain"),
		"/missing":  stubResponse(http.StatusNotFound, "image/png"),
		"/redirect": stubResponse(http.StatusFound, ""),
	}
	client := doerFunc(func(req *http.Request) (*http.Response, error) {
		mu.Lock()
		methods = append(methods, req.Method)
		accepts = append(accepts, req.Header.Get("Accept"))
		mu.Unlock()
		if resp, ok := responses[req.URL.Path]; ok {
			return resp, nil
		}
		return nil, errors.New("connection refused")
	})
	r := NewResolver(WithHTTPClient(client), WithCatalog(emptyCatalog(t)))
	ctx := context.Background()

	assert.True(t, r.reachable(ctx, "https://cdn.example/png"))
	assert.False(t, r.reachable(ctx, "https://cdn.example/html"))
	assert.True(t, r.reachable(ctx, "https://cdn.example/untyped"))
	assert.True(t, r.reachable(ctx, "https://cdn.example/nohead"))
	assert.False(t, r.reachable(ctx, "https://cdn.example/missing"))
	assert.False(t, r.reachable(ctx, "https://cdn.example/redirect"))
	assert.False(t, r.reachable(ctx, "https://cdn.example/down"))

	for _, method := range methods {
		assert.Equal(t, http.MethodHead, method)
	}
	for _, accept := range accepts {
		assert.Equal(t, "image/*", accept)
	}
}

func TestReachable_NoRequestForTrustedBrokenOrInvalid(t *testing.T) {
	r := NewResolver(WithHTTPClient(failingDoer(t)), WithCatalog(emptyCatalog(t, "images.unsplash.com")))
	ctx := context.Background()

	assert.True(t, r.reachable(ctx, "https://images.unsplash.com/photo-1?w=1200"))
	assert.False(t, r.reachable(ctx, "https://image.unsplash.com/photo-1"))
	assert.False(t, r.reachable(ctx, "ftp://cdn.example/a.png"))
	assert.False(t, r.reachable(ctx, "not a url"))
	assert.False(t, r.reachable(ctx, "/relative/a.png"))
}

func TestCandidates_OrderAndDedup(t *testing.T) {
	cat := catalog.Default()
	r := NewResolver(WithCatalog(cat))
	agg := aggregate.Aggregated{
		Event: event.Event{
			Title: event.String("DC Tech Meetup"),
			Type:  event.String("tech"),
			Image: event.String("https://e.example/a.jpg"),
		},
		ImageCandidates: []string{"https://e.example/a.jpg", "https://e.example/b.jpg", ""},
	}

	got := r.Candidates("https://s.example/og.jpg", agg, "")

	pool := cat.Fallbacks(event.String("tech"))
	want := []string{"https://s.example/og.jpg", "https://e.example/a.jpg", "https://e.example/b.jpg"}
	want = append(want, pool...)
	want = append(want, cat.DefaultImage())
	assert.Equal(t, want, got)
}

func TestCandidates_EmptyWhenNothingKnown(t *testing.T) {
	r := NewResolver(WithCatalog(emptyCatalog(t)))
	assert.Empty(t, r.Candidates("", aggregate.Aggregated{}, "anything"))
}

func TestResolve_AllCandidatesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewResolver(WithHTTPClient(srv.Client()), WithCatalog(emptyCatalog(t)))
	agg := aggregate.Aggregated{
		Event: event.Event{
			Title: event.String("Free Jazz Night"),
			URL:   event.String(srv.URL + "/event"),
			Image: event.String(srv.URL + "/a.jpg"),
		},
		ImageCandidates: []string{srv.URL + "/a.jpg", srv.URL + "/b.jpg"},
	}

	out := r.Resolve(context.Background(), agg, "jazz")
	assert.Nil(t, out.Image)
	assert.Equal(t, "Free Jazz Night", event.Value(out.Title))
}

func TestResolve_UsesScrapedImageFirst(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/event":
			_, _ = fmt.Fprintf(w, `<meta property="og:image" content="%s/og.png">`, srv.URL)
		case "/og.png":
			w.Header().Set("Content-Type", "image/png")
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	r := NewResolver(WithHTTPClient(srv.Client()), WithCatalog(emptyCatalog(t)))
	agg := aggregate.Aggregated{Event: event.Event{
		URL:   event.String(srv.URL + "/event"),
		Image: event.String("https://images.unsplash.com/photo-agent"),
	}}

	out := r.Resolve(context.Background(), agg, "")
	require.NotNil(t, out.Image)
	assert.Equal(t, srv.URL+"/og.png", *out.Image)
}

func TestResolve_ProbesLazily(t *testing.T) {
	var probes int32
	client := doerFunc(func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&probes, 1)
		switch req.URL.Path {
		case "/first.jpg":
			return stubResponse(http.StatusNotFound, ""), nil
		case "/second.jpg":
			return stubResponse(http.StatusOK, "image/jpeg"), nil
		}
		t.Errorf("unexpected probe of %s", req.URL)
		return stubResponse(http.StatusOK, "image/jpeg"), nil
	})
	r := NewResolver(WithHTTPClient(client), WithCatalog(emptyCatalog(t)))
	agg := aggregate.Aggregated{
		Event:           event.Event{Image: event.String("https://cdn.example/first.jpg")},
		ImageCandidates: []string{"https://cdn.example/second.jpg", "https://cdn.example/third.jpg"},
	}

	out := r.Resolve(context.Background(), agg, "")
	require.NotNil(t, out.Image)
	assert.Equal(t, "https://cdn.example/second.jpg", *out.Image)
	assert.Equal(t, int32(2), atomic.LoadInt32(&probes))
}

func TestResolve_FallsBackToDefaultCatalog(t *testing.T) {
	r := NewResolver(WithHTTPClient(failingDoer(t)))
	agg := aggregate.Aggregated{Event: event.Event{
		Title: event.String("Quiet evening"),
		Type:  event.String("outdoors"),
		Image: event.String("https://image.unsplash.com/broken"),
	}}

	out := r.Resolve(context.Background(), agg, "")
	require.NotNil(t, out.Image)
	assert.Equal(t, catalog.Default().Curated(nil, event.String("outdoors"), ""), *out.Image)
}

func TestResolveAll_PreservesOrder(t *testing.T) {
	client := doerFunc(func(req *http.Request) (*http.Response, error) {
		switch req.URL.Path {
		case "/0.jpg":
			time.Sleep(60 * time.Millisecond)
		case "/1.jpg":
			time.Sleep(30 * time.Millisecond)
		}
		return stubResponse(http.StatusOK, "image/jpeg"), nil
	})
	r := NewResolver(WithHTTPClient(client), WithCatalog(emptyCatalog(t)))

	var aggs []aggregate.Aggregated
	for i := 0; i < 3; i++ {
		aggs = append(aggs, aggregate.Aggregated{Event: event.Event{
			Title: event.String(fmt.Sprintf("event %d", i)),
			Image: event.String(fmt.Sprintf("https://cdn.example/%d.jpg", i)),
		}})
	}

	var mu sync.Mutex
	seen := map[int]bool{}
	out := r.ResolveAllFunc(context.Background(), aggs, "", func(i int, ev event.Event) {
		mu.Lock()
		defer mu.Unlock()
		seen[i] = true
	})

	require.Len(t, out, 3)
	for i, ev := range out {
		assert.Equal(t, fmt.Sprintf("event %d", i), event.Value(ev.Title))
		require.NotNil(t, ev.Image)
		assert.Equal(t, fmt.Sprintf("https://cdn.example/%d.jpg", i), *ev.Image)
	}
	assert.Len(t, seen, 3)
}

func TestResolveAll_RespectsConcurrencyLimit(t *testing.T) {
	var inFlight, peak int32
	client := doerFunc(func(req *http.Request) (*http.Response, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return stubResponse(http.StatusOK, "image/jpeg"), nil
	})
	r := NewResolver(WithHTTPClient(client), WithCatalog(emptyCatalog(t)), WithConcurrency(2))

	aggs := make([]aggregate.Aggregated, 6)
	for i := range aggs {
		aggs[i].Image = event.String(fmt.Sprintf("https://cdn.example/%d.jpg", i))
	}
	out := r.ResolveAll(context.Background(), aggs, "")

	require.Len(t, out, 6)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestResolveAll_CancelledContext(t *testing.T) {
	client := doerFunc(func(req *http.Request) (*http.Response, error) {
		if err := req.Context().Err(); err != nil {
			return nil, err
		}
		return stubResponse(http.StatusOK, "image/jpeg"), nil
	})
	r := NewResolver(WithHTTPClient(client), WithCatalog(emptyCatalog(t)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	aggs := []aggregate.Aggregated{
		{Event: event.Event{Image: event.String("https://cdn.example/a.jpg")}},
		{Event: event.Event{Image: event.String("https://cdn.example/b.jpg")}},
	}
	out := r.ResolveAll(ctx, aggs, "")
	require.Len(t, out, 2)
	assert.Nil(t, out[0].Image)
	assert.Nil(t, out[1].Image)
}

func TestResolveAll_Empty(t *testing.T) {
	r := NewResolver(WithHTTPClient(failingDoer(t)))
	assert.Empty(t, r.ResolveAll(context.Background(), nil, ""))
}
