package discovery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

// rewriteTransport sends every request to the test server regardless of the
// host the client asked for.
type rewriteTransport struct {
	target *url.URL
}

func (t rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = t.target.Scheme
	req.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

const watchPage = `<html><script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[` +
	`{"baseUrl":"https://www.youtube.com/api/timedtext?v=abc123&lang=hi","languageCode":"hi"},` +
	`{"baseUrl":"https://www.youtube.com/api/timedtext?v=abc123&lang=hi&kind=asr","languageCode":"hi","kind":"asr"},` +
	`{"baseUrl":"https://www.youtube.com/api/timedtext?v=abc123&lang=en","languageCode":"en"}` +
	`]}}};</script></html>`

const json3Body = `{"events":[` +
	`{"tStartMs":0,"dDurationMs":5000,"segs":[{"utf8":"यह "},{"utf8":"मैच"}]},` +
	`{"tStartMs":5000,"dDurationMs":0,"segs":[{"utf8":"dropped"}]},` +
	`{"tStartMs":9000,"dDurationMs":3200}` +
	`]}`

func TestFetchTranscripts(t *testing.T) {
	var trackRequests []*url.URL
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			w.Write([]byte(watchPage))
		case "/api/timedtext":
			u := *r.URL
			trackRequests = append(trackRequests, &u)
			w.Write([]byte(json3Body))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	target, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	client := &Client{
		language:   "hi",
		httpClient: &http.Client{Transport: rewriteTransport{target: target}},
	}

	variants, err := client.FetchTranscripts(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("FetchTranscripts: %v", err)
	}
	if variants.Manual == nil || variants.Auto == nil {
		t.Fatalf("expected both variants, got manual=%v auto=%v", variants.Manual, variants.Auto)
	}
	if len(trackRequests) != 2 {
		t.Fatalf("fetched %d tracks, want 2 (en track must be skipped)", len(trackRequests))
	}
	for _, u := range trackRequests {
		q := u.Query()
		if q.Get("lang") != "hi" || q.Get("fmt") != "json3" {
			t.Errorf("track request %q missing decoded lang/fmt params", u.String())
		}
	}

	if len(variants.Manual) != 1 {
		t.Fatalf("manual variant has %d segments, want 1", len(variants.Manual))
	}
	seg := variants.Manual[0]
	if seg.Text != "यह मैच" || seg.Start != 0 || seg.Duration != 5 {
		t.Errorf("segment = %+v", seg)
	}
}

func TestFetchTranscriptsNoCaptionTracks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>no captions here</html>"))
	}))
	defer srv.Close()

	target, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	client := &Client{
		language:   "hi",
		httpClient: &http.Client{Transport: rewriteTransport{target: target}},
	}

	variants, err := client.FetchTranscripts(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("FetchTranscripts: %v", err)
	}
	if variants.Manual != nil || variants.Auto != nil {
		t.Errorf("expected empty variants, got %+v", variants)
	}
}
