package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/codebuildervaibhav/speech-corpus/internal/types"
)

// TranscriptVariants holds the caption tracks of one video in the target
// language. Either field may be nil when the variant is absent.
type TranscriptVariants struct {
	Manual types.CaptionSet
	Auto   types.CaptionSet
}

var captionTracksPattern = regexp.MustCompile(`"captionTracks":(\[.*?\])`)

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

// json3 caption payload shape
type json3Transcript struct {
	Events []struct {
		StartMs    int64 `json:"tStartMs"`
		DurationMs int64 `json:"dDurationMs"`
		Segs       []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// FetchTranscripts fetches the manually authored and auto-generated caption
// tracks of a video for the client's language. A video without any matching
// track returns empty variants and no error.
func (c *Client) FetchTranscripts(ctx context.Context, videoID string) (*TranscriptVariants, error) {
	watchURL := "https://www.youtube.com/watch?v=" + videoID
	page, err := c.get(ctx, watchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch watch page for %s: %v", videoID, err)
	}

	match := captionTracksPattern.FindSubmatch(page)
	if match == nil {
		return &TranscriptVariants{}, nil
	}
	var tracks []captionTrack
	if err := json.Unmarshal(match[1], &tracks); err != nil {
		return nil, fmt.Errorf("failed to parse caption tracks for %s: %v", videoID, err)
	}

	variants := &TranscriptVariants{}
	for _, track := range tracks {
		if track.LanguageCode != c.language {
			continue
		}
		set, err := c.fetchTrack(ctx, track.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s caption track for %s: %v", track.LanguageCode, videoID, err)
		}
		if track.Kind == "asr" {
			variants.Auto = set
		} else {
			variants.Manual = set
		}
	}
	return variants, nil
}

func (c *Client) fetchTrack(ctx context.Context, baseURL string) (types.CaptionSet, error) {
	trackURL := baseURL + "&fmt=json3"
	body, err := c.get(ctx, trackURL)
	if err != nil {
		return nil, err
	}
	return parseJSON3(body)
}

func parseJSON3(body []byte) (types.CaptionSet, error) {
	var transcript json3Transcript
	if err := json.Unmarshal(body, &transcript); err != nil {
		return nil, fmt.Errorf("failed to parse json3 captions: %v", err)
	}

	var set types.CaptionSet
	for _, event := range transcript.Events {
		if len(event.Segs) == 0 || event.DurationMs <= 0 {
			continue
		}
		var text strings.Builder
		for _, seg := range event.Segs {
			text.WriteString(seg.UTF8)
		}
		set = append(set, types.CaptionSegment{
			Text:     text.String(),
			Start:    float64(event.StartMs) / 1000,
			Duration: float64(event.DurationMs) / 1000,
		})
	}
	return set, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")
	req.Header.Set("Accept-Language", c.language+",en;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
