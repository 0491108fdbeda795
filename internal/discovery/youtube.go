package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/codebuildervaibhav/speech-corpus/internal/types"
)

// searchPreferences filters search results to videos with closed captions.
const searchPreferences = "EgQoATAB"

// Client discovers captioned videos on YouTube. Search and channel listing
// run through headless Chrome; caption tracks are fetched over plain HTTP.
type Client struct {
	language   string
	httpClient *http.Client
}

// NewClient creates a discovery client for the given caption language code.
func NewClient(language string) *Client {
	return &Client{
		language:   language,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// scrapedVideo matches the JSON produced by the in-page extraction script.
type scrapedVideo struct {
	VideoID       string `json:"videoId"`
	Title         string `json:"title"`
	Duration      string `json:"duration"`
	PublishedTime string `json:"publishedTime"`
	ChannelName   string `json:"channelName"`
}

const extractSearchResults = `
JSON.stringify(Array.from(document.querySelectorAll('ytd-video-renderer')).map(el => {
	const link = el.querySelector('a#video-title');
	const href = link ? link.getAttribute('href') || '' : '';
	const idMatch = href.match(/[?&]v=([^&]+)/);
	const overlay = el.querySelector('ytd-thumbnail-overlay-time-status-renderer span');
	const metaSpans = el.querySelectorAll('#metadata-line span');
	const channel = el.querySelector('#channel-name a');
	return {
		videoId: idMatch ? idMatch[1] : '',
		title: link ? (link.getAttribute('title') || link.textContent.trim()) : '',
		duration: overlay ? overlay.textContent.trim() : '',
		publishedTime: metaSpans.length > 1 ? metaSpans[1].textContent.trim() : '',
		channelName: channel ? channel.textContent.trim() : '',
	};
}))`

const extractChannelVideos = `
JSON.stringify(Array.from(document.querySelectorAll('ytd-rich-item-renderer')).map(el => {
	const link = el.querySelector('a#video-title-link') || el.querySelector('a#video-title');
	const href = link ? link.getAttribute('href') || '' : '';
	const idMatch = href.match(/[?&]v=([^&]+)/);
	const overlay = el.querySelector('ytd-thumbnail-overlay-time-status-renderer span');
	const metaSpans = el.querySelectorAll('#metadata-line span');
	return {
		videoId: idMatch ? idMatch[1] : '',
		title: link ? (link.getAttribute('title') || link.textContent.trim()) : '',
		duration: overlay ? overlay.textContent.trim() : '',
		publishedTime: metaSpans.length > 1 ? metaSpans[1].textContent.trim() : '',
		channelName: '',
	};
}))`

// scrollPage scrolls to the bottom and resolves once the feed has had a
// moment to append the next page of results.
const scrollPage = `
new Promise(resolve => {
	window.scrollTo(0, document.documentElement.scrollHeight);
	setTimeout(() => resolve(true), 1500);
})`

// Search returns metadata for captioned videos matching the query. Each
// result page carries roughly 20 videos; maxPages bounds how far the result
// feed is scrolled.
func (c *Client) Search(ctx context.Context, query string, maxPages int) ([]types.VideoMetadata, error) {
	searchURL := fmt.Sprintf("https://www.youtube.com/results?search_query=%s&sp=%s",
		url.QueryEscape(query), searchPreferences)
	return c.scrapeVideoList(ctx, searchURL, extractSearchResults, maxPages, "")
}

// ListByChannel returns metadata for the videos of one channel, newest
// first as YouTube renders them.
func (c *Client) ListByChannel(ctx context.Context, channelID string) ([]types.VideoMetadata, error) {
	channelURL := fmt.Sprintf("https://www.youtube.com/channel/%s/videos", channelID)
	if strings.HasPrefix(channelID, "@") {
		channelURL = fmt.Sprintf("https://www.youtube.com/%s/videos", channelID)
	}
	return c.scrapeVideoList(ctx, channelURL, extractChannelVideos, 1, channelID)
}

func (c *Client) scrapeVideoList(ctx context.Context, pageURL, extractScript string, maxPages int, channelName string) ([]types.VideoMetadata, error) {
	browserCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()
	browserCtx, cancel = context.WithTimeout(browserCtx, 5*time.Minute)
	defer cancel()

	actions := []chromedp.Action{
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(2 * time.Second),
	}
	var settled bool
	for page := 1; page < maxPages; page++ {
		actions = append(actions, chromedp.Evaluate(scrollPage, &settled,
			func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
				return p.WithAwaitPromise(true)
			},
		))
	}
	var raw string
	actions = append(actions, chromedp.Evaluate(extractScript, &raw))

	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return nil, fmt.Errorf("failed to scrape %s: %v", pageURL, err)
	}

	var scraped []scrapedVideo
	if err := json.Unmarshal([]byte(raw), &scraped); err != nil {
		return nil, fmt.Errorf("failed to parse scraped results: %v", err)
	}

	now := time.Now()
	var videos []types.VideoMetadata
	for _, s := range scraped {
		if s.VideoID == "" {
			continue
		}
		channel := s.ChannelName
		if channel == "" {
			channel = channelName
		}
		videos = append(videos, types.VideoMetadata{
			VideoID:         s.VideoID,
			URL:             "https://www.youtube.com/watch?v=" + s.VideoID,
			Title:           s.Title,
			DurationSeconds: ParseDuration(s.Duration),
			PublishedTime:   s.PublishedTime,
			ChannelName:     channel,
			PublishedYear:   PublishedYear(s.PublishedTime, now),
		})
	}

	log.Printf("Discovered %d videos from %s", len(videos), pageURL)
	return videos, nil
}
