package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"
)

const DefaultCrawlBaseURL = "https://api.firecrawl.dev/v1"

// CrawlResult is one wallpaper candidate found on the web.
type CrawlResult struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	ImageURL  string `json:"imageUrl"`
	SourceURL string `json:"sourceUrl"`
	Type      string `json:"type"` // "image" or "video"
}

var (
	markdownImagePattern = regexp.MustCompile(`(?i)!\[.*?\]\((https?://[^\s)]+\.(?:jpg|jpeg|png|webp|gif))\)`)
	videoURLPattern      = regexp.MustCompile(`(?i)(https?://[^\s"']+\.(?:mp4|webm))`)
)

// CrawlService is a thin client over a Firecrawl-compatible search API: one
// search request, then URL extraction from the scraped markdown.
type CrawlService struct {
	baseURL    string
	httpClient *http.Client
}

func NewCrawlService(baseURL string) *CrawlService {
	if baseURL == "" {
		baseURL = DefaultCrawlBaseURL
	}
	return &CrawlService{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type crawlSearchItem struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Markdown string `json:"markdown"`
	Metadata struct {
		Title   string `json:"title"`
		OGImage string `json:"ogImage"`
	} `json:"metadata"`
}

// SearchWallpapers queries the search API and extracts image and video URLs
// from the scraped pages.
func (s *CrawlService) SearchWallpapers(ctx context.Context, apiKey, query string, limit int) ([]CrawlResult, error) {
	if query == "" {
		return nil, &ValidationError{Msg: "query is required"}
	}
	if apiKey == "" {
		return nil, &ValidationError{Msg: "a crawl API key is required"}
	}
	if limit <= 0 {
		limit = 20
	}

	payload, err := json.Marshal(map[string]interface{}{
		"query": query + " wallpaper high resolution",
		"limit": limit,
		"scrapeOptions": map[string]interface{}{
			"formats": []string{"markdown"},
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("crawl request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var remoteErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&remoteErr)
		if remoteErr.Error != "" {
			return nil, fmt.Errorf("crawl API error: %s", remoteErr.Error)
		}
		return nil, fmt.Errorf("crawl API returned HTTP %d", resp.StatusCode)
	}

	var parsed struct {
		Data []crawlSearchItem `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("malformed crawl API response: %w", err)
	}

	return extractResults(parsed.Data), nil
}

func extractResults(items []crawlSearchItem) []CrawlResult {
	results := []CrawlResult{}
	for _, item := range items {
		title := item.Title
		if title == "" {
			title = "Wallpaper"
		}

		for _, match := range markdownImagePattern.FindAllStringSubmatch(item.Markdown, -1) {
			results = append(results, CrawlResult{
				Title:     title,
				URL:       match[1],
				ImageURL:  match[1],
				SourceURL: item.URL,
				Type:      "image",
			})
		}

		for _, match := range videoURLPattern.FindAllStringSubmatch(item.Markdown, -1) {
			results = append(results, CrawlResult{
				Title:     title,
				URL:       match[1],
				ImageURL:  match[1],
				SourceURL: item.URL,
				Type:      "video",
			})
		}

		if item.Metadata.OGImage != "" {
			ogTitle := item.Title
			if ogTitle == "" {
				ogTitle = item.Metadata.Title
			}
			if ogTitle == "" {
				ogTitle = "Wallpaper"
			}
			results = append(results, CrawlResult{
				Title:     ogTitle,
				URL:       item.Metadata.OGImage,
				ImageURL:  item.Metadata.OGImage,
				SourceURL: item.URL,
				Type:      "image",
			})
		}
	}
	return results
}
