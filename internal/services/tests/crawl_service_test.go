package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"wallpaper_studio_go_backend/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestSearchWallpapers(t *testing.T) {
	ctx := context.Background()

	t.Run("Extracts image and video URLs from scraped markdown", func(t *testing.T) {
		var gotBody map[string]interface{}
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/search", r.URL.Path)
			gotAuth = r.Header.Get("Authorization")
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

			response := map[string]interface{}{
				"data": []map[string]interface{}{
					{
						"title":    "Mountain Wallpapers",
						"url":      "https://example.com/mountains",
						"markdown": "Intro text ![peak](https://img.example.com/peak.jpg) more text https://vid.example.com/clip.mp4 end",
						"metadata": map[string]interface{}{
							"title":   "Mountains",
							"ogImage": "https://img.example.com/og.png",
						},
					},
					{
						"url":      "https://example.com/empty",
						"markdown": "nothing useful here",
					},
				},
			}
			assert.NoError(t, json.NewEncoder(w).Encode(response))
		}))
		defer server.Close()

		crawlService := services.NewCrawlService(server.URL)
		results, err := crawlService.SearchWallpapers(ctx, "fc-key", "mountains", 5)

		assert.NoError(t, err)
		assert.Equal(t, "Bearer fc-key", gotAuth)
		assert.Equal(t, "mountains wallpaper high resolution", gotBody["query"])
		assert.Equal(t, float64(5), gotBody["limit"])

		assert.Len(t, results, 3)
		assert.Equal(t, "image", results[0].Type)
		assert.Equal(t, "https://img.example.com/peak.jpg", results[0].ImageURL)
		assert.Equal(t, "Mountain Wallpapers", results[0].Title)
		assert.Equal(t, "https://example.com/mountains", results[0].SourceURL)
		assert.Equal(t, "video", results[1].Type)
		assert.Equal(t, "https://vid.example.com/clip.mp4", results[1].URL)
		assert.Equal(t, "image", results[2].Type)
		assert.Equal(t, "https://img.example.com/og.png", results[2].ImageURL)
	})

	t.Run("Missing query or key fails before any request", func(t *testing.T) {
		requests := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
		}))
		defer server.Close()

		crawlService := services.NewCrawlService(server.URL)

		var validationErr *services.ValidationError
		_, err := crawlService.SearchWallpapers(ctx, "fc-key", "", 5)
		assert.ErrorAs(t, err, &validationErr)

		_, err = crawlService.SearchWallpapers(ctx, "", "mountains", 5)
		assert.ErrorAs(t, err, &validationErr)

		assert.Equal(t, 0, requests)
	})

	t.Run("Remote error message is surfaced", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Invalid API key"}`))
		}))
		defer server.Close()

		crawlService := services.NewCrawlService(server.URL)
		_, err := crawlService.SearchWallpapers(ctx, "bad-key", "mountains", 5)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid API key")
	})
}
