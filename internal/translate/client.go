package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"persona-movie-recommender/internal/config"
)

// Client translates candidate titles into the catalog's query language
// through a LibreTranslate-compatible endpoint. Translation is an
// optimization: every failure degrades to the original title.
type Client struct {
	baseURL    string
	targetLang string
	http       *http.Client
}

// NewClient creates a new translation client. An empty base URL
// disables translation; Translate then returns its input unchanged.
func NewClient(cfg config.TranslateConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		targetLang: cfg.TargetLang,
		http: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type translateRequest struct {
	Query  string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// Translate returns the title in the target language, or the original
// title when the service is disabled or fails.
func (c *Client) Translate(ctx context.Context, title string) string {
	if c.baseURL == "" {
		return title
	}

	translated, err := c.translate(ctx, title)
	if err != nil {
		slog.Warn("title translation failed, using original", "title", title, "error", err)
		return title
	}
	if translated == "" {
		return title
	}
	return translated
}

func (c *Client) translate(ctx context.Context, title string) (string, error) {
	body, err := json.Marshal(translateRequest{
		Query:  title,
		Source: "auto",
		Target: c.targetLang,
		Format: "text",
	})
	if err != nil {
		return "", fmt.Errorf("marshal translate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create translate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("translate service returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode translate response: %w", err)
	}
	return strings.TrimSpace(result.TranslatedText), nil
}
