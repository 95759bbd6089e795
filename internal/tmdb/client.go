package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"persona-movie-recommender/internal/config"
	"persona-movie-recommender/internal/models"
)

// ErrMissingAPIKey is returned before any network call when the TMDB
// key is not configured.
var ErrMissingAPIKey = errors.New("tmdb: TMDB_API_KEY is not configured")

// ErrNotFound is returned when the catalog has no match for a title.
var ErrNotFound = errors.New("tmdb: no match found")

const defaultSynopsis = "Sem sinopse disponível."

// Client is the TMDB API client.
type Client struct {
	apiKey       string
	baseURL      string
	imageBaseURL string
	language     string
	http         *http.Client
}

// NewClient creates a new TMDB API client.
func NewClient(cfg config.TMDBConfig) *Client {
	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		imageBaseURL: cfg.ImageBaseURL,
		language:     cfg.Language,
		http: &http.Client{
			Timeout: 8 * time.Second,
		},
	}
}

// ---- TMDB Response Types (internal, not exposed to consumers) ----

// SearchResponse is the TMDB search/movie response.
type SearchResponse struct {
	Page         int         `json:"page"`
	Results      []TMDBMovie `json:"results"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
}

// TMDBMovie is a movie from TMDB search results.
type TMDBMovie struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	Popularity       float64 `json:"popularity"`
	PosterPath       string  `json:"poster_path"`
	OriginalLanguage string  `json:"original_language"`
}

// TMDBMovieDetail is the detailed movie info from TMDB, including the
// external cross-reference ids requested via append_to_response.
type TMDBMovieDetail struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Overview    string          `json:"overview"`
	ReleaseDate string          `json:"release_date"`
	Popularity  float64         `json:"popularity"`
	PosterPath  string          `json:"poster_path"`
	Runtime     int             `json:"runtime"`
	ExternalIDs TMDBExternalIDs `json:"external_ids"`
}

// TMDBExternalIDs holds cross-catalog identifiers for a movie.
type TMDBExternalIDs struct {
	IMDbID string `json:"imdb_id"`
}

// ---- Client Methods ----

// SearchMovie queries the TMDB search endpoint and returns the first
// match, trusting TMDB's own relevance ranking. Returns ErrNotFound
// when the result list is empty.
func (c *Client) SearchMovie(ctx context.Context, query string) (*TMDBMovie, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	u := fmt.Sprintf(
		"%s/search/movie?api_key=%s&language=%s&query=%s",
		c.baseURL, c.apiKey, c.language, url.QueryEscape(query),
	)

	slog.Debug("searching TMDB", "query", query)
	resp, err := c.doGet(ctx, u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	if len(result.Results) == 0 {
		return nil, ErrNotFound
	}
	return &result.Results[0], nil
}

// GetMovieDetail fetches detailed movie info including external ids.
func (c *Client) GetMovieDetail(ctx context.Context, tmdbID int) (*TMDBMovieDetail, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	u := fmt.Sprintf(
		"%s/movie/%d?api_key=%s&language=%s&append_to_response=external_ids",
		c.baseURL, tmdbID, c.apiKey, c.language,
	)

	slog.Debug("fetching TMDB movie detail", "tmdb_id", tmdbID)
	resp, err := c.doGet(ctx, u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result TMDBMovieDetail
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode movie detail response: %w", err)
	}
	return &result, nil
}

// Lookup resolves a title to an enriched movie record: search for the
// best match, then fetch its detail for the IMDb cross-reference.
func (c *Client) Lookup(ctx context.Context, title string) (*models.EnrichedMovie, error) {
	match, err := c.SearchMovie(ctx, title)
	if err != nil {
		return nil, err
	}

	movie := &models.EnrichedMovie{
		Title:      match.Title,
		Year:       yearOf(match.ReleaseDate),
		PosterURL:  c.posterURL(match.PosterPath),
		IMDbURL:    "#",
		Synopsis:   defaultSynopsis,
		TMDBId:     match.ID,
		Popularity: match.Popularity,
	}
	if match.Overview != "" {
		movie.Synopsis = match.Overview
	}

	detail, err := c.GetMovieDetail(ctx, match.ID)
	if err != nil {
		return nil, err
	}
	if detail.ExternalIDs.IMDbID != "" {
		movie.IMDbURL = "https://www.imdb.com/title/" + detail.ExternalIDs.IMDbID
	}
	return movie, nil
}

func (c *Client) posterURL(posterPath string) string {
	if posterPath == "" {
		return ""
	}
	return c.imageBaseURL + posterPath
}

func yearOf(releaseDate string) string {
	if len(releaseDate) < 4 {
		return ""
	}
	return releaseDate[:4]
}

func (c *Client) doGet(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("TMDB API returned status %d: %s", resp.StatusCode, string(body))
	}
	return resp, nil
}
