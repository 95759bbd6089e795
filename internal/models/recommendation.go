package models

import "time"

// RecommendationBatch is one raw generation result for a persona
// snapshot. Rows are append-only; enriched movies are recomputed from
// RawText on demand, never stored.
type RecommendationBatch struct {
	ID             int       `json:"id"`
	UserID         int       `json:"user_id"`
	Name           string    `json:"name"`
	FavoriteGenres string    `json:"favorite_genres"`
	Mood           string    `json:"mood"`
	AvailableTime  string    `json:"available_time"`
	PreferredEra   string    `json:"preferred_era"`
	RawText        string    `json:"raw_text"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// EnrichedMovie is a candidate title resolved against the TMDB catalog.
type EnrichedMovie struct {
	Title      string  `json:"title"`
	Year       string  `json:"year"`
	PosterURL  string  `json:"poster_url"`
	IMDbURL    string  `json:"imdb_url"`
	Synopsis   string  `json:"synopsis"`
	TMDBId     int     `json:"tmdb_id"`
	Popularity float64 `json:"popularity"`
}

// RecommendationResponse wraps the enriched list returned to the user.
type RecommendationResponse struct {
	UserID      int             `json:"user_id"`
	Movies      []EnrichedMovie `json:"movies"`
	FromCache   bool            `json:"from_cache"`
	GeneratedAt string          `json:"generated_at"`
}
