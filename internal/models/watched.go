package models

import (
	"fmt"
	"time"
)

// RatingMax is the top of the rating scale; ratings at or above the
// midpoint count as liked when summarizing watch history.
const (
	RatingMax      = 10
	RatingMidpoint = RatingMax / 2
)

// WatchedMovie is a movie the user rated. Unique per (user, title);
// rating a title again overwrites the previous rating.
type WatchedMovie struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Title     string    `json:"title"`
	IMDbID    string    `json:"imdb_id,omitempty"`
	Rating    int       `json:"rating"`
	WatchedAt time.Time `json:"watched_at"`
}

// Liked reports whether the rating lands in the liked half of the scale.
func (w WatchedMovie) Liked() bool {
	return w.Rating >= RatingMidpoint
}

// RateMovieRequest is the watched-movie upsert payload.
type RateMovieRequest struct {
	Title  string `json:"title"`
	IMDbID string `json:"imdb_id"`
	Rating int    `json:"rating"`
}

func (r *RateMovieRequest) Validate() error {
	if r.Title == "" {
		return fmt.Errorf("title is required")
	}
	if r.Rating < 0 || r.Rating > RatingMax {
		return fmt.Errorf("rating must be between 0 and %d", RatingMax)
	}
	return nil
}

// DashboardResponse aggregates a user's profile and rating activity.
type DashboardResponse struct {
	Persona       *Persona              `json:"persona,omitempty"`
	TotalWatched  int                   `json:"total_watched"`
	AverageRating float64               `json:"average_rating"`
	Watched       []WatchedMovie        `json:"watched"`
	RecentBatches []RecommendationBatch `json:"recent_batches"`
}
