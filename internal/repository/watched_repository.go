package repository

import (
	"database/sql"
	"fmt"

	"persona-movie-recommender/internal/models"
)

type WatchedRepository struct {
	db *sql.DB
}

func NewWatchedRepository(db *sql.DB) *WatchedRepository {
	return &WatchedRepository{db: db}
}

// Upsert records a rating for (user, title), overwriting any previous
// rating for the same title.
func (r *WatchedRepository) Upsert(userID int, req models.RateMovieRequest) (*models.WatchedMovie, error) {
	row := r.db.QueryRow(`
		INSERT INTO watched_movies (user_id, title, imdb_id, rating, watched_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, NOW())
		ON CONFLICT (user_id, title)
		DO UPDATE SET
			imdb_id = COALESCE(NULLIF(EXCLUDED.imdb_id, ''), watched_movies.imdb_id),
			rating = EXCLUDED.rating,
			watched_at = NOW()
		RETURNING id, user_id, title, COALESCE(imdb_id, ''), rating, watched_at
	`, userID, req.Title, req.IMDbID, req.Rating)

	var w models.WatchedMovie
	if err := row.Scan(&w.ID, &w.UserID, &w.Title, &w.IMDbID, &w.Rating, &w.WatchedAt); err != nil {
		return nil, fmt.Errorf("upsert watched movie: %w", err)
	}
	return &w, nil
}

// ListByUser returns the user's rated movies, most recent first.
func (r *WatchedRepository) ListByUser(userID int) ([]models.WatchedMovie, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, title, COALESCE(imdb_id, ''), rating, watched_at
		FROM watched_movies
		WHERE user_id = $1
		ORDER BY watched_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query watched movies: %w", err)
	}
	defer rows.Close()

	var watched []models.WatchedMovie
	for rows.Next() {
		var w models.WatchedMovie
		if err := rows.Scan(&w.ID, &w.UserID, &w.Title, &w.IMDbID, &w.Rating, &w.WatchedAt); err != nil {
			return nil, fmt.Errorf("scan watched movie: %w", err)
		}
		watched = append(watched, w)
	}
	return watched, rows.Err()
}

// Stats returns the count and average rating of the user's watched movies.
func (r *WatchedRepository) Stats(userID int) (int, float64, error) {
	row := r.db.QueryRow(`
		SELECT COUNT(*), COALESCE(AVG(rating), 0)
		FROM watched_movies
		WHERE user_id = $1
	`, userID)

	var total int
	var avg float64
	if err := row.Scan(&total, &avg); err != nil {
		return 0, 0, fmt.Errorf("scan watched stats: %w", err)
	}
	return total, avg, nil
}
