package repository

import (
	"database/sql"
	"fmt"

	"persona-movie-recommender/internal/models"
)

type BatchRepository struct {
	db *sql.DB
}

func NewBatchRepository(db *sql.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// Insert appends a raw generation result for the given persona
// snapshot. Batches are never updated or deleted.
func (r *BatchRepository) Insert(userID int, p models.Persona, rawText string) (*models.RecommendationBatch, error) {
	row := r.db.QueryRow(`
		INSERT INTO recommendation_batches
			(user_id, name, favorite_genres, mood, available_time, preferred_era, raw_text, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, user_id, name, favorite_genres, mood, available_time, preferred_era, raw_text, generated_at
	`, userID, p.Name, p.FavoriteGenres, p.Mood, p.AvailableTime, p.PreferredEra, rawText)

	var b models.RecommendationBatch
	if err := row.Scan(
		&b.ID, &b.UserID, &b.Name, &b.FavoriteGenres,
		&b.Mood, &b.AvailableTime, &b.PreferredEra, &b.RawText, &b.GeneratedAt,
	); err != nil {
		return nil, fmt.Errorf("insert batch: %w", err)
	}
	return &b, nil
}

// ListRecent returns the user's most recent batches, newest first.
func (r *BatchRepository) ListRecent(userID, limit int) ([]models.RecommendationBatch, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, name, favorite_genres, mood, available_time, preferred_era, raw_text, generated_at
		FROM recommendation_batches
		WHERE user_id = $1
		ORDER BY generated_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var batches []models.RecommendationBatch
	for rows.Next() {
		var b models.RecommendationBatch
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.Name, &b.FavoriteGenres,
			&b.Mood, &b.AvailableTime, &b.PreferredEra, &b.RawText, &b.GeneratedAt,
		); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}
