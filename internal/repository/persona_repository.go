package repository

import (
	"database/sql"
	"fmt"

	"persona-movie-recommender/internal/models"
)

type PersonaRepository struct {
	db *sql.DB
}

func NewPersonaRepository(db *sql.DB) *PersonaRepository {
	return &PersonaRepository{db: db}
}

// Upsert stores or overwrites the user's persona and returns the
// persisted row.
func (r *PersonaRepository) Upsert(userID int, req models.PersonaRequest) (*models.Persona, error) {
	row := r.db.QueryRow(`
		INSERT INTO personas (user_id, name, favorite_genres, mood, available_time, preferred_era, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET
			name = EXCLUDED.name,
			favorite_genres = EXCLUDED.favorite_genres,
			mood = EXCLUDED.mood,
			available_time = EXCLUDED.available_time,
			preferred_era = EXCLUDED.preferred_era,
			updated_at = NOW()
		RETURNING user_id, name, favorite_genres, mood, available_time, preferred_era, updated_at
	`, userID, req.Name, req.FavoriteGenres, req.Mood, req.AvailableTime, req.PreferredEra)

	var p models.Persona
	if err := row.Scan(
		&p.UserID, &p.Name, &p.FavoriteGenres,
		&p.Mood, &p.AvailableTime, &p.PreferredEra, &p.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("upsert persona: %w", err)
	}
	return &p, nil
}

// Get returns the user's persona, or sql.ErrNoRows if none was saved yet.
func (r *PersonaRepository) Get(userID int) (*models.Persona, error) {
	row := r.db.QueryRow(`
		SELECT user_id, name, favorite_genres, mood, available_time, preferred_era, updated_at
		FROM personas
		WHERE user_id = $1
	`, userID)

	var p models.Persona
	if err := row.Scan(
		&p.UserID, &p.Name, &p.FavoriteGenres,
		&p.Mood, &p.AvailableTime, &p.PreferredEra, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
