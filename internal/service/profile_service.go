package service

import (
	"database/sql"
	"errors"
	"fmt"

	"persona-movie-recommender/internal/models"
	"persona-movie-recommender/internal/repository"
)

// ErrPersonaNotFound is returned when the user never submitted a persona.
var ErrPersonaNotFound = errors.New("persona not found")

const dashboardBatchLimit = 5

// ProfileService handles personas, watched-movie ratings and the
// dashboard aggregation.
type ProfileService struct {
	personas *repository.PersonaRepository
	watched  *repository.WatchedRepository
	batches  *repository.BatchRepository
}

func NewProfileService(
	personas *repository.PersonaRepository,
	watched *repository.WatchedRepository,
	batches *repository.BatchRepository,
) *ProfileService {
	return &ProfileService{personas: personas, watched: watched, batches: batches}
}

func (s *ProfileService) SavePersona(userID int, req models.PersonaRequest) (*models.Persona, error) {
	return s.personas.Upsert(userID, req)
}

func (s *ProfileService) GetPersona(userID int) (*models.Persona, error) {
	persona, err := s.personas.Get(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPersonaNotFound
		}
		return nil, fmt.Errorf("get persona: %w", err)
	}
	return persona, nil
}

// RateMovie records (or updates) a rating for a watched movie.
func (s *ProfileService) RateMovie(userID int, req models.RateMovieRequest) (*models.WatchedMovie, error) {
	return s.watched.Upsert(userID, req)
}

func (s *ProfileService) ListWatched(userID int) ([]models.WatchedMovie, error) {
	return s.watched.ListByUser(userID)
}

// Dashboard aggregates the user's persona, rating stats and most
// recent generation batches.
func (s *ProfileService) Dashboard(userID int) (*models.DashboardResponse, error) {
	resp := &models.DashboardResponse{}

	persona, err := s.personas.Get(userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get persona: %w", err)
	}
	resp.Persona = persona

	resp.Watched, err = s.watched.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	resp.TotalWatched, resp.AverageRating, err = s.watched.Stats(userID)
	if err != nil {
		return nil, err
	}

	resp.RecentBatches, err = s.batches.ListRecent(userID, dashboardBatchLimit)
	if err != nil {
		return nil, err
	}

	return resp, nil
}
