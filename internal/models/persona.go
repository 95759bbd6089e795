package models

import (
	"fmt"
	"time"
)

// Valid values for the persona enum fields. The Portuguese values match
// what the prompt template interpolates verbatim.
var (
	ValidMoods = map[string]bool{
		"feliz":     true,
		"triste":    true,
		"reflexivo": true,
		"animado":   true,
		"entediado": true,
	}
	ValidAvailableTimes = map[string]bool{
		"curto": true,
		"medio": true,
		"longo": true,
	}
	ValidEras = map[string]bool{
		"todos":      true,
		"antes-2000": true,
		"2000-2020":  true,
		"apos-2020":  true,
	}
)

// Persona is a user's preference snapshot. One row per user,
// overwritten on each submission.
type Persona struct {
	UserID         int       `json:"user_id"`
	Name           string    `json:"name"`
	FavoriteGenres string    `json:"favorite_genres"`
	Mood           string    `json:"mood"`
	AvailableTime  string    `json:"available_time"`
	PreferredEra   string    `json:"preferred_era"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PersonaRequest is the persona upsert payload.
type PersonaRequest struct {
	Name           string `json:"name"`
	FavoriteGenres string `json:"favorite_genres"`
	Mood           string `json:"mood"`
	AvailableTime  string `json:"available_time"`
	PreferredEra   string `json:"preferred_era"`
}

// Validate checks required fields and enum membership, and fills the
// era default.
func (r *PersonaRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.FavoriteGenres == "" {
		return fmt.Errorf("favorite_genres is required")
	}
	if !ValidMoods[r.Mood] {
		return fmt.Errorf("invalid mood: %q", r.Mood)
	}
	if !ValidAvailableTimes[r.AvailableTime] {
		return fmt.Errorf("invalid available_time: %q", r.AvailableTime)
	}
	if r.PreferredEra == "" {
		r.PreferredEra = "todos"
	}
	if !ValidEras[r.PreferredEra] {
		return fmt.Errorf("invalid preferred_era: %q", r.PreferredEra)
	}
	return nil
}
