package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-movie-recommender/internal/models"
)

func testPersona() models.Persona {
	return models.Persona{
		UserID:         1,
		Name:           "Ana",
		FavoriteGenres: "ação",
		Mood:           "feliz",
		AvailableTime:  "curto",
		PreferredEra:   "todos",
	}
}

func TestBuildPrompt_ContainsPersonaAttributes(t *testing.T) {
	prompt := BuildPrompt(testPersona(), HistorySummary{})

	assert.Contains(t, prompt, "ação")
	assert.Contains(t, prompt, "feliz")
	assert.Contains(t, prompt, "curto")
	assert.Contains(t, prompt, "todos")
	assert.Contains(t, prompt, "Ana")
	assert.Contains(t, prompt, "exatamente 5 filmes")
	assert.Contains(t, prompt, "HTML limpo")
}

func TestBuildPrompt_NoHistoryMarker(t *testing.T) {
	prompt := BuildPrompt(testPersona(), HistorySummary{})

	assert.Contains(t, prompt, NoHistoryMarker)
	assert.NotContains(t, prompt, "Gostou de:")
	assert.NotContains(t, prompt, "Não gostou de:")
}

func TestBuildPrompt_LikedAndDislikedSections(t *testing.T) {
	history := SummarizeHistory([]models.WatchedMovie{
		{Title: "Matrix", Rating: 8},
		{Title: "Cats", Rating: 1},
	})

	prompt := BuildPrompt(testPersona(), history)

	assert.Contains(t, prompt, "Gostou de: Matrix")
	assert.Contains(t, prompt, "Não gostou de: Cats")
	assert.NotContains(t, prompt, NoHistoryMarker)
	assert.Contains(t, prompt, "Não recomende nenhum filme já assistido")
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	history := SummarizeHistory([]models.WatchedMovie{
		{Title: "Matrix", Rating: 8},
		{Title: "Cats", Rating: 1},
	})

	assert.Equal(t,
		BuildPrompt(testPersona(), history),
		BuildPrompt(testPersona(), history),
	)
}

func TestSummarizeHistory_MidpointSplit(t *testing.T) {
	history := SummarizeHistory([]models.WatchedMovie{
		{Title: "Matrix", Rating: 8},
		{Title: "Okja", Rating: 5}, // midpoint counts as liked
		{Title: "Cats", Rating: 4},
		{Title: "Gigli", Rating: 0},
	})

	assert.Equal(t, []string{"Matrix", "Okja"}, history.Liked)
	assert.Equal(t, []string{"Cats", "Gigli"}, history.Disliked)
}

func TestSummarizeHistory_CapsAtFivePerBucket(t *testing.T) {
	var watched []models.WatchedMovie
	for i := 0; i < 8; i++ {
		watched = append(watched, models.WatchedMovie{Title: fmt.Sprintf("Bom %d", i), Rating: 9})
		watched = append(watched, models.WatchedMovie{Title: fmt.Sprintf("Ruim %d", i), Rating: 2})
	}

	history := SummarizeHistory(watched)

	require.Len(t, history.Liked, 5)
	require.Len(t, history.Disliked, 5)
	// Input is newest-first; the caps keep the first seen.
	assert.Equal(t, "Bom 0", history.Liked[0])
	assert.Equal(t, "Ruim 4", history.Disliked[4])
}

func TestHistorySummary_Empty(t *testing.T) {
	assert.True(t, HistorySummary{}.Empty())
	assert.False(t, HistorySummary{Liked: []string{"Matrix"}}.Empty())

	h := HistorySummary{Liked: []string{"Matrix"}, Disliked: []string{"Cats"}}
	assert.Equal(t, []string{"Matrix", "Cats"}, h.AllTitles())
}
