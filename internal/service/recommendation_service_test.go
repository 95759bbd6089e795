package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-movie-recommender/internal/llm"
	"persona-movie-recommender/internal/models"
	"persona-movie-recommender/internal/tmdb"
)

// ---- test doubles ----

type fakePersonaStore struct{}

func (f *fakePersonaStore) Upsert(userID int, req models.PersonaRequest) (*models.Persona, error) {
	return &models.Persona{
		UserID:         userID,
		Name:           req.Name,
		FavoriteGenres: req.FavoriteGenres,
		Mood:           req.Mood,
		AvailableTime:  req.AvailableTime,
		PreferredEra:   req.PreferredEra,
		UpdatedAt:      time.Now(),
	}, nil
}

type fakeHistory struct {
	watched []models.WatchedMovie
}

func (f *fakeHistory) ListByUser(int) ([]models.WatchedMovie, error) {
	return f.watched, nil
}

type fakeBatchLog struct {
	mu       sync.Mutex
	inserted []models.RecommendationBatch
}

func (f *fakeBatchLog) Insert(userID int, p models.Persona, rawText string) (*models.RecommendationBatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := models.RecommendationBatch{ID: len(f.inserted) + 1, UserID: userID, RawText: rawText}
	f.inserted = append(f.inserted, b)
	return &b, nil
}

func (f *fakeBatchLog) ListRecent(userID, limit int) ([]models.RecommendationBatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.RecommendationBatch(nil), f.inserted...), nil
}

type fakeGenerator struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int
}

func (f *fakeGenerator) Complete(context.Context, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.text, f.err
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type identityTranslator struct{}

func (identityTranslator) Translate(_ context.Context, title string) string { return title }

type fakeCatalog struct {
	mu      sync.Mutex
	fail    map[string]error
	delay   map[string]time.Duration
	queries []string
}

func (f *fakeCatalog) Lookup(_ context.Context, title string) (*models.EnrichedMovie, error) {
	f.mu.Lock()
	f.queries = append(f.queries, title)
	failErr := f.fail[title]
	delay := f.delay[title]
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if failErr != nil {
		return nil, failErr
	}
	return &models.EnrichedMovie{Title: title, Year: "2020", Synopsis: "ok"}, nil
}

// memoryCache honors TTLs against a manually advanced clock.
type memoryCache struct {
	mu      sync.Mutex
	now     time.Time
	lastTTL time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value   string
	expires time.Time
}

func newMemoryCache() *memoryCache {
	return &memoryCache{now: time.Now(), entries: make(map[string]cacheEntry)}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || c.now.After(e.expires) {
		return "", false
	}
	return e.value, true
}

func (c *memoryCache) Set(_ context.Context, key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastTTL = ttl
	c.entries[key] = cacheEntry{value: value, expires: c.now.Add(ttl)}
}

func (c *memoryCache) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// ---- helpers ----

func headingsHTML(titles ...string) string {
	var b strings.Builder
	for _, t := range titles {
		fmt.Fprintf(&b, "<h2>%s</h2>\n", t)
	}
	return b.String()
}

func personaRequest() models.PersonaRequest {
	return models.PersonaRequest{
		Name:           "Ana",
		FavoriteGenres: "ação",
		Mood:           "feliz",
		AvailableTime:  "curto",
		PreferredEra:   "todos",
	}
}

func newTestService(gen *fakeGenerator, catalog *fakeCatalog, cache ResultCache, watched []models.WatchedMovie) (*RecommendationService, *fakeBatchLog) {
	batches := &fakeBatchLog{}
	svc := NewRecommendationService(
		&fakePersonaStore{},
		&fakeHistory{watched: watched},
		batches,
		cache,
		gen,
		identityTranslator{},
		catalog,
	)
	return svc, batches
}

// ---- tests ----

func TestGenerate_PerTitleFailureIsolation(t *testing.T) {
	gen := &fakeGenerator{text: headingsHTML("Matrix", "Parasita", "O Poço", "Duna", "Akira")}
	catalog := &fakeCatalog{fail: map[string]error{
		"Parasita": tmdb.ErrNotFound,
		"Duna":     errors.New("tmdb: connection reset"),
	}}
	svc, _ := newTestService(gen, catalog, newMemoryCache(), nil)

	resp, err := svc.Generate(context.Background(), 1, personaRequest())

	require.NoError(t, err)
	require.Len(t, resp.Movies, 3)
	assert.Equal(t, "Matrix", resp.Movies[0].Title)
	assert.Equal(t, "O Poço", resp.Movies[1].Title)
	assert.Equal(t, "Akira", resp.Movies[2].Title)
}

func TestGenerate_ConcurrentEnrichmentKeepsExtractionOrder(t *testing.T) {
	gen := &fakeGenerator{text: headingsHTML("Matrix", "Parasita", "O Poço", "Duna", "Akira")}
	catalog := &fakeCatalog{delay: map[string]time.Duration{
		"Matrix":   40 * time.Millisecond,
		"Parasita": 20 * time.Millisecond,
	}}
	svc, _ := newTestService(gen, catalog, newMemoryCache(), nil)

	resp, err := svc.Generate(context.Background(), 1, personaRequest())

	require.NoError(t, err)
	var got []string
	for _, m := range resp.Movies {
		got = append(got, m.Title)
	}
	assert.Equal(t, []string{"Matrix", "Parasita", "O Poço", "Duna", "Akira"}, got)
}

func TestGenerate_CacheHitSkipsGeneration(t *testing.T) {
	gen := &fakeGenerator{text: headingsHTML("Matrix", "Parasita")}
	cache := newMemoryCache()
	svc, batches := newTestService(gen, &fakeCatalog{}, cache, nil)

	first, err := svc.Generate(context.Background(), 1, personaRequest())
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), 1, personaRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, gen.callCount())
	assert.False(t, first.FromCache)
	assert.True(t, second.FromCache)
	assert.Equal(t, time.Hour, cache.lastTTL)
	// A batch row is appended on every submission, cached or not.
	assert.Len(t, batches.inserted, 2)
	assert.Equal(t, batches.inserted[0].RawText, batches.inserted[1].RawText)
}

func TestGenerate_CacheExpiryTriggersNewGeneration(t *testing.T) {
	gen := &fakeGenerator{text: headingsHTML("Matrix")}
	cache := newMemoryCache()
	svc, _ := newTestService(gen, &fakeCatalog{}, cache, nil)

	_, err := svc.Generate(context.Background(), 1, personaRequest())
	require.NoError(t, err)

	cache.advance(61 * time.Minute)

	_, err = svc.Generate(context.Background(), 1, personaRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, gen.callCount())
}

func TestGenerate_FingerprintVariesByGenreAndMood(t *testing.T) {
	gen := &fakeGenerator{text: headingsHTML("Matrix")}
	svc, _ := newTestService(gen, &fakeCatalog{}, newMemoryCache(), nil)

	_, err := svc.Generate(context.Background(), 1, personaRequest())
	require.NoError(t, err)

	other := personaRequest()
	other.Mood = "triste"
	_, err = svc.Generate(context.Background(), 1, other)
	require.NoError(t, err)

	assert.Equal(t, 2, gen.callCount())
}

func TestGenerate_GenerationFailureAbortsRequest(t *testing.T) {
	gen := &fakeGenerator{err: fmt.Errorf("%w: status 500", llm.ErrUpstream)}
	svc, batches := newTestService(gen, &fakeCatalog{}, newMemoryCache(), nil)

	_, err := svc.Generate(context.Background(), 1, personaRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrUpstream)
	assert.Empty(t, batches.inserted)
}

func TestGenerate_MissingCredentialsSurfaceBeforeBatch(t *testing.T) {
	gen := &fakeGenerator{err: llm.ErrMissingAPIKey}
	svc, batches := newTestService(gen, &fakeCatalog{}, newMemoryCache(), nil)

	_, err := svc.Generate(context.Background(), 1, personaRequest())

	assert.ErrorIs(t, err, llm.ErrMissingAPIKey)
	assert.Empty(t, batches.inserted)
}

func TestGenerate_MissingCatalogKeyFailsWholeBatch(t *testing.T) {
	gen := &fakeGenerator{text: headingsHTML("Matrix", "Parasita")}
	catalog := &fakeCatalog{fail: map[string]error{
		"Matrix":   tmdb.ErrMissingAPIKey,
		"Parasita": tmdb.ErrMissingAPIKey,
	}}
	svc, _ := newTestService(gen, catalog, newMemoryCache(), nil)

	_, err := svc.Generate(context.Background(), 1, personaRequest())

	assert.ErrorIs(t, err, tmdb.ErrMissingAPIKey)
}

func TestGenerate_EmptyExtractionIsNotAnError(t *testing.T) {
	gen := &fakeGenerator{text: "desculpe, não consegui pensar em nada."}
	catalog := &fakeCatalog{}
	svc, _ := newTestService(gen, catalog, newMemoryCache(), nil)

	resp, err := svc.Generate(context.Background(), 1, personaRequest())

	require.NoError(t, err)
	assert.Empty(t, resp.Movies)
	assert.Empty(t, catalog.queries)
}

func TestGenerate_ExcludesWatchedTitles(t *testing.T) {
	watched := []models.WatchedMovie{
		{Title: "Matrix", Rating: 8},
		{Title: "Cats", Rating: 1},
	}
	gen := &fakeGenerator{text: headingsHTML("Matrix", "Parasita", "Cats", "Duna", "Akira")}
	catalog := &fakeCatalog{}
	svc, _ := newTestService(gen, catalog, newMemoryCache(), watched)

	resp, err := svc.Generate(context.Background(), 1, personaRequest())

	require.NoError(t, err)
	var got []string
	for _, m := range resp.Movies {
		got = append(got, m.Title)
	}
	assert.Equal(t, []string{"Parasita", "Duna", "Akira"}, got)
	assert.NotContains(t, catalog.queries, "Matrix")
	assert.NotContains(t, catalog.queries, "Cats")
}
