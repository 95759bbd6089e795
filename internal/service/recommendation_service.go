package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"persona-movie-recommender/internal/extract"
	"persona-movie-recommender/internal/models"
	"persona-movie-recommender/internal/tmdb"
)

const (
	// Raw generation results are cached per persona fingerprint for an
	// hour to avoid redundant model calls for near-identical requests.
	resultCacheTTL = time.Hour

	// At most this many catalog lookups run at once per request.
	enrichConcurrency = 4
)

// Generator produces raw recommendation text from a prompt.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Catalog resolves a title to an enriched movie record. A miss is
// reported as tmdb.ErrNotFound.
type Catalog interface {
	Lookup(ctx context.Context, title string) (*models.EnrichedMovie, error)
}

// Translator converts a title into the catalog's query language,
// falling back to the input on failure.
type Translator interface {
	Translate(ctx context.Context, title string) string
}

// ResultCache is the fingerprinted raw-generation cache.
type ResultCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
}

// PersonaStore persists persona snapshots.
type PersonaStore interface {
	Upsert(userID int, req models.PersonaRequest) (*models.Persona, error)
}

// WatchHistory reads the user's rated movies, newest first.
type WatchHistory interface {
	ListByUser(userID int) ([]models.WatchedMovie, error)
}

// BatchLog is the append-only record of raw generation results.
type BatchLog interface {
	Insert(userID int, p models.Persona, rawText string) (*models.RecommendationBatch, error)
	ListRecent(userID, limit int) ([]models.RecommendationBatch, error)
}

// RecommendationService runs the persona → prompt → generation →
// extraction → enrichment pipeline.
type RecommendationService struct {
	personas   PersonaStore
	watched    WatchHistory
	batches    BatchLog
	cache      ResultCache
	generator  Generator
	translator Translator
	catalog    Catalog
}

func NewRecommendationService(
	personas PersonaStore,
	watched WatchHistory,
	batches BatchLog,
	cache ResultCache,
	generator Generator,
	translator Translator,
	catalog Catalog,
) *RecommendationService {
	return &RecommendationService{
		personas:   personas,
		watched:    watched,
		batches:    batches,
		cache:      cache,
		generator:  generator,
		translator: translator,
		catalog:    catalog,
	}
}

// Generate saves the submitted persona and returns enriched
// recommendations for it. Generation failures abort the whole request;
// per-title enrichment failures only shorten the result.
func (s *RecommendationService) Generate(ctx context.Context, userID int, req models.PersonaRequest) (*models.RecommendationResponse, error) {
	persona, err := s.personas.Upsert(userID, req)
	if err != nil {
		return nil, fmt.Errorf("save persona: %w", err)
	}

	watched, err := s.watched.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("load watch history: %w", err)
	}
	history := SummarizeHistory(watched)

	cacheKey := fingerprint(userID, *persona)
	raw, fromCache := s.cache.Get(ctx, cacheKey)
	if !fromCache {
		prompt := BuildPrompt(*persona, history)
		raw, err = s.generator.Complete(ctx, prompt)
		if err != nil {
			return nil, err
		}
		s.cache.Set(ctx, cacheKey, raw, resultCacheTTL)
	} else {
		slog.Debug("generation cache hit", "user_id", userID)
	}

	// Every submission gets a batch row, cached or not; the batch log
	// is the append-only record of what the model said.
	if _, err := s.batches.Insert(userID, *persona, raw); err != nil {
		slog.Error("failed to persist recommendation batch", "user_id", userID, "error", err)
	}

	titles := extract.Titles(raw)
	titles = excludeWatched(titles, watched)

	movies, err := s.enrich(ctx, titles)
	if err != nil {
		return nil, err
	}

	return &models.RecommendationResponse{
		UserID:      userID,
		Movies:      movies,
		FromCache:   fromCache,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// History returns the user's most recent raw generation batches.
func (s *RecommendationService) History(ctx context.Context, userID, limit int) ([]models.RecommendationBatch, error) {
	return s.batches.ListRecent(userID, limit)
}

// enrich resolves candidate titles concurrently, restoring extraction
// order in the merged result. A title that misses or fails is logged
// and skipped; only a missing catalog credential aborts the batch.
func (s *RecommendationService) enrich(ctx context.Context, titles []string) ([]models.EnrichedMovie, error) {
	resolved := make([]*models.EnrichedMovie, len(titles))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)
	for i, title := range titles {
		g.Go(func() error {
			query := s.translator.Translate(ctx, title)
			movie, err := s.catalog.Lookup(ctx, query)
			if err != nil {
				if errors.Is(err, tmdb.ErrMissingAPIKey) {
					return err
				}
				if errors.Is(err, tmdb.ErrNotFound) {
					slog.Info("no catalog match for title", "title", title, "query", query)
				} else {
					slog.Warn("title enrichment failed", "title", title, "error", err)
				}
				return nil
			}
			resolved[i] = movie
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	movies := make([]models.EnrichedMovie, 0, len(titles))
	for _, m := range resolved {
		if m != nil {
			movies = append(movies, *m)
		}
	}
	return movies, nil
}

// excludeWatched drops candidates the user already rated. The prompt
// asks the model not to repeat watched titles, but that instruction is
// advisory; this filter enforces it against the full history, not just
// the capped prompt summary.
func excludeWatched(titles []string, watched []models.WatchedMovie) []string {
	if len(watched) == 0 {
		return titles
	}
	seen := make(map[string]bool)
	for _, w := range watched {
		seen[strings.ToLower(w.Title)] = true
	}
	kept := titles[:0]
	for _, t := range titles {
		if seen[strings.ToLower(t)] {
			slog.Debug("dropping already watched title", "title", t)
			continue
		}
		kept = append(kept, t)
	}
	return kept
}

func fingerprint(userID int, p models.Persona) string {
	return fmt.Sprintf("recommendations:%d:%s:%s", userID, p.FavoriteGenres, p.Mood)
}
