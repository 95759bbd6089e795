package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"persona-movie-recommender/internal/config"
)

func NewPostgres(cfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)

	slog.Info("connected to PostgreSQL", "db", cfg.DBName)

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS personas (
			user_id INTEGER PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			favorite_genres VARCHAR(200) NOT NULL,
			mood VARCHAR(50) NOT NULL,
			available_time VARCHAR(20) NOT NULL,
			preferred_era VARCHAR(20) NOT NULL DEFAULT 'todos',
			updated_at TIMESTAMP DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS watched_movies (
			id SERIAL PRIMARY KEY,
			user_id INTEGER NOT NULL,
			title VARCHAR(200) NOT NULL,
			imdb_id VARCHAR(20),
			rating INTEGER NOT NULL DEFAULT 0 CHECK (rating BETWEEN 0 AND 10),
			watched_at TIMESTAMP DEFAULT NOW(),
			UNIQUE(user_id, title)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_watched_user_id ON watched_movies(user_id)`,
		`CREATE TABLE IF NOT EXISTS recommendation_batches (
			id SERIAL PRIMARY KEY,
			user_id INTEGER NOT NULL,
			name VARCHAR(100) NOT NULL,
			favorite_genres VARCHAR(200) NOT NULL,
			mood VARCHAR(50) NOT NULL,
			available_time VARCHAR(20) NOT NULL,
			preferred_era VARCHAR(20) NOT NULL,
			raw_text TEXT NOT NULL,
			generated_at TIMESTAMP DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_batches_user_id ON recommendation_batches(user_id, generated_at DESC)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	slog.Info("database migrations completed")
	return nil
}
