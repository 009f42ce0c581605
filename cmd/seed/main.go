package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	appconfig "github.com/apexcrm/leadflow/internal/config"
	"github.com/apexcrm/leadflow/internal/leads"
	"github.com/apexcrm/leadflow/pkg/logging"
)

// Seeds the leads table with generated demo data so a fresh install
// has a populated dashboard. Existing rows are left alone.
func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	databaseURL := strings.TrimSpace(cfg.DatabaseURL)
	if databaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	var existing int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM leads`).Scan(&existing); err != nil {
		logger.Error("failed to count leads", "error", err)
		os.Exit(1)
	}
	if existing > 0 {
		logger.Info("leads table already populated, nothing to do", "count", existing)
		return
	}

	sample := leads.GenerateSample(cfg.SampleLeadCount)

	batch := &pgx.Batch{}
	for _, lead := range sample {
		batch.Queue(`
			INSERT INTO leads (id, name, email, phone, source, message, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			lead.ID, lead.Name, lead.Email, lead.Phone, lead.Source, lead.Message,
			lead.Status, lead.CreatedAt, lead.UpdatedAt,
		)
	}

	results := pool.SendBatch(ctx, batch)
	defer results.Close()
	for range sample {
		if _, err := results.Exec(); err != nil {
			logger.Error("failed to insert sample lead", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("seeded sample leads", "count", len(sample))
}
