package main

import (
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"portfolio-assistant-be/internal/model"
	"portfolio-assistant-be/pkg/database"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	color.Cyan("Starting GORM Migration...")

	// Extensions first; AutoMigrate cannot create them.
	color.Yellow("Step 1: Setting up extensions...")
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			color.Yellow("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	color.Yellow("Step 2: Running AutoMigrate...")
	models := []interface{}{
		&model.Project{},
		&model.ProjectImage{},
		&model.ContentEmbedding{},
		&model.ChatSession{},
		&model.ChatMessage{},
		&model.ChatAnalytics{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		color.Red("Error: AutoMigrate failed: %v", err)
		os.Exit(1)
	}

	// ANN index for the cosine search; AutoMigrate only creates btree indexes.
	color.Yellow("Step 3: Ensuring vector index...")
	vectorIndexSQL := `CREATE INDEX IF NOT EXISTS idx_content_embeddings_embedding_value
		ON content_embeddings USING hnsw (embedding_value vector_cosine_ops);`
	if err := db.Exec(vectorIndexSQL).Error; err != nil {
		color.Yellow("Warn: Failed to create vector index: %v", err)
	}

	color.Green("Migration completed successfully.")
}
