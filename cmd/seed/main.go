package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"portfolio-assistant-be/internal/config"
	"portfolio-assistant-be/internal/constant"
	"portfolio-assistant-be/internal/model"
	"portfolio-assistant-be/pkg/database"
	"portfolio-assistant-be/pkg/embedding"
)

type projectSeed struct {
	Title    string
	Slug     string
	Summary  string
	Featured int
	ImageUrl string
	Features []string
	Tools    []string
	Tags     []string
	Gallery  []string
}

type generalInfoSeed struct {
	Title   string
	Content string
}

var projectSeeds = []projectSeed{
	{
		Title:    "Modern Day Sniper",
		Slug:     "modern-day-sniper",
		Summary:  "Online training platform for precision rifle shooters with structured video courses and skill drills.",
		Featured: 1,
		ImageUrl: "https://cdn.jordanportfolio.com/projects/modern-day-sniper/cover.jpg",
		Features: []string{"video course library", "progress tracking", "subscription billing"},
		Tools:    []string{"Next.js", "Node.js", "PostgreSQL", "Stripe"},
		Tags:     []string{"education", "video", "subscription"},
		Gallery: []string{
			"https://cdn.jordanportfolio.com/projects/modern-day-sniper/dashboard.jpg",
			"https://cdn.jordanportfolio.com/projects/modern-day-sniper/course.jpg",
		},
	},
	{
		Title:    "Swyvvl",
		Slug:     "swyvvl",
		Summary:  "Real estate platform connecting buyers, sellers, and agents with transparent commission sharing.",
		Featured: 2,
		ImageUrl: "https://cdn.jordanportfolio.com/projects/swyvvl/cover.jpg",
		Features: []string{"MLS listing search", "agent matching", "commission calculator"},
		Tools:    []string{"React", "TypeScript", "PostgreSQL", "Supabase"},
		Tags:     []string{"real estate", "marketplace"},
		Gallery: []string{
			"https://cdn.jordanportfolio.com/projects/swyvvl/listings.jpg",
		},
	},
	{
		Title:    "Harvest Hosts",
		Slug:     "harvest-hosts",
		Summary:  "Membership marketplace for RV travelers to stay at wineries, farms, and attractions across North America.",
		Featured: 3,
		ImageUrl: "https://cdn.jordanportfolio.com/projects/harvest-hosts/cover.jpg",
		Features: []string{"host discovery map", "membership tiers", "trip planning"},
		Tools:    []string{"Vue.js", "Laravel", "MySQL"},
		Tags:     []string{"travel", "marketplace", "membership"},
	},
}

var generalInfoSeeds = []generalInfoSeed{
	{
		Title:   "About Jordan",
		Content: "Jordan is a full-stack web developer and designer who builds web products end to end, from UX and interface design through backend architecture and deployment.",
	},
	{
		Title:   "Technical Skills",
		Content: "Jordan works primarily with TypeScript, React, Next.js, Node.js, Go, and PostgreSQL, with production experience in Supabase, Stripe integrations, vector search, and CI/CD pipelines.",
	},
	{
		Title:   "Work Approach",
		Content: "Jordan favors small iterative releases, close collaboration with stakeholders, and measurable outcomes over big-bang launches.",
	},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	cfg := config.Load()
	if cfg.Database.Connection == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	var provider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	} else {
		provider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	}

	ctx := context.Background()

	color.Cyan("Seeding portfolio content...")

	for _, seed := range projectSeeds {
		if err := seedProject(ctx, db, provider, seed); err != nil {
			color.Red("Failed to seed project %q: %v", seed.Title, err)
			os.Exit(1)
		}
	}

	for _, seed := range generalInfoSeeds {
		if err := seedGeneralInfo(ctx, db, provider, seed); err != nil {
			color.Red("Failed to seed general info %q: %v", seed.Title, err)
			os.Exit(1)
		}
	}

	color.Green("Seeding completed successfully.")
}

func seedProject(ctx context.Context, db *gorm.DB, provider embedding.EmbeddingProvider, seed projectSeed) error {
	var existing model.Project
	err := db.Where("slug = ?", seed.Slug).First(&existing).Error
	if err == nil {
		color.Yellow("Skipping %q, already seeded", seed.Title)
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	tools, _ := json.Marshal(seed.Tools)
	tags, _ := json.Marshal(seed.Tags)

	project := model.Project{
		Title:    seed.Title,
		Slug:     seed.Slug,
		Summary:  seed.Summary,
		Featured: seed.Featured,
		ImageUrl: seed.ImageUrl,
		Tools:    datatypes.JSON(tools),
		Tags:     datatypes.JSON(tags),
	}
	if err := db.Create(&project).Error; err != nil {
		return err
	}

	for order, url := range seed.Gallery {
		image := model.ProjectImage{
			ProjectId: project.Id,
			Url:       url,
			SortOrder: order,
		}
		if err := db.Create(&image).Error; err != nil {
			return err
		}
	}

	display := map[string]interface{}{
		"name":      seed.Title,
		"slug":      seed.Slug,
		"summary":   seed.Summary,
		"features":  seed.Features,
		"tools":     seed.Tools,
		"tags":      seed.Tags,
		"image_url": seed.ImageUrl,
	}
	searchText := fmt.Sprintf("%s. %s Features: %s. Tools: %s. Tags: %s.",
		seed.Title,
		seed.Summary,
		strings.Join(seed.Features, ", "),
		strings.Join(seed.Tools, ", "),
		strings.Join(seed.Tags, ", "),
	)

	if err := seedEmbedding(ctx, db, provider, project.Id, constant.ContentTypeProject, searchText, display); err != nil {
		return err
	}

	color.Green("Seeded project %q", seed.Title)
	return nil
}

func seedGeneralInfo(ctx context.Context, db *gorm.DB, provider embedding.EmbeddingProvider, seed generalInfoSeed) error {
	var count int64
	err := db.Model(&model.ContentEmbedding{}).
		Where("content_type = ? AND search_text LIKE ?", constant.ContentTypeGeneralInfo, seed.Title+"%").
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		color.Yellow("Skipping %q, already seeded", seed.Title)
		return nil
	}

	display := map[string]interface{}{
		"title":   seed.Title,
		"content": seed.Content,
	}
	searchText := seed.Title + ". " + seed.Content

	if err := seedEmbedding(ctx, db, provider, uuid.New(), constant.ContentTypeGeneralInfo, searchText, display); err != nil {
		return err
	}

	color.Green("Seeded general info %q", seed.Title)
	return nil
}

func seedEmbedding(
	ctx context.Context,
	db *gorm.DB,
	provider embedding.EmbeddingProvider,
	contentId uuid.UUID,
	contentType, searchText string,
	display map[string]interface{},
) error {
	response, err := provider.Generate(ctx, searchText, "RETRIEVAL_DOCUMENT")
	if err != nil {
		return fmt.Errorf("generate embedding: %w", err)
	}

	content, err := json.Marshal(display)
	if err != nil {
		return err
	}

	row := model.ContentEmbedding{
		ContentId:      contentId,
		ContentType:    contentType,
		SearchText:     searchText,
		Content:        datatypes.JSON(content),
		EmbeddingValue: pgvector.NewVector(response.Embedding.Values),
	}
	return db.Create(&row).Error
}
